package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"stockledger/cmd"
	"stockledger/internal/config"
	"stockledger/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration
	cfg, cfgErr := config.Load()

	logConfig := logger.DefaultConfig()
	if cfgErr == nil {
		logConfig = cfg.GetLoggerConfig()
	}

	closeLog, err := logger.Setup(logConfig)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.WithComponent("main")
	if cfgErr != nil {
		log.Warn().Err(cfgErr).Msg("Could not load configuration, using default logger")
	}
	log.Debug().Msg("Starting Stockledger")

	// Execute CLI commands
	cmd.Execute(cfg, cfgErr)

	log.Debug().Msg("Stockledger shutdown")
	if err := closeLog(); err != nil {
		os.Exit(1)
	}
}
