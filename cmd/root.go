package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"stockledger/internal/config"
	"stockledger/internal/logger"
)

var version = "1.0.0"

var (
	appConfig    *config.Config
	appConfigErr error
)

var rootCmd = &cobra.Command{
	Use:   "stockledger",
	Short: "Stockledger - warehouse inventory from supplier documents",
	Long: `Stockledger builds a running warehouse inventory from supplier documents.

Invoices and delivery notes are read by an extraction backend (Gemini,
Document AI or OpenAI), stored locally and, when DATABASE_URL is set,
replicated to PostgreSQL. Physical counts are reconciled against the ledger
and review invoices track their payment status.

Documents are kept in DATA_DIR (or Redis with LOCAL_STORE=redis). The remote
database is optional; its failures are logged and never block local work.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("Stockledger executed without subcommand")

		fmt.Println("Welcome to Stockledger!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

// Execute runs the root command with the configuration loaded by main.
// A configuration error is reported only by commands that need it.
func Execute(cfg *config.Config, cfgErr error) {
	log := logger.WithComponent("cmd")

	appConfig, appConfigErr = cfg, cfgErr

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Duration("timeout", 5*time.Minute, "Overall command timeout")
	rootCmd.PersistentFlags().String("lang", "", "Interface language for reports (it, en; default: LANGUAGE)")
}
