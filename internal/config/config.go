package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"stockledger/internal/extraction"
	"stockledger/internal/locale"
	"stockledger/internal/logger"
	"stockledger/internal/store"
)

type Config struct {
	// Extraction Configuration
	Extractor              string
	GeminiAPIKey           string
	GeminiModel            string
	OpenAIAPIKey           string
	OpenAIModel            string
	ExtractionTimeout      time.Duration
	ExtractionRetryBackoff time.Duration

	// Google Cloud Configuration
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// Google Sheets Configuration
	GoogleSheetURL string

	// Storage Configuration
	LocalStore    string
	DataDir       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string

	// Interface language (it, en)
	Language string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		Extractor:              getEnv("EXTRACTOR", extraction.BackendGemini),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiModel:            getEnv("GEMINI_MODEL", extraction.DefaultGeminiModel),
		OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:            getEnv("OPENAI_MODEL", ""),
		ExtractionTimeout:      getEnvDuration("EXTRACTION_TIMEOUT", 25*time.Second),
		ExtractionRetryBackoff: getEnvDuration("EXTRACTION_RETRY_BACKOFF", time.Second),
		GoogleCloudProject:     getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:    getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:  getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		GoogleSheetURL:         getEnv("GOOGLE_SHEET_URL", ""),
		LocalStore:             getEnv("LOCAL_STORE", store.LocalFile),
		DataDir:                getEnv("DATA_DIR", "./data"),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvInt("REDIS_DB", 0),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		Language:               getEnv("LANGUAGE", string(locale.Italian)),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:          getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:              getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validate only rejects inconsistent settings. Missing extraction keys are
// reported by ValidateExtraction when a command needs a backend; a missing
// DATABASE_URL means local-only mode.
func (c *Config) validate() error {
	switch c.Extractor {
	case extraction.BackendGemini, extraction.BackendDocumentAI, extraction.BackendOpenAI:
	default:
		return fmt.Errorf("EXTRACTOR must be gemini, documentai or openai, got %q", c.Extractor)
	}
	if c.ExtractionTimeout <= 0 {
		return fmt.Errorf("EXTRACTION_TIMEOUT must be positive")
	}
	if c.ExtractionRetryBackoff < 0 {
		return fmt.Errorf("EXTRACTION_RETRY_BACKOFF must not be negative")
	}
	if err := c.GetStoreConfig().Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateExtraction checks that the selected backend has its credentials.
func (c *Config) ValidateExtraction() error {
	return c.GetExtractionConfig().Validate()
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetExtractionConfig returns the extraction backend settings
func (c *Config) GetExtractionConfig() extraction.Config {
	return extraction.Config{
		Backend:      c.Extractor,
		Timeout:      c.ExtractionTimeout,
		RetryBackoff: c.ExtractionRetryBackoff,
		GeminiAPIKey: c.GeminiAPIKey,
		GeminiModel:  c.GeminiModel,
		OpenAIAPIKey: c.OpenAIAPIKey,
		OpenAIModel:  c.OpenAIModel,
		ProjectID:    c.GoogleCloudProject,
		Location:     c.GoogleCloudLocation,
		ProcessorID:  c.DocumentAIProcessorID,
	}
}

// GetStoreConfig returns the local and remote store settings
func (c *Config) GetStoreConfig() store.Config {
	return store.Config{
		Local:   c.LocalStore,
		DataDir: c.DataDir,
		Redis: store.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
		DatabaseURL: c.DatabaseURL,
	}
}

// Lang returns the interface language
func (c *Config) Lang() locale.Lang {
	return locale.Parse(c.Language)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
