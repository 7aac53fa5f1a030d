// Package extraction turns document files (PDF or images) into loosely typed
// document records using an external model or parser.
//
// Three backends are available:
//   - gemini: Gemini multimodal model with a JSON response schema (default)
//   - documentai: Google Document AI invoice parser
//   - openai: Google Cloud Vision OCR followed by an OpenAI chat completion
//
// Every backend is wrapped by Retrying, which bounds each call with a timeout
// and retries exactly once on timeouts and transient network failures.
package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Extractor converts binary content into raw document records. A single
// file may contain several documents.
type Extractor interface {
	Extract(ctx context.Context, content []byte, mimeType string) ([]RawDocument, error)
}

// Backend names
const (
	BackendGemini     = "gemini"
	BackendDocumentAI = "documentai"
	BackendOpenAI     = "openai"
)

// MaxDocumentSizeBytes is the largest file sent to any backend (20MB).
const MaxDocumentSizeBytes = 20 * 1024 * 1024

// Config selects and configures an extraction backend.
type Config struct {
	Backend string

	// Timeout bounds a single extraction attempt.
	// Default: 25 seconds.
	Timeout time.Duration

	// RetryBackoff is the pause before the single retry.
	// Default: 1 second.
	RetryBackoff time.Duration

	GeminiAPIKey string
	GeminiModel  string

	OpenAIAPIKey string
	OpenAIModel  string

	ProjectID   string
	Location    string
	ProcessorID string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:      BackendGemini,
		Timeout:      25 * time.Second,
		RetryBackoff: time.Second,
		GeminiModel:  DefaultGeminiModel,
		OpenAIModel:  "gpt-4o-mini",
		Location:     "us",
	}
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	const op = "Validate"

	switch strings.ToLower(c.Backend) {
	case BackendGemini, "":
		if c.GeminiAPIKey == "" {
			return WrapExtractionError(op, BackendGemini, ErrInvalidConfiguration, "GEMINI_API_KEY is required")
		}
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return WrapExtractionError(op, BackendOpenAI, ErrInvalidConfiguration, "OPENAI_API_KEY is required")
		}
	case BackendDocumentAI:
		if c.ProjectID == "" || c.ProcessorID == "" {
			return WrapExtractionError(op, BackendDocumentAI, ErrInvalidConfiguration, "GOOGLE_CLOUD_PROJECT and DOCUMENT_AI_PROCESSOR_ID are required")
		}
	default:
		return WrapExtractionError(op, c.Backend, ErrInvalidConfiguration, fmt.Sprintf("unknown extractor %q", c.Backend))
	}
	return nil
}

// New builds the configured backend wrapped with timeout and retry handling.
// The returned close function releases backend clients.
func New(ctx context.Context, cfg Config) (Extractor, func() error, error) {
	const op = "New"

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var (
		inner   Extractor
		closeFn func() error
		err     error
	)

	switch strings.ToLower(cfg.Backend) {
	case BackendDocumentAI:
		var e *DocumentAIExtractor
		e, err = NewDocumentAIExtractor(ctx, cfg)
		inner, closeFn = e, func() error { return e.Close() }
	case BackendOpenAI:
		var e *OpenAIExtractor
		e, err = NewOpenAIExtractor(ctx, cfg)
		inner, closeFn = e, func() error { return e.Close() }
	default:
		var e *GeminiExtractor
		e, err = NewGeminiExtractor(ctx, cfg)
		inner, closeFn = e, func() error { return e.Close() }
	}
	if err != nil {
		return nil, nil, WrapExtractionError(op, cfg.Backend, err, "failed to create extractor")
	}

	return NewRetrying(inner, cfg.Timeout, cfg.RetryBackoff), closeFn, nil
}
