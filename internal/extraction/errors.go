package extraction

import (
	"context"
	"errors"
	"fmt"
)

// Common extraction errors
var (
	// ErrTimeout is returned when the extractor does not answer within the
	// configured timeout. Retried once.
	ErrTimeout = errors.New("extraction timed out")

	// ErrTransient is returned for network failures that may succeed on retry.
	ErrTransient = errors.New("transient extraction failure")

	// ErrEmpty is returned when the extractor answers without any document.
	// Not retried.
	ErrEmpty = errors.New("extraction returned no documents")

	// ErrInvalidResponse is returned when the extractor output is not the
	// expected JSON shape.
	ErrInvalidResponse = errors.New("invalid extraction response")

	// ErrUnsupportedFormat is returned for media types the backend cannot read.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrDocumentTooLarge is returned when the file exceeds the backend limit.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size limit")

	// ErrInvalidConfiguration is returned when the selected backend lacks settings.
	ErrInvalidConfiguration = errors.New("invalid extraction configuration")

	// ErrInvalidCredentials is returned when the backend rejects the credentials.
	ErrInvalidCredentials = errors.New("invalid extraction credentials")

	// ErrQuotaExceeded is returned when the backend API quota is exhausted.
	ErrQuotaExceeded = errors.New("extraction API quota exceeded")
)

// ExtractionError wraps errors with the failing operation and the backend.
type ExtractionError struct {
	// Op is the operation that failed (e.g., "Extract", "ParseResponse").
	Op string

	// Backend names the extractor (gemini, documentai, openai).
	Backend string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	prefix := "extraction"
	if e.Backend != "" {
		prefix = "extraction[" + e.Backend + "]"
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s failed: %s: %v", prefix, e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", prefix, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(op, backend string, err error, details string) *ExtractionError {
	return &ExtractionError{
		Op:      op,
		Backend: backend,
		Err:     err,
		Details: details,
	}
}

// WrapExtractionError wraps an error as an ExtractionError if it isn't already one.
func WrapExtractionError(op, backend string, err error, details string) error {
	if err == nil {
		return nil
	}

	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return err
	}

	return NewExtractionError(op, backend, err, details)
}

// IsRetryable reports whether a single retry may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrTransient)
}

// IsBlocking reports whether err prevents capturing a document at all. Every
// extraction failure is blocking except a cancellation by the caller.
func IsBlocking(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}
