package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common store errors
var (
	// ErrSchemaMismatch is returned when the remote table lacks one of the
	// optional columns (due date, payment status, paid amount, credit-note flag).
	ErrSchemaMismatch = errors.New("remote schema is missing optional columns")

	// ErrTransient is returned for connection failures and timeouts.
	ErrTransient = errors.New("transient store failure")

	// ErrCorrupt is returned when a stored collection cannot be decoded.
	ErrCorrupt = errors.New("stored collection is corrupt")

	// ErrInvalidDocument is returned for documents without id or known type.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrRemote is returned for any other remote failure.
	ErrRemote = errors.New("remote store operation failed")

	// ErrInvalidConfiguration is returned when the store settings are inconsistent.
	ErrInvalidConfiguration = errors.New("invalid store configuration")
)

// StoreError wraps errors with the failing operation and the backend name.
type StoreError struct {
	// Op is the operation that failed (e.g., "Upsert", "LoadAll").
	Op string

	// Backend names the store (file, redis, postgres).
	Backend string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	prefix := "store"
	if e.Backend != "" {
		prefix = "store[" + e.Backend + "]"
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s failed: %s: %v", prefix, e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", prefix, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, backend string, err error, details string) *StoreError {
	return &StoreError{
		Op:      op,
		Backend: backend,
		Err:     err,
		Details: details,
	}
}

// WrapStoreError wraps an error as a StoreError if it isn't already one.
func WrapStoreError(op, backend string, err error, details string) error {
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}

	return NewStoreError(op, backend, err, details)
}

// IsAdvisory reports whether err can be logged and ignored because the
// local copy of the data is intact: schema mismatches and transient
// failures of a replica.
func IsAdvisory(err error) bool {
	return errors.Is(err, ErrSchemaMismatch) || errors.Is(err, ErrTransient) || errors.Is(err, ErrRemote)
}

// undefinedColumn is the Postgres SQLSTATE for a reference to a missing column.
const undefinedColumn = "42703"

// classifyRemoteError maps a driver error onto the store taxonomy.
func classifyRemoteError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == undefinedColumn {
			return fmt.Errorf("%w: %s", ErrSchemaMismatch, pgErr.Message)
		}
		return fmt.Errorf("%w: %s (%s)", ErrRemote, pgErr.Message, pgErr.Code)
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connErr), errors.As(err, &netErr), pgconn.Timeout(err),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "column") && strings.Contains(msg, "does not exist") {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return fmt.Errorf("%w: %v", ErrRemote, err)
}
