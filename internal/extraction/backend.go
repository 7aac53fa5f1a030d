package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// classifyBackendError converts API errors to extraction errors the retry
// wrapper understands.
func classifyBackendError(op, backend string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return WrapExtractionError(op, backend, err, "processing was canceled")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return WrapExtractionError(op, backend, ErrTimeout, "processing timeout")
	}

	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"), strings.Contains(errStr, "PermissionDenied"),
		strings.Contains(errStr, "401"), strings.Contains(errStr, "API key not valid"):
		return WrapExtractionError(op, backend, ErrInvalidCredentials, errStr)
	case strings.Contains(errStr, "QUOTA_EXCEEDED"), strings.Contains(errStr, "RESOURCE_EXHAUSTED"),
		strings.Contains(errStr, "429"):
		return WrapExtractionError(op, backend, ErrQuotaExceeded, errStr)
	case strings.Contains(errStr, "INVALID_ARGUMENT"), strings.Contains(errStr, "InvalidArgument"):
		return WrapExtractionError(op, backend, ErrUnsupportedFormat, "document format not supported or corrupted")
	case strings.Contains(errStr, "DeadlineExceeded"), strings.Contains(errStr, "deadline exceeded"):
		return WrapExtractionError(op, backend, ErrTimeout, "processing timeout")
	case strings.Contains(errStr, "UNAVAILABLE"), strings.Contains(errStr, "Unavailable"),
		strings.Contains(errStr, "503"), strings.Contains(errStr, "connection reset"),
		strings.Contains(errStr, "connection refused"), strings.Contains(errStr, "EOF"):
		return WrapExtractionError(op, backend, ErrTransient, errStr)
	default:
		return WrapExtractionError(op, backend, err, fmt.Sprintf("%s call failed", backend))
	}
}
