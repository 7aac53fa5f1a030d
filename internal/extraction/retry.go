package extraction

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"

	"stockledger/internal/logger"
)

// Retrying bounds every call of an inner extractor with a timeout and
// retries once after a fixed backoff when the failure is retryable. Results
// have their dates normalized.
type Retrying struct {
	inner   Extractor
	timeout time.Duration
	backoff time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewRetrying wraps inner. Zero durations fall back to the defaults.
func NewRetrying(inner Extractor, timeout, backoff time.Duration) *Retrying {
	def := DefaultConfig()
	if timeout <= 0 {
		timeout = def.Timeout
	}
	if backoff < 0 {
		backoff = def.RetryBackoff
	}
	return &Retrying{
		inner:   inner,
		timeout: timeout,
		backoff: backoff,
		now:     time.Now,
		log:     logger.WithComponent("extraction"),
	}
}

// Extract implements Extractor.
func (r *Retrying) Extract(ctx context.Context, content []byte, mimeType string) ([]RawDocument, error) {
	const op = "Extract"

	if len(content) == 0 {
		return nil, WrapExtractionError(op, "", ErrEmpty, "empty file")
	}
	if len(content) > MaxDocumentSizeBytes {
		return nil, WrapExtractionError(op, "", ErrDocumentTooLarge, "file exceeds 20MB")
	}

	docs, err := r.attempt(ctx, content, mimeType)
	if err != nil && IsRetryable(err) && ctx.Err() == nil {
		r.log.Warn().
			Err(err).
			Dur("backoff", r.backoff).
			Msg("Extraction attempt failed, retrying once")

		select {
		case <-ctx.Done():
			return nil, WrapExtractionError(op, "", ctx.Err(), "canceled during retry backoff")
		case <-time.After(r.backoff):
		}

		docs, err = r.attempt(ctx, content, mimeType)
	}
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, WrapExtractionError(op, "", ErrEmpty, "no documents found")
	}

	r.log.Info().
		Int("documents", len(docs)).
		Str("mime_type", mimeType).
		Msg("Extraction completed")

	return NormalizeDates(docs, r.now()), nil
}

func (r *Retrying) attempt(ctx context.Context, content []byte, mimeType string) ([]RawDocument, error) {
	const op = "attempt"

	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		docs []RawDocument
		err  error
	}
	done := make(chan result, 1)

	go func() {
		docs, err := r.inner.Extract(attemptCtx, content, mimeType)
		done <- result{docs, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, classify(op, attemptCtx, ctx, res.err)
		}
		return res.docs, nil
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return nil, WrapExtractionError(op, "", ctx.Err(), "canceled")
		}
		return nil, WrapExtractionError(op, "", ErrTimeout, r.timeout.String())
	}
}

// classify maps backend failures onto the retry taxonomy.
func classify(op string, attemptCtx, parent context.Context, err error) error {
	if IsRetryable(err) {
		return err
	}
	if parent.Err() != nil {
		return WrapExtractionError(op, "", parent.Err(), "canceled")
	}
	if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() != nil {
		return NewExtractionError(op, "", ErrTimeout, err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewExtractionError(op, "", ErrTransient, err.Error())
	}
	return err
}
