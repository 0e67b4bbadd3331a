// Package retry provides bounded retry with exponential backoff for
// calls to external providers.
package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/logger"
)

// Policy bounds the retry loop. Attempts counts the total number of
// tries, not the number of retries.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as non-retryable. Do returns the wrapped error
// immediately when fn fails with one.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn up to p.Attempts times, doubling the delay after each
// failure. It stops early on a Permanent error or when ctx is done,
// and always returns the error from the last attempt unwrapped from
// the permanent marker.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	log := logger.FromContext(ctx)
	delay := p.BaseDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == attempts {
			break
		}

		log.Warn("retrying after transient failure",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
