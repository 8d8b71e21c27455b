package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// TransientError marks a failure worth retrying: rate limiting, upstream
// 5xx, timeouts.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transientf wraps an error as retryable.
func Transientf(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// Transient reports whether err is retryable. Network timeouts count
// even when not explicitly wrapped.
func Transient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// RetryableStatus reports whether an HTTP status should be retried,
// matching the upstreams' throttling behaviour.
func RetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Retry is a scoped retry policy wrapping any fallible fetch call,
// decoupled from the business logic that uses it.
type Retry struct {
	// MaxAttempts counts the first try. Values below 1 mean one attempt.
	MaxAttempts int
	// Backoff is the delay before the first retry; it doubles each time.
	Backoff time.Duration
}

// DefaultRetry is three attempts with exponential backoff starting at one
// second, enough to ride out the upstreams' brief throttling windows.
func DefaultRetry() Retry {
	return Retry{MaxAttempts: 3, Backoff: time.Second}
}

// Do runs fn until it succeeds, returns a non-transient error, the
// attempts are exhausted, or ctx is cancelled.
func (r Retry) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := r.Backoff

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !Transient(err) || attempt == attempts {
			return err
		}
		slog.Debug("retrying after transient failure",
			"op", op, "attempt", attempt, "backoff", backoff, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
