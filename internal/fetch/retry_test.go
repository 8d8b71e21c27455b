package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	r := Retry{MaxAttempts: 3, Backoff: time.Millisecond}
	calls := 0
	err := r.Do(context.Background(), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return Transientf("test", errors.New("throttled"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	r := Retry{MaxAttempts: 5, Backoff: time.Millisecond}
	permanent := errors.New("bad isin")
	calls := 0
	err := r.Do(context.Background(), "test", func(context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	r := Retry{MaxAttempts: 3, Backoff: time.Millisecond}
	calls := 0
	err := r.Do(context.Background(), "test", func(context.Context) error {
		calls++
		return Transientf("test", errors.New("still down"))
	})
	if err == nil || !Transient(err) {
		t.Fatalf("expected transient error after exhaustion, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryHonorsContextCancel(t *testing.T) {
	r := Retry{MaxAttempts: 10, Backoff: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := r.Do(ctx, "test", func(context.Context) error {
		calls++
		return Transientf("test", errors.New("down"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestTransientClassification(t *testing.T) {
	if Transient(errors.New("plain")) {
		t.Fatal("plain errors must not be transient")
	}
	if !Transient(Transientf("op", errors.New("x"))) {
		t.Fatal("wrapped transient not recognized")
	}
	wrapped := errors.Join(errors.New("outer"), Transientf("op", errors.New("inner")))
	if !Transient(wrapped) {
		t.Fatal("joined transient not recognized")
	}
}

func TestRetryableStatus(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout} {
		if !RetryableStatus(code) {
			t.Errorf("status %d should be retryable", code)
		}
	}
	for _, code := range []int{http.StatusOK, http.StatusNotFound, http.StatusForbidden} {
		if RetryableStatus(code) {
			t.Errorf("status %d should not be retryable", code)
		}
	}
}

func TestLimiterEnforcesDelay(t *testing.T) {
	l := NewLimiter(20 * time.Millisecond)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("limiter too permissive: 3 waits in %v", elapsed)
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter(0)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("disabled limiter still blocking: %v", elapsed)
	}
}
