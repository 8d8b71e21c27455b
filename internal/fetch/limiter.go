package fetch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum delay between consecutive outbound fetches,
// shared across funds, so upstream endpoints are never hammered.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter builds a limiter allowing one fetch per minDelay. A zero or
// negative delay disables limiting.
func NewLimiter(minDelay time.Duration) *Limiter {
	if minDelay <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(minDelay), 1)}
}

// Wait blocks until the next fetch is allowed or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
