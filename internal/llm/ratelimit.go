package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter spaces provider calls to a requests-per-minute budget with a
// burst of the full budget.
type rateLimiter struct {
	limiter *rate.Limiter
}

// newRateLimiter creates a new rate limiter with the specified requests per minute.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	every := time.Minute / time.Duration(requestsPerMinute)
	return &rateLimiter{limiter: rate.NewLimiter(rate.Every(every), requestsPerMinute)}
}

// wait blocks until a token is available or the context is done.
func (rl *rateLimiter) wait(ctx context.Context) error {
	if err := rl.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter canceled: %w", err)
	}
	return nil
}
