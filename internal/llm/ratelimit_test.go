package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tryAcquire takes a token without blocking.
func (rl *rateLimiter) tryAcquire() bool {
	return rl.limiter.Allow()
}

func TestRateLimiter(t *testing.T) {
	t.Run("burst then wait", func(t *testing.T) {
		// 600 per minute refills one token every 100ms.
		rl := newRateLimiter(600)
		ctx := context.Background()

		for i := 0; i < 600; i++ {
			require.True(t, rl.tryAcquire(), "attempt %d", i+1)
		}

		start := time.Now()
		require.NoError(t, rl.wait(ctx))
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := newRateLimiter(1)
		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- rl.wait(ctx)
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		err := <-done
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limiter canceled")
	})

	t.Run("tryAcquire", func(t *testing.T) {
		rl := newRateLimiter(5)

		for i := 0; i < 5; i++ {
			assert.True(t, rl.tryAcquire(), "attempt %d", i+1)
		}
		assert.False(t, rl.tryAcquire())
	})

	t.Run("default budget", func(t *testing.T) {
		rl := newRateLimiter(0)
		for i := 0; i < 60; i++ {
			assert.True(t, rl.tryAcquire())
		}
		assert.False(t, rl.tryAcquire())
	})
}
