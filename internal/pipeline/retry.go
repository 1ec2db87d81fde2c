package pipeline

import (
	"context"
	"fmt"
	"time"
)

// Retry defaults for a whole retraining run. A run either succeeds whole
// or, after the last attempt, fails whole; there is no partial output.
const (
	DefaultRetryAttempts = 5
	DefaultRetryDelay    = 60 * time.Second
)

// Retrier re-runs a failing operation a fixed number of times with a fixed
// delay between attempts.
type Retrier struct {
	attempts int
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a Retrier. Attempts below 1 are treated as 1.
func NewRetrier(attempts int, delay time.Duration) *Retrier {
	if attempts < 1 {
		attempts = 1
	}
	return &Retrier{
		attempts: attempts,
		delay:    delay,
		sleep:    sleepCtx,
	}
}

// WithSleep replaces the inter-attempt wait, for tests.
func (r *Retrier) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Retrier {
	r.sleep = sleep
	return r
}

// Run invokes fn until it succeeds or attempts are exhausted. The wait
// between attempts aborts early when the context is canceled.
func (r *Retrier) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if attempt > 1 {
			if err := r.sleep(ctx, r.delay); err != nil {
				return err
			}
		}
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", r.attempts, lastErr)
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
