package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"
)

func noSleep(_ context.Context, _ time.Duration) error {
	return nil
}

func TestRetrier_SucceedsOnLastAttempt(t *testing.T) {
	var sleeps []time.Duration
	r := NewRetrier(5, 60*time.Second).
		WithSleep(func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		})

	calls := 0
	err := r.Run(context.Background(), func(_ context.Context) error {
		calls++
		if calls < 5 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success on 5th attempt, got %v", err)
	}
	if calls != 5 {
		t.Errorf("Expected 5 calls, got %d", calls)
	}
	if len(sleeps) != 4 {
		t.Fatalf("Expected 4 waits, got %d", len(sleeps))
	}
	for _, d := range sleeps {
		if d != 60*time.Second {
			t.Errorf("Expected 60s delay, got %v", d)
		}
	}
}

func TestRetrier_ExhaustsAttempts(t *testing.T) {
	r := NewRetrier(5, time.Minute).WithSleep(noSleep)

	sentinel := errors.New("permanent")
	calls := 0
	err := r.Run(context.Background(), func(_ context.Context) error {
		calls++
		return sentinel
	})

	if calls != 5 {
		t.Errorf("Expected exactly 5 calls, got %d", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected wrapped sentinel error, got %v", err)
	}
}

func TestRetrier_FirstAttemptHasNoDelay(t *testing.T) {
	slept := false
	r := NewRetrier(3, time.Minute).
		WithSleep(func(_ context.Context, _ time.Duration) error {
			slept = true
			return nil
		})

	err := r.Run(context.Background(), func(_ context.Context) error { return nil })
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if slept {
		t.Error("First attempt should run without waiting")
	}
}

func TestRetrier_CanceledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	r := NewRetrier(5, time.Minute).
		WithSleep(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		})

	calls := 0
	err := r.Run(ctx, func(_ context.Context) error {
		calls++
		return errors.New("transient")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call before cancellation, got %d", calls)
	}
}

func TestRetrier_MinimumOneAttempt(t *testing.T) {
	r := NewRetrier(0, time.Minute).WithSleep(noSleep)

	calls := 0
	_ = r.Run(context.Background(), func(_ context.Context) error {
		calls++
		return errors.New("fail")
	})
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}
