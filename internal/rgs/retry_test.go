package rgs

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetryStopsAfterFourTries(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), defaultRetryTries, time.Millisecond, retryable,
		func(ctx context.Context) error {
			calls++
			return newError(KindTransient, "still down", nil)
		})

	if calls != 4 {
		t.Fatalf("calls = %d, want 4", calls)
	}
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindTransient {
		t.Fatalf("err = %v, want transient", err)
	}
}

func TestWithRetryReturnsFirstNonRetryable(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), defaultRetryTries, time.Millisecond, retryable,
		func(ctx context.Context) error {
			calls++
			return newError(KindInsufficientBalance, "no funds", nil)
		})

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindInsufficientBalance {
		t.Fatalf("err = %v", err)
	}
}

func TestWithRetrySucceedsMidway(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), defaultRetryTries, time.Millisecond, retryable,
		func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return newError(KindTransient, "warming up", nil)
			}
			return nil
		})

	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestWithRetryHonorsContextDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := withRetry(ctx, defaultRetryTries, time.Hour, retryable,
		func(ctx context.Context) error {
			calls++
			return newError(KindTransient, "down", nil)
		})

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
