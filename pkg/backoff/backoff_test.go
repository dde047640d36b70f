package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	var delays []time.Duration
	policy := NewPolicy(
		WithMaxAttempts(5),
		WithDelay(100*time.Millisecond),
		withSleep(func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		}),
	)

	calls := 0
	err := policy.Retry(context.Background(), func(_ context.Context) error {
		calls++
		if calls <= 2 {
			return errors.New("broker unreachable")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, delays)
}

func TestRetryExhaustsAttemptsAndReturnsLastError(t *testing.T) {
	var delays []time.Duration
	policy := NewPolicy(
		WithMaxAttempts(3),
		WithDelay(time.Second),
		withSleep(func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		}),
	)

	calls := 0
	lastErr := errors.New("attempt 3 failed")
	err := policy.Retry(context.Background(), func(_ context.Context) error {
		calls++
		if calls == 3 {
			return lastErr
		}
		return errors.New("earlier failure")
	})

	require.ErrorIs(t, err, lastErr)
	assert.Equal(t, 3, calls)
	// no wait after the final attempt
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestRetryFirstAttemptSuccessSkipsWaiting(t *testing.T) {
	policy := NewPolicy(withSleep(func(_ context.Context, _ time.Duration) error {
		t.Fatal("sleep must not be called")
		return nil
	}))

	calls := 0
	err := policy.Retry(context.Background(), func(_ context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Retry(ctx, func(_ context.Context) error {
		calls++
		cancel()
		return errors.New("failure before cancellation")
	}, WithDelay(10*time.Millisecond))

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
