package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quick(attempts int, onRetry func(int, error, time.Duration)) *Retrier {
	return New(Config{
		Attempts:     attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
		OnRetry:      onRetry,
	})
}

func TestRetrier_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := quick(5, nil).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrier_RetriesUntilExhausted(t *testing.T) {
	var attempts []int
	r := quick(6, func(attempt int, _ error, _ time.Duration) {
		attempts = append(attempts, attempt)
	})

	err := r.Do(context.Background(), func(context.Context) error {
		return errors.New("connection refused")
	})

	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, []int{1, 2, 3, 4, 5}, attempts)
}

func TestRetrier_PermanentErrorStopsAtFirstAttempt(t *testing.T) {
	parse := errors.New("invalid port")
	calls, retries := 0, 0
	r := quick(6, func(int, error, time.Duration) { retries++ })

	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return fmt.Errorf("postgres: %w", Permanent(parse))
	})

	assert.ErrorIs(t, err, parse)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, calls)
	assert.Zero(t, retries)
}

func TestRetrier_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := quick(10, nil).Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("dial tcp: timeout")
	})

	assert.EqualError(t, err, "dial tcp: timeout")
	assert.Equal(t, 1, calls)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	assert.False(t, IsPermanent(errors.New("plain")))
}

func TestStartupRetrier_Schedule(t *testing.T) {
	r := StartupRetrier(nil)
	assert.Equal(t, 6, r.config.Attempts)

	r.config.Jitter = 0
	assert.Equal(t, 500*time.Millisecond, r.delay(1))
	assert.Equal(t, 2*time.Second, r.delay(3))
	assert.Equal(t, 8*time.Second, r.delay(10))
}
