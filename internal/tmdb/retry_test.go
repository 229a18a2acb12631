package tmdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	var slept []time.Duration
	r := Retry{Attempts: 3, Delay: 10 * time.Millisecond, Sleep: func(d time.Duration) { slept = append(slept, d) }}

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestRetryLinearBackoff(t *testing.T) {
	var slept []time.Duration
	r := Retry{Attempts: 3, Delay: 10 * time.Millisecond, Sleep: func(d time.Duration) { slept = append(slept, d) }}

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, slept)
}

func TestRetryExhaustion(t *testing.T) {
	var slept []time.Duration
	r := Retry{Attempts: 3, Delay: time.Millisecond, Sleep: func(d time.Duration) { slept = append(slept, d) }}

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return errors.New("boom")
	})

	require.Error(t, err)
	// never a 4th attempt, and no pointless sleep after the last one
	assert.Equal(t, 3, calls)
	assert.Len(t, slept, 2)
}

func TestRetryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := Retry{Attempts: 3, Delay: time.Millisecond, Sleep: func(time.Duration) {}}

	calls := 0
	err := r.Do(ctx, func() error {
		calls++
		return errors.New("boom")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
