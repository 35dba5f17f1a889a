package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Ceiling(t *testing.T) {
	p := DefaultRetryPolicy()
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second},
		{40, 10 * time.Second},
		{200, 10 * time.Second},
		{-1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Ceiling(tt.attempt), "attempt %d", tt.attempt)
	}

	assert.Zero(t, RetryPolicy{}.Ceiling(3))
	uncapped := RetryPolicy{BaseDelay: time.Millisecond}
	assert.Equal(t, 8*time.Millisecond, uncapped.Ceiling(3))
}

func TestRetryPolicy_BackoffStaysWithinCeiling(t *testing.T) {
	p := DefaultRetryPolicy()

	top := func(n int64) int64 { return n - 1 }
	bottom := func(int64) int64 { return 0 }
	for attempt := 0; attempt < 6; attempt++ {
		assert.Equal(t, p.Ceiling(attempt), p.Backoff(attempt, top))
		assert.Zero(t, p.Backoff(attempt, bottom))
	}

	for i := 0; i < 500; i++ {
		attempt := i % 6
		d := p.Backoff(attempt, nil)
		require.GreaterOrEqual(t, d, time.Duration(0))
		require.LessOrEqual(t, d, p.Ceiling(attempt))
	}
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleepContext(ctx, time.Hour), ErrAborted)
	require.ErrorIs(t, sleepContext(ctx, 0), ErrAborted)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"network", &Error{Err: context.DeadlineExceeded, Timeout: true}, true},
		{"500", &Error{Status: 500}, true},
		{"503", &Error{Status: 503}, true},
		{"408", &Error{Status: 408}, true},
		{"429", &Error{Status: 429}, true},
		{"400", &Error{Status: 400}, false},
		{"404", &Error{Status: 404}, false},
		{"409", &Error{Status: 409}, false},
		{"aborted", ErrAborted, false},
		{"circuit", ErrCircuitOpen, false},
		{"unclassified", assert.AnError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
