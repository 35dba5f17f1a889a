package api

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryPolicy configures exponential backoff with full jitter.
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int

	// BaseDelay is the ceiling of the first backoff.
	BaseDelay time.Duration

	// MaxDelay caps every backoff.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns 3 retries, 1s base, 10s cap.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
	}
}

// Ceiling returns min(MaxDelay, BaseDelay*2^attempt) for a 0-indexed attempt.
func (p RetryPolicy) Ceiling(attempt int) time.Duration {
	if p.BaseDelay <= 0 || attempt < 0 {
		return 0
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = time.Duration(math.MaxInt64)
	}
	if attempt >= 62 || p.BaseDelay > maxDelay>>attempt {
		return maxDelay
	}
	return p.BaseDelay << attempt
}

// Backoff draws the delay before retry attempt uniformly from [0, Ceiling(attempt)].
// jitter(n) must return a value in [0, n); nil uses math/rand.
func (p RetryPolicy) Backoff(attempt int, jitter func(n int64) int64) time.Duration {
	ceiling := p.Ceiling(attempt)
	if ceiling <= 0 {
		return 0
	}
	if jitter == nil {
		jitter = rand.Int64N
	}
	n := int64(ceiling)
	if n < math.MaxInt64 {
		n++
	}
	return time.Duration(jitter(n))
}

// sleepContext waits for d or until ctx ends.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrAborted, err)
		}
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrAborted, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// retry runs fn until it succeeds, fails terminally or the policy is
// exhausted, and returns the number of retries made.
func (c *Client) retry(ctx context.Context, method, path string, fn func(ctx context.Context) error) (int, error) {
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return attempt, nil
		}
		if !IsRetryable(err) || attempt >= c.policy.MaxRetries {
			return attempt, err
		}

		delay := c.policy.Backoff(attempt, c.jitter)
		c.log.WithFields(logrus.Fields{
			"method":  method,
			"path":    path,
			"attempt": attempt + 1,
			"delay":   delay.String(),
		}).WithError(err).Debug("retrying request")
		c.metrics.retry()

		if err := c.sleep(ctx, delay); err != nil {
			return attempt, err
		}
	}
}
