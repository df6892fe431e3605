// Package retry implements a jittered-backoff policy for transient
// "store busy" contention on single-writer backends.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy describes how an operation is retried. The zero value retries nothing;
// use DefaultPolicy as a starting point.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// BaseDelay is scaled by (1 + jitter) between attempts.
	BaseDelay time.Duration
	// Jitter returns a value in [0, 1). Defaults to rand.Float64.
	Jitter func() float64
	// Retryable reports whether an error is worth another attempt.
	// Non-retryable errors propagate immediately.
	Retryable func(error) bool
	// Exhausted produces the error returned once all attempts fail.
	// It receives the last observed error.
	Exhausted func(last error) error
}

// DefaultPolicy returns the calibrated busy-retry policy.
func DefaultPolicy(retryable func(error) bool, exhausted func(error) error) Policy {
	return Policy{
		MaxAttempts: 10,
		BaseDelay:   100 * time.Millisecond,
		Retryable:   retryable,
		Exhausted:   exhausted,
	}
}

// Do runs op under the policy, sleeping baseDelay × (1 + jitter) between
// attempts. Context cancellation cuts the wait short and returns ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts <= 0 {
		return zero, fmt.Errorf("retry: policy has no attempts")
	}

	jitter := p.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}

	var last error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		v, err := op()
		if err == nil {
			return v, nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return zero, err
		}
		last = err

		delay := time.Duration(float64(p.BaseDelay) * (1 + jitter()))
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	if p.Exhausted != nil {
		return zero, p.Exhausted(last)
	}
	return zero, last
}
