// Package retry provides the bounded retry policy shared by adapter
// calls and offline queue flushes. Nothing is retried indefinitely.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds retries with exponential backoff.
type Policy struct {
	MaxAttempts uint
	Initial     time.Duration
	Multiplier  float64
}

// DefaultPolicy is used for all adapter traffic unless overridden.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Initial: 500 * time.Millisecond, Multiplier: 2.0}
}

// Do runs op under the policy. Wrap errors with Permanent to stop early
// (remote rejections must not be retried).
func (p Policy) Do(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.Multiplier = p.Multiplier

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, op()
	}, backoff.WithBackOff(b), backoff.WithMaxTries(p.MaxAttempts))
	return err
}

// Permanent marks err as non-retryable.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
