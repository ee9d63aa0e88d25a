// Package retry provides a bounded retry helper for calls that cross the
// network boundary.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds a retried operation.
type Policy struct {
	Attempts int           // total tries, including the first
	Delay    time.Duration // wait between tries
	// Multiplier grows the delay after each failure; values <= 1 keep it constant.
	Multiplier float64
}

// DefaultPolicy matches the image URL probe: 5 tries, 2 seconds apart.
func DefaultPolicy() Policy {
	return Policy{Attempts: 5, Delay: 2 * time.Second}
}

func (p Policy) backOff() backoff.BackOff {
	if p.Multiplier <= 1 {
		return backoff.NewConstantBackOff(p.Delay)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Delay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	return b
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a Permanent error, the attempts run
// out, or ctx is done. The last error is returned.
func Do(ctx context.Context, p Policy, logger *slog.Logger, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	try := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		try++
		return struct{}{}, op(ctx)
	},
		backoff.WithBackOff(p.backOff()),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			if logger != nil {
				logger.Debug("retrying", "attempt", try, "max", attempts, "wait", wait, "error", err)
			}
		}),
	)
	return err
}
