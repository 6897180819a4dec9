package simulation

import (
	"context"
	"errors"
	"time"
)

const (
	defaultMaxRetries = 2
	defaultRetryDelay = 200 * time.Millisecond
)

// RetryPolicy is a fixed-delay retry budget for stale-block reverts.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// DefaultRetryPolicy retries twice, 200ms apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: defaultMaxRetries, Delay: defaultRetryDelay}
}

func (p RetryPolicy) normalised() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}

// do runs fn until it succeeds, fails with a non-stale error, or the budget
// is exhausted. onRetry is invoked before each wait.
func (p RetryPolicy) do(ctx context.Context, fn func() error, onRetry func(attempt int, err error)) error {
	p = p.normalised()
	var attempt int
	for {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrStaleOracleBlock) || attempt >= p.MaxRetries {
			return err
		}
		attempt++
		if onRetry != nil {
			onRetry(attempt, err)
		}

		timer := time.NewTimer(p.Delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
