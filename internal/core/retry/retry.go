// Package retry bounds the re-execution of upstream calls. Only transient
// failures (source unreachable, model backend unavailable) qualify;
// deterministic failures surface on the first attempt.
package retry

import (
	"context"
	"time"

	"github.com/okechi-dev/summarly/internal/core/errs"
)

// Policy tunes retry behavior for upstream calls.
type Policy struct {
	MaxRetries     int           // additional attempts after the first
	InitialBackoff time.Duration // wait before the first retry
	Multiplier     float64       // applied to the backoff on each retry
}

// DefaultPolicy matches the pipeline contract: up to two retries with
// exponential backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     2,
		InitialBackoff: 500 * time.Millisecond,
		Multiplier:     2.0,
	}
}

// Do runs fn, retrying on retryable kinds up to the policy bound. The last
// error is returned unchanged so its kind survives.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := p.InitialBackoff
	var err error

	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil || !errs.Retryable(err) || attempt >= p.MaxRetries {
			return err
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return err
		}
		backoff = time.Duration(float64(backoff) * p.Multiplier)
	}
}
