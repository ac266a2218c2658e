// Package retry re-runs provider calls that fail with quota errors,
// doubling the delay between attempts.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/imgtranslate/internal/metrics"
	"github.com/lehigh-university-libraries/imgtranslate/internal/providers"
)

const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = 2 * time.Second
	DefaultMultiplier   = 2
)

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy controls how often and how long a quota failure is retried
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	Multiplier   float64

	// Label names the caller in logs and metrics
	Label string
	// Sleep defaults to a timer that honors context cancellation
	Sleep Sleeper
}

// DefaultPolicy returns 3 retries starting at 2s
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   DefaultMaxRetries,
		InitialDelay: DefaultInitialDelay,
		Multiplier:   DefaultMultiplier,
	}
}

// WithLabel returns a copy of p labelled for logs and metrics
func (p Policy) WithLabel(label string) Policy {
	p.Label = label
	return p
}

// Do runs op, retrying only quota-classified failures. Any other error is
// returned unchanged on first occurrence. When retries run out the last
// quota error is returned.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = contextSleep
	}
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}

	delay := p.InitialDelay
	retries := p.MaxRetries
	for {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !providers.IsQuota(err) || retries <= 0 {
			return result, err
		}

		slog.Warn("Quota error, retrying",
			"caller", p.Label,
			"delay", delay,
			"retries_left", retries,
			"err", err)
		metrics.RetriesTotal.WithLabelValues(p.Label).Inc()

		if serr := sleep(ctx, delay); serr != nil {
			return result, err
		}
		retries--
		delay = time.Duration(float64(delay) * multiplier)
	}
}

func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
