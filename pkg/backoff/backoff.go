// Package backoff provides a bounded retry loop with linear backoff:
// attempt n waits n times the base delay before attempt n+1.
package backoff

import (
	"context"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 1 * time.Second
)

type Policy struct {
	maxAttempts int
	delay       time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

type Option func(p *Policy)

func WithMaxAttempts(maxAttempts int) func(p *Policy) {
	return func(p *Policy) {
		if maxAttempts > 0 {
			p.maxAttempts = maxAttempts
		}
	}
}

func WithDelay(delay time.Duration) func(p *Policy) {
	return func(p *Policy) {
		if delay >= 0 {
			p.delay = delay
		}
	}
}

// withSleep replaces the waiting primitive. Tests use it to avoid real delays.
func withSleep(sleep func(ctx context.Context, d time.Duration) error) func(p *Policy) {
	return func(p *Policy) {
		p.sleep = sleep
	}
}

func NewPolicy(opts ...Option) Policy {
	p := Policy{
		maxAttempts: DefaultMaxAttempts,
		delay:       DefaultDelay,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Retry runs fn up to the policy's attempt limit, waiting delay*attempt
// between consecutive attempts. It returns nil on the first success, the
// last error once attempts are exhausted, or ctx.Err() if the context is
// cancelled while waiting.
func (p Policy) Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == p.maxAttempts {
			break
		}
		if err := p.sleep(ctx, p.delay*time.Duration(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

// Retry applies the default policy adjusted by opts.
func Retry(ctx context.Context, fn func(ctx context.Context) error, opts ...Option) error {
	return NewPolicy(opts...).Retry(ctx, fn)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
