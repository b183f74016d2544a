// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resilience expresses retry as an explicit policy wrapped around a
// fallible call. Transient failures (rate limits, 5xx, timeouts, malformed
// model output) are retried with exponential backoff and jitter; anything
// else is returned on the first failure.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Policy controls how many times a call is attempted and how long to wait
// between attempts.
type Policy struct {
	// MaxAttempts counts the first try. 1 disables retries. Default 3.
	MaxAttempts int

	// InitialBackoff is the wait before the second attempt. Default 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps any single wait. Default 60s.
	MaxBackoff time.Duration

	// Multiplier grows the wait per attempt. Default 2.
	Multiplier float64

	// Jitter randomizes each wait by up to this fraction (0.25 = ±25%).
	Jitter float64

	// Retryable decides whether an error is worth another attempt.
	// Nil means IsTransient.
	Retryable func(error) bool

	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error)
}

// DefaultPolicy returns the policy used for LLM calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     60 * time.Second,
		Multiplier:     2,
		Jitter:         0.25,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, exhausts the
// policy, or ctx is done. The last error is returned on failure.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	_, err := DoVal(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for calls that produce a value.
func DoVal[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	p = p.withDefaults()
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var zero T
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		var v T
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil || !retryable(err) || attempt == p.MaxAttempts-1 {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err)
		}

		timer := time.NewTimer(p.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		case <-timer.C:
		}
	}
	return zero, err
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = d.InitialBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = d.MaxBackoff
	}
	if p.Multiplier <= 0 {
		p.Multiplier = d.Multiplier
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	return p
}

// Backoff returns the wait after the given zero-based attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.withDefaults()
	delay := float64(p.InitialBackoff) * math.Pow(p.Multiplier, float64(attempt))
	delay = math.Min(delay, float64(p.MaxBackoff))
	if p.Jitter > 0 {
		delay += (rand.Float64()*2 - 1) * delay * p.Jitter
	}
	return time.Duration(math.Max(delay, 0))
}

// LogRetries returns an OnRetry callback that logs through zap.
func LogRetries(operation string, fields ...zap.Field) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying",
			append([]zap.Field{
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Error(err),
			}, fields...)...,
		)
	}
}
