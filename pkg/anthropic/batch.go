// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package anthropic

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// WaitOptions controls how Wait polls a batch.
type WaitOptions struct {
	// Interval is the first polling delay. It doubles after every poll.
	Interval time.Duration

	// MaxInterval caps the polling delay.
	MaxInterval time.Duration

	// Timeout bounds the wait when ctx carries no deadline.
	Timeout time.Duration
}

// DefaultWaitOptions polls from 10s up to 60s for at most 24 hours, the
// batch API's own expiry window.
var DefaultWaitOptions = WaitOptions{
	Interval:    10 * time.Second,
	MaxInterval: 60 * time.Second,
	Timeout:     24 * time.Hour,
}

// Wait polls a batch until it ends. A batch that is canceling is reported as
// an error because its results will be incomplete.
func Wait(ctx context.Context, client Client, batchID string, opts WaitOptions) (*Batch, error) {
	if opts.Interval <= 0 {
		opts.Interval = DefaultWaitOptions.Interval
	}
	if opts.MaxInterval < opts.Interval {
		opts.MaxInterval = opts.Interval
	}
	if _, ok := ctx.Deadline(); !ok && opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	delay := opts.Interval
	for {
		batch, err := client.Batch(ctx, batchID)
		if err != nil {
			return nil, eris.Wrap(err, fmt.Sprintf("anthropic: poll batch %s", batchID))
		}
		switch batch.Status {
		case StatusEnded:
			return batch, nil
		case StatusCanceling:
			return batch, eris.Errorf("anthropic: batch %s is being canceled", batchID)
		}

		zap.L().Debug("batch still processing",
			zap.String("batch_id", batchID),
			zap.Int64("processing", batch.Counts.Processing),
			zap.Int64("succeeded", batch.Counts.Succeeded),
			zap.Duration("next_poll", delay),
		)

		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), fmt.Sprintf("anthropic: wait for batch %s", batchID))
		case <-time.After(delay):
		}

		delay *= 2
		if delay > opts.MaxInterval {
			delay = opts.MaxInterval
		}
		// +/-10% jitter so concurrent waiters spread out.
		if spread := int64(delay) / 10; spread > 0 {
			delay += time.Duration(rand.Int64N(2*spread) - spread)
		}
	}
}

// Failure is a batch item that did not succeed.
type Failure struct {
	CustomID string
	Type     string
}

// Collected holds the drained results of an ended batch.
type Collected struct {
	Succeeded map[string]*Response
	Failed    []Failure
}

// Usage sums token usage over all succeeded items.
func (c *Collected) Usage() Usage {
	var total Usage
	for _, r := range c.Succeeded {
		total = total.Add(r.Usage)
	}
	return total
}

// Drain reads every result from the iterator and closes it.
func Drain(iter ResultIterator) (*Collected, error) {
	defer iter.Close() //nolint:errcheck

	out := &Collected{Succeeded: make(map[string]*Response)}
	for iter.Next() {
		r := iter.Result()
		if r.Succeeded() {
			out.Succeeded[r.CustomID] = r.Response
			continue
		}
		out.Failed = append(out.Failed, Failure{CustomID: r.CustomID, Type: r.Type})
		zap.L().Warn("batch item did not succeed",
			zap.String("custom_id", r.CustomID),
			zap.String("type", r.Type),
		)
	}
	if err := iter.Err(); err != nil {
		return nil, eris.Wrap(err, "anthropic: drain batch results")
	}
	return out, nil
}
