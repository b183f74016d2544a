// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workpool runs a function over a slice with bounded concurrency and
// periodic checkpointing. Results are delivered to a single sink one at a
// time, so sinks need no locking of their own.
package workpool

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options controls a Run.
type Options struct {
	// Workers bounds concurrent calls. Values below 1 mean 1.
	Workers int

	// FlushEvery calls Flush after this many completed items. Zero flushes
	// only at the end.
	FlushEvery int

	// Flush persists progress. It runs under the sink lock. Optional.
	Flush func() error

	// Name labels progress logs.
	Name string
}

// Run calls fn for every item and passes each result to sink. An error from
// fn cancels the remaining work. Flush runs once more after the last item,
// including when ctx is canceled, so completed work is never lost.
func Run[T, R any](ctx context.Context, items []T, opts Options, fn func(context.Context, T) (R, error), sink func(T, R)) error {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu        sync.Mutex
		done      int
		flushErr  error
		sinceSave int
	)

	flush := func() {
		if opts.Flush == nil {
			return
		}
		if err := opts.Flush(); err != nil && flushErr == nil {
			flushErr = err
		}
		sinceSave = 0
	}

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := fn(gctx, item)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			sink(item, res)
			done++
			sinceSave++
			if opts.FlushEvery > 0 && sinceSave >= opts.FlushEvery {
				flush()
				zap.L().Info("checkpoint",
					zap.String("pool", opts.Name),
					zap.Int("done", done),
					zap.Int("total", len(items)),
				)
			}
			return nil
		})
	}

	runErr := g.Wait()

	mu.Lock()
	if sinceSave > 0 || done == 0 {
		flush()
	}
	mu.Unlock()

	if runErr != nil {
		return eris.Wrap(runErr, "workpool: "+opts.Name)
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "workpool: "+opts.Name)
	}
	if flushErr != nil {
		return eris.Wrap(flushErr, "workpool: flush")
	}
	return nil
}
