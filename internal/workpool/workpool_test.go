// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CollectsAll(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	sum := 0
	flushes := 0

	err := Run(context.Background(), items, Options{
		Workers:    3,
		FlushEvery: 3,
		Flush:      func() error { flushes++; return nil },
		Name:       "test",
	}, func(_ context.Context, n int) (int, error) {
		return n * n, nil
	}, func(_ int, sq int) {
		sum += sq
	})

	require.NoError(t, err)
	assert.Equal(t, 140, sum)
	// two periodic flushes (after 3 and 6) and one final flush for the 7th.
	assert.Equal(t, 3, flushes)
}

func TestRun_BoundedConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	items := make([]int, 20)

	err := Run(context.Background(), items, Options{Workers: 2}, func(_ context.Context, _ int) (struct{}, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		active.Add(-1)
		return struct{}{}, nil
	}, func(int, struct{}) {})

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_ErrorStopsAndFlushes(t *testing.T) {
	boom := errors.New("boom")
	flushed := false

	err := Run(context.Background(), []int{1, 2, 3}, Options{
		Workers: 1,
		Flush:   func() error { flushed = true; return nil },
	}, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	}, func(int, int) {})

	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.True(t, flushed)
}

func TestRun_FlushError(t *testing.T) {
	err := Run(context.Background(), []int{1}, Options{
		Flush: func() error { return errors.New("disk full") },
	}, func(_ context.Context, n int) (int, error) { return n, nil }, func(int, int) {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Run(ctx, []int{1, 2, 3}, Options{}, func(_ context.Context, n int) (int, error) {
		calls++
		return n, nil
	}, func(int, int) {})

	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestRun_Empty(t *testing.T) {
	flushed := false
	err := Run(context.Background(), []string{}, Options{
		Flush: func() error { flushed = true; return nil },
	}, func(_ context.Context, s string) (string, error) { return s, nil }, func(string, string) {})
	require.NoError(t, err)
	assert.True(t, flushed)
}
