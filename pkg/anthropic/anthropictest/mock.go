// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package anthropictest provides test doubles for the anthropic.Client
// interface.
package anthropictest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pdiddy/edu-benchmark-mapper/pkg/anthropic"
)

// MockClient implements anthropic.Client with testify expectations.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Send(ctx context.Context, req anthropic.Request) (*anthropic.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.Response), args.Error(1)
}

func (m *MockClient) SubmitBatch(ctx context.Context, items []anthropic.BatchItem) (*anthropic.Batch, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.Batch), args.Error(1)
}

func (m *MockClient) Batch(ctx context.Context, batchID string) (*anthropic.Batch, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.Batch), args.Error(1)
}

func (m *MockClient) Results(ctx context.Context, batchID string) (anthropic.ResultIterator, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(anthropic.ResultIterator), args.Error(1)
}

// SliceIterator replays a fixed list of results.
type SliceIterator struct {
	Items  []anthropic.Result
	Error  error
	Closed bool

	pos int
}

// NewSliceIterator returns an iterator over items.
func NewSliceIterator(items ...anthropic.Result) *SliceIterator {
	return &SliceIterator{Items: items}
}

func (it *SliceIterator) Next() bool {
	if it.pos >= len(it.Items) {
		return false
	}
	it.pos++
	return true
}

func (it *SliceIterator) Result() anthropic.Result { return it.Items[it.pos-1] }
func (it *SliceIterator) Err() error               { return it.Error }

func (it *SliceIterator) Close() error {
	it.Closed = true
	return nil
}

// Text builds a succeeded response carrying text.
func Text(text string) *anthropic.Response {
	return &anthropic.Response{
		ID:         "msg_test",
		Text:       text,
		StopReason: "end_turn",
		Usage:      anthropic.Usage{InputTokens: 100, OutputTokens: 20},
	}
}
