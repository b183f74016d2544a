// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmtest provides a scripted stand-in for llm.Messenger.
package llmtest

import (
	"context"
	"sync"

	"github.com/pdiddy/edu-benchmark-mapper/internal/llm"
	"github.com/pdiddy/edu-benchmark-mapper/internal/resilience"
)

// Scripted answers each prompt with Reply(system, user). It makes a single
// attempt per call, so failing checks surface immediately as errors.
type Scripted struct {
	Reply func(system, user string) (string, error)

	mu    sync.Mutex
	calls []string
}

// Constant returns a Scripted that always replies with text.
func Constant(text string) *Scripted {
	return &Scripted{Reply: func(string, string) (string, error) { return text, nil }}
}

// Complete returns the scripted reply.
func (s *Scripted) Complete(_ context.Context, system, user string) (string, error) {
	s.record(user)
	return s.Reply(system, user)
}

// CompleteJSON decodes the scripted reply into out and runs checks.
func (s *Scripted) CompleteJSON(_ context.Context, system, user string, out any, checks ...func() error) error {
	s.record(user)
	text, err := s.Reply(system, user)
	if err != nil {
		return err
	}
	if err := llm.Decode(text, out); err != nil {
		return err
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return &llm.ReplyError{Raw: text, Err: resilience.Malformed(err)}
		}
	}
	return nil
}

// Calls returns the user prompts seen so far.
func (s *Scripted) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Scripted) record(user string) {
	s.mu.Lock()
	s.calls = append(s.calls, user)
	s.mu.Unlock()
}
