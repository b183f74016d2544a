// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm sends rate-limited, retried prompts through an anthropic.Client
// and decodes JSON replies. Malformed replies are retried like transient
// transport errors.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/edu-benchmark-mapper/internal/metrics"
	"github.com/pdiddy/edu-benchmark-mapper/internal/resilience"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/anthropic"
)

// Options configures a Messenger.
type Options struct {
	// Model is the Anthropic model ID.
	Model string

	// MaxTokens caps the reply length.
	MaxTokens int64

	// RequestsPerSecond throttles calls. Zero or less disables throttling.
	RequestsPerSecond float64

	// MaxAttempts counts the first call. Zero uses the resilience default.
	MaxAttempts int

	// Stage names the pipeline stage in logs.
	Stage string

	// CacheSystem enables prompt caching on the system block.
	CacheSystem bool
}

// Messenger wraps a Client with throttling, retries, and usage accounting.
// It is safe for concurrent use.
type Messenger struct {
	client  anthropic.Client
	opts    Options
	limiter *rate.Limiter
	policy  resilience.Policy
}

// New returns a Messenger for client.
func New(client anthropic.Client, opts Options) *Messenger {
	m := &Messenger{client: client, opts: opts, policy: resilience.DefaultPolicy()}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		m.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	if opts.MaxAttempts > 0 {
		m.policy.MaxAttempts = opts.MaxAttempts
	}
	m.policy.OnRetry = resilience.LogRetries("llm."+opts.Stage, zap.String("model", opts.Model))
	return m
}

// WithPolicy replaces the retry policy. OnRetry is kept when p leaves it nil.
func (m *Messenger) WithPolicy(p resilience.Policy) *Messenger {
	if p.OnRetry == nil {
		p.OnRetry = m.policy.OnRetry
	}
	m.policy = p
	return m
}

// Model returns the configured model ID.
func (m *Messenger) Model() string { return m.opts.Model }

// Request builds the request Messenger would send for a prompt pair.
func (m *Messenger) Request(system, user string) anthropic.Request {
	return anthropic.Request{
		Model:       m.opts.Model,
		MaxTokens:   m.opts.MaxTokens,
		System:      system,
		User:        user,
		CacheSystem: m.opts.CacheSystem,
	}
}

// Complete sends one prompt and returns the reply text.
func (m *Messenger) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := resilience.DoVal(ctx, m.policy, func(ctx context.Context) (*anthropic.Response, error) {
		return m.send(ctx, system, user)
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// CompleteJSON sends one prompt and decodes the reply into out. Each check
// then inspects out; a failed check marks the reply malformed. Malformed
// replies are retried under the same policy as API errors.
func (m *Messenger) CompleteJSON(ctx context.Context, system, user string, out any, checks ...func() error) error {
	return resilience.Do(ctx, m.policy, func(ctx context.Context) error {
		resp, err := m.send(ctx, system, user)
		if err != nil {
			return err
		}
		if err := Decode(resp.Text, out); err != nil {
			return err
		}
		for _, check := range checks {
			if err := check(); err != nil {
				return &ReplyError{Raw: resp.Text, Err: resilience.Malformed(err)}
			}
		}
		return nil
	})
}

func (m *Messenger) send(ctx context.Context, system, user string) (*anthropic.Response, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "llm: rate limiter")
		}
	}
	resp, err := m.client.Send(ctx, m.Request(system, user))
	if err != nil {
		return nil, err
	}
	Record(resp.Usage)
	return resp, nil
}

// Record adds usage to the token counters.
func Record(u anthropic.Usage) {
	metrics.LLMTokens.WithLabelValues("input").Add(float64(u.InputTokens + u.CacheWriteTokens + u.CacheReadTokens))
	metrics.LLMTokens.WithLabelValues("output").Add(float64(u.OutputTokens))
}

var (
	fenceOpen  = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
)

// CleanJSON strips markdown fences and any prose around the outermost JSON
// object or array.
func CleanJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = fenceOpen.ReplaceAllString(s, "")
		s = fenceClose.ReplaceAllString(s, "")
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

// ReplyError carries the raw reply of a model response that could not be
// used.
type ReplyError struct {
	Raw string
	Err error
}

func (e *ReplyError) Error() string { return e.Err.Error() }

func (e *ReplyError) Unwrap() error { return e.Err }

// Raw returns the raw reply attached to err, if any.
func Raw(err error) string {
	var re *ReplyError
	if errors.As(err, &re) {
		return re.Raw
	}
	return ""
}

// Decode cleans text and unmarshals it into out. Failures are ReplyErrors
// wrapping resilience.ErrMalformedResponse.
func Decode(text string, out any) error {
	cleaned := CleanJSON(text)
	if cleaned == "" {
		return &ReplyError{Raw: text, Err: resilience.Malformed(eris.New("empty reply"))}
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &ReplyError{Raw: text, Err: resilience.Malformed(err)}
	}
	return nil
}
