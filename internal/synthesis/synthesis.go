// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesis turns planned jobs into per-group State-of-the-Art
// analyses. Jobs are submitted through the Message Batches API (or sent one
// at a time in realtime mode), collected into analysis JSON and Markdown
// files, and sub-batch results for one group are merged on regeneration.
package synthesis

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/internal/llm"
	"github.com/pdiddy/edu-benchmark-mapper/internal/metrics"
	"github.com/pdiddy/edu-benchmark-mapper/internal/planner"
	"github.com/pdiddy/edu-benchmark-mapper/internal/resilience"
	"github.com/pdiddy/edu-benchmark-mapper/internal/taxonomy"
	"github.com/pdiddy/edu-benchmark-mapper/internal/workpool"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/anthropic"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

var (
	// ErrNoCredentials means no Anthropic API key is configured.
	ErrNoCredentials = eris.New("synthesis: no Anthropic API key configured")

	// ErrNoBatches means nothing has been submitted yet.
	ErrNoBatches = eris.New("synthesis: no batches submitted")

	// ErrNoJobs means the plan is empty.
	ErrNoJobs = eris.New("synthesis: no jobs to run")
)

// rawTextLimit bounds the raw reply kept for a result that failed to parse.
const rawTextLimit = 2000

// Result statuses in a batch results file.
const (
	StatusSuccess    = "success"
	StatusParseError = "parse_error"
	StatusAPIError   = "api_error"
)

// StatusSaveError labels results that parsed but whose analysis could not
// be saved. It never appears in a results file.
const StatusSaveError = "save_error"

// ResultEntry is one item of a batch_<id>_results.json file.
type ResultEntry struct {
	Status    string                 `json:"status"`
	Data      *types.SynthesisResult `json:"data,omitempty"`
	RawText   string                 `json:"raw_text,omitempty"`
	ErrorType string                 `json:"error_type,omitempty"`
}

// Runner drives the synthesis lifecycle for one research directory.
type Runner struct {
	client    anthropic.Client
	tax       *taxonomy.Taxonomy
	dir       string
	model     string
	maxTokens int64
	workers   int
	messenger *llm.Messenger
	wait      anthropic.WaitOptions
	policy    *resilience.Policy
	now       func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithClient replaces the SDK-backed client. No API key is needed when one
// is supplied.
func WithClient(c anthropic.Client) Option {
	return func(r *Runner) { r.client = c }
}

// WithWorkers sets realtime concurrency.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// WithWaitOptions changes how Wait polls a batch.
func WithWaitOptions(w anthropic.WaitOptions) Option {
	return func(r *Runner) { r.wait = w }
}

// WithRetryPolicy replaces the realtime retry policy.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(r *Runner) { r.policy = &p }
}

// NewRunner returns a Runner writing to dir. A Runner without credentials
// can still preview jobs; calls that reach the API return ErrNoCredentials.
func NewRunner(cfg types.SynthesisConfig, dir string, tax *taxonomy.Taxonomy, opts ...Option) *Runner {
	r := &Runner{
		tax:       tax,
		dir:       dir,
		model:     cfg.Model,
		maxTokens: int64(cfg.OutputReserve),
		workers:   1,
		wait:      anthropic.DefaultWaitOptions,
		now:       time.Now,
	}
	if r.maxTokens <= 0 {
		r.maxTokens = planner.DefaultOutputReserve
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil && cfg.APIKey != "" {
		r.client = anthropic.New(cfg.APIKey)
	}
	if r.client != nil {
		r.messenger = llm.New(r.client, llm.Options{
			Model:             cfg.Model,
			MaxTokens:         r.maxTokens,
			RequestsPerSecond: cfg.RequestsPerSecond,
			MaxAttempts:       cfg.MaxRetries,
			Stage:             "synthesis",
		})
		if r.policy != nil {
			r.messenger.WithPolicy(*r.policy)
		}
	}
	return r
}

// Items builds one batch request per job.
func (r *Runner) Items(jobs []types.BatchJob) ([]anthropic.BatchItem, error) {
	items := make([]anthropic.BatchItem, 0, len(jobs))
	for _, j := range jobs {
		system, user, err := Prompt(j, r.tax)
		if err != nil {
			return nil, eris.Wrapf(err, "synthesis: render prompt for %s", j.ID)
		}
		items = append(items, anthropic.BatchItem{
			CustomID: j.ID,
			Request: anthropic.Request{
				Model:     r.model,
				MaxTokens: r.maxTokens,
				System:    system,
				User:      user,
			},
		})
	}
	return items, nil
}

// Estimate is the projected size and cost of submitting jobs as a batch.
type Estimate struct {
	InputTokens  int64
	OutputTokens int64
	CostUSD      float64
}

// Estimate projects input tokens from the plan and output tokens from the
// per-request maximum, priced at the batch discount.
func (r *Runner) Estimate(jobs []types.BatchJob) Estimate {
	var u anthropic.Usage
	for _, j := range jobs {
		u.InputTokens += int64(j.EstimatedTokens)
	}
	u.OutputTokens = int64(len(jobs)) * r.maxTokens
	return Estimate{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens, CostUSD: u.Cost(r.model, true)}
}

type sampleMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sampleParams struct {
	Model     string          `json:"model"`
	MaxTokens int64           `json:"max_tokens"`
	System    string          `json:"system"`
	Messages  []sampleMessage `json:"messages"`
}

type sampleRequest struct {
	CustomID string       `json:"custom_id"`
	Params   sampleParams `json:"params"`
}

// Submit sends jobs as one Message Batch and records its state. With dryRun
// it prints the estimate, writes the first request to sample_request.json,
// and returns a nil state.
func (r *Runner) Submit(ctx context.Context, jobs []types.BatchJob, dryRun bool, w io.Writer) (*types.JobState, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}
	items, err := r.Items(jobs)
	if err != nil {
		return nil, err
	}

	est := r.Estimate(jobs)
	fmt.Fprintf(w, "total input tokens:  ~%d\n", est.InputTokens)
	fmt.Fprintf(w, "total output tokens: ~%d (max)\n", est.OutputTokens)
	fmt.Fprintf(w, "estimated cost:      ~$%.2f\n", est.CostUSD)

	if dryRun {
		first := items[0]
		sample := sampleRequest{
			CustomID: first.CustomID,
			Params: sampleParams{
				Model:     first.Request.Model,
				MaxTokens: first.Request.MaxTokens,
				System:    first.Request.System,
				Messages:  []sampleMessage{{Role: "user", Content: first.Request.User}},
			},
		}
		path := filepath.Join(r.dir, "sample_request.json")
		if err := jsonfile.Write(path, sample); err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "dry run: no API calls made; sample request saved to %s\n", path)
		return nil, nil
	}
	if r.client == nil {
		return nil, ErrNoCredentials
	}

	batch, err := r.client.SubmitBatch(ctx, items)
	if err != nil {
		return nil, err
	}
	state := types.JobState{
		JobID:        batch.ID,
		Status:       types.JobSubmitted,
		RequestCount: len(items),
		CreatedAt:    batch.CreatedAt,
		MemberIDs:    make([]string, len(items)),
		RunID:        uuid.NewString(),
	}
	if state.CreatedAt.IsZero() {
		state.CreatedAt = r.now().UTC()
	}
	for i, it := range items {
		state.MemberIDs[i] = it.CustomID
	}

	states, err := LoadStates(r.dir)
	if err != nil {
		return nil, err
	}
	if err := SaveStates(r.dir, append(states, state)); err != nil {
		return nil, err
	}
	zap.L().Info("batch submitted",
		zap.String("batch_id", batch.ID),
		zap.Int("requests", len(items)),
		zap.String("run_id", state.RunID),
	)
	fmt.Fprintf(w, "submitted batch %s (%d requests, %s)\n", batch.ID, len(items), batch.Status)
	return &state, nil
}

// Status refreshes every uncollected batch and marks ended ones. A batch
// that cannot be fetched is reported and left unchanged.
func (r *Runner) Status(ctx context.Context, w io.Writer) ([]types.JobState, error) {
	states, err := LoadStates(r.dir)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, ErrNoBatches
	}
	if r.client == nil {
		return nil, ErrNoCredentials
	}

	fmt.Fprintf(w, "%-32s %-12s %8s %9s %6s %10s\n", "Batch ID", "Status", "Requests", "Succeeded", "Failed", "Processing")
	for i := range states {
		s := &states[i]
		if s.Status == types.JobCollected {
			fmt.Fprintf(w, "%-32s %-12s %8d %9s %6s %10s\n", s.JobID, s.Status, s.RequestCount, "-", "-", "-")
			continue
		}
		batch, err := r.client.Batch(ctx, s.JobID)
		if err != nil {
			zap.L().Warn("batch status failed", zap.String("batch_id", s.JobID), zap.Error(err))
			fmt.Fprintf(w, "%-32s error: %v\n", s.JobID, err)
			continue
		}
		c := batch.Counts
		fmt.Fprintf(w, "%-32s %-12s %8d %9d %6d %10d\n", s.JobID, batch.Status, s.RequestCount,
			c.Succeeded, c.Errored+c.Canceled+c.Expired, c.Processing)
		if batch.Ended() {
			s.Status = types.JobEnded
		}
	}
	if err := SaveStates(r.dir, states); err != nil {
		return nil, err
	}
	return states, nil
}

// Wait blocks until the batch has ended.
func (r *Runner) Wait(ctx context.Context, batchID string) (*anthropic.Batch, error) {
	if r.client == nil {
		return nil, ErrNoCredentials
	}
	return anthropic.Wait(ctx, r.client, batchID, r.wait)
}

// CollectSummary counts the outcome of Collect.
type CollectSummary struct {
	Batches     int
	Pending     int
	Succeeded   int
	ParseErrors int
	APIErrors   int
	SaveErrors  int
}

// Failures counts results that could not be used or saved.
func (s CollectSummary) Failures() int { return s.ParseErrors + s.APIErrors + s.SaveErrors }

// HasFailures reports whether any result could not be used.
func (s CollectSummary) HasFailures() bool { return s.Failures() > 0 }

// Collect downloads the results of every ended, uncollected batch. Each
// batch's results are written to batch_<id>_results.json, each parsed result
// is saved as its group's analysis, and the batch is marked collected. The
// state file is rewritten after every collected batch. A group whose
// analysis cannot be saved is reported and skipped; its result stays in the
// batch results file. Batches still processing are skipped.
func (r *Runner) Collect(ctx context.Context, w io.Writer) (CollectSummary, error) {
	var sum CollectSummary
	states, err := LoadStates(r.dir)
	if err != nil {
		return sum, err
	}
	if len(states) == 0 {
		return sum, ErrNoBatches
	}
	if r.client == nil {
		return sum, ErrNoCredentials
	}

	for i := range states {
		s := &states[i]
		if s.Status == types.JobCollected {
			continue
		}
		batch, err := r.client.Batch(ctx, s.JobID)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", s.JobID, err)
			continue
		}
		if !batch.Ended() {
			sum.Pending++
			fmt.Fprintf(w, "skipped %s: still %s\n", s.JobID, batch.Status)
			continue
		}
		iter, err := r.client.Results(ctx, s.JobID)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", s.JobID, err)
			continue
		}
		collected, err := anthropic.Drain(iter)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", s.JobID, err)
			continue
		}
		collected.Usage().Log(r.model, "synthesis", true)

		entries := r.entries(collected, &sum, w)
		path := filepath.Join(r.dir, fmt.Sprintf("batch_%s_results.json", prefix(s.JobID, 16)))
		if err := jsonfile.Write(path, entries); err != nil {
			return sum, err
		}
		sum.SaveErrors += r.saveEntries(entries, w)

		s.Status = types.JobCollected
		if err := SaveStates(r.dir, states); err != nil {
			return sum, err
		}
		sum.Batches++
		fmt.Fprintf(w, "collected %s -> %s\n", s.JobID, filepath.Base(path))
	}

	fmt.Fprintf(w, "\ncollected %d batches (%d results, %d parse errors, %d API errors, %d save errors, %d still processing)\n",
		sum.Batches, sum.Succeeded, sum.ParseErrors, sum.APIErrors, sum.SaveErrors, sum.Pending)
	return sum, nil
}

func (r *Runner) entries(c *anthropic.Collected, sum *CollectSummary, w io.Writer) map[string]ResultEntry {
	entries := make(map[string]ResultEntry, len(c.Succeeded)+len(c.Failed))
	for id, resp := range c.Succeeded {
		var res types.SynthesisResult
		if err := llm.Decode(resp.Text, &res); err != nil {
			entries[id] = ResultEntry{Status: StatusParseError, RawText: prefix(resp.Text, rawTextLimit)}
			sum.ParseErrors++
			metrics.SynthesisResults.WithLabelValues(StatusParseError).Inc()
			zap.L().Warn("synthesis reply did not parse", zap.String("custom_id", id), zap.Error(err))
			fmt.Fprintf(w, "failed  %s: JSON parse error\n", id)
			continue
		}
		entries[id] = ResultEntry{Status: StatusSuccess, Data: &res}
		sum.Succeeded++
		metrics.SynthesisResults.WithLabelValues(StatusSuccess).Inc()
	}
	for _, f := range c.Failed {
		entries[f.CustomID] = ResultEntry{Status: StatusAPIError, ErrorType: f.Type}
		sum.APIErrors++
		metrics.SynthesisResults.WithLabelValues(StatusAPIError).Inc()
		fmt.Fprintf(w, "failed  %s: %s\n", f.CustomID, f.Type)
	}
	return entries
}

// saveEntries writes successful entries in custom_id order so that the
// sub-batches of a group are appended in sequence. It returns the number of
// entries that could not be saved.
func (r *Runner) saveEntries(entries map[string]ResultEntry, w io.Writer) int {
	type item struct {
		id    string
		mode  types.GroupMode
		group string
		seq   int
	}
	var items []item
	for id, e := range entries {
		if e.Status != StatusSuccess {
			continue
		}
		mode, group, seq, err := planner.ParseCustomID(id)
		if err != nil {
			zap.L().Warn("unrecognized custom_id", zap.String("custom_id", id), zap.Error(err))
			continue
		}
		items = append(items, item{id, mode, group, seq})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].mode != items[j].mode {
			return items[i].mode < items[j].mode
		}
		if items[i].group != items[j].group {
			return items[i].group < items[j].group
		}
		return items[i].seq < items[j].seq
	})
	failed := 0
	for _, it := range items {
		jsonPath, mdPath, err := SaveAnalysis(r.dir, it.mode, it.group, *entries[it.id].Data)
		if err != nil {
			failed++
			metrics.SynthesisResults.WithLabelValues(StatusSaveError).Inc()
			zap.L().Error("could not save analysis", zap.String("custom_id", it.id), zap.Error(err))
			fmt.Fprintf(w, "failed  %s: %v\n", it.id, err)
			continue
		}
		fmt.Fprintf(w, "saved   %s -> %s, %s\n", it.id, filepath.Base(jsonPath), filepath.Base(mdPath))
	}
	return failed
}

// RealtimeSummary counts the outcome of Realtime.
type RealtimeSummary struct {
	Succeeded int
	Failed    []string
}

type realtimeOutcome struct {
	result types.SynthesisResult
	err    error
	raw    string
}

// Realtime sends each job through the Messages API and saves results as
// Collect does. A reply that never parses is written to
// error_<custom_id>.txt; other failures are reported and skipped.
func (r *Runner) Realtime(ctx context.Context, jobs []types.BatchJob, w io.Writer) (RealtimeSummary, error) {
	var sum RealtimeSummary
	if len(jobs) == 0 {
		return sum, ErrNoJobs
	}
	if r.messenger == nil {
		return sum, ErrNoCredentials
	}

	fn := func(ctx context.Context, j types.BatchJob) (realtimeOutcome, error) {
		system, user, err := Prompt(j, r.tax)
		if err != nil {
			return realtimeOutcome{}, eris.Wrapf(err, "synthesis: render prompt for %s", j.ID)
		}
		var out realtimeOutcome
		out.err = r.messenger.CompleteJSON(ctx, system, user, &out.result)
		out.raw = llm.Raw(out.err)
		return out, nil
	}
	var saveErr error
	sink := func(j types.BatchJob, out realtimeOutcome) {
		if out.err != nil {
			sum.Failed = append(sum.Failed, j.ID)
			metrics.SynthesisResults.WithLabelValues(StatusAPIError).Inc()
			if out.raw != "" {
				path := filepath.Join(r.dir, fmt.Sprintf("error_%s.txt", j.ID))
				if err := jsonfile.WriteBytes(path, []byte(out.raw)); err != nil {
					zap.L().Error("write raw reply", zap.String("custom_id", j.ID), zap.Error(err))
				}
				fmt.Fprintf(w, "failed  %s: JSON parse error (raw reply in %s)\n", j.ID, filepath.Base(path))
				return
			}
			fmt.Fprintf(w, "failed  %s: %v\n", j.ID, out.err)
			return
		}
		jsonPath, mdPath, err := SaveAnalysis(r.dir, j.Mode, j.CategoryID, out.result)
		if err != nil {
			saveErr = err
			sum.Failed = append(sum.Failed, j.ID)
			return
		}
		sum.Succeeded++
		metrics.SynthesisResults.WithLabelValues(StatusSuccess).Inc()
		fmt.Fprintf(w, "ok      %s -> %s, %s\n", j.ID, filepath.Base(jsonPath), filepath.Base(mdPath))
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return sum, eris.Wrap(err, "synthesis: create output directory")
	}
	err := workpool.Run(ctx, jobs, workpool.Options{Workers: r.workers, Name: "synthesis"}, fn, sink)
	if err == nil {
		err = saveErr
	}
	fmt.Fprintf(w, "\nrealtime: %d succeeded, %d failed\n", sum.Succeeded, len(sum.Failed))
	return sum, err
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
