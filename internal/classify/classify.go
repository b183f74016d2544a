// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify refines heuristic classifications with an LLM. Records are
// sent in fixed-size batches; each batch returns, per record, whether the
// entry is a K-12 benchmark and which taxonomy IDs apply.
package classify

import (
	"context"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/edu-benchmark-mapper/internal/heuristic"
	"github.com/pdiddy/edu-benchmark-mapper/internal/llm"
	"github.com/pdiddy/edu-benchmark-mapper/internal/metrics"
	"github.com/pdiddy/edu-benchmark-mapper/internal/taxonomy"
	"github.com/pdiddy/edu-benchmark-mapper/internal/workpool"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/anthropic"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// ErrNoCredentials means no Anthropic API key is configured. The stage is
// disabled and records keep their heuristic classification.
var ErrNoCredentials = eris.New("classify: no Anthropic API key configured")

// ProvenanceTag marks records whose labels came from the LLM stage.
const ProvenanceTag = types.TagProvenancePrefix + "classified"

// maxReplyTokens bounds one batch reply. Twenty records with one-sentence
// reasoning fit comfortably.
const maxReplyTokens = 4096

// Completer sends a prompt and decodes a JSON reply. *llm.Messenger
// satisfies it.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string, out any, checks ...func() error) error
}

// Details resolves external paper metadata for a record's source URL.
type Details interface {
	Lookup(sourceURL string) (types.PaperDetail, bool)
}

// Stage is the LLM classification stage.
type Stage struct {
	completer Completer
	tax       *taxonomy.Taxonomy
	details   Details
	batchSize int
	workers   int
	system    string
}

// Option customizes a Stage.
type Option func(*Stage)

// WithCompleter replaces the Anthropic-backed completer. No API key is needed
// when one is supplied.
func WithCompleter(c Completer) Option {
	return func(s *Stage) { s.completer = c }
}

// WithDetails supplies paper metadata used to enrich the prompt context.
func WithDetails(d Details) Option {
	return func(s *Stage) { s.details = d }
}

// NewStage builds the stage. Without an API key (and without WithCompleter)
// it returns ErrNoCredentials.
func NewStage(cfg types.ClassifyConfig, tax *taxonomy.Taxonomy, opts ...Option) (*Stage, error) {
	s := &Stage{
		tax:       tax,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.batchSize <= 0 {
		s.batchSize = 20
	}
	if s.completer == nil {
		if cfg.APIKey == "" {
			return nil, ErrNoCredentials
		}
		s.completer = llm.New(anthropic.New(cfg.APIKey), llm.Options{
			Model:             cfg.Model,
			MaxTokens:         maxReplyTokens,
			RequestsPerSecond: cfg.RequestsPerSecond,
			MaxAttempts:       cfg.MaxRetries,
			Stage:             "classify",
			CacheSystem:       true,
		})
	}

	system, err := renderSystem(tax.Describe())
	if err != nil {
		return nil, eris.Wrap(err, "classify: render system prompt")
	}
	s.system = system
	return s, nil
}

// BatchFailure identifies a batch that produced no results.
type BatchFailure struct {
	Batch int
	First int
	Last  int
	Err   error
	Raw   string
}

// Summary counts the outcome of a Run.
type Summary struct {
	Records       int
	Batches       int
	Classified    int
	NotBenchmarks int
	Failures      []BatchFailure
}

// HasFailures reports whether any batch failed.
func (s Summary) HasFailures() bool { return len(s.Failures) > 0 }

// ClassifyBatch classifies one batch. Keys of the returned map are positions
// within records. Unknown taxonomy IDs are dropped; out-of-range or repeated
// indices are ignored. A reply with no usable entry is retried as malformed.
func (s *Stage) ClassifyBatch(ctx context.Context, batchIndex int, records []types.CandidateRecord) (map[int]types.ClassificationResult, error) {
	if len(records) == 0 {
		return map[int]types.ClassificationResult{}, nil
	}

	entries := make([]promptEntry, len(records))
	for i, r := range records {
		var detail *types.PaperDetail
		if s.details != nil {
			if d, ok := s.details.Lookup(r.SourceURL); ok {
				detail = &d
			}
		}
		entries[i] = promptEntry{Index: i, Context: recordContext(r, detail)}
	}
	user, err := renderUser(entries)
	if err != nil {
		return nil, eris.Wrap(err, "classify: render prompt")
	}

	var reply []replyEntry
	out := map[int]types.ClassificationResult{}
	err = s.completer.CompleteJSON(ctx, s.system, user, &reply, func() error {
		out = s.validate(reply, len(records))
		if len(out) == 0 {
			n := len(reply)
			reply = nil
			return eris.Errorf("no usable entries among %d returned", n)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "classify: batch %d", batchIndex)
	}
	return out, nil
}

// replyEntry is one element of the model's reply. Index and IsBenchmark are
// pointers so an entry missing either field can be told apart from index 0
// or a negative judgement.
type replyEntry struct {
	Index        *int     `json:"index"`
	IsBenchmark  *bool    `json:"is_benchmark"`
	FrameworkIDs []string `json:"framework_ids"`
	ToolTypes    []string `json:"tool_types"`
	Reasoning    string   `json:"reasoning"`
}

func (s *Stage) validate(reply []replyEntry, n int) map[int]types.ClassificationResult {
	out := make(map[int]types.ClassificationResult, len(reply))
	for _, e := range reply {
		if e.Index == nil || e.IsBenchmark == nil {
			continue
		}
		idx := *e.Index
		if idx < 0 || idx >= n {
			continue
		}
		if _, dup := out[idx]; dup {
			continue
		}
		out[idx] = types.ClassificationResult{
			Index:        idx,
			IsBenchmark:  *e.IsBenchmark,
			FrameworkIDs: s.tax.FilterCategories(e.FrameworkIDs),
			ToolTypes:    s.tax.FilterToolTypes(e.ToolTypes),
			Reasoning:    e.Reasoning,
		}
	}
	return out
}

type batch struct {
	index int
	start int
	end   int
}

type batchOutcome struct {
	results map[int]types.ClassificationResult
	err     error
}

// Run classifies all records in place, applying the merge policy to each
// record the LLM answered for. Failed batches are reported in the summary and
// leave their records with the heuristic classification.
func (s *Stage) Run(ctx context.Context, records []types.CandidateRecord, w io.Writer) (Summary, error) {
	var batches []batch
	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))
		batches = append(batches, batch{index: len(batches), start: start, end: end})
	}
	summary := Summary{Records: len(records), Batches: len(batches)}

	fmt.Fprintf(w, "classifying %d records in %d batches\n", len(records), len(batches))

	err := workpool.Run(ctx, batches, workpool.Options{Workers: s.workers, Name: "classify"},
		func(ctx context.Context, b batch) (batchOutcome, error) {
			res, err := s.ClassifyBatch(ctx, b.index, records[b.start:b.end])
			return batchOutcome{results: res, err: err}, nil
		},
		func(b batch, o batchOutcome) {
			if o.err != nil {
				metrics.ClassifyBatches.WithLabelValues("failed").Inc()
				f := BatchFailure{Batch: b.index, First: b.start, Last: b.end - 1, Err: o.err, Raw: llm.Raw(o.err)}
				summary.Failures = append(summary.Failures, f)
				zap.L().Warn("classification batch failed",
					zap.Int("batch", b.index),
					zap.Int("first_record", f.First),
					zap.Int("last_record", f.Last),
					zap.String("raw_reply", truncate(f.Raw, 2000)),
					zap.Error(o.err),
				)
				fmt.Fprintf(w, "failed  batch %d (records %d-%d): %v\n", b.index, f.First, f.Last, o.err)
				return
			}
			metrics.ClassifyBatches.WithLabelValues("ok").Inc()
			for local, res := range o.results {
				r := &records[b.start+local]
				Apply(r, res)
				summary.Classified++
				if !res.IsBenchmark {
					summary.NotBenchmarks++
				}
			}
			fmt.Fprintf(w, "batch %d: %d/%d classified\n", b.index, len(o.results), b.end-b.start)
		},
	)
	if err != nil {
		return summary, err
	}

	fmt.Fprintf(w, "classified %d/%d records (%d not benchmarks, %d failed batches)\n",
		summary.Classified, summary.Records, summary.NotBenchmarks, len(summary.Failures))
	return summary, nil
}

// Apply merges one LLM result into a record. Curated records keep every
// existing label and gain the LLM's. Other records take the LLM's labels
// verbatim, even when empty. Non-benchmarks are tagged, not removed.
func Apply(r *types.CandidateRecord, res types.ClassificationResult) {
	fw := res.FrameworkIDs
	if fw == nil {
		fw = []string{}
	}
	tt := res.ToolTypes
	if tt == nil {
		tt = []string{}
	}

	if r.Curated {
		r.FrameworkIDs = heuristic.Union(r.FrameworkIDs, fw)
		r.ToolTypes = heuristic.Union(r.ToolTypes, tt)
	} else {
		r.FrameworkIDs = append([]string{}, fw...)
		r.ToolTypes = append([]string{}, tt...)
	}
	if !res.IsBenchmark {
		r.AddTag(types.TagNotABenchmark)
	}
	r.AddTag(ProvenanceTag)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
