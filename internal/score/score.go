// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score rates parsed papers 1-10 for K-12 education relevance and
// reassigns their taxonomy labels from the full text. Scores are persisted
// incrementally so an interrupted run resumes where it stopped.
package score

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/internal/llm"
	"github.com/pdiddy/edu-benchmark-mapper/internal/metrics"
	"github.com/pdiddy/edu-benchmark-mapper/internal/taxonomy"
	"github.com/pdiddy/edu-benchmark-mapper/internal/workpool"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/anthropic"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// ErrNoCredentials means no Anthropic API key is configured.
var ErrNoCredentials = eris.New("score: no Anthropic API key configured")

// ScoresFile is the scores file's name under the output directory.
const ScoresFile = "paper_scores.json"

// MinChars is the shortest paper text worth scoring.
const MinChars = 100

// HighRelevance is the score at or above which a paper counts as highly
// relevant in summaries.
const HighRelevance = 7

const maxReplyTokens = 512

// Completer sends a prompt and decodes a JSON reply.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string, out any, checks ...func() error) error
}

// Scorer scores papers against a taxonomy.
type Scorer struct {
	completer    Completer
	tax          *taxonomy.Taxonomy
	maxTextChars int
	workers      int
	saveEvery    int
	runID        string
}

// Option customizes a Scorer.
type Option func(*Scorer)

// WithCompleter replaces the Anthropic-backed completer.
func WithCompleter(c Completer) Option {
	return func(s *Scorer) { s.completer = c }
}

// New builds a Scorer. Each Scorer stamps its results with a fresh run ID.
func New(cfg types.ScoreConfig, tax *taxonomy.Taxonomy, opts ...Option) (*Scorer, error) {
	s := &Scorer{
		tax:          tax,
		maxTextChars: cfg.MaxTextChars,
		workers:      cfg.Workers,
		saveEvery:    cfg.SaveEvery,
		runID:        uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxTextChars <= 0 {
		s.maxTextChars = 6000
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
			Stage:             "score",
			CacheSystem:       true,
		})
	}
	return s, nil
}

// RunID identifies this scorer's results.
func (s *Scorer) RunID() string { return s.runID }

type reply struct {
	RelevanceScore *float64 `json:"relevance_score"`
	FrameworkIDs   []string `json:"framework_ids"`
	ToolTypes      []string `json:"tool_types"`
	Summary        string   `json:"summary"`
	Reasoning      string   `json:"reasoning"`
}

// ScorePaper scores one paper. It never returns an error: a paper whose call
// fails after retries is recorded with status failed and score 0.
func (s *Scorer) ScorePaper(ctx context.Context, p types.ParsedPaper) types.PaperScore {
	out := types.PaperScore{
		PaperID:      p.PaperID,
		Title:        p.Title,
		FrameworkIDs: []string{},
		ToolTypes:    []string{},
		Status:       types.ScoreFailed,
		RunID:        s.runID,
	}

	user, err := renderUser(promptData{
		Taxonomy: s.tax.Describe(),
		Title:    p.Title,
		Text:     truncateText(p.Text, s.maxTextChars),
	})
	if err != nil {
		zap.L().Error("render score prompt", zap.String("paper_id", p.PaperID), zap.Error(err))
		return out
	}

	var r reply
	err = s.completer.CompleteJSON(ctx, systemPrompt, user, &r, func() error {
		if r.RelevanceScore == nil {
			return eris.New("reply has no relevance_score")
		}
		return nil
	})
	if err != nil {
		zap.L().Warn("scoring failed",
			zap.String("paper_id", p.PaperID),
			zap.String("title", shorten(p.Title, 50)),
			zap.String("raw_reply", shorten(llm.Raw(err), 2000)),
			zap.Error(err),
		)
		return out
	}

	out.RelevanceScore = clamp(int(*r.RelevanceScore), 1, 10)
	out.FrameworkIDs = s.tax.FilterCategories(r.FrameworkIDs)
	out.ToolTypes = s.tax.FilterToolTypes(r.ToolTypes)
	out.Summary = r.Summary
	out.Reasoning = r.Reasoning
	out.Status = types.ScoreScored
	return out
}

// Pending returns papers not yet in existing and long enough to score, in
// input order, capped at limit when limit > 0.
func Pending(papers []types.ParsedPaper, existing *Store, limit int) []types.ParsedPaper {
	var out []types.ParsedPaper
	for _, p := range papers {
		if existing.Has(p.PaperID) || p.CharCount < MinChars {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Summary counts the outcome of a Run.
type Summary struct {
	Scored int
	Failed int
	Total  int
}

// HasFailures reports whether any paper failed to score.
func (s Summary) HasFailures() bool { return s.Failed > 0 }

// Run scores pending papers concurrently, adding results to store and saving
// it to path every saveEvery completions and once at the end.
func (s *Scorer) Run(ctx context.Context, pending []types.ParsedPaper, store *Store, path string, w io.Writer) (Summary, error) {
	var sum Summary
	err := workpool.Run(ctx, pending, workpool.Options{
		Workers:    s.workers,
		FlushEvery: s.saveEvery,
		Flush:      func() error { return store.Save(path) },
		Name:       "score",
	}, func(ctx context.Context, p types.ParsedPaper) (types.PaperScore, error) {
		return s.ScorePaper(ctx, p), nil
	}, func(p types.ParsedPaper, res types.PaperScore) {
		store.Put(res)
		metrics.PapersScored.WithLabelValues(string(res.Status)).Inc()
		if res.Status == types.ScoreScored {
			sum.Scored++
			fmt.Fprintf(w, "scored  %s %2d/10 %s\n", shortID(p.PaperID), res.RelevanceScore, shorten(p.Title, 60))
		} else {
			sum.Failed++
			fmt.Fprintf(w, "failed  %s %s\n", shortID(p.PaperID), shorten(p.Title, 60))
		}
	})
	sum.Total = store.Len()
	return sum, err
}

// Store is the scores file: one entry per paper ID in first-seen order.
type Store struct {
	order []string
	byID  map[string]types.PaperScore
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{byID: map[string]types.PaperScore{}}
}

// LoadStore reads the scores file. A missing file yields an empty store. A
// file that cannot be parsed is an error, so a later checkpoint never
// overwrites scores that were paid for.
func LoadStore(path string) (*Store, error) {
	st := NewStore()
	var list []types.PaperScore
	if _, err := jsonfile.Read(path, &list); err != nil {
		return nil, eris.Wrapf(err, "score: load %s; fix or move the file aside", path)
	}
	for _, sc := range list {
		if sc.PaperID != "" {
			st.Put(sc)
		}
	}
	return st, nil
}

// Has reports whether id has a score.
func (st *Store) Has(id string) bool {
	_, ok := st.byID[id]
	return ok
}

// Get returns the score for id.
func (st *Store) Get(id string) (types.PaperScore, bool) {
	sc, ok := st.byID[id]
	return sc, ok
}

// Put inserts or replaces a score.
func (st *Store) Put(sc types.PaperScore) {
	if _, ok := st.byID[sc.PaperID]; !ok {
		st.order = append(st.order, sc.PaperID)
	}
	st.byID[sc.PaperID] = sc
}

// Len is the number of scored papers.
func (st *Store) Len() int { return len(st.order) }

// List returns scores in first-seen order.
func (st *Store) List() []types.PaperScore {
	out := make([]types.PaperScore, 0, len(st.order))
	for _, id := range st.order {
		out = append(out, st.byID[id])
	}
	return out
}

// Save writes the store to path as a JSON array.
func (st *Store) Save(path string) error {
	return jsonfile.Write(path, st.List())
}

// Distribution tallies scored papers by relevance score.
type Distribution struct {
	Counts  [11]int
	Scored  int
	Average float64
	High    int
}

// Distribute computes the score distribution of successfully scored papers.
func Distribute(scores []types.PaperScore) Distribution {
	var d Distribution
	total := 0
	for _, sc := range scores {
		if sc.Status != types.ScoreScored {
			continue
		}
		v := clamp(sc.RelevanceScore, 0, 10)
		d.Counts[v]++
		d.Scored++
		total += v
		if v >= HighRelevance {
			d.High++
		}
	}
	if d.Scored > 0 {
		d.Average = float64(total) / float64(d.Scored)
	}
	return d
}

// Print writes a histogram from 10 down to 1.
func (d Distribution) Print(w io.Writer) {
	if d.Scored == 0 {
		return
	}
	fmt.Fprintln(w, "\nScore distribution:")
	for v := 10; v >= 1; v-- {
		fmt.Fprintf(w, "  %2d/10: %5d  %s\n", v, d.Counts[v], strings.Repeat("#", min(d.Counts[v]/10, 50)))
	}
	fmt.Fprintf(w, "\n  Average: %.1f | High relevance (>=%d): %d\n", d.Average, HighRelevance, d.High)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
