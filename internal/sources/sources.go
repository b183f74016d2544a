// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources discovers candidate benchmarks. It fans search queries out
// to Semantic Scholar and HuggingFace, collects the HuggingFace daily papers
// feed, and deduplicates everything by source URL.
package sources

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/edu-benchmark-mapper/internal/metrics"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// DescriptionLimit bounds CandidateRecord.Description, in runes.
const DescriptionLimit = 500

// Backend searches a single source. Each backend paces its own requests.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string) ([]types.CandidateRecord, error)
}

// Feed returns records that are not tied to a query.
type Feed interface {
	Name() string
	Fetch(ctx context.Context) ([]types.CandidateRecord, error)
}

// Output holds the deduplicated records and per-source failures.
type Output struct {
	Records       []types.CandidateRecord
	DupsRemoved   int
	BackendErrors []string
}

// HasFailures reports whether any backend call failed.
func (o Output) HasFailures() bool { return len(o.BackendErrors) > 0 }

// Search runs every feed and every (query, backend) pair. Backends run
// concurrently with each other; one backend works through the queries in
// order. A failing call is reported and skipped. Records are merged in a
// fixed order (feeds, then per query each backend in turn) so the first
// occurrence of a source URL wins regardless of timing.
func Search(ctx context.Context, queries []string, backends []Backend, feeds []Feed, w io.Writer) (Output, error) {
	if len(queries) == 0 && len(feeds) == 0 {
		return Output{}, eris.New("sources: no queries and no feeds")
	}
	if len(queries) > 0 && len(backends) == 0 {
		return Output{}, eris.New("sources: no search backends configured")
	}

	type slot struct {
		records []types.CandidateRecord
		err     error
	}
	feedSlots := make([]slot, len(feeds))
	querySlots := make([][]slot, len(queries))
	for i := range querySlots {
		querySlots[i] = make([]slot, len(backends))
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range feeds {
		g.Go(func() error {
			recs, err := f.Fetch(gctx)
			feedSlots[i] = slot{recs, err}
			return nil
		})
	}
	for j, b := range backends {
		g.Go(func() error {
			for i, q := range queries {
				if err := gctx.Err(); err != nil {
					return err
				}
				recs, err := b.Search(gctx, q)
				querySlots[i][j] = slot{recs, err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Output{}, eris.Wrap(err, "sources: search")
	}

	var out Output
	seen := map[string]bool{}
	add := func(source string, s slot) int {
		if s.err != nil {
			out.BackendErrors = append(out.BackendErrors, fmt.Sprintf("%s: %v", source, s.err))
			fmt.Fprintf(w, "warning: %s failed: %v\n", source, s.err)
			zap.L().Warn("source failed", zap.String("source", source), zap.Error(s.err))
			return 0
		}
		added := 0
		for _, r := range s.records {
			if r.SourceURL == "" {
				continue
			}
			if seen[r.SourceURL] {
				out.DupsRemoved++
				continue
			}
			seen[r.SourceURL] = true
			out.Records = append(out.Records, r)
			added++
		}
		return added
	}

	for i, f := range feeds {
		added := add(f.Name(), feedSlots[i])
		metrics.SourceRecords.WithLabelValues(f.Name()).Add(float64(len(feedSlots[i].records)))
		fmt.Fprintf(w, "%s: %d records (%d new)\n", f.Name(), len(feedSlots[i].records), added)
	}
	for i, q := range queries {
		fmt.Fprintf(w, "[%d/%d] %q\n", i+1, len(queries), q)
		for j, b := range backends {
			s := querySlots[i][j]
			added := add(fmt.Sprintf("%s %q", b.Name(), q), s)
			metrics.SourceRecords.WithLabelValues(b.Name()).Add(float64(len(s.records)))
			if s.err == nil {
				fmt.Fprintf(w, "  %-18s %d records (%d new)\n", b.Name(), len(s.records), added)
			}
		}
	}
	fmt.Fprintf(w, "\nfound %d unique records across %d queries", len(out.Records), len(queries))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
	return out, nil
}

var (
	htmlTag    = regexp.MustCompile(`<[^>]+>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Describe strips HTML tags from s and bounds it to DescriptionLimit runes.
func Describe(s string) string {
	if strings.Contains(s, "<") {
		s = htmlTag.ReplaceAllString(s, " ")
		s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	}
	if r := []rune(s); len(r) > DescriptionLimit {
		s = string(r[:DescriptionLimit])
	}
	return s
}

// datePrefix returns the YYYY-MM-DD prefix of an ISO timestamp.
func datePrefix(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
