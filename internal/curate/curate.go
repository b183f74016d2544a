// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package curate turns classified candidate records into the published
// benchmark dataset: unmapped and rejected records are dropped, reviewer
// dismissals are applied, and entries are enriched with paper metadata and
// relevance scores.
package curate

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// BenchmarksFile is the published dataset's name under the output directory.
const BenchmarksFile = "benchmarks.json"

const (
	maxDescription = 500
	maxTags        = 8
)

// Benchmark is one published entry. Field names follow the presentation
// layer's camelCase convention.
type Benchmark struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	SourceURL      string   `json:"sourceUrl" yaml:"source_url"`
	SourceType     string   `json:"sourceType" yaml:"source_type"`
	Description    string   `json:"description" yaml:"description"`
	FrameworkIDs   []string `json:"frameworkIds" yaml:"framework_ids"`
	ToolTypes      []string `json:"toolTypes" yaml:"tool_types"`
	Tags           []string `json:"tags" yaml:"tags"`
	Year           int      `json:"year,omitempty" yaml:"year,omitempty"`
	TLDR           string   `json:"tldr,omitempty" yaml:"tldr,omitempty"`
	CitationCount  int      `json:"citationCount,omitempty" yaml:"citation_count,omitempty"`
	PDFURL         string   `json:"pdfUrl,omitempty" yaml:"pdf_url,omitempty"`
	RelevanceScore int      `json:"relevanceScore,omitempty" yaml:"relevance_score,omitempty"`
}

// Details resolves a record's source URL to Semantic Scholar metadata.
type Details interface {
	Lookup(sourceURL string) (types.PaperDetail, bool)
}

// Scores resolves a paper ID to its relevance score.
type Scores interface {
	Get(paperID string) (types.PaperScore, bool)
}

// Options supplies the optional enrichment sources and review decisions.
type Options struct {
	Details   Details
	Scores    Scores
	Dismissed map[string]bool
}

// Stats explains how the dataset was built.
type Stats struct {
	Total      int
	Mapped     int
	Rejected   int
	Dismissed  int
	Published  int
	DetailHits int
	ScoreHits  int
}

// Print writes the stats as an aligned summary.
func (s Stats) Print(w io.Writer) {
	fmt.Fprintf(w, "records:            %d\n", s.Total)
	fmt.Fprintf(w, "  with mappings:    %d\n", s.Mapped)
	fmt.Fprintf(w, "  not a benchmark:  %d\n", s.Rejected)
	fmt.Fprintf(w, "  dismissed:        %d\n", s.Dismissed)
	fmt.Fprintf(w, "published:          %d\n", s.Published)
	fmt.Fprintf(w, "  paper details:    %d\n", s.DetailHits)
	fmt.Fprintf(w, "  relevance scores: %d\n", s.ScoreHits)
}

// Build produces the published dataset from classified records.
func Build(records []types.CandidateRecord, opts Options) ([]Benchmark, Stats) {
	stats := Stats{Total: len(records)}
	out := []Benchmark{}
	used := map[string]int{}

	for _, r := range records {
		if len(r.FrameworkIDs) == 0 {
			continue
		}
		stats.Mapped++
		if r.HasTag(types.TagNotABenchmark) {
			stats.Rejected++
			continue
		}
		slug := Slugify(r.Name)
		if opts.Dismissed[slug] {
			stats.Dismissed++
			continue
		}

		b := Benchmark{
			ID:           uniqueSlug(slug, used),
			Name:         r.Name,
			SourceURL:    r.SourceURL,
			SourceType:   string(r.SourceType),
			Description:  truncateRunes(r.Description, maxDescription),
			FrameworkIDs: nonNil(r.FrameworkIDs),
			ToolTypes:    nonNil(r.ToolTypes),
			Tags:         publicTags(r.Tags),
			Year:         Year(r.Date),
		}
		if b.SourceType == "" {
			b.SourceType = string(types.SourceDataset)
		}
		enrich(&b, opts, &stats)
		out = append(out, b)
	}
	stats.Published = len(out)
	return out, stats
}

func enrich(b *Benchmark, opts Options, stats *Stats) {
	if opts.Details == nil {
		return
	}
	d, ok := opts.Details.Lookup(b.SourceURL)
	if !ok {
		return
	}
	stats.DetailHits++
	if d.TLDR != nil {
		b.TLDR = d.TLDR.Text
	}
	b.CitationCount = d.CitationCount
	if d.OpenAccessPDF != nil {
		b.PDFURL = d.OpenAccessPDF.URL
	}

	if opts.Scores == nil || d.PaperID == "" {
		return
	}
	sc, ok := opts.Scores.Get(d.PaperID)
	if !ok || sc.Status != types.ScoreScored {
		return
	}
	stats.ScoreHits++
	if sc.RelevanceScore >= 1 && sc.RelevanceScore <= 10 {
		b.RelevanceScore = sc.RelevanceScore
	}
	if sc.Summary != "" {
		b.TLDR = sc.Summary
	}
	// Full-text scoring reclassifies the paper; its labels win when present.
	if len(sc.FrameworkIDs) > 0 {
		b.FrameworkIDs = sc.FrameworkIDs
	}
	if len(sc.ToolTypes) > 0 {
		b.ToolTypes = sc.ToolTypes
	}
}

var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases name, folds accented letters to their base letter, and
// joins the remaining ASCII letter and digit runs with hyphens.
func Slugify(name string) string {
	folded, _, err := transform.String(foldMarks, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return "benchmark"
	}
	return b.String()
}

func uniqueSlug(slug string, used map[string]int) string {
	used[slug]++
	n := used[slug]
	if n == 1 {
		return slug
	}
	for {
		candidate := slug + "-" + strconv.Itoa(n)
		if used[candidate] == 0 {
			used[candidate] = 1
			return candidate
		}
		n++
	}
}

// Year returns the year from an ISO date prefix, or 0.
func Year(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil || y <= 0 {
		return 0
	}
	return y
}

func publicTags(tags []string) []string {
	out := []string{}
	for _, t := range tags {
		if strings.HasPrefix(t, types.TagProvenancePrefix) {
			continue
		}
		out = append(out, t)
		if len(out) == maxTags {
			break
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// Save writes the dataset to path.
func Save(path string, benchmarks []Benchmark) error {
	return jsonfile.Write(path, benchmarks)
}
