// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package heuristic scores candidate records against the taxonomy with
// weighted keyword matching. It makes no external calls and cannot fail.
package heuristic

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/edu-benchmark-mapper/internal/taxonomy"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

const (
	// PhraseWeight is awarded for a keyword containing whitespace found as a substring.
	PhraseWeight = 2.0

	// WordWeight is awarded for a single-word keyword found on word boundaries.
	WordWeight = 1.0

	// Threshold is the aggregate score at which a category or tool type matches.
	Threshold = 2.0
)

// Matcher scores text against a fixed keyword set.
type Matcher struct {
	phrases []string
	words   []*regexp.Regexp
}

// NewMatcher compiles keywords. Keywords are matched case-insensitively.
func NewMatcher(keywords []string) *Matcher {
	m := &Matcher{}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.ContainsAny(kw, " \t\n") {
			m.phrases = append(m.phrases, kw)
			continue
		}
		m.words = append(m.words, wordPattern(kw))
	}
	return m
}

// Score sums PhraseWeight per phrase found and WordWeight per word found.
// Each keyword counts at most once.
func (m *Matcher) Score(blob string) float64 {
	blob = strings.ToLower(blob)
	var score float64
	for _, p := range m.phrases {
		if strings.Contains(blob, p) {
			score += PhraseWeight
		}
	}
	for _, re := range m.words {
		if re.MatchString(blob) {
			score += WordWeight
		}
	}
	return score
}

// Score is a convenience wrapper for one-off scoring.
func Score(blob string, keywords []string) float64 {
	return NewMatcher(keywords).Score(blob)
}

// WordSet reports whether any of its keywords occurs on word boundaries,
// phrases included.
type WordSet struct {
	patterns []*regexp.Regexp
}

// NewWordSet compiles keywords for boundary matching.
func NewWordSet(keywords []string) *WordSet {
	ws := &WordSet{}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			ws.patterns = append(ws.patterns, wordPattern(kw))
		}
	}
	return ws
}

// MatchAny reports whether text (lower-cased here) contains any keyword.
func (ws *WordSet) MatchAny(text string) bool {
	text = strings.ToLower(text)
	for _, re := range ws.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func wordPattern(kw string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
}

// Result holds the nonzero scores of one record.
type Result struct {
	Categories map[string]float64
	ToolTypes  map[string]float64
}

// MatchedCategories returns category IDs at or above Threshold, sorted.
func (r Result) MatchedCategories() []string {
	return matched(r.Categories)
}

// MatchedToolTypes returns tool-type IDs at or above Threshold, sorted.
func (r Result) MatchedToolTypes() []string {
	return matched(r.ToolTypes)
}

func matched(scores map[string]float64) []string {
	out := []string{}
	for id, s := range scores {
		if s >= Threshold {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

type entry struct {
	id      string
	matcher *Matcher
}

// Classifier scores records against every category and tool type.
type Classifier struct {
	categories []entry
	toolTypes  []entry
}

// NewClassifier compiles the taxonomy's keyword sets.
func NewClassifier(tax *taxonomy.Taxonomy) *Classifier {
	c := &Classifier{}
	for _, cat := range tax.Categories() {
		c.categories = append(c.categories, entry{cat.ID, NewMatcher(cat.Keywords)})
	}
	for _, tt := range tax.ToolTypes() {
		c.toolTypes = append(c.toolTypes, entry{tt.ID, NewMatcher(tt.Keywords)})
	}
	return c
}

// Blob is the lowercase join of a record's name, description, and tags.
func Blob(r types.CandidateRecord) string {
	parts := append([]string{r.Name, r.Description}, r.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// Classify scores one record.
func (c *Classifier) Classify(r types.CandidateRecord) Result {
	blob := Blob(r)
	res := Result{Categories: map[string]float64{}, ToolTypes: map[string]float64{}}
	for _, e := range c.categories {
		if s := e.matcher.Score(blob); s > 0 {
			res.Categories[e.id] = s
		}
	}
	for _, e := range c.toolTypes {
		if s := e.matcher.Score(blob); s > 0 {
			res.ToolTypes[e.id] = s
		}
	}
	return res
}

// ApplyAll classifies records in place and returns how many end up with at
// least one category. Records arriving with labels are treated as curated:
// their labels are kept and heuristic matches are unioned in. Other records
// receive the heuristic matches as a provisional classification.
func (c *Classifier) ApplyAll(records []types.CandidateRecord) int {
	mapped := 0
	for i := range records {
		r := &records[i]
		res := c.Classify(*r)
		if len(r.FrameworkIDs) > 0 || len(r.ToolTypes) > 0 {
			r.Curated = true
		}
		if r.Curated {
			r.FrameworkIDs = Union(r.FrameworkIDs, res.MatchedCategories())
			r.ToolTypes = Union(r.ToolTypes, res.MatchedToolTypes())
		} else {
			r.FrameworkIDs = res.MatchedCategories()
			r.ToolTypes = res.MatchedToolTypes()
		}
		if len(r.FrameworkIDs) > 0 {
			mapped++
		}
	}
	return mapped
}

// Union appends the members of add missing from base, keeping base's order.
// The result is never nil.
func Union(base, add []string) []string {
	out := make([]string, 0, len(base)+len(add))
	seen := make(map[string]bool, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
