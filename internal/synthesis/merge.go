// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"strings"

	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// Merge combines the sub-batch analyses of one group into a single result.
// A single input is returned unchanged. Keyed lists keep the first occurrence
// of each key in input order, flat string lists are deduplicated by exact
// text, counts are summed, and executive summaries are joined as separate
// paragraphs. The concern schema is merged through the same fields.
func Merge(results []types.SynthesisResult) types.SynthesisResult {
	switch len(results) {
	case 0:
		return types.SynthesisResult{}
	case 1:
		return results[0]
	}

	first := results[0]
	merged := types.SynthesisResult{
		CategoryID:        first.CategoryID,
		CategoryName:      first.CategoryName,
		ConcernID:         first.ConcernID,
		ConcernName:       first.ConcernName,
		WhatIsMeasured:    []string{},
		WhatIsNotMeasured: []string{},
		Recommendations:   []string{},
		TopPapers:         []types.TopPaper{},
	}

	var summaries, lmics, offloadTexts []string
	var offloading *types.OffloadingCoverage

	themes := newKeyed[types.Theme]()
	findings := newKeyed[types.Finding]()
	benchmarks := newKeyed[types.Benchmark]()
	studies := newKeyed[types.Study]()
	papers := newKeyed[types.TopPaper]()

	measured, notMeasured := newStrings(), newStrings()
	forRisk, against := newStrings(), newStrings()
	factors, methods, recs := newStrings(), newStrings(), newStrings()
	offloadFindings := newStrings()

	for _, r := range results {
		merged.PaperCount += r.PaperCount
		merged.PapersDirectlyAddressing += r.PapersDirectlyAddressing
		if r.ExecutiveSummary != "" {
			summaries = append(summaries, r.ExecutiveSummary)
		}
		if r.ImplicationsForLMICs != "" {
			lmics = append(lmics, r.ImplicationsForLMICs)
		}

		for _, t := range r.KeyThemes {
			themes.add(t.Theme, t)
		}
		for _, f := range r.KeyFindings {
			findings.add(f.Finding, f)
		}
		for _, b := range r.NotableBenchmarks {
			benchmarks.add(b.Name, b)
		}
		for _, s := range r.NotableStudies {
			studies.add(s.Title, s)
		}
		for _, p := range r.TopPapers {
			papers.add(p.Title, p)
		}

		measured.add(r.WhatIsMeasured...)
		notMeasured.add(r.WhatIsNotMeasured...)
		forRisk.add(r.EvidenceForRisk...)
		against.add(r.EvidenceAgainst...)
		factors.add(r.ContextFactors...)
		methods.add(r.MethodologicalTrends...)
		recs.add(r.Recommendations...)

		if co := r.OffloadingCoverage; co != nil {
			if offloading == nil {
				offloading = &types.OffloadingCoverage{}
			}
			offloading.PapersAddressingIt += co.PapersAddressingIt
			if co.Summary != "" {
				offloadTexts = append(offloadTexts, co.Summary)
			}
			offloadFindings.add(co.SpecificFindings...)
		}
	}

	merged.ExecutiveSummary = strings.Join(summaries, "\n\n")
	merged.ImplicationsForLMICs = strings.Join(lmics, "\n\n")
	merged.KeyThemes = themes.items
	merged.KeyFindings = findings.items
	merged.NotableBenchmarks = benchmarks.items
	merged.NotableStudies = studies.items
	merged.TopPapers = append(merged.TopPapers, papers.items...)
	merged.WhatIsMeasured = append(merged.WhatIsMeasured, measured.items...)
	merged.WhatIsNotMeasured = append(merged.WhatIsNotMeasured, notMeasured.items...)
	merged.EvidenceForRisk = forRisk.items
	merged.EvidenceAgainst = against.items
	merged.ContextFactors = factors.items
	merged.MethodologicalTrends = methods.items
	merged.Recommendations = append(merged.Recommendations, recs.items...)

	if offloading != nil {
		offloading.Summary = strings.Join(offloadTexts, " ")
		offloading.SpecificFindings = offloadFindings.items
		merged.OffloadingCoverage = offloading
	}
	return merged
}

// keyed is an insertion-ordered list that drops repeated or empty keys.
type keyed[T any] struct {
	seen  map[string]bool
	items []T
}

func newKeyed[T any]() *keyed[T] {
	return &keyed[T]{seen: map[string]bool{}}
}

func (k *keyed[T]) add(key string, item T) {
	if key == "" || k.seen[key] {
		return
	}
	k.seen[key] = true
	k.items = append(k.items, item)
}

type stringSet struct {
	seen  map[string]bool
	items []string
}

func newStrings() *stringSet {
	return &stringSet{seen: map[string]bool{}}
}

func (s *stringSet) add(items ...string) {
	for _, it := range items {
		if s.seen[it] {
			continue
		}
		s.seen[it] = true
		s.items = append(s.items, it)
	}
}
