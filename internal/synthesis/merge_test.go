// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

func subResults() []types.SynthesisResult {
	return []types.SynthesisResult{
		{
			CategoryID: "2.3", CategoryName: "Pedagogical interactions",
			PaperCount:       12,
			ExecutiveSummary: "First batch summary.",
			KeyThemes: []types.Theme{
				{Theme: "Scaffolding", Description: "first description", PaperCount: 5},
				{Theme: "Socratic dialogue", Description: "questions", PaperCount: 3},
			},
			WhatIsMeasured:    []string{"hint quality", "learning gains"},
			WhatIsNotMeasured: []string{"long-term retention"},
			NotableBenchmarks: []types.Benchmark{{Name: "MathDial", PaperTitle: "MathDial"}},
			Recommendations:   []string{"Measure retention"},
			TopPapers:         []types.TopPaper{{Title: "Paper A", WhyImportant: "first"}},
			OffloadingCoverage: &types.OffloadingCoverage{
				PapersAddressingIt: 2, Summary: "Some evidence.", SpecificFindings: []string{"students copy answers"},
			},
		},
		{
			CategoryID: "2.3", CategoryName: "Pedagogical interactions",
			PaperCount:       8,
			ExecutiveSummary: "Second batch summary.",
			KeyThemes: []types.Theme{
				{Theme: "Scaffolding", Description: "second description", PaperCount: 4},
				{Theme: "Feedback timing", Description: "when", PaperCount: 2},
			},
			WhatIsMeasured:       []string{"learning gains", "engagement"},
			MethodologicalTrends: []string{"simulated students"},
			NotableBenchmarks:    []types.Benchmark{{Name: "MathDial", PaperTitle: "duplicate"}, {Name: "TutorEval"}},
			Recommendations:      []string{"Measure retention", "Test with real classrooms"},
			TopPapers:            []types.TopPaper{{Title: "Paper A", WhyImportant: "second"}, {Title: "Paper B"}},
			OffloadingCoverage: &types.OffloadingCoverage{
				PapersAddressingIt: 1, Summary: "More evidence.", SpecificFindings: []string{"students copy answers", "hint abuse"},
			},
		},
	}
}

func TestMerge_Single(t *testing.T) {
	one := subResults()[:1]
	assert.Equal(t, one[0], Merge(one))
}

func TestMerge_Empty(t *testing.T) {
	assert.Equal(t, types.SynthesisResult{}, Merge(nil))
}

func TestMerge_Category(t *testing.T) {
	got := Merge(subResults())

	assert.Equal(t, "2.3", got.CategoryID)
	assert.Equal(t, 20, got.PaperCount)
	assert.Equal(t, "First batch summary.\n\nSecond batch summary.", got.ExecutiveSummary)

	assert.Len(t, got.KeyThemes, 3)
	assert.Equal(t, "Scaffolding", got.KeyThemes[0].Theme)
	assert.Equal(t, "first description", got.KeyThemes[0].Description, "first occurrence wins")
	assert.Equal(t, "Feedback timing", got.KeyThemes[2].Theme)

	assert.Equal(t, []string{"hint quality", "learning gains", "engagement"}, got.WhatIsMeasured)
	assert.Equal(t, []string{"long-term retention"}, got.WhatIsNotMeasured)
	assert.Equal(t, []string{"simulated students"}, got.MethodologicalTrends)
	assert.Equal(t, []string{"Measure retention", "Test with real classrooms"}, got.Recommendations)

	assert.Len(t, got.NotableBenchmarks, 2)
	assert.Equal(t, "MathDial", got.NotableBenchmarks[0].PaperTitle)
	assert.Equal(t, []types.TopPaper{{Title: "Paper A", WhyImportant: "first"}, {Title: "Paper B"}}, got.TopPapers)

	if assert.NotNil(t, got.OffloadingCoverage) {
		assert.Equal(t, 3, got.OffloadingCoverage.PapersAddressingIt)
		assert.Equal(t, "Some evidence. More evidence.", got.OffloadingCoverage.Summary)
		assert.Equal(t, []string{"students copy answers", "hint abuse"}, got.OffloadingCoverage.SpecificFindings)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	once := Merge(subResults())
	assert.Equal(t, once, Merge([]types.SynthesisResult{once}))
	assert.Equal(t, once, Merge(append([]types.SynthesisResult{once}, nil...)))
}

func TestMerge_OffloadingOnlyWhenPresent(t *testing.T) {
	parts := subResults()
	parts[0].OffloadingCoverage = nil
	parts[1].OffloadingCoverage = nil
	assert.Nil(t, Merge(parts).OffloadingCoverage)
}

func TestMerge_Concern(t *testing.T) {
	parts := []types.SynthesisResult{
		{
			ConcernID: "cognitive_offloading", ConcernName: "Cognitive Offloading & Over-reliance",
			PaperCount: 10, PapersDirectlyAddressing: 4,
			KeyFindings: []types.Finding{{Finding: "Students over-rely on hints", EvidenceType: "empirical", PaperCount: 3}},
			EvidenceForRisk:      []string{"lower post-test scores"},
			NotableStudies:       []types.Study{{Title: "Study X", Design: "RCT"}},
			ImplicationsForLMICs: "Limited teacher oversight.",
		},
		{
			ConcernID: "cognitive_offloading", ConcernName: "Cognitive Offloading & Over-reliance",
			PaperCount: 5, PapersDirectlyAddressing: 1,
			KeyFindings: []types.Finding{
				{Finding: "Students over-rely on hints", EvidenceType: "theoretical", PaperCount: 1},
				{Finding: "Guardrails help", EvidenceType: "empirical", PaperCount: 2},
			},
			EvidenceForRisk: []string{"lower post-test scores", "copying"},
			EvidenceAgainst: []string{"guardrails"},
			ContextFactors:  []string{"age"},
			NotableStudies:  []types.Study{{Title: "Study X", Design: "survey"}, {Title: "Study Y"}},
		},
	}
	got := Merge(parts)
	assert.True(t, got.IsConcern())
	assert.Equal(t, 15, got.PaperCount)
	assert.Equal(t, 5, got.PapersDirectlyAddressing)
	assert.Len(t, got.KeyFindings, 2)
	assert.Equal(t, "empirical", got.KeyFindings[0].EvidenceType)
	assert.Equal(t, []string{"lower post-test scores", "copying"}, got.EvidenceForRisk)
	assert.Equal(t, []string{"guardrails"}, got.EvidenceAgainst)
	assert.Equal(t, []string{"age"}, got.ContextFactors)
	assert.Equal(t, []types.Study{{Title: "Study X", Design: "RCT"}, {Title: "Study Y"}}, got.NotableStudies)
	assert.Equal(t, "Limited teacher oversight.", got.ImplicationsForLMICs)
	assert.Nil(t, got.OffloadingCoverage)
}
