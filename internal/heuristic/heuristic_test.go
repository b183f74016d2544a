// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/edu-benchmark-mapper/internal/taxonomy"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		blob     string
		keywords []string
		want     float64
	}{
		{"word boundary rejects substring", "the aftermath of the exam", []string{"math"}, 0},
		{"word boundary accepts word", "a math benchmark", []string{"math"}, 1},
		{"phrase counts double", "measuring cognitive offloading in class", []string{"cognitive offloading"}, 2},
		{"phrase is a substring match", "xcognitive offloadingx", []string{"cognitive offloading"}, 2},
		{"two words reach threshold", "tutor led dialogue", []string{"tutor", "dialogue"}, 2},
		{"case-insensitive", "GSM8K Math", []string{"gsm8k", "MATH"}, 2},
		{"keyword counted once", "math math math", []string{"math"}, 1},
		{"hyphenated word", "a 1-to-1 session", []string{"1-to-1"}, 1},
		{"empty blob", "", []string{"math", "cognitive offloading"}, 0},
		{"empty keywords", "math", nil, 0},
		{"blank keyword ignored", "math", []string{"  "}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.blob, tt.keywords))
		})
	}
}

func TestScoreThresholds(t *testing.T) {
	assert.GreaterOrEqual(t, Score("cognitive offloading", []string{"cognitive offloading"}), Threshold)
	assert.GreaterOrEqual(t, Score("rubric grading", []string{"rubric", "grading"}), Threshold)
	assert.Less(t, Score("rubric", []string{"rubric", "grading"}), Threshold)
}

func TestScoreOrderIndependent(t *testing.T) {
	blob := "socratic tutoring dialogue with worked example hints"
	kws := []string{"socratic", "worked example", "dialogue", "hint", "tutor"}
	want := Score(blob, kws)
	perms := [][]string{
		{"tutor", "hint", "dialogue", "worked example", "socratic"},
		{"dialogue", "socratic", "tutor", "worked example", "hint"},
	}
	for _, p := range perms {
		assert.Equal(t, want, Score(blob, p))
	}
}

func TestWordSet(t *testing.T) {
	ws := NewWordSet([]string{"over-reliance", "digital divide", "agency"})
	assert.True(t, ws.MatchAny("Students show Over-Reliance on hints"))
	assert.True(t, ws.MatchAny("the digital divide widens"))
	assert.False(t, ws.MatchAny("the travel agencyx"))
	assert.False(t, ws.MatchAny("agencywide"))
	assert.False(t, NewWordSet(nil).MatchAny("anything"))
}

func TestClassify(t *testing.T) {
	c := NewClassifier(taxonomy.Default())

	res := c.Classify(types.CandidateRecord{
		Name:        "SocraticBench",
		Description: "A Socratic tutoring dialogue benchmark",
	})
	assert.Contains(t, res.MatchedCategories(), "2.3")
	assert.Contains(t, res.MatchedToolTypes(), "ai_tutor")

	empty := c.Classify(types.CandidateRecord{})
	assert.Empty(t, empty.Categories)
	assert.Empty(t, empty.MatchedCategories())
	assert.NotNil(t, empty.MatchedCategories())
}

func TestClassifyKeepsSubThresholdScores(t *testing.T) {
	c := NewClassifier(taxonomy.Default())
	res := c.Classify(types.CandidateRecord{Name: "rubric"})
	assert.Equal(t, 1.0, res.Categories["4.1"])
	assert.NotContains(t, res.MatchedCategories(), "4.1")
}

func TestApplyAll(t *testing.T) {
	c := NewClassifier(taxonomy.Default())
	records := []types.CandidateRecord{
		{Name: "Curated", Description: "math science bias fairness", FrameworkIDs: []string{"3.1"}},
		{Name: "Scraped", Description: "math science quiz"},
		{Name: "Nothing", Description: "weather forecasting"},
	}

	mapped := c.ApplyAll(records)

	assert.Equal(t, 2, mapped)
	assert.True(t, records[0].Curated)
	assert.Equal(t, []string{"3.1", "5"}, records[0].FrameworkIDs)
	assert.False(t, records[1].Curated)
	assert.Equal(t, []string{"3.1"}, records[1].FrameworkIDs)
	assert.Empty(t, records[2].FrameworkIDs)
	require.NotNil(t, records[2].FrameworkIDs)
}

func TestUnion(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, Union([]string{"b", "a"}, []string{"a", "c", "b"}))
	assert.Equal(t, []string{}, Union(nil, nil))
}
