// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package curate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

type detailMap map[string]types.PaperDetail

func (d detailMap) Lookup(u string) (types.PaperDetail, bool) {
	v, ok := d[u]
	return v, ok
}

type scoreMap map[string]types.PaperScore

func (s scoreMap) Get(id string) (types.PaperScore, bool) {
	v, ok := s[id]
	return v, ok
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MathDial", "mathdial"},
		{"GSM8K (Grade School Math)", "gsm8k-grade-school-math"},
		{"  --Leading & trailing--  ", "leading-trailing"},
		{"Évaluation Pédagogique", "evaluation-pedagogique"},
		{"数学", "benchmark"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestYear(t *testing.T) {
	assert.Equal(t, 2024, Year("2024-03-15"))
	assert.Equal(t, 2021, Year("2021"))
	assert.Equal(t, 0, Year(""))
	assert.Equal(t, 0, Year("n/a-date"))
}

func TestBuild_Filters(t *testing.T) {
	records := []types.CandidateRecord{
		{Name: "Unmapped", SourceURL: "u1"},
		{Name: "Rejected", SourceURL: "u2", FrameworkIDs: []string{"1.1"}, Tags: []string{types.TagNotABenchmark}},
		{Name: "Dismissed One", SourceURL: "u3", FrameworkIDs: []string{"1.1"}},
		{
			Name: "Kept", SourceURL: "u4", SourceType: types.SourcePaper, FrameworkIDs: []string{"1.1"},
			Description: strings.Repeat("é", 600), Date: "2023-01-01",
			Tags: []string{"a", "llm:classified", "b", "c", "d", "e", "f", "g", "h", "i"},
		},
	}
	got, stats := Build(records, Options{Dismissed: map[string]bool{"dismissed-one": true}})

	require.Len(t, got, 1)
	b := got[0]
	assert.Equal(t, "kept", b.ID)
	assert.Equal(t, "paper", b.SourceType)
	assert.Equal(t, 2023, b.Year)
	assert.Equal(t, 500, len([]rune(b.Description)))
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, b.Tags)
	assert.Equal(t, []string{}, b.ToolTypes)
	assert.Equal(t, Stats{Total: 4, Mapped: 3, Rejected: 1, Dismissed: 1, Published: 1}, stats)
}

func TestBuild_DuplicateSlugs(t *testing.T) {
	records := []types.CandidateRecord{
		{Name: "MathDial", SourceURL: "u1", FrameworkIDs: []string{"1"}},
		{Name: "mathdial", SourceURL: "u2", FrameworkIDs: []string{"1"}},
		{Name: "Math-Dial", SourceURL: "u3", FrameworkIDs: []string{"1"}},
		{Name: "MathDial 2", SourceURL: "u4", FrameworkIDs: []string{"1"}},
	}
	got, _ := Build(records, Options{})
	ids := make([]string, len(got))
	for i, b := range got {
		ids[i] = b.ID
	}
	assert.Equal(t, []string{"mathdial", "mathdial-2", "math-dial", "mathdial-2-2"}, ids)
	assert.Equal(t, "dataset", got[0].SourceType, "missing source type defaults to dataset")
}

func TestBuild_Enrichment(t *testing.T) {
	records := []types.CandidateRecord{
		{Name: "Scored", SourceURL: "https://arxiv.org/abs/1", FrameworkIDs: []string{"1.1"}, ToolTypes: []string{"tutor"}},
		{Name: "Detail Only", SourceURL: "https://arxiv.org/abs/2", FrameworkIDs: []string{"1.1"}},
		{Name: "Failed Score", SourceURL: "https://arxiv.org/abs/3", FrameworkIDs: []string{"1.1"}},
	}
	opts := Options{
		Details: detailMap{
			"https://arxiv.org/abs/1": {
				PaperID: "p1", CitationCount: 40, TLDR: &types.TLDR{Text: "S2 summary"},
				OpenAccessPDF: &types.OpenAccessPDF{URL: "https://oa/p1.pdf"},
			},
			"https://arxiv.org/abs/2": {PaperID: "p2", TLDR: &types.TLDR{Text: "Only tldr"}},
			"https://arxiv.org/abs/3": {PaperID: "p3"},
		},
		Scores: scoreMap{
			"p1": {PaperID: "p1", RelevanceScore: 8, Summary: "LLM summary", FrameworkIDs: []string{"2.1", "3.4"}, Status: types.ScoreScored},
			"p3": {PaperID: "p3", Status: types.ScoreFailed},
		},
	}
	got, stats := Build(records, opts)
	require.Len(t, got, 3)

	assert.Equal(t, "LLM summary", got[0].TLDR)
	assert.Equal(t, 8, got[0].RelevanceScore)
	assert.Equal(t, 40, got[0].CitationCount)
	assert.Equal(t, "https://oa/p1.pdf", got[0].PDFURL)
	assert.Equal(t, []string{"2.1", "3.4"}, got[0].FrameworkIDs)
	assert.Equal(t, []string{"tutor"}, got[0].ToolTypes, "empty score tool types keep the record's")

	assert.Equal(t, "Only tldr", got[1].TLDR)
	assert.Zero(t, got[1].RelevanceScore)
	assert.Zero(t, got[2].RelevanceScore)

	assert.Equal(t, 3, stats.DetailHits)
	assert.Equal(t, 1, stats.ScoreHits)
}

func TestDismissals(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, DismissedFile)
	review := filepath.Join(dir, "review.json")

	require.NoError(t, SaveDismissed(archive, map[string]bool{"b": true}))
	require.NoError(t, jsonfile.Write(review, []string{"c", "a", "b"}))

	set, added, err := ApplyDismissals(archive, review)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Len(t, set, 3)

	var saved []string
	_, err = jsonfile.Read(archive, &saved)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, saved)

	_, _, err = ApplyDismissals(archive, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(review, []byte(`{"not": "a list"}`), 0o644))
	_, _, err = ApplyDismissals(archive, review)
	assert.Error(t, err)
}

func TestLoadDismissed_Missing(t *testing.T) {
	set, err := LoadDismissed(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, set)
}
