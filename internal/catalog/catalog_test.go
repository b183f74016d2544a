// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

type detailMap map[string]types.PaperDetail

func (d detailMap) Lookup(u string) (types.PaperDetail, bool) {
	v, ok := d[u]
	return v, ok
}

var testRecords = []types.CandidateRecord{
	{
		Name: "MathDial", SourceURL: "https://arxiv.org/abs/2305.14536", SourceType: types.SourcePaper,
		Description: "Dialogue tutoring dataset for math reasoning", Date: "2023-05-23",
		Tags: []string{"tutoring"}, FrameworkIDs: []string{"3.1"}, ToolTypes: []string{"tutor"},
	},
	{
		Name: "EssayBench", SourceURL: "https://huggingface.co/datasets/org/essay", SourceType: types.SourceDataset,
		Description: "Automated essay scoring", FrameworkIDs: []string{"2.2"}, ToolTypes: []string{"grader"},
		Curated: true,
	},
	{
		Name: "TutorEval", SourceURL: "https://www.semanticscholar.org/paper/p2", SourceType: types.SourcePaper,
		Description: "Evaluating LLM tutoring", FrameworkIDs: []string{"3.1", "2.2"},
	},
}

var testScores = []types.PaperScore{
	{PaperID: "p1", Title: "MathDial", RelevanceScore: 9, Summary: "Tutoring dialogues.", Status: types.ScoreScored},
	{PaperID: "p2", Title: "TutorEval", RelevanceScore: 5, Summary: "Tutor evaluation.", Status: types.ScoreScored},
}

var testDetails = detailMap{
	"https://arxiv.org/abs/2305.14536":         {PaperID: "p1"},
	"https://www.semanticscholar.org/paper/p2": {PaperID: "p2"},
}

func testSetup(t *testing.T) (*Store, Sources) {
	t.Helper()
	dir := t.TempDir()
	src := Sources{
		Candidates: filepath.Join(dir, "candidates.json"),
		Scores:     filepath.Join(dir, "scores.json"),
		Details:    testDetails,
	}
	require.NoError(t, jsonfile.Write(src.Candidates, testRecords))
	require.NoError(t, jsonfile.Write(src.Scores, testScores))

	store, err := Open(types.CatalogConfig{Dir: filepath.Join(dir, "catalog"), MaxResults: 20})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, src
}

func TestIngest_Incremental(t *testing.T) {
	store, src := testSetup(t)
	ctx := context.Background()

	var out bytes.Buffer
	sum, err := store.Ingest(ctx, src, &out)
	require.NoError(t, err)
	assert.Equal(t, IngestSummary{Indexed: 2, Records: 3, Scores: 2}, sum)
	assert.Contains(t, out.String(), "indexing candidates.json (3 rows)")
	assert.FileExists(t, filepath.Join(store.dir, indexDir, "export.yaml"))

	out.Reset()
	sum, err = store.Ingest(ctx, src, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Skipped)
	assert.Contains(t, out.String(), "skipped scores.json")

	changed := append([]types.CandidateRecord{}, testRecords...)
	changed[1].Description = "Essay scoring with rubrics"
	require.NoError(t, jsonfile.Write(src.Candidates, changed))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(src.Candidates, later, later))

	out.Reset()
	sum, err = store.Ingest(ctx, src, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Updated)
	assert.Equal(t, 1, sum.Skipped)

	got, err := store.Search(ctx, QueryOptions{Query: "rubrics"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "EssayBench", got[0].Name)

	got, err = store.Search(ctx, QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 3, "upserts do not duplicate rows")
}

func TestIngest_MissingFile(t *testing.T) {
	store, src := testSetup(t)
	src.Scores = filepath.Join(t.TempDir(), "absent.json")

	var out bytes.Buffer
	sum, err := store.Ingest(context.Background(), src, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Indexed)
	assert.Equal(t, 1, sum.Failed)
	assert.True(t, sum.HasFailures())
	assert.Contains(t, out.String(), "failed  absent.json")
}

func TestSearch(t *testing.T) {
	store, src := testSetup(t)
	ctx := context.Background()
	_, err := store.Ingest(ctx, src, &bytes.Buffer{})
	require.NoError(t, err)

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{"all ranked by score then name", QueryOptions{}, []string{"MathDial", "TutorEval", "EssayBench"}},
		{"full text", QueryOptions{Query: "tutoring"}, []string{"MathDial", "TutorEval"}},
		{"category", QueryOptions{Category: "2.2"}, []string{"TutorEval", "EssayBench"}},
		{"tool type", QueryOptions{ToolType: "tutor"}, []string{"MathDial"}},
		{"source type", QueryOptions{SourceType: types.SourceDataset}, []string{"EssayBench"}},
		{"min score", QueryOptions{MinScore: 7}, []string{"MathDial"}},
		{"combined", QueryOptions{Query: "tutoring", Category: "2.2"}, []string{"TutorEval"}},
		{"limit", QueryOptions{MaxResults: 1}, []string{"MathDial"}},
		{"no match", QueryOptions{Query: "chemistry"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Search(ctx, tt.opts)
			require.NoError(t, err)
			var names []string
			for _, r := range got {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	got, err := store.Search(ctx, QueryOptions{Query: "MathDial"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].PaperID)
	assert.Equal(t, 9, got[0].RelevanceScore)
	assert.Equal(t, "Tutoring dialogues.", got[0].Summary)
	assert.Equal(t, []string{"3.1"}, got[0].FrameworkIDs)
	assert.Equal(t, []string{"tutoring"}, got[0].Tags)

	got, err = store.Search(ctx, QueryOptions{SourceType: types.SourceDataset})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Curated)
	assert.Equal(t, []string{}, got[0].Tags)
}

func TestExport(t *testing.T) {
	store, src := testSetup(t)
	ctx := context.Background()
	_, err := store.Ingest(ctx, src, &bytes.Buffer{})
	require.NoError(t, err)

	yamlPath, err := store.ExportYAML(ctx, QueryOptions{Category: "3.1"})
	require.NoError(t, err)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []Result
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 2)
	assert.Equal(t, "MathDial", fromYAML[0].Name)
	assert.Equal(t, "https://arxiv.org/abs/2305.14536", fromYAML[0].SourceURL)
	assert.Equal(t, 9, fromYAML[0].RelevanceScore)

	jsonPath, err := store.ExportJSON(ctx, QueryOptions{Query: "chemistry"})
	require.NoError(t, err)
	var fromJSON []Result
	ok, err := jsonfile.Read(jsonPath, &fromJSON)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, fromJSON)
}

func TestQueryOptions_IsEmpty(t *testing.T) {
	assert.True(t, QueryOptions{MaxResults: 5}.IsEmpty())
	assert.False(t, QueryOptions{MinScore: 1}.IsEmpty())
}
