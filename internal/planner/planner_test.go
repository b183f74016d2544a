// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package planner

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/edu-benchmark-mapper/internal/metrics"
	"github.com/pdiddy/edu-benchmark-mapper/internal/taxonomy"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// doc builds a document carrying the given number of tokens.
func doc(id string, tokens, relevance int) types.ExtractedDocument {
	return types.ExtractedDocument{ID: id, Title: id, ExtractedChars: tokens * 4, RelevanceScore: relevance}
}

func ids(docs []types.ExtractedDocument) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

// budgetOpts yields an effective document budget of budget tokens.
func budgetOpts(budget int) Options {
	return Options{
		Mode:           types.GroupFramework,
		Ceiling:        budget + DefaultPromptOverhead + DefaultOutputReserve,
		PromptOverhead: DefaultPromptOverhead,
		OutputReserve:  DefaultOutputReserve,
	}
}

func TestPack_FirstFit(t *testing.T) {
	groups := map[string][]types.ExtractedDocument{
		"2.3": {doc("a", 50000, 9), doc("b", 50000, 9), doc("c", 50000, 8), doc("d", 50000, 7)},
	}

	plan, err := Pack(groups, budgetOpts(120000))
	require.NoError(t, err)
	require.Len(t, plan.Jobs, 2)

	assert.Equal(t, "cat_2-3_batch_1", plan.Jobs[0].ID)
	assert.Equal(t, []string{"a", "b"}, ids(plan.Jobs[0].Documents))
	assert.Equal(t, 100000+DefaultPromptOverhead, plan.Jobs[0].EstimatedTokens)
	assert.Equal(t, "cat_2-3_batch_2", plan.Jobs[1].ID)
	assert.Equal(t, []string{"c", "d"}, ids(plan.Jobs[1].Documents))
	assert.Equal(t, "2.3", plan.Jobs[1].CategoryID)

	for _, j := range plan.Jobs {
		assert.LessOrEqual(t, j.EstimatedTokens-DefaultPromptOverhead, 120000)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PlannedJobs.WithLabelValues("framework")))
}

func TestPack_SplitCount(t *testing.T) {
	// 10 docs of 30k against a 100k budget: 3 per job, so 4 jobs.
	var docs []types.ExtractedDocument
	for i := range 10 {
		docs = append(docs, doc(string(rune('a'+i)), 30000, 5))
	}
	plan, err := Pack(map[string][]types.ExtractedDocument{"1": docs}, budgetOpts(100000))
	require.NoError(t, err)
	require.Len(t, plan.Jobs, 4)

	var seen []string
	for _, j := range plan.Jobs {
		seen = append(seen, ids(j.Documents)...)
	}
	assert.Equal(t, ids(docs), seen, "order preserved, nothing dropped or duplicated")
}

func TestPack_ExactFit(t *testing.T) {
	plan, err := Pack(map[string][]types.ExtractedDocument{
		"1": {doc("a", 60000, 5), doc("b", 60000, 5), doc("c", 1, 5)},
	}, budgetOpts(120000))
	require.NoError(t, err)
	require.Len(t, plan.Jobs, 2)
	assert.Equal(t, []string{"a", "b"}, ids(plan.Jobs[0].Documents))
}

func TestPack_GroupsSortedAndFiltered(t *testing.T) {
	groups := map[string][]types.ExtractedDocument{
		"5":   {doc("x", 10, 5)},
		"2.1": {doc("y", 10, 5)},
		"1":   {doc("z", 10, 5)},
	}
	plan, err := Pack(groups, budgetOpts(1000))
	require.NoError(t, err)
	var got []string
	for _, j := range plan.Jobs {
		got = append(got, j.CategoryID)
	}
	assert.Equal(t, []string{"1", "2.1", "5"}, got)

	opts := budgetOpts(1000)
	opts.Only = []string{"5", "9.9"}
	plan, err = Pack(groups, opts)
	require.NoError(t, err)
	require.Len(t, plan.Jobs, 1)
	assert.Equal(t, "5", plan.Jobs[0].CategoryID)
	assert.Equal(t, []string{"9.9"}, plan.EmptyGroups)
}

func TestPack_ZeroTokens(t *testing.T) {
	groups := map[string][]types.ExtractedDocument{
		"3.1": {doc("a", 0, 9), doc("b", 0, 8)},
	}
	plan, err := Pack(groups, budgetOpts(1000))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllZeroTokens))
	assert.Equal(t, []string{"3.1"}, plan.ZeroTokenGroups)
	assert.Empty(t, plan.EmptyGroups)

	// Mixed: zero-token group reported, other group planned, no error.
	groups["4.1"] = []types.ExtractedDocument{doc("c", 5, 9)}
	plan, err = Pack(groups, budgetOpts(1000))
	require.NoError(t, err)
	assert.Len(t, plan.Jobs, 1)
	assert.Equal(t, []string{"3.1"}, plan.ZeroTokenGroups)

	// Zero-token documents inside a live group are skipped.
	plan, err = Pack(map[string][]types.ExtractedDocument{"1": {doc("a", 0, 9), doc("b", 5, 1)}}, budgetOpts(1000))
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(plan.Jobs[0].Documents))
}

func TestPack_NoDocuments(t *testing.T) {
	plan, err := Pack(map[string][]types.ExtractedDocument{}, budgetOpts(1000))
	require.NoError(t, err)
	assert.Empty(t, plan.Jobs)
	assert.Empty(t, plan.ZeroTokenGroups)
}

func TestPack_MaxDocs(t *testing.T) {
	opts := budgetOpts(1_000_000)
	opts.MaxDocsPerRequest = 2
	plan, err := Pack(map[string][]types.ExtractedDocument{
		"1": {doc("a", 1, 5), doc("b", 1, 5), doc("c", 1, 5), doc("d", 1, 5), doc("e", 1, 5)},
	}, opts)
	require.NoError(t, err)
	require.Len(t, plan.Jobs, 3)
	assert.Equal(t, []string{"e"}, ids(plan.Jobs[2].Documents))
}

func TestPack_Oversized(t *testing.T) {
	plan, err := Pack(map[string][]types.ExtractedDocument{
		"1": {doc("small", 10, 5), doc("huge", 5000, 5), doc("tail", 10, 5)},
	}, budgetOpts(1000))
	require.NoError(t, err)
	require.Len(t, plan.Jobs, 3)
	assert.Equal(t, []string{"huge"}, ids(plan.Jobs[1].Documents))
	assert.Equal(t, []string{"huge"}, plan.Oversized)
}

func TestPlanPrint(t *testing.T) {
	plan := Plan{
		Jobs:            []types.BatchJob{{ID: "tt_ai_tutor_batch_1", CategoryID: "ai_tutor", Documents: []types.ExtractedDocument{doc("a", 1, 1)}, EstimatedTokens: 2001}},
		ZeroTokenGroups: []string{"pal"},
		EmptyGroups:     []string{"teacher_support"},
	}
	var buf bytes.Buffer
	plan.Print(&buf)
	assert.Contains(t, buf.String(), "tt_ai_tutor_batch_1")
	assert.Contains(t, buf.String(), "1 requests, 1 document slots, ~2001 input tokens")
	assert.Contains(t, buf.String(), "skipped group pal: all documents have zero tokens")
	assert.Contains(t, buf.String(), "skipped group teacher_support: no documents")
}

func TestGroup_Framework(t *testing.T) {
	a := doc("a", 1, 7)
	a.CategoryIDs = []string{"2.3", "3.1"}
	b := doc("b", 1, 9)
	b.CategoryIDs = []string{"3.1"}
	c := doc("c", 1, 8)
	c.ToolTypeIDs = []string{"pal"}

	groups := Group([]types.ExtractedDocument{a, b, c}, types.GroupFramework, taxonomy.Default())
	assert.Equal(t, []string{"a"}, ids(groups["2.3"]))
	assert.Equal(t, []string{"b", "a"}, ids(groups["3.1"]), "relevance descending")
	assert.Equal(t, []string{"c"}, ids(groups[types.GroupUncategorized]))

	groups = Group([]types.ExtractedDocument{a, b, c}, types.GroupToolType, taxonomy.Default())
	assert.Equal(t, []string{"c"}, ids(groups["pal"]))
	assert.Equal(t, []string{"b", "a"}, ids(groups[types.GroupUncategorized]))
}

func TestGroup_StableTies(t *testing.T) {
	var docs []types.ExtractedDocument
	for _, id := range []string{"p", "q", "r"} {
		d := doc(id, 1, 8)
		d.CategoryIDs = []string{"1"}
		docs = append(docs, d)
	}
	groups := Group(docs, types.GroupFramework, taxonomy.Default())
	assert.Equal(t, []string{"p", "q", "r"}, ids(groups["1"]))
}

func TestGroup_Concern(t *testing.T) {
	a := doc("a", 1, 7)
	a.Title = "Students over-rely on chatbots"
	a.Summary = "Measures cognitive offloading in homework."
	b := doc("b", 1, 9)
	b.Title = "Unrelated benchmark"
	b.Sections = []types.Section{{Name: "abstract", Text: "A leaderboard for translation."}}

	groups := Group([]types.ExtractedDocument{a, b}, types.GroupConcern, taxonomy.Default())
	assert.Equal(t, []string{"a"}, ids(groups["cognitive_offloading"]))
	assert.NotContains(t, groups, types.GroupUncategorized)
	for _, members := range groups {
		assert.NotContains(t, ids(members), "b")
	}
}

func TestCustomID(t *testing.T) {
	tests := []struct {
		mode types.GroupMode
		gid  string
		seq  int
		want string
	}{
		{types.GroupFramework, "2.3", 1, "cat_2-3_batch_1"},
		{types.GroupFramework, types.GroupUncategorized, 2, "cat_uncategorized_batch_2"},
		{types.GroupToolType, "ai_tutor", 1, "tt_ai_tutor_batch_1"},
		{types.GroupConcern, "cognitive_offloading", 3, "cn_cognitive_offloading_batch_3"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, CustomID(tt.mode, tt.gid, tt.seq))
			mode, gid, seq, err := ParseCustomID(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.mode, mode)
			assert.Equal(t, tt.gid, gid)
			assert.Equal(t, tt.seq, seq)
		})
	}
}

func TestParseCustomID_Errors(t *testing.T) {
	for _, id := range []string{"", "nounderscore", "xx_1_batch_1", "cat_1", "cat_1_batch_x", "cat__batch_1"} {
		_, _, _, err := ParseCustomID(id)
		assert.Error(t, err, id)
	}
}

func TestPlan_SaveLoad(t *testing.T) {
	groups := map[string][]types.ExtractedDocument{"1.1": {doc("a", 100, 9), doc("b", 100, 8)}}
	plan, err := Pack(groups, budgetOpts(150))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), PlanFile)
	require.NoError(t, plan.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got.Jobs, 2)
	assert.Equal(t, plan.Jobs[0].ID, got.Jobs[0].ID)
	assert.Equal(t, plan.Tokens(), got.Tokens())
	assert.Equal(t, []string{"a"}, ids(got.Jobs[0].Documents))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
