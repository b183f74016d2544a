// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractedDocument_Text(t *testing.T) {
	d := ExtractedDocument{
		Title:   "Tutoring Dialogues",
		Summary: "A benchmark.",
		Sections: []Section{
			{Name: "abstract", Text: "We study tutors."},
			{Name: "related_work", Text: "Prior work."},
		},
	}
	want := "# Tutoring Dialogues\n\n**Summary**: A benchmark." +
		"\n\n## Abstract\nWe study tutors." +
		"\n\n## Related_Work\nPrior work."
	assert.Equal(t, want, d.Text())

	d.Summary = ""
	d.Sections = nil
	assert.Equal(t, "# Tutoring Dialogues", d.Text())
}

func TestExtractedDocument_Metrics(t *testing.T) {
	d := ExtractedDocument{TotalChars: 1000, ExtractedChars: 250, Sections: []Section{{Name: "results", Text: "r"}}}
	assert.Equal(t, 62, d.Tokens())
	assert.InDelta(t, 0.25, d.CompressionRatio(), 1e-9)
	assert.Zero(t, ExtractedDocument{}.CompressionRatio())

	text, ok := d.Section("results")
	assert.True(t, ok)
	assert.Equal(t, "r", text)
	_, ok = d.Section("methods")
	assert.False(t, ok)
}

func TestPaperDetail(t *testing.T) {
	var d PaperDetail
	require.NoError(t, json.Unmarshal([]byte(`{
		"paperId": "abc",
		"abstract": "Long abstract.",
		"externalIds": {"ArXiv": "2401.00001", "CorpusId": 12345}
	}`), &d))
	assert.Equal(t, "2401.00001", d.ArxivID())
	assert.Equal(t, "Long abstract.", d.BestSummary())

	d.TLDR = &TLDR{Text: "Short."}
	assert.Equal(t, "Short.", d.BestSummary())
	assert.Empty(t, PaperDetail{}.ArxivID())
}

func TestCandidateRecord_Tags(t *testing.T) {
	r := CandidateRecord{Tags: []string{"math"}}
	assert.True(t, r.HasTag("math"))
	assert.False(t, r.HasTag(TagNotABenchmark))

	r.AddTag(TagNotABenchmark)
	r.AddTag(TagNotABenchmark)
	assert.Equal(t, []string{"math", TagNotABenchmark}, r.Tags)
}

func TestBatchJob_MemberIDs(t *testing.T) {
	j := BatchJob{Documents: []ExtractedDocument{{ID: "a"}, {ID: "b"}}}
	assert.Equal(t, []string{"a", "b"}, j.MemberIDs())
	assert.Empty(t, BatchJob{}.MemberIDs())
}
