// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/edu-benchmark-mapper/internal/taxonomy"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

func testDocs() []types.ExtractedDocument {
	return []types.ExtractedDocument{
		{ID: "p1", Title: "Tutoring Dialogues", RelevanceScore: 9, ExtractedChars: 4000,
			Sections: []types.Section{{Name: "abstract", Text: "We study tutors."}}},
		{ID: "p2", Title: "Hint Generation", RelevanceScore: 7, ExtractedChars: 4000, Summary: "Hints for algebra.",
			Sections: []types.Section{{Name: "results", Text: "Hints helped."}}},
	}
}

func TestPrompt_Category(t *testing.T) {
	job := types.BatchJob{ID: "cat_2-3_batch_1", CategoryID: "2.3", Mode: types.GroupFramework, Documents: testDocs()}
	system, user, err := Prompt(job, taxonomy.Default())
	require.NoError(t, err)

	assert.Contains(t, system, "senior education research analyst")
	assert.True(t, strings.HasPrefix(user, "## Category: 2.3 - Pedagogical interactions\nArea: Pedagogy\n"))
	assert.Contains(t, user, "## Papers in this category (2 papers)\n\n--- Paper 1 (relevance: 9/10) ---\n# Tutoring Dialogues")
	assert.Contains(t, user, "We study tutors.\n\n\n--- Paper 2 (relevance: 7/10) ---\n# Hint Generation\n\n**Summary**: Hints for algebra.")
	assert.Contains(t, user, "Synthesize ALL 2 papers above")
	assert.Contains(t, user, `"cognitive_offloading_coverage"`)
	assert.NotContains(t, user, `"concern_id"`)
}

func TestPrompt_ToolTypeUsesCategorySchema(t *testing.T) {
	job := types.BatchJob{ID: "tt_ai_tutor_batch_1", CategoryID: "ai_tutor", Mode: types.GroupToolType, Documents: testDocs()[:1]}
	_, user, err := Prompt(job, taxonomy.Default())
	require.NoError(t, err)
	assert.Contains(t, user, "## Category: ai_tutor - AI Tutors\nArea: Tool Type\n")
	assert.Contains(t, user, `"category_id"`)
}

func TestPrompt_Concern(t *testing.T) {
	job := types.BatchJob{ID: "cn_metacognition_batch_1", CategoryID: "metacognition", Mode: types.GroupConcern, Documents: testDocs()}
	system, user, err := Prompt(job, taxonomy.Default())
	require.NoError(t, err)

	assert.Contains(t, system, "risks and unintended consequences")
	assert.True(t, strings.HasPrefix(user, "## Concern Theme: Metacognition & Self-regulation\n"))
	assert.Contains(t, user, "## Papers mentioning this concern (2 papers)")
	assert.Contains(t, user, `"implications_for_lmics"`)
	assert.NotContains(t, user, `"cognitive_offloading_coverage"`)
}
