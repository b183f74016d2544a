// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"bytes"
	"text/template"
)

// truncationMarker follows paper text cut at MaxTextChars.
const truncationMarker = "\n\n[... text truncated ...]"

const systemPrompt = "You are an expert in AI for K-12 education research, with deep knowledge of " +
	"learning science, cognitive load theory, and the impact of AI on student learning.\n\n" +
	"Your task is to read a paper's full text and assess its relevance to evaluating " +
	"AI systems used in K-12 education (ages 5-18).\n\n" +
	"SCOPE: We care about benchmarks, evaluation suites, test sets, curated datasets, " +
	"AND research papers that directly evaluate AI's impact on K-12 student learning " +
	"(e.g. cognitive offloading studies, Socratic reasoning evaluations, learning " +
	"transfer experiments). University-level work is relevant only if it also covers " +
	"secondary/high-school content.\n\n" +
	"KEY CONCERN -- COGNITIVE OFFLOADING: We are especially interested in work that " +
	"measures whether AI tools promote genuine learning vs. cognitive offloading " +
	"(students letting AI do the thinking). This includes: Socratic reasoning, " +
	"productive struggle, desirable difficulties, metacognition, self-regulated " +
	"learning, critical thinking, student over-reliance/dependency, learning transfer, " +
	"cognitive load management, and student agency/autonomy.\n\n" +
	"You must respond with ONLY valid JSON -- no markdown fences, no commentary."

var userTmpl = template.Must(template.New("score").Parse(`{{.Taxonomy}}

## Paper to Assess

Title: {{.Title}}

Text:
{{.Text}}

## Scoring Rubric
Rate relevance_score from 1 to 10:
  10 = Purpose-built K-12 education AI benchmark or evaluation suite
   9 = Directly evaluates AI tools in K-12 classroom settings
   8 = Strong K-12 education focus, measures learning outcomes with AI
   7 = Clear education focus, relevant evaluation methodology
   6 = Partially relevant -- education adjacent or covers some K-12 aspects
   5 = General AI benchmark that includes education-relevant tasks
   4 = Tangentially related -- mostly about other domains but touches education
   3 = Weak relevance -- general NLP/AI with possible education applications
   2 = Barely relevant -- no direct education connection
   1 = Not relevant to K-12 education at all

## Instructions
1. Read the paper text carefully.
2. Assign framework_ids (only those DIRECTLY relevant).
3. Assign tool_types (only those DIRECTLY relevant).
4. Write a concise 1-2 sentence summary of what this paper does/measures.
5. Score relevance 1-10 using the rubric above.

## Required Response Format
Return a single JSON object:
{"relevance_score": <int 1-10>, "framework_ids": [<str>, ...], "tool_types": [<str>, ...], "summary": "<1-2 sentences>", "reasoning": "<one sentence explaining the score>"}`))

type promptData struct {
	Taxonomy string
	Title    string
	Text     string
}

func renderUser(d promptData) (string, error) {
	var buf bytes.Buffer
	if err := userTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// truncateText cuts text to limit runes and appends the truncation marker.
func truncateText(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + truncationMarker
}
