// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/edu-benchmark-mapper/internal/taxonomy"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

const categorySystem = "You are a senior education research analyst specializing in AI/LLM applications " +
	"in K-12 education (ages 5-18). You have deep expertise in learning science, " +
	"cognitive load theory, educational measurement, and the impact of AI tools on " +
	"student learning outcomes.\n\n" +
	"Your task is to synthesize a collection of research papers within a specific " +
	"education framework category and produce a structured State-of-the-Art analysis.\n\n" +
	"IMPORTANT: Focus your analysis on what the papers in THIS category actually cover. " +
	"Note any learning science concerns (cognitive offloading, over-reliance, productive " +
	"struggle, metacognition) IF the papers address them, but do not force this lens onto " +
	"categories where it is not the primary focus. For pedagogical interaction categories " +
	"(e.g. 2.3), cognitive offloading is a key concern; for other categories (e.g. " +
	"multilingual, content knowledge, scoring), focus on what those papers actually measure " +
	"and what gaps exist within their own domain.\n\n" +
	"You must respond with ONLY valid JSON -- no markdown fences, no commentary."

const concernSystem = "You are a senior education research analyst specialising in the risks and " +
	"unintended consequences of AI/LLM use in K-12 education (ages 5-18). You " +
	"have deep expertise in learning science, cognitive psychology, educational " +
	"technology, and the evidence on how AI tools affect genuine student learning.\n\n" +
	"Your task is to synthesise a collection of research papers related to a " +
	"specific concern or risk theme and produce a structured analysis of what " +
	"the literature says about this risk, how well it is understood, and what " +
	"gaps remain.\n\n" +
	"IMPORTANT: Focus on what the papers actually say about this concern. " +
	"Include both papers that directly study the risk AND papers where the risk " +
	"is a secondary finding. Distinguish between empirical evidence and " +
	"theoretical/opinion pieces.\n\n" +
	"You must respond with ONLY valid JSON -- no markdown fences, no commentary."

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// papersBlock is shared by both user prompts.
const papersBlock = `{{define "papers"}}{{range $i, $d := .Documents}}{{if $i}}

{{end}}--- Paper {{inc $i}} (relevance: {{$d.RelevanceScore}}/10) ---
{{$d.Text}}
{{end}}{{end}}`

var categoryTmpl = template.Must(template.New("category").Funcs(funcs).Parse(papersBlock + `## Category: {{.ID}} - {{.Info.Name}}
Area: {{.Info.Area}}
Description: {{.Info.Description}}

## Papers in this category ({{len .Documents}} papers)

{{template "papers" .}}

## Analysis Instructions

Synthesize ALL {{len .Documents}} papers above into a structured SoTA analysis for category '{{.ID}} - {{.Info.Name}}'. Produce a JSON object with:

{
  "category_id": "<str>",
  "category_name": "<str>",
  "paper_count": <int>,
  "executive_summary": "<2-3 paragraph overview of the state of the art>",
  "key_themes": [
    {
      "theme": "<theme name>",
      "description": "<1-2 sentences>",
      "paper_count": <int>,
      "representative_papers": ["<paper title>", ...]
    }
  ],
  "what_is_measured": [
    "<specific thing being measured/evaluated>"
  ],
  "what_is_not_measured": [
    "<identified gap - what SHOULD be measured but is not>"
  ],
  "cognitive_offloading_coverage": {  // ONLY include this if papers in this category
    "papers_addressing_it": <int>,  // actually discuss cognitive offloading, over-reliance,
    "summary": "<str>",             // or learning science concerns. Omit for categories
    "specific_findings": ["..."]    // where it is not relevant.
  },
  "methodological_trends": [
    "<common methodology or approach>"
  ],
  "notable_benchmarks": [
    {
      "name": "<benchmark/dataset name>",
      "paper_title": "<source paper>",
      "what_it_measures": "<brief description>",
      "strength": "<why it is notable>"
    }
  ],
  "recommendations": [
    "<actionable recommendation for the field>"
  ],
  "top_papers": [
    {
      "title": "<paper title>",
      "why_important": "<1 sentence>"
    }
  ]
}`))

var concernTmpl = template.Must(template.New("concern").Funcs(funcs).Parse(papersBlock + `## Concern Theme: {{.Info.Name}}
Description: {{.Info.Description}}

## Papers mentioning this concern ({{len .Documents}} papers)

{{template "papers" .}}

## Analysis Instructions

These {{len .Documents}} papers were found by keyword-matching for terms related to '{{.Info.Name}}'. Some may address the concern directly; others may mention it tangentially. Synthesise what the literature tells us about this concern.

Produce a JSON object with:

{
  "concern_id": "<str>",
  "concern_name": "<str>",
  "paper_count": <int>,
  "papers_directly_addressing": <int>,
  "executive_summary": "<2-3 paragraph overview of what research says about this risk>",
  "key_findings": [
    {
      "finding": "<clear statement of finding>",
      "evidence_type": "<empirical|theoretical|review|opinion>",
      "paper_count": <int>,
      "representative_papers": ["<paper title>", ...]
    }
  ],
  "evidence_for_risk": [
    "<specific evidence that this risk is real and significant>"
  ],
  "evidence_against_or_mitigating": [
    "<evidence that the risk is overstated, or effective mitigations exist>"
  ],
  "what_is_measured": [
    "<specific metrics or measures used to study this concern>"
  ],
  "what_is_not_measured": [
    "<gaps - what SHOULD be studied about this concern but is not>"
  ],
  "context_factors": [
    "<factors that influence whether the risk manifests - age, subject, tool type, etc.>"
  ],
  "notable_studies": [
    {
      "title": "<paper title>",
      "design": "<brief method description>",
      "key_result": "<main finding relevant to this concern>",
      "sample": "<who was studied - age, context, N>"
    }
  ],
  "implications_for_lmics": "<how this concern specifically manifests in low- and middle-income country contexts>",
  "recommendations": [
    "<actionable recommendation for mitigating this risk>"
  ],
  "top_papers": [
    {
      "title": "<paper title>",
      "why_important": "<1 sentence>"
    }
  ]
}`))

type promptData struct {
	ID        string
	Info      taxonomy.GroupInfo
	Documents []types.ExtractedDocument
}

// Prompt renders the system and user prompts for one job. Concern jobs use
// the concern schema; framework and tool-type jobs share the category schema.
func Prompt(job types.BatchJob, tax *taxonomy.Taxonomy) (system, user string, err error) {
	data := promptData{
		ID:        job.CategoryID,
		Info:      tax.Resolve(job.Mode, job.CategoryID),
		Documents: job.Documents,
	}
	tmpl, system := categoryTmpl, categorySystem
	if job.Mode == types.GroupConcern {
		tmpl, system = concernTmpl, concernSystem
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return system, buf.String(), nil
}
