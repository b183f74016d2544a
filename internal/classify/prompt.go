// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// Context excerpt limits, in runes.
const (
	summaryExcerpt     = 600
	descriptionExcerpt = 400
)

var systemTmpl = template.Must(template.New("system").Parse(`You classify candidate benchmarks, datasets, and papers for a map of how AI in education is evaluated. The target audience is K-12 learners (ages 5-18) and their teachers.

{{.Taxonomy}}

## Rules
1. Precision over recall. Assign a category or tool type only when the entry directly measures, evaluates, or supports it.
2. An entry may belong to several categories and several tool types.
3. Set is_benchmark to false for entries about professional or adult domains (medicine, law, finance, general NLP) with no relevance to school-age learners. Still return them; do not skip any index.
4. Use only the IDs listed above.

## Response format
Return ONLY a JSON array with one object per entry, no markdown fences and no commentary:
[{"index": <int>, "is_benchmark": <bool>, "framework_ids": ["<id>", ...], "tool_types": ["<id>", ...], "reasoning": "<one sentence>"}]
`))

var userTmpl = template.Must(template.New("user").Parse(`Classify these {{len .}} entries.
{{range .}}
[{{.Index}}]
{{.Context}}
{{end}}`))

type promptEntry struct {
	Index   int
	Context string
}

func renderSystem(taxonomyDesc string) (string, error) {
	var buf bytes.Buffer
	if err := systemTmpl.Execute(&buf, struct{ Taxonomy string }{taxonomyDesc}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderUser(entries []promptEntry) (string, error) {
	var buf bytes.Buffer
	if err := userTmpl.Execute(&buf, entries); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// recordContext is the per-record text the model sees: name, type, the best
// available external summary, a description excerpt, and fields of study.
func recordContext(r types.CandidateRecord, detail *types.PaperDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nType: %s\n", r.Name, r.SourceType)

	var fields []string
	if detail != nil {
		if s := detail.BestSummary(); s != "" {
			fmt.Fprintf(&b, "Summary: %s\n", excerpt(s, summaryExcerpt))
		}
		fields = detail.FieldsOfStudy
	}
	if r.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", excerpt(r.Description, descriptionExcerpt))
	}
	if len(fields) == 0 {
		fields = r.Tags
	}
	if len(fields) > 0 {
		fmt.Fprintf(&b, "Fields: %s\n", strings.Join(fields, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
