// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"fmt"
	"strings"

	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// partSeparator joins the Markdown of several sub-batch analyses.
const partSeparator = "\n\n---\n\n"

// Markdown renders an analysis as a readable report. Concern analyses use
// the concern layout.
func Markdown(r types.SynthesisResult) string {
	if r.IsConcern() {
		return concernMarkdown(r)
	}
	return categoryMarkdown(r)
}

type mdWriter struct {
	lines []string
}

func (w *mdWriter) line(s string) { w.lines = append(w.lines, s) }

func (w *mdWriter) linef(format string, args ...any) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func (w *mdWriter) blank() { w.lines = append(w.lines, "") }

// bullets writes a headed bullet list, or nothing when items is empty.
func (w *mdWriter) bullets(heading string, items []string) {
	if len(items) == 0 {
		return
	}
	w.line("## " + heading)
	w.blank()
	for _, it := range items {
		w.line("- " + it)
	}
	w.blank()
}

func (w *mdWriter) prose(heading, text string) {
	if text == "" {
		return
	}
	w.line("## " + heading)
	w.blank()
	w.line(text)
	w.blank()
}

func (w *mdWriter) topPapers(papers []types.TopPaper) {
	if len(papers) == 0 {
		return
	}
	w.line("## Top Papers")
	w.blank()
	for i, p := range papers {
		w.linef("%d. **%s**", i+1, p.Title)
		w.line("   " + p.WhyImportant)
		w.blank()
	}
}

func (w *mdWriter) String() string { return strings.Join(w.lines, "\n") }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func categoryMarkdown(r types.SynthesisResult) string {
	w := &mdWriter{}
	w.linef("# %s — %s", orDefault(r.CategoryID, "?"), orDefault(r.CategoryName, "Unknown"))
	w.blank()
	w.linef("**%d papers analysed**", r.PaperCount)
	w.blank()

	w.prose("Executive Summary", r.ExecutiveSummary)

	if len(r.KeyThemes) > 0 {
		w.line("## Key Themes")
		w.blank()
		for _, t := range r.KeyThemes {
			w.line("### " + t.Theme)
			w.blank()
			w.linef("%s (%d papers)", t.Description, t.PaperCount)
			w.blank()
			if len(t.RepresentativePapers) > 0 {
				w.line("Representative papers:")
				for _, p := range t.RepresentativePapers {
					w.line("- " + p)
				}
				w.blank()
			}
		}
	}

	w.bullets("What Is Being Measured", r.WhatIsMeasured)
	w.bullets("Gaps — What Is NOT Being Measured", r.WhatIsNotMeasured)

	if co := r.OffloadingCoverage; co != nil {
		w.line("## Cognitive Offloading Coverage")
		w.blank()
		w.linef("**Papers addressing cognitive offloading: %d/%d**", co.PapersAddressingIt, r.PaperCount)
		w.blank()
		if co.Summary != "" {
			w.line(co.Summary)
			w.blank()
		}
		if len(co.SpecificFindings) > 0 {
			w.line("Specific findings:")
			w.blank()
			for _, f := range co.SpecificFindings {
				w.line("- " + f)
			}
			w.blank()
		}
	}

	w.bullets("Methodological Trends", r.MethodologicalTrends)

	if len(r.NotableBenchmarks) > 0 {
		w.line("## Notable Benchmarks")
		w.blank()
		for _, b := range r.NotableBenchmarks {
			w.line("### " + b.Name)
			w.blank()
			if b.PaperTitle != "" {
				w.linef("*From: %s*", b.PaperTitle)
				w.blank()
			}
			if b.WhatItMeasures != "" {
				w.line("**Measures:** " + b.WhatItMeasures)
				w.blank()
			}
			if b.Strength != "" {
				w.line("**Why notable:** " + b.Strength)
				w.blank()
			}
		}
	}

	w.topPapers(r.TopPapers)
	w.bullets("Recommendations", r.Recommendations)
	return w.String()
}

func concernMarkdown(r types.SynthesisResult) string {
	w := &mdWriter{}
	w.line("# " + orDefault(r.ConcernName, "Unknown"))
	w.blank()
	w.linef("**%d papers matched** (%d directly addressing this concern)", r.PaperCount, r.PapersDirectlyAddressing)
	w.blank()

	w.prose("Executive Summary", r.ExecutiveSummary)

	if len(r.KeyFindings) > 0 {
		w.line("## Key Findings")
		w.blank()
		for _, f := range r.KeyFindings {
			w.line("### " + f.Finding)
			w.blank()
			w.linef("*Evidence type: %s | %d papers*", f.EvidenceType, f.PaperCount)
			if len(f.RepresentativePapers) > 0 {
				w.blank()
				for _, p := range f.RepresentativePapers {
					w.line("- " + p)
				}
			}
			w.blank()
		}
	}

	w.bullets("Evidence For This Risk", r.EvidenceForRisk)
	w.bullets("Mitigating Evidence", r.EvidenceAgainst)
	w.bullets("What Is Being Measured", r.WhatIsMeasured)
	w.bullets("Gaps — What Is NOT Being Measured", r.WhatIsNotMeasured)
	w.bullets("Context Factors", r.ContextFactors)

	if len(r.NotableStudies) > 0 {
		w.line("## Notable Studies")
		w.blank()
		for _, s := range r.NotableStudies {
			w.line("### " + s.Title)
			w.blank()
			if s.Design != "" {
				w.line("**Design:** " + s.Design)
			}
			if s.Sample != "" {
				w.line("**Sample:** " + s.Sample)
			}
			if s.KeyResult != "" {
				w.line("**Key result:** " + s.KeyResult)
			}
			w.blank()
		}
	}

	w.prose("Implications for LMICs", r.ImplicationsForLMICs)
	w.bullets("Recommendations", r.Recommendations)
	w.topPapers(r.TopPapers)
	return w.String()
}
