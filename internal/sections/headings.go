// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Canonical section names and the heading variants that map onto them.
var sectionVariants = map[string][]string{
	"abstract":     {"abstract"},
	"introduction": {"introduction", "overview"},
	"related work": {"related work", "literature review", "background", "prior work", "related studies"},
	"methods": {
		"methodology", "methods", "method", "approach",
		"proposed method", "proposed approach", "system design",
		"system overview", "architecture", "materials and methods",
		"procedure", "design", "implementation",
	},
	"results":    {"results", "findings", "experimental results", "experiment", "experiments", "evaluation"},
	"discussion": {"discussion"},
	"conclusion": {
		"conclusion", "conclusions", "concluding remarks",
		"summary", "summary and conclusion", "summary and conclusions",
		"conclusion and future work", "conclusions and future work",
		"discussion and conclusion", "discussion and conclusions",
	},
	"limitations": {"limitations", "limitation", "future work", "limitations and future work"},
	"dataset":     {"dataset", "data collection", "data", "corpus", "benchmark", "setup", "experimental setup"},
	"analysis":    {"analysis", "error analysis", "case study", "case studies", "ablation", "ablation study"},
}

// Headings that never contribute text.
var alwaysSkip = []string{
	"references", "bibliography",
	"acknowledgement", "acknowledgements", "acknowledgment", "acknowledgments",
	"appendix", "supplementary", "supplementary material",
	"author contributions", "funding", "conflicts of interest",
	"data availability", "ethics statement", "compliance with ethical standards",
}

// Extra words that mark a heading line without mapping to a canonical name.
var extraHeadingKeywords = []string{"framework", "model", "case study", "case studies"}

var (
	variantToCanonical = map[string]string{}

	// variantsByLength is every variant, longest first, for prefix matching.
	variantsByLength []string

	// headingKeywords is every variant, skip word, and extra keyword,
	// longest first.
	headingKeywords []string
)

func init() {
	for canonical, variants := range sectionVariants {
		for _, v := range variants {
			variantToCanonical[v] = canonical
		}
	}
	for v := range variantToCanonical {
		variantsByLength = append(variantsByLength, v)
	}
	sortLongestFirst(variantsByLength)

	set := map[string]bool{}
	for v := range variantToCanonical {
		set[v] = true
	}
	for _, s := range alwaysSkip {
		set[s] = true
	}
	for _, s := range extraHeadingKeywords {
		set[s] = true
	}
	for k := range set {
		headingKeywords = append(headingKeywords, k)
	}
	sortLongestFirst(headingKeywords)
}

// sortLongestFirst orders by descending length, then alphabetically so the
// order is stable across runs.
func sortLongestFirst(s []string) {
	sort.Slice(s, func(i, j int) bool {
		if len(s[i]) != len(s[j]) {
			return len(s[i]) > len(s[j])
		}
		return s[i] < s[j]
	})
}

var (
	numberedHeading = regexp.MustCompile(`^(\d+\.?\d*\.?\s+)(.+)$`)
	romanHeading    = regexp.MustCompile(`^((?:I{1,3}|IV|V(?:I{0,3})?|IX|X(?:I{0,3})?)\.?\s+)(.+)$`)
)

// heading is a detected heading line.
type heading struct {
	line       int
	normalized string
}

// detectHeadings finds heading lines using, in order: a numeric ordinal,
// a Roman-numeral ordinal, or a line that is a known keyword (optionally
// followed by "." or ":"). An all-caps line starting with a keyword also
// counts.
func detectHeadings(lines []string) []heading {
	var out []heading
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		n := utf8.RuneCountInString(stripped)
		if n == 0 || n > 120 {
			continue
		}

		var text string
		if m := numberedHeading.FindStringSubmatch(stripped); m != nil && n < 100 {
			text = strings.TrimSpace(m[2])
		}
		if text == "" {
			if m := romanHeading.FindStringSubmatch(stripped); m != nil && n < 100 {
				text = strings.TrimSpace(m[2])
			}
		}
		if text == "" {
			text = keywordHeading(stripped)
		}
		if text == "" {
			continue
		}
		normalized := strings.TrimRight(strings.TrimSpace(strings.ToLower(text)), ".:;")
		out = append(out, heading{line: i, normalized: normalized})
	}
	return out
}

func keywordHeading(stripped string) string {
	lower := strings.ToLower(stripped)
	upper := isUpper(stripped)
	for _, kw := range headingKeywords {
		if lower == kw || lower == kw+"." || lower == kw+":" {
			return kw
		}
		if upper && strings.HasPrefix(lower, kw) {
			return kw
		}
	}
	return ""
}

// isUpper reports whether s has at least one cased letter and no lowercase
// letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// isSkipHeading reports whether a normalized heading is, or starts with,
// an always-skip name.
func isSkipHeading(h string) bool {
	for _, s := range alwaysSkip {
		if strings.HasPrefix(h, s) {
			return true
		}
	}
	return false
}

// canonicalName maps a normalized heading to its canonical section name by
// exact match, then by longest variant prefix. ok is false for unknown
// headings.
func canonicalName(h string) (name string, ok bool) {
	if c, found := variantToCanonical[h]; found {
		return c, true
	}
	for _, v := range variantsByLength {
		if strings.HasPrefix(h, v) {
			return variantToCanonical[v], true
		}
	}
	return "", false
}

// CanonicalNames returns every canonical section name, sorted.
func CanonicalNames() []string {
	out := make([]string, 0, len(sectionVariants))
	for k := range sectionVariants {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsCanonical reports whether name is a canonical section name.
func IsCanonical(name string) bool {
	_, ok := sectionVariants[name]
	return ok
}
