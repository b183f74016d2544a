// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"sort"
	"strings"
)

// Profile names.
const (
	ProfileLean     = "lean"
	ProfileStandard = "standard"
	ProfileDeep     = "deep"
	ProfileFull     = "full"
)

// Profiles maps a profile name to the canonical sections it keeps.
var Profiles = map[string][]string{
	ProfileLean:     {"abstract", "conclusion"},
	ProfileStandard: {"abstract", "introduction", "results", "discussion", "conclusion", "limitations"},
	ProfileDeep:     {"abstract", "introduction", "related work", "methods", "results", "discussion", "conclusion", "limitations"},
	ProfileFull:     CanonicalNames(),
}

// FallbackPriority is the order sections are selected and added when the
// extract is below the minimum size.
var FallbackPriority = []string{
	"abstract", "introduction", "conclusion", "results", "discussion",
	"limitations", "methods", "related work", "dataset", "analysis",
}

// ProfileNames returns the known profile names, sorted.
func ProfileNames() []string {
	out := make([]string, 0, len(Profiles))
	for k := range Profiles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ParseSectionList splits a comma-separated section list and reports names
// that are not canonical. Unknown names are still returned in sections;
// they can match headings kept under their raw name.
func ParseSectionList(s string) (sections, unknown []string) {
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		sections = append(sections, name)
		if !IsCanonical(name) {
			unknown = append(unknown, name)
		}
	}
	return sections, unknown
}
