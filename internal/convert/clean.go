// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	punctuation = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
		"–", "-", "—", "--",
		"\x00", "",
	)
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankRuns       = regexp.MustCompile(`\n{3,}`)
	pageNumberLine  = regexp.MustCompile(`\n\s*\d+\s*\n`)
)

// CleanText repairs common PDF extraction artifacts: ligatures and other
// compatibility characters are folded (NFKC), typographic quotes and dashes
// become ASCII, null bytes are dropped, runs of spaces collapse, blank-line
// runs shrink to one blank line, and lines holding only a page number are
// removed.
func CleanText(s string) string {
	s = norm.NFKC.String(s)
	s = punctuation.Replace(s)
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	s = pageNumberLine.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
