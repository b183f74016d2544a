// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sections reduces a paper's full text to a bounded, ordered set of
// named sections. Headings are detected and normalized to canonical names,
// a profile selects which sections to keep, and a fallback ladder guarantees
// a minimum extract size for every document.
package sections

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// Defaults for Options fields left at zero.
const (
	DefaultMinExtractChars = 2000
	DefaultMaxSectionChars = 8000

	headerMaxLines = 20
	headerMaxChars = 1000
	headerMinChars = 50

	truncationMarker = "\n[... section truncated ...]"
)

// Synthetic section names produced by extraction.
const (
	SectionHeader   = "header"
	SectionOpening  = "opening"
	SectionClosing  = "closing"
	SectionFullText = "full_text"
)

// Options controls one extraction.
type Options struct {
	// Profile names a preset in Profiles. Unknown or empty selects standard.
	Profile string

	// Sections, when non-empty, overrides Profile.
	Sections []string

	// MinExtractChars is the floor the fallback ladder guarantees.
	MinExtractChars int

	// MaxSectionChars caps each section before the truncation marker.
	MaxSectionChars int
}

func (o Options) wanted() []string {
	if len(o.Sections) > 0 {
		return o.Sections
	}
	if p, ok := Profiles[o.Profile]; ok {
		return p
	}
	return Profiles[ProfileStandard]
}

func (o Options) withDefaults() Options {
	if o.MinExtractChars <= 0 {
		o.MinExtractChars = DefaultMinExtractChars
	}
	if o.MaxSectionChars <= 0 {
		o.MaxSectionChars = DefaultMaxSectionChars
	}
	return o
}

// Extract selects sections from text. The result always has at least one
// section. Documents no longer than twice MinExtractChars are returned
// whole as a single full_text section.
func Extract(text, title string, opts Options) types.ExtractedDocument {
	opts = opts.withDefaults()
	total := utf8.RuneCountInString(text)

	if total <= 2*opts.MinExtractChars {
		return fullText(text, title, total)
	}

	lines := strings.Split(text, "\n")
	headings := detectHeadings(lines)
	if len(headings) == 0 {
		return headTail(text, title, total, opts.MinExtractChars)
	}

	detected := collectSections(lines, headings, opts.MaxSectionChars)
	sel := newSelection()

	header := strings.TrimSpace(strings.Join(lines[:min(headings[0].line, headerMaxLines)], "\n"))
	if _, hasAbstract := detected.get("abstract"); !hasAbstract && utf8.RuneCountInString(header) > headerMinChars {
		sel.add(SectionHeader, truncateRunes(header, headerMaxChars))
	}

	wanted := opts.wanted()
	wantedSet := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		wantedSet[w] = true
	}
	for _, name := range FallbackPriority {
		if s, ok := detected.get(name); ok && wantedSet[name] {
			sel.add(name, s)
		}
	}
	for _, name := range wanted {
		if s, ok := detected.get(name); ok {
			sel.add(name, s)
		}
	}

	usedFallback := false
	if sel.chars < opts.MinExtractChars {
		usedFallback = true
		for _, name := range FallbackPriority {
			if sel.chars >= opts.MinExtractChars {
				break
			}
			if s, ok := detected.get(name); ok {
				sel.add(name, s)
			}
		}
	}
	if sel.chars < opts.MinExtractChars {
		for _, s := range detected.list {
			if sel.chars >= opts.MinExtractChars {
				break
			}
			sel.add(s.Name, s.Text)
		}
	}
	if sel.chars < opts.MinExtractChars {
		return headTail(text, title, total, opts.MinExtractChars)
	}

	return types.ExtractedDocument{
		Title:          title,
		Sections:       sel.list,
		TotalChars:     total,
		ExtractedChars: sel.chars,
		UsedFallback:   usedFallback,
	}
}

// collectSections gathers the text under every retained heading, keyed by
// canonical name (or the raw normalized heading when unknown). The first
// occurrence of a name wins.
func collectSections(lines []string, headings []heading, maxChars int) *selection {
	all := newSelection()
	for i, h := range headings {
		if isSkipHeading(h.normalized) {
			continue
		}
		name, ok := canonicalName(h.normalized)
		if !ok {
			name = h.normalized
		}
		end := len(lines)
		if i+1 < len(headings) {
			end = headings[i+1].line
		}
		body := strings.TrimSpace(strings.Join(lines[h.line:end], "\n"))
		if utf8.RuneCountInString(body) > maxChars {
			body = truncateRunes(body, maxChars) + truncationMarker
		}
		all.add(name, body)
	}
	return all
}

func fullText(text, title string, total int) types.ExtractedDocument {
	return types.ExtractedDocument{
		Title:          title,
		Sections:       []types.Section{{Name: SectionFullText, Text: text}},
		TotalChars:     total,
		ExtractedChars: total,
		UsedFallback:   true,
	}
}

// headTail keeps 60% of minChars from the start and the rest from the end.
// Windows are cut from the trimmed text so surrounding whitespace never
// counts toward the floor.
func headTail(text, title string, total, minChars int) types.ExtractedDocument {
	if total <= 2*minChars {
		return fullText(text, title, total)
	}
	head := []rune(strings.TrimLeftFunc(text, unicode.IsSpace))
	tail := []rune(strings.TrimRightFunc(text, unicode.IsSpace))
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minChars {
		return fullText(text, title, total)
	}
	headChars := minChars * 6 / 10
	tailChars := minChars - headChars

	sel := newSelection()
	sel.add(SectionOpening, string(head[:headChars]))
	sel.add(SectionClosing, string(tail[len(tail)-tailChars:]))

	return types.ExtractedDocument{
		Title:          title,
		Sections:       sel.list,
		TotalChars:     total,
		ExtractedChars: sel.chars,
		UsedFallback:   true,
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// selection is an insertion-ordered set of sections with a running size.
type selection struct {
	list  []types.Section
	index map[string]int
	chars int
}

func newSelection() *selection {
	return &selection{index: map[string]int{}}
}

// add appends a section unless it is empty or one with the same name is
// present.
func (s *selection) add(name, text string) {
	if text == "" {
		return
	}
	if _, dup := s.index[name]; dup {
		return
	}
	s.index[name] = len(s.list)
	s.list = append(s.list, types.Section{Name: name, Text: text})
	s.chars += utf8.RuneCountInString(text)
}

func (s *selection) get(name string) (string, bool) {
	i, ok := s.index[name]
	if !ok {
		return "", false
	}
	return s.list[i].Text, true
}
