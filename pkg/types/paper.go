// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"unicode"
)

// DownloadStatus tracks a paper through the PDF download stage.
type DownloadStatus string

const (
	DownloadPending DownloadStatus = "pending"
	DownloadDone    DownloadStatus = "downloaded"
	DownloadFailed  DownloadStatus = "failed"
	DownloadSkipped DownloadStatus = "skipped"
)

// PaperDownload is one entry of the download manifest.
type PaperDownload struct {
	// PaperID is the Semantic Scholar paper ID.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// PDFURL is the resolved open-access or arXiv PDF URL.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Source is "openAccessPdf" or "arxiv".
	Source string `json:"source" yaml:"source"`

	// Filename is the PDF filename under the papers directory.
	Filename string `json:"filename" yaml:"filename"`

	// Status is the download state.
	Status DownloadStatus `json:"status" yaml:"status"`

	// Error holds the last failure reason, if any.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// SizeBytes is the size of the downloaded file.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`
}

// ParsedPaper is the plain-text rendition of one downloaded PDF, stored one
// per line in the papers JSONL file.
type ParsedPaper struct {
	// PaperID links back to the download manifest.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Text is the cleaned full text.
	Text string `json:"text" yaml:"text"`

	// CharCount is len(Text).
	CharCount int `json:"char_count" yaml:"char_count"`

	// PageCount is the number of PDF pages, when known.
	PageCount int `json:"page_count" yaml:"page_count"`
}

// ScoreStatus is the outcome of relevance scoring for one paper.
type ScoreStatus string

const (
	ScoreScored ScoreStatus = "scored"
	ScoreFailed ScoreStatus = "failed"
)

// PaperScore is the persisted relevance verdict for one paper.
type PaperScore struct {
	// PaperID identifies the paper.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// RelevanceScore is 1-10, or 0 when scoring failed.
	RelevanceScore int `json:"relevance_score" yaml:"relevance_score"`

	// FrameworkIDs lists validated taxonomy category IDs.
	FrameworkIDs []string `json:"framework_ids" yaml:"framework_ids"`

	// ToolTypes lists validated tool-type IDs.
	ToolTypes []string `json:"tool_types" yaml:"tool_types"`

	// Summary is a one to two sentence description of the paper.
	Summary string `json:"summary" yaml:"summary"`

	// Reasoning explains the score.
	Reasoning string `json:"reasoning" yaml:"reasoning"`

	// Status is scored or failed.
	Status ScoreStatus `json:"status" yaml:"status"`

	// RunID identifies the scoring run that produced this record.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// Section is one named span of an extracted document.
type Section struct {
	// Name is the canonical section name (or a synthetic one such as "header").
	Name string `json:"name" yaml:"name"`

	// Text is the section body, possibly truncated.
	Text string `json:"text" yaml:"text"`
}

// ExtractedDocument is a paper reduced to a bounded, ordered section set.
type ExtractedDocument struct {
	// ID is the paper ID.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Sections is ordered by extraction priority.
	Sections []Section `json:"sections" yaml:"sections"`

	// TotalChars is the length of the original text.
	TotalChars int `json:"total_chars" yaml:"total_chars"`

	// ExtractedChars is the sum of kept section lengths.
	ExtractedChars int `json:"extracted_chars" yaml:"extracted_chars"`

	// UsedFallback is true when the fallback ladder was needed.
	UsedFallback bool `json:"used_fallback" yaml:"used_fallback"`

	// RelevanceScore is attached from the scores file.
	RelevanceScore int `json:"relevance_score" yaml:"relevance_score"`

	// CategoryIDs is attached from the scores file.
	CategoryIDs []string `json:"category_ids" yaml:"category_ids"`

	// ToolTypeIDs is attached from the scores file.
	ToolTypeIDs []string `json:"tool_type_ids" yaml:"tool_type_ids"`

	// Summary is attached from the scores file.
	Summary string `json:"summary" yaml:"summary"`
}

// Tokens is a rough token estimate of the extracted text (4 chars per token).
func (d ExtractedDocument) Tokens() int {
	return d.ExtractedChars / 4
}

// Section returns the text of the named section and whether it exists.
func (d ExtractedDocument) Section(name string) (string, bool) {
	for _, s := range d.Sections {
		if s.Name == name {
			return s.Text, true
		}
	}
	return "", false
}

// CompressionRatio is ExtractedChars / TotalChars.
func (d ExtractedDocument) CompressionRatio() float64 {
	if d.TotalChars == 0 {
		return 0
	}
	return float64(d.ExtractedChars) / float64(d.TotalChars)
}

// Text renders the document for inclusion in a synthesis prompt.
func (d ExtractedDocument) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s", d.Title)
	if d.Summary != "" {
		fmt.Fprintf(&b, "\n\n**Summary**: %s", d.Summary)
	}
	for _, s := range d.Sections {
		fmt.Fprintf(&b, "\n\n## %s\n%s", titleCase(s.Name), s.Text)
	}
	return b.String()
}

// titleCase upper-cases the first letter of every word.
func titleCase(s string) string {
	runes := []rune(s)
	prevLetter := false
	for i, r := range runes {
		if unicode.IsLetter(r) {
			if !prevLetter {
				runes[i] = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(runes)
}

// PaperDetail is the Semantic Scholar metadata fetched for a discovered paper.
// It enriches classification prompts and resolves PDF download URLs.
type PaperDetail struct {
	PaperID        string         `json:"paperId" yaml:"paper_id"`
	Title          string         `json:"title" yaml:"title"`
	Abstract       string         `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	TLDR           *TLDR          `json:"tldr,omitempty" yaml:"tldr,omitempty"`
	Year           int            `json:"year,omitempty" yaml:"year,omitempty"`
	Venue          string         `json:"venue,omitempty" yaml:"venue,omitempty"`
	CitationCount  int            `json:"citationCount,omitempty" yaml:"citation_count,omitempty"`
	FieldsOfStudy  []string       `json:"fieldsOfStudy,omitempty" yaml:"fields_of_study,omitempty"`
	ExternalIDs    map[string]any `json:"externalIds,omitempty" yaml:"external_ids,omitempty"`
	OpenAccessPDF  *OpenAccessPDF `json:"openAccessPdf,omitempty" yaml:"open_access_pdf,omitempty"`
	PublicationDay string         `json:"publicationDate,omitempty" yaml:"publication_date,omitempty"`
}

// TLDR is Semantic Scholar's generated one-line summary.
type TLDR struct {
	Text string `json:"text" yaml:"text"`
}

// OpenAccessPDF points at a freely available PDF.
type OpenAccessPDF struct {
	URL string `json:"url" yaml:"url"`
}

// ArxivID returns the arXiv identifier, if any. Other external IDs (such as
// CorpusId) may be numeric, hence the untyped map.
func (d PaperDetail) ArxivID() string {
	s, _ := d.ExternalIDs["ArXiv"].(string)
	return s
}

// BestSummary returns the TLDR when present, otherwise the abstract.
func (d PaperDetail) BestSummary() string {
	if d.TLDR != nil && d.TLDR.Text != "" {
		return d.TLDR.Text
	}
	return d.Abstract
}
