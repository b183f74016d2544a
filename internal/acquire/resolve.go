// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"regexp"
	"strings"

	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// Download sources recorded in the manifest.
const (
	SourceOpenAccess = "openAccessPdf"
	SourceArxiv      = "arxiv"
)

// arxivPDFBase is the arXiv PDF endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivPDFBase = "https://arxiv.org/pdf/"

// maxFilenameStem bounds the title part of a PDF filename, in runes.
const maxFilenameStem = 120

var (
	unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	filenameSpaces      = regexp.MustCompile(`\s+`)
)

// Details resolves external paper metadata for a record's source URL.
type Details interface {
	Lookup(sourceURL string) (types.PaperDetail, bool)
}

// SanitizeFilename turns a paper title into a filesystem-safe stem.
func SanitizeFilename(title string) string {
	clean := unsafeFilenameChars.ReplaceAllString(title, "")
	clean = filenameSpaces.ReplaceAllString(strings.TrimSpace(clean), "_")
	if r := []rune(clean); len(r) > maxFilenameStem {
		clean = string(r[:maxFilenameStem])
	}
	clean = strings.TrimRight(clean, "._")
	if clean == "" {
		return "untitled"
	}
	return clean
}

// Filename is the PDF filename for a paper: the sanitized title, an
// underscore, the first eight characters of the paper ID, and ".pdf".
func Filename(title, paperID string) string {
	id := paperID
	if len(id) > 8 {
		id = id[:8]
	}
	return SanitizeFilename(title) + "_" + id + ".pdf"
}

// ResolvePDF picks the download URL for a paper: its open-access PDF, else
// the arXiv PDF. It reports false when neither exists.
func ResolvePDF(d types.PaperDetail) (pdfURL, source string, ok bool) {
	if d.OpenAccessPDF != nil && d.OpenAccessPDF.URL != "" {
		return d.OpenAccessPDF.URL, SourceOpenAccess, true
	}
	if a := d.ArxivID(); a != "" {
		return arxivPDFBase + a, SourceArxiv, true
	}
	return "", "", false
}

// ListStats explains how a download list was built.
type ListStats struct {
	Papers       int
	NoDetail     int
	NoPDF        int
	Duplicates   int
	Downloadable int
}

// BuildList cross-references paper records with their details and returns
// one pending download per distinct paper ID that has a PDF URL.
func BuildList(records []types.CandidateRecord, details Details) ([]types.PaperDownload, ListStats) {
	var (
		out   []types.PaperDownload
		stats ListStats
		seen  = map[string]bool{}
	)
	for _, r := range records {
		if r.SourceType != types.SourcePaper {
			continue
		}
		stats.Papers++

		d, ok := details.Lookup(r.SourceURL)
		if !ok || d.PaperID == "" {
			stats.NoDetail++
			continue
		}
		if seen[d.PaperID] {
			stats.Duplicates++
			continue
		}
		seen[d.PaperID] = true

		pdfURL, source, ok := ResolvePDF(d)
		if !ok {
			stats.NoPDF++
			continue
		}
		title := d.Title
		if title == "" {
			title = r.Name
		}
		out = append(out, types.PaperDownload{
			PaperID:  d.PaperID,
			Title:    title,
			PDFURL:   pdfURL,
			Source:   source,
			Filename: Filename(title, d.PaperID),
			Status:   types.DownloadPending,
		})
	}
	stats.Downloadable = len(out)
	return out, stats
}
