// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/internal/metrics"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// DocumentsFile holds the extracted documents under the research directory.
const DocumentsFile = "extracted_documents.json"

// minPaperChars skips parsed papers too short to be real text.
const minPaperChars = 100

// Stats summarizes an ExtractAll run.
type Stats struct {
	TotalPapers         int
	TotalOriginalChars  int
	TotalExtractedChars int
	TotalSections       int
	FallbackCount       int
}

// OriginalTokens estimates tokens of the full texts.
func (s Stats) OriginalTokens() int { return s.TotalOriginalChars / 4 }

// ExtractedTokens estimates tokens of the extracts.
func (s Stats) ExtractedTokens() int { return s.TotalExtractedChars / 4 }

// CompressionRatio is extracted over original characters.
func (s Stats) CompressionRatio() float64 {
	if s.TotalOriginalChars == 0 {
		return 0
	}
	return float64(s.TotalExtractedChars) / float64(s.TotalOriginalChars)
}

// FallbackPct is the percentage of papers that needed the fallback ladder.
func (s Stats) FallbackPct() float64 {
	if s.TotalPapers == 0 {
		return 0
	}
	return float64(s.FallbackCount) / float64(s.TotalPapers) * 100
}

// AvgSections is the mean number of sections per paper.
func (s Stats) AvgSections() float64 {
	if s.TotalPapers == 0 {
		return 0
	}
	return float64(s.TotalSections) / float64(s.TotalPapers)
}

// Print writes a human-readable summary.
func (s Stats) Print(w io.Writer) {
	fmt.Fprintf(w, "Papers extracted:   %d\n", s.TotalPapers)
	fmt.Fprintf(w, "Original tokens:    %d\n", s.OriginalTokens())
	fmt.Fprintf(w, "Extracted tokens:   %d\n", s.ExtractedTokens())
	fmt.Fprintf(w, "Compression:        %.1f%% of original\n", s.CompressionRatio()*100)
	fmt.Fprintf(w, "Avg sections/paper: %.1f\n", s.AvgSections())
	fmt.Fprintf(w, "Fallback used:      %d papers (%.1f%%)\n", s.FallbackCount, s.FallbackPct())
}

// ExtractAll extracts every parsed paper whose score has status scored and
// a relevance of at least minRelevance, attaching the score's relevance,
// labels, and summary. Output follows the order of papers.
func ExtractAll(papers []types.ParsedPaper, scores []types.PaperScore, minRelevance int, opts Options) ([]types.ExtractedDocument, Stats) {
	byID := make(map[string]types.PaperScore, len(scores))
	for _, s := range scores {
		if s.PaperID != "" {
			byID[s.PaperID] = s
		}
	}

	var docs []types.ExtractedDocument
	var stats Stats
	for _, p := range papers {
		s, ok := byID[p.PaperID]
		if !ok || s.Status != types.ScoreScored || s.RelevanceScore < minRelevance {
			continue
		}
		if len(p.Text) < minPaperChars {
			continue
		}

		doc := Extract(p.Text, p.Title, opts)
		doc.ID = p.PaperID
		doc.RelevanceScore = s.RelevanceScore
		doc.CategoryIDs = s.FrameworkIDs
		doc.ToolTypeIDs = s.ToolTypes
		doc.Summary = s.Summary
		docs = append(docs, doc)

		stats.TotalPapers++
		stats.TotalOriginalChars += doc.TotalChars
		stats.TotalExtractedChars += doc.ExtractedChars
		stats.TotalSections += len(doc.Sections)
		metrics.DocumentsExtracted.Inc()
		if doc.UsedFallback {
			stats.FallbackCount++
			metrics.ExtractionFallbacks.Inc()
		}
	}
	return docs, stats
}

// SaveDocuments writes extracted documents for the planning stages.
func SaveDocuments(path string, docs []types.ExtractedDocument) error {
	if docs == nil {
		docs = []types.ExtractedDocument{}
	}
	return jsonfile.Write(path, docs)
}

// LoadDocuments reads documents written by SaveDocuments.
func LoadDocuments(path string) ([]types.ExtractedDocument, error) {
	var docs []types.ExtractedDocument
	ok, err := jsonfile.Read(path, &docs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, eris.Errorf("sections: %s not found; run extract first", path)
	}
	return docs, nil
}
