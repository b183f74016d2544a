// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns downloaded PDFs into cleaned plain text and appends
// one record per paper to a JSONL file. Papers already present in the file
// are skipped, so an interrupted run resumes where it stopped.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/internal/metrics"
	"github.com/pdiddy/edu-benchmark-mapper/internal/workpool"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// PapersFile is the JSONL file of parsed papers under the output directory.
const PapersFile = "all_papers.jsonl"

// minTextChars is the shortest extraction accepted. Anything shorter is
// almost always a scanned image PDF.
const minTextChars = 10

// Extraction is the raw output of a PDF backend.
type Extraction struct {
	Text  string
	Pages int
}

// Extractor reads the text of one PDF. pdftotext is the production backend.
type Extractor interface {
	Extract(ctx context.Context, pdfPath string) (Extraction, error)
}

// Summary holds the outcome of a parse run.
type Summary struct {
	Parsed int
	Failed int
	Pages  int
	Chars  int
}

// Total returns the number of papers processed.
func (s Summary) Total() int { return s.Parsed + s.Failed }

// HasFailures reports whether any paper failed to parse.
func (s Summary) HasFailures() bool { return s.Failed > 0 }

// Parser converts downloaded papers with an Extractor.
type Parser struct {
	ext       Extractor
	papersDir string
	workers   int
}

// NewParser returns a Parser reading PDFs from papersDir.
func NewParser(ext Extractor, papersDir string, workers int) *Parser {
	return &Parser{ext: ext, papersDir: papersDir, workers: workers}
}

// ParsePaper extracts and cleans one downloaded paper.
func (p *Parser) ParsePaper(ctx context.Context, d types.PaperDownload) (types.ParsedPaper, error) {
	raw, err := p.ext.Extract(ctx, filepath.Join(p.papersDir, d.Filename))
	if err != nil {
		return types.ParsedPaper{}, err
	}
	text := CleanText(raw.Text)
	n := utf8.RuneCountInString(text)
	if n < minTextChars {
		return types.ParsedPaper{}, eris.New("no text extracted (likely a scanned PDF)")
	}
	return types.ParsedPaper{
		PaperID:   d.PaperID,
		Title:     d.Title,
		Text:      text,
		CharCount: n,
		PageCount: raw.Pages,
	}, nil
}

// LoadPapers reads the parsed papers JSONL. Undecodable lines are skipped
// with a warning.
func LoadPapers(path string) ([]types.ParsedPaper, error) {
	papers, skipped, err := jsonfile.ReadLines[types.ParsedPaper](path)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		zap.L().Warn("skipped undecodable lines", zap.String("path", path), zap.Int("lines", skipped))
	}
	return papers, nil
}

// Pending returns downloaded papers whose PDF exists and whose ID is not yet
// in the JSONL at jsonlPath, capped at limit when limit > 0. It also returns
// how many were already parsed.
func (p *Parser) Pending(downloaded []types.PaperDownload, jsonlPath string, limit int) ([]types.PaperDownload, int, error) {
	existing, err := LoadPapers(jsonlPath)
	if err != nil {
		return nil, 0, err
	}
	done := make(map[string]bool, len(existing))
	for _, e := range existing {
		done[e.PaperID] = true
	}

	var (
		out    []types.PaperDownload
		parsed int
	)
	for _, d := range downloaded {
		if done[d.PaperID] {
			parsed++
			continue
		}
		if _, err := os.Stat(filepath.Join(p.papersDir, d.Filename)); err != nil {
			continue
		}
		out = append(out, d)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, parsed, nil
}

type outcome struct {
	paper types.ParsedPaper
	err   error
}

// Run parses pending papers concurrently and appends each success to the
// JSONL at jsonlPath as it completes.
func (p *Parser) Run(ctx context.Context, pending []types.PaperDownload, jsonlPath string, w io.Writer) (Summary, error) {
	var (
		sum       Summary
		appendErr error
	)
	err := workpool.Run(ctx, pending, workpool.Options{
		Workers: p.workers,
		Name:    "parse",
	}, func(ctx context.Context, d types.PaperDownload) (outcome, error) {
		pp, err := p.ParsePaper(ctx, d)
		return outcome{paper: pp, err: err}, nil
	}, func(d types.PaperDownload, res outcome) {
		if res.err == nil && appendErr == nil {
			res.err = jsonfile.Append(jsonlPath, res.paper)
			if res.err != nil {
				appendErr = res.err
			}
		}
		if res.err != nil {
			sum.Failed++
			metrics.Parses.WithLabelValues("failed").Inc()
			zap.L().Debug("parse failed", zap.String("paper_id", d.PaperID), zap.Error(res.err))
			fmt.Fprintf(w, "failed  %s: %v\n", d.Filename, res.err)
			return
		}
		sum.Parsed++
		sum.Pages += res.paper.PageCount
		sum.Chars += res.paper.CharCount
		metrics.Parses.WithLabelValues("ok").Inc()
		fmt.Fprintf(w, "parsed  %s (%d pages)\n", d.Filename, res.paper.PageCount)
	})

	fmt.Fprintf(w, "\n%d parsed, %d failed, %d pages, %.1fM chars\n",
		sum.Parsed, sum.Failed, sum.Pages, float64(sum.Chars)/1e6)
	if err == nil && appendErr != nil {
		err = eris.Wrap(appendErr, "appending parsed papers")
	}
	return sum, err
}
