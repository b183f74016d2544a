// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return out, eris.Wrap(err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// PDFToText extracts text with poppler's pdftotext in layout mode.
type PDFToText struct {
	bin  string
	exec executor
}

// NewPDFToText returns an extractor running bin (usually "pdftotext"). It
// fails when bin is not on PATH.
func NewPDFToText(bin string) (*PDFToText, error) {
	return newPDFToText(bin, osExecutor{})
}

func newPDFToText(bin string, ex executor) (*PDFToText, error) {
	if bin == "" {
		bin = "pdftotext"
	}
	if _, err := ex.LookPath(bin); err != nil {
		return nil, eris.Wrapf(err, "%s not found (install poppler-utils)", bin)
	}
	return &PDFToText{bin: bin, exec: ex}, nil
}

// Extract runs pdftotext on pdfPath and writes the text to stdout. Pages are
// separated by form feeds, which also give the page count.
func (p *PDFToText) Extract(ctx context.Context, pdfPath string) (Extraction, error) {
	out, err := p.exec.Output(ctx, p.bin, "-layout", "-enc", "UTF-8", pdfPath, "-")
	if err != nil {
		return Extraction{}, eris.Wrapf(err, "running %s on %s", p.bin, pdfPath)
	}
	text := string(out)
	pages := strings.Count(text, "\f")
	if pages == 0 && strings.TrimSpace(text) != "" {
		pages = 1
	}
	return Extraction{
		Text:  strings.ReplaceAll(text, "\f", "\n\n"),
		Pages: pages,
	}, nil
}
