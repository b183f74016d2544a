// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edu-benchmark-mapper/internal/acquire"
	"github.com/pdiddy/edu-benchmark-mapper/internal/convert"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract and clean text from downloaded PDFs",
	Long: `Parse runs pdftotext on every downloaded PDF not yet in the papers file,
cleans the text (ligatures, quotes, dashes, page numbers), and appends one
JSON line per paper. Scanned PDFs without a text layer are reported as
failures.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().Int("workers", 0, "parallel parses (default from config)")
	parseCmd.Flags().Int("limit", 0, "parse at most this many papers")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	workers := cfg.Conversion.Workers
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		workers = n
	}
	limit, _ := cmd.Flags().GetInt("limit")

	ext, err := convert.NewPDFToText(cfg.Conversion.Tool)
	if err != nil {
		return err
	}

	outDir := cfg.Paths.OutputDir
	manifest := acquire.LoadManifest(filepath.Join(outDir, acquire.ManifestFile))
	jsonlPath := filepath.Join(outDir, convert.PapersFile)

	p := convert.NewParser(ext, cfg.Paths.PapersDir, workers)
	pending, parsed, err := p.Pending(manifest.Downloaded(), jsonlPath, limit)
	if err != nil {
		return err
	}
	fmt.Printf("already parsed: %d\n", parsed)
	fmt.Printf("to parse:       %d\n", len(pending))
	if len(pending) == 0 {
		return nil
	}

	summary, err := p.Run(cmd.Context(), pending, jsonlPath, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d paper(s) failed parsing", summary.Failed)
	}
	return nil
}
