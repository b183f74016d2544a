// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edu-benchmark-mapper/internal/acquire"
	"github.com/pdiddy/edu-benchmark-mapper/internal/sources"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download open-access PDFs for paper candidates",
	Long: `Download builds the download list from paper candidates and their
Semantic Scholar details (open-access PDF, else arXiv), then fetches every
PDF not already on disk. Outcomes are recorded in the papers manifest so an
interrupted run resumes where it stopped.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().Int("workers", 0, "parallel downloads (default from config)")
	downloadCmd.Flags().Int("limit", 0, "download at most this many papers")
	downloadCmd.Flags().Bool("dry-run", false, "list what would be downloaded")
	downloadCmd.Flags().Bool("clear-failed", false, "drop failed entries from the manifest before running")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	dc := cfg.Download
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		dc.Workers = n
	}
	limit, _ := cmd.Flags().GetInt("limit")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	clearFailed, _ := cmd.Flags().GetBool("clear-failed")

	outDir := cfg.Paths.OutputDir
	records, err := sources.LoadCandidates(filepath.Join(outDir, sources.CandidatesFile))
	if err != nil {
		return err
	}
	details, err := sources.LoadDetails(outDir)
	if err != nil {
		return err
	}

	list, stats := acquire.BuildList(records, sources.NewDetailIndex(details))
	fmt.Printf("paper records:      %d\n", stats.Papers)
	fmt.Printf("  no details:       %d\n", stats.NoDetail)
	fmt.Printf("  no PDF URL:       %d\n", stats.NoPDF)
	fmt.Printf("  duplicates:       %d\n", stats.Duplicates)
	fmt.Printf("downloadable:       %d\n", stats.Downloadable)

	manifestPath := filepath.Join(outDir, acquire.ManifestFile)
	manifest := acquire.LoadManifest(manifestPath)
	if clearFailed {
		fmt.Printf("cleared %d failed entries\n", manifest.ClearFailed())
	}

	d := acquire.New(dc, cfg.Paths.PapersDir)
	pending, done := d.Pending(list, manifest, limit)
	d.PrintPlan(os.Stdout, pending, done, dryRun)
	if dryRun || len(pending) == 0 {
		return nil
	}

	summary, err := d.Run(cmd.Context(), pending, manifest, manifestPath, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d paper(s) failed download", summary.Failed)
	}
	return nil
}
