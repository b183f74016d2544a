// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edu-benchmark-mapper/internal/curate"
	"github.com/pdiddy/edu-benchmark-mapper/internal/score"
	"github.com/pdiddy/edu-benchmark-mapper/internal/sources"
)

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Build the published benchmark dataset",
	Long: `Curate turns the classified candidates into the published dataset.
Records without framework categories, records tagged not-a-benchmark, and
reviewer dismissals are dropped. Entries are enriched with paper details and
relevance scores and written to benchmarks.json.

"curate dismiss <review.json>" adds the benchmark IDs exported by a review
session to the dismissal archive, so later builds keep them out.`,
	RunE: runCurate,
}

var curateDismissCmd = &cobra.Command{
	Use:   "dismiss <review.json>",
	Short: "Add reviewed dismissals to the dismissal archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runCurateDismiss,
}

func init() {
	curateCmd.Flags().Bool("stats", false, "print counts without writing the dataset")

	curateCmd.AddCommand(curateDismissCmd)
	rootCmd.AddCommand(curateCmd)
}

func runCurate(cmd *cobra.Command, args []string) error {
	statsOnly, _ := cmd.Flags().GetBool("stats")

	outDir := cfg.Paths.OutputDir
	records, err := sources.LoadCandidates(filepath.Join(outDir, sources.CandidatesFile))
	if err != nil {
		return err
	}
	details, err := sources.LoadDetails(outDir)
	if err != nil {
		return err
	}
	dismissed, err := curate.LoadDismissed(filepath.Join(outDir, curate.DismissedFile))
	if err != nil {
		return err
	}

	scores, err := score.LoadStore(filepath.Join(outDir, score.ScoresFile))
	if err != nil {
		return err
	}

	benchmarks, stats := curate.Build(records, curate.Options{
		Details:   sources.NewDetailIndex(details),
		Scores:    scores,
		Dismissed: dismissed,
	})
	stats.Print(os.Stdout)
	if statsOnly {
		return nil
	}

	path := filepath.Join(outDir, curate.BenchmarksFile)
	if err := curate.Save(path, benchmarks); err != nil {
		return err
	}
	fmt.Printf("\nsaved %d benchmarks to %s\n", len(benchmarks), path)
	return nil
}

func runCurateDismiss(cmd *cobra.Command, args []string) error {
	archive := filepath.Join(cfg.Paths.OutputDir, curate.DismissedFile)
	set, added, err := curate.ApplyDismissals(archive, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("added %d dismissals (%d total) to %s\n", added, len(set), archive)
	return nil
}
