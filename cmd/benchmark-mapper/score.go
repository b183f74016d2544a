// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edu-benchmark-mapper/internal/convert"
	"github.com/pdiddy/edu-benchmark-mapper/internal/score"
)

const dryRunPreview = 10

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score parsed papers for relevance to the taxonomy",
	Long: `Score sends each parsed paper's title and leading text to the LLM and
records a 1-10 relevance score with framework categories, tool types, and a
short summary. Papers already in the scores file are skipped, and the file is
checkpointed as results arrive.`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().Int("workers", 0, "parallel scoring calls (default from config)")
	scoreCmd.Flags().Int("limit", 0, "score at most this many papers")
	scoreCmd.Flags().Bool("dry-run", false, "list pending papers without scoring")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	sc := cfg.Score
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		sc.Workers = n
	}
	limit, _ := cmd.Flags().GetInt("limit")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	outDir := cfg.Paths.OutputDir
	papers, err := convert.LoadPapers(filepath.Join(outDir, convert.PapersFile))
	if err != nil {
		return err
	}
	scoresPath := filepath.Join(outDir, score.ScoresFile)
	store, err := score.LoadStore(scoresPath)
	if err != nil {
		return err
	}

	pending := score.Pending(papers, store, limit)
	fmt.Printf("papers:         %d\n", len(papers))
	fmt.Printf("already scored: %d\n", store.Len())
	fmt.Printf("to score:       %d\n", len(pending))

	if dryRun {
		for i, p := range pending {
			if i == dryRunPreview {
				fmt.Printf("  ... and %d more\n", len(pending)-dryRunPreview)
				break
			}
			fmt.Printf("  %s  %s\n", p.PaperID, p.Title)
		}
		return nil
	}
	if len(pending) == 0 {
		score.Distribute(store.List()).Print(os.Stdout)
		return nil
	}

	tax, err := loadTaxonomy()
	if err != nil {
		return err
	}
	scorer, err := score.New(sc, tax)
	if err != nil {
		return err
	}

	summary, err := scorer.Run(cmd.Context(), pending, store, scoresPath, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("\n%d scored, %d failed (run %s)\n", summary.Scored, summary.Failed, scorer.RunID())
	score.Distribute(store.List()).Print(os.Stdout)
	if summary.HasFailures() {
		return fmt.Errorf("%d paper(s) failed scoring", summary.Failed)
	}
	return nil
}
