// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/edu-benchmark-mapper/internal/classify"
	"github.com/pdiddy/edu-benchmark-mapper/internal/sources"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify candidate records with the LLM",
	Long: `Classify sends candidate records to the LLM in batches and merges the
returned framework categories and tool types into each record. Curated
records keep their labels and gain the LLM's; other records take the LLM's
labels. Records the LLM judges not to be benchmarks are tagged, not removed.

Without an Anthropic API key the stage is skipped and the heuristic labels
from search are kept.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Int("batch-size", 0, "records per request (default from config)")
	classifyCmd.Flags().Int("workers", 0, "parallel requests (default from config)")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cc := cfg.Classify
	if n, _ := cmd.Flags().GetInt("batch-size"); n > 0 {
		cc.BatchSize = n
	}
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		cc.Workers = n
	}

	outDir := cfg.Paths.OutputDir
	records, err := sources.LoadCandidates(filepath.Join(outDir, sources.CandidatesFile))
	if err != nil {
		return err
	}
	details, err := sources.LoadDetails(outDir)
	if err != nil {
		return err
	}
	tax, err := loadTaxonomy()
	if err != nil {
		return err
	}

	stage, err := classify.NewStage(cc, tax, classify.WithDetails(sources.NewDetailIndex(details)))
	if errors.Is(err, classify.ErrNoCredentials) {
		zap.L().Warn("skipping LLM classification", zap.Error(err))
		fmt.Fprintln(os.Stderr, "no Anthropic API key: keeping heuristic classification")
		return nil
	}
	if err != nil {
		return err
	}

	summary, err := stage.Run(cmd.Context(), records, os.Stdout)
	if err != nil {
		return err
	}
	path, err := sources.SaveCandidates(outDir, records)
	if err != nil {
		return err
	}
	fmt.Printf("saved %d records to %s\n", len(records), path)

	if summary.HasFailures() {
		return fmt.Errorf("%d batch(es) failed classification", len(summary.Failures))
	}
	return nil
}
