// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edu-benchmark-mapper/internal/planner"
	"github.com/pdiddy/edu-benchmark-mapper/internal/synthesis"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the saved plan as a Message Batch",
	Long: `Submit renders one synthesis request per planned job and sends them as a
single Message Batch, recording the batch in the batch state file. With
--dry-run it prints the token and cost estimate and writes a sample request
instead. With --realtime each job is sent through the Messages API and the
results are saved immediately.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().Bool("dry-run", false, "estimate and preview without submitting")
	submitCmd.Flags().Bool("realtime", false, "call the Messages API per job instead of batching")
	submitCmd.Flags().Int("workers", 4, "parallel requests in realtime mode")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	realtime, _ := cmd.Flags().GetBool("realtime")
	workers, _ := cmd.Flags().GetInt("workers")

	dir := cfg.Paths.ResearchDir
	plan, err := planner.Load(filepath.Join(dir, planner.PlanFile))
	if err != nil {
		return err
	}
	tax, err := loadTaxonomy()
	if err != nil {
		return err
	}
	runner := synthesis.NewRunner(cfg.Synthesis, dir, tax, synthesis.WithWorkers(workers))

	if realtime && !dryRun {
		summary, err := runner.Realtime(cmd.Context(), plan.Jobs, os.Stdout)
		if err != nil {
			return err
		}
		fmt.Printf("\n%d succeeded, %d failed\n", summary.Succeeded, len(summary.Failed))
		if len(summary.Failed) > 0 {
			return fmt.Errorf("%d job(s) failed", len(summary.Failed))
		}
		return nil
	}

	_, err = runner.Submit(cmd.Context(), plan.Jobs, dryRun, os.Stdout)
	return err
}
