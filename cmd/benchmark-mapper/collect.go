// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edu-benchmark-mapper/internal/synthesis"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Download and save the results of ended batches",
	Long: `Collect fetches the results of every ended batch not yet collected,
saves the raw results, and writes one analysis JSON and Markdown report per
group. Sub-batches of one group accumulate in the same analysis file; run
merge afterwards to render them as a single report. Batches still
processing are skipped unless --wait is given.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().Bool("wait", false, "poll until every submitted batch has ended")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	wait, _ := cmd.Flags().GetBool("wait")

	dir := cfg.Paths.ResearchDir
	tax, err := loadTaxonomy()
	if err != nil {
		return err
	}
	runner := synthesis.NewRunner(cfg.Synthesis, dir, tax)

	if wait {
		states, err := synthesis.LoadStates(dir)
		if err != nil {
			return err
		}
		for _, s := range states {
			if s.Status == types.JobCollected {
				continue
			}
			fmt.Printf("waiting for %s\n", s.JobID)
			if _, err := runner.Wait(cmd.Context(), s.JobID); err != nil {
				return err
			}
		}
	}

	summary, err := runner.Collect(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d result(s) could not be used", summary.Failures())
	}
	return nil
}
