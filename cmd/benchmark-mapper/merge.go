// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edu-benchmark-mapper/internal/synthesis"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge sub-batch analyses and regenerate the Markdown reports",
	Long: `Merge reads every analysis file in the research directory. Files holding
results from several sub-batches are merged into one analysis, keeping the
first occurrence of each keyed entry, and each Markdown report is rewritten. The JSON files are left as collected.`,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	_, err := synthesis.Regenerate(cfg.Paths.ResearchDir, os.Stdout)
	return err
}
