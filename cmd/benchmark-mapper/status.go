// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edu-benchmark-mapper/internal/synthesis"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the processing status of submitted batches",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	tax, err := loadTaxonomy()
	if err != nil {
		return err
	}
	runner := synthesis.NewRunner(cfg.Synthesis, cfg.Paths.ResearchDir, tax)
	_, err = runner.Status(cmd.Context(), os.Stdout)
	return err
}
