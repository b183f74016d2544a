// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edu-benchmark-mapper/internal/planner"
	"github.com/pdiddy/edu-benchmark-mapper/internal/sections"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Group extracted documents and pack them into synthesis requests",
	Long: `Plan groups the extracted documents by framework category, tool type,
or concern theme and packs each group, most relevant first, into requests
that fit the token budget. The plan is printed and saved; submit sends
exactly the saved plan.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().String("mode", string(types.GroupFramework), "grouping: framework, tool_type, or concern")
	planCmd.Flags().StringSlice("only", nil, "plan only these group IDs")
	planCmd.Flags().Int("ceiling", 0, "input token budget per request (default from config)")
	planCmd.Flags().Int("max-docs", 0, "documents per request (default from config)")

	rootCmd.AddCommand(planCmd)
}

func parseMode(s string) (types.GroupMode, error) {
	switch m := types.GroupMode(s); m {
	case types.GroupFramework, types.GroupToolType, types.GroupConcern:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q: use framework, tool_type, or concern", s)
}

func runPlan(cmd *cobra.Command, args []string) error {
	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := parseMode(modeFlag)
	if err != nil {
		return err
	}
	only, _ := cmd.Flags().GetStringSlice("only")

	sc := cfg.Synthesis
	if n, _ := cmd.Flags().GetInt("ceiling"); n > 0 {
		sc.BatchCeiling = n
	}
	if n, _ := cmd.Flags().GetInt("max-docs"); n > 0 {
		sc.MaxDocsPerRequest = n
	}

	dir := cfg.Paths.ResearchDir
	docs, err := sections.LoadDocuments(filepath.Join(dir, sections.DocumentsFile))
	if err != nil {
		return err
	}
	tax, err := loadTaxonomy()
	if err != nil {
		return err
	}

	groups := planner.Group(docs, mode, tax)
	plan, err := planner.Pack(groups, planner.Options{
		Mode:              mode,
		Ceiling:           sc.BatchCeiling,
		PromptOverhead:    sc.PromptOverhead,
		OutputReserve:     sc.OutputReserve,
		MaxDocsPerRequest: sc.MaxDocsPerRequest,
		Only:              only,
	})
	if errors.Is(err, planner.ErrAllZeroTokens) {
		plan.Print(os.Stderr)
		return fmt.Errorf("nothing to plan: every selected document has zero extracted tokens")
	}
	if err != nil {
		return err
	}
	plan.Print(os.Stdout)

	path := filepath.Join(dir, planner.PlanFile)
	if err := plan.Save(path); err != nil {
		return err
	}
	fmt.Printf("saved plan to %s\n", path)
	return nil
}
