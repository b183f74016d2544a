// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edu-benchmark-mapper/internal/convert"
	"github.com/pdiddy/edu-benchmark-mapper/internal/score"
	"github.com/pdiddy/edu-benchmark-mapper/internal/sections"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Reduce relevant papers to their key sections",
	Long: `Extract selects scored papers at or above the relevance threshold and
keeps the sections named by the profile (lean, standard, deep, full) or by
--sections. A fallback ladder guarantees a minimum extract for papers whose
headings cannot be detected. The documents are saved for the plan stage.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("profile", "", "section profile: "+strings.Join(sections.ProfileNames(), ", "))
	extractCmd.Flags().String("sections", "", "comma-separated section list, overriding --profile")
	extractCmd.Flags().Int("min-relevance", -1, "minimum relevance score (default from config)")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ec := cfg.Extraction
	if p, _ := cmd.Flags().GetString("profile"); p != "" {
		ec.Profile = p
		ec.Sections = nil
	}
	if list, _ := cmd.Flags().GetString("sections"); list != "" {
		names, unknown := sections.ParseSectionList(list)
		if len(unknown) > 0 {
			fmt.Fprintf(os.Stderr, "warning: non-canonical section(s) match raw headings only: %s\n", strings.Join(unknown, ", "))
		}
		ec.Sections = names
	}
	if n, _ := cmd.Flags().GetInt("min-relevance"); n >= 0 {
		ec.MinRelevance = n
	}

	outDir := cfg.Paths.OutputDir
	papers, err := convert.LoadPapers(filepath.Join(outDir, convert.PapersFile))
	if err != nil {
		return err
	}
	store, err := score.LoadStore(filepath.Join(outDir, score.ScoresFile))
	if err != nil {
		return err
	}

	docs, stats := sections.ExtractAll(papers, store.List(), ec.MinRelevance, sections.Options{
		Profile:         ec.Profile,
		Sections:        ec.Sections,
		MinExtractChars: ec.MinExtractChars,
		MaxSectionChars: ec.MaxSectionChars,
	})
	stats.Print(os.Stdout)

	path := filepath.Join(cfg.Paths.ResearchDir, sections.DocumentsFile)
	if err := sections.SaveDocuments(path, docs); err != nil {
		return err
	}
	fmt.Printf("\nsaved %d documents to %s\n", len(docs), path)
	return nil
}
