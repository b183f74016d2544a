// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edu-benchmark-mapper/internal/catalog"
	"github.com/pdiddy/edu-benchmark-mapper/internal/score"
	"github.com/pdiddy/edu-benchmark-mapper/internal/sources"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Index candidates and scores in SQLite and query them",
	Long: `Catalog maintains a SQLite index of classified candidate records and
paper relevance scores under the catalog directory. Use "catalog store" to
ingest changed files, "catalog search" for full-text and filtered queries,
and "catalog export" to write the matching records as YAML and JSON.`,
}

var catalogStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest the candidates and scores files into the catalog",
	RunE:  runCatalogStore,
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogSearch,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export matching catalog records to YAML and JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogExport,
}

func init() {
	for _, c := range []*cobra.Command{catalogSearchCmd, catalogExportCmd} {
		c.Flags().String("category", "", "filter by framework category ID")
		c.Flags().String("tool-type", "", "filter by tool-type ID")
		c.Flags().String("source-type", "", "filter by source type: dataset or paper")
		c.Flags().Int("min-score", 0, "minimum paper relevance score")
	}
	catalogSearchCmd.Flags().Int("max-results", 0, "maximum number of results (default from config)")
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	catalogCmd.AddCommand(catalogStoreCmd, catalogSearchCmd, catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogStore(cmd *cobra.Command, args []string) error {
	outDir := cfg.Paths.OutputDir
	details, err := sources.LoadDetails(outDir)
	if err != nil {
		return err
	}

	st, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := st.Ingest(cmd.Context(), catalog.Sources{
		Candidates: filepath.Join(outDir, sources.CandidatesFile),
		Scores:     filepath.Join(outDir, score.ScoresFile),
		Details:    sources.NewDetailIndex(details),
	}, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed to ingest", summary.Failed)
	}
	return nil
}

func queryOptions(cmd *cobra.Command, args []string) catalog.QueryOptions {
	var opts catalog.QueryOptions
	if len(args) > 0 {
		opts.Query = args[0]
	}
	opts.Category, _ = cmd.Flags().GetString("category")
	opts.ToolType, _ = cmd.Flags().GetString("tool-type")
	sourceType, _ := cmd.Flags().GetString("source-type")
	opts.SourceType = types.SourceType(sourceType)
	opts.MinScore, _ = cmd.Flags().GetInt("min-score")
	return opts
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	opts := queryOptions(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("provide a query or at least one filter")
	}
	opts.MaxResults, _ = cmd.Flags().GetInt("max-results")
	asJSON, _ := cmd.Flags().GetBool("json")

	st, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := st.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		rel := "-"
		if r.RelevanceScore > 0 {
			rel = strconv.Itoa(r.RelevanceScore)
		}
		fmt.Printf("%3s  %-8s %-50.50s %s\n", rel, r.SourceType, r.Name, r.SourceURL)
	}
	fmt.Printf("\n%d result(s)\n", len(results))
	return nil
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	opts := queryOptions(cmd, args)

	st, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return err
	}
	defer st.Close()

	yamlPath, err := st.ExportYAML(cmd.Context(), opts)
	if err != nil {
		return err
	}
	jsonPath, err := st.ExportJSON(cmd.Context(), opts)
	if err != nil {
		return err
	}
	fmt.Printf("exported to %s and %s\n", yamlPath, jsonPath)
	return nil
}
