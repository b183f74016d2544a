// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/edu-benchmark-mapper/internal/heuristic"
	"github.com/pdiddy/edu-benchmark-mapper/internal/httputil"
	"github.com/pdiddy/edu-benchmark-mapper/internal/sources"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Collect candidate benchmarks from HuggingFace and Semantic Scholar",
	Long: `Search runs every query against the HuggingFace dataset search and the
Semantic Scholar paper search, adds the HuggingFace daily papers feed, and
deduplicates the results by source URL. Paper details (TLDR, open-access PDF,
citations) are fetched for Semantic Scholar records.

The scraped records are merged with the curated benchmark list (curated
entries win), labelled by the keyword heuristic, and written to the
candidates file for the classify stage.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Bool("skip-search", false, "reuse the cached search results instead of querying")
	searchCmd.Flags().Bool("known-only", false, "use only the curated benchmark list")
	searchCmd.Flags().Bool("search-only", false, "skip the curated benchmark list")
	searchCmd.Flags().StringSlice("query", nil, "additional search query (repeatable)")
	searchCmd.Flags().Bool("no-daily-papers", false, "skip the HuggingFace daily papers feed")
	searchCmd.Flags().Bool("no-s2", false, "skip Semantic Scholar search and details")
	searchCmd.Flags().Bool("no-details", false, "skip fetching Semantic Scholar paper details")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	skipSearch, _ := cmd.Flags().GetBool("skip-search")
	knownOnly, _ := cmd.Flags().GetBool("known-only")
	searchOnly, _ := cmd.Flags().GetBool("search-only")
	extra, _ := cmd.Flags().GetStringSlice("query")
	noDaily, _ := cmd.Flags().GetBool("no-daily-papers")
	noS2, _ := cmd.Flags().GetBool("no-s2")
	noDetails, _ := cmd.Flags().GetBool("no-details")

	if knownOnly && searchOnly {
		return fmt.Errorf("--known-only and --search-only are mutually exclusive")
	}

	sc := cfg.Search
	outDir := cfg.Paths.OutputDir
	client := httputil.NewClient(sc.Timeout, sc.UserAgent, sc.Delay)
	s2 := sources.NewSemanticScholar(client, sc.SemanticScholarAPIKey, sc.MaxPapers)

	var scraped []types.CandidateRecord
	if !knownOnly {
		var err error
		if skipSearch {
			scraped, err = sources.LoadCache(outDir)
			if err != nil {
				return err
			}
			fmt.Printf("loaded %d cached records\n", len(scraped))
		} else {
			scraped, err = scrape(cmd, client, s2, extra, noDaily, noS2)
			if err != nil {
				return err
			}
		}

		if !noS2 && !noDetails {
			ids := sources.DetailIDs(scraped)
			fmt.Printf("fetching details for %d papers\n", len(ids))
			details, err := s2.Details(ctx, ids)
			if err != nil {
				// Details only enrich later stages; keep the search results.
				zap.L().Warn("paper details failed", zap.Error(err))
				fmt.Fprintf(os.Stderr, "failed  details: %v\n", err)
			} else {
				path, err := sources.SaveDetails(outDir, details)
				if err != nil {
					return err
				}
				fmt.Printf("saved %d paper details to %s\n", len(details), path)
			}
		}
	}

	var curated []types.CandidateRecord
	if !searchOnly {
		var err error
		curated, err = sources.LoadCurated(sc.CuratedFile)
		if err != nil {
			return err
		}
		fmt.Printf("loaded %d curated benchmarks\n", len(curated))
	}

	merged, dropped := sources.Merge(scraped, curated)
	if dropped > 0 {
		fmt.Printf("dropped %d scraped records duplicating curated entries\n", dropped)
	}

	tax, err := loadTaxonomy()
	if err != nil {
		return err
	}
	labelled := heuristic.NewClassifier(tax).ApplyAll(merged)

	path, err := sources.SaveCandidates(outDir, merged)
	if err != nil {
		return err
	}
	fmt.Printf("\n%d candidates (%d with heuristic labels) saved to %s\n", len(merged), labelled, path)
	return nil
}

func scrape(cmd *cobra.Command, client *httputil.Client, s2 *sources.SemanticScholar, extra []string, noDaily, noS2 bool) ([]types.CandidateRecord, error) {
	sc := cfg.Search

	var qf *sources.QueryFile
	if sc.QueryFile != "" {
		var err error
		if qf, err = sources.ReadQueryFile(sc.QueryFile); err != nil {
			return nil, err
		}
	}
	queries := sources.Queries(qf, extra)

	backends := []sources.Backend{sources.NewHFDatasets(client, sc.HuggingFaceToken, sc.MaxDatasets)}
	if !noS2 {
		backends = append(backends, s2)
	}
	var feeds []sources.Feed
	if sc.DailyPapers && !noDaily {
		feeds = append(feeds, sources.NewHFDailyPapers(client, sc.HuggingFaceToken))
	}

	fmt.Printf("searching %d queries across %d backends\n", len(queries), len(backends))
	out, err := sources.Search(cmd.Context(), queries, backends, feeds, os.Stdout)
	if err != nil {
		return nil, err
	}
	for _, e := range out.BackendErrors {
		fmt.Fprintf(os.Stderr, "failed  %s\n", e)
	}

	path, err := sources.SaveCache(cfg.Paths.OutputDir, out.Records)
	if err != nil {
		return nil, err
	}
	fmt.Printf("%d records (%d duplicates removed) cached to %s\n", len(out.Records), out.DupsRemoved, path)
	return out.Records, nil
}
