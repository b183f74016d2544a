// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the benchmark-mapper CLI.
//
// Each pipeline stage is a subcommand reading and writing flat files under
// the output directory: search, classify, download, parse, score, extract,
// plan, submit, status, collect, merge, curate, and catalog.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/edu-benchmark-mapper/internal/config"
	"github.com/pdiddy/edu-benchmark-mapper/internal/metrics"
	"github.com/pdiddy/edu-benchmark-mapper/internal/secrets"
	"github.com/pdiddy/edu-benchmark-mapper/internal/taxonomy"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is loaded by the root command before any subcommand runs.
var cfg *types.Config

const (
	secretsDir = ".secrets/"
	dotEnvFile = ".env"
)

// rootCmd is the base command for the benchmark-mapper CLI.
var rootCmd = &cobra.Command{
	Use:   "benchmark-mapper",
	Short: "Map AI-in-education benchmarks onto a research taxonomy",
	Long: `benchmark-mapper discovers datasets and papers about AI in education,
classifies them against a taxonomy of framework categories and tool types,
scores paper relevance, and prepares token-budgeted synthesis batches.

Stages run in order: search, classify, download, parse, score, extract,
plan, submit, status, collect, merge. Each reads the previous stage's files
from the output directory, so any stage can be re-run on its own.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := config.InitLogger(c.Log); err != nil {
			return err
		}

		s, err := secrets.LoadAll(secretsDir, dotEnvFile)
		if err != nil {
			return err
		}
		if keys := s.Keys(); len(keys) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		config.ApplySecrets(c, s)

		if cmd.Flags().Changed("metrics-file") {
			c.Metrics.File, _ = cmd.Flags().GetString("metrics-file")
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cfg != nil {
			if err := metrics.WriteTextfile(cfg.Metrics.File); err != nil {
				zap.L().Warn("could not write metrics", zap.Error(err))
			}
		}
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./benchmark-mapper.yaml or ~/.config/benchmark-mapper/benchmark-mapper.yaml)")
	rootCmd.PersistentFlags().String("metrics-file", "", "write Prometheus metrics in textfile format to this path")
}

// loadTaxonomy returns the configured taxonomy override or the built-in one.
func loadTaxonomy() (*taxonomy.Taxonomy, error) {
	if cfg.Taxonomy.File == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.Load(cfg.Taxonomy.File)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
