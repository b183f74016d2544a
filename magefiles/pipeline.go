//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline runs the benchmark-mapper stages through the built binary.
type Pipeline mg.Namespace

func stage(args ...string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Discover searches the sources and classifies the candidates.
func (Pipeline) Discover() error {
	if err := stage("search"); err != nil {
		return err
	}
	return stage("classify")
}

// Papers runs the paper stages in order, from download to scoring.
func (Pipeline) Papers() error {
	for _, s := range []string{"download", "parse", "score"} {
		if err := stage(s); err != nil {
			return err
		}
	}
	return nil
}

// Plan extracts sections and previews the synthesis batches for mode
// (framework, tool_type, or concern).
func (Pipeline) Plan(mode string) error {
	if err := stage("extract"); err != nil {
		return err
	}
	if err := stage("plan", "--mode", mode); err != nil {
		return err
	}
	return stage("submit", "--dry-run")
}

// Publish builds the curated dataset and refreshes the catalog.
func (Pipeline) Publish() error {
	if err := stage("curate"); err != nil {
		return err
	}
	return stage("catalog", "store")
}
