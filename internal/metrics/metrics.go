// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the pipeline's Prometheus counters. They are
// registered on a private registry and exported as a node-exporter textfile
// at the end of a command; there is no metrics server.
package metrics

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rotisserie/eris"
)

const namespace = "benchmark_mapper"

// Registry holds every metric in this package.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// SourceRecords counts records returned by source backends.
	// Labels: backend (semantic_scholar, hf_datasets, hf_daily_papers)
	SourceRecords = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sources",
		Name:      "records_total",
		Help:      "Records returned by source backends",
	}, []string{"backend"})

	// ClassifyBatches counts LLM classification batches.
	// Labels: outcome (ok, failed)
	ClassifyBatches = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "classify",
		Name:      "batches_total",
		Help:      "LLM classification batches by outcome",
	}, []string{"outcome"})

	// PapersScored counts relevance scoring calls.
	// Labels: status (scored, failed)
	PapersScored = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "score",
		Name:      "papers_total",
		Help:      "Papers scored by status",
	}, []string{"status"})

	// Downloads counts PDF download attempts.
	// Labels: status (downloaded, failed, skipped)
	Downloads = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "download",
		Name:      "papers_total",
		Help:      "PDF downloads by status",
	}, []string{"status"})

	// Parses counts PDF-to-text conversions.
	// Labels: outcome (ok, failed)
	Parses = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "convert",
		Name:      "papers_total",
		Help:      "PDF parses by outcome",
	}, []string{"outcome"})

	// DocumentsExtracted counts section extractions.
	DocumentsExtracted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "extract",
		Name:      "documents_total",
		Help:      "Documents reduced to sections",
	})

	// ExtractionFallbacks counts extractions that needed the fallback ladder.
	ExtractionFallbacks = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "extract",
		Name:      "fallbacks_total",
		Help:      "Extractions that used the fallback ladder",
	})

	// PlannedJobs is the number of synthesis jobs in the latest plan.
	// Labels: mode (framework, tool_type, concern)
	PlannedJobs = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "plan",
		Name:      "jobs",
		Help:      "Synthesis jobs in the latest plan",
	}, []string{"mode"})

	// SynthesisResults counts collected synthesis results.
	// Labels: status (success, parse_error, api_error, save_error)
	SynthesisResults = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "synthesis",
		Name:      "results_total",
		Help:      "Collected synthesis results by status",
	}, []string{"status"})

	// LLMTokens counts tokens reported by the Anthropic API.
	// Labels: direction (input, output)
	LLMTokens = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "tokens_total",
		Help:      "Tokens consumed by LLM calls",
	}, []string{"direction"})
)

// WriteTextfile writes the registry to path in the text exposition format.
// An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "creating metrics directory for %s", path)
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return eris.Wrapf(err, "writing metrics to %s", path)
	}
	return nil
}
