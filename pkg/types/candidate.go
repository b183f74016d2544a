// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared records for the benchmark-mapper pipeline:
// candidate records produced by discovery, parsed and extracted papers,
// relevance scores, synthesis batch jobs, and synthesis results.
package types

// SourceType identifies what kind of artifact a candidate record points at.
type SourceType string

const (
	SourcePaper   SourceType = "paper"
	SourceDataset SourceType = "dataset"
	SourceSpace   SourceType = "space"
)

// Tag markers attached to candidate records by the pipeline.
const (
	// TagNotABenchmark marks a record the classifier judged irrelevant.
	// Records carrying it are kept; presentation layers filter them out.
	TagNotABenchmark = "not-a-benchmark"

	// TagProvenancePrefix prefixes provenance tags (e.g. "llm:reasoning").
	TagProvenancePrefix = "llm:"
)

// CandidateRecord is a discovered or curated benchmark entry.
type CandidateRecord struct {
	// Name is the display name of the benchmark, dataset, or paper.
	Name string `json:"name" yaml:"name"`

	// SourceURL uniquely identifies the record within a run.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// SourceType is paper, dataset, or space.
	SourceType SourceType `json:"source_type" yaml:"source_type"`

	// Description is a bounded-length summary of the record.
	Description string `json:"description" yaml:"description"`

	// Date is an ISO date prefix (e.g. "2024-03-11") or empty.
	Date string `json:"date" yaml:"date"`

	// Tags is an ordered list of labels, including provenance markers.
	Tags []string `json:"tags" yaml:"tags"`

	// FrameworkIDs lists matched taxonomy category IDs.
	FrameworkIDs []string `json:"framework_ids" yaml:"framework_ids"`

	// ToolTypes lists matched tool-type IDs.
	ToolTypes []string `json:"tool_types" yaml:"tool_types"`

	// Curated is true when the record was supplied with hand-assigned labels.
	// Curated labels are never removed by later stages.
	Curated bool `json:"curated,omitempty" yaml:"curated,omitempty"`
}

// HasTag reports whether the record carries tag.
func (r CandidateRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends tag if it is not already present.
func (r *CandidateRecord) AddTag(tag string) {
	if !r.HasTag(tag) {
		r.Tags = append(r.Tags, tag)
	}
}

// ClassificationResult is the validated verdict for one record from the
// LLM classification stage.
type ClassificationResult struct {
	// Index is the record's position within its classification batch.
	Index int `json:"index" yaml:"index"`

	// IsBenchmark is false for entries judged irrelevant to the target audience.
	IsBenchmark bool `json:"is_benchmark" yaml:"is_benchmark"`

	// FrameworkIDs lists taxonomy categories, unknown IDs removed.
	FrameworkIDs []string `json:"framework_ids" yaml:"framework_ids"`

	// ToolTypes lists tool types, unknown IDs removed.
	ToolTypes []string `json:"tool_types" yaml:"tool_types"`

	// Reasoning is the model's one-line justification.
	Reasoning string `json:"reasoning" yaml:"reasoning"`
}
