// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SynthesisResult is the structured analysis returned for one group.
// Category and tool-type analyses use the CategoryID/CategoryName fields;
// concern analyses use ConcernID/ConcernName and the concern-only fields.
type SynthesisResult struct {
	CategoryID   string `json:"category_id,omitempty" yaml:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty" yaml:"category_name,omitempty"`
	ConcernID    string `json:"concern_id,omitempty" yaml:"concern_id,omitempty"`
	ConcernName  string `json:"concern_name,omitempty" yaml:"concern_name,omitempty"`

	// PaperCount is the number of papers the analysis covers.
	PaperCount int `json:"paper_count" yaml:"paper_count"`

	// PapersDirectlyAddressing counts papers that study a concern directly.
	PapersDirectlyAddressing int `json:"papers_directly_addressing,omitempty" yaml:"papers_directly_addressing,omitempty"`

	// ExecutiveSummary is multi-paragraph prose.
	ExecutiveSummary string `json:"executive_summary" yaml:"executive_summary"`

	KeyThemes            []Theme     `json:"key_themes,omitempty" yaml:"key_themes,omitempty"`
	KeyFindings          []Finding   `json:"key_findings,omitempty" yaml:"key_findings,omitempty"`
	WhatIsMeasured       []string    `json:"what_is_measured" yaml:"what_is_measured"`
	WhatIsNotMeasured    []string    `json:"what_is_not_measured" yaml:"what_is_not_measured"`
	EvidenceForRisk      []string    `json:"evidence_for_risk,omitempty" yaml:"evidence_for_risk,omitempty"`
	EvidenceAgainst      []string    `json:"evidence_against_or_mitigating,omitempty" yaml:"evidence_against_or_mitigating,omitempty"`
	ContextFactors       []string    `json:"context_factors,omitempty" yaml:"context_factors,omitempty"`
	MethodologicalTrends []string    `json:"methodological_trends,omitempty" yaml:"methodological_trends,omitempty"`
	NotableBenchmarks    []Benchmark `json:"notable_benchmarks,omitempty" yaml:"notable_benchmarks,omitempty"`
	NotableStudies       []Study     `json:"notable_studies,omitempty" yaml:"notable_studies,omitempty"`
	Recommendations      []string    `json:"recommendations" yaml:"recommendations"`
	TopPapers            []TopPaper  `json:"top_papers" yaml:"top_papers"`

	// ImplicationsForLMICs describes how a concern manifests in low- and
	// middle-income countries.
	ImplicationsForLMICs string `json:"implications_for_lmics,omitempty" yaml:"implications_for_lmics,omitempty"`

	// OffloadingCoverage is present only when the model judged cognitive
	// offloading to be materially addressed.
	OffloadingCoverage *OffloadingCoverage `json:"cognitive_offloading_coverage,omitempty" yaml:"cognitive_offloading_coverage,omitempty"`
}

// IsConcern reports whether the result uses the concern schema.
func (r SynthesisResult) IsConcern() bool {
	return r.ConcernID != ""
}

// GroupID returns the concern or category ID.
func (r SynthesisResult) GroupID() string {
	if r.IsConcern() {
		return r.ConcernID
	}
	return r.CategoryID
}

// Theme is a recurring topic across papers, keyed by Theme.
type Theme struct {
	Theme                string   `json:"theme" yaml:"theme"`
	Description          string   `json:"description" yaml:"description"`
	PaperCount           int      `json:"paper_count" yaml:"paper_count"`
	RepresentativePapers []string `json:"representative_papers,omitempty" yaml:"representative_papers,omitempty"`
}

// Finding is a concern-level finding, keyed by Finding.
type Finding struct {
	Finding              string   `json:"finding" yaml:"finding"`
	EvidenceType         string   `json:"evidence_type" yaml:"evidence_type"`
	PaperCount           int      `json:"paper_count" yaml:"paper_count"`
	RepresentativePapers []string `json:"representative_papers,omitempty" yaml:"representative_papers,omitempty"`
}

// Benchmark is a notable benchmark or dataset, keyed by Name.
type Benchmark struct {
	Name           string `json:"name" yaml:"name"`
	PaperTitle     string `json:"paper_title" yaml:"paper_title"`
	WhatItMeasures string `json:"what_it_measures" yaml:"what_it_measures"`
	Strength       string `json:"strength" yaml:"strength"`
}

// Study is a notable concern study, keyed by Title.
type Study struct {
	Title     string `json:"title" yaml:"title"`
	Design    string `json:"design" yaml:"design"`
	KeyResult string `json:"key_result" yaml:"key_result"`
	Sample    string `json:"sample" yaml:"sample"`
}

// TopPaper is a highlighted paper, keyed by Title.
type TopPaper struct {
	Title        string `json:"title" yaml:"title"`
	WhyImportant string `json:"why_important" yaml:"why_important"`
}

// OffloadingCoverage summarizes cognitive-offloading discussion in a group.
type OffloadingCoverage struct {
	PapersAddressingIt int      `json:"papers_addressing_it" yaml:"papers_addressing_it"`
	Summary            string   `json:"summary" yaml:"summary"`
	SpecificFindings   []string `json:"specific_findings,omitempty" yaml:"specific_findings,omitempty"`
}
