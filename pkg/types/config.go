package types

import "time"

// Config is the full pipeline configuration, unmarshalled by viper from
// benchmark-mapper.yaml, BENCHMARK_MAPPER_* environment variables, and flags.
type Config struct {
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
	Paths      PathsConfig      `json:"paths" yaml:"paths" mapstructure:"paths"`
	Taxonomy   TaxonomyConfig   `json:"taxonomy" yaml:"taxonomy" mapstructure:"taxonomy"`
	Search     SearchConfig     `json:"search" yaml:"search" mapstructure:"search"`
	Classify   ClassifyConfig   `json:"classify" yaml:"classify" mapstructure:"classify"`
	Score      ScoreConfig      `json:"score" yaml:"score" mapstructure:"score"`
	Download   DownloadConfig   `json:"download" yaml:"download" mapstructure:"download"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Synthesis  SynthesisConfig  `json:"synthesis" yaml:"synthesis" mapstructure:"synthesis"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is "console" for development output or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"oneof=console json"`
}

// PathsConfig locates the pipeline's flat-file state.
type PathsConfig struct {
	// OutputDir holds candidates, caches, manifests, and scores (e.g. "output").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir" validate:"required"`

	// PapersDir holds downloaded PDFs (e.g. "output/papers").
	PapersDir string `json:"papers_dir" yaml:"papers_dir" mapstructure:"papers_dir" validate:"required"`

	// ResearchDir holds batch state and synthesis results (e.g. "output/research").
	ResearchDir string `json:"research_dir" yaml:"research_dir" mapstructure:"research_dir" validate:"required"`
}

// TaxonomyConfig optionally overrides the built-in taxonomy.
type TaxonomyConfig struct {
	// File is a YAML taxonomy file; empty uses the built-in taxonomy.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for source acquisition.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Delay is the minimum spacing between requests to one backend.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// MaxDatasets caps HuggingFace dataset results per query (default 200).
	MaxDatasets int `json:"max_datasets" yaml:"max_datasets" mapstructure:"max_datasets" validate:"gte=0"`

	// MaxPapers caps Semantic Scholar results per query (default 1000).
	MaxPapers int `json:"max_papers" yaml:"max_papers" mapstructure:"max_papers" validate:"gte=0"`

	// DailyPapers enables the HuggingFace daily papers feed.
	DailyPapers bool `json:"daily_papers" yaml:"daily_papers" mapstructure:"daily_papers"`

	// QueryFile is an optional YAML list of search queries.
	QueryFile string `json:"query_file,omitempty" yaml:"query_file,omitempty" mapstructure:"query_file"`

	// CuratedFile is the YAML list of curated benchmarks.
	CuratedFile string `json:"curated_file,omitempty" yaml:"curated_file,omitempty" mapstructure:"curated_file"`

	// SemanticScholarAPIKey raises the Semantic Scholar rate limit.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`

	// HuggingFaceToken authenticates HuggingFace API calls.
	HuggingFaceToken string `json:"huggingface_token,omitempty" yaml:"huggingface_token,omitempty" mapstructure:"huggingface_token"`
}

// AIConfig holds shared settings for stages that call the Anthropic API.
type AIConfig struct {
	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model" mapstructure:"model" validate:"required"`

	// APIKey is the Anthropic API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of attempts for a failed call (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gt=0"`

	// RequestsPerSecond limits the call rate across workers.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
}

// ClassifyConfig holds settings for the LLM classification stage.
type ClassifyConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// BatchSize is the number of records per request (default 20).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size" validate:"gt=0"`

	// Workers is the number of parallel requests (default 5).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gt=0"`
}

// ScoreConfig holds settings for relevance scoring.
type ScoreConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// Workers is the number of parallel scoring calls (default 10).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gt=0"`

	// SaveEvery flushes the scores file after this many completions (default 50).
	SaveEvery int `json:"save_every" yaml:"save_every" mapstructure:"save_every" validate:"gt=0"`

	// MaxTextChars truncates paper text sent for scoring (default 6000).
	MaxTextChars int `json:"max_text_chars" yaml:"max_text_chars" mapstructure:"max_text_chars" validate:"gt=0"`
}

// DownloadConfig holds settings for PDF download.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Workers is the number of parallel downloads (default 20).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gt=0"`

	// SaveEvery flushes the manifest after this many completions (default 25).
	SaveEvery int `json:"save_every" yaml:"save_every" mapstructure:"save_every" validate:"gt=0"`
}

// ConversionConfig holds settings for PDF parsing.
type ConversionConfig struct {
	// Tool is the pdftotext binary name or path.
	Tool string `json:"tool" yaml:"tool" mapstructure:"tool" validate:"required"`

	// Workers is the number of parallel parses (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gt=0"`
}

// ExtractionConfig holds settings for section extraction and grouping.
type ExtractionConfig struct {
	// Profile is lean, standard, deep, or full.
	Profile string `json:"profile" yaml:"profile" mapstructure:"profile" validate:"oneof=lean standard deep full"`

	// Sections overrides Profile with an explicit canonical section list.
	Sections []string `json:"sections,omitempty" yaml:"sections,omitempty" mapstructure:"sections"`

	// MinExtractChars is the floor the fallback ladder guarantees (default 2000).
	MinExtractChars int `json:"min_extract_chars" yaml:"min_extract_chars" mapstructure:"min_extract_chars" validate:"gt=0"`

	// MaxSectionChars truncates each section (default 8000).
	MaxSectionChars int `json:"max_section_chars" yaml:"max_section_chars" mapstructure:"max_section_chars" validate:"gt=0"`

	// MinRelevance filters scored papers below this score (default 7).
	MinRelevance int `json:"min_relevance" yaml:"min_relevance" mapstructure:"min_relevance" validate:"gte=0,lte=10"`
}

// SynthesisConfig holds settings for batch planning and synthesis.
type SynthesisConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// BatchCeiling is the input token budget per request (default 180000).
	BatchCeiling int `json:"batch_ceiling" yaml:"batch_ceiling" mapstructure:"batch_ceiling" validate:"gt=0"`

	// PromptOverhead is the token allowance for prompt scaffolding (default 2000).
	PromptOverhead int `json:"prompt_overhead" yaml:"prompt_overhead" mapstructure:"prompt_overhead" validate:"gte=0"`

	// OutputReserve is max_tokens for each response (default 8192).
	OutputReserve int `json:"output_reserve" yaml:"output_reserve" mapstructure:"output_reserve" validate:"gt=0"`

	// MaxDocsPerRequest caps documents per request (default 60).
	MaxDocsPerRequest int `json:"max_docs_per_request" yaml:"max_docs_per_request" mapstructure:"max_docs_per_request" validate:"gt=0"`
}

// CatalogConfig holds settings for the SQLite catalog.
type CatalogConfig struct {
	// Dir is the catalog base directory (contains index/).
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir" validate:"required"`

	// MaxResults is the default search result limit (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results" validate:"gt=0"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	// File is the textfile path; empty disables the export.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}
