// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the pipeline configuration from benchmark-mapper.yaml,
// BENCHMARK_MAPPER_* environment variables, and built-in defaults, and
// installs the global zap logger.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/edu-benchmark-mapper/internal/secrets"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// Model defaults.
const (
	DefaultClassifyModel = "claude-haiku-4-5-20251001"
	DefaultModel         = "claude-sonnet-4-5-20250929"
)

const (
	configName = "benchmark-mapper"
	envPrefix  = "BENCHMARK_MAPPER"
	userAgent  = "edu-benchmark-mapper/0.1"
)

var validate = validator.New()

// Load reads configuration from path, or from benchmark-mapper.yaml in the
// working directory or ~/.config/benchmark-mapper when path is empty. A
// missing config file is not an error. Environment variables override the
// file: BENCHMARK_MAPPER_SCORE_WORKERS sets score.workers.
func Load(path string) (*types.Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: validate")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("paths.output_dir", "output")
	v.SetDefault("paths.papers_dir", filepath.Join("output", "papers"))
	v.SetDefault("paths.research_dir", filepath.Join("output", "research"))

	v.SetDefault("taxonomy.file", "")

	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.user_agent", userAgent)
	v.SetDefault("search.delay", time.Second)
	v.SetDefault("search.max_datasets", 200)
	v.SetDefault("search.max_papers", 1000)
	v.SetDefault("search.daily_papers", true)
	v.SetDefault("search.query_file", "")
	v.SetDefault("search.curated_file", "curated_benchmarks.yaml")
	v.SetDefault("search.semantic_scholar_api_key", "")
	v.SetDefault("search.huggingface_token", "")

	v.SetDefault("classify.model", DefaultClassifyModel)
	v.SetDefault("classify.api_key", "")
	v.SetDefault("classify.max_retries", 3)
	v.SetDefault("classify.requests_per_second", 4.0)
	v.SetDefault("classify.batch_size", 20)
	v.SetDefault("classify.workers", 5)

	v.SetDefault("score.model", DefaultModel)
	v.SetDefault("score.api_key", "")
	v.SetDefault("score.max_retries", 3)
	v.SetDefault("score.requests_per_second", 4.0)
	v.SetDefault("score.workers", 10)
	v.SetDefault("score.save_every", 50)
	v.SetDefault("score.max_text_chars", 6000)

	v.SetDefault("download.timeout", 60*time.Second)
	v.SetDefault("download.user_agent", userAgent)
	v.SetDefault("download.workers", 20)
	v.SetDefault("download.save_every", 25)

	v.SetDefault("conversion.tool", "pdftotext")
	v.SetDefault("conversion.workers", 4)

	v.SetDefault("extraction.profile", "standard")
	v.SetDefault("extraction.sections", []string{})
	v.SetDefault("extraction.min_extract_chars", 2000)
	v.SetDefault("extraction.max_section_chars", 8000)
	v.SetDefault("extraction.min_relevance", 7)

	v.SetDefault("synthesis.model", DefaultModel)
	v.SetDefault("synthesis.api_key", "")
	v.SetDefault("synthesis.max_retries", 3)
	v.SetDefault("synthesis.requests_per_second", 4.0)
	v.SetDefault("synthesis.batch_ceiling", 180000)
	v.SetDefault("synthesis.prompt_overhead", 2000)
	v.SetDefault("synthesis.output_reserve", 8192)
	v.SetDefault("synthesis.max_docs_per_request", 60)

	v.SetDefault("catalog.dir", "catalog")
	v.SetDefault("catalog.max_results", 20)

	v.SetDefault("metrics.file", "")
}

// ApplySecrets fills credentials left empty by the config file and
// environment. Explicit configuration wins. The Anthropic key falls back to
// the conventional ANTHROPIC_API_KEY variable when no secret is present.
func ApplySecrets(cfg *types.Config, s secrets.Set) {
	anthropicKey := s.Get(secrets.AnthropicAPIKey)
	if anthropicKey == "" {
		anthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	for _, ai := range []*types.AIConfig{&cfg.Classify.AIConfig, &cfg.Score.AIConfig, &cfg.Synthesis.AIConfig} {
		if ai.APIKey == "" {
			ai.APIKey = anthropicKey
		}
	}
	if cfg.Search.SemanticScholarAPIKey == "" {
		cfg.Search.SemanticScholarAPIKey = s.Get(secrets.SemanticScholarAPIKey)
	}
	if cfg.Search.HuggingFaceToken == "" {
		cfg.Search.HuggingFaceToken = s.Get(secrets.HuggingFaceToken)
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg types.LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
