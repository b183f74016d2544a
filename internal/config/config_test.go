// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/edu-benchmark-mapper/internal/secrets"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "output", cfg.Paths.OutputDir)
	assert.Equal(t, DefaultClassifyModel, cfg.Classify.Model)
	assert.Equal(t, 20, cfg.Classify.BatchSize)
	assert.Equal(t, 5, cfg.Classify.Workers)
	assert.Equal(t, 3, cfg.Classify.MaxRetries)
	assert.InDelta(t, 4.0, cfg.Classify.RequestsPerSecond, 0.001)
	assert.Equal(t, DefaultModel, cfg.Score.Model)
	assert.Equal(t, 10, cfg.Score.Workers)
	assert.Equal(t, 50, cfg.Score.SaveEvery)
	assert.Equal(t, 6000, cfg.Score.MaxTextChars)
	assert.Equal(t, 60*time.Second, cfg.Download.Timeout)
	assert.Equal(t, time.Second, cfg.Search.Delay)
	assert.Equal(t, "pdftotext", cfg.Conversion.Tool)
	assert.Equal(t, "standard", cfg.Extraction.Profile)
	assert.Equal(t, 2000, cfg.Extraction.MinExtractChars)
	assert.Equal(t, 8000, cfg.Extraction.MaxSectionChars)
	assert.Equal(t, 7, cfg.Extraction.MinRelevance)
	assert.Equal(t, 180000, cfg.Synthesis.BatchCeiling)
	assert.Equal(t, 2000, cfg.Synthesis.PromptOverhead)
	assert.Equal(t, 8192, cfg.Synthesis.OutputReserve)
	assert.Equal(t, 60, cfg.Synthesis.MaxDocsPerRequest)
	assert.Equal(t, 20, cfg.Catalog.MaxResults)
	assert.Empty(t, cfg.Classify.APIKey)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
  format: json
classify:
  model: claude-test
  batch_size: 10
download:
  timeout: 5s
extraction:
  profile: deep
  sections: [abstract, results]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "benchmark-mapper.yaml"), []byte(yaml), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "claude-test", cfg.Classify.Model)
	assert.Equal(t, 10, cfg.Classify.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.Download.Timeout)
	assert.Equal(t, "deep", cfg.Extraction.Profile)
	assert.Equal(t, []string{"abstract", "results"}, cfg.Extraction.Sections)
	assert.Equal(t, 5, cfg.Classify.Workers, "unset keys keep defaults")
}

func TestLoadExplicitPath(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("score:\n  workers: 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Score.Workers)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "benchmark-mapper.yaml"),
		[]byte("score:\n  workers: 2\n"), 0o644))

	t.Setenv("BENCHMARK_MAPPER_SCORE_WORKERS", "7")
	t.Setenv("BENCHMARK_MAPPER_CLASSIFY_API_KEY", "sk-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Score.Workers)
	assert.Equal(t, "sk-env", cfg.Classify.APIKey)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad log level", "log:\n  level: verbose\n"},
		{"bad profile", "extraction:\n  profile: everything\n"},
		{"zero workers", "classify:\n  workers: 0\n"},
		{"relevance out of range", "extraction:\n  min_relevance: 11\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdirTemp(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, "benchmark-mapper.yaml"), []byte(tt.yaml), 0o644))
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestApplySecrets(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := &types.Config{}
	cfg.Score.APIKey = "explicit"
	ApplySecrets(cfg, secrets.Set{
		secrets.AnthropicAPIKey:       "from-secret",
		secrets.SemanticScholarAPIKey: "s2",
		secrets.HuggingFaceToken:      "hf",
	})

	assert.Equal(t, "from-secret", cfg.Classify.APIKey)
	assert.Equal(t, "explicit", cfg.Score.APIKey)
	assert.Equal(t, "from-secret", cfg.Synthesis.APIKey)
	assert.Equal(t, "s2", cfg.Search.SemanticScholarAPIKey)
	assert.Equal(t, "hf", cfg.Search.HuggingFaceToken)
}

func TestApplySecrets_EnvFallback(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-from-env")

	cfg := &types.Config{}
	ApplySecrets(cfg, secrets.Set{})
	assert.Equal(t, "sk-from-env", cfg.Classify.APIKey)
	assert.Empty(t, cfg.Search.HuggingFaceToken)
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	require.NoError(t, InitLogger(types.LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger(types.LogConfig{Level: "warn", Format: "json"}))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))

	assert.Error(t, InitLogger(types.LogConfig{Level: "loud", Format: "json"}))
}
