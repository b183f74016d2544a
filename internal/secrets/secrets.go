// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of
// plain-text files and from a dotenv file. Each file in the directory is one
// secret: the filename is the key name and the trimmed contents are the
// value. Dotenv variables are mapped to the same key names, so
// ANTHROPIC_API_KEY and .secrets/anthropic-api-key are interchangeable.
//
// Supported keys: anthropic-api-key, semantic-scholar-api-key, huggingface-token.
package secrets

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Key names.
const (
	AnthropicAPIKey       = "anthropic-api-key"
	SemanticScholarAPIKey = "semantic-scholar-api-key"
	HuggingFaceToken      = "huggingface-token"
)

// aliases maps normalized dotenv names to key names.
var aliases = map[string]string{
	"hf-token":       HuggingFaceToken,
	"s2-api-key":     SemanticScholarAPIKey,
	"claude-api-key": AnthropicAPIKey,
}

// Set holds loaded secrets by key name.
type Set map[string]string

// Get returns the value for key, or "".
func (s Set) Get(key string) string { return s[key] }

// Keys returns the loaded key names, sorted.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty set. Unreadable files are logged and skipped.
func Load(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, eris.Wrapf(err, "reading secrets directory %s", dir)
	}

	set := Set{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			zap.L().Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			set[name] = v
		}
	}
	return set, nil
}

// LoadDotEnv reads KEY=VALUE lines from path with godotenv. Names are
// normalized to key names (ANTHROPIC_API_KEY becomes anthropic-api-key) and
// empty values are dropped. A missing file yields an empty set.
func LoadDotEnv(path string) (Set, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Set{}, nil
		}
		return nil, eris.Wrapf(err, "reading %s", path)
	}

	set := Set{}
	for name, value := range env {
		if v := strings.TrimSpace(value); v != "" {
			set[normalize(name)] = v
		}
	}
	return set, nil
}

// LoadAll merges the dotenv file with the secrets directory. Directory
// files win on conflict.
func LoadAll(dir, dotenv string) (Set, error) {
	set, err := LoadDotEnv(dotenv)
	if err != nil {
		return nil, err
	}
	files, err := Load(dir)
	if err != nil {
		return nil, err
	}
	for k, v := range files {
		set[k] = v
	}
	return set, nil
}

func normalize(name string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if alias, ok := aliases[key]; ok {
		return alias
	}
	return key
}
