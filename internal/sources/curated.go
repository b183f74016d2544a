// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// curatedEntry is one hand-maintained benchmark in the curated YAML file.
type curatedEntry struct {
	Name         string   `yaml:"name" validate:"required"`
	SourceURL    string   `yaml:"source_url" validate:"required,url"`
	SourceType   string   `yaml:"source_type" validate:"required,oneof=paper dataset space"`
	Description  string   `yaml:"description"`
	Date         string   `yaml:"date"`
	Tags         []string `yaml:"tags"`
	FrameworkIDs []string `yaml:"framework_ids"`
	ToolTypes    []string `yaml:"tool_types"`
}

var validate = validator.New()

// LoadCurated reads the curated benchmark list. Every entry is marked
// Curated so later stages never drop its hand-assigned labels.
func LoadCurated(path string) ([]types.CandidateRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reading curated file %s", path)
	}
	var entries []curatedEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(err, "parsing curated file %s", path)
	}

	out := make([]types.CandidateRecord, 0, len(entries))
	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			return nil, eris.Wrapf(err, "curated entry %d (%q)", i, e.Name)
		}
		out = append(out, types.CandidateRecord{
			Name:         e.Name,
			SourceURL:    e.SourceURL,
			SourceType:   types.SourceType(e.SourceType),
			Description:  e.Description,
			Date:         e.Date,
			Tags:         nonNil(e.Tags),
			FrameworkIDs: nonNil(e.FrameworkIDs),
			ToolTypes:    nonNil(e.ToolTypes),
			Curated:      true,
		})
	}
	return out, nil
}

// Merge combines curated and scraped records. Curated records come first and
// win on a source URL collision. It returns the number of scraped records
// dropped as collisions.
func Merge(scraped, curated []types.CandidateRecord) ([]types.CandidateRecord, int) {
	seen := make(map[string]bool, len(curated)+len(scraped))
	merged := make([]types.CandidateRecord, 0, len(curated)+len(scraped))
	dropped := 0
	for _, r := range curated {
		seen[r.SourceURL] = true
		merged = append(merged, r)
	}
	for _, r := range scraped {
		if seen[r.SourceURL] {
			dropped++
			continue
		}
		seen[r.SourceURL] = true
		merged = append(merged, r)
	}
	return merged, dropped
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
