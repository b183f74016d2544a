// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
)

const exportLimit = 100000

// ExportYAML writes the records matching opts to index/export.yaml and
// returns the file path.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	results, err := s.exportResults(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(results)
	if err != nil {
		return "", eris.Wrap(err, "marshaling YAML")
	}
	path := filepath.Join(s.dir, indexDir, "export.yaml")
	return path, eris.Wrapf(os.WriteFile(path, data, 0o644), "writing %s", path)
}

// ExportJSON writes the records matching opts to index/export.json and
// returns the file path.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	results, err := s.exportResults(ctx, opts)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, indexDir, "export.json")
	return path, jsonfile.Write(path, results)
}

func (s *Store) exportResults(ctx context.Context, opts QueryOptions) ([]Result, error) {
	opts.MaxResults = exportLimit
	results, err := s.Search(ctx, opts)
	if err != nil {
		return nil, eris.Wrap(err, "querying for export")
	}
	if results == nil {
		results = []Result{}
	}
	return results, nil
}
