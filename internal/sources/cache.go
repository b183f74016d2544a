// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// Output file names under the output directory.
const (
	CacheFile      = "scraped_cache.json"
	DetailsFile    = "s2_paper_details.json"
	CandidatesFile = "education_benchmark_mapping.json"
)

// ErrNoCache is returned by LoadCache when no earlier search was saved.
var ErrNoCache = eris.New("sources: no cached search results; run without --skip-search first")

// SaveCache writes the scraped records so a later run can skip searching.
func SaveCache(dir string, records []types.CandidateRecord) (string, error) {
	path := filepath.Join(dir, CacheFile)
	if records == nil {
		records = []types.CandidateRecord{}
	}
	return path, jsonfile.Write(path, records)
}

// LoadCache reads the records saved by SaveCache.
func LoadCache(dir string) ([]types.CandidateRecord, error) {
	return loadRecords(filepath.Join(dir, CacheFile), ErrNoCache)
}

// SaveCandidates writes the merged, labelled record list consumed by the
// classify, download, curate, and catalog stages.
func SaveCandidates(dir string, records []types.CandidateRecord) (string, error) {
	path := filepath.Join(dir, CandidatesFile)
	if records == nil {
		records = []types.CandidateRecord{}
	}
	return path, jsonfile.Write(path, records)
}

// LoadCandidates reads the record list written by SaveCandidates.
func LoadCandidates(path string) ([]types.CandidateRecord, error) {
	return loadRecords(path, eris.Errorf("sources: candidates file %s not found", path))
}

func loadRecords(path string, missing error) ([]types.CandidateRecord, error) {
	var records []types.CandidateRecord
	ok, err := jsonfile.Read(path, &records)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missing
	}
	return records, nil
}
