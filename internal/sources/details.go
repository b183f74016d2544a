// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"path/filepath"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// DetailIndex resolves a record's source URL to its Semantic Scholar detail,
// by paper ID for semanticscholar.org URLs and by arXiv ID for arxiv.org URLs.
type DetailIndex struct {
	byID    map[string]types.PaperDetail
	byArxiv map[string]types.PaperDetail
}

// NewDetailIndex indexes details. Later duplicates replace earlier ones.
func NewDetailIndex(details []types.PaperDetail) *DetailIndex {
	idx := &DetailIndex{
		byID:    make(map[string]types.PaperDetail, len(details)),
		byArxiv: make(map[string]types.PaperDetail),
	}
	for _, d := range details {
		if d.PaperID != "" {
			idx.byID[d.PaperID] = d
		}
		if a := d.ArxivID(); a != "" {
			idx.byArxiv[a] = d
		}
	}
	return idx
}

// Len is the number of indexed papers.
func (idx *DetailIndex) Len() int { return len(idx.byID) }

// Lookup implements classify.Details.
func (idx *DetailIndex) Lookup(sourceURL string) (types.PaperDetail, bool) {
	if idx == nil {
		return types.PaperDetail{}, false
	}
	if id, ok := pathSegmentAfter(sourceURL, "semanticscholar.org/paper/"); ok {
		d, found := idx.byID[id]
		return d, found
	}
	if id, ok := pathSegmentAfter(sourceURL, "arxiv.org/abs/"); ok {
		d, found := idx.byArxiv[id]
		return d, found
	}
	return types.PaperDetail{}, false
}

// SaveDetails writes fetched details to the output directory.
func SaveDetails(dir string, details []types.PaperDetail) (string, error) {
	path := filepath.Join(dir, DetailsFile)
	if details == nil {
		details = []types.PaperDetail{}
	}
	return path, jsonfile.Write(path, details)
}

// LoadDetails reads saved details. A missing file yields no details.
func LoadDetails(dir string) ([]types.PaperDetail, error) {
	var details []types.PaperDetail
	if _, err := jsonfile.Read(filepath.Join(dir, DetailsFile), &details); err != nil {
		return nil, err
	}
	return details, nil
}
