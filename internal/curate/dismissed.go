// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package curate

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
)

// DismissedFile is the archive of reviewer dismissals under the output
// directory. Dismissals accumulate across reviews.
const DismissedFile = "dismissed_slugs.json"

// LoadDismissed reads a JSON array of benchmark IDs. A missing file yields
// an empty set.
func LoadDismissed(path string) (map[string]bool, error) {
	var slugs []string
	if _, err := jsonfile.Read(path, &slugs); err != nil {
		return nil, eris.Wrap(err, "dismissed list must be a JSON array of strings")
	}
	set := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		set[s] = true
	}
	return set, nil
}

// SaveDismissed writes the set as a sorted JSON array.
func SaveDismissed(path string, set map[string]bool) error {
	slugs := make([]string, 0, len(set))
	for s := range set {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return jsonfile.Write(path, slugs)
}

// ApplyDismissals merges the review export at reviewPath into the archive
// at archivePath and returns the merged set and how many IDs were new.
func ApplyDismissals(archivePath, reviewPath string) (map[string]bool, int, error) {
	archived, err := LoadDismissed(archivePath)
	if err != nil {
		return nil, 0, err
	}
	var review []string
	ok, err := jsonfile.Read(reviewPath, &review)
	if err != nil {
		return nil, 0, eris.Wrap(err, "dismissed list must be a JSON array of strings")
	}
	if !ok {
		return nil, 0, eris.Errorf("%s not found", reviewPath)
	}

	added := 0
	for _, s := range review {
		if !archived[s] {
			archived[s] = true
			added++
		}
	}
	if err := SaveDismissed(archivePath, archived); err != nil {
		return nil, 0, err
	}
	return archived, added, nil
}
