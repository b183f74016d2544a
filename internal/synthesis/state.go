// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"path/filepath"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// StateFile is the batch tracking file inside the research directory.
const StateFile = "batch_state.json"

// LoadStates reads the batch tracking file. A missing file yields no states.
func LoadStates(dir string) ([]types.JobState, error) {
	var states []types.JobState
	if _, err := jsonfile.Read(filepath.Join(dir, StateFile), &states); err != nil {
		return nil, err
	}
	return states, nil
}

// SaveStates replaces the batch tracking file.
func SaveStates(dir string, states []types.JobState) error {
	if states == nil {
		states = []types.JobState{}
	}
	return jsonfile.Write(filepath.Join(dir, StateFile), states)
}
