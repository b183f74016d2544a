// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.yaml.in/yaml/v3"
)

// DefaultQueries is the built-in search list, grouped by the framework area
// each query targets.
var DefaultQueries = []string{
	// Direct education
	"education benchmark",
	"educational evaluation LLM",
	"tutoring benchmark",
	"pedagogy evaluation",
	"pedagogical knowledge",
	"teaching assessment AI",
	// Content knowledge
	"MMLU benchmark",
	"math reasoning benchmark",
	"science question answering",
	"ARC benchmark",
	"OpenBookQA",
	// Assessment
	"automated essay scoring",
	"grading rubric LLM",
	"feedback generation education",
	// Pedagogy
	"Socratic questioning",
	"tutoring dialogue",
	"adaptive learning evaluation",
	"scaffolding education AI",
	// Ethics and bias
	"bias fairness education",
	"FairEval benchmark",
	"BBQ bias benchmark",
	// Multimodal
	"multimodal education",
	"math vision benchmark",
	"diagram understanding",
	// Multilingual
	"multilingual education benchmark",
	"EXAMS multilingual",
	"cross-lingual education",
}

// QueryFile is the on-disk list of search queries. A researcher can keep
// several lists and pick one per run without editing code.
type QueryFile struct {
	// Queries replaces the built-in list when non-empty.
	Queries []string `yaml:"queries"`

	// Extra is appended to the built-in list.
	Extra []string `yaml:"extra,omitempty"`
}

// ReadQueryFile loads a query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reading query file %s", path)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, eris.Wrapf(err, "parsing query file %s", path)
	}
	return &qf, nil
}

// WriteQueryFile saves qf as YAML.
func WriteQueryFile(path string, qf QueryFile) error {
	data, err := yaml.Marshal(&qf)
	if err != nil {
		return eris.Wrap(err, "marshaling query file")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "writing query file %s", path)
}

// Queries resolves the query list for a run: the file's list (or the
// built-in one), then the file's extras, then extra from the command line.
// Blank and repeated queries are dropped, first occurrence winning.
func Queries(qf *QueryFile, extra []string) []string {
	base := DefaultQueries
	var more []string
	if qf != nil {
		if len(qf.Queries) > 0 {
			base = qf.Queries
		}
		more = qf.Extra
	}

	seen := map[string]bool{}
	var out []string
	for _, list := range [][]string{base, more, extra} {
		for _, q := range list {
			q = strings.TrimSpace(q)
			if q == "" || seen[q] {
				continue
			}
			seen[q] = true
			out = append(out, q)
		}
	}
	return out
}
