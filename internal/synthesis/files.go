// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// ErrNoAnalyses means a directory holds no analysis files to regenerate.
var ErrNoAnalyses = eris.New("synthesis: no analysis files found")

// analysisFilePattern matches {category|tool_type|concern}_<group>_analysis.json.
var analysisFilePattern = regexp.MustCompile(`^(category|tool_type|concern)_(.+)_analysis\.json$`)

// FilePrefix is the analysis file prefix for a grouping mode.
func FilePrefix(mode types.GroupMode) string {
	switch mode {
	case types.GroupToolType:
		return "tool_type"
	case types.GroupConcern:
		return "concern"
	default:
		return "category"
	}
}

func modeForPrefix(prefix string) types.GroupMode {
	switch prefix {
	case "tool_type":
		return types.GroupToolType
	case "concern":
		return types.GroupConcern
	default:
		return types.GroupFramework
	}
}

// AnalysisPath returns the JSON path of a group's analysis.
func AnalysisPath(dir string, mode types.GroupMode, groupID string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_analysis.json", FilePrefix(mode), groupID))
}

// AnalysisFile is one analysis JSON file found in a directory.
type AnalysisFile struct {
	Path    string
	Mode    types.GroupMode
	GroupID string
}

// MarkdownPath is the Markdown sibling of the JSON file.
func (f AnalysisFile) MarkdownPath() string {
	return strings.TrimSuffix(f.Path, ".json") + ".md"
}

// AnalysisFiles lists the analysis files in dir sorted by name.
func AnalysisFiles(dir string) ([]AnalysisFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "synthesis: read analysis directory")
	}
	var files []AnalysisFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := analysisFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		files = append(files, AnalysisFile{
			Path:    filepath.Join(dir, e.Name()),
			Mode:    modeForPrefix(m[1]),
			GroupID: m[2],
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// LoadAnalyses reads an analysis file holding either one result or a list
// of sub-batch results.
func LoadAnalyses(path string) ([]types.SynthesisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "synthesis: read %s", filepath.Base(path))
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []types.SynthesisResult
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, eris.Wrapf(err, "synthesis: parse %s", filepath.Base(path))
		}
		return list, nil
	}
	var one types.SynthesisResult
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, eris.Wrapf(err, "synthesis: parse %s", filepath.Base(path))
	}
	return []types.SynthesisResult{one}, nil
}

// SaveAnalysis stores one result for a group as JSON and Markdown. When the
// group already has an analysis, the JSON becomes a list with the new result
// appended and the Markdown gains a separated section.
func SaveAnalysis(dir string, mode types.GroupMode, groupID string, r types.SynthesisResult) (jsonPath, mdPath string, err error) {
	stamp(&r, mode, groupID)
	jsonPath = AnalysisPath(dir, mode, groupID)
	mdPath = strings.TrimSuffix(jsonPath, ".json") + ".md"

	if _, statErr := os.Stat(jsonPath); statErr == nil {
		existing, err := LoadAnalyses(jsonPath)
		if err != nil {
			return "", "", err
		}
		if err := jsonfile.Write(jsonPath, append(existing, r)); err != nil {
			return "", "", err
		}
	} else if err := jsonfile.Write(jsonPath, r); err != nil {
		return "", "", err
	}

	md := Markdown(r)
	if _, statErr := os.Stat(mdPath); statErr == nil {
		f, err := os.OpenFile(mdPath, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return "", "", eris.Wrap(err, "synthesis: open markdown")
		}
		_, werr := io.WriteString(f, partSeparator+md)
		cerr := f.Close()
		if werr != nil {
			return "", "", eris.Wrap(werr, "synthesis: append markdown")
		}
		if cerr != nil {
			return "", "", eris.Wrap(cerr, "synthesis: close markdown")
		}
	} else if err := jsonfile.WriteBytes(mdPath, []byte(md)); err != nil {
		return "", "", err
	}
	return jsonPath, mdPath, nil
}

// Regenerate rewrites the Markdown of every analysis file in dir. A file
// holding several sub-batch results is rendered from their merge, so each
// group reads as one report. It returns ErrNoAnalyses when dir has none.
func Regenerate(dir string, w io.Writer) (int, error) {
	files, err := AnalysisFiles(dir)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, ErrNoAnalyses
	}
	written := 0
	for _, f := range files {
		parts, err := LoadAnalyses(f.Path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", filepath.Base(f.Path), err)
			continue
		}
		merged := Merge(parts)
		stamp(&merged, f.Mode, f.GroupID)
		if err := jsonfile.WriteBytes(f.MarkdownPath(), []byte(Markdown(merged))); err != nil {
			return written, err
		}
		written++
		fmt.Fprintf(w, "wrote   %s (%d parts)\n", filepath.Base(f.MarkdownPath()), len(parts))
	}
	fmt.Fprintf(w, "\nregenerated %d Markdown files\n", written)
	return written, nil
}

// stamp fills the group ID a model reply left out, so the result renders
// with the right layout.
func stamp(r *types.SynthesisResult, mode types.GroupMode, groupID string) {
	if mode == types.GroupConcern {
		if r.ConcernID == "" {
			r.ConcernID = groupID
		}
		return
	}
	if r.CategoryID == "" {
		r.CategoryID = groupID
	}
}
