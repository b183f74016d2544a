// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package planner groups extracted documents for synthesis and packs each
// group into requests that fit a token budget.
//
// Packing is first-fit in relevance order: documents are never split, never
// reordered across jobs, and never placed in two jobs of the same group.
package planner

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/edu-benchmark-mapper/internal/heuristic"
	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/internal/metrics"
	"github.com/pdiddy/edu-benchmark-mapper/internal/taxonomy"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// ErrAllZeroTokens means every selected group held documents, but none had
// any extracted tokens. It is distinct from selecting no documents at all.
var ErrAllZeroTokens = eris.New("planner: all documents have zero estimated tokens")

// PlanFile holds the last saved plan under the research directory.
const PlanFile = "batch_plan.json"

// Defaults mirror a 200K-token context window.
const (
	DefaultCeiling           = 180_000
	DefaultPromptOverhead    = 2_000
	DefaultOutputReserve     = 8_192
	DefaultMaxDocsPerRequest = 60
)

// Group assigns documents to synthesis groups. In framework and tool-type
// mode a document joins every group it is labelled with, or the
// uncategorized group when it has none. In concern mode it joins every
// concern with a keyword match in its title, summary, or text, and
// unmatched documents are left out. Each group is ordered by descending
// relevance, ties keeping input order.
func Group(docs []types.ExtractedDocument, mode types.GroupMode, tax *taxonomy.Taxonomy) map[string][]types.ExtractedDocument {
	groups := map[string][]types.ExtractedDocument{}

	switch mode {
	case types.GroupConcern:
		type concernSet struct {
			id    string
			words *heuristic.WordSet
		}
		var sets []concernSet
		for _, c := range tax.Concerns() {
			sets = append(sets, concernSet{c.ID, heuristic.NewWordSet(c.Keywords)})
		}
		for _, d := range docs {
			blob := strings.ToLower(d.Title + " " + d.Summary + " " + d.Text())
			for _, s := range sets {
				if s.words.MatchAny(blob) {
					groups[s.id] = append(groups[s.id], d)
				}
			}
		}
	default:
		for _, d := range docs {
			ids := d.CategoryIDs
			if mode == types.GroupToolType {
				ids = d.ToolTypeIDs
			}
			if len(ids) == 0 {
				groups[types.GroupUncategorized] = append(groups[types.GroupUncategorized], d)
				continue
			}
			for _, id := range ids {
				groups[id] = append(groups[id], d)
			}
		}
	}

	for id := range groups {
		sort.SliceStable(groups[id], func(i, j int) bool {
			return groups[id][i].RelevanceScore > groups[id][j].RelevanceScore
		})
	}
	return groups
}

// Options controls packing.
type Options struct {
	// Mode selects the custom_id prefix.
	Mode types.GroupMode

	// Ceiling is the total token budget of one request.
	Ceiling int

	// PromptOverhead is reserved for the system prompt and scaffolding.
	PromptOverhead int

	// OutputReserve is reserved for the reply.
	OutputReserve int

	// MaxDocsPerRequest caps documents per job. Zero means no cap.
	MaxDocsPerRequest int

	// Only restricts planning to these group IDs when non-empty.
	Only []string
}

// Budget is the number of document tokens one job may carry.
func (o Options) Budget() int {
	return o.Ceiling - o.PromptOverhead - o.OutputReserve
}

// Plan is the result of packing.
type Plan struct {
	Jobs []types.BatchJob `json:"jobs"`

	// ZeroTokenGroups had documents, all with zero tokens.
	ZeroTokenGroups []string `json:"zero_token_groups,omitempty"`

	// EmptyGroups were requested through Options.Only but hold no documents.
	EmptyGroups []string `json:"empty_groups,omitempty"`

	// Oversized lists documents that alone exceed the budget. Each is
	// planned as a job of its own.
	Oversized []string `json:"oversized,omitempty"`
}

// Tokens sums EstimatedTokens over all jobs.
func (p Plan) Tokens() int {
	total := 0
	for _, j := range p.Jobs {
		total += j.EstimatedTokens
	}
	return total
}

// Documents counts document slots over all jobs. A document in several
// groups is counted once per group.
func (p Plan) Documents() int {
	n := 0
	for _, j := range p.Jobs {
		n += len(j.Documents)
	}
	return n
}

// Pack plans jobs for every group in ID order. It returns ErrAllZeroTokens
// when no job could be planned because every document had zero tokens.
func Pack(groups map[string][]types.ExtractedDocument, opts Options) (Plan, error) {
	var plan Plan

	ids := make([]string, 0, len(groups))
	for id := range groups {
		if len(opts.Only) == 0 || slices.Contains(opts.Only, id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range opts.Only {
		if len(groups[id]) == 0 {
			plan.EmptyGroups = append(plan.EmptyGroups, id)
		}
	}

	budget := opts.Budget()
	for _, gid := range ids {
		docs := groups[gid]
		if len(docs) == 0 {
			continue
		}

		var (
			current []types.ExtractedDocument
			tokens  int
			seq     = 1
			emitted int
		)
		emit := func() {
			plan.Jobs = append(plan.Jobs, types.BatchJob{
				ID:              CustomID(opts.Mode, gid, seq),
				CategoryID:      gid,
				Mode:            opts.Mode,
				Documents:       current,
				EstimatedTokens: tokens + opts.PromptOverhead,
			})
			seq++
			emitted++
			current, tokens = nil, 0
		}

		for _, d := range docs {
			t := d.Tokens()
			if t == 0 {
				continue
			}
			full := opts.MaxDocsPerRequest > 0 && len(current) >= opts.MaxDocsPerRequest
			if (tokens+t > budget || full) && len(current) > 0 {
				emit()
			}
			if t > budget {
				plan.Oversized = append(plan.Oversized, d.ID)
			}
			current = append(current, d)
			tokens += t
		}
		if len(current) > 0 {
			emit()
		}
		if emitted == 0 {
			plan.ZeroTokenGroups = append(plan.ZeroTokenGroups, gid)
		}
	}

	if opts.Mode != "" {
		metrics.PlannedJobs.WithLabelValues(string(opts.Mode)).Set(float64(len(plan.Jobs)))
	}
	if len(plan.Jobs) == 0 && len(plan.ZeroTokenGroups) > 0 {
		return plan, ErrAllZeroTokens
	}
	return plan, nil
}

// Print writes a one-line-per-job preview followed by totals.
func (p Plan) Print(w io.Writer) {
	fmt.Fprintf(w, "%-40s %-22s %6s %12s\n", "ID", "Group", "Papers", "Est. tokens")
	for _, j := range p.Jobs {
		fmt.Fprintf(w, "%-40s %-22s %6d %12d\n", j.ID, j.CategoryID, len(j.Documents), j.EstimatedTokens)
	}
	fmt.Fprintf(w, "\n%d requests, %d document slots, ~%d input tokens\n", len(p.Jobs), p.Documents(), p.Tokens())
	for _, g := range p.ZeroTokenGroups {
		fmt.Fprintf(w, "skipped group %s: all documents have zero tokens\n", g)
	}
	for _, g := range p.EmptyGroups {
		fmt.Fprintf(w, "skipped group %s: no documents\n", g)
	}
	for _, id := range p.Oversized {
		fmt.Fprintf(w, "warning: document %s exceeds the per-request budget on its own\n", id)
	}
}

// Save writes the plan so submit can send exactly what was previewed.
func (p Plan) Save(path string) error {
	return jsonfile.Write(path, p)
}

// Load reads a plan written by Save.
func Load(path string) (Plan, error) {
	var p Plan
	ok, err := jsonfile.Read(path, &p)
	if err != nil {
		return Plan{}, err
	}
	if !ok {
		return Plan{}, eris.Errorf("planner: %s not found; run plan first", path)
	}
	return p, nil
}

var prefixes = map[types.GroupMode]string{
	types.GroupFramework: "cat",
	types.GroupToolType:  "tt",
	types.GroupConcern:   "cn",
}

// CustomID names a job: a mode prefix, the group ID with dots replaced by
// dashes (the batch API allows only [a-zA-Z0-9_-]), and a 1-based sequence.
func CustomID(mode types.GroupMode, groupID string, seq int) string {
	prefix, ok := prefixes[mode]
	if !ok {
		prefix = prefixes[types.GroupFramework]
	}
	return fmt.Sprintf("%s_%s_batch_%d", prefix, strings.ReplaceAll(groupID, ".", "-"), seq)
}

// ParseCustomID reverses CustomID. Framework group IDs get their dots back.
func ParseCustomID(id string) (mode types.GroupMode, groupID string, seq int, err error) {
	prefix, rest, ok := strings.Cut(id, "_")
	if !ok {
		return "", "", 0, eris.Errorf("planner: malformed custom_id %q", id)
	}
	found := false
	for m, p := range prefixes {
		if p == prefix {
			mode, found = m, true
			break
		}
	}
	if !found {
		return "", "", 0, eris.Errorf("planner: unknown custom_id prefix %q", prefix)
	}

	i := strings.LastIndex(rest, "_batch_")
	if i <= 0 {
		return "", "", 0, eris.Errorf("planner: custom_id %q has no batch suffix", id)
	}
	seq, err = strconv.Atoi(rest[i+len("_batch_"):])
	if err != nil {
		return "", "", 0, eris.Wrapf(err, "planner: custom_id %q sequence", id)
	}
	groupID = rest[:i]
	if mode == types.GroupFramework {
		groupID = strings.ReplaceAll(groupID, "-", ".")
	}
	return mode, groupID, seq, nil
}
