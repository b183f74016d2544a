// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

// QueryOptions holds catalog search parameters. Filters combine with AND.
type QueryOptions struct {
	// Query is a full-text query over record names and descriptions.
	Query string

	// Category keeps records mapped to this framework ID.
	Category string

	// ToolType keeps records mapped to this tool-type ID.
	ToolType string

	// SourceType keeps records of this type.
	SourceType types.SourceType

	// MinScore keeps records whose linked paper scored at least this much.
	MinScore int

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Category == "" && q.ToolType == "" && q.SourceType == "" && q.MinScore == 0
}

// Result is a catalog record with its relevance score, when one exists.
type Result struct {
	types.CandidateRecord `yaml:",inline"`

	PaperID        string `json:"paper_id,omitempty" yaml:"paper_id,omitempty"`
	RelevanceScore int    `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`
	Summary        string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Search returns matching records, highest relevance score first, then by
// name.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Result, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT r.source_url, r.name, r.source_type, r.description, r.date,
			r.tags, r.framework_ids, r.tool_types, r.curated, r.paper_id,
			sc.relevance_score, sc.summary
		FROM records r
		LEFT JOIN scores sc ON sc.paper_id = r.paper_id AND sc.status = ?
		WHERE 1=1`)
	args = append(args, string(types.ScoreScored))

	if opts.Query != "" {
		qb.WriteString(` AND r.rowid IN (SELECT docid FROM records_fts WHERE records_fts MATCH ?)`)
		args = append(args, opts.Query)
	}
	if opts.Category != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM record_categories c WHERE c.source_url = r.source_url AND c.kind = ? AND c.id = ?)`)
		args = append(args, kindFramework, opts.Category)
	}
	if opts.ToolType != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM record_categories c WHERE c.source_url = r.source_url AND c.kind = ? AND c.id = ?)`)
		args = append(args, kindToolType, opts.ToolType)
	}
	if opts.SourceType != "" {
		qb.WriteString(` AND r.source_type = ?`)
		args = append(args, string(opts.SourceType))
	}
	if opts.MinScore > 0 {
		qb.WriteString(` AND sc.relevance_score >= ?`)
		args = append(args, opts.MinScore)
	}
	qb.WriteString(` ORDER BY COALESCE(sc.relevance_score, 0) DESC, r.name LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, eris.Wrap(err, "querying catalog")
	}
	defer rows.Close() //nolint:errcheck

	var results []Result
	for rows.Next() {
		var (
			res              Result
			sourceType       string
			desc, date       sql.NullString
			tags, fws, tts   sql.NullString
			paperID, summary sql.NullString
			score            sql.NullInt64
		)
		if err := rows.Scan(
			&res.SourceURL, &res.Name, &sourceType, &desc, &date,
			&tags, &fws, &tts, &res.Curated, &paperID,
			&score, &summary,
		); err != nil {
			return nil, eris.Wrap(err, "scanning row")
		}
		res.SourceType = types.SourceType(sourceType)
		res.Description = desc.String
		res.Date = date.String
		res.Tags = decodeList(tags)
		res.FrameworkIDs = decodeList(fws)
		res.ToolTypes = decodeList(tts)
		res.PaperID = paperID.String
		res.RelevanceScore = int(score.Int64)
		res.Summary = summary.String
		results = append(results, res)
	}
	return results, eris.Wrap(rows.Err(), "iterating rows")
}

func decodeList(ns sql.NullString) []string {
	out := []string{}
	if ns.Valid {
		json.Unmarshal([]byte(ns.String), &out) //nolint:errcheck
	}
	return out
}
