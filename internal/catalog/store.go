// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog indexes classified candidate records and paper relevance
// scores in SQLite with a full-text index over names and descriptions.
// Ingest is incremental: a source file whose modification time is unchanged
// since the last run is skipped.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"

	"github.com/pdiddy/edu-benchmark-mapper/internal/jsonfile"
	"github.com/pdiddy/edu-benchmark-mapper/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "catalog.db"
)

// Category kinds stored in record_categories.
const (
	kindFramework = "framework"
	kindToolType  = "tool_type"
)

// Details resolves a record's source URL to its paper metadata so records
// can be joined to relevance scores.
type Details interface {
	Lookup(sourceURL string) (types.PaperDetail, bool)
}

// Store manages the catalog database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// Open opens or creates the catalog at cfg.Dir/index/catalog.db.
func Open(cfg types.CatalogConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "creating index directory")
	}

	db, err := sql.Open("sqlite3", filepath.Join(dbDir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, eris.Wrap(err, "opening database")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}
	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "creating schema")
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			source_url TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			source_type TEXT NOT NULL,
			description TEXT,
			date TEXT,
			tags TEXT,
			framework_ids TEXT,
			tool_types TEXT,
			curated INTEGER NOT NULL DEFAULT 0,
			paper_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_paper_id ON records(paper_id)`,
		`CREATE TABLE IF NOT EXISTS record_categories (
			source_url TEXT NOT NULL REFERENCES records(source_url) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			PRIMARY KEY (source_url, kind, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_record_categories_id ON record_categories(kind, id)`,
		`CREATE TABLE IF NOT EXISTS scores (
			paper_id TEXT PRIMARY KEY,
			title TEXT,
			relevance_score INTEGER NOT NULL,
			framework_ids TEXT,
			tool_types TEXT,
			summary TEXT,
			status TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			file TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
		// docid mirrors records.rowid; rows are kept in sync by upsertRecord.
		`CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts4(name, description)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return eris.Wrap(err, "executing schema statement")
		}
	}
	return nil
}

// Sources names the files Ingest reads.
type Sources struct {
	// Candidates is the classified candidate records JSON.
	Candidates string

	// Scores is the paper relevance scores JSON. Optional.
	Scores string

	// Details links paper records to scores. Optional.
	Details Details
}

// IngestSummary holds counts from one Ingest.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
	Records int
	Scores  int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// HasFailures reports whether any file failed to ingest.
func (s IngestSummary) HasFailures() bool { return s.Failed > 0 }

// Ingest loads the source files that changed since the last run. Records
// and scores are upserted, so rows from earlier runs stay searchable. On
// any change it rewrites export.yaml.
func (s *Store) Ingest(ctx context.Context, src Sources, w io.Writer) (IngestSummary, error) {
	var sum IngestSummary

	type source struct {
		path   string
		ingest func(tx *sql.Tx) (int, error)
	}
	files := []source{{
		path: src.Candidates,
		ingest: func(tx *sql.Tx) (int, error) {
			var recs []types.CandidateRecord
			if _, err := jsonfile.Read(src.Candidates, &recs); err != nil {
				return 0, err
			}
			for _, r := range recs {
				if err := upsertRecord(ctx, tx, r, paperID(src.Details, r)); err != nil {
					return 0, err
				}
			}
			sum.Records += len(recs)
			return len(recs), nil
		},
	}}
	if src.Scores != "" {
		files = append(files, source{
			path: src.Scores,
			ingest: func(tx *sql.Tx) (int, error) {
				var scores []types.PaperScore
				if _, err := jsonfile.Read(src.Scores, &scores); err != nil {
					return 0, err
				}
				for _, sc := range scores {
					if err := upsertScore(ctx, tx, sc); err != nil {
						return 0, err
					}
				}
				sum.Scores += len(scores)
				return len(scores), nil
			},
		})
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		name := filepath.Base(f.path)

		info, err := os.Stat(f.path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			sum.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var stored string
		err = s.db.QueryRowContext(ctx, `SELECT file_mod_time FROM ingest_status WHERE file = ?`, f.path).Scan(&stored)
		if err == nil && stored == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			sum.Skipped++
			continue
		}
		isUpdate := err == nil

		n, err := s.ingestFile(ctx, f.path, modTime, f.ingest)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			sum.Failed++
			continue
		}
		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d rows)\n", name, n)
			sum.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d rows)\n", name, n)
			sum.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		sum.Indexed, sum.Updated, sum.Skipped, sum.Failed)

	if sum.Indexed > 0 || sum.Updated > 0 {
		if _, err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}
	return sum, nil
}

func (s *Store) ingestFile(ctx context.Context, path, modTime string, ingest func(*sql.Tx) (int, error)) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	n, err := ingest(tx)
	if err != nil {
		return 0, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_status (file, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(file) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		path, modTime)
	if err != nil {
		return 0, eris.Wrap(err, "updating ingest status")
	}
	return n, eris.Wrap(tx.Commit(), "committing")
}

func paperID(d Details, r types.CandidateRecord) string {
	if d == nil || r.SourceType != types.SourcePaper {
		return ""
	}
	if det, ok := d.Lookup(r.SourceURL); ok {
		return det.PaperID
	}
	return ""
}

func upsertRecord(ctx context.Context, tx *sql.Tx, r types.CandidateRecord, paperID string) error {
	if r.SourceURL == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO records (source_url, name, source_type, description, date, tags, framework_ids, tool_types, curated, paper_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_url) DO UPDATE SET
			name=excluded.name, source_type=excluded.source_type, description=excluded.description,
			date=excluded.date, tags=excluded.tags, framework_ids=excluded.framework_ids,
			tool_types=excluded.tool_types, curated=excluded.curated,
			paper_id=COALESCE(NULLIF(excluded.paper_id, ''), records.paper_id)`,
		r.SourceURL, r.Name, string(r.SourceType), r.Description, r.Date,
		jsonList(r.Tags), jsonList(r.FrameworkIDs), jsonList(r.ToolTypes), r.Curated, paperID,
	)
	if err != nil {
		return eris.Wrapf(err, "upserting record %s", r.SourceURL)
	}

	var rowid int64
	if err := tx.QueryRowContext(ctx, `SELECT rowid FROM records WHERE source_url = ?`, r.SourceURL).Scan(&rowid); err != nil {
		return eris.Wrapf(err, "reading rowid for %s", r.SourceURL)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records_fts WHERE docid = ?`, rowid); err != nil {
		return eris.Wrap(err, "clearing full-text row")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO records_fts (docid, name, description) VALUES (?, ?, ?)`,
		rowid, r.Name, r.Description); err != nil {
		return eris.Wrap(err, "indexing full text")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM record_categories WHERE source_url = ?`, r.SourceURL); err != nil {
		return eris.Wrap(err, "clearing categories")
	}
	for kind, ids := range map[string][]string{kindFramework: r.FrameworkIDs, kindToolType: r.ToolTypes} {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO record_categories (source_url, kind, id) VALUES (?, ?, ?)`,
				r.SourceURL, kind, id); err != nil {
				return eris.Wrapf(err, "inserting %s %s", kind, id)
			}
		}
	}
	return nil
}

func upsertScore(ctx context.Context, tx *sql.Tx, sc types.PaperScore) error {
	if sc.PaperID == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO scores (paper_id, title, relevance_score, framework_ids, tool_types, summary, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET
			title=excluded.title, relevance_score=excluded.relevance_score,
			framework_ids=excluded.framework_ids, tool_types=excluded.tool_types,
			summary=excluded.summary, status=excluded.status`,
		sc.PaperID, sc.Title, sc.RelevanceScore, jsonList(sc.FrameworkIDs), jsonList(sc.ToolTypes),
		sc.Summary, string(sc.Status),
	)
	return eris.Wrapf(err, "upserting score %s", sc.PaperID)
}

func jsonList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}
