// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists parsed articles in SQLite and answers full-text
// and structured queries over them.
//
// The database lives at <data-dir>/pubmed.db. Each article is stored whole
// as JSON alongside denormalized columns and child tables (authors, MeSH
// headings, keywords) used for filtering. Title and abstract are indexed
// with FTS5 when the driver is built with the sqlite_fts5 tag; otherwise
// text queries fall back to LIKE matching.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/pubmed-engine/pkg/types"
)

const dbFile = "pubmed.db"

// ErrNotFound is returned by Get for an unknown PMID.
var ErrNotFound = errors.New("article not found")

// Store manages the article database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
	fts        bool
	log        zerolog.Logger
}

// Open opens or creates the database at cfg.DataDir/pubmed.db and creates
// the schema if it does not exist.
func Open(cfg types.StoreConfig, logger zerolog.Logger) (*Store, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("store data directory is not set")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
		log:        logger.With().Str("component", "store").Logger(),
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// FullText reports whether the FTS5 index is available.
func (s *Store) FullText() bool {
	return s.fts
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			pmid TEXT NOT NULL UNIQUE,
			doi TEXT,
			pmcid TEXT,
			title TEXT,
			journal TEXT,
			year TEXT,
			abstract TEXT,
			record TEXT NOT NULL,
			ingest_run TEXT REFERENCES ingest_runs(id),
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_doi ON articles(doi)`,
		`CREATE TABLE IF NOT EXISTS article_authors (
			pmid TEXT NOT NULL REFERENCES articles(pmid) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT,
			last_name TEXT,
			collective INTEGER NOT NULL,
			PRIMARY KEY (pmid, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_authors_last_name ON article_authors(last_name COLLATE NOCASE)`,
		`CREATE TABLE IF NOT EXISTS article_mesh (
			pmid TEXT NOT NULL REFERENCES articles(pmid) ON DELETE CASCADE,
			descriptor TEXT NOT NULL,
			descriptor_ui TEXT,
			major INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mesh_descriptor ON article_mesh(descriptor COLLATE NOCASE)`,
		`CREATE TABLE IF NOT EXISTS article_keywords (
			pmid TEXT NOT NULL REFERENCES articles(pmid) ON DELETE CASCADE,
			keyword TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_keywords_keyword ON article_keywords(keyword COLLATE NOCASE)`,
		`CREATE TABLE IF NOT EXISTS ingest_runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			stored INTEGER NOT NULL DEFAULT 0,
			updated INTEGER NOT NULL DEFAULT 0,
			unchanged INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return s.createFullText()
}

// createFullText sets up the FTS5 table and its sync triggers. A driver
// built without FTS5 leaves s.fts false.
func (s *Store) createFullText() error {
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	if _, err := s.db.Exec(
		`CREATE VIRTUAL TABLE articles_fts USING fts5(title, abstract, content=articles, content_rowid=rowid)`,
	); err != nil {
		if strings.Contains(err.Error(), "no such module") {
			s.log.Debug().Msg("fts5 unavailable, text queries use LIKE")
			return nil
		}
		return fmt.Errorf("creating FTS table: %w", err)
	}

	triggers := []string{
		`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
			INSERT INTO articles_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
		END`,
		`CREATE TRIGGER articles_ad AFTER DELETE ON articles BEGIN
			INSERT INTO articles_fts(articles_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
		END`,
		`CREATE TRIGGER articles_au AFTER UPDATE ON articles BEGIN
			INSERT INTO articles_fts(articles_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			INSERT INTO articles_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
		END`,
	}
	for _, stmt := range triggers {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS triggers: %w", err)
		}
	}
	s.fts = true
	return nil
}

// IngestSummary holds counts from one Put call.
type IngestSummary struct {
	RunID     string
	Stored    int
	Updated   int
	Unchanged int
	Skipped   int
	Failed    int
}

// Total returns the number of articles processed.
func (s IngestSummary) Total() int {
	return s.Stored + s.Updated + s.Unchanged + s.Skipped + s.Failed
}

// Put stores articles, replacing earlier versions with the same PMID.
// Articles without a PMID are skipped; an identical stored record counts
// as unchanged. Progress lines are written to w. The run is recorded in
// ingest_runs under a fresh UUID.
func (s *Store) Put(ctx context.Context, articles []types.ParsedArticle, w io.Writer) (IngestSummary, error) {
	summary := IngestSummary{RunID: uuid.NewString()}
	started := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, started_at) VALUES (?, ?)`, summary.RunID, started,
	); err != nil {
		return summary, fmt.Errorf("recording ingest run: %w", err)
	}

	for i, a := range articles {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		pmid := a.ID()
		if pmid == "" {
			fmt.Fprintf(w, "skipped record %d: no PMID\n", i)
			summary.Skipped++
			continue
		}

		record, err := json.Marshal(a)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", pmid, err)
			summary.Failed++
			continue
		}

		var stored string
		err = s.db.QueryRowContext(ctx, `SELECT record FROM articles WHERE pmid = ?`, pmid).Scan(&stored)
		switch {
		case err == nil && stored == string(record):
			fmt.Fprintf(w, "unchanged %s\n", pmid)
			summary.Unchanged++
			continue
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			fmt.Fprintf(w, "failed  %s: %v\n", pmid, err)
			summary.Failed++
			continue
		}
		isUpdate := err == nil

		if err := s.putArticle(ctx, a, string(record), summary.RunID); err != nil {
			s.log.Error().Err(err).Str("pmid", pmid).Msg("storing article")
			fmt.Fprintf(w, "failed  %s: %v\n", pmid, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", pmid)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "stored  %s\n", pmid)
			summary.Stored++
		}
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE ingest_runs SET finished_at = ?, stored = ?, updated = ?, unchanged = ?, skipped = ?, failed = ?
		 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		summary.Stored, summary.Updated, summary.Unchanged, summary.Skipped, summary.Failed,
		summary.RunID,
	); err != nil {
		return summary, fmt.Errorf("finishing ingest run: %w", err)
	}

	fmt.Fprintf(w, "\nstored: %d, updated: %d, unchanged: %d, skipped: %d, failed: %d\n",
		summary.Stored, summary.Updated, summary.Unchanged, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) putArticle(ctx context.Context, a types.ParsedArticle, record, runID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	pmid := a.ID()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO articles (pmid, doi, pmcid, title, journal, year, abstract, record, ingest_run, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pmid) DO UPDATE SET
			doi=excluded.doi, pmcid=excluded.pmcid, title=excluded.title,
			journal=excluded.journal, year=excluded.year, abstract=excluded.abstract,
			record=excluded.record, ingest_run=excluded.ingest_run, updated_at=excluded.updated_at`,
		pmid, nullable(a.DOI), nullable(a.PMCID), nullable(a.Title),
		journalTitle(a), nullableString(a.Year()), nullable(a.Abstract),
		record, runID, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting article: %w", err)
	}

	for _, table := range []string{"article_authors", "article_mesh", "article_keywords"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE pmid = ?`, pmid); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, au := range a.Authors {
		last := au.LastName
		if au.IsCollective() {
			last = nil
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO article_authors (pmid, position, name, last_name, collective) VALUES (?, ?, ?, ?, ?)`,
			pmid, i, au.DisplayName(), nullable(last), au.IsCollective(),
		); err != nil {
			return fmt.Errorf("inserting author %d: %w", i, err)
		}
	}

	for _, m := range a.MeshTerms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO article_mesh (pmid, descriptor, descriptor_ui, major) VALUES (?, ?, ?, ?)`,
			pmid, m.Descriptor, nullable(m.DescriptorUI), m.IsMajorTopic,
		); err != nil {
			return fmt.Errorf("inserting MeSH term %s: %w", m.Descriptor, err)
		}
	}

	for _, k := range a.Keywords {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO article_keywords (pmid, keyword) VALUES (?, ?)`, pmid, k,
		); err != nil {
			return fmt.Errorf("inserting keyword %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// Get returns the stored article for pmid.
func (s *Store) Get(ctx context.Context, pmid string) (types.ParsedArticle, error) {
	var record string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM articles WHERE pmid = ?`, strings.TrimSpace(pmid)).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ParsedArticle{}, fmt.Errorf("%w: %s", ErrNotFound, pmid)
		}
		return types.ParsedArticle{}, fmt.Errorf("looking up article: %w", err)
	}
	return decodeRecord(record)
}

// Count returns the number of stored articles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}

func decodeRecord(record string) (types.ParsedArticle, error) {
	var a types.ParsedArticle
	if err := json.Unmarshal([]byte(record), &a); err != nil {
		return types.ParsedArticle{}, fmt.Errorf("decoding stored record: %w", err)
	}
	return a, nil
}

func journalTitle(a types.ParsedArticle) any {
	if a.Journal == nil {
		return nil
	}
	return nullable(a.Journal.Title)
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
