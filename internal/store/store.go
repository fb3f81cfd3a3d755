// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists PaperResults in SQLite. Papers are keyed by their
// external id, so saving the same paper again replaces it rather than
// adding a duplicate.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pharma-papers/pkg/types"
)

// DefaultPath is used when StoreConfig.Path is empty.
const DefaultPath = "data/papers.db"

// ErrNotFound is returned by Get for an unknown external id.
var ErrNotFound = errors.New("paper not found")

// Store manages the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.Path and creates the schema if
// it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			fetched INTEGER NOT NULL DEFAULT 0,
			kept INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			publication_date TEXT NOT NULL,
			corresponding_email TEXT,
			run_id TEXT REFERENCES runs(id),
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS paper_authors (
			paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			author_name TEXT NOT NULL,
			company TEXT NOT NULL,
			PRIMARY KEY (paper_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_paper_authors_company ON paper_authors(company)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run describes one fetch run.
type Run struct {
	ID         string
	Query      string
	StartedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	Kept       int
}

// BeginRun records the start of a fetch run and returns its id.
func (s *Store) BeginRun(ctx context.Context, query string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, query, started_at) VALUES (?, ?, ?)`,
		id, query, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// FinishRun records the counts of a completed run.
func (s *Store) FinishRun(ctx context.Context, id string, fetched, kept int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, fetched = ?, kept = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), fetched, kept, id,
	)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetRun returns a run by id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var (
		r        Run
		started  string
		finished sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, query, started_at, finished_at, fetched, kept FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.Query, &started, &finished, &r.Fetched, &r.Kept)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("querying run: %w", err)
	}
	r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return r, nil
}

// Save upserts each result and replaces its author rows. runID may be empty.
func (s *Store) Save(ctx context.Context, runID string, results []types.PaperResult) error {
	for _, r := range results {
		if err := s.savePaper(ctx, runID, r); err != nil {
			return fmt.Errorf("saving paper %s: %w", r.ExternalID, err)
		}
	}
	return nil
}

func (s *Store) savePaper(ctx context.Context, runID string, r types.PaperResult) error {
	if len(r.NonAcademicAuthors) != len(r.CompanyAffiliations) {
		return fmt.Errorf("%d authors but %d companies", len(r.NonAcademicAuthors), len(r.CompanyAffiliations))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var email sql.NullString
	if r.CorrespondingEmail != nil {
		email = sql.NullString{String: *r.CorrespondingEmail, Valid: true}
	}
	var run sql.NullString
	if runID != "" {
		run = sql.NullString{String: runID, Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO papers (id, title, publication_date, corresponding_email, run_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, publication_date=excluded.publication_date,
			corresponding_email=excluded.corresponding_email,
			run_id=excluded.run_id, updated_at=excluded.updated_at`,
		r.ExternalID, r.Title, r.PublicationDate, email, run,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting paper: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM paper_authors WHERE paper_id = ?`, r.ExternalID); err != nil {
		return fmt.Errorf("deleting old authors: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO paper_authors (paper_id, position, author_name, company) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, name := range r.NonAcademicAuthors {
		if _, err := stmt.ExecContext(ctx, r.ExternalID, i, name, r.CompanyAffiliations[i]); err != nil {
			return fmt.Errorf("inserting author %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListOptions filters List.
type ListOptions struct {
	// Company keeps papers with at least one author whose company contains
	// this text (case-insensitive).
	Company string

	// Limit caps the number of papers; 0 means no limit.
	Limit int
}

// List returns stored papers ordered by external id.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.PaperResult, error) {
	var (
		where []string
		args  []any
	)
	if c := strings.TrimSpace(opts.Company); c != "" {
		where = append(where,
			`id IN (SELECT paper_id FROM paper_authors WHERE lower(company) LIKE ? ESCAPE '\')`)
		args = append(args, "%"+escapeLike(strings.ToLower(c))+"%")
	}

	q := `SELECT id, title, publication_date, corresponding_email FROM papers`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var results []types.PaperResult
	for rows.Next() {
		r, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating papers: %w", err)
	}

	for i := range results {
		if err := s.loadAuthors(ctx, &results[i]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Get returns one stored paper.
func (s *Store) Get(ctx context.Context, id string) (types.PaperResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, publication_date, corresponding_email FROM papers WHERE id = ?`, id)
	r, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.PaperResult{}, fmt.Errorf("paper %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.PaperResult{}, err
	}
	if err := s.loadAuthors(ctx, &r); err != nil {
		return types.PaperResult{}, err
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(sc scanner) (types.PaperResult, error) {
	var (
		r     types.PaperResult
		email sql.NullString
	)
	if err := sc.Scan(&r.ExternalID, &r.Title, &r.PublicationDate, &email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scanning paper: %w", err)
	}
	if email.Valid {
		e := email.String
		r.CorrespondingEmail = &e
	}
	return r, nil
}

func (s *Store) loadAuthors(ctx context.Context, r *types.PaperResult) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT author_name, company FROM paper_authors WHERE paper_id = ? ORDER BY position`, r.ExternalID)
	if err != nil {
		return fmt.Errorf("querying authors: %w", err)
	}
	defer rows.Close()

	r.NonAcademicAuthors = []string{}
	r.CompanyAffiliations = []string{}
	for rows.Next() {
		var name, company string
		if err := rows.Scan(&name, &company); err != nil {
			return fmt.Errorf("scanning author: %w", err)
		}
		r.NonAcademicAuthors = append(r.NonAcademicAuthors, name)
		r.CompanyAffiliations = append(r.CompanyAffiliations, company)
	}
	return rows.Err()
}

// escapeLike escapes LIKE wildcards so the filter matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
