// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal records every conversion, with its PDF backend attempts,
// in a SQLite database and exports the history as YAML or JSON.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/md-converter/pkg/types"
)

const (
	appDir = "md-converter"
	dbFile = "journal.db"

	// timeLayout is fixed-width so stored timestamps sort as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Status is the final state of a recorded conversion.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Entry is one recorded conversion.
type Entry struct {
	ID         string          `json:"id" yaml:"id"`
	InputPath  string          `json:"input" yaml:"input"`
	OutputPath string          `json:"output" yaml:"output"`
	Format     types.Format    `json:"format" yaml:"format"`
	Status     Status          `json:"status" yaml:"status"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time       `json:"finished_at" yaml:"finished_at"`
	Sheets     []string        `json:"sheets,omitempty" yaml:"sheets,omitempty"`
	Pages      int             `json:"pages,omitempty" yaml:"pages,omitempty"`
	Attempts   []types.Attempt `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// Duration is the wall time the conversion took.
func (e Entry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// Store manages the journal SQLite database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the journal location under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating user cache directory: %w", err)
	}
	return filepath.Join(dir, appDir, dbFile), nil
}

// Open opens or creates the journal database at path, creating its
// directory and schema as needed. An empty path uses DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
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
		`CREATE TABLE IF NOT EXISTS conversions (
			id TEXT PRIMARY KEY,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			format TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			sheets TEXT,
			pages INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS attempts (
			conversion_id TEXT NOT NULL REFERENCES conversions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			backend TEXT NOT NULL,
			outcome TEXT NOT NULL,
			diagnostic TEXT,
			PRIMARY KEY (conversion_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_started ON conversions(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_format ON conversions(format)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores e and its attempts in one transaction and returns the
// entry ID. An empty e.ID is replaced with a new UUID.
func (s *Store) Record(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	sheetsJSON, err := json.Marshal(e.Sheets)
	if err != nil {
		return "", fmt.Errorf("encoding sheets: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversions (id, input, output, format, status, error, started_at, finished_at, sheets, pages)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.InputPath, e.OutputPath, string(e.Format), string(e.Status), e.Error,
		formatTime(e.StartedAt), formatTime(e.FinishedAt), string(sheetsJSON), e.Pages,
	)
	if err != nil {
		return "", fmt.Errorf("inserting conversion: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO attempts (conversion_id, seq, backend, outcome, diagnostic) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range e.Attempts {
		if _, err := stmt.ExecContext(ctx, e.ID, i+1, string(a.Backend), string(a.Outcome), a.Diagnostic); err != nil {
			return "", fmt.Errorf("inserting attempt %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing conversion: %w", err)
	}
	return e.ID, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
