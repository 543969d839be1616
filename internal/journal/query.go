// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/md-converter/pkg/types"
)

const defaultLimit = 50

// ListOptions filters List. Zero values match everything.
type ListOptions struct {
	Format types.Format
	Status Status
	Limit  int
}

// List returns recorded conversions, newest first, with their attempts.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT id, input, output, format, status, error, started_at, finished_at, sheets, pages
		FROM conversions
		WHERE 1=1`)

	if opts.Format != "" {
		qb.WriteString(` AND format = ?`)
		args = append(args, string(opts.Format))
	}
	if opts.Status != "" {
		qb.WriteString(` AND status = ?`)
		args = append(args, string(opts.Status))
	}

	qb.WriteString(` ORDER BY started_at DESC, rowid DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                 Entry
			format, status    string
			errText, sheets   sql.NullString
			started, finished string
			pages             sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.InputPath, &e.OutputPath, &format, &status,
			&errText, &started, &finished, &sheets, &pages); err != nil {
			return nil, fmt.Errorf("scanning conversion: %w", err)
		}
		e.Format = types.Format(format)
		e.Status = Status(status)
		e.Error = errText.String
		var err error
		if e.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("conversion %s: %w", e.ID, err)
		}
		if e.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("conversion %s: %w", e.ID, err)
		}
		e.Pages = int(pages.Int64)
		if sheets.Valid && sheets.String != "" {
			if err := json.Unmarshal([]byte(sheets.String), &e.Sheets); err != nil {
				return nil, fmt.Errorf("conversion %s: decoding sheets: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversions: %w", err)
	}

	for i := range entries {
		attempts, err := s.attempts(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Attempts = attempts
	}
	return entries, nil
}

func (s *Store) attempts(ctx context.Context, conversionID string) ([]types.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT backend, outcome, diagnostic FROM attempts WHERE conversion_id = ? ORDER BY seq`,
		conversionID)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	var attempts []types.Attempt
	for rows.Next() {
		var (
			backend, outcome string
			diagnostic       sql.NullString
		)
		if err := rows.Scan(&backend, &outcome, &diagnostic); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		attempts = append(attempts, types.Attempt{
			Backend:    types.BackendKind(backend),
			Outcome:    types.Outcome(outcome),
			Diagnostic: diagnostic.String,
		})
	}
	return attempts, rows.Err()
}
