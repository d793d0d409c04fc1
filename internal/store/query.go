// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RunSummary counts what one stored run holds.
type RunSummary struct {
	ID        string `json:"id" yaml:"id"`
	Source    string `json:"source" yaml:"source"`
	Dialect   string `json:"dialect" yaml:"dialect"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
	Segments  int    `json:"segments" yaml:"segments"`
	Documents int    `json:"documents" yaml:"documents"`
	Parts     int    `json:"parts" yaml:"parts"`
	Releases  int    `json:"releases" yaml:"releases"`
	Failures  int    `json:"failures" yaml:"failures"`
}

const summarySelect = `
SELECT r.id, r.source, r.dialect, r.created_at, r.segments,
  (SELECT COUNT(*) FROM documents d WHERE d.run_id = r.id),
  (SELECT COUNT(*) FROM parts p JOIN documents d ON p.document_id = d.id WHERE d.run_id = r.id),
  (SELECT COUNT(*) FROM releases rl JOIN parts p ON rl.part_id = p.id
     JOIN documents d ON p.document_id = d.id WHERE d.run_id = r.id),
  (SELECT COUNT(*) FROM failures f WHERE f.run_id = r.id)
FROM runs r`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (RunSummary, error) {
	var s RunSummary
	err := row.Scan(&s.ID, &s.Source, &s.Dialect, &s.CreatedAt, &s.Segments,
		&s.Documents, &s.Parts, &s.Releases, &s.Failures)
	return s, err
}

// Summary returns the counts of run runID.
func (s *Store) Summary(ctx context.Context, runID string) (RunSummary, error) {
	sum, err := scanSummary(s.db.QueryRowContext(ctx, summarySelect+` WHERE r.id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return RunSummary{}, fmt.Errorf("query run %s: %w", runID, err)
	}
	return sum, nil
}

// Runs lists every stored run, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, summarySelect+` ORDER BY r.created_at DESC, r.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// PartRelease is one stored release of a part, with the document and run it
// came from.
type PartRelease struct {
	RunID     string `json:"run_id" yaml:"run_id"`
	Reference string `json:"reference" yaml:"reference"`
	PartRev   string `json:"part_rev" yaml:"part_rev"`
	Plant     string `json:"plant,omitempty" yaml:"plant,omitempty"`
	Date      string `json:"date,omitempty" yaml:"date,omitempty"`
	Quantity  string `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Timing    string `json:"timing,omitempty" yaml:"timing,omitempty"`
}

// PartReleases returns every stored release of partNumber in run, document
// and release order.
func (s *Store) PartReleases(ctx context.Context, partNumber string) ([]PartRelease, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT d.run_id, d.reference, p.part_rev, p.plant, rl.date, rl.quantity, rl.type, rl.timing
FROM releases rl
JOIN parts p ON rl.part_id = p.id
JOIN documents d ON p.document_id = d.id
WHERE p.part_number = ?
ORDER BY d.id, p.seq, rl.seq`, partNumber)
	if err != nil {
		return nil, fmt.Errorf("query part %s: %w", partNumber, err)
	}
	defer rows.Close()

	var out []PartRelease
	for rows.Next() {
		var r PartRelease
		if err := rows.Scan(&r.RunID, &r.Reference, &r.PartRev, &r.Plant,
			&r.Date, &r.Quantity, &r.Type, &r.Timing); err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
