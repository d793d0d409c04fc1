// SPDX-License-Identifier: Apache-2.0

// Package store persists parse results to a SQLite database.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/edidecode/edi-mcp/internal/edi"
)

//go:embed schema.sql
var schema string

// ErrRunNotFound is returned when a run id has no stored run.
var ErrRunNotFound = errors.New("run not found")

const timestampFormat = "%Y-%m-%dT%H:%M:%SZ"

// Store writes parse runs to SQLite. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// Open opens or creates the database at path and applies the schema.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With().Str("db", path).Logger(),
		now:    time.Now,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores res under a new run id and returns it. The whole result is
// written in one transaction.
func (s *Store) Save(ctx context.Context, source string, res *edi.Result) (string, error) {
	runID := uuid.NewString()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, source, dialect, sender_id, receiver_id, control_number, segments, skipped, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, source, string(res.Dialect),
			res.Envelope.SenderID, res.Envelope.ReceiverID, res.Envelope.ControlNumber,
			res.Segments, res.Skipped,
			strftime.Format(timestampFormat, s.now().UTC()),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for i, doc := range res.Documents {
			if err := insertDocument(ctx, tx, runID, i, doc); err != nil {
				return err
			}
		}
		for i, f := range res.Failures {
			if err := insertFailure(ctx, tx, runID, i, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	s.logger.Debug().
		Str("run_id", runID).
		Str("source", source).
		Int("documents", len(res.Documents)).
		Int("failures", len(res.Failures)).
		Msg("Run saved")
	return runID, nil
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertDocument(ctx context.Context, tx *sql.Tx, runID string, seq int, doc *edi.Document) error {
	ext, err := encodeExtensions(doc.Extensions)
	if err != nil {
		return err
	}
	r, err := tx.ExecContext(ctx,
		`INSERT INTO documents (run_id, seq, reference, type, version, issue_date, horizon_start_date, horizon_end_date, extensions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, seq, doc.Reference, doc.Type, doc.Version,
		doc.IssueDate, doc.HorizonStartDate, doc.HorizonEndDate, ext,
	)
	if err != nil {
		return fmt.Errorf("insert document %q: %w", doc.Reference, err)
	}
	docID, err := r.LastInsertId()
	if err != nil {
		return err
	}
	for i, p := range doc.Parts {
		if err := insertPart(ctx, tx, docID, i, p); err != nil {
			return err
		}
	}
	return nil
}

func insertPart(ctx context.Context, tx *sql.Tx, docID int64, seq int, p *edi.Part) error {
	ext, err := encodeExtensions(p.Extensions)
	if err != nil {
		return err
	}
	r, err := tx.ExecContext(ctx,
		`INSERT INTO parts (document_id, seq, part_number, part_rev, revision, purchase_order, plant,
		   total_accum, total_accum_start_date, total_accum_end_date,
		   last_received_ship_quantity, last_received_ship_date, extensions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		docID, seq, p.PartNumber, p.PartRev, p.Revision, p.PurchaseOrder, p.Plant,
		p.TotalAccum, p.TotalAccumStartDate, p.TotalAccumEndDate,
		p.LastReceivedShipQuantity, p.LastReceivedShipDate, ext,
	)
	if err != nil {
		return fmt.Errorf("insert part %q: %w", p.PartRev, err)
	}
	partID, err := r.LastInsertId()
	if err != nil {
		return err
	}
	for i, rel := range p.Releases {
		ext, err := encodeExtensions(rel.Extensions)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO releases (part_id, seq, dialect, date, quantity, type, timing, type_code, timing_code, extensions)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			partID, i, string(rel.Dialect), rel.Date, rel.Quantity,
			rel.Type, rel.Timing, rel.TypeCode, rel.TimingCode, ext,
		)
		if err != nil {
			return fmt.Errorf("insert release of %q: %w", p.PartRev, err)
		}
	}
	return nil
}

func insertFailure(ctx context.Context, tx *sql.Tx, runID string, seq int, f *edi.ExtractionFailure) error {
	var subpos sql.NullInt64
	if f.Subposition != nil {
		subpos = sql.NullInt64{Int64: int64(*f.Subposition), Valid: true}
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO failures (run_id, seq, failure_point, reason, segment, position, element, subposition, date_format_in, date_format_out)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, seq, string(f.Point), f.Reason, f.Segment, f.Position,
		f.Element, subpos, f.DateFormatIn, f.DateFormatOut,
	)
	if err != nil {
		return fmt.Errorf("insert failure: %w", err)
	}
	return nil
}

func encodeExtensions(e edi.Extensions) (string, error) {
	if len(e) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encode extensions: %w", err)
	}
	return string(b), nil
}
