// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edidecode/edi-mcp/internal/edi"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "edi.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() *edi.Result {
	sub := 1
	return &edi.Result{
		Dialect:  edi.X12,
		Envelope: edi.Envelope{SenderID: "SENDER", ReceiverID: "RECEIVER", ControlNumber: "000000001"},
		Segments: 12,
		Documents: []*edi.Document{
			{
				Reference:  "REL-001",
				Type:       "830",
				Extensions: edi.Extensions{"control_number": "0001"},
				Parts: []*edi.Part{
					{
						PartNumber: "PART-1",
						PartRev:    "PART-1-B",
						Plant:      "PLANT01",
						Releases: []*edi.Release{
							{Dialect: edi.X12, Date: "01-20-2025", Quantity: "100", Type: "Firm"},
							{Dialect: edi.X12, Date: "01-27-2025", Quantity: "200", Type: "Planning"},
						},
					},
					{PartNumber: "PART-2", PartRev: "PART-2"},
				},
			},
			{Reference: "REL-002"},
		},
		Failures: []*edi.ExtractionFailure{
			{Point: edi.FailureDateConversion, Reason: "bad", Segment: "FST*1*C*D*X", Position: 4},
			{Point: edi.FailureSubelementIndex, Reason: "short", Segment: "QTY*1", Position: 1, Subposition: &sub},
		},
	}
}

func TestStore_SaveAndSummary(t *testing.T) {
	s := openTestStore(t)
	s.now = func() time.Time { return time.Date(2025, 1, 15, 12, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	runID, err := s.Save(ctx, "forecast.edi", sampleResult())
	require.NoError(t, err)
	_, err = uuid.Parse(runID)
	require.NoError(t, err, "run ids are UUIDs")

	sum, err := s.Summary(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, RunSummary{
		ID:        runID,
		Source:    "forecast.edi",
		Dialect:   "X12",
		CreatedAt: "2025-01-15T12:30:00Z",
		Segments:  12,
		Documents: 2,
		Parts:     2,
		Releases:  2,
		Failures:  2,
	}, sum)
}

func TestStore_SummaryUnknownRun(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Summary(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_Runs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, "a.edi", sampleResult())
	require.NoError(t, err)
	second, err := s.Save(ctx, "b.edi", &edi.Result{Dialect: edi.EDIFACT})
	require.NoError(t, err)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{first, second}, ids)
}

func TestStore_PartReleases(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.Save(ctx, "forecast.edi", sampleResult())
	require.NoError(t, err)

	got, err := s.PartReleases(ctx, "PART-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, PartRelease{
		RunID:     runID,
		Reference: "REL-001",
		PartRev:   "PART-1-B",
		Plant:     "PLANT01",
		Date:      "01-20-2025",
		Quantity:  "100",
		Type:      "Firm",
	}, got[0])
	assert.Equal(t, "200", got[1].Quantity)

	none, err := s.PartReleases(ctx, "PART-404")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edi.db")
	ctx := context.Background()

	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	runID, err := s.Save(ctx, "a.edi", sampleResult())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	sum, err := s.Summary(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Documents)
}
