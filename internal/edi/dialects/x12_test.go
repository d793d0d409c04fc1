// SPDX-License-Identifier: Apache-2.0

package dialects_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edidecode/edi-mcp/internal/edi"
	"github.com/edidecode/edi-mcp/internal/edi/dialects"
)

const x12ISA = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *250115*1200*U*00401*000000001*0*P*<"

var sample830 = []string{
	x12ISA,
	"GS*PS*SENDER*RECEIVER*20250115*1200*1*X*004010",
	"ST*830*0001",
	"BFR*05**REL-001*A*C*20250101*20250331*20250115",
	"N1*ST*PLANT ONE*92*PLANT01",
	"LIN**BP*PART-1*EC*B*PO*PO-77",
	"UIT*EA",
	"SHP*01*40*050*20250110",
	"SHP*02*400*051*20250101**20250131",
	"FST*100*C*D*20250120",
	"FST*200*D*W*20250127",
	"SDP*Y*Y",
	"LIN**BP*PART-2",
	"FST*50*Z*Q*BADDATE",
	"ATH*PQ*20250131*0*500*20250101",
	"SE*14*0001",
	"GE*1*1",
	"IEA*1*000000001",
}

func parseX12(t *testing.T, segments []string, opts ...edi.Option) (*edi.Result, error) {
	t.Helper()
	p, err := dialects.New(edi.X12, opts...)
	require.NoError(t, err)
	return p.Parse(segments)
}

// ---------------------------------------------------------------------------
// Full interchange
// ---------------------------------------------------------------------------

func TestX12_830(t *testing.T) {
	res, err := parseX12(t, sample830)
	require.NoError(t, err)

	assert.Equal(t, edi.Envelope{
		SenderID:          "SENDER",
		SenderQualifier:   "ZZ",
		ReceiverID:        "RECEIVER",
		ReceiverQualifier: "ZZ",
		ControlNumber:     "000000001",
	}, res.Envelope)
	assert.Equal(t, len(sample830), res.Segments)
	assert.Equal(t, 3, res.Skipped, "UIT, GE and IEA have no role")
	assert.Equal(t, 2, res.PartCount())
	assert.Equal(t, 3, res.ReleaseCount())

	require.Len(t, res.Documents, 1)
	doc := res.Documents[0]
	assert.Equal(t, "REL-001", doc.Reference)
	assert.Equal(t, "830", doc.Type)
	assert.Equal(t, "0040", doc.Version)
	assert.Equal(t, "01-15-2025", doc.IssueDate)
	assert.Equal(t, "01-01-2025", doc.HorizonStartDate)
	assert.Equal(t, "03-31-2025", doc.HorizonEndDate)
	assert.Equal(t, "0001", doc.Extensions["control_number"])

	require.Len(t, doc.Parts, 2)
	p1 := doc.Parts[0]
	assert.Equal(t, "PART-1", p1.PartNumber)
	assert.Equal(t, "B", p1.Revision)
	assert.Equal(t, "PART-1-B", p1.PartRev)
	assert.Equal(t, "PO-77", p1.PurchaseOrder)
	assert.Equal(t, "PLANT01", p1.Plant)
	assert.Equal(t, "40", p1.LastReceivedShipQuantity)
	assert.Equal(t, "01-10-2025", p1.LastReceivedShipDate)
	assert.Equal(t, "400", p1.TotalAccum)
	assert.Equal(t, "01-01-2025", p1.TotalAccumStartDate)
	assert.Equal(t, "01-31-2025", p1.TotalAccumEndDate)
	assert.Equal(t, "Y", p1.Extensions["ship_delivery_pattern"])

	require.Len(t, p1.Releases, 2)
	assert.Equal(t, &edi.Release{
		Dialect:    edi.X12,
		Date:       "01-20-2025",
		Quantity:   "100",
		Type:       "Firm",
		Timing:     "Discrete",
		TypeCode:   "C",
		TimingCode: "D",
	}, p1.Releases[0])
	assert.Equal(t, "Planning", p1.Releases[1].Type)
	assert.Equal(t, "Weekly Bucket", p1.Releases[1].Timing)

	p2 := doc.Parts[1]
	assert.Equal(t, "PART-2", p2.PartRev)
	assert.Equal(t, "PLANT01", p2.Plant, "parts inherit the ship-to address")
	assert.Equal(t, "0", p2.TotalAccum)
	assert.Equal(t, "01-01-2025", p2.TotalAccumStartDate)
	assert.Equal(t, "01-31-2025", p2.TotalAccumEndDate)
	require.Len(t, p2.Releases, 1)
	rel := p2.Releases[0]
	assert.Equal(t, "50", rel.Quantity)
	assert.Empty(t, rel.Date)
	assert.Equal(t, "Mutually Defined", rel.Type)
	assert.Equal(t, edi.Unknown, rel.Timing)

	require.Len(t, res.Failures, 1)
	f := res.Failures[0]
	assert.Equal(t, edi.FailureDateConversion, f.Point)
	assert.Equal(t, "FST*50*Z*Q*BADDATE", f.Segment)
	assert.Equal(t, "%Y%m%d", f.DateFormatIn)
}

func TestX12_ParseText(t *testing.T) {
	p, err := dialects.New(edi.X12)
	require.NoError(t, err)

	res, err := p.ParseText(strings.Join(sample830, "~\n") + "~")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ReleaseCount())
}

// ---------------------------------------------------------------------------
// Document boundaries
// ---------------------------------------------------------------------------

func TestX12_850RecordNumber(t *testing.T) {
	res, err := parseX12(t, []string{
		"ST*850*0001",
		"BEG*00*SA*PO-123**20250115",
		"SE*3*0001",
	})
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, "PO-123", res.Documents[0].Reference)
	assert.Equal(t, "850", res.Documents[0].Type)

	// BEG carries no horizon: both positions are reported missing.
	assert.Len(t, res.FailuresOf(edi.FailureElementIndex), 2)
}

func TestX12_VersionSelectsDateFormat(t *testing.T) {
	tests := []struct {
		name      string
		gs        string
		fst       string
		wantIssue string
		wantDate  string
	}{
		{
			name:      "version 0020 uses two digit years",
			gs:        "GS*PS*S*R*250115*1200*1*X*002002",
			fst:       "FST*10*C*D*250120",
			wantIssue: "01-15-2025",
			wantDate:  "01-20-2025",
		},
		{
			name:      "unknown version uses the default",
			gs:        "GS*PS*S*R*20250115*1200*1*X*999999",
			fst:       "FST*10*C*D*20250120",
			wantIssue: "01-15-2025",
			wantDate:  "01-20-2025",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseX12(t, []string{
				tt.gs,
				"ST*830*1",
				"BFR*05**R1*A*C",
				"LIN**BP*P1",
				tt.fst,
			})
			require.NoError(t, err)
			require.Len(t, res.Documents, 1)
			assert.Equal(t, tt.wantIssue, res.Documents[0].IssueDate)
			require.Equal(t, 1, res.ReleaseCount())
			assert.Equal(t, tt.wantDate, res.Documents[0].Parts[0].Releases[0].Date)
			assert.Empty(t, res.FailuresOf(edi.FailureDateConversion))
		})
	}
}

func TestX12_NewDocumentSealsPrevious(t *testing.T) {
	res, err := parseX12(t, []string{
		"ST*830*1",
		"BFR*05**R1",
		"LIN**BP*P1",
		"ST*830*2",
		"BFR*05**R2",
	})
	require.NoError(t, err)
	require.Len(t, res.Documents, 2)
	assert.Equal(t, "R1", res.Documents[0].Reference)
	assert.Len(t, res.Documents[0].Parts, 1)
	assert.Equal(t, "R2", res.Documents[1].Reference)
	assert.Empty(t, res.Documents[1].Parts)
}

func TestX12_UnknownDocumentType(t *testing.T) {
	res, err := parseX12(t, []string{
		"ST*999*1",
		"BFR*05**R1",
		"LIN**BP*P1",
		"FST*10*C*D*20250120",
		"SE*4*1",
		"ST*830*2",
		"BFR*05**R2",
		"LIN**BP*P2",
	})
	require.Error(t, err)
	var unknown *edi.UnknownDocumentTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "999", unknown.Code)

	require.Len(t, res.Documents, 1)
	assert.Equal(t, "R2", res.Documents[0].Reference)
	require.Len(t, res.Documents[0].Parts, 1)
	assert.Equal(t, "P2", res.Documents[0].Parts[0].PartNumber)
}

// ---------------------------------------------------------------------------
// Part scope
// ---------------------------------------------------------------------------

func TestX12_AccumulationBadDate(t *testing.T) {
	res, err := parseX12(t, []string{
		"ST*830*1",
		"BFR*05**R1",
		"LIN**BP*P1",
		"SHP*01*40*050*2025-01-10",
	})
	require.NoError(t, err)

	part := res.Documents[0].Parts[0]
	assert.Equal(t, "40", part.LastReceivedShipQuantity)
	assert.Empty(t, part.LastReceivedShipDate)

	failures := res.FailuresOf(edi.FailureDateConversion)
	require.Len(t, failures, 1)
	assert.Equal(t, "2025-01-10", failures[0].Element)
}

func TestX12_AccumulationFailuresInFieldOrder(t *testing.T) {
	segments := []string{
		"ST*830*1",
		"BFR*05**R1*A*C*20250101*20250331",
		"LIN**BP*P1",
		"SHP*02",
	}
	for i := 0; i < 20; i++ {
		res, err := parseX12(t, segments)
		require.NoError(t, err)

		var positions []int
		for _, f := range res.Failures {
			assert.Equal(t, edi.FailureElementIndex, f.Point)
			positions = append(positions, f.Position)
		}
		require.Equal(t, []int{2, 4, 6}, positions)
	}
}

func TestX12_OutOfScopeSegmentsAreNoOps(t *testing.T) {
	res, err := parseX12(t, []string{
		"LIN**BP*ORPHAN",
		"ST*830*1",
		"BFR*05**R1*A*C*20250101*20250331",
		"FST*10*C*D*20250120",
		"SHP*02*400*051*20250101**20250131",
		"SHP*77*1",
	})
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	assert.Empty(t, res.Documents[0].Parts)
	assert.Empty(t, res.Failures)
}

func TestX12_AddressAfterPart(t *testing.T) {
	res, err := parseX12(t, []string{
		"ST*830*1",
		"BFR*05**R1",
		"LIN**BP*P1",
		"N1*SU*SUPPLIER*92*SUP1",
		"N1*ST*PLANT*92*PLANT02",
	})
	require.NoError(t, err)
	assert.Equal(t, "PLANT02", res.Documents[0].Parts[0].Plant)
}

func TestX12_LINQualifiers(t *testing.T) {
	res, err := parseX12(t, []string{
		"ST*830*1",
		"BFR*05**R1",
		"LIN*7*BP*P1*VP*V-1*PO*PO-1",
		"LIN**VP*NO-BUYER-PART",
		"FST*10*C*D*20250120",
	})
	require.NoError(t, err)

	parts := res.Documents[0].Parts
	require.Len(t, parts, 1, "LIN without BP opens no part")
	assert.Equal(t, "P1", parts[0].PartRev)
	assert.Equal(t, "PO-1", parts[0].PurchaseOrder)
	assert.Equal(t, edi.Extensions{"line_number": "7", "VP": "V-1"}, parts[0].Extensions)
	assert.Empty(t, parts[0].Releases, "releases after a rejected LIN are dropped")
}

func TestX12_DateOutputFormat(t *testing.T) {
	res, err := parseX12(t, []string{
		"ST*830*1",
		"BFR*05**R1*A*C*20250101*20250331",
	}, edi.WithDateOutputFormat("%Y-%m-%d"))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", res.Documents[0].HorizonStartDate)
	assert.Equal(t, "2025-03-31", res.Documents[0].HorizonEndDate)
}
