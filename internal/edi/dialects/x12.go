// SPDX-License-Identifier: Apache-2.0

package dialects

import (
	"strings"

	"github.com/edidecode/edi-mcp/internal/edi"
)

// ISA element positions.
const (
	isaSenderQualifier = iota + 5
	isaSenderID
	isaReceiverQualifier
	isaReceiverID
	_ // date
	_ // time
	_ // repetition separator
	_ // version
	isaControlNumber
)

// GS element positions.
const (
	gsDate    = 4
	gsVersion = 8
)

// ST element positions.
const (
	stDocumentType  = 1
	stControlNumber = 2
)

// FST element positions.
const (
	fstQuantity = iota + 1
	fstForecastCode
	fstTimingCode
	fstDate
	fstEndDate
)

// Document horizon dates on the start segment.
const (
	startHorizonStart = 6
	startHorizonEnd   = 7
)

// versionLength is the number of leading GS08 characters naming the version.
const versionLength = 4

// Ship-to entity identifier on N1.
const shipToQualifier = "ST"

var x12Envelope = []edi.NamedField{
	edi.Name("sender_qualifier", edi.Plain(edi.At(isaSenderQualifier))),
	edi.Name("sender_id", edi.Plain(edi.At(isaSenderID))),
	edi.Name("receiver_qualifier", edi.Plain(edi.At(isaReceiverQualifier))),
	edi.Name("receiver_id", edi.Plain(edi.At(isaReceiverID))),
	edi.Name("control_number", edi.Plain(edi.At(isaControlNumber))),
}

var x12Release = []edi.NamedField{
	edi.Name("quantity", edi.Plain(edi.At(fstQuantity))),
	edi.Name("type_code", edi.Plain(edi.At(fstForecastCode))),
	edi.Name("timing_code", edi.Plain(edi.At(fstTimingCode))),
	edi.Name("date", edi.DateOf(edi.At(fstDate))),
}

// x12Accumulations maps the SHP01/ATH01 qualifier to where each Part field
// sits on the segment. Fields are extracted in the listed order.
var x12Accumulations = map[string][]edi.NamedField{
	// Discrete quantity: last shipment received.
	"01": {
		edi.Name(fieldLastReceivedShipQuantity, edi.Plain(edi.At(2))),
		edi.Name(fieldLastReceivedShipDate, edi.DateOf(edi.At(4))),
	},
	// Cumulative quantity with its period.
	"02": {
		edi.Name(fieldTotalAccum, edi.Plain(edi.At(2))),
		edi.Name(fieldTotalAccumStartDate, edi.DateOf(edi.At(4))),
		edi.Name(fieldTotalAccumEndDate, edi.DateOf(edi.At(6))),
	},
	// Prior cumulative quantity.
	"PQ": {
		edi.Name(fieldTotalAccum, edi.Plain(edi.At(3))),
		edi.Name(fieldTotalAccumStartDate, edi.DateOf(edi.At(5))),
		edi.Name(fieldTotalAccumEndDate, edi.DateOf(edi.At(2))),
	},
}

// x12PartQualifiers maps LIN product ID qualifiers onto Part fields. Other
// qualifiers land in the part's extensions.
var x12PartQualifiers = map[string]func(p *edi.Part, v string){
	"PO": func(p *edi.Part, v string) { p.PurchaseOrder = v },
}

const (
	linBuyerPart = "BP"
	linRevision  = "EC"
)

// X12 handles ANSI X12 interchanges.
type X12 struct{}

var _ edi.Handlers = (*X12)(nil)

// HandleEnvelope reads sender, receiver and control number off ISA. The
// fixed-width IDs are trimmed.
func (X12) HandleEnvelope(st *edi.State, segment string) error {
	v := st.Extract().Named(segment, x12Envelope, edi.DateOptions{})
	st.Envelope = edi.Envelope{
		SenderID:          strings.TrimSpace(v["sender_id"].String()),
		SenderQualifier:   strings.TrimSpace(v["sender_qualifier"].String()),
		ReceiverID:        strings.TrimSpace(v["receiver_id"].String()),
		ReceiverQualifier: strings.TrimSpace(v["receiver_qualifier"].String()),
		ControlNumber:     v["control_number"].String(),
	}
	return nil
}

// HandleInner takes the version off GS and, with it, the date format used
// for the rest of the functional group.
func (X12) HandleInner(st *edi.State, segment string) error {
	x := st.Extract()
	version := x.Element(segment, gsVersion).String()
	if len(version) > versionLength {
		version = version[:versionLength]
	}
	st.Version = version
	st.DateFormat = st.Config.DateFormat(version)
	st.IssueDate = x.One(segment, edi.At(gsDate), edi.AsDate(st.DateFormat)).String()
	return nil
}

// HandleLoop resolves the start segment of the document type named on ST.
func (X12) HandleLoop(st *edi.State, segment string) error {
	x := st.Extract()
	docType := x.Element(segment, stDocumentType).String()
	st.DocumentType = docType
	st.Context.Set("control_number", x.Element(segment, stControlNumber).String())

	start, ok := st.Config.StartSegment(docType)
	if !ok {
		st.StartCode = ""
		return &edi.UnknownDocumentTypeError{Code: docType, Segment: segment}
	}
	st.StartCode = start
	return nil
}

// HandleStart opens a new document. The record number position depends on
// the start segment.
func (X12) HandleStart(st *edi.State, segment string) error {
	x := st.Extract()
	record := x.Element(segment, st.Config.RecordNumberPosition(x.Code(segment))).String()

	doc := &edi.Document{
		Reference: record,
		Type:      st.DocumentType,
		Version:   st.Version,
		IssueDate: st.IssueDate,
	}
	horizon := x.List(segment, edi.Fields(startHorizonStart, startHorizonEnd), edi.AsDate(st.DateFormat))
	doc.HorizonStartDate = horizon[0].String()
	doc.HorizonEndDate = horizon[1].String()
	doc.Extensions.Set("control_number", st.Context["control_number"])

	st.OpenDocument(doc)
	return nil
}

// HandleAddress tracks the ship-to address from N1*ST.
func (X12) HandleAddress(st *edi.State, segment string) error {
	x := st.Extract()
	if x.Element(segment, 1).String() != shipToQualifier {
		return nil
	}
	applyAddress(st, x.Element(segment, 4).String())
	return nil
}

// HandlePart opens a part from the LIN qualifier/value pairs.
func (X12) HandlePart(st *edi.State, segment string) error {
	x := st.Extract()
	n := x.Count(segment)

	var partNumber, revision string
	extra := map[string]string{}
	for i := 2; i+1 < n; i += 2 {
		q := x.Element(segment, i).String()
		v := x.Element(segment, i+1).String()
		switch q {
		case "":
		case linBuyerPart:
			partNumber = v
		case linRevision:
			revision = v
		default:
			extra[q] = v
		}
	}
	if partNumber == "" {
		st.Part, st.Release = nil, nil
		st.Logger().Debug().Str("segment", segment).Msg("LIN without buyer part number")
		return nil
	}

	part := edi.NewPart(partNumber, revision)
	if n > 1 {
		part.Extensions.Set("line_number", x.Element(segment, 1).String())
	}
	for q, v := range extra {
		if set, ok := x12PartQualifiers[q]; ok {
			set(part, v)
			continue
		}
		part.Extensions.Set(q, v)
	}
	openPart(st, part)
	return nil
}

// HandleRelease appends an FST forecast line to the open part. SDP carries
// the ship/delivery pattern of the part instead.
func (X12) HandleRelease(st *edi.State, segment string) error {
	x := st.Extract()
	if st.Part == nil {
		return nil
	}

	if x.Code(segment) == "SDP" {
		v := x.List(segment, edi.Fields(1, 2), edi.DateOptions{})
		st.Part.Extensions.Set("ship_delivery_pattern", v[0].String())
		st.Part.Extensions.Set("ship_delivery_time", v[1].String())
		return nil
	}

	v := x.Named(segment, x12Release, edi.DateOptions{In: st.DateFormat})
	rel := edi.NewRelease(st.Config,
		v["date"].String(),
		v["quantity"].String(),
		v["type_code"].String(),
		v["timing_code"].String(),
	)
	if x.Count(segment) > fstEndDate {
		end := x.List(segment, edi.Fields(fstEndDate), edi.AsDate(st.DateFormat))
		rel.Extensions.Set("end_date", end[0].String())
	}
	st.AddRelease(rel)
	return nil
}

// HandleAccumulation applies SHP/ATH quantities to the open part, driven by
// the qualifier in element 1.
func (X12) HandleAccumulation(st *edi.State, segment string) error {
	x := st.Extract()
	qualifier := x.Element(segment, 1).String()
	if st.Part == nil {
		return nil
	}
	fields, ok := x12Accumulations[qualifier]
	if !ok {
		return nil
	}
	setPart(st.Part, x.Named(segment, fields, edi.DateOptions{In: st.DateFormat}))
	return nil
}

// HandleEnd seals the open document on SE.
func (X12) HandleEnd(st *edi.State, _ string) error {
	st.SealDocument()
	return nil
}
