// SPDX-License-Identifier: Apache-2.0

package dialects

import "github.com/edidecode/edi-mcp/internal/edi"

var edifactEnvelope = []edi.NamedField{
	edi.Name("sender_id", edi.Plain(edi.AtSub(2, 0))),
	edi.Name("sender_qualifier", edi.Plain(edi.AtSub(2, 1))),
	edi.Name("receiver_id", edi.Plain(edi.AtSub(3, 0))),
	edi.Name("receiver_qualifier", edi.Plain(edi.AtSub(3, 1))),
	edi.Name("control_number", edi.Plain(edi.At(5))),
}

// UNH message identifier: type, version and release.
var edifactMessage = []edi.Field{
	edi.Plain(edi.AtSub(2, 0)),
	edi.Plain(edi.AtSub(2, 1)),
	edi.Plain(edi.AtSub(2, 2)),
}

// QTY qualifiers that open a release on the current part.
var edifactReleaseQuantities = map[string]bool{
	"1":   true,
	"113": true,
}

// QTY qualifiers that carry part accumulations.
var edifactAccumQuantities = map[string]string{
	"70": fieldTotalAccum,
	"48": fieldLastReceivedShipQuantity,
}

// DTM qualifiers dated onto the part. Qualifiers missing here and from the
// registry's header dates go to the last release.
var edifactPartDates = map[string]string{
	"51": fieldTotalAccumStartDate,
	"52": fieldTotalAccumEndDate,
	"50": fieldLastReceivedShipDate,
}

// Pending SCC values, kept until the next release opens.
const (
	ctxReleaseType   = "release_type"
	ctxReleaseTiming = "release_timing"
)

// EDIFACT handles UN/EDIFACT interchanges such as DELFOR and DELJIT.
type EDIFACT struct{}

var _ edi.Handlers = (*EDIFACT)(nil)

// HandleEnvelope reads UNB.
func (EDIFACT) HandleEnvelope(st *edi.State, segment string) error {
	v := st.Extract().Named(segment, edifactEnvelope, edi.DateOptions{})
	st.Envelope = edi.Envelope{
		SenderID:          v["sender_id"].String(),
		SenderQualifier:   v["sender_qualifier"].String(),
		ReceiverID:        v["receiver_id"].String(),
		ReceiverQualifier: v["receiver_qualifier"].String(),
		ControlNumber:     v["control_number"].String(),
	}
	return nil
}

// HandleInner is a no-op: functional groups carry nothing the documents use.
func (EDIFACT) HandleInner(*edi.State, string) error {
	return nil
}

// HandleLoop records the BGM document name code and number on the open
// message.
func (EDIFACT) HandleLoop(st *edi.State, segment string) error {
	if st.Document == nil {
		return nil
	}
	x := st.Extract()
	st.Document.Extensions.Set("document_name_code", x.Element(segment, 1).String())
	if x.Count(segment) > 2 {
		st.Document.Extensions.Set("document_number", x.Element(segment, 2).String())
	}
	return nil
}

// HandleStart opens a document on UNH.
func (EDIFACT) HandleStart(st *edi.State, segment string) error {
	x := st.Extract()
	record := x.Element(segment, st.Config.RecordNumberPosition(x.Code(segment))).String()
	msg := x.List(segment, edifactMessage, edi.DateOptions{})

	st.DocumentType = msg[0].String()
	st.Version = msg[1].String() + msg[2].String()
	st.Context.Set(ctxReleaseType, "")
	st.Context.Set(ctxReleaseTiming, "")

	st.OpenDocument(&edi.Document{
		Reference: record,
		Type:      st.DocumentType,
		Version:   st.Version,
	})
	return nil
}

// HandleAddress tracks the ship-to party from NAD+ST.
func (EDIFACT) HandleAddress(st *edi.State, segment string) error {
	x := st.Extract()
	if x.Element(segment, 1).String() != shipToQualifier {
		return nil
	}
	applyAddress(st, x.One(segment, edi.AtSub(2, 0), edi.DateOptions{}).String())
	return nil
}

// HandlePart opens a part from LIN.
func (EDIFACT) HandlePart(st *edi.State, segment string) error {
	x := st.Extract()
	partNumber := x.One(segment, edi.AtSub(3, 0), edi.DateOptions{}).String()
	if partNumber == "" {
		st.Part, st.Release = nil, nil
		return nil
	}
	part := edi.NewPart(partNumber, "")
	part.Extensions.Set("line_number", x.Element(segment, 1).String())
	openPart(st, part)
	return nil
}

// HandleRelease covers SCC, QTY and DTM. SCC sets the release type for the
// quantities that follow, QTY opens a release and DTM dates it.
func (h EDIFACT) HandleRelease(st *edi.State, segment string) error {
	x := st.Extract()
	switch x.Code(segment) {
	case "SCC":
		st.Context.Set(ctxReleaseType, x.Element(segment, 1).String())
		timing := ""
		if x.Count(segment) > 3 {
			timing = x.One(segment, edi.AtSub(3, 0), edi.DateOptions{}).String()
		}
		st.Context.Set(ctxReleaseTiming, timing)
	case "QTY":
		qualifier := x.One(segment, edi.AtSub(1, 0), edi.DateOptions{}).String()
		if _, ok := edifactAccumQuantities[qualifier]; ok {
			return h.HandleAccumulation(st, segment)
		}
		if !edifactReleaseQuantities[qualifier] || st.Part == nil {
			return nil
		}
		qty := x.One(segment, edi.AtSub(1, 1), edi.DateOptions{}).String()
		st.AddRelease(edi.NewRelease(st.Config, "", qty,
			st.Context[ctxReleaseType], st.Context[ctxReleaseTiming]))
	case "DTM":
		h.handleDate(st, segment)
	}
	return nil
}

// handleDate routes a DTM value by its qualifier. The date format comes from
// the format qualifier in the third subelement.
func (EDIFACT) handleDate(st *edi.State, segment string) {
	x := st.Extract()
	qualifier := x.One(segment, edi.AtSub(1, 0), edi.DateOptions{}).String()

	date := func() string {
		format := st.Config.DefaultDateFormat
		if code := x.One(segment, edi.AtSub(1, 2), edi.DateOptions{}); code.OK() {
			format = st.Config.DateFormat(code.String())
		}
		return x.One(segment, edi.AtSub(1, 1), edi.AsDate(format)).String()
	}

	if header, ok := st.Config.HeaderDates[qualifier]; ok {
		if st.Document != nil {
			headerSetters[header](st.Document, date())
		}
		return
	}
	if field, ok := edifactPartDates[qualifier]; ok {
		if st.Part != nil {
			partSetters[field](st.Part, date())
		}
		return
	}
	if st.Release != nil && st.Release.Date == "" {
		st.Release.Date = date()
	}
}

// HandleAccumulation applies a cumulative QTY to the open part.
func (EDIFACT) HandleAccumulation(st *edi.State, segment string) error {
	if st.Part == nil {
		return nil
	}
	x := st.Extract()
	qualifier := x.One(segment, edi.AtSub(1, 0), edi.DateOptions{}).String()
	field, ok := edifactAccumQuantities[qualifier]
	if !ok {
		return nil
	}
	setPart(st.Part, map[string]edi.Value{
		field: x.One(segment, edi.AtSub(1, 1), edi.DateOptions{}),
	})
	return nil
}

// HandleEnd seals the open document on UNT.
func (EDIFACT) HandleEnd(st *edi.State, _ string) error {
	st.SealDocument()
	return nil
}
