// SPDX-License-Identifier: Apache-2.0

// Package dialects provides the segment handlers of each supported EDI
// dialect and builds parsers bound to them.
package dialects

import (
	"fmt"
	"sort"
	"strings"

	"github.com/edidecode/edi-mcp/internal/edi"
)

var handlers = map[edi.Dialect]func() edi.Handlers{
	edi.X12:     func() edi.Handlers { return &X12{} },
	edi.EDIFACT: func() edi.Handlers { return &EDIFACT{} },
}

// Supported returns the dialects that have handlers, sorted by name.
func Supported() []edi.Dialect {
	out := make([]edi.Dialect, 0, len(handlers))
	for d := range handlers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// New returns a parser for dialect d. The dialect must be present both in
// the registry selected by opts and in Supported.
func New(d edi.Dialect, opts ...edi.Option) (*edi.Parser, error) {
	o := edi.NewOptions(opts...)
	cfg, err := o.Registry.Lookup(d)
	if err != nil {
		return nil, err
	}
	mk, ok := handlers[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("%w: no handlers for %s", edi.ErrUnknownDialect, cfg.Name)
	}
	return edi.NewParser(cfg, mk(), opts...)
}

// ForText returns a parser for raw interchange text. An empty d is detected
// from the leading segment, falling back to X12. Separators declared by an
// ISA header or UNA advice, the UNA release character included, apply unless
// opts override them.
func ForText(raw string, d edi.Dialect, opts ...edi.Option) (*edi.Parser, error) {
	if d == "" {
		detected, ok := edi.DetectDialect(raw)
		if !ok {
			detected = edi.X12
		}
		d = detected
	}

	var (
		seps  edi.Separators
		found bool
	)
	name := edi.Dialect(strings.ToUpper(string(d)))
	switch name {
	case edi.X12:
		seps, found = edi.DetectX12Separators(raw)
	case edi.EDIFACT:
		seps, found = edi.DetectEDIFACTSeparators(raw)
	}
	if found {
		detected := []edi.Option{
			edi.WithElementSeparator(seps.Element),
			edi.WithSegmentSeparator(seps.Segment),
			edi.WithSubelementSeparator(seps.Subelement),
		}
		if name == edi.EDIFACT {
			if seps.Release != "" {
				detected = append(detected, edi.WithReleaseCharacter(seps.Release))
			} else {
				detected = append(detected, edi.WithoutReleaseCharacter())
			}
		}
		opts = append(detected, opts...)
	}
	return New(d, opts...)
}

// Part fields addressable from the declarative tables below.
const (
	fieldTotalAccum               = "total_accum"
	fieldTotalAccumStartDate      = "total_accum_start_date"
	fieldTotalAccumEndDate        = "total_accum_end_date"
	fieldLastReceivedShipQuantity = "last_received_ship_quantity"
	fieldLastReceivedShipDate     = "last_received_ship_date"
)

var partSetters = map[string]func(p *edi.Part, v string){
	fieldTotalAccum:               func(p *edi.Part, v string) { p.TotalAccum = v },
	fieldTotalAccumStartDate:      func(p *edi.Part, v string) { p.TotalAccumStartDate = v },
	fieldTotalAccumEndDate:        func(p *edi.Part, v string) { p.TotalAccumEndDate = v },
	fieldLastReceivedShipQuantity: func(p *edi.Part, v string) { p.LastReceivedShipQuantity = v },
	fieldLastReceivedShipDate:     func(p *edi.Part, v string) { p.LastReceivedShipDate = v },
}

// setPart copies the successfully extracted values onto p. Failed leaves
// leave their field untouched.
func setPart(p *edi.Part, values map[string]edi.Value) {
	for name, v := range values {
		if !v.OK() {
			continue
		}
		if set, ok := partSetters[name]; ok {
			set(p, v.String())
		}
	}
}

// Document header dates, keyed like the registry's header_dates table.
var headerSetters = map[string]func(d *edi.Document, v string){
	"issue":         func(d *edi.Document, v string) { d.IssueDate = v },
	"horizon_start": func(d *edi.Document, v string) { d.HorizonStartDate = v },
	"horizon_end":   func(d *edi.Document, v string) { d.HorizonEndDate = v },
}

// openPart opens p under the active document, inheriting the ship-to
// address. Without an open document the part is dropped.
func openPart(st *edi.State, p *edi.Part) {
	if p.Plant == "" {
		p.Plant = st.Address
	}
	if !st.OpenPart(p) {
		st.Logger().Debug().Str("part_number", p.PartNumber).Msg("part outside a document, ignored")
	}
}

// applyAddress records a ship-to address and stamps it onto the open part.
func applyAddress(st *edi.State, address string) {
	if address == "" {
		return
	}
	st.Address = address
	if st.Part != nil {
		st.Part.Plant = address
	}
}
