// SPDX-License-Identifier: Apache-2.0

// Package edi decodes delimiter-based EDI interchanges into a
// Document → Part → Release hierarchy.
//
// A Parser classifies each segment by its leading code against the active
// dialect's role table and hands it to the matching Handlers method. Handlers
// pull fields with the Extractor, which never fails hard: missing elements and
// bad dates come back as *ExtractionFailure values and are also recorded in
// the parser's failure log.
package edi

// Dialect names an EDI standard variant.
type Dialect string

const (
	X12     Dialect = "X12"
	EDIFACT Dialect = "EDIFACT"
)

// Unknown is the label given to forecast and timing codes missing from the
// dialect's code tables.
const Unknown = "Unknown"

// Extensions holds dialect-specific values that have no dedicated field.
type Extensions map[string]string

// Set stores value under key, allocating the map on first use. An empty
// value removes the key.
func (e *Extensions) Set(key, value string) {
	if value == "" {
		delete(*e, key)
		return
	}
	if *e == nil {
		*e = make(Extensions)
	}
	(*e)[key] = value
}

// Envelope is the interchange-level header information.
type Envelope struct {
	SenderID          string `json:"sender_id,omitempty" yaml:"sender_id,omitempty"`
	SenderQualifier   string `json:"sender_qualifier,omitempty" yaml:"sender_qualifier,omitempty"`
	ReceiverID        string `json:"receiver_id,omitempty" yaml:"receiver_id,omitempty"`
	ReceiverQualifier string `json:"receiver_qualifier,omitempty" yaml:"receiver_qualifier,omitempty"`
	ControlNumber     string `json:"control_number,omitempty" yaml:"control_number,omitempty"`
}

// Document is one logical message inside an interchange.
//
// X12: ST to SE segments. EDIFACT: UNH to UNT segments.
type Document struct {
	Reference        string     `json:"reference" yaml:"reference"`
	Type             string     `json:"type,omitempty" yaml:"type,omitempty"`
	Version          string     `json:"version,omitempty" yaml:"version,omitempty"`
	IssueDate        string     `json:"issue_date,omitempty" yaml:"issue_date,omitempty"`
	HorizonStartDate string     `json:"horizon_start_date,omitempty" yaml:"horizon_start_date,omitempty"`
	HorizonEndDate   string     `json:"horizon_end_date,omitempty" yaml:"horizon_end_date,omitempty"`
	Parts            []*Part    `json:"parts" yaml:"parts"`
	Extensions       Extensions `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// AddPart appends p to the document.
func (d *Document) AddPart(p *Part) {
	d.Parts = append(d.Parts, p)
}

// Part is one line item within a Document.
type Part struct {
	PartNumber               string     `json:"part_number" yaml:"part_number"`
	PartRev                  string     `json:"part_rev" yaml:"part_rev"`
	Revision                 string     `json:"revision,omitempty" yaml:"revision,omitempty"`
	PurchaseOrder            string     `json:"purchase_order,omitempty" yaml:"purchase_order,omitempty"`
	Plant                    string     `json:"plant,omitempty" yaml:"plant,omitempty"`
	TotalAccum               string     `json:"total_accum,omitempty" yaml:"total_accum,omitempty"`
	TotalAccumStartDate      string     `json:"total_accum_start_date,omitempty" yaml:"total_accum_start_date,omitempty"`
	TotalAccumEndDate        string     `json:"total_accum_end_date,omitempty" yaml:"total_accum_end_date,omitempty"`
	LastReceivedShipQuantity string     `json:"last_received_ship_quantity,omitempty" yaml:"last_received_ship_quantity,omitempty"`
	LastReceivedShipDate     string     `json:"last_received_ship_date,omitempty" yaml:"last_received_ship_date,omitempty"`
	Releases                 []*Release `json:"releases" yaml:"releases"`
	Extensions               Extensions `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// NewPart creates a Part. PartRev is composed here from the part number and
// revision and is not recomputed afterwards.
func NewPart(partNumber, revision string) *Part {
	rev := partNumber
	if revision != "" {
		rev = partNumber + "-" + revision
	}
	return &Part{
		PartNumber: partNumber,
		PartRev:    rev,
		Revision:   revision,
	}
}

// AddRelease appends r to the part.
func (p *Part) AddRelease(r *Release) {
	p.Releases = append(p.Releases, r)
}

// Release is one forecast or shipment schedule line.
type Release struct {
	Dialect    Dialect    `json:"dialect" yaml:"dialect"`
	Date       string     `json:"date,omitempty" yaml:"date,omitempty"`
	Quantity   string     `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Type       string     `json:"type,omitempty" yaml:"type,omitempty"`
	Timing     string     `json:"timing,omitempty" yaml:"timing,omitempty"`
	TypeCode   string     `json:"type_code,omitempty" yaml:"type_code,omitempty"`
	TimingCode string     `json:"timing_code,omitempty" yaml:"timing_code,omitempty"`
	Extensions Extensions `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// NewRelease builds a Release and decodes its type and timing codes through
// the dialect's code tables.
func NewRelease(cfg *DialectConfig, date, quantity, typeCode, timingCode string) *Release {
	return &Release{
		Dialect:    cfg.Name,
		Date:       date,
		Quantity:   quantity,
		Type:       cfg.ForecastLabel(typeCode),
		Timing:     cfg.TimingLabel(timingCode),
		TypeCode:   typeCode,
		TimingCode: timingCode,
	}
}
