// SPDX-License-Identifier: Apache-2.0

package edi

import (
	"fmt"
	"strings"

	"github.com/ncruces/go-strftime"
	"github.com/rs/zerolog"
)

// Default date formats, strftime style.
const (
	DefaultDateFormatIn  = "%Y%m%d"
	DefaultDateFormatOut = "%m-%d-%Y"
)

// DateOptions controls date reformatting for one extraction call. Empty
// formats fall back to the extractor's defaults.
type DateOptions struct {
	Parse bool
	In    string
	Out   string
}

// AsDate requests date reformatting with the given input format.
func AsDate(in string) DateOptions {
	return DateOptions{Parse: true, In: in}
}

// Extractor pulls elements out of raw segments. Every failure it produces is
// appended to its FailureLog as well as returned.
type Extractor struct {
	seps    Separators
	dateOut string
	log     *FailureLog
	logger  zerolog.Logger
}

// NewExtractor returns an extractor splitting on seps and recording failures
// into log. Separators escaped with seps.Release are kept as data.
func NewExtractor(seps Separators, log *FailureLog, logger zerolog.Logger) *Extractor {
	return &Extractor{
		seps:    seps,
		dateOut: DefaultDateFormatOut,
		log:     log,
		logger:  logger,
	}
}

func (x *Extractor) elements(segment string) []string {
	return splitReleased(segment, x.seps.Element, x.seps.Release)
}

// Count returns the number of elements in segment, the code included.
func (x *Extractor) Count(segment string) int {
	return len(x.elements(segment))
}

// Code returns the leading code of segment.
func (x *Extractor) Code(segment string) string {
	return strings.TrimSpace(x.elements(segment)[0])
}

// Element returns element i with no date handling.
func (x *Extractor) Element(segment string, i int) Value {
	return x.One(segment, At(i), DateOptions{})
}

// One extracts a single position. When opts.Parse is set the date
// conversion is enforced: a value that does not match opts.In is a failure.
func (x *Extractor) One(segment string, pos Position, opts DateOptions) Value {
	return x.extract(segment, pos, opts, opts.Parse)
}

// List extracts each field independently, index-aligned with fields. With
// opts.Parse set every entry is converted, but only entries marked Date turn
// a bad conversion into a failure; the others keep the raw text.
func (x *Extractor) List(segment string, fields []Field, opts DateOptions) []Value {
	out := make([]Value, len(fields))
	for i, f := range fields {
		out[i] = x.field(segment, f, opts)
	}
	return out
}

// Named extracts each labelled field independently, in the order given, so
// failures are logged in that order.
func (x *Extractor) Named(segment string, fields []NamedField, opts DateOptions) map[string]Value {
	out := make(map[string]Value, len(fields))
	for _, f := range fields {
		out[f.Label] = x.field(segment, f.Field, opts)
	}
	return out
}

func (x *Extractor) field(segment string, f Field, opts DateOptions) Value {
	o := opts
	o.Parse = opts.Parse || f.Date
	return x.extract(segment, f.Position, o, f.Date)
}

func (x *Extractor) extract(segment string, pos Position, opts DateOptions, strict bool) Value {
	elements := x.elements(segment)
	if pos.Element < 0 || pos.Element >= len(elements) {
		return x.fail(&ExtractionFailure{
			Point:    FailureElementIndex,
			Reason:   fmt.Sprintf("position %d out of range for %q", pos.Element, segment),
			Segment:  segment,
			Position: pos.Element,
		})
	}
	element := elements[pos.Element]

	var subpos *int
	if pos.HasSubelement() {
		j := pos.Subelement
		subpos = &j
		subs := splitReleased(element, x.seps.Subelement, x.seps.Release)
		if j < 0 || j >= len(subs) {
			return x.fail(&ExtractionFailure{
				Point:       FailureSubelementIndex,
				Reason:      fmt.Sprintf("subposition %d out of range for %q", j, element),
				Segment:     segment,
				Position:    pos.Element,
				Element:     element,
				Subposition: subpos,
			})
		}
		element = subs[j]
	}
	element = unescape(element, x.seps.Release)

	if !opts.Parse {
		return Text(element)
	}

	in, out := opts.In, opts.Out
	if in == "" {
		in = DefaultDateFormatIn
	}
	if out == "" {
		out = x.dateOut
	}
	t, err := strftime.Parse(in, element)
	if err != nil {
		if !strict {
			return Text(element)
		}
		return x.fail(&ExtractionFailure{
			Point:         FailureDateConversion,
			Reason:        err.Error(),
			Segment:       segment,
			Position:      pos.Element,
			Element:       element,
			Subposition:   subpos,
			DateFormatIn:  in,
			DateFormatOut: out,
		})
	}
	return Text(strftime.Format(out, t))
}

func (x *Extractor) fail(f *ExtractionFailure) Value {
	x.logger.Debug().
		Str("failure_point", string(f.Point)).
		Str("segment", f.Segment).
		Int("position", f.Position).
		Msg(f.Reason)
	return Failed(x.log.add(f))
}
