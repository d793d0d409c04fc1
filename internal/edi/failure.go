// SPDX-License-Identifier: Apache-2.0

package edi

import (
	"errors"
	"fmt"
)

// FailurePoint identifies the extraction step that could not be satisfied.
type FailurePoint string

const (
	FailureElementIndex    FailurePoint = "Element Index"
	FailureSubelementIndex FailurePoint = "Subelement Index"
	FailureDateConversion  FailurePoint = "Date conversion"
)

// Recoverable extraction failures unwrap to one of these.
var (
	ErrElementIndex    = errors.New("element index out of range")
	ErrSubelementIndex = errors.New("subelement index out of range")
	ErrDateConversion  = errors.New("date conversion failed")
)

// ErrUnknownDocumentType is the fatal condition: a document type with no
// registered start segment.
var ErrUnknownDocumentType = errors.New("unknown document type")

// ExtractionFailure records why a field could not be extracted. It is
// returned in place of the value and appended to the parser's failure log;
// it is never raised.
type ExtractionFailure struct {
	Point         FailurePoint `json:"failure_point" yaml:"failure_point"`
	Reason        string       `json:"failure_reason" yaml:"failure_reason"`
	Segment       string       `json:"segment" yaml:"segment"`
	Position      int          `json:"position" yaml:"position"`
	Element       string       `json:"element,omitempty" yaml:"element,omitempty"`
	Subposition   *int         `json:"subposition,omitempty" yaml:"subposition,omitempty"`
	DateFormatIn  string       `json:"date_format_in,omitempty" yaml:"date_format_in,omitempty"`
	DateFormatOut string       `json:"date_format_out,omitempty" yaml:"date_format_out,omitempty"`
}

func (f *ExtractionFailure) Error() string {
	return fmt.Sprintf("%s: %s", f.Point, f.Reason)
}

// Unwrap maps the failure point onto its sentinel error.
func (f *ExtractionFailure) Unwrap() error {
	switch f.Point {
	case FailureElementIndex:
		return ErrElementIndex
	case FailureSubelementIndex:
		return ErrSubelementIndex
	case FailureDateConversion:
		return ErrDateConversion
	}
	return nil
}

// UnknownDocumentTypeError reports a document type code with no start
// segment mapping. Segments are skipped until the next loop marker.
type UnknownDocumentTypeError struct {
	Code    string
	Segment string
}

func (e *UnknownDocumentTypeError) Error() string {
	return fmt.Sprintf("unknown document type %q in segment %q", e.Code, e.Segment)
}

func (e *UnknownDocumentTypeError) Unwrap() error {
	return ErrUnknownDocumentType
}

// FailureLog is the append-only, ordered record of extraction failures for
// one parse.
type FailureLog struct {
	entries []*ExtractionFailure
}

func (l *FailureLog) add(f *ExtractionFailure) *ExtractionFailure {
	l.entries = append(l.entries, f)
	return f
}

// Len returns the number of recorded failures.
func (l *FailureLog) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the recorded failures in occurrence order.
func (l *FailureLog) Entries() []*ExtractionFailure {
	out := make([]*ExtractionFailure, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *FailureLog) reset() {
	l.entries = nil
}
