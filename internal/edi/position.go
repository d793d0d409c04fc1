// SPDX-License-Identifier: Apache-2.0

package edi

import "fmt"

// Position addresses one element of a segment, optionally narrowed to a
// subelement of it.
type Position struct {
	Element    int
	Subelement int
	sub        bool
}

// At addresses element i.
func At(i int) Position {
	return Position{Element: i}
}

// AtSub addresses subelement j of element i.
func AtSub(i, j int) Position {
	return Position{Element: i, Subelement: j, sub: true}
}

// HasSubelement reports whether the position narrows to a subelement.
func (p Position) HasSubelement() bool {
	return p.sub
}

func (p Position) String() string {
	if p.sub {
		return fmt.Sprintf("%d:%d", p.Element, p.Subelement)
	}
	return fmt.Sprintf("%d", p.Element)
}

// Field is an entry of a list or named extraction request. Date marks the
// entry as a date that must convert; a failed conversion is logged.
type Field struct {
	Position
	Date bool
}

// Plain is a list/named entry with no date handling of its own.
func Plain(p Position) Field {
	return Field{Position: p}
}

// DateOf is a list/named entry that must convert as a date.
func DateOf(p Position) Field {
	return Field{Position: p, Date: true}
}

// NamedField is an entry of a named extraction request.
type NamedField struct {
	Label string
	Field
}

// Name labels f for a named extraction.
func Name(label string, f Field) NamedField {
	return NamedField{Label: label, Field: f}
}

// Fields builds plain entries for element indexes.
func Fields(indexes ...int) []Field {
	out := make([]Field, len(indexes))
	for i, idx := range indexes {
		out[i] = Plain(At(idx))
	}
	return out
}

// Value is the outcome of extracting one leaf: the text, or the failure that
// took its place.
type Value struct {
	text    string
	failure *ExtractionFailure
}

// Text wraps a successfully extracted string.
func Text(s string) Value {
	return Value{text: s}
}

// Failed wraps a failure.
func Failed(f *ExtractionFailure) Value {
	return Value{failure: f}
}

// OK reports whether the leaf was extracted.
func (v Value) OK() bool {
	return v.failure == nil
}

// Failure returns the failure that replaced the value, or nil.
func (v Value) Failure() *ExtractionFailure {
	return v.failure
}

// String returns the extracted text, or "" when extraction failed. Callers
// treat a failed leaf as missing.
func (v Value) String() string {
	if v.failure != nil {
		return ""
	}
	return v.text
}

// Or returns the extracted text, or def when extraction failed.
func (v Value) Or(def string) string {
	if v.failure != nil {
		return def
	}
	return v.text
}
