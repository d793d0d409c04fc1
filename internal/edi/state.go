// SPDX-License-Identifier: Apache-2.0

package edi

import "github.com/rs/zerolog"

// State is the traversal state of one parse. Handlers read and advance it as
// segments arrive; it is never shared between parsers.
type State struct {
	Config *DialectConfig

	// Envelope is filled by the envelope handler.
	Envelope Envelope

	// Document is the open document, nil between documents. Documents holds
	// the sealed ones in the order they were closed.
	Document  *Document
	Documents []*Document

	// Part is the open part of the open document; Release the last release
	// appended to it.
	Part    *Part
	Release *Release

	// Address is the active ship-to address.
	Address string

	// Version is the active version token and DateFormat the date input
	// format derived from it.
	Version    string
	DateFormat string
	IssueDate  string

	// DocumentType is the active document type. StartCode, when set,
	// replaces the dialect's document start codes.
	DocumentType string
	StartCode    string

	// Context carries dialect-specific values between segments.
	Context Extensions

	x        *Extractor
	logger   zerolog.Logger
	skipping bool
}

func newState(cfg *DialectConfig, x *Extractor, logger zerolog.Logger) *State {
	return &State{
		Config:     cfg,
		DateFormat: cfg.DefaultDateFormat,
		x:          x,
		logger:     logger,
	}
}

// Extract returns the extractor bound to this parse.
func (s *State) Extract() *Extractor {
	return s.x
}

// Logger returns the parse logger.
func (s *State) Logger() *zerolog.Logger {
	return &s.logger
}

// OpenDocument seals the open document, if any, and makes d the open one.
func (s *State) OpenDocument(d *Document) {
	s.SealDocument()
	s.Document = d
	s.logger.Debug().Str("reference", d.Reference).Str("type", d.Type).Msg("document opened")
}

// SealDocument archives the open document and clears the part scope. It
// reports whether a document was open.
func (s *State) SealDocument() bool {
	if s.Document == nil {
		return false
	}
	s.Documents = append(s.Documents, s.Document)
	s.logger.Debug().
		Str("reference", s.Document.Reference).
		Int("parts", len(s.Document.Parts)).
		Msg("document sealed")
	s.Document = nil
	s.Part = nil
	s.Release = nil
	s.Address = ""
	return true
}

// OpenPart appends p to the open document and makes it the active part. It
// does nothing and returns false when no document is open.
func (s *State) OpenPart(p *Part) bool {
	if s.Document == nil {
		return false
	}
	s.Document.AddPart(p)
	s.Part = p
	s.Release = nil
	return true
}

// AddRelease appends r to the active part. It does nothing and returns false
// when no part is open.
func (s *State) AddRelease(r *Release) bool {
	if s.Part == nil {
		return false
	}
	s.Part.AddRelease(r)
	s.Release = r
	return true
}
