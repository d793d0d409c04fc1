// SPDX-License-Identifier: Apache-2.0

package edi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Handlers is the capability set a dialect provides. Each method receives
// one segment of its role along with the traversal state. Handlers degrade
// to unset fields on bad data; the only error they return is
// *UnknownDocumentTypeError.
type Handlers interface {
	HandleEnvelope(st *State, segment string) error
	HandleInner(st *State, segment string) error
	HandleLoop(st *State, segment string) error
	HandleStart(st *State, segment string) error
	HandleAddress(st *State, segment string) error
	HandlePart(st *State, segment string) error
	HandleRelease(st *State, segment string) error
	HandleAccumulation(st *State, segment string) error
	HandleEnd(st *State, segment string) error
}

// HandlerFunc handles one segment.
type HandlerFunc func(st *State, segment string) error

// Options configures a Parser.
type Options struct {
	Registry      *Registry
	Separators    Separators
	NoRelease     bool
	DateFormatOut string
	Logger        zerolog.Logger
}

// Option customises parser construction.
type Option func(*Options)

// WithRegistry selects the registry dialects are looked up in.
func WithRegistry(r *Registry) Option { return func(o *Options) { o.Registry = r } }

// WithElementSeparator overrides the element separator. Escape sequences
// such as `\t` are accepted.
func WithElementSeparator(s string) Option { return func(o *Options) { o.Separators.Element = s } }

// WithSegmentSeparator overrides the segment separator.
func WithSegmentSeparator(s string) Option { return func(o *Options) { o.Separators.Segment = s } }

// WithSubelementSeparator overrides the subelement separator.
func WithSubelementSeparator(s string) Option {
	return func(o *Options) { o.Separators.Subelement = s }
}

// WithReleaseCharacter overrides the release character.
func WithReleaseCharacter(s string) Option {
	return func(o *Options) { o.Separators.Release, o.NoRelease = s, false }
}

// WithoutReleaseCharacter turns off the dialect's release character.
func WithoutReleaseCharacter() Option {
	return func(o *Options) { o.Separators.Release, o.NoRelease = "", true }
}

// WithDateOutputFormat sets the strftime format dates are re-emitted in.
func WithDateOutputFormat(f string) Option { return func(o *Options) { o.DateFormatOut = f } }

// WithLogger sets the logger. Default: zerolog.Nop().
func WithLogger(l zerolog.Logger) Option { return func(o *Options) { o.Logger = l } }

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{
		DateFormatOut: DefaultDateFormatOut,
		Logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Registry == nil {
		o.Registry = DefaultRegistry()
	}
	return o
}

// Parser feeds segments of one dialect through its handlers. A Parser is not
// safe for concurrent use; parse independent inputs with separate parsers.
type Parser struct {
	cfg      *DialectConfig
	seps     Separators
	handlers Handlers
	dispatch map[Role]HandlerFunc
	dateOut  string
	logger   zerolog.Logger

	log      FailureLog
	state    *State
	segments int
	skipped  int
}

// NewParser creates a parser for cfg driven by h.
func NewParser(cfg *DialectConfig, h Handlers, opts ...Option) (*Parser, error) {
	o := NewOptions(opts...)

	seps := cfg.Separators
	overrides := []struct {
		name string
		raw  string
		dst  *string
	}{
		{"element", o.Separators.Element, &seps.Element},
		{"segment", o.Separators.Segment, &seps.Segment},
		{"subelement", o.Separators.Subelement, &seps.Subelement},
		{"release", o.Separators.Release, &seps.Release},
	}
	if o.NoRelease {
		seps.Release = ""
	}
	for _, ov := range overrides {
		if ov.raw == "" {
			continue
		}
		v, err := DecodeSeparator(ov.raw)
		if err != nil {
			return nil, fmt.Errorf("%s separator: %w", ov.name, err)
		}
		*ov.dst = v
	}
	if err := seps.validate(); err != nil {
		return nil, err
	}

	p := &Parser{
		cfg:      cfg,
		seps:     seps,
		handlers: h,
		dateOut:  o.DateFormatOut,
		logger:   o.Logger.With().Str("dialect", string(cfg.Name)).Logger(),
	}
	p.dispatch = map[Role]HandlerFunc{
		RoleEnvelope:      h.HandleEnvelope,
		RoleInnerMessage:  h.HandleInner,
		RoleLoop:          h.HandleLoop,
		RoleDocumentStart: h.HandleStart,
		RoleAddress:       h.HandleAddress,
		RolePartDetails:   h.HandlePart,
		RoleRelease:       h.HandleRelease,
		RoleReleaseType:   h.HandleRelease,
		RoleAccumulation:  h.HandleAccumulation,
		RoleFileEnd:       h.HandleEnd,
	}
	p.Reset()
	return p, nil
}

// Dialect returns the parser's dialect.
func (p *Parser) Dialect() Dialect {
	return p.cfg.Name
}

// Separators returns the separators in effect after overrides.
func (p *Parser) Separators() Separators {
	return p.seps
}

// State exposes the traversal state of the current parse.
func (p *Parser) State() *State {
	return p.state
}

// Failures returns the failures recorded so far, in order.
func (p *Parser) Failures() []*ExtractionFailure {
	return p.log.Entries()
}

// Reset discards the traversal state and failure log.
func (p *Parser) Reset() {
	p.log.reset()
	x := NewExtractor(p.seps, &p.log, p.logger)
	x.dateOut = p.dateOut
	p.state = newState(p.cfg, x, p.logger)
	p.segments = 0
	p.skipped = 0
}

// SegmentCode returns the leading code of a segment.
func (p *Parser) SegmentCode(segment string) string {
	return p.state.Extract().Code(segment)
}

// Classify maps a segment code to its role. Roles without codes in this
// dialect never match. The document start role follows the start code
// resolved by the last loop marker, if any.
func (p *Parser) Classify(code string) Role {
	if code == "" {
		return RoleUnrecognized
	}
	for _, role := range classifyOrder {
		for _, c := range p.codes(role) {
			if p.matches(code, c) {
				return role
			}
		}
	}
	return RoleUnrecognized
}

func (p *Parser) codes(role Role) []string {
	if role == RoleDocumentStart && p.state.StartCode != "" {
		return []string{p.state.StartCode}
	}
	return p.cfg.Codes(role)
}

func (p *Parser) matches(code, registered string) bool {
	if registered == "" {
		return false
	}
	if p.cfg.Match == MatchPrefix {
		return strings.HasPrefix(code, registered)
	}
	return code == registered
}

// Feed classifies one segment and runs its handler. Unrecognised segments
// are skipped. After an unknown document type, segments are skipped until
// the next loop marker; the *UnknownDocumentTypeError is returned.
func (p *Parser) Feed(segment string) error {
	segment = strings.Trim(segment, "\r\n")
	if strings.TrimSpace(segment) == "" {
		return nil
	}
	p.segments++

	role := p.Classify(p.SegmentCode(segment))
	fn, ok := p.dispatch[role]
	if !ok {
		p.skipped++
		p.logger.Trace().Str("segment", segment).Str("role", string(role)).Msg("segment skipped")
		return nil
	}
	if p.state.skipping && role != RoleLoop && role != RoleEnvelope && role != RoleInnerMessage {
		p.skipped++
		return nil
	}

	err := fn(p.state, segment)
	var unknown *UnknownDocumentTypeError
	switch {
	case errors.As(err, &unknown):
		p.state.skipping = true
		p.logger.Warn().Str("document_type", unknown.Code).Msg("no start segment for document type, skipping until next loop")
		return err
	case err != nil:
		return fmt.Errorf("handle %s segment: %w", role, err)
	case role == RoleLoop:
		p.state.skipping = false
	}
	return nil
}

// Close seals the open document and returns the result of the parse so far.
func (p *Parser) Close() *Result {
	p.state.SealDocument()
	docs := make([]*Document, len(p.state.Documents))
	copy(docs, p.state.Documents)
	return &Result{
		Dialect:   p.cfg.Name,
		Envelope:  p.state.Envelope,
		Documents: docs,
		Failures:  p.log.Entries(),
		Segments:  p.segments,
		Skipped:   p.skipped,
	}
}

// Parse resets the parser, feeds every segment in order and closes the
// parse. The result is complete even when err is non-nil; err joins the
// fatal errors met along the way.
func (p *Parser) Parse(segments []string) (*Result, error) {
	p.Reset()
	var errs []error
	for _, s := range segments {
		if err := p.Feed(s); err != nil {
			errs = append(errs, err)
		}
	}
	return p.Close(), errors.Join(errs...)
}

// ParseText splits raw interchange text on the parser's segment separator
// and parses the segments.
func (p *Parser) ParseText(raw string) (*Result, error) {
	return p.Parse(SplitReleasedSegments(raw, p.seps.Segment, p.seps.Release))
}
