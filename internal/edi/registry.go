// SPDX-License-Identifier: Apache-2.0

package edi

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"github.com/goccy/go-yaml"
)

//go:embed dialects.yaml
var defaultRegistryData []byte

//go:embed dialects.cue
var registrySchema []byte

// ErrUnknownDialect is returned when a dialect has no registry entry.
var ErrUnknownDialect = errors.New("unknown dialect")

// MatchMode decides how segment codes are compared with role codes.
type MatchMode string

const (
	MatchExact  MatchMode = "exact"
	MatchPrefix MatchMode = "prefix"
)

// Separators are the delimiter characters of a dialect. Release, when set,
// escapes the character after it so it is read as data.
type Separators struct {
	Element    string `yaml:"element" json:"element"`
	Segment    string `yaml:"segment" json:"segment"`
	Subelement string `yaml:"subelement" json:"subelement"`
	Release    string `yaml:"release,omitempty" json:"release,omitempty"`
}

func (s Separators) validate() error {
	chars := []struct{ name, v string }{
		{"element", s.Element},
		{"segment", s.Segment},
		{"subelement", s.Subelement},
		{"release", s.Release},
	}
	for i, a := range chars {
		for _, b := range chars[i+1:] {
			if a.v != "" && a.v == b.v {
				return fmt.Errorf("%s and %s separators are both %q", a.name, b.name, a.v)
			}
		}
	}
	return nil
}

// DialectConfig is the static configuration of one dialect. It is read-only
// once loaded and safe to share between parsers.
type DialectConfig struct {
	Name              Dialect             `yaml:"-"`
	Separators        Separators          `yaml:"separators"`
	Match             MatchMode           `yaml:"match"`
	DefaultDateFormat string              `yaml:"default_date_format"`
	DateFormats       map[string]string   `yaml:"date_formats"`
	Segments          map[string][]string `yaml:"segments"`
	ForecastCodes     map[string]string   `yaml:"forecast_codes"`
	TimingCodes       map[string]string   `yaml:"timing_codes"`
	HeaderDates       map[string]string   `yaml:"header_dates"`
	DocumentTypes     map[string]string   `yaml:"document_types"`
	RecordNumberIndex map[string]int      `yaml:"record_number_index"`
}

// Codes returns the segment codes registered for role. An empty result
// means the role has no segment in this dialect.
func (c *DialectConfig) Codes(role Role) []string {
	return c.Segments[string(role)]
}

// DateFormat returns the date input format for a version token, falling back
// to the dialect default for unknown tokens.
func (c *DialectConfig) DateFormat(version string) string {
	if f, ok := c.DateFormats[version]; ok {
		return f
	}
	return c.DefaultDateFormat
}

// ForecastLabel decodes a release type code. Unmapped codes decode to
// Unknown; an empty code stays empty.
func (c *DialectConfig) ForecastLabel(code string) string {
	return label(c.ForecastCodes, code)
}

// TimingLabel decodes a release timing code.
func (c *DialectConfig) TimingLabel(code string) string {
	return label(c.TimingCodes, code)
}

func label(table map[string]string, code string) string {
	if code == "" {
		return ""
	}
	if l, ok := table[code]; ok {
		return l
	}
	return Unknown
}

// StartSegment resolves the segment code that starts a document of the given
// type.
func (c *DialectConfig) StartSegment(documentType string) (string, bool) {
	code, ok := c.DocumentTypes[documentType]
	return code, ok
}

// RecordNumberPosition returns the element index holding the record number
// for a start segment code, 0 when the code is not listed.
func (c *DialectConfig) RecordNumberPosition(startCode string) int {
	return c.RecordNumberIndex[startCode]
}

// Registry holds the configuration of every known dialect.
type Registry struct {
	dialects map[Dialect]*DialectConfig
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the registry built from the embedded dialect
// tables. It panics if the embedded tables are invalid.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		r, err := LoadRegistry(defaultRegistryData)
		if err != nil {
			panic(fmt.Sprintf("edi: embedded dialect registry: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// LoadRegistry validates YAML dialect tables against the registry schema and
// decodes them.
func LoadRegistry(data []byte) (*Registry, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(registrySchema).LookupPath(cue.ParsePath("#Registry"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile registry schema: %w", err)
	}
	if err := cueyaml.Validate(data, schema); err != nil {
		return nil, fmt.Errorf("registry does not match schema: %w", err)
	}

	var doc struct {
		Dialects map[string]*DialectConfig `yaml:"dialects"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registry: %w", err)
	}

	r := &Registry{dialects: make(map[Dialect]*DialectConfig, len(doc.Dialects))}
	for name, cfg := range doc.Dialects {
		cfg.Name = Dialect(strings.ToUpper(name))
		if cfg.Match == "" {
			cfg.Match = MatchExact
		}
		seps, err := decodeSeparators(cfg.Separators)
		if err != nil {
			return nil, fmt.Errorf("dialect %s: %w", cfg.Name, err)
		}
		cfg.Separators = seps
		r.dialects[cfg.Name] = cfg
	}
	return r, nil
}

// Lookup returns the configuration of dialect d.
func (r *Registry) Lookup(d Dialect) (*DialectConfig, error) {
	cfg, ok := r.dialects[Dialect(strings.ToUpper(string(d)))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownDialect, d, r.Dialects())
	}
	return cfg, nil
}

// Dialects returns the registered dialect names, sorted.
func (r *Registry) Dialects() []Dialect {
	names := make([]Dialect, 0, len(r.dialects))
	for d := range r.dialects {
		names = append(names, d)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// DecodeSeparator resolves escape sequences such as `\t` or `\x1d` in a
// separator given as text. The result must be a single character.
func DecodeSeparator(s string) (string, error) {
	if s == "" {
		return "", errors.New("separator is empty")
	}
	decoded := s
	if strings.Contains(s, `\`) {
		var err error
		decoded, err = strconv.Unquote(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`)
		if err != nil {
			return "", fmt.Errorf("invalid separator %q: %w", s, err)
		}
	}
	if n := utf8.RuneCountInString(decoded); n != 1 {
		return "", fmt.Errorf("separator %q must be one character, got %d", s, n)
	}
	return decoded, nil
}

func decodeSeparators(s Separators) (Separators, error) {
	var err error
	if s.Element, err = DecodeSeparator(s.Element); err != nil {
		return s, fmt.Errorf("element separator: %w", err)
	}
	if s.Segment, err = DecodeSeparator(s.Segment); err != nil {
		return s, fmt.Errorf("segment separator: %w", err)
	}
	if s.Subelement, err = DecodeSeparator(s.Subelement); err != nil {
		return s, fmt.Errorf("subelement separator: %w", err)
	}
	if s.Release != "" {
		if s.Release, err = DecodeSeparator(s.Release); err != nil {
			return s, fmt.Errorf("release character: %w", err)
		}
	}
	return s, s.validate()
}
