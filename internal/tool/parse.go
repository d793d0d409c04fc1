// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/edidecode/edi-mcp/internal/edi"
	"github.com/edidecode/edi-mcp/internal/edi/dialects"
)

// MetadataParseEDIInterchange describes the parse_edi_interchange tool.
var MetadataParseEDIInterchange = &mcp.Tool{
	Name: "parse_edi_interchange",
	Description: "Parse an X12 or EDIFACT interchange into documents, parts and releases. " +
		"Segments are classified by their leading code and extracted into a " +
		"Document > Part > Release hierarchy. Fields that cannot be extracted are left " +
		"empty and reported in the failures list with the segment and position involved. " +
		"When dialect is omitted it is detected from the ISA, UNA or UNB header; " +
		"separators declared in the header are used unless overridden.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw interchange text",
			},
			"dialect": map[string]interface{}{
				"type":        "string",
				"description": "EDI dialect. If omitted, detection from the first segment is used.",
				"enum":        []string{"X12", "EDIFACT"},
			},
			"element_separator": map[string]interface{}{
				"type":        "string",
				"description": "Element separator override. Escapes such as \\t are accepted.",
			},
			"segment_separator": map[string]interface{}{
				"type":        "string",
				"description": "Segment separator override.",
			},
			"subelement_separator": map[string]interface{}{
				"type":        "string",
				"description": "Subelement separator override.",
			},
			"date_format": map[string]interface{}{
				"type":        "string",
				"description": "strftime format for extracted dates. Defaults to %m-%d-%Y.",
			},
		},
	},
}

// InputParseEDIInterchange is the input for the ParseEDIInterchange tool.
type InputParseEDIInterchange struct {
	Content             string `json:"content"`
	Dialect             string `json:"dialect"`
	ElementSeparator    string `json:"element_separator"`
	SegmentSeparator    string `json:"segment_separator"`
	SubelementSeparator string `json:"subelement_separator"`
	DateFormat          string `json:"date_format"`
}

// OutputParseEDIInterchange is the output for the ParseEDIInterchange tool.
type OutputParseEDIInterchange struct {
	Dialect   string                   `json:"dialect"`
	Envelope  edi.Envelope             `json:"envelope"`
	Documents []*edi.Document          `json:"documents"`
	Failures  []*edi.ExtractionFailure `json:"failures"`
	// Errors lists fatal per-document problems such as unknown document types.
	Errors       []string `json:"errors,omitempty"`
	SegmentCount int      `json:"segment_count"`
	SkippedCount int      `json:"skipped_count"`
	PartCount    int      `json:"part_count"`
	ReleaseCount int      `json:"release_count"`
}

// ParserOptions turns the non-empty overrides into parser options.
func ParserOptions(elementSep, segmentSep, subelementSep, dateFormat string) []edi.Option {
	var opts []edi.Option
	if elementSep != "" {
		opts = append(opts, edi.WithElementSeparator(elementSep))
	}
	if segmentSep != "" {
		opts = append(opts, edi.WithSegmentSeparator(segmentSep))
	}
	if subelementSep != "" {
		opts = append(opts, edi.WithSubelementSeparator(subelementSep))
	}
	if dateFormat != "" {
		opts = append(opts, edi.WithDateOutputFormat(dateFormat))
	}
	return opts
}

// ParseEDIInterchange parses the provided interchange text. Unknown document
// types do not fail the call: the remaining documents are returned and the
// problem is listed in Errors.
func ParseEDIInterchange(_ context.Context, _ *mcp.CallToolRequest, input InputParseEDIInterchange) (*mcp.CallToolResult, OutputParseEDIInterchange, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, OutputParseEDIInterchange{}, fmt.Errorf("content is required")
	}

	opts := ParserOptions(input.ElementSeparator, input.SegmentSeparator, input.SubelementSeparator, input.DateFormat)
	parser, err := dialects.ForText(input.Content, edi.Dialect(input.Dialect), opts...)
	if err != nil {
		return nil, OutputParseEDIInterchange{}, err
	}

	result, parseErr := parser.ParseText(input.Content)
	out := OutputParseEDIInterchange{
		Dialect:      string(result.Dialect),
		Envelope:     result.Envelope,
		Documents:    result.Documents,
		Failures:     result.Failures,
		SegmentCount: result.Segments,
		SkippedCount: result.Skipped,
		PartCount:    result.PartCount(),
		ReleaseCount: result.ReleaseCount(),
	}
	if parseErr != nil {
		out.Errors = splitJoined(parseErr)
	}
	return nil, out, nil
}

// splitJoined flattens an errors.Join result into its messages.
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}
