// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/edidecode/edi-mcp/internal/edi"
	"github.com/edidecode/edi-mcp/internal/edi/dialects"
)

// MetadataListEDIDialects describes the list_edi_dialects tool.
var MetadataListEDIDialects = &mcp.Tool{
	Name: "list_edi_dialects",
	Description: "List the supported EDI dialects with their default separators, " +
		"the segment codes recognised for each role and the document types that can be parsed.",
	InputSchema: map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	},
}

// InputListEDIDialects is the (empty) input for the ListEDIDialects tool.
type InputListEDIDialects struct{}

// DialectSummary describes one dialect.
type DialectSummary struct {
	Name          string              `json:"name"`
	Separators    edi.Separators      `json:"separators"`
	Match         string              `json:"match"`
	Segments      map[string][]string `json:"segments"`
	DocumentTypes []string            `json:"document_types,omitempty"`
}

// OutputListEDIDialects is the output for the ListEDIDialects tool.
type OutputListEDIDialects struct {
	Dialects []DialectSummary `json:"dialects"`
}

// Summarize describes every dialect of r that has handlers.
func Summarize(r *edi.Registry) ([]DialectSummary, error) {
	var out []DialectSummary
	for _, d := range dialects.Supported() {
		cfg, err := r.Lookup(d)
		if err != nil {
			return nil, err
		}
		segments := make(map[string][]string)
		for role, codes := range cfg.Segments {
			if len(codes) > 0 {
				segments[role] = codes
			}
		}
		docTypes := make([]string, 0, len(cfg.DocumentTypes))
		for t := range cfg.DocumentTypes {
			docTypes = append(docTypes, t)
		}
		sort.Strings(docTypes)
		out = append(out, DialectSummary{
			Name:          string(cfg.Name),
			Separators:    cfg.Separators,
			Match:         string(cfg.Match),
			Segments:      segments,
			DocumentTypes: docTypes,
		})
	}
	return out, nil
}

// ListEDIDialects returns the dialects of the default registry.
func ListEDIDialects(_ context.Context, _ *mcp.CallToolRequest, _ InputListEDIDialects) (*mcp.CallToolResult, OutputListEDIDialects, error) {
	summaries, err := Summarize(edi.DefaultRegistry())
	if err != nil {
		return nil, OutputListEDIDialects{}, err
	}
	return nil, OutputListEDIDialects{Dialects: summaries}, nil
}
