// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the EDI parser as MCP tools.
package tool

import "github.com/modelcontextprotocol/go-sdk/mcp"

// Register adds every tool of this package to srv.
func Register(srv *mcp.Server) {
	mcp.AddTool(srv, MetadataParseEDIInterchange, ParseEDIInterchange)
	mcp.AddTool(srv, MetadataListEDIDialects, ListEDIDialects)
}
