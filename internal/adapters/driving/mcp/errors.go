// Package mcp provides an MCP (Model Context Protocol) server adapter for upfund.
// It lets AI assistants search the indexed documents and ask grounded questions.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrEmptyQuery is returned by tools called without a query.
var ErrEmptyQuery = errors.New("mcp: query is required")
