package mcp

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/ports/driving"
)

// IndexStats reports the size of the vector index.
type IndexStats interface {
	Count(ctx context.Context) (int, error)
}

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides retrieval.
	Search driving.SearchService

	// Answer provides grounded answers. The ask tool is only registered
	// when it is set.
	Answer driving.AnswerService

	// Stats backs the index resource. Optional.
	Stats IndexStats
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
