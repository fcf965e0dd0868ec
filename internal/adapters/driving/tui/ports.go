// Package tui provides an interactive terminal user interface for upfund.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/ports/driving"
)

// IndexStats reports the size of the vector index.
type IndexStats interface {
	Count(ctx context.Context) (int, error)
}

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search retrieves raw chunks for a query.
	Search driving.SearchService

	// Answer synthesizes grounded answers.
	Answer driving.AnswerService

	// Stats is optional; when set the menu shows the index size.
	Stats IndexStats

	// Limit is the number of chunks retrieved per query. Zero uses the
	// domain default.
	Limit int
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(search driving.SearchService, answer driving.AnswerService) *Ports {
	return &Ports{
		Search: search,
		Answer: answer,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Limit < 0 {
		return ErrInvalidPorts
	}
	return nil
}
