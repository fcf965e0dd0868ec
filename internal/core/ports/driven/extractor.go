package driven

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// Extractor turns the bytes of one file format into plain text.
type Extractor interface {
	// Extensions returns the lowercase extensions (with dot) this extractor handles.
	Extensions() []string

	// Extract returns the text content of a raw document.
	Extract(ctx context.Context, raw *domain.RawDocument) (string, error)
}

// ExtractorRegistry maps lowercase file extensions to extractors.
type ExtractorRegistry interface {
	// Register adds an extractor for each of its extensions.
	// A later registration for the same extension replaces the earlier one.
	Register(extractor Extractor)

	// Supports reports whether an extractor is registered for path's extension.
	Supports(path string) bool

	// Extract dispatches raw to the extractor registered for its extension.
	// Returns domain.ErrUnsupportedExtension when none is registered.
	Extract(ctx context.Context, raw *domain.RawDocument) (string, error)

	// Extensions returns all registered extensions, sorted.
	Extensions() []string
}
