package driven

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// PostProcessor transforms extracted document text into chunks.
// PostProcessors are chained in a pipeline (normalisation, then chunking).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// Processors that rewrite text (e.g., normaliser) update doc.Content and
	// pass chunks through unchanged.
	// Processors that create chunks (e.g., chunker) ignore the incoming chunks.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
