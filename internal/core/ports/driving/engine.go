package driving

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// Engine is the full retrieval-augmented generation surface behind one
// handle. Callers own the handle and must Close it.
type Engine interface {
	IngestionService
	SearchService
	AnswerService

	// Retrieve is Search with the failure reported as a
	// *domain.RetrievalUnavailable.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedHit, error)

	// Watch re-runs IndexDocuments whenever the source directory changes,
	// passing each outcome to onRun, until ctx is cancelled.
	Watch(ctx context.Context, onRun func(*domain.IngestReport, error)) error

	// Count returns the number of indexed entries.
	Count(ctx context.Context) (int, error)

	// Health checks every external dependency.
	Health(ctx context.Context) []domain.ComponentHealth

	// Close releases provider clients and the index.
	Close() error
}
