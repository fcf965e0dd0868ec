package driven

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// VectorIndex stores index entries and answers similarity queries.
// Implementations must be safe for concurrent use; concurrent upserts of
// the same id resolve last-writer-wins.
type VectorIndex interface {
	// Upsert inserts or replaces entries by id.
	// An empty slice is a no-op and must not reach the backing store.
	Upsert(ctx context.Context, entries []domain.IndexEntry) error

	// Query returns up to k entries nearest to vector, best first.
	// An empty index yields an empty slice. An unreachable store yields
	// a *domain.RetrievalUnavailable error.
	Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredEntry, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Ping checks the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
