// Package memory provides an in-process vector index. Entries are lost when
// the process exits; it backs tests and one-shot runs.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/upfund/internal/adapters/driven/vector/similarity"
	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory implementation of driven.VectorIndex.
type Index struct {
	mu         sync.RWMutex
	entries    map[string]domain.IndexEntry
	dimensions int
}

// NewIndex creates an empty index. A dimensions of zero adopts the length
// of the first upserted vector.
func NewIndex(dimensions int) *Index {
	return &Index{
		entries:    make(map[string]domain.IndexEntry),
		dimensions: dimensions,
	}
}

// Upsert inserts or replaces entries by id. The whole batch is rejected if
// any vector has the wrong dimension.
func (x *Index) Upsert(_ context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	dims, err := similarity.CheckDimensions(entries, x.dimensions)
	if err != nil {
		return err
	}
	x.dimensions = dims

	for _, e := range entries {
		e.Embedding = append([]float32(nil), e.Embedding...)
		x.entries[e.ID] = e
	}
	return nil
}

// Query returns up to k entries ranked by cosine similarity.
func (x *Index) Query(_ context.Context, vector []float32, k int) ([]domain.ScoredEntry, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return []domain.ScoredEntry{}, nil
	}
	if len(vector) != x.dimensions {
		return nil, &similarity.DimensionError{ID: "query", Want: x.dimensions, Got: len(vector)}
	}

	all := make([]domain.IndexEntry, 0, len(x.entries))
	for _, e := range x.entries {
		all = append(all, e)
	}
	return similarity.TopK(all, vector, k), nil
}

// Count returns the number of stored entries.
func (x *Index) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries), nil
}

// Get returns the entry stored under id.
func (x *Index) Get(id string) (domain.IndexEntry, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.entries[id]
	return e, ok
}

// Ping always succeeds.
func (x *Index) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}
