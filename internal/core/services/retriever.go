package services

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
	"github.com/custodia-labs/upfund/internal/core/ports/driving"
	"github.com/custodia-labs/upfund/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.SearchService = (*Retriever)(nil)

// Retriever embeds a query and looks up the nearest chunks.
type Retriever struct {
	embedder *Embedder
	index    driven.VectorIndex
	defaultK int
}

// NewRetriever creates a retriever. A non-positive defaultK uses
// domain.DefaultSearchLimit.
func NewRetriever(embedder *Embedder, index driven.VectorIndex, defaultK int) *Retriever {
	if defaultK <= 0 {
		defaultK = domain.DefaultSearchLimit
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		defaultK: defaultK,
	}
}

// Search returns up to k hits, best first. Any failure is logged and yields
// an empty slice.
func (r *Retriever) Search(ctx context.Context, query string, k int) []domain.RetrievedHit {
	hits, err := r.Retrieve(ctx, query, k)
	if err != nil {
		logger.Warn("Retrieval failed: %v", err)
		return []domain.RetrievedHit{}
	}
	return hits
}

// Retrieve is Search with the failure reported. Errors are always a
// *domain.RetrievalUnavailable. A non-positive k uses the default.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedHit, error) {
	if k <= 0 {
		k = r.defaultK
	}
	if strings.TrimSpace(query) == "" {
		return []domain.RetrievedHit{}, nil
	}
	if r.embedder == nil {
		return nil, &domain.RetrievalUnavailable{Op: "embed query", Err: domain.ErrEmbeddingUnavailable}
	}
	if r.index == nil {
		return nil, &domain.RetrievalUnavailable{Op: "query", Err: domain.ErrVectorIndexUnavailable}
	}

	vec, err := r.embedder.EmbedOne(ctx, query, domain.EmbeddingModeQuery)
	if err != nil {
		return nil, &domain.RetrievalUnavailable{Op: "embed query", Err: err}
	}

	scored, err := r.index.Query(ctx, vec, k)
	if err != nil {
		var unavailable *domain.RetrievalUnavailable
		if errors.As(err, &unavailable) {
			return nil, unavailable
		}
		return nil, &domain.RetrievalUnavailable{Op: "query", Err: err}
	}

	hits := make([]domain.RetrievedHit, 0, len(scored))
	for _, s := range scored {
		hits = append(hits, domain.RetrievedHit{
			Title: s.Entry.Metadata.Title,
			Chunk: s.Entry.Text,
			Score: s.Score,
		})
	}
	logger.Debug("Retrieved %d hits for %q", len(hits), query)
	return hits, nil
}
