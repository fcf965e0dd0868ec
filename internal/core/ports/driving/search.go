package driving

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// SearchService retrieves grounding passages for a question.
type SearchService interface {
	// Search embeds the query and returns up to k hits, best first.
	// Any failure yields an empty slice rather than an error.
	Search(ctx context.Context, query string, k int) []domain.RetrievedHit
}
