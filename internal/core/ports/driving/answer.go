package driving

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// AnswerService synthesizes grounded answers.
type AnswerService interface {
	// Synthesize asks the generative model to answer query from hits.
	// It always returns a non-empty string; on model failure this is a
	// fixed fallback message.
	Synthesize(ctx context.Context, query string, hits []domain.RetrievedHit) string

	// Ask retrieves k hits for the question and synthesizes an answer.
	Ask(ctx context.Context, question string, k int) domain.Answer
}
