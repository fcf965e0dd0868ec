// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations may include:
//   - Gemini (gemini-embedding-001, with retrieval task types)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// The mode lets asymmetric models embed passages and queries differently.
	Embed(ctx context.Context, text string, mode domain.EmbeddingMode) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one request where
	// the provider supports it. Any error fails the whole batch; per-text
	// isolation is the caller's concern.
	EmbedBatch(ctx context.Context, texts []string, mode domain.EmbeddingMode) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This is determined by the model and must match VectorIndex configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
