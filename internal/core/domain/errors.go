package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnsupportedExtension indicates no extractor is registered for a file extension.
	ErrUnsupportedExtension = errors.New("unsupported file extension")

	// ErrConfigNotFound indicates a required configuration value is missing.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrDimensionMismatch indicates a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// Recoverable pipeline conditions.

	// ErrExtractionFailed matches every *ExtractionFailure.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmbeddingFailed matches every *EmbeddingFailure.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrRetrievalUnavailable matches every *RetrievalUnavailable.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrGenerationFailed matches every *GenerationFailure.
	ErrGenerationFailed = errors.New("generation failed")
)

// ExtractionFailure reports that one file could not be turned into text.
// Ingestion skips the file and carries on.
type ExtractionFailure struct {
	Path string
	Err  error
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionFailure) Unwrap() error { return e.Err }

// Is matches ErrExtractionFailed.
func (e *ExtractionFailure) Is(target error) bool { return target == ErrExtractionFailed }

// EmbeddingFailure reports that one text in a batch could not be embedded.
// The text's position receives a zero vector.
type EmbeddingFailure struct {
	// Index is the position of the text within its batch.
	Index int

	// ID is the chunk id, when the text belongs to a chunk.
	ID  string
	Err error
}

func (e *EmbeddingFailure) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("embed %s (#%d): %v", e.ID, e.Index, e.Err)
	}
	return fmt.Sprintf("embed text #%d: %v", e.Index, e.Err)
}

func (e *EmbeddingFailure) Unwrap() error { return e.Err }

// Is matches ErrEmbeddingFailed.
func (e *EmbeddingFailure) Is(target error) bool { return target == ErrEmbeddingFailed }

// RetrievalUnavailable reports that the vector index could not be queried.
// The retriever yields no hits.
type RetrievalUnavailable struct {
	// Op names the failed operation, e.g. "query" or "embed query".
	Op  string
	Err error
}

func (e *RetrievalUnavailable) Error() string {
	return fmt.Sprintf("retrieval unavailable (%s): %v", e.Op, e.Err)
}

func (e *RetrievalUnavailable) Unwrap() error { return e.Err }

// Is matches ErrRetrievalUnavailable.
func (e *RetrievalUnavailable) Is(target error) bool { return target == ErrRetrievalUnavailable }

// GenerationFailure reports that the generative model gave no usable answer.
// The synthesizer returns its fallback message.
type GenerationFailure struct {
	Err error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationFailure) Unwrap() error { return e.Err }

// Is matches ErrGenerationFailed.
func (e *GenerationFailure) Is(target error) bool { return target == ErrGenerationFailed }

// ProviderError carries the HTTP status of a failed provider request.
// Error returns the wrapped message unchanged.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string { return e.Err.Error() }

func (e *ProviderError) Unwrap() error { return e.Err }

// Transient reports whether the status is worth retrying: request timeouts,
// rate limits and server errors.
func (e *ProviderError) Transient() bool {
	return e.StatusCode == 408 || e.StatusCode == 429 || e.StatusCode >= 500
}
