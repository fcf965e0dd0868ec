// Package gemini provides an embedding service adapter using the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "gemini-embedding-001"
	DefaultDimensions = 768
	DefaultTimeout    = 30 * time.Second

	// maxBatchSize is the most contents the API accepts in one request.
	maxBatchSize = 100
)

// Task types for asymmetric retrieval embeddings.
const (
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	taskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint. Mostly useful for tests.
	BaseURL string

	// Model is the embedding model to use (default: gemini-embedding-001).
	Model string

	// Dimensions is the requested output dimensionality (default: 768).
	Dimensions int

	// Timeout bounds client creation and each request (default: 30s).
	Timeout time.Duration
}

// EmbeddingService generates embeddings using Gemini.
type EmbeddingService struct {
	client     *genai.Client
	model      string
	dimensions int
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			Timeout: &cfg.Timeout,
		},
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &EmbeddingService{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// taskType maps an embedding mode to the Gemini retrieval task type.
func taskType(mode domain.EmbeddingMode) string {
	if mode == domain.EmbeddingModeQuery {
		return taskRetrievalQuery
	}
	return taskRetrievalDocument
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string, mode domain.EmbeddingMode) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text}, mode)
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts, splitting requests at
// the API's batch limit.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string, mode domain.EmbeddingMode) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	dim := int32(s.dimensions)
	config := &genai.EmbedContentConfig{
		TaskType:             taskType(mode),
		OutputDimensionality: &dim,
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		result, err := s.client.Models.EmbedContent(ctx, s.model, contents, config)
		if err != nil {
			return nil, wrapError("embed content", err)
		}
		if result == nil || len(result.Embeddings) != len(contents) {
			return nil, fmt.Errorf("gemini: expected %d embeddings, got %d", len(contents), countEmbeddings(result))
		}

		for _, e := range result.Embeddings {
			if len(e.Values) != s.dimensions {
				return nil, fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, s.dimensions, len(e.Values))
			}
			embeddings = append(embeddings, e.Values)
		}
	}

	return embeddings, nil
}

func countEmbeddings(result *genai.EmbedContentResponse) int {
	if result == nil {
		return 0
	}
	return len(result.Embeddings)
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the API key by fetching the model metadata.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.Get(ctx, s.model, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources. The genai client holds no connections of its own.
func (s *EmbeddingService) Close() error {
	return nil
}

// wrapError prefixes err and records the HTTP status of a genai.APIError.
func wrapError(op string, err error) error {
	wrapped := fmt.Errorf("gemini: %s: %w", op, err)

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{Provider: "gemini", StatusCode: apiErr.Code, Err: wrapped}
	}
	return wrapped
}
