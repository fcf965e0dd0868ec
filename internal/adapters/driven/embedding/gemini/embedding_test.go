package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

func TestNewEmbeddingService(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewEmbeddingService(context.Background(), Config{})
		assert.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		s, err := NewEmbeddingService(context.Background(), Config{APIKey: "test-key"})
		require.NoError(t, err)

		assert.Equal(t, DefaultModel, s.ModelName())
		assert.Equal(t, DefaultDimensions, s.Dimensions())
		assert.NoError(t, s.Close())
	})

	t.Run("custom model and dimensions", func(t *testing.T) {
		s, err := NewEmbeddingService(context.Background(), Config{
			APIKey:     "test-key",
			Model:      "text-embedding-004",
			Dimensions: 256,
		})
		require.NoError(t, err)

		assert.Equal(t, "text-embedding-004", s.ModelName())
		assert.Equal(t, 256, s.Dimensions())
	})
}

func TestTaskType(t *testing.T) {
	assert.Equal(t, "RETRIEVAL_DOCUMENT", taskType(domain.EmbeddingModeDocument))
	assert.Equal(t, "RETRIEVAL_QUERY", taskType(domain.EmbeddingModeQuery))
	assert.Equal(t, "RETRIEVAL_DOCUMENT", taskType(""))
}

func TestEmbedBatch_Empty(t *testing.T) {
	s, err := NewEmbeddingService(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)

	vecs, err := s.EmbedBatch(context.Background(), nil, domain.EmbeddingModeDocument)
	assert.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestWrapError(t *testing.T) {
	err := wrapError("embed content", genai.APIError{Code: 403, Status: "PERMISSION_DENIED", Message: "API key not valid"})

	var providerErr *domain.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, 403, providerErr.StatusCode)
	assert.False(t, providerErr.Transient())
	assert.Contains(t, err.Error(), "gemini: embed content:")

	plain := wrapError("embed content", errors.New("dial tcp: refused"))
	assert.False(t, errors.As(plain, &providerErr))
	assert.EqualError(t, plain, "gemini: embed content: dial tcp: refused")
}
