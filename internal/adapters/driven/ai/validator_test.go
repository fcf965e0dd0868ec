package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

func TestConfigValidator_NothingToValidate(t *testing.T) {
	v := NewConfigValidator()

	tests := []struct {
		name string
		err  error
	}{
		{"nil embedding", v.ValidateEmbedding(nil)},
		{"unset embedding provider", v.ValidateEmbedding(&domain.EmbeddingSettings{Model: "m"})},
		{"nil llm", v.ValidateLLM(nil)},
		{"unset llm provider", v.ValidateLLM(&domain.LLMSettings{Model: "m"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.err)
		})
	}
}

func TestConfigValidator_UnknownProvider(t *testing.T) {
	err := NewConfigValidator().ValidateEmbedding(&domain.EmbeddingSettings{Provider: "cohere"})

	assert.ErrorContains(t, err, "unsupported embedding provider: cohere")
}
