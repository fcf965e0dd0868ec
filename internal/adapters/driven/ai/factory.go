// Package ai builds embedding and LLM adapters from settings.
package ai

import (
	"context"
	"errors"
	"fmt"

	geminiembed "github.com/custodia-labs/upfund/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/upfund/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/upfund/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/upfund/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/upfund/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/upfund/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/upfund/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

// ErrMissingAPIKey is returned when a cloud provider has no API key.
var ErrMissingAPIKey = errors.New("API key is not set")

// InitResult holds the services an engine is built from.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorIndex      driven.VectorIndex
	PromptStore      driven.PromptStore
}

// Close releases everything that was opened.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

type (
	embeddingCtor func(*domain.EmbeddingSettings) (driven.EmbeddingService, error)
	llmCtor       func(*domain.LLMSettings) (driven.LLMService, error)
)

var embeddingProviders = map[domain.AIProvider]embeddingCtor{
	domain.AIProviderGemini: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return geminiembed.NewEmbeddingService(context.Background(), geminiembed.Config{
			APIKey:     s.APIKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Dimensions: embeddingDimensions(s, geminiembed.DefaultDimensions),
			Timeout:    s.Timeout,
		})
	},
	domain.AIProviderOllama: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Timeout:    s.Timeout,
			Dimensions: embeddingDimensions(s, ollamaembed.DefaultDimensions),
		}), nil
	},
	domain.AIProviderOpenAI: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     s.APIKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Timeout:    s.Timeout,
			Dimensions: embeddingDimensions(s, 0),
		})
	},
}

var llmProviders = map[domain.AIProvider]llmCtor{
	domain.AIProviderGemini: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return geminillm.NewLLMService(context.Background(), geminillm.Config{
			APIKey:  s.APIKey,
			BaseURL: s.BaseURL,
			Model:   s.Model,
			Timeout: s.Timeout,
		})
	},
	domain.AIProviderOllama: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: s.BaseURL,
			Model:   s.Model,
			Timeout: s.Timeout,
		}), nil
	},
	domain.AIProviderOpenAI: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  s.APIKey,
			BaseURL: s.BaseURL,
			Model:   s.Model,
			Timeout: s.Timeout,
		})
	},
	domain.AIProviderAnthropic: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  s.APIKey,
			BaseURL: s.BaseURL,
			Model:   s.Model,
			Timeout: s.Timeout,
		})
	},
}

// CreateEmbeddingService builds the embedding adapter named by settings.
// It returns nil, nil when no provider is set.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, errors.New("anthropic does not offer embeddings, use gemini, ollama or openai")
	}
	ctor, ok := embeddingProviders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	if settings.Provider.RequiresAPIKey() && settings.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", settings.Provider, ErrMissingAPIKey)
	}
	svc, err := ctor(settings)
	if err != nil {
		return nil, fmt.Errorf("%s embeddings: %w", settings.Provider, err)
	}
	return svc, nil
}

// CreateLLMService builds the LLM adapter named by settings.
// It returns nil, nil when no provider is set.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}
	ctor, ok := llmProviders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if settings.Provider.RequiresAPIKey() && settings.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", settings.Provider, ErrMissingAPIKey)
	}
	svc, err := ctor(settings)
	if err != nil {
		return nil, fmt.Errorf("%s llm: %w", settings.Provider, err)
	}
	return svc, nil
}

// embeddingDimensions prefers the configured size, then the model's native one.
func embeddingDimensions(settings *domain.EmbeddingSettings, fallback int) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	if dims := domain.EmbeddingDimensions()[settings.Model]; dims > 0 {
		return dims
	}
	return fallback
}
