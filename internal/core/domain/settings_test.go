package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider(t *testing.T) {
	tests := []struct {
		provider       AIProvider
		valid          bool
		requiresKey    bool
		local          bool
		supportsEmbeds bool
	}{
		{AIProviderGemini, true, true, false, true},
		{AIProviderOllama, true, false, true, true},
		{AIProviderOpenAI, true, true, false, true},
		{AIProviderAnthropic, true, true, false, false},
		{AIProvider("cohere"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.provider.IsValid())
			assert.Equal(t, tt.requiresKey, tt.provider.RequiresAPIKey())
			assert.Equal(t, tt.local, tt.provider.IsLocal())
			assert.Equal(t, tt.supportsEmbeds, tt.provider.SupportsEmbedding())
			assert.NotEmpty(t, tt.provider.Description())
		})
	}
}

func TestVectorBackend_IsValid(t *testing.T) {
	for _, b := range AllVectorBackends() {
		assert.True(t, b.IsValid(), b)
		assert.NotEqual(t, unknownDescription, b.Description())
	}
	assert.False(t, VectorBackend("faiss").IsValid())
	assert.Equal(t, unknownDescription, VectorBackend("faiss").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	t.Run("gemini needs key", func(t *testing.T) {
		s := EmbeddingSettings{Provider: AIProviderGemini}
		assert.False(t, s.IsConfigured())
		s.APIKey = "key"
		assert.True(t, s.IsConfigured())
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		s := EmbeddingSettings{Provider: AIProviderOllama}
		assert.True(t, s.IsConfigured())
	})

	t.Run("anthropic has no embeddings", func(t *testing.T) {
		s := EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "key"}
		assert.False(t, s.IsConfigured())
	})
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.False(t, LLMSettings{}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderGemini, s.Embedding.Provider)
	assert.Equal(t, 768, s.Embedding.Dimensions)
	assert.Equal(t, AIProviderGemini, s.LLM.Provider)
	assert.Equal(t, VectorBackendChroma, s.VectorStore.Backend)
	assert.Equal(t, "chromadb", s.VectorStore.Host)
	assert.Equal(t, 8000, s.VectorStore.Port)
	assert.Equal(t, "rag_docs", s.VectorStore.Collection)
	assert.Equal(t, ChunkUnitChars, s.Chunking.Unit)
	assert.Less(t, s.Chunking.Overlap, s.Chunking.Size)
	assert.Equal(t, "./data/raw_documents", s.Ingestion.RawDocumentsDir)
	assert.Equal(t, 4, s.Search.DefaultLimit)
}

func TestPipelineConfigFor(t *testing.T) {
	cfg := PipelineConfigFor(ChunkingSettings{
		Unit:           ChunkUnitTokens,
		Size:           256,
		Overlap:        32,
		TokenizerModel: "gpt-4",
		TokenizerDir:   "/opt/bpe",
	})

	assert.Equal(t, []string{"normaliser", "chunker"}, cfg.Processors)
	chunker := cfg.GetProcessorConfig("chunker")
	assert.Equal(t, "tokens", chunker["unit"])
	assert.Equal(t, 256, chunker["chunk_size"])
	assert.Equal(t, 32, chunker["overlap"])
	assert.Equal(t, "/opt/bpe", chunker["tokenizer_dir"])
	assert.Nil(t, cfg.GetProcessorConfig("normaliser"))

	var empty PipelineConfig
	assert.Nil(t, empty.GetProcessorConfig("chunker"))
}
