package domain

import (
	"path/filepath"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// SupportsEmbedding returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbedding() bool {
	return p == AIProviderGemini || p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies the store behind the vector index.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendChroma is a remote Chroma server.
	VectorBackendChroma VectorBackend = "chroma"

	// VectorBackendMemory keeps entries in process memory.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendSQLite persists entries in a local SQLite file.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendPgvector uses PostgreSQL with the pgvector extension.
	VectorBackendPgvector VectorBackend = "pgvector"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendChroma, VectorBackendMemory, VectorBackendSQLite, VectorBackendPgvector:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendChroma:
		return "Chroma (remote server)"
	case VectorBackendMemory:
		return "In-memory (not persisted)"
	case VectorBackendSQLite:
		return "SQLite (local file)"
	case VectorBackendPgvector:
		return "PostgreSQL + pgvector"
	default:
		return unknownDescription
	}
}

// ChunkUnit selects how chunk length is measured.
type ChunkUnit string

const (
	// ChunkUnitChars measures chunks in characters (runes).
	ChunkUnitChars ChunkUnit = "chars"

	// ChunkUnitTokens measures chunks in tokenizer tokens.
	ChunkUnitTokens ChunkUnit = "tokens"
)

// IsValid returns true if the unit is recognised.
func (u ChunkUnit) IsValid() bool {
	return u == ChunkUnitChars || u == ChunkUnitTokens
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `validate:"required,oneof=gemini ollama openai"`

	// Model is the embedding model name.
	Model string `validate:"required"`

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the API key (for Gemini/OpenAI).
	APIKey string

	// Dimensions is the vector size. Failed texts get a zero vector of this length.
	Dimensions int `validate:"gt=0"`

	// Timeout bounds each embedding request.
	Timeout time.Duration `validate:"gt=0"`

	// RequestsPerSecond throttles embedding requests. Zero disables throttling.
	RequestsPerSecond float64 `validate:"gte=0"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || !e.Provider.SupportsEmbedding() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider `validate:"required,oneof=gemini ollama openai anthropic"`

	// Model is the LLM model name.
	Model string `validate:"required"`

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the API key (for Gemini/OpenAI/Anthropic).
	APIKey string

	// Timeout bounds each generation request.
	Timeout time.Duration `validate:"gt=0"`
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorStoreSettings holds vector index configuration.
type VectorStoreSettings struct {
	// Backend selects the store implementation.
	Backend VectorBackend `validate:"required,oneof=chroma memory sqlite pgvector"`

	// Host and Port address the Chroma server.
	Host string
	Port int `validate:"gte=0,lte=65535"`

	// Collection is the named collection (or table) holding entries.
	Collection string `validate:"required"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string

	// PostgresDSN is the connection string for the pgvector backend.
	PostgresDSN string
}

// ChunkingSettings holds chunker configuration.
type ChunkingSettings struct {
	// Unit is how Size and Overlap are measured.
	Unit ChunkUnit `validate:"required,oneof=chars tokens"`

	// Size is the maximum chunk length.
	Size int `validate:"gt=0"`

	// Overlap is the length shared by consecutive chunks.
	Overlap int `validate:"gte=0,ltfield=Size"`

	// TokenizerModel names the tiktoken model used when Unit is tokens.
	TokenizerModel string

	// TokenizerDir holds BPE files (e.g. cl100k_base.tiktoken) so token mode
	// works offline. Missing files are downloaded on first use.
	TokenizerDir string
}

// IngestionSettings holds ingestion configuration.
type IngestionSettings struct {
	// DataDir is the application data root.
	DataDir string `validate:"required"`

	// RawDocumentsDir is the directory scanned for source files.
	RawDocumentsDir string `validate:"required"`

	// Recursive descends into subdirectories when true.
	Recursive bool

	// EmbedWorkers bounds parallel embedding requests.
	EmbedWorkers int `validate:"gte=1,lte=64"`
}

// SearchSettings holds query configuration.
type SearchSettings struct {
	// DefaultLimit is the number of hits retrieved per question.
	DefaultLimit int `validate:"gte=1"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// VectorStore holds vector index settings.
	VectorStore VectorStoreSettings

	// Chunking holds chunker settings.
	Chunking ChunkingSettings

	// Ingestion holds ingestion settings.
	Ingestion IngestionSettings

	// Search holds query settings.
	Search SearchSettings
}

// Defaults used by DefaultAppSettings.
const (
	DefaultDataDir          = "./data"
	DefaultRawDocumentsDir  = "raw_documents"
	DefaultChromaHost       = "chromadb"
	DefaultChromaPort       = 8000
	DefaultCollection       = "rag_docs"
	DefaultChunkSize        = 1000
	DefaultChunkOverlap     = 200
	DefaultDimensions       = 768
	DefaultEmbeddingTimeout = 30 * time.Second
	DefaultLLMTimeout       = 60 * time.Second
	DefaultTokenizerModel   = "gpt-3.5-turbo"
	DefaultTokenizerDir     = "tokenizers"
)

// DefaultAppSettings returns settings with sensible defaults.
// Gemini serves both embeddings and generation; the API key must
// still be supplied.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderGemini,
			Model:      DefaultEmbeddingModels()[AIProviderGemini],
			Dimensions: DefaultDimensions,
			Timeout:    DefaultEmbeddingTimeout,
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    DefaultLLMModels()[AIProviderGemini],
			Timeout:  DefaultLLMTimeout,
		},
		VectorStore: VectorStoreSettings{
			Backend:    VectorBackendChroma,
			Host:       DefaultChromaHost,
			Port:       DefaultChromaPort,
			Collection: DefaultCollection,
		},
		Chunking: ChunkingSettings{
			Unit:           ChunkUnitChars,
			Size:           DefaultChunkSize,
			Overlap:        DefaultChunkOverlap,
			TokenizerModel: DefaultTokenizerModel,
			TokenizerDir:   filepath.Join(DefaultDataDir, DefaultTokenizerDir),
		},
		Ingestion: IngestionSettings{
			DataDir:         DefaultDataDir,
			RawDocumentsDir: DefaultDataDir + "/" + DefaultRawDocumentsDir,
			EmbedWorkers:    1,
		},
		Search: SearchSettings{
			DefaultLimit: DefaultSearchLimit,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllVectorBackends returns all available vector backends.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendChroma,
		VectorBackendMemory,
		VectorBackendSQLite,
		VectorBackendPgvector,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "gemini-embedding-001",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-2.0-flash",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the native vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Gemini models (output dimensionality is configurable)
		"gemini-embedding-001": 3072,
		"text-embedding-004":   768,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor builds the default pipeline (normaliser, then chunker)
// from chunking settings.
func PipelineConfigFor(c ChunkingSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"normaliser", "chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"unit":            string(c.Unit),
				"chunk_size":      c.Size,
				"overlap":         c.Overlap,
				"tokenizer_model": c.TokenizerModel,
				"tokenizer_dir":   c.TokenizerDir,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfigFor(DefaultAppSettings().Chunking)
}
