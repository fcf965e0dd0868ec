package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
	"github.com/custodia-labs/upfund/internal/core/ports/driving"
	"github.com/custodia-labs/upfund/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedTimeout    = "embedding.timeout"
	keyEmbedRPS        = "embedding.requests_per_second"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMTimeout      = "llm.timeout"
	keyVectorBackend   = "vector_store.backend"
	keyVectorHost      = "vector_store.host"
	keyVectorPort      = "vector_store.port"
	keyVectorColl      = "vector_store.collection"
	keyVectorSQLite    = "vector_store.sqlite_path"
	keyVectorDSN       = "vector_store.postgres_dsn"
	keyChunkUnit       = "chunking.unit"
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keyChunkTokenizer  = "chunking.tokenizer_model"
	keyChunkTokDir     = "chunking.tokenizer_dir"
	keyIngestDataDir   = "ingestion.data_dir"
	keyIngestRawDir    = "ingestion.raw_documents_dir"
	keyIngestRecursive = "ingestion.recursive"
	keyIngestWorkers   = "ingestion.embed_workers"
	keySearchLimit     = "search.default_limit"
)

// Environment variables that override stored settings.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvDataDir         = "DATA_DIR"
	EnvChromaHost      = "CHROMA_HOST"
	EnvChromaPort      = "CHROMA_PORT"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvPostgresDSN     = "UPFUND_PG_DSN"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service. aiValidator may be nil,
// in which case connectivity checks are skipped.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		validate:    validator.New(),
	}
}

// Get returns stored settings over defaults, with environment overrides
// applied last.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	applyEnv(settings)
	return settings, nil
}

// stored reads the config store over defaults, without the environment.
func (s *SettingsService) stored() *domain.AppSettings {
	d := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, d.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, d.LLM.Provider)

	dataDir := s.getString(keyIngestDataDir, d.Ingestion.DataDir)

	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             s.getString(keyEmbedModel, defaultModel(domain.DefaultEmbeddingModels(), embedProvider, d.Embedding.Model)),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.getInt(keyEmbedDims, d.Embedding.Dimensions),
			Timeout:           s.getDuration(keyEmbedTimeout, d.Embedding.Timeout),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, defaultModel(domain.DefaultLLMModels(), llmProvider, d.LLM.Model)),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
			Timeout:  s.getDuration(keyLLMTimeout, d.LLM.Timeout),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend:     s.getBackend(d.VectorStore.Backend),
			Host:        s.getString(keyVectorHost, d.VectorStore.Host),
			Port:        s.getInt(keyVectorPort, d.VectorStore.Port),
			Collection:  s.getString(keyVectorColl, d.VectorStore.Collection),
			SQLitePath:  s.getString(keyVectorSQLite, filepath.Join(dataDir, "index.db")),
			PostgresDSN: s.configStore.GetString(keyVectorDSN),
		},
		Chunking: domain.ChunkingSettings{
			Unit:           s.getChunkUnit(d.Chunking.Unit),
			Size:           s.getInt(keyChunkSize, d.Chunking.Size),
			Overlap:        s.getIntAllowZero(keyChunkOverlap, d.Chunking.Overlap),
			TokenizerModel: s.getString(keyChunkTokenizer, d.Chunking.TokenizerModel),
			TokenizerDir:   s.getString(keyChunkTokDir, filepath.Join(dataDir, domain.DefaultTokenizerDir)),
		},
		Ingestion: domain.IngestionSettings{
			DataDir:         dataDir,
			RawDocumentsDir: s.getString(keyIngestRawDir, filepath.Join(dataDir, domain.DefaultRawDocumentsDir)),
			Recursive:       s.getBool(keyIngestRecursive, d.Ingestion.Recursive),
			EmbedWorkers:    s.getInt(keyIngestWorkers, d.Ingestion.EmbedWorkers),
		},
		Search: domain.SearchSettings{
			DefaultLimit: s.getInt(keySearchLimit, d.Search.DefaultLimit),
		},
	}
}

// applyEnv overlays the deployment environment variables.
func applyEnv(settings *domain.AppSettings) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		settings.Ingestion.DataDir = dir
		settings.Ingestion.RawDocumentsDir = filepath.Join(dir, domain.DefaultRawDocumentsDir)
	}
	if host := os.Getenv(EnvChromaHost); host != "" {
		settings.VectorStore.Host = host
	}
	if port := os.Getenv(EnvChromaPort); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			settings.VectorStore.Port = p
		} else {
			logger.Warn("Ignoring %s=%q: not a port number", EnvChromaPort, port)
		}
	}
	if dsn := os.Getenv(EnvPostgresDSN); dsn != "" {
		settings.VectorStore.PostgresDSN = dsn
	}

	keys := map[domain.AIProvider]string{
		domain.AIProviderGemini:    os.Getenv(EnvGeminiAPIKey),
		domain.AIProviderOpenAI:    os.Getenv(EnvOpenAIAPIKey),
		domain.AIProviderAnthropic: os.Getenv(EnvAnthropicAPIKey),
	}
	if key := keys[settings.Embedding.Provider]; key != "" {
		settings.Embedding.APIKey = key
	}
	if key := keys[settings.LLM.Provider]; key != "" {
		settings.LLM.APIKey = key
	}
}

// Save persists application settings. Empty API keys leave stored keys
// untouched.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedTimeout, settings.Embedding.Timeout.String()},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTimeout, settings.LLM.Timeout.String()},
		{keyVectorBackend, settings.VectorStore.Backend.String()},
		{keyVectorHost, settings.VectorStore.Host},
		{keyVectorPort, settings.VectorStore.Port},
		{keyVectorColl, settings.VectorStore.Collection},
		{keyVectorSQLite, settings.VectorStore.SQLitePath},
		{keyVectorDSN, settings.VectorStore.PostgresDSN},
		{keyChunkUnit, string(settings.Chunking.Unit)},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyChunkTokenizer, settings.Chunking.TokenizerModel},
		{keyChunkTokDir, settings.Chunking.TokenizerDir},
		{keyIngestDataDir, settings.Ingestion.DataDir},
		{keyIngestRawDir, settings.Ingestion.RawDocumentsDir},
		{keyIngestRecursive, settings.Ingestion.Recursive},
		{keyIngestWorkers, settings.Ingestion.EmbedWorkers},
		{keySearchLimit, settings.Search.DefaultLimit},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider. An empty model
// selects the provider's default, and the dimensions follow the model.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrInvalidInput, provider)
	}
	if !provider.SupportsEmbedding() {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.stored()

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = providerBaseURL(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	if dims, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok && provider != domain.AIProviderGemini {
		settings.Embedding.Dimensions = dims
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: LLM provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.stored()

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = providerBaseURL(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetVectorBackend configures the vector store backend.
func (s *SettingsService) SetVectorBackend(backend domain.VectorBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: vector backend %q", domain.ErrInvalidInput, backend)
	}

	settings := s.stored()
	settings.VectorStore.Backend = backend
	return s.Save(settings)
}

// Validate checks every settings field and reports all violations at once.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.ValidateSettings(settings)
}

// ValidateSettings checks settings against their struct rules and the
// cross-field rules the tags cannot express.
func (s *SettingsService) ValidateSettings(settings *domain.AppSettings) error {
	var problems []string

	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate settings: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: failed on '%s' rule", fieldPath(fe.Namespace()), fe.Tag()))
		}
	}

	if settings.Embedding.Provider.RequiresAPIKey() && settings.Embedding.APIKey == "" {
		problems = append(problems, fmt.Sprintf("embedding.api_key: required for %s", settings.Embedding.Provider))
	}
	if settings.LLM.Provider.RequiresAPIKey() && settings.LLM.APIKey == "" {
		problems = append(problems, fmt.Sprintf("llm.api_key: required for %s", settings.LLM.Provider))
	}
	if settings.VectorStore.Backend == domain.VectorBackendPgvector && settings.VectorStore.PostgresDSN == "" {
		problems = append(problems, "vector_store.postgres_dsn: required for pgvector")
	}
	if settings.VectorStore.Backend == domain.VectorBackendChroma && settings.VectorStore.Host == "" {
		problems = append(problems, "vector_store.host: required for chroma")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val := s.configStore.GetInt(key); val != 0 {
		return val
	}
	return defaultVal
}

// getIntAllowZero distinguishes a stored zero from a missing key.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if d := s.configStore.GetDuration(key); d > 0 {
		return d
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getChunkUnit(defaultVal domain.ChunkUnit) domain.ChunkUnit {
	unit := domain.ChunkUnit(s.configStore.GetString(keyChunkUnit))
	if !unit.IsValid() {
		return defaultVal
	}
	return unit
}

// defaultModel returns the provider's default model, or fallback.
func defaultModel(models map[domain.AIProvider]string, provider domain.AIProvider, fallback string) string {
	if m, ok := models[provider]; ok {
		return m
	}
	return fallback
}

// providerBaseURL keeps a custom URL for local providers and clears it for
// cloud ones.
func providerBaseURL(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}

// fieldPath turns "AppSettings.Embedding.APIKey" into "Embedding.APIKey".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
