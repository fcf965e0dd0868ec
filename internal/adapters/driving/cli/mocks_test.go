package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driving"
)

// mockEngine implements driving.Engine for command tests.
type mockEngine struct {
	hits        []domain.RetrievedHit
	retrieveErr error
	answer      string
	report      *domain.IngestReport
	indexErr    error
	health      []domain.ComponentHealth
	count       int

	lastQuery string
	lastK     int
	indexRuns int
	watched   bool
	closed    bool
}

var _ driving.Engine = (*mockEngine)(nil)

func newMockEngine() *mockEngine {
	return &mockEngine{
		hits: []domain.RetrievedHit{
			{Title: "install.md", Chunk: "Run   make install\nfrom the root.", Score: 0.912},
			{Title: "faq.md", Chunk: "Frequently asked questions.", Score: 0.5},
		},
		answer: "Run make install.",
		report: &domain.IngestReport{
			RunID:         "run-1",
			FilesSeen:     3,
			FilesSkipped:  1,
			FilesIndexed:  2,
			ChunksIndexed: 7,
			Duration:      1500 * time.Millisecond,
		},
		health: []domain.ComponentHealth{
			{Name: "embedding", Detail: "ollama/nomic-embed-text"},
			{Name: "llm", Detail: "ollama/llama3.2"},
			{Name: "vector store", Detail: "memory"},
		},
		count: 7,
	}
}

func (m *mockEngine) IndexDocuments(_ context.Context) (*domain.IngestReport, error) {
	m.indexRuns++
	if m.indexErr != nil {
		return nil, m.indexErr
	}
	return m.report, nil
}

func (m *mockEngine) Search(ctx context.Context, query string, k int) []domain.RetrievedHit {
	hits, _ := m.Retrieve(ctx, query, k) //nolint:errcheck // Search never fails
	return hits
}

func (m *mockEngine) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievedHit, error) {
	m.lastQuery, m.lastK = query, k
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	return m.hits, nil
}

func (m *mockEngine) Synthesize(_ context.Context, _ string, _ []domain.RetrievedHit) string {
	return m.answer
}

func (m *mockEngine) Ask(ctx context.Context, question string, k int) domain.Answer {
	hits := m.Search(ctx, question, k)
	return domain.Answer{Question: question, Text: m.answer, Sources: hits}
}

func (m *mockEngine) Watch(_ context.Context, onRun func(*domain.IngestReport, error)) error {
	m.watched = true
	onRun(m.report, nil)
	onRun(nil, errors.New("disk gone"))
	return nil
}

func (m *mockEngine) Count(_ context.Context) (int, error) {
	return m.count, nil
}

func (m *mockEngine) Health(_ context.Context) []domain.ComponentHealth {
	return m.health
}

func (m *mockEngine) Close() error {
	m.closed = true
	return nil
}

// mockSettingsService implements driving.SettingsService for command tests.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
	saved       int
}

var _ driving.SettingsService = (*mockSettingsService)(nil)

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	m.saved++
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetVectorBackend(backend domain.VectorBackend) error {
	m.settings.VectorStore.Backend = backend
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.pingErr
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.pingErr
}

// setupTestServices installs mock services and returns them with a cleanup
// function that restores the previous state and resets command flags.
func setupTestServices() (*mockSettingsService, *mockEngine, func()) {
	oldSettings, oldFactory, oldPrompts, oldBootstrap := settingsService, engineFactory, promptFiles, bootstrap

	settings := newMockSettingsService()
	engine := newMockEngine()
	SetServices(&Services{
		Settings: settings,
		OpenEngine: func(context.Context) (driving.Engine, error) {
			return engine, nil
		},
	})
	bootstrap = nil

	return settings, engine, func() {
		settingsService, engineFactory, promptFiles, bootstrap = oldSettings, oldFactory, oldPrompts, oldBootstrap
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// resetFlags restores flag variables, which cobra does not reset between
// executions.
func resetFlags() {
	searchLimit, searchJSON = 0, false
	askLimit, askJSON, askSources = 0, false, true
	indexShowWarnings, indexShowStats = false, false
	watchSkipInitial = false
	tuiLimit, mcpPort = 0, 0
	verbose, configPath = false, ""
	resetHelpFlags(rootCmd)
}

// resetHelpFlags clears --help on cmd and its children. Cobra keeps the flag
// set after an execution that asked for help.
func resetHelpFlags(cmd *cobra.Command) {
	if f := cmd.Flags().Lookup("help"); f != nil {
		_ = f.Value.Set("false")
		f.Changed = false
	}
	for _, child := range cmd.Commands() {
		resetHelpFlags(child)
	}
}

// mockPromptFiles records WriteDefaults calls.
type mockPromptFiles struct {
	dir     string
	err     error
	written int
}

func (m *mockPromptFiles) WriteDefaults() error {
	m.written++
	return m.err
}

func (m *mockPromptFiles) Dir() string {
	return m.dir
}
