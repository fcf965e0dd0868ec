package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "postgres://rag:****@db:5432/rag", maskDSN("postgres://rag:secret@db:5432/rag"))
	assert.Equal(t, "postgres://rag@db/rag", maskDSN("postgres://rag@db/rag"))
	assert.Equal(t, "host=db user=rag", maskDSN("host=db user=rag"))
	assert.Equal(t, "", maskDSN(""))
}

func runSettings(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSettingsShow(t *testing.T) {
	settings, _, cleanup := setupTestServices()
	defer cleanup()
	settings.settings.Embedding.APIKey = "AIzaSyExampleKey1234"

	output, err := runSettings(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, output, "[Embedding]")
	assert.Contains(t, output, "Provider: Google Gemini (cloud)")
	assert.Contains(t, output, "API Key: AIza...1234")
	assert.NotContains(t, output, "ExampleKey")
	assert.Contains(t, output, "[LLM]")
	assert.Contains(t, output, "API Key: (not set)")
	assert.Contains(t, output, "Status: not configured")
	assert.Contains(t, output, "Backend: Chroma (remote server)")
	assert.Contains(t, output, "Address: chromadb:8000")
	assert.Contains(t, output, "Size: 1000 chars")
	assert.Contains(t, output, "Configuration is valid.")
}

func TestSettingsShow_InvalidConfig(t *testing.T) {
	settings, _, cleanup := setupTestServices()
	defer cleanup()
	settings.validateErr = errors.New("LLM.APIKey is required")

	output, err := runSettings(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, output, "Warning: LLM.APIKey is required")
	assert.Contains(t, output, "upfund settings wizard")
}

func TestSettingsShow_ErrorsWithoutService(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	_, err := runSettings(t, "", "settings", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSettingsEmbedding_LocalProvider(t *testing.T) {
	settings, _, cleanup := setupTestServices()
	defer cleanup()

	// Ollama is the second embedding provider; accept the default model.
	output, err := runSettings(t, "2\n\n", "settings", "embedding")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.settings.Embedding.Model)
	assert.Empty(t, settings.settings.Embedding.APIKey)
	assert.Contains(t, output, "Validating configuration... OK")
	assert.Contains(t, output, "Embedding provider configured: Ollama (local) (nomic-embed-text)")
}

func TestSettingsEmbedding_CloudProviderReadsKey(t *testing.T) {
	settings, _, cleanup := setupTestServices()
	defer cleanup()

	_, err := runSettings(t, "3\ntext-embedding-3-large\nsk-test-0123456789\n", "settings", "embedding")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.settings.Embedding.Model)
	assert.Equal(t, "sk-test-0123456789", settings.settings.Embedding.APIKey)
}

func TestSettingsEmbedding_MissingKey(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	_, err := runSettings(t, "1\n\n\n", "settings", "embedding")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSettingsLLM_ValidationFails(t *testing.T) {
	settings, _, cleanup := setupTestServices()
	defer cleanup()
	settings.pingErr = errors.New("connection refused")

	output, err := runSettings(t, "2\n\n", "settings", "llm")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM configuration validation failed")
	assert.Contains(t, output, "FAILED: connection refused")
	assert.Equal(t, domain.AIProviderOllama, settings.settings.LLM.Provider)
	assert.Equal(t, "llama3.2", settings.settings.LLM.Model)
}

func TestSettingsBackend_SQLite(t *testing.T) {
	settings, _, cleanup := setupTestServices()
	defer cleanup()

	output, err := runSettings(t, "3\n/tmp/rag.db\n", "settings", "backend")

	require.NoError(t, err)
	assert.Equal(t, domain.VectorBackendSQLite, settings.settings.VectorStore.Backend)
	assert.Equal(t, "/tmp/rag.db", settings.settings.VectorStore.SQLitePath)
	assert.Equal(t, 1, settings.saved)
	assert.Contains(t, output, "Vector store configured: SQLite (local file)")
}

func TestSettingsBackend_ChromaKeepsDefaults(t *testing.T) {
	settings, _, cleanup := setupTestServices()
	defer cleanup()

	_, err := runSettings(t, "1\n\n\n", "settings", "backend")

	require.NoError(t, err)
	assert.Equal(t, domain.VectorBackendChroma, settings.settings.VectorStore.Backend)
	assert.Equal(t, "chromadb", settings.settings.VectorStore.Host)
	assert.Equal(t, 8000, settings.settings.VectorStore.Port)
	assert.Equal(t, 0, settings.saved)
}

func TestSettingsBackend_InvalidPort(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	_, err := runSettings(t, "1\nlocalhost\neighty\n", "settings", "backend")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestSettingsWizard(t *testing.T) {
	settings, _, cleanup := setupTestServices()
	defer cleanup()

	input := strings.Join([]string{
		"2", "", // embedding: ollama, default model
		"2", "", // llm: ollama, default model
		"2", // backend: memory
	}, "\n") + "\n"

	output, err := runSettings(t, input, "settings", "wizard")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.settings.Embedding.Provider)
	assert.Equal(t, domain.AIProviderOllama, settings.settings.LLM.Provider)
	assert.Equal(t, domain.VectorBackendMemory, settings.settings.VectorStore.Backend)
	assert.Contains(t, output, "All settings are valid and saved.")
}

func TestSettingsPrompt(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	prompts := &mockPromptFiles{dir: "/home/me/.upfund/prompts"}
	promptFiles = prompts

	output, err := runSettings(t, "", "settings", "prompt")

	require.NoError(t, err)
	assert.Equal(t, 1, prompts.written)
	assert.Contains(t, output, "Prompt templates are in /home/me/.upfund/prompts")
	assert.Contains(t, output, "answer.txt")
}

func TestSettingsPrompt_Errors(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	_, err := runSettings(t, "", "settings", "prompt")
	assert.ErrorContains(t, err, "prompt store not configured")

	promptFiles = &mockPromptFiles{err: errors.New("read-only file system")}
	_, err = runSettings(t, "", "settings", "prompt")
	assert.ErrorContains(t, err, "writing prompt templates: read-only file system")
}
