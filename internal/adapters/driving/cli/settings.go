package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider, the LLM, the vector store and
the chunking options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the provider that embeds chunks and queries.

Changing the embedding model changes the vector space: re-run 'upfund index'
afterwards.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that writes answers from retrieved passages.`,
	RunE:  runSettingsLLM,
}

var settingsBackendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Configure vector store backend",
	Long: `Select where embedded chunks are stored.

Available backends:
  chroma   - Remote Chroma server
  memory   - In-process, lost on exit
  sqlite   - Local SQLite file
  pgvector - PostgreSQL with the pgvector extension`,
	RunE: runSettingsBackend,
}

var settingsPromptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Write the answer prompt template for editing",
	Long: `Writes the built-in answer template to the prompt directory, unless a
file is already there, and prints its location.

The template must contain {{sources}} (the retrieved excerpts) and then
{{question}}, each exactly once. Everything else is copied as written. An
edited file that breaks this rule is ignored.`,
	Args: cobra.NoArgs,
	RunE: runSettingsPrompt,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsPromptCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsBackendCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	printAPIKey(cmd, settings.Embedding.Provider, settings.Embedding.APIKey)
	printStatus(cmd, settings.Embedding.IsConfigured())
	cmd.Println()

	// LLM settings
	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	printAPIKey(cmd, settings.LLM.Provider, settings.LLM.APIKey)
	printStatus(cmd, settings.LLM.IsConfigured())
	cmd.Println()

	// Vector store settings
	vs := settings.VectorStore
	cmd.Println("[Vector Store]")
	cmd.Printf("  Backend: %s\n", vs.Backend.Description())
	cmd.Printf("  Collection: %s\n", vs.Collection)
	switch vs.Backend {
	case domain.VectorBackendChroma:
		cmd.Printf("  Address: %s:%d\n", vs.Host, vs.Port)
	case domain.VectorBackendSQLite:
		cmd.Printf("  Path: %s\n", vs.SQLitePath)
	case domain.VectorBackendPgvector:
		cmd.Printf("  DSN: %s\n", maskDSN(vs.PostgresDSN))
	case domain.VectorBackendMemory:
	}
	cmd.Println()

	// Chunking and ingestion
	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d %s\n", settings.Chunking.Size, settings.Chunking.Unit)
	cmd.Printf("  Overlap: %d %s\n", settings.Chunking.Overlap, settings.Chunking.Unit)
	cmd.Println()

	cmd.Println("[Ingestion]")
	cmd.Printf("  Raw documents: %s\n", settings.Ingestion.RawDocumentsDir)
	cmd.Printf("  Recursive: %t\n", settings.Ingestion.Recursive)
	cmd.Printf("  Embed workers: %d\n", settings.Ingestion.EmbedWorkers)
	cmd.Printf("  Passages per question: %d\n", settings.Search.DefaultLimit)
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'upfund settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printAPIKey(cmd *cobra.Command, provider domain.AIProvider, key string) {
	if !provider.RequiresAPIKey() {
		return
	}
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func printStatus(cmd *cobra.Command, configured bool) {
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsPrompt(cmd *cobra.Command, _ []string) error {
	if promptFiles == nil {
		return errors.New("prompt store not configured")
	}
	if err := promptFiles.WriteDefaults(); err != nil {
		return fmt.Errorf("writing prompt templates: %w", err)
	}
	cmd.Printf("Prompt templates are in %s\n", promptFiles.Dir())
	cmd.Println("Edit answer.txt to change how answers are written.")
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("upfund Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Embedding Provider")
	cmd.Println("--------------------------")
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: LLM Provider")
	cmd.Println("--------------------")
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Vector Store")
	cmd.Println("--------------------")
	if err := configureVectorBackend(cmd, reader); err != nil {
		return err
	}

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsBackend(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureVectorBackend(cmd, bufio.NewReader(cmd.InOrStdin()))
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func configureVectorBackend(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Vector Store")
	backends := domain.AllVectorBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(backends), 1)
	selected := backends[idx-1]

	if err := settingsService.SetVectorBackend(selected); err != nil {
		return fmt.Errorf("failed to configure vector store: %w", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	vs := &settings.VectorStore
	changed := false

	switch selected {
	case domain.VectorBackendChroma:
		changed = promptString(cmd, reader, "Chroma host", &vs.Host)
		port := strconv.Itoa(vs.Port)
		if promptString(cmd, reader, "Chroma port", &port) {
			p, err := strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("invalid port %q", port)
			}
			vs.Port = p
			changed = true
		}
	case domain.VectorBackendSQLite:
		changed = promptString(cmd, reader, "Database file", &vs.SQLitePath)
	case domain.VectorBackendPgvector:
		changed = promptString(cmd, reader, "PostgreSQL DSN", &vs.PostgresDSN)
	case domain.VectorBackendMemory:
	}

	if changed {
		if err := settingsService.Save(settings); err != nil {
			return fmt.Errorf("failed to save vector store settings: %w", err)
		}
	}

	cmd.Printf("Vector store configured: %s\n\n", selected.Description())
	return nil
}

// promptString asks for a value, keeping the current one on empty input.
// It reports whether the value changed.
func promptString(cmd *cobra.Command, reader *bufio.Reader, label string, value *string) bool {
	cmd.Printf("%s [%s]: ", label, *value)
	input := readLine(reader)
	if input == "" || input == *value {
		return false
	}
	*value = input
	return true
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when input is the terminal, and falls
// back to a plain line otherwise.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if in, ok := cmd.InOrStdin().(*os.File); ok && in == os.Stdin && term.IsTerminal(int(in.Fd())) {
		password, err := term.ReadPassword(int(in.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// maskDSN hides the password of a postgres URL.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		return dsn[:scheme+3] + userinfo[:colon] + ":****" + dsn[at:]
	}
	return dsn
}
