// Package cli provides the upfund command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/upfund/internal/core/ports/driving"
	"github.com/custodia-labs/upfund/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// EngineFactory builds an engine from the current settings. The caller
// closes the returned engine.
type EngineFactory func(ctx context.Context) (driving.Engine, error)

// PromptFiles exposes the editable prompt templates on disk.
type PromptFiles interface {
	WriteDefaults() error
	Dir() string
}

// Services holds what the commands run against. Prompts is optional.
type Services struct {
	Settings   driving.SettingsService
	OpenEngine EngineFactory
	Prompts    PromptFiles
}

// Bootstrap builds the services once flags are parsed. configPath is the
// value of --config, empty for the default location.
type Bootstrap func(configPath string) (*Services, error)

var (
	settingsService driving.SettingsService
	engineFactory   EngineFactory
	promptFiles     PromptFiles
	bootstrap       Bootstrap
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "upfund",
	Short: "Ask questions about your documents",
	Long: `upfund indexes a directory of documents into a vector store and answers
questions grounded on the passages it retrieves.

Typical use:
  upfund settings embedding   # choose an embedding provider
  upfund index                # build the index from the raw documents dir
  upfund ask "how do I ..."   # answer a question from the index`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.upfund/config.toml)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects services directly, bypassing Bootstrap.
func SetServices(s *Services) {
	if s == nil {
		settingsService, engineFactory, promptFiles = nil, nil, nil
		return
	}
	settingsService = s.Settings
	engineFactory = s.OpenEngine
	promptFiles = s.Prompts
}

// SetBootstrap registers the function that builds services after flag
// parsing. It is only called when no services have been injected.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if bootstrap == nil || settingsService != nil {
		return nil
	}
	s, err := bootstrap(configPath)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(s)
	return nil
}

// openEngine builds an engine from the current settings.
func openEngine(ctx context.Context) (driving.Engine, error) {
	if engineFactory == nil {
		return nil, errors.New("engine not configured")
	}
	engine, err := engineFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening engine: %w", err)
	}
	return engine, nil
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
