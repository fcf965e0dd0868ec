package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/upfund/internal/core/ports/driving"
	"github.com/custodia-labs/upfund/internal/logger"
)

func TestRootCmd_Commands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"index", "watch", "search", "ask", "settings", "doctor", "tui", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	v := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, v)
	assert.Equal(t, "v", v.Shorthand)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestRootCmd_VerboseEnablesDebugLogging(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	defer logger.SetVerbose(false)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"--verbose", "version"})

	require.NoError(t, rootCmd.Execute())
	assert.True(t, logger.IsVerbose())
}

func TestBootstrap_ReceivesConfigPath(t *testing.T) {
	_, engine, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	var gotPath string
	SetBootstrap(func(path string) (*Services, error) {
		gotPath = path
		return &Services{
			Settings: newMockSettingsService(),
			OpenEngine: func(context.Context) (driving.Engine, error) {
				return engine, nil
			},
		}, nil
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"--config", "/tmp/upfund.toml", "search", "install"})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "/tmp/upfund.toml", gotPath)
	assert.NotNil(t, settingsService)
	assert.Equal(t, "install", engine.lastQuery)
}

func TestBootstrap_Error(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)
	SetBootstrap(func(string) (*Services, error) {
		return nil, errors.New("config unreadable")
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"doctor"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialising: config unreadable")
}

func TestSetVersion(t *testing.T) {
	old := version
	defer func() { version = old }()

	SetVersion("1.2.3")

	assert.Equal(t, "1.2.3", version)
}

func TestOpenEngine_FactoryError(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	engineFactory = func(context.Context) (driving.Engine, error) {
		return nil, errors.New("dimension mismatch")
	}

	_, err := openEngine(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening engine: dimension mismatch")
}
