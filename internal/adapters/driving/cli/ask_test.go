package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	_, engine, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "-k", "3", "how do I install it?"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "Run make install.")
	assert.Contains(t, output, "Sources (2):")
	assert.Contains(t, output, "[2] faq.md (0.500)")
	assert.Equal(t, 3, engine.lastK)
	assert.True(t, engine.closed)
}

func TestAskCmd_WithoutSources(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--sources=false", "question"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Run make install.")
	assert.NotContains(t, buf.String(), "Sources")
}

func TestAskCmd_FallbackAnswerHasNoSources(t *testing.T) {
	_, engine, cleanup := setupTestServices()
	defer cleanup()
	engine.hits = nil
	engine.answer = "I'm sorry, I couldn't find an answer."

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "unknown"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "couldn't find an answer")
	assert.NotContains(t, buf.String(), "Sources")
}

func TestAskCmd_JSONOutput(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--json", "how do I install it?"})

	require.NoError(t, rootCmd.Execute())

	var answer domain.Answer
	require.NoError(t, json.Unmarshal(buf.Bytes(), &answer))
	assert.Equal(t, "how do I install it?", answer.Question)
	assert.Equal(t, "Run make install.", answer.Text)
	assert.Len(t, answer.Sources, 2)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}
