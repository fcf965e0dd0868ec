package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_CopiesSeed(t *testing.T) {
	seed := map[string]any{"llm.provider": "ollama"}
	store := NewConfigStore(seed)

	seed["llm.provider"] = "changed"

	assert.Equal(t, "ollama", store.GetString("llm.provider"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"s":        "text",
		"i":        7,
		"i64":      int64(8),
		"f":        1.5,
		"b":        true,
		"d":        "45s",
		"dur":      2 * time.Minute,
		"list":     []any{"a", 1, "b"},
		"strslice": []string{"x"},
	})

	assert.Equal(t, "text", store.GetString("s"))
	assert.Equal(t, 7, store.GetInt("i"))
	assert.Equal(t, 8, store.GetInt("i64"))
	assert.Equal(t, 1, store.GetInt("f"))
	assert.InDelta(t, 1.5, store.GetFloat("f"), 1e-9)
	assert.InDelta(t, 7.0, store.GetFloat("i"), 1e-9)
	assert.True(t, store.GetBool("b"))
	assert.Equal(t, 45*time.Second, store.GetDuration("d"))
	assert.Equal(t, 2*time.Minute, store.GetDuration("dur"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("list"))
	assert.Equal(t, []string{"x"}, store.GetStringSlice("strslice"))

	assert.Empty(t, store.GetString("i"))
	assert.Zero(t, store.GetDuration("s"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_SetDeleteKeys(t *testing.T) {
	store := NewConfigStore(nil)

	require.NoError(t, store.Set("b.key", 1))
	require.NoError(t, store.Set("a.key", 2))
	assert.Equal(t, []string{"a.key", "b.key"}, store.Keys())

	require.NoError(t, store.Delete("a.key"))
	_, ok := store.Get("a.key")
	assert.False(t, ok)

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
}
