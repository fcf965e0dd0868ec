package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/upfund/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/upfund/internal/core/domain"
)

func sampleHits() []domain.RetrievedHit {
	return []domain.RetrievedHit{
		{Title: "one.md", Chunk: "first chunk", Score: 0.95},
		{Title: "two.md", Chunk: "second\nchunk", Score: 0.85},
		{Title: "three.md", Chunk: "third chunk", Score: 0.75},
	}
}

func TestNewHitList(t *testing.T) {
	l := NewHitList(styles.DefaultStyles())

	require.NotNil(t, l)
	assert.Equal(t, 0, l.Selected())
	assert.True(t, l.IsEmpty())
	assert.Nil(t, l.Init())
}

func TestNewHitList_NilStyles(t *testing.T) {
	l := NewHitList(nil)

	require.NotNil(t, l)
	assert.NotNil(t, l.styles)
}

func TestHitList_SetHits(t *testing.T) {
	l := NewHitList(nil)
	l.SetSelected(0)

	l.SetHits(sampleHits())

	assert.Equal(t, 3, l.Count())
	assert.False(t, l.IsEmpty())
	assert.Equal(t, sampleHits(), l.Hits())
}

func TestHitList_SetHitsResetsSelection(t *testing.T) {
	l := NewHitList(nil)
	l.SetHits(sampleHits())
	l.SetSelected(2)

	l.SetHits(sampleHits()[:1])

	assert.Equal(t, 0, l.Selected())
}

func TestHitList_Navigation(t *testing.T) {
	l := NewHitList(nil)
	l.SetHits(sampleHits())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l.MoveDown()
	l.MoveDown()
	l.MoveDown()
	assert.Equal(t, 2, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.Selected())
}

func TestHitList_SetSelectedOutOfRange(t *testing.T) {
	l := NewHitList(nil)
	l.SetHits(sampleHits())

	l.SetSelected(7)
	assert.Equal(t, 0, l.Selected())

	l.SetSelected(-1)
	assert.Equal(t, 0, l.Selected())
}

func TestHitList_SelectedHit(t *testing.T) {
	l := NewHitList(nil)
	assert.Nil(t, l.SelectedHit())

	l.SetHits(sampleHits())
	l.SetSelected(1)

	hit := l.SelectedHit()
	require.NotNil(t, hit)
	assert.Equal(t, "two.md", hit.Title)
}

func TestHitList_View(t *testing.T) {
	l := NewHitList(nil)
	assert.Contains(t, l.View(), "No results")

	l.SetHits(sampleHits())
	l.SetDimensions(80, 20)
	view := l.View()

	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "one.md")
	assert.Contains(t, view, "0.950")
	assert.Contains(t, view, "second chunk")
}

func TestHitList_ViewScrollsToSelection(t *testing.T) {
	l := NewHitList(nil)
	l.SetHits(sampleHits())
	l.SetDimensions(80, 4)
	l.SetSelected(2)

	view := l.View()

	assert.Contains(t, view, "three.md")
	assert.NotContains(t, view, "one.md")
}

func TestHitList_Dimensions(t *testing.T) {
	l := NewHitList(nil)

	l.SetDimensions(120, 40)

	assert.Equal(t, 120, l.Width())
	assert.Equal(t, 40, l.Height())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, 10, len([]rune(Truncate(strings.Repeat("é", 30), 10))))
}
