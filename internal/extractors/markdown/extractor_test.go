package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

func extract(t *testing.T, content string) string {
	t.Helper()
	got, err := New().Extract(context.Background(), &domain.RawDocument{Path: "doc.md", Content: []byte(content)})
	require.NoError(t, err)
	return got
}

func TestExtensions(t *testing.T) {
	assert.ElementsMatch(t, []string{".md", ".markdown"}, New().Extensions())
}

func TestExtract_StripsMarkup(t *testing.T) {
	got := extract(t, "# Title\n\nSome **bold** and *italic* text with a [link](https://example.com).\n")

	assert.Contains(t, got, "Title")
	assert.Contains(t, got, "Some bold and italic text with a link.")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "https://example.com")
	assert.NotContains(t, got, "#")
}

func TestExtract_Lists(t *testing.T) {
	got := extract(t, "- first item\n- second item\n\n1. one\n2. two\n")

	assert.Contains(t, got, "first item")
	assert.Contains(t, got, "second item")
	assert.Contains(t, got, "two")
	assert.NotContains(t, got, "- ")
	assert.NotContains(t, got, "1.")
}

func TestExtract_KeepsCode(t *testing.T) {
	got := extract(t, "Run `make test` first.\n\n```go\nfmt.Println(\"hi\")\n```\n")

	assert.Contains(t, got, "Run make test first.")
	assert.Contains(t, got, `fmt.Println("hi")`)
	assert.NotContains(t, got, "```")
}

func TestExtract_DropsImagesAndHTML(t *testing.T) {
	got := extract(t, "Before ![diagram](img.png) after.\n\n<div>raw html</div>\n")

	assert.Contains(t, got, "Before")
	assert.Contains(t, got, "after.")
	assert.NotContains(t, got, "img.png")
	assert.NotContains(t, got, "<div>")
}

func TestExtract_Table(t *testing.T) {
	got := extract(t, "| City | Country |\n|---|---|\n| Paris | France |\n")

	assert.Contains(t, got, "City | Country")
	assert.Contains(t, got, "Paris | France")
}

func TestExtract_Empty(t *testing.T) {
	assert.Equal(t, "", extract(t, ""))
}

func TestExtract_NilDocument(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
