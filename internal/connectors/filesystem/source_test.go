package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSource_List(t *testing.T) {
	t.Run("lists regular files sorted", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "b.txt"), "b")
		writeFile(t, filepath.Join(dir, "a.md"), "a")
		writeFile(t, filepath.Join(dir, "image.png"), "png")

		paths, err := New(dir).List(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{
			filepath.Join(dir, "a.md"),
			filepath.Join(dir, "b.txt"),
			filepath.Join(dir, "image.png"),
		}, paths)
	})

	t.Run("skips hidden files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "visible.txt"), "v")
		writeFile(t, filepath.Join(dir, ".hidden.txt"), "h")

		paths, err := New(dir).List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "visible.txt")}, paths)
	})

	t.Run("non-recursive ignores subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "top.txt"), "t")
		writeFile(t, filepath.Join(dir, "nested", "deep.txt"), "d")

		paths, err := New(dir).List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "top.txt")}, paths)
	})

	t.Run("recursive descends but skips hidden directories", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "top.txt"), "t")
		writeFile(t, filepath.Join(dir, "nested", "deep.txt"), "d")
		writeFile(t, filepath.Join(dir, ".git", "config"), "c")

		paths, err := New(dir, WithRecursive(true)).List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "nested", "deep.txt"),
			filepath.Join(dir, "top.txt"),
		}, paths)
	})

	t.Run("empty directory", func(t *testing.T) {
		paths, err := New(t.TempDir()).List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "missing")).List(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("root is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		writeFile(t, path, "x")

		_, err := New(path).List(context.Background())
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "a")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(dir).List(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSource_Read(t *testing.T) {
	t.Run("title is the file name", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "doc1.txt")
		writeFile(t, path, "Paris is the capital of France.")

		raw, err := New(dir).Read(context.Background(), path)
		require.NoError(t, err)

		assert.Equal(t, "doc1.txt", raw.Title)
		assert.Equal(t, path, raw.Path)
		assert.Equal(t, []byte("Paris is the capital of France."), raw.Content)
		assert.Equal(t, ".txt", raw.Extension())
	})

	t.Run("recursive title is relative path", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "a", "doc.md")
		writeFile(t, path, "x")

		raw, err := New(dir, WithRecursive(true)).Read(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "a/doc.md", raw.Title)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := New(t.TempDir()).Read(context.Background(), "/does/not/exist.txt")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestSource_Close(t *testing.T) {
	s := New(t.TempDir())

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"/path/.hidden/file.txt", true},
		{"dir/.git/config", true},
		{"file.txt", false},
		{"/path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"../file.txt", false},
		{"file.hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}
