package domain

import (
	"path/filepath"
	"strings"
)

// RawDocument represents opaque bytes read from a source file.
// It is the source's output before text extraction.
type RawDocument struct {
	// Path is the location of the file on disk.
	Path string

	// Title is the stable document name (the file name).
	Title string

	// Content is the raw bytes.
	Content []byte
}

// Extension returns the lowercase file extension including the dot.
func (r RawDocument) Extension() string {
	return ExtensionOf(r.Path)
}

// ExtensionOf returns the lowercase extension of path including the dot.
func ExtensionOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// ChangeType represents the type of file change seen by a watcher.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed file.
	ChangeDeleted
)

// String returns the string representation.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileChange is emitted when a file under the watched directory changes.
type FileChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Path is the affected file.
	Path string
}
