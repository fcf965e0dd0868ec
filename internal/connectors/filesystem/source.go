// Package filesystem reads raw documents from a local directory and
// watches it for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

// Ensure Source implements the interfaces.
var (
	_ driven.DocumentSource  = (*Source)(nil)
	_ driven.DocumentWatcher = (*Source)(nil)
)

// ErrClosed is returned when Watch is called on a closed source.
var ErrClosed = errors.New("filesystem source closed")

// DefaultDebounce is how long the watcher waits for a path to go quiet
// before emitting its change.
const DefaultDebounce = 100 * time.Millisecond

// Source lists and reads files under a root directory.
type Source struct {
	rootPath  string
	recursive bool
	debounce  time.Duration

	mu     sync.Mutex
	closed bool
}

// Option configures a Source.
type Option func(*Source)

// WithRecursive makes List descend into subdirectories.
func WithRecursive(recursive bool) Option {
	return func(s *Source) {
		s.recursive = recursive
	}
}

// WithDebounce sets the watcher quiet period. Zero emits every event.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// New creates a source rooted at rootPath.
func New(rootPath string, opts ...Option) *Source {
	s := &Source{
		rootPath: rootPath,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory this source reads from.
func (s *Source) Root() string {
	return s.rootPath
}

// List returns the sorted paths of all regular, non-hidden files under the
// root. Subdirectories are only visited when the source is recursive.
func (s *Source) List(ctx context.Context) ([]string, error) {
	if err := s.checkRoot(); err != nil {
		return nil, err
	}

	var paths []string
	if s.recursive {
		err := filepath.WalkDir(s.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if path == s.rootPath {
				return nil
			}
			if isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", s.rootPath, err)
		}
	} else {
		entries, err := os.ReadDir(s.rootPath)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", s.rootPath, err)
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if isHidden(entry.Name()) || !entry.Type().IsRegular() {
				continue
			}
			paths = append(paths, filepath.Join(s.rootPath, entry.Name()))
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// Read loads one file. The title is its path relative to the root, which
// is the bare file name for non-recursive sources.
func (s *Source) Read(ctx context.Context, path string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &domain.RawDocument{
		Path:    path,
		Title:   s.titleFor(path),
		Content: content,
	}, nil
}

// Close stops accepting new watches. Safe to call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Source) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Source) checkRoot() error {
	info, err := os.Stat(s.rootPath)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", s.rootPath)
	}
	return nil
}

func (s *Source) titleFor(path string) string {
	if s.recursive {
		if rel, err := filepath.Rel(s.rootPath, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(path)
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
