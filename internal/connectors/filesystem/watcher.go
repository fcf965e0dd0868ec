package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/logger"
)

// Watch emits file changes under the root until ctx is cancelled, then
// closes the channel. Events are collected until the tree has been quiet for
// the debounce window and sent as one batch, sorted by path. Changes to the
// same path within a batch are merged into one.
func (s *Source) Watch(ctx context.Context) (<-chan []domain.FileChange, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	if err := s.checkRoot(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := s.addDirs(w); err != nil {
		w.Close()
		return nil, err
	}

	changes := make(chan []domain.FileChange)
	go s.run(ctx, w, changes)
	return changes, nil
}

func (s *Source) addDirs(w *fsnotify.Watcher) error {
	if err := w.Add(s.rootPath); err != nil {
		return fmt.Errorf("watch %s: %w", s.rootPath, err)
	}
	if !s.recursive {
		return nil
	}

	return filepath.WalkDir(s.rootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == s.rootPath {
			return err
		}
		if isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (s *Source) run(ctx context.Context, w *fsnotify.Watcher, out chan<- []domain.FileChange) {
	defer close(out)
	defer w.Close()

	pending := make(map[string]domain.ChangeType)
	var fire <-chan time.Time

	flush := func() bool {
		batch := make([]domain.FileChange, 0, len(pending))
		for p, t := range pending {
			batch = append(batch, domain.FileChange{Type: t, Path: p})
		}
		sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
		clear(pending)

		select {
		case out <- batch:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if s.recursive && event.Has(fsnotify.Create) {
				s.watchNewDir(w, event.Name)
			}

			change := s.handleFsEvent(event)
			if change == nil {
				continue
			}
			pending[change.Path] = mergeChange(pending, change)

			if s.debounce == 0 {
				if !flush() {
					return
				}
				continue
			}
			fire = time.After(s.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", s.rootPath, err)

		case <-fire:
			fire = nil
			if !flush() {
				return
			}
		}
	}
}

func (s *Source) watchNewDir(w *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || isHidden(filepath.Base(path)) {
		return
	}
	if err := w.Add(path); err != nil {
		logger.Warn("watch %s: %v", path, err)
	}
}

// handleFsEvent converts an fsnotify event into a change, or nil when the
// event is irrelevant (directories, hidden files, chmod-only events).
func (s *Source) handleFsEvent(event fsnotify.Event) *domain.FileChange {
	if isHidden(filepath.Base(event.Name)) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.FileChange{Type: domain.ChangeDeleted, Path: event.Name}

	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		changeType := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = domain.ChangeCreated
		}
		return &domain.FileChange{Type: changeType, Path: event.Name}
	}

	return nil
}

// mergeChange folds a new change into whatever is pending for the same path.
func mergeChange(pending map[string]domain.ChangeType, change *domain.FileChange) domain.ChangeType {
	prev, ok := pending[change.Path]
	if !ok {
		return change.Type
	}

	switch {
	case change.Type == domain.ChangeDeleted:
		return domain.ChangeDeleted
	case prev == domain.ChangeCreated:
		return domain.ChangeCreated
	case prev == domain.ChangeDeleted:
		return domain.ChangeUpdated
	default:
		return change.Type
	}
}
