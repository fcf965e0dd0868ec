package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/upfund/internal/core/ports/driven"
	"github.com/custodia-labs/upfund/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt templates from user-editable files, falling back
// to built-in defaults. A file named <prompt>.txt in the prompt directory
// overrides the default of the same name.
//
// Nothing is written to disk until WriteDefaults is called.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
}

var defaultPrompts = map[string]string{
	driven.PromptAnswer: driven.DefaultAnswerPrompt,
}

// requiredPlaceholders lists, in order, the placeholders an override must
// keep.
var requiredPlaceholders = map[string][]string{
	driven.PromptAnswer: {driven.PlaceholderSources, driven.PlaceholderQuestion},
}

// NewPromptStore creates a prompt store rooted at promptDir.
// If promptDir is empty, defaults to ~/.upfund/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultHomeDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name. A user file wins over the default.
// An override that does not hold each required placeholder exactly once, in
// order, is rejected in favour of the default.
func (s *PromptStore) Load(name string) (string, error) {
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	def, hasDefault := defaultPrompts[name]

	prompt, err := s.loadFromFile(name)
	switch {
	case err == nil && hasDefault && !hasPlaceholders(prompt, requiredPlaceholders[name]):
		logger.Warn("Ignoring %s: it must contain %s exactly once each, in that order",
			filepath.Join(s.promptDir, name+".txt"), strings.Join(requiredPlaceholders[name], " and "))
		prompt = def
	case err != nil && hasDefault:
		prompt = def
	case err != nil:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	s.cache[name] = prompt
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// WriteDefaults writes every default template that has no file yet, so users
// have something to edit.
func (s *PromptStore) WriteDefaults() error {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
			return fmt.Errorf("write default prompt %q: %w", name, err)
		}
	}
	return nil
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// hasPlaceholders reports whether every placeholder in want occurs exactly
// once in tmpl, in the given order.
func hasPlaceholders(tmpl string, want []string) bool {
	last := -1
	for _, p := range want {
		if strings.Count(tmpl, p) != 1 {
			return false
		}
		i := strings.Index(tmpl, p)
		if i < last {
			return false
		}
		last = i
	}
	return true
}
