package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	errs := []error{
		ErrMissingSearchService,
		ErrMissingAnswerService,
		ErrInvalidPorts,
	}

	seen := make(map[string]bool)
	for _, err := range errs {
		msg := err.Error()
		assert.False(t, seen[msg], "duplicate error message: %s", msg)
		seen[msg] = true
	}
}

func TestErrors_Messages(t *testing.T) {
	assert.Contains(t, ErrMissingSearchService.Error(), "search service")
	assert.Contains(t, ErrMissingAnswerService.Error(), "answer service")
	assert.Contains(t, ErrInvalidPorts.Error(), "invalid ports")
}
