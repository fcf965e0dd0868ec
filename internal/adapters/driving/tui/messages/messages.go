// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/upfund/internal/core/domain"
)

// SearchRequested is a command to retrieve the top k chunks for a query.
type SearchRequested struct {
	Query string
	K     int
}

// SearchCompleted carries retrieved hits back to the model.
// Retrieval failures are already folded into an empty hit list.
type SearchCompleted struct {
	Query string
	Hits  []domain.RetrievedHit
}

// AskRequested is a command to answer a question.
type AskRequested struct {
	Question string
	K        int
}

// AskCompleted carries the synthesized answer back to the model.
type AskCompleted struct {
	Answer domain.Answer
}

// IndexCounted carries the number of entries in the vector index.
type IndexCounted struct {
	Entries int
	Err     error
}

// ResultSelected is sent when a hit is selected.
type ResultSelected struct {
	Index int
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question and answer view.
	ViewAsk
	// ViewSearch is the raw retrieval view.
	ViewSearch
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
