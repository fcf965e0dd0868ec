// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/upfund/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/upfund/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/upfund/internal/adapters/driving/tui/styles"
)

// Item represents a single menu option.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View represents the main menu view.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	items    []Item
	selected int
	entries  int
	width    int
	height   int
	ready    bool
}

// NewView creates a new menu view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		items: []Item{
			{Label: "Ask", Hint: "answer a question from your documents", View: messages.ViewAsk},
			{Label: "Search", Hint: "show the closest chunks", View: messages.ViewSearch},
			{Label: "Help", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		entries: -1,
		width:   80,
		height:  24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}

	return v, nil
}

// handleKey moves the cursor or activates an item. Digits activate the
// matching item directly.
func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.selected = max(v.selected-1, 0)
	case key.Matches(msg, v.keys.Down):
		v.selected = min(v.selected+1, len(v.items)-1)
	case key.Matches(msg, v.keys.Submit):
		return v.activate()
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit
	default:
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(v.items) {
			v.selected = n - 1
			return v.activate()
		}
	}
	return nil
}

func (v *View) activate() tea.Cmd {
	item := v.items[v.selected]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("upfund"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render(v.subtitle()))
	b.WriteString("\n\n")

	for i, item := range v.items {
		cursor := "  "
		label := v.styles.Normal.Render(item.Label)
		if i == v.selected {
			cursor = "> "
			label = v.styles.Subtitle.Render(item.Label)
		}
		b.WriteString(cursor + label + v.styles.Muted.Render(fmt.Sprintf("  [%d]", i+1)))
		if item.Hint != "" && i == v.selected {
			b.WriteString("  " + v.styles.Muted.Render(item.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter/1-4] Select  [q] Quit"))

	return b.String()
}

func (v *View) subtitle() string {
	switch {
	case v.entries < 0:
		return "Ask your documents"
	case v.entries == 0:
		return "Index is empty: run `upfund index` first"
	default:
		return fmt.Sprintf("Ask your documents (%d chunks indexed)", v.entries)
	}
}

// SetEntries records the index size shown under the title. A negative
// value hides it.
func (v *View) SetEntries(n int) {
	v.entries = n
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
