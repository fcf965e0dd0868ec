// Package search provides the raw retrieval view for the TUI.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/upfund/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/upfund/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/upfund/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/upfund/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/upfund/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/upfund/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driving"
)

// View shows the top k chunks for a query without synthesis.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Prompt
	list      *list.HitList
	statusbar *status.Bar

	searchService driving.SearchService
	k             int
	ctx           context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing, false = navigating hits
	expanded   bool // full text of the selected chunk is shown
}

// NewView creates a new search view. A non-positive k uses
// domain.DefaultSearchLimit.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	k int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if k <= 0 {
		k = domain.DefaultSearchLimit
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewPrompt(s, "Search:", "Enter search query..."),
		list:          list.NewHitList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		k:             k,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keymap.Back) {
		if v.expanded {
			v.expanded = false
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		return v.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, v.keymap.Expand):
		v.expanded = v.list.SelectedHit() != nil && !v.expanded
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	case key.Matches(msg, v.keymap.NewQuery):
		v.focusInput = true
		v.expanded = false
		v.input.SetValue("")
		return v, v.input.Focus()
	}
	return v, nil
}

// handleInputKey edits the query, or submits it on Enter.
func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if !key.Matches(msg, v.keymap.Submit) {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	query := strings.TrimSpace(v.input.Value())
	if query == "" {
		return v, nil
	}
	v.err = nil
	v.statusbar.SetState(status.StateSearching)
	v.focusInput = false
	v.input.Blur()
	return v, v.performSearch(query)
}

// performSearch retrieves hits off the update loop.
func (v *View) performSearch(query string) tea.Cmd {
	svc, ctx, k := v.searchService, v.ctx, v.k
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		return messages.SearchCompleted{Query: query, Hits: svc.Search(ctx, query, k)}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	v.err = nil
	v.expanded = false
	v.list.SetHits(msg.Hits)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetHitCount(len(msg.Hits))

	v.focusInput = false
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("upfund · search"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.expanded {
		sections = append(sections, v.renderExpanded())
	} else {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderExpanded shows the selected chunk in full with its rank.
func (v *View) renderExpanded() string {
	hit := v.list.SelectedHit()
	if hit == nil {
		return ""
	}
	header := fmt.Sprintf("%s  %s  %s",
		v.styles.Muted.Render(fmt.Sprintf("[%d/%d]", v.list.Selected()+1, len(v.list.Hits()))),
		v.styles.Source.Render(hit.Title),
		v.styles.Score.Render(fmt.Sprintf("score %.3f", hit.Score)),
	)
	body := lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(hit.Chunk)
	return v.styles.Border.Padding(0, 1).Render(header + "\n\n" + body)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-8)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Hits returns the current hits.
func (v *View) Hits() []domain.RetrievedHit {
	return v.list.Hits()
}

// SelectedIndex returns the index of the selected hit.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedHit returns the currently selected hit.
func (v *View) SelectedHit() *domain.RetrievedHit {
	return v.list.SelectedHit()
}

// Expanded reports whether the selected chunk is shown in full.
func (v *View) Expanded() bool {
	return v.expanded
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to input mode with no hits.
func (v *View) Reset() {
	v.focusInput = true
	v.expanded = false
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetHits(nil)
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
