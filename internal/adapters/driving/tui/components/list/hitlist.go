// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/upfund/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/upfund/internal/core/domain"
)

// linesPerHit is the rendered height of one hit: title plus preview.
const linesPerHit = 2

// HitList displays retrieved chunks in a navigable list.
type HitList struct {
	hits     []domain.RetrievedHit
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewHitList creates a new hit list component.
func NewHitList(s *styles.Styles) *HitList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &HitList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (r *HitList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *HitList) Update(msg tea.Msg) (*HitList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *HitList) View() string {
	if len(r.hits) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.hits)*linesPerHit+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.hits))), "")

	visible := (r.height - 2) / linesPerHit
	if visible < 1 {
		visible = 1
	}

	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := start + visible
	if end > len(r.hits) {
		end = len(r.hits)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderHit(i, &r.hits[i]))
	}

	return strings.Join(lines, "\n")
}

func (r *HitList) renderHit(index int, hit *domain.RetrievedHit) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := hit.Title
	if title == "" {
		title = "(untitled)"
	}
	maxTitle := r.width - 16
	if maxTitle < 10 {
		maxTitle = 10
	}
	title = Truncate(title, maxTitle)

	score := fmt.Sprintf("%.3f", hit.Score)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitle, title, score))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitle, title)) +
			r.styles.Score.Render(score)
	}

	maxPreview := r.width - 6
	if maxPreview < 20 {
		maxPreview = 20
	}
	preview := Truncate(strings.Join(strings.Fields(hit.Chunk), " "), maxPreview)

	return titleLine + "\n" + r.styles.Muted.Render("    "+preview)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetHits replaces the list contents and resets the selection.
func (r *HitList) SetHits(hits []domain.RetrievedHit) {
	r.hits = hits
	r.selected = 0
}

// Hits returns the current hits.
func (r *HitList) Hits() []domain.RetrievedHit {
	return r.hits
}

// Selected returns the index of the selected hit.
func (r *HitList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *HitList) SetSelected(index int) {
	if index >= 0 && index < len(r.hits) {
		r.selected = index
	}
}

// SelectedHit returns the currently selected hit, or nil if none.
func (r *HitList) SelectedHit() *domain.RetrievedHit {
	if r.selected < 0 || r.selected >= len(r.hits) {
		return nil
	}
	return &r.hits[r.selected]
}

// MoveUp moves selection up.
func (r *HitList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *HitList) MoveDown() {
	if r.selected < len(r.hits)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *HitList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *HitList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *HitList) Height() int {
	return r.height
}

// Count returns the number of hits.
func (r *HitList) Count() int {
	return len(r.hits)
}

// IsEmpty returns whether the list is empty.
func (r *HitList) IsEmpty() bool {
	return len(r.hits) == 0
}
