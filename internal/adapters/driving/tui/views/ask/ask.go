// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
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

// chromeHeight is the number of rows taken by the title, prompt and status bar.
const chromeHeight = 9

// View asks a question and shows the grounded answer with its sources.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Prompt
	spinner   spinner.Model
	viewport  viewport.Model
	statusbar *status.Bar

	answerService driving.AnswerService
	k             int
	ctx           context.Context

	answer      *domain.Answer
	showSources bool
	answering   bool
	focusInput  bool
	err         error

	width  int
	height int
	ready  bool
}

// NewView creates a new ask view. A non-positive k uses
// domain.DefaultSearchLimit.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	answerService driving.AnswerService,
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

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Subtitle

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewPrompt(s, "Ask:", "Ask a question about your documents..."),
		spinner:       sp,
		viewport:      viewport.New(80, 24-chromeHeight),
		statusbar:     status.NewBar(s, km),
		answerService: answerService,
		k:             k,
		ctx:           context.Background(),
		showSources:   true,
		focusInput:    true,
		width:         80,
		height:        24,
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

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !v.answering {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.AskCompleted:
		v.handleAskCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.answering = false
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	} else {
		v.viewport, cmd = v.viewport.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	// Keys are ignored while a question is in flight.
	if v.answering {
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewQuery):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Sources):
		v.showSources = !v.showSources
		v.refreshViewport()
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func (v *View) submit() tea.Cmd {
	question := v.input.Value()
	if question == "" {
		return nil
	}
	v.err = nil
	v.answering = true
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetState(status.StateAnswering)
	return tea.Batch(v.spinner.Tick, v.performAsk(question))
}

// performAsk runs retrieval and synthesis off the update loop.
func (v *View) performAsk(question string) tea.Cmd {
	svc, ctx, k := v.answerService, v.ctx, v.k
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		return messages.AskCompleted{Answer: svc.Ask(ctx, question, k)}
	}
}

func (v *View) handleAskCompleted(msg messages.AskCompleted) {
	answer := msg.Answer
	v.answer = &answer
	v.answering = false
	v.err = nil
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetHitCount(len(answer.Sources))
	v.refreshViewport()
	v.viewport.GotoTop()
}

func (v *View) refreshViewport() {
	v.viewport.SetContent(v.renderAnswer())
}

func (v *View) renderAnswer() string {
	if v.answer == nil {
		return ""
	}

	textWidth := v.width - 4
	if textWidth < 20 {
		textWidth = 20
	}

	var b strings.Builder
	b.WriteString(v.styles.Answer.Width(textWidth).Render(v.answer.Text))
	b.WriteString("\n")

	if !v.showSources || len(v.answer.Sources) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(v.answer.Sources))))
	b.WriteString("\n")
	for i, hit := range v.answer.Sources {
		title := hit.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&b, "%d. %s  %s\n", i+1,
			v.styles.Source.Render(title),
			v.styles.Score.Render(fmt.Sprintf("%.3f", hit.Score)))
		preview := list.Truncate(strings.Join(strings.Fields(hit.Chunk), " "), textWidth-4)
		b.WriteString(v.styles.Muted.Render("   " + preview))
		b.WriteString("\n")
	}
	return b.String()
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("upfund · ask"), "", v.input.View(), "")

	switch {
	case v.answering:
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("Retrieving and thinking..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.answer != nil:
		sections = append(sections, v.viewport.View())
	default:
		sections = append(sections, v.styles.Muted.Render("Answers are grounded on the indexed documents only."))
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.viewport.Width = width
	v.viewport.Height = max(height-chromeHeight, 3)
	v.refreshViewport()
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the text in the prompt.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the text in the prompt.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// Answer returns the last answer, or nil before the first one.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Answering reports whether a question is in flight.
func (v *View) Answering() bool {
	return v.answering
}

// ShowSources reports whether sources are listed under the answer.
func (v *View) ShowSources() bool {
	return v.showSources
}

// InputFocused returns whether the prompt has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset clears the answer and focuses the prompt.
func (v *View) Reset() {
	v.answer = nil
	v.answering = false
	v.err = nil
	v.focusInput = true
	v.input.SetValue("")
	v.input.Focus()
	v.statusbar.Clear()
	v.refreshViewport()
}
