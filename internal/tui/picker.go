package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// State represents the current phase of the TUI model.
type State int

const (
	// StatePicking is the fuzzy token picker phase.
	StatePicking State = iota
	// StateComposing edits the text around the picked tokens.
	StateComposing
	// StateDone means the TUI is finished and ready to quit.
	StateDone
)

// Model is the bubbletea model for the icon picker.
type Model struct {
	state     State
	list      list.Model
	selected  *IconItem
	cancelled bool
	width     int
	height    int
	ready     bool

	input   textinput.Model
	draft   string
	text    string
	preview func(string) string
}

// NewPicker creates a new picker Model with the given list items.
func NewPicker(items []list.Item) Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Pick an icon"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	ti := textinput.New()
	ti.Placeholder = "Type around the token"
	ti.CharLimit = 2000

	return Model{
		state: StatePicking,
		list:  l,
		input: ti,
	}
}

// WithPreview sets a function that renders the draft below the input,
// typically the filter itself.
func (m Model) WithPreview(fn func(string) string) Model {
	m.preview = fn

	return m
}

// Init returns the initial command. The list handles its own init internally.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
		m.list.SetSize(wsm.Width, wsm.Height-2)
		m.input.Width = max(wsm.Width-4, 1)
		m.ready = true

		return m, nil
	}

	switch m.state {
	case StatePicking:
		return m.updatePicking(msg)
	case StateComposing:
		return m.updateComposing(msg)
	}

	return m, nil
}

func (m Model) updatePicking(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+c":
			m.cancelled = true
			m.state = StateDone

			return m, tea.Quit

		case "esc":
			// Only leave on esc when not actively filtering.
			if m.list.FilterState() != list.Filtering {
				if m.draft != "" {
					return m.compose(m.draft)
				}

				m.cancelled = true
				m.state = StateDone

				return m, tea.Quit
			}

		case "enter":
			if m.list.FilterState() == list.Filtering {
				break // fall through to list.Update
			}

			return m.handlePickEnter()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

// handlePickEnter appends the selected token to the draft and moves to
// the compose step.
func (m Model) handlePickEnter() (tea.Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(IconItem)
	if !ok {
		return m, nil
	}

	m.selected = &item

	draft := m.draft
	if draft != "" && !strings.HasSuffix(draft, " ") {
		draft += " "
	}

	return m.compose(draft + item.Token + " ")
}

func (m Model) compose(draft string) (tea.Model, tea.Cmd) {
	m.draft = draft
	m.input.SetValue(draft)
	m.input.CursorEnd()
	m.input.Focus()
	m.state = StateComposing

	return m, textinput.Blink
}

func (m Model) updateComposing(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	switch keyMsg.String() {
	case "ctrl+c":
		m.cancelled = true
		m.state = StateDone

		return m, tea.Quit

	case "esc":
		// Back to the picker without the draft.
		m.draft = ""
		m.input.Reset()
		m.input.Blur()
		m.state = StatePicking

		return m, nil

	case "tab":
		// Pick another token, keeping the draft.
		m.draft = m.input.Value()
		m.input.Blur()
		m.state = StatePicking

		return m, nil

	case "enter":
		m.text = strings.TrimRight(m.input.Value(), " ")
		m.state = StateDone

		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// View renders the current TUI state.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.state {
	case StatePicking:
		return m.list.View()
	case StateComposing:
		return m.viewComposing()
	}

	return ""
}

func (m Model) viewComposing() string {
	var b strings.Builder

	if m.selected != nil {
		fmt.Fprintf(&b, "Icon: %s (%s)\n\n", m.selected.Token, m.selected.Label)
	}

	fmt.Fprintf(&b, "  %s\n", m.input.View())

	if m.preview != nil {
		fmt.Fprintf(&b, "\n  %s\n", m.preview(m.input.Value()))
	}

	b.WriteString("\n  Enter: confirm | Tab: add icon | Esc: back | Ctrl+C: quit\n")

	return b.String()
}

// Selected returns the last picked item, or nil.
func (m Model) Selected() *IconItem { return m.selected }

// Cancelled returns true if the user cancelled the picker.
func (m Model) Cancelled() bool { return m.cancelled }

// State returns the current picker state.
func (m Model) State() State { return m.state }

// Text returns the composed text after confirmation.
func (m Model) Text() string { return m.text }
