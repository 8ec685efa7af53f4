// Package tui is the interactive dual-pane browser. It renders both panes,
// turns key presses into pane and coordinator calls and drains the
// coordinator's update stream.
package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/joe/dual-pane/internal/pane"
	"github.com/joe/dual-pane/internal/transfer"
	"github.com/joe/dual-pane/internal/tui/shared"
)

// Model is the dual-pane UI state. Pane contents live in pane.State; the
// model only tracks focus, cursors and what the status area shows.
type Model struct {
	coord  *pane.Coordinator
	bridge *shared.EventBridge
	logger zerolog.Logger

	active  pane.ID
	cursors [2]int

	bars    [2]progress.Model
	spinner spinner.Model

	filter    textinput.Model
	filtering bool

	// flash holds the id of the transfer whose "Done" a pane is showing.
	flash [2]string

	outcome  *transfer.Outcome
	status   string
	statusOK bool

	width    int
	height   int
	quitting bool
}

// NewModel creates the UI over coord. Both panes should already have a root.
func NewModel(coord *pane.Coordinator, logger zerolog.Logger) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = shared.TitleStyle()

	filter := textinput.New()
	filter.Prompt = "/"
	filter.Placeholder = "name or glob"

	return Model{
		coord:   coord,
		bridge:  shared.NewEventBridge(coord),
		logger:  logger,
		active:  pane.Left,
		bars:    [2]progress.Model{shared.NewProgressModel(shared.ProgressBarWidth), shared.NewProgressModel(shared.ProgressBarWidth)},
		spinner: s,
		filter:  filter,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bridge.ListenCmd(), m.spinner.Tick)
}

// Active returns the pane that has focus.
func (m Model) Active() pane.ID {
	return m.active
}

// Cursor returns the listing index under id's cursor.
func (m Model) Cursor(id pane.ID) int {
	return m.cursors[id]
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool {
	return m.filtering
}

// Flashing reports whether id is showing a "Done" flash.
func (m Model) Flashing(id pane.ID) bool {
	return m.flash[id] != ""
}

// LastOutcome returns the outcome of the most recent transfer that had problems.
func (m Model) LastOutcome() *transfer.Outcome {
	return m.outcome
}

// Status returns the status line message.
func (m Model) Status() string {
	return m.status
}

// Quitting reports whether the user asked to quit.
func (m Model) Quitting() bool {
	return m.quitting
}

func (m Model) pane(id pane.ID) *pane.State {
	return m.coord.Pane(id)
}

// current returns the entry under the active cursor.
func (m Model) current() (pane.Entry, bool) {
	entries := m.pane(m.active).Entries()
	cursor := m.cursors[m.active]

	if cursor < 0 || cursor >= len(entries) {
		return pane.Entry{}, false
	}

	return entries[cursor], true
}

// clamp keeps both cursors inside their listings.
func (m *Model) clamp() {
	for _, id := range []pane.ID{pane.Left, pane.Right} {
		n := len(m.pane(id).Entries())
		m.cursors[id] = max(min(m.cursors[id], n-1), 0)
	}
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusOK = true
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusOK = false
}
