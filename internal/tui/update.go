package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/dual-pane/internal/pane"
	"github.com/joe/dual-pane/internal/transfer"
	"github.com/joe/dual-pane/internal/tui/shared"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}

		return m.handleKey(msg)

	case shared.PaneUpdateMsg:
		return m.handlePaneUpdate(msg.Update)

	case shared.UpdatesClosedMsg:
		return m, nil

	case shared.FlashExpiredMsg:
		if m.flash[msg.Pane] == msg.TransferID {
			m.flash[msg.Pane] = ""
		}

		return m, nil

	case shared.ErrorMsg:
		m.setError(msg.Err)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	// Each pane is half the screen, less borders and the count suffix.
	const barOverhead = 16

	barWidth := min(max(msg.Width/2-barOverhead, shared.ProgressEllipsisLength), shared.MaxProgressBarWidth)
	for i := range m.bars {
		m.bars[i].Width = barWidth
	}

	m.filter.Width = max(msg.Width/2-barOverhead, 1)

	return m
}

//nolint:cyclop,funlen // One case per key binding
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.pane(m.active)

	switch msg.String() {
	case shared.KeyCtrlC, "q":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.active = m.active.Sibling()

	case "up", "k":
		m.cursors[m.active]--

	case "down", "j":
		m.cursors[m.active]++

	case "pgup":
		m.cursors[m.active] -= m.listHeight()

	case "pgdown":
		m.cursors[m.active] += m.listHeight()

	case "home", "g":
		m.cursors[m.active] = 0

	case "end", "G":
		m.cursors[m.active] = len(state.Entries()) - 1

	case "enter", "right", "l":
		m.open()

	case "backspace", "left", "h":
		m.up()

	case " ", "space", "insert":
		entry, ok := m.current()
		if ok {
			err := state.Toggle(entry.Path)
			if err != nil {
				m.setError(err)
			}

			m.cursors[m.active]++
		}

	case "a":
		state.SelectAll()

	case "esc", "u":
		state.ClearSelection()

	case "c":
		m.start(transfer.Copy)

	case "m":
		m.start(transfer.Move)

	case "x":
		m.cancel()

	case "r":
		m.refresh()

	case ".":
		m.updateOptions(func(opts *pane.ListOptions) { opts.IncludeHidden = !opts.IncludeHidden })

	case "s":
		m.updateOptions(func(opts *pane.ListOptions) {
			if opts.Sort == pane.SortByName {
				opts.Sort = pane.SortBySize
			} else {
				opts.Sort = pane.SortByName
			}
		})

	case "v":
		m.updateOptions(func(opts *pane.ListOptions) { opts.Show = opts.Show.Next() })

	case "/":
		m.filtering = true
		m.filter.SetValue(filterText(state.Options()))
		m.filter.CursorEnd()

		return m, m.filter.Focus()
	}

	m.clamp()

	return m, nil
}

// handleFilterKey edits the active pane's filter. The listing follows every
// keystroke; enter keeps the filter and esc clears it.
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case shared.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case "enter":
		m.filtering = false
		m.filter.Blur()

		return m, nil

	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter("")

		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter(m.filter.Value())

	return m, cmd
}

func (m Model) handlePaneUpdate(update pane.Update) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.bridge.ListenCmd()}

	if !update.Done {
		return m, tea.Batch(cmds...)
	}

	m.clamp()

	switch {
	case update.Err != nil:
		m.setError(update.Err)
	case update.Outcome == nil:
	case update.Outcome.HasProblems():
		m.outcome = update.Outcome
		m.setError(fmt.Errorf("%s finished with problems: %d done, %d failed",
			update.Mode, update.Outcome.Succeeded, len(update.Outcome.Failed)))
	default:
		m.outcome = nil
		m.setStatus(fmt.Sprintf("%s done: %d files, %s at %s",
			update.Mode, update.Outcome.Succeeded, shared.FormatBytes(update.Outcome.BytesCopied),
			shared.FormatRate(update.Outcome.Metrics.Rate(update.Outcome.BytesCopied))))
	}

	if update.Err == nil {
		m.flash[update.Pane] = update.TransferID
		cmds = append(cmds, shared.FlashCmd(update.Pane, update.TransferID))
	}

	return m, tea.Batch(cmds...)
}

// open enters the directory under the cursor or toggles a file's selection.
func (m *Model) open() {
	entry, ok := m.current()
	if !ok {
		return
	}

	state := m.pane(m.active)

	if !entry.IsDir {
		err := state.Toggle(entry.Path)
		if err != nil {
			m.setError(err)
		}

		return
	}

	err := state.Enter(entry.Name)
	if err != nil {
		m.setError(err)
		return
	}

	m.cursors[m.active] = 0
}

// up moves to the parent and puts the cursor on the directory just left.
func (m *Model) up() {
	state := m.pane(m.active)
	left := filepath.Base(state.Root())

	err := state.Up()
	if err != nil {
		if !errors.Is(err, pane.ErrAtTop) {
			m.setError(err)
		}

		return
	}

	m.cursors[m.active] = 0

	for i, entry := range state.Entries() {
		if entry.Name == left {
			m.cursors[m.active] = i
			break
		}
	}
}

func (m *Model) start(mode transfer.Mode) {
	state := m.pane(m.active)
	count := len(state.Selection())

	id, err := m.coord.Start(m.active, mode)
	if err != nil {
		m.logger.Debug().Err(err).Str("pane", m.active.String()).Msg("transfer refused")
		m.setError(err)

		return
	}

	m.flash[m.active.Sibling()] = ""
	m.setStatus(fmt.Sprintf("%s of %d item(s) to %s pane started (%s)", mode, count, m.active.Sibling(), id))
}

// cancel stops the transfer holding the active pane.
func (m *Model) cancel() {
	id, busy := m.pane(m.active).Busy()
	if !busy {
		m.setStatus("no transfer to cancel")
		return
	}

	if m.coord.Cancel(id) {
		m.setStatus("cancelling " + id)
	}
}

func (m *Model) refresh() {
	for _, id := range []pane.ID{pane.Left, pane.Right} {
		err := m.pane(id).Refresh()
		if err != nil {
			m.setError(err)
		}
	}
}

func (m *Model) updateOptions(change func(*pane.ListOptions)) {
	state := m.pane(m.active)
	opts := state.Options()
	change(&opts)

	err := state.SetOptions(opts)
	if err != nil {
		m.setError(err)
	}
}

// applyFilter uses text as a glob when it has glob syntax and as a plain
// substring otherwise. An invalid glob keeps the previous listing.
func (m *Model) applyFilter(text string) {
	m.updateOptions(func(opts *pane.ListOptions) {
		opts.Pattern, opts.Query = "", ""
		if isGlob(text) {
			opts.Pattern = text
		} else {
			opts.Query = text
		}
	})
	m.clamp()
}

func filterText(opts pane.ListOptions) string {
	if opts.Pattern != "" {
		return opts.Pattern
	}

	return opts.Query
}

func isGlob(text string) bool {
	return strings.ContainsAny(text, "*?[{")
}
