package tui

import (
	"fmt"
	"strings"

	"github.com/joe/dual-pane/internal/pane"
	"github.com/joe/dual-pane/internal/tui/shared"
)

const helpText = "tab switch · space select · a all · u clear · enter open · ⌫ up · " +
	"c copy · m move · x cancel · / filter · . hidden · s sort · v show · q quit"

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width == 0 {
		width = 2 * (shared.ProgressBarWidth + shared.ChromeHeight) //nolint:mnd // Two panes
	}

	var sections []string

	sections = append(sections,
		shared.RenderTwoColumnLayout(m.renderPane(pane.Left, width/2), m.renderPane(pane.Right, width-width/2), width))

	sections = append(sections, m.renderStatus())

	if m.outcome != nil {
		sections = append(sections, m.renderReport(width))
	}

	sections = append(sections, shared.RenderDim(helpText))

	return strings.Join(sections, "\n")
}

func (m Model) renderPane(id pane.ID, width int) string {
	state := m.pane(id)
	focused := id == m.active

	title := shared.TruncatePath(state.Root(), max(width-shared.ChromeHeight, 1))
	if title == "" {
		title = "(no directory)"
	}

	var lines []string

	entries := state.Entries()
	height := m.listHeight()
	cursor := m.cursors[id]
	start := max(cursor-height+1, 0)

	for i := start; i < len(entries) && i < start+height; i++ {
		lines = append(lines, m.renderEntry(state, entries[i], focused && i == cursor))
	}

	if len(entries) == 0 {
		lines = append(lines, shared.RenderDim("(empty)"))
	}

	for len(lines) < height {
		lines = append(lines, "")
	}

	lines = append(lines, m.renderPaneFooter(id, state))

	return shared.RenderPaneBox(title, strings.Join(lines, "\n"), width, focused)
}

func (m Model) renderEntry(state *pane.State, entry pane.Entry, underCursor bool) string {
	mark := "  "
	if underCursor {
		mark = shared.CursorMark
	}

	selected := state.IsSelected(entry.Path)
	if selected {
		mark = shared.SelectedMark
	}

	name := entry.DisplayName()
	if entry.Symlink {
		name += " @"
	}

	if !entry.IsDir {
		name = fmt.Sprintf("%s  %s", name, shared.RenderDim(shared.FormatBytes(entry.Size)))
	}

	row := mark + name

	switch {
	case underCursor:
		return shared.CursorStyle().Render(row)
	case selected:
		return shared.SelectedStyle().Render(row)
	case entry.IsDir:
		return shared.DirectoryStyle().Render(row)
	default:
		return shared.FileItemStyle().Render(row)
	}
}

// renderPaneFooter shows a running transfer's progress, the "Done" flash or
// the listing options, in that order of precedence.
func (m Model) renderPaneFooter(id pane.ID, state *pane.State) string {
	if transferID, busy := state.Busy(); busy {
		progress := state.Progress()
		if progress.Total == 0 {
			return fmt.Sprintf("%s %s", m.spinner.View(), shared.RenderDim(transferID))
		}

		return fmt.Sprintf("%s %s", m.spinner.View(), shared.RenderTransferProgress(m.bars[id], progress))
	}

	if m.flash[id] != "" {
		return shared.RenderSuccess("Done")
	}

	opts := state.Options()
	footer := fmt.Sprintf("show %s · sort %s", opts.Show, opts.Sort)

	if text := filterText(opts); text != "" {
		footer += " · filter " + text
	}

	if opts.IncludeHidden {
		footer += " · hidden"
	}

	return shared.RenderDim(footer)
}

func (m Model) renderStatus() string {
	line := shared.RenderLabel(m.active.String()+": ") + m.pane(m.active).Summary().String()

	if m.filtering {
		line += "\n" + m.filter.View()
	}

	switch {
	case m.status == "":
	case m.statusOK:
		line += "\n" + shared.RenderSuccess(m.status)
	default:
		line += "\n" + shared.RenderError(m.status)
	}

	return line
}

func (m Model) renderReport(width int) string {
	lines := shared.ReportLines(m.outcome, width-shared.ChromeHeight)

	limit := shared.MinPaneHeight * 2 //nolint:mnd // Keep the panes on screen
	if len(lines) > limit {
		lines = append(lines[:limit], shared.RenderDim(fmt.Sprintf("... %d more line(s), see the log", len(lines)-limit)))
	}

	return strings.Join(lines, "\n")
}

// listHeight is the number of rows each pane lists.
func (m Model) listHeight() int {
	if m.height == 0 {
		return shared.MinPaneHeight * 2 //nolint:mnd // Default before the first resize
	}

	return max(m.height-shared.ChromeHeight, shared.MinPaneHeight)
}
