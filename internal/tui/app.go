package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives model until the user quits. altScreen should only be set when
// stdout is a terminal.
func Run(model Model, altScreen bool) error {
	var opts []tea.ProgramOption
	if altScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	_, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return fmt.Errorf("ui failed: %w", err)
	}

	return nil
}
