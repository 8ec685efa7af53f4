package shared

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/dual-pane/internal/pane"
)

// FlashCmd expires the "Done" flash of a pane after FlashDurationMs.
func FlashCmd(id pane.ID, transferID string) tea.Cmd {
	return tea.Tick(FlashDurationMs*time.Millisecond, func(time.Time) tea.Msg {
		return FlashExpiredMsg{Pane: id, TransferID: transferID}
	})
}
