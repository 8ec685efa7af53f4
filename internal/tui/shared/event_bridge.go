package shared

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/dual-pane/internal/pane"
)

// PaneUpdateMsg wraps a coordinator update for use as a tea.Msg.
type PaneUpdateMsg struct {
	Update pane.Update
}

// UpdatesClosedMsg is sent once the coordinator's update stream has closed.
type UpdatesClosedMsg struct{}

// UpdateSource is the part of the coordinator the UI listens to.
type UpdateSource interface {
	Updates() <-chan pane.Update
}

// EventBridge adapts coordinator updates to bubble tea messages.
type EventBridge struct {
	source UpdateSource
}

// NewEventBridge creates a bridge over source.
func NewEventBridge(source UpdateSource) *EventBridge {
	return &EventBridge{source: source}
}

// ListenCmd returns a tea.Cmd that blocks until an update is received.
// Issue it again after handling each PaneUpdateMsg to keep listening.
func (b *EventBridge) ListenCmd() tea.Cmd {
	updates := b.source.Updates()

	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return UpdatesClosedMsg{}
		}

		return PaneUpdateMsg{Update: update}
	}
}
