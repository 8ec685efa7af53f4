package shared

import "github.com/joe/dual-pane/internal/pane"

// FlashExpiredMsg clears a pane's "Done" flash, unless a newer transfer
// has replaced it since.
type FlashExpiredMsg struct {
	Pane       pane.ID
	TransferID string
}

// ErrorMsg is sent when a background command fails
type ErrorMsg struct {
	Err error
}
