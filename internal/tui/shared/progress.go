package shared

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/joe/dual-pane/internal/transfer"
)

// NewProgressModel creates a new progress bar model with the specified width.
func NewProgressModel(width int) progress.Model {
	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = width
	progressBar.ShowPercentage = false // We render the count ourselves

	// Apply custom colors if not disabled
	if !colorsDisabled {
		progressBar.EmptyColor = dimColorCode
		progressBar.FullColor = accentColorCode
	}

	return progressBar
}

// RenderASCIIProgress renders a progress bar in ASCII format.
// percent should be between 0.0 and 1.0, width is the total width of the bar.
// Returns a string like: "[=========>          ] 45%"
func RenderASCIIProgress(percent float64, width int) string {
	percent = min(max(percent, 0), 1)
	filled := int(percent * float64(width))

	var bar strings.Builder
	bar.WriteString("[")

	switch {
	case filled >= width:
		bar.WriteString(strings.Repeat("=", width))
	case percent > 0:
		// The arrow sits on the progress point.
		equals := max(filled-1, 0)
		bar.WriteString(strings.Repeat("=", equals))
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", width-equals-1))
	default:
		bar.WriteString(strings.Repeat(" ", width))
	}

	bar.WriteString("]")

	return fmt.Sprintf("%s %d%%", bar.String(), int(percent*ProgressPercentageScale))
}

// RenderTransferProgress renders a pane's transfer progress with a file count.
// It falls back to ASCII when NO_COLOR is set or TERM=dumb.
func RenderTransferProgress(model progress.Model, p transfer.Progress) string {
	var bar string
	if colorsDisabled {
		bar = RenderASCIIProgress(p.Fraction(), model.Width)
	} else {
		bar = model.ViewAs(p.Fraction())
	}

	return fmt.Sprintf("%s %d/%d", bar, p.Completed, p.Total)
}
