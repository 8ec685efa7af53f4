package shared

import (
	"time"

	"github.com/joe/dual-pane/pkg/formatters"
)

// FormatBytes formats bytes into human-readable format (e.g., "1.5 MB")
func FormatBytes(bytes int64) string {
	return formatters.FormatBytes(bytes)
}

// FormatDuration formats duration into human-readable format (e.g., "2m 30s")
func FormatDuration(duration time.Duration) string {
	return formatters.FormatDuration(duration)
}

// FormatRate formats transfer rate into human-readable format (e.g., "5.2 MB/s")
func FormatRate(bytesPerSec float64) string {
	return formatters.FormatRate(bytesPerSec)
}

// TruncatePath shortens path to maxWidth runes by eliding its middle.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if maxWidth <= 0 || len(runes) <= maxWidth {
		return path
	}

	if maxWidth <= ProgressEllipsisLength {
		return string(runes[len(runes)-maxWidth:])
	}

	keep := maxWidth - ProgressEllipsisLength
	head := keep / 2 //nolint:mnd // Split the kept runes between both ends
	tail := keep - head

	return string(runes[:head]) + "..." + string(runes[len(runes)-tail:])
}
