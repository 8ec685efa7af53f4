package transfer

import "time"

// Metrics records where a transfer spent its time. Read and write times
// come from the copier's per-block timing; Elapsed is wall time from the
// first entry to the last.
type Metrics struct {
	Elapsed   time.Duration
	ReadTime  time.Duration
	WriteTime time.Duration
}

// add folds one file's copy timing into m.
func (m *Metrics) add(read, write time.Duration) {
	m.ReadTime += read
	m.WriteTime += write
}

// Rate returns bytes per second over the elapsed time, or 0 before any time
// has passed.
func (m Metrics) Rate(bytes int64) float64 {
	if m.Elapsed <= 0 {
		return 0
	}

	return float64(bytes) / m.Elapsed.Seconds()
}

// ReadPercent returns the share of I/O time spent reading, in [0, 100].
func (m Metrics) ReadPercent() float64 {
	total := m.ReadTime + m.WriteTime
	if total <= 0 {
		return 0
	}

	return float64(m.ReadTime) / float64(total) * ProgressPercentageScale
}

// WritePercent returns the share of I/O time spent writing, in [0, 100].
func (m Metrics) WritePercent() float64 {
	total := m.ReadTime + m.WriteTime
	if total <= 0 {
		return 0
	}

	return float64(m.WriteTime) / float64(total) * ProgressPercentageScale
}

// ProgressPercentageScale converts a 0-1 fraction to a percentage.
const ProgressPercentageScale = 100.0
