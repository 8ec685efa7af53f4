package transfer

// Progress counts plan entries processed so far. Partial is the byte fraction
// of the entry in flight, in [0, 1), so Value moves continuously from
// Completed toward Completed+1 while a file is being copied.
type Progress struct {
	Completed uint64
	Total     uint64
	Partial   float64
}

// Fraction returns Value/Total in [0, 1]; an empty transfer is 0.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}

	return min(p.Value()/float64(p.Total), 1)
}

// IsZero reports whether p is the idle {0, 0} state.
func (p Progress) IsZero() bool {
	return p.Completed == 0 && p.Total == 0 && p.Partial == 0
}

// Value returns Completed plus the partial fraction of the current entry.
func (p Progress) Value() float64 {
	return float64(p.Completed) + p.Partial
}

// partialFraction converts a byte count into the in-flight fraction,
// held strictly below 1 until the entry is finished.
func partialFraction(transferred, total int64) float64 {
	const almostDone = 0.999

	if total <= 0 || transferred <= 0 {
		return 0
	}

	return min(float64(transferred)/float64(total), almostDone)
}
