package transfer

import (
	"fmt"
	"strings"
)

// Mode selects what happens to a source file after it has been copied.
type Mode int

const (
	// Copy leaves sources untouched.
	Copy Mode = iota
	// Move deletes each source file once its copy is complete.
	Move
)

// String returns the string representation of Mode
func (m Mode) String() string {
	switch m {
	case Copy:
		return "copy"
	case Move:
		return "move"
	default:
		return "unknown"
	}
}

// ParseMode parses "copy" or "move", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "copy", "cp":
		return Copy, nil
	case "move", "mv":
		return Move, nil
	default:
		return Copy, fmt.Errorf("invalid transfer mode: %q (valid: copy, move)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

func (m Mode) valid() bool {
	return m == Copy || m == Move
}
