// Package combo accumulates keystrokes into combos and resolves them against
// the active keymap.
package combo

import "github.com/charmbracelet/lipgloss"

// Status classifies the combo in progress.
type Status uint8

const (
	// Cancelled is the reset state, also reached by a non-combo key or a timeout.
	Cancelled Status = iota
	// Pending means the keys so far are a strict prefix of some binding.
	Pending
	// Successful means the keys exactly matched a binding.
	Successful
	// Unmatched means no binding starts with the keys so far.
	Unmatched
	// Inserted means the key went to a text input instead of the combo.
	Inserted
)

var (
	pendingColor    = lipgloss.AdaptiveColor{Light: "#7D5A00", Dark: "#F1FA8C"}
	successfulColor = lipgloss.AdaptiveColor{Light: "#116620", Dark: "#50FA7B"}
	cancelledColor  = lipgloss.AdaptiveColor{Light: "#777777", Dark: "#6272A4"}
	unmatchedColor  = lipgloss.AdaptiveColor{Light: "#B31D28", Dark: "#FF5555"}
	insertedColor   = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#8BE9FD"}
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Successful:
		return "successful"
	case Unmatched:
		return "unmatched"
	case Inserted:
		return "inserted"
	default:
		return "cancelled"
	}
}

// Color returns the fixed display color of s.
func (s Status) Color() lipgloss.AdaptiveColor {
	switch s {
	case Pending:
		return pendingColor
	case Successful:
		return successfulColor
	case Unmatched:
		return unmatchedColor
	case Inserted:
		return insertedColor
	default:
		return cancelledColor
	}
}
