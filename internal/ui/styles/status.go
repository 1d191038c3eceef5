package styles

import (
	"charm.land/lipgloss/v2"

	"github.com/raphi011/gitfleet/internal/result"
)

// Status symbols
const (
	SymbolSuccess = "✓"
	SymbolSkipped = "!"
	SymbolFailed  = "✗"
)

// skipped lists statuses reported without any change attempted on the repository.
var skipped = map[result.Status]bool{
	result.NotCloned:                 true,
	result.AlreadyCloned:             true,
	result.ConflictPredicted:         true,
	result.BranchCurrentlyCheckedOut: true,
}

// IsSkipped reports whether s means the repository was left alone.
func IsSkipped(s result.Status) bool {
	return skipped[s]
}

// StatusSymbol returns the plain symbol for s.
func StatusSymbol(s result.Status) string {
	switch {
	case s.IsSuccess():
		return SymbolSuccess
	case IsSkipped(s):
		return SymbolSkipped
	default:
		return SymbolFailed
	}
}

// StatusStyle returns the style used to render s.
func StatusStyle(s result.Status) lipgloss.Style {
	switch {
	case s.IsSuccess():
		return SuccessStyle
	case IsSkipped(s):
		return WarningStyle
	default:
		return ErrorStyle
	}
}

// FormatStatus renders "<symbol> <status>" in the status color.
func FormatStatus(s result.Status) string {
	return StatusStyle(s).Render(StatusSymbol(s) + " " + s.String())
}
