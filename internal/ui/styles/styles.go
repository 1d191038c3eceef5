// Package styles holds the colors and lipgloss styles shared by tables,
// progress output and prompts. Call [Init] after loading the config and
// before rendering anything.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Colors of the active theme.
var (
	Primary, Accent                color.Color
	Success, Warning, Error, Muted color.Color
)

// Styles of the active theme.
var (
	AccentStyle  lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	MutedStyle   lipgloss.Style
)

func init() {
	apply(current)
}
