package styles

import (
	"image/color"
	"os"

	"charm.land/lipgloss/v2"

	"github.com/raphi011/gitfleet/internal/config"
)

// Theme assigns a color to every role in gitfleet's output.
type Theme struct {
	Primary color.Color // progress bar start
	Accent  color.Color // progress bar end, spinner
	Success color.Color // successful repositories, staged files
	Warning color.Color // skipped repositories, modified files
	Error   color.Color // failed repositories, conflicts
	Muted   color.Color // details, untracked files
}

func hexTheme(primary, accent, success, warning, failure, muted string) *Theme {
	return &Theme{
		Primary: lipgloss.Color(primary),
		Accent:  lipgloss.Color(accent),
		Success: lipgloss.Color(success),
		Warning: lipgloss.Color(warning),
		Error:   lipgloss.Color(failure),
		Muted:   lipgloss.Color(muted),
	}
}

// variants holds the light and dark palette of a preset. Either may be nil.
type variants struct {
	light, dark *Theme
}

var noColor = &Theme{
	Primary: lipgloss.NoColor{},
	Accent:  lipgloss.NoColor{},
	Success: lipgloss.NoColor{},
	Warning: lipgloss.NoColor{},
	Error:   lipgloss.NoColor{},
	Muted:   lipgloss.NoColor{},
}

// presets is keyed by config.ValidThemeNames.
var presets = map[string]variants{
	"none":    {light: noColor, dark: noColor},
	"default": {dark: hexTheme("62", "212", "82", "214", "196", "240")},
	"dracula": {dark: hexTheme("#bd93f9", "#ff79c6", "#50fa7b", "#ffb86c", "#ff5555", "#6272a4")},
	"nord": {
		light: hexTheme("#5e81ac", "#b48ead", "#a3be8c", "#d08770", "#bf616a", "#9a9a9a"),
		dark:  hexTheme("#88c0d0", "#b48ead", "#a3be8c", "#ebcb8b", "#bf616a", "#4c566a"),
	},
	"gruvbox": {
		light: hexTheme("#076678", "#8f3f71", "#79740e", "#b57614", "#9d0006", "#928374"),
		dark:  hexTheme("#83a598", "#d3869b", "#b8bb26", "#fabd2f", "#fb4934", "#665c54"),
	},
	"catppuccin": {
		light: hexTheme("#1e66f5", "#ea76cb", "#40a02b", "#fe640b", "#d20f39", "#9ca0b0"),
		dark:  hexTheme("#89b4fa", "#f5c2e7", "#a6e3a1", "#fab387", "#f38ba8", "#6c7086"),
	},
}

// hasDarkBackground queries the terminal. Replaced in tests.
var hasDarkBackground = func() bool {
	return lipgloss.HasDarkBackground(os.Stdin, os.Stderr)
}

var current = *presets["default"].dark

// Current returns the active theme.
func Current() Theme {
	return current
}

// Init selects the theme from config and rebuilds the package styles.
func Init(cfg config.ThemeConfig) {
	current = selectTheme(cfg)
	apply(current)
}

// selectTheme picks the variant for mode, asking the terminal in auto mode.
// A missing variant falls back to the other one; unknown names, which
// config validation rejects, fall back to the default preset.
func selectTheme(cfg config.ThemeConfig) Theme {
	v, ok := presets[cfg.Name]
	if !ok {
		v = presets["default"]
	}

	dark := cfg.Mode == "dark" || (cfg.Mode != "light" && hasDarkBackground())
	first, second := v.light, v.dark
	if dark {
		first, second = v.dark, v.light
	}
	if first == nil {
		first = second
	}
	return *first
}

func apply(t Theme) {
	Primary, Accent = t.Primary, t.Accent
	Success, Warning, Error, Muted = t.Success, t.Warning, t.Error, t.Muted

	AccentStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(t.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
}
