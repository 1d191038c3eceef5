package config

import (
	"fmt"
	"slices"
	"strings"
)

// Valid enum values for configuration fields.
var (
	ValidFormats       = []string{"table", "json", "yaml"}
	ValidBranchFilters = []string{"local", "remote", "all"}
	ValidThemeNames    = []string{"none", "default", "dracula", "nord", "gruvbox", "catppuccin"}
	ValidThemeModes    = []string{"auto", "light", "dark"}
	ValidHookTriggers  = []string{
		"all", "clone", "pull", "commit", "push", "commit-and-push",
		"create-branch", "switch", "delete-branch", "add",
	}
)

// ValidateFormat validates an output format against ValidFormats.
// Exported for use in CLI flag validation.
func ValidateFormat(format string) error {
	return validateEnum(format, "format", ValidFormats)
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}

// validateHooks checks that every hook has a command and known triggers.
func validateHooks(hooks map[string]Hook) error {
	names := make([]string, 0, len(hooks))
	for name := range hooks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		hook := hooks[name]
		if strings.TrimSpace(hook.Command) == "" {
			return fmt.Errorf("hooks.%s: command is required", name)
		}
		for _, on := range hook.On {
			if err := validateEnum(on, "hooks."+name+".on", ValidHookTriggers); err != nil {
				return err
			}
		}
	}
	return nil
}
