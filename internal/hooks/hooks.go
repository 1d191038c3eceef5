package hooks

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"strings"

	"github.com/raphi011/gitfleet/internal/config"
	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/result"
)

// shellQuote escapes a string for safe use in shell commands.
// It wraps the value in single quotes and escapes any embedded single quotes.
func shellQuote(s string) string {
	// e.g., "it's" becomes 'it'\''s'
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// Trigger converts an operation name such as "commit and push" into the
// trigger used in hook config.
func Trigger(op string) string {
	return strings.ReplaceAll(op, " ", "-")
}

// Context holds the values for placeholder substitution
type Context struct {
	Path    string // absolute working copy path
	Repo    string // repository name
	Branch  string // branch touched by the operation
	Commit  string // commit created by the operation
	Trigger string // trigger of the operation
}

// Match is a hook selected for an operation.
type Match struct {
	Name string
	Hook config.Hook
}

// Select returns the hooks whose "on" list contains trigger or "all",
// sorted by name.
func Select(hooks map[string]config.Hook, trigger string) []Match {
	var matches []Match
	for name, hook := range hooks {
		if slices.Contains(hook.On, "all") || slices.Contains(hook.On, trigger) {
			matches = append(matches, Match{Name: name, Hook: hook})
		}
	}
	slices.SortFunc(matches, func(a, b Match) int {
		return strings.Compare(a.Name, b.Name)
	})
	return matches
}

// SubstitutePlaceholders replaces {placeholder} with shell-quoted values from Context.
// Values are properly escaped to prevent command injection.
func SubstitutePlaceholders(command string, hc Context) string {
	return strings.NewReplacer(
		"{path}", shellQuote(hc.Path),
		"{repo}", shellQuote(hc.Repo),
		"{branch}", shellQuote(hc.Branch),
		"{commit}", shellQuote(hc.Commit),
		"{trigger}", shellQuote(hc.Trigger),
	).Replace(command)
}

// Run executes one hook in hc.Path, sending its output to out.
func Run(ctx context.Context, m Match, hc Context, out io.Writer) error {
	command := SubstitutePlaceholders(m.Hook.Command, hc)
	log.FromContext(ctx).Debug("running hook", "hook", m.Name, "repo", hc.Repo, "command", command)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = hc.Path
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

// OnComplete returns a completion hook for the batch runner that runs the
// matching hooks in every successful repository of a call.
// Hook output goes to out.
func OnComplete(ctx context.Context, hooks map[string]config.Hook, out io.Writer) func(op string, results *result.Set) {
	return func(op string, results *result.Set) {
		trigger := Trigger(op)
		matches := Select(hooks, trigger)
		if len(matches) == 0 {
			return
		}

		l := log.FromContext(ctx)
		for _, r := range results.All() {
			if !r.OK() || r.Repo == nil {
				continue
			}
			hc := Context{
				Path:    r.Repo.Path,
				Repo:    r.Name,
				Branch:  r.Payload.Branch,
				Commit:  r.Payload.Commit,
				Trigger: trigger,
			}
			// Clones are recorded by the caller after the batch
			if r.Payload.Path != "" {
				hc.Path = r.Payload.Path
			}
			if hc.Path == "" {
				continue
			}

			for _, m := range matches {
				l.Printf("Running hook '%s' in %s\n", m.Name, r.Name)
				if err := Run(ctx, m, hc, out); err != nil {
					l.Warnf("hook %q failed for %s: %v", m.Name, r.Name, err)
					continue
				}
				if m.Hook.Description != "" {
					l.Printf("  ✓ %s\n", m.Hook.Description)
				}
			}
		}
	}
}
