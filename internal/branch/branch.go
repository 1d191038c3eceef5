// Package branch enumerates and combines branches across repositories.
//
// A [Branch] is an unqualified name plus a [Type]: "main" as a local branch
// and "main" as a remote-tracking branch are two distinct entries. The
// [Catalog] lists branches for one repository or merges the branch sets of
// many repositories, either as a union or as the set of common branches.
package branch

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Type is the kind of a branch.
type Type int

const (
	Local Type = iota
	Remote
)

// String returns the type name used for display ordering.
func (t Type) String() string {
	switch t {
	case Local:
		return "local"
	case Remote:
		return "remote"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// MarshalText encodes the type by name in JSON and YAML output.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses "local" or "remote".
func (t *Type) UnmarshalText(text []byte) error {
	switch string(text) {
	case "local":
		*t = Local
	case "remote":
		*t = Remote
	default:
		return fmt.Errorf("invalid branch type %q", text)
	}
	return nil
}

// Filter selects which branch types to list.
type Filter int

const (
	FilterLocal Filter = iota
	FilterRemote
	FilterAll
)

// ParseFilter converts "local", "remote" or "all".
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(s) {
	case "local", "":
		return FilterLocal, nil
	case "remote":
		return FilterRemote, nil
	case "all":
		return FilterAll, nil
	default:
		return 0, fmt.Errorf("invalid branch type %q: must be local, remote or all", s)
	}
}

func (f Filter) String() string {
	switch f {
	case FilterLocal:
		return "local"
	case FilterRemote:
		return "remote"
	case FilterAll:
		return "all"
	default:
		return fmt.Sprintf("filter(%d)", int(f))
	}
}

// Includes reports whether branches of type t pass the filter.
func (f Filter) Includes(t Type) bool {
	switch f {
	case FilterLocal:
		return t == Local
	case FilterRemote:
		return t == Remote
	case FilterAll:
		return true
	}
	return false
}

// Branch is a branch name without refs/heads/, refs/remotes/ or origin/.
type Branch struct {
	Name string `json:"name" yaml:"name"`
	Type Type   `json:"type" yaml:"type"`
}

// String renders remote branches as "origin/<name>".
func (b Branch) String() string {
	if b.Type == Remote {
		return "origin/" + b.Name
	}
	return b.Name
}

// Compare orders branches by type name, then by name.
func Compare(a, b Branch) int {
	return cmp.Or(
		strings.Compare(a.Type.String(), b.Type.String()),
		strings.Compare(a.Name, b.Name),
	)
}

// Sort orders branches for display: type name first, then branch name.
func Sort(branches []Branch) {
	slices.SortStableFunc(branches, Compare)
}

// Dedupe removes repeated (name, type) pairs, keeping first occurrences.
func Dedupe(branches []Branch) []Branch {
	seen := make(map[Branch]bool, len(branches))
	out := make([]Branch, 0, len(branches))
	for _, b := range branches {
		if seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return out
}

// Names returns the branch names in order.
func Names(branches []Branch) []string {
	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Name
	}
	return names
}
