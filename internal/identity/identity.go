// Package identity describes the author and committer of a commit.
//
// Identities are passed explicitly to every commit. Nothing here is cached
// in process-wide state.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/raphi011/gitfleet/internal/cmd"
)

// Identity is a git author or committer.
type Identity struct {
	Name  string `toml:"name" json:"name" yaml:"name"`
	Email string `toml:"email" json:"email" yaml:"email"`
}

// Valid reports whether both name and email are set.
func (i Identity) Valid() bool {
	return strings.TrimSpace(i.Name) != "" && strings.TrimSpace(i.Email) != ""
}

// IsZero reports whether neither field is set.
func (i Identity) IsZero() bool {
	return i.Name == "" && i.Email == ""
}

// String renders the identity as "Name <email>".
func (i Identity) String() string {
	if i.Email == "" {
		return i.Name
	}
	return fmt.Sprintf("%s <%s>", i.Name, i.Email)
}

// Resolve returns explicit when it is valid, otherwise current.
func Resolve(explicit, current Identity) Identity {
	if explicit.Valid() {
		return explicit
	}
	return current
}

// Parse reads "Name <email>". A value without angle brackets is taken as a name.
func Parse(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Identity{}, fmt.Errorf("empty identity")
	}

	open := strings.LastIndex(s, "<")
	if open < 0 {
		return Identity{Name: s}, nil
	}
	end := strings.LastIndex(s, ">")
	if end < open {
		return Identity{}, fmt.Errorf("invalid identity %q: expected \"Name <email>\"", s)
	}

	id := Identity{
		Name:  strings.TrimSpace(s[:open]),
		Email: strings.TrimSpace(s[open+1 : end]),
	}
	if id.Name == "" || id.Email == "" {
		return Identity{}, fmt.Errorf("invalid identity %q: expected \"Name <email>\"", s)
	}
	return id, nil
}

// FromGitConfig reads user.name and user.email as git resolves them for dir.
// An empty dir reads the global configuration. Missing keys are left empty.
func FromGitConfig(ctx context.Context, dir string) Identity {
	return Identity{
		Name:  gitConfig(ctx, dir, "user.name"),
		Email: gitConfig(ctx, dir, "user.email"),
	}
}

func gitConfig(ctx context.Context, dir, key string) string {
	args := []string{"config", "--get", key}
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	out, err := cmd.OutputContext(ctx, "", "git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
