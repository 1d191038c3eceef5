package forge

import (
	"context"

	"github.com/raphi011/gitfleet/internal/registry"
)

// RemoteRepo is a repository as reported by a forge.
type RemoteRepo struct {
	Name          string
	FullName      string
	CloneURL      string // https
	SSHURL        string
	DefaultBranch string
	Archived      bool
	Fork          bool
}

// URL returns the SSH or HTTPS clone URL.
func (r RemoteRepo) URL(ssh bool) string {
	if ssh && r.SSHURL != "" {
		return r.SSHURL
	}
	return r.CloneURL
}

// ListOptions filters ListRepos results.
type ListOptions struct {
	IncludeArchived bool
	IncludeForks    bool
}

// keep reports whether r passes the filter.
func (o ListOptions) keep(r RemoteRepo) bool {
	if r.Archived && !o.IncludeArchived {
		return false
	}
	if r.Fork && !o.IncludeForks {
		return false
	}
	return true
}

// Forge represents a git hosting service
type Forge interface {
	// Name returns the forge name ("github")
	Name() string

	// ListRepos lists the repositories of an organization or user, sorted by name
	ListRepos(ctx context.Context, owner string, opts ListOptions) ([]RemoteRepo, error)
}

// ToRepos converts remote repositories to uncloned handles with fresh IDs.
// Every handle carries the given labels.
func ToRepos(remotes []RemoteRepo, ssh bool, labels ...string) []*registry.Repo {
	repos := make([]*registry.Repo, 0, len(remotes))
	for _, r := range remotes {
		repo := registry.NewRepo(r.Name, r.URL(ssh))
		if len(labels) > 0 {
			repo.Labels = append([]string(nil), labels...)
		}
		repos = append(repos, repo)
	}
	return repos
}
