package forge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/google/go-github/v61/github"
	"golang.org/x/oauth2"

	"github.com/raphi011/gitfleet/internal/log"
)

const perPage = 100

// GitHub implements Forge through the GitHub REST API.
type GitHub struct {
	client *github.Client
}

var _ Forge = (*GitHub)(nil)

// NewGitHub creates a GitHub client.
// An empty token makes unauthenticated requests (public repositories only).
// baseURL is optional: empty means github.com; set for GitHub Enterprise
// (e.g. https://ghe.example.com). Never log or expose token.
func NewGitHub(ctx context.Context, token, baseURL string) (*GitHub, error) {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(ctx, ts)
	}
	client := github.NewClient(hc)

	if baseURL != "" {
		apiBase := strings.TrimSuffix(baseURL, "/") + "/api/v3"
		var err error
		client, err = client.WithEnterpriseURLs(apiBase, apiBase)
		if err != nil {
			return nil, fmt.Errorf("github base url: %w", err)
		}
	}

	return &GitHub{client: client}, nil
}

// NewGitHubWithClient wraps an existing go-github client.
func NewGitHubWithClient(client *github.Client) *GitHub {
	return &GitHub{client: client}
}

// Name returns "github"
func (g *GitHub) Name() string {
	return "github"
}

// ListRepos lists the repositories of owner. owner is tried as an
// organization first and as a user if no such organization exists.
func (g *GitHub) ListRepos(ctx context.Context, owner string, opts ListOptions) ([]RemoteRepo, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}

	repos, err := g.listOrg(ctx, owner)
	if isNotFound(err) {
		log.FromContext(ctx).Debug("no such organization, listing user repos", "owner", owner)
		repos, err = g.listUser(ctx, owner)
	}
	if err != nil {
		return nil, fmt.Errorf("list repositories of %s: %w", owner, err)
	}

	var out []RemoteRepo
	for _, r := range repos {
		remote := toRemote(r)
		if opts.keep(remote) {
			out = append(out, remote)
		}
	}
	slices.SortFunc(out, func(a, b RemoteRepo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (g *GitHub) listOrg(ctx context.Context, org string) ([]*github.Repository, error) {
	opt := &github.RepositoryListByOrgOptions{
		Type:        "all",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var all []*github.Repository
	for {
		repos, resp, err := g.client.Repositories.ListByOrg(ctx, org, opt)
		if err != nil {
			return nil, err
		}
		all = append(all, repos...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opt.Page = resp.NextPage
	}
}

func (g *GitHub) listUser(ctx context.Context, user string) ([]*github.Repository, error) {
	opt := &github.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var all []*github.Repository
	for {
		repos, resp, err := g.client.Repositories.ListByUser(ctx, user, opt)
		if err != nil {
			return nil, err
		}
		all = append(all, repos...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opt.Page = resp.NextPage
	}
}

func toRemote(r *github.Repository) RemoteRepo {
	return RemoteRepo{
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		CloneURL:      r.GetCloneURL(),
		SSHURL:        r.GetSSHURL(),
		DefaultBranch: r.GetDefaultBranch(),
		Archived:      r.GetArchived(),
		Fork:          r.GetFork(),
	}
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
