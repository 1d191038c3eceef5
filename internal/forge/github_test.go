package forge

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v61/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGitHub(t *testing.T, mux *http.ServeMux) *GitHub {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client := github.NewClient(server.Client())
	client.BaseURL = baseURL
	return NewGitHubWithClient(client)
}

func repoJSON(name string, archived, fork bool) string {
	return fmt.Sprintf(`{"name":%q,"full_name":"acme/%s","clone_url":"https://github.com/acme/%s.git","ssh_url":"git@github.com:acme/%s.git","default_branch":"main","archived":%t,"fork":%t}`,
		name, name, name, name, archived, fork)
}

func TestGitHub_ListRepos_Paginates(t *testing.T) {
	mux := http.NewServeMux()
	var serverURL string
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprintf(w, "[%s,%s]", repoJSON("api", false, false), repoJSON("old", true, false))
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/orgs/acme/repos?page=2&per_page=100>; rel="next"`, serverURL))
		fmt.Fprintf(w, "[%s,%s]", repoJSON("web", false, false), repoJSON("fork", false, true))
	})
	g := newTestGitHub(t, mux)
	serverURL = g.client.BaseURL.String()
	serverURL = serverURL[:len(serverURL)-1]

	repos, err := g.ListRepos(context.Background(), "acme", ListOptions{})
	require.NoError(t, err)

	require.Len(t, repos, 2)
	assert.Equal(t, "api", repos[0].Name)
	assert.Equal(t, "web", repos[1].Name)
	assert.Equal(t, "acme/web", repos[1].FullName)
	assert.Equal(t, "https://github.com/acme/web.git", repos[1].CloneURL)
	assert.Equal(t, "git@github.com:acme/web.git", repos[1].SSHURL)
	assert.Equal(t, "main", repos[1].DefaultBranch)

	all, err := g.ListRepos(context.Background(), "acme", ListOptions{IncludeArchived: true, IncludeForks: true})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestGitHub_ListRepos_FallsBackToUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/jane/repos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	mux.HandleFunc("/users/jane/repos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, "[%s]", repoJSON("dotfiles", false, false))
	})
	g := newTestGitHub(t, mux)

	repos, err := g.ListRepos(context.Background(), "jane", ListOptions{})
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "dotfiles", repos[0].Name)
}

func TestGitHub_ListRepos_Errors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Bad credentials"}`)
	})
	g := newTestGitHub(t, mux)

	_, err := g.ListRepos(context.Background(), "acme", ListOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list repositories of acme")

	_, err = g.ListRepos(context.Background(), "", ListOptions{})
	require.Error(t, err)
}

func TestNewGitHub_EnterpriseURL(t *testing.T) {
	g, err := NewGitHub(context.Background(), "token", "https://ghe.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3/", g.client.BaseURL.String())
	assert.Equal(t, "github", g.Name())

	g, err = NewGitHub(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/", g.client.BaseURL.String())
}

func TestToRepos(t *testing.T) {
	remotes := []RemoteRepo{
		{Name: "api", CloneURL: "https://github.com/acme/api.git", SSHURL: "git@github.com:acme/api.git"},
		{Name: "web", CloneURL: "https://github.com/acme/web.git"},
	}

	repos := ToRepos(remotes, true, "acme")
	require.Len(t, repos, 2)
	assert.Equal(t, "git@github.com:acme/api.git", repos[0].RemoteURL)
	assert.Equal(t, "https://github.com/acme/web.git", repos[1].RemoteURL, "falls back to https without ssh url")
	for _, r := range repos {
		assert.NotEmpty(t, r.ID)
		assert.False(t, r.Cloned)
		assert.Empty(t, r.Path)
		assert.Equal(t, []string{"acme"}, r.Labels)
	}
	assert.NotEqual(t, repos[0].ID, repos[1].ID)

	https := ToRepos(remotes[:1], false)
	assert.Equal(t, "https://github.com/acme/api.git", https[0].RemoteURL)
	assert.Nil(t, https[0].Labels)
}
