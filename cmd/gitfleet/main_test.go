package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"4d63.com/testcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/gitfleet/internal/registry"
)

// fleet is an isolated gitfleet environment: HOME, config, registry and
// workspace all live in one temp dir.
type fleet struct {
	home      string
	workspace string
	registry  string
}

func setupFleet(t *testing.T) *fleet {
	t.Helper()
	home, err := filepath.EvalSymlinks(testcli.MkdirTemp(t))
	require.NoError(t, err)

	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	testcli.Exec(t, "git config --global user.email tests@example.com")
	testcli.Exec(t, "git config --global user.name Tests")
	testcli.Exec(t, "git config --global init.defaultBranch main")
	testcli.Exec(t, "git config --global commit.gpgsign false")

	f := &fleet{
		home:      home,
		workspace: filepath.Join(home, "ws"),
		registry:  filepath.Join(home, "repos.toml"),
	}
	t.Setenv("GITFLEET_CONFIG", filepath.Join(home, "config.toml"))
	t.Setenv("GITFLEET_REGISTRY", f.registry)
	t.Setenv("GITFLEET_WORKSPACE", f.workspace)
	testcli.Chdir(t, home)
	return f
}

// gitIn runs git in dir and returns trimmed stdout.
func gitIn(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// origin creates a bare repository <home>/origins/<name>.git with one
// commit on main and returns its path.
func (f *fleet) origin(t *testing.T, name string) string {
	t.Helper()
	bare := filepath.Join(f.home, "origins", name+".git")
	seed := filepath.Join(f.home, "seeds", name)

	gitIn(t, f.home, "init", "--bare", "-b", "main", bare)
	gitIn(t, f.home, "clone", bare, seed)
	gitIn(t, seed, "symbolic-ref", "HEAD", "refs/heads/main")
	require.NoError(t, os.WriteFile(filepath.Join(seed, "README.md"), []byte("# "+name+"\n"), 0644))
	gitIn(t, seed, "add", "README.md")
	gitIn(t, seed, "commit", "-m", "Initial commit")
	gitIn(t, seed, "push", "origin", "HEAD:main")
	return bare
}

func gitfleet(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	return testcli.Main(t, append([]string{"gitfleet"}, args...), nil, run)
}

// mustRun runs gitfleet and fails the test on a non-zero exit code.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	code, stdout, stderr := gitfleet(t, args...)
	require.Equal(t, 0, code, "gitfleet %v\nstdout: %s\nstderr: %s", args, stdout, stderr)
	return stdout
}

type jsonResult struct {
	Name    string `json:"name"`
	Op      string `json:"op"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Payload struct {
		Path   string `json:"path"`
		Commit string `json:"commit"`
		Branch string `json:"branch"`
	} `json:"payload"`
}

func decodeResults(t *testing.T, stdout string) []jsonResult {
	t.Helper()
	var results []jsonResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &results), stdout)
	return results
}

func statuses(results []jsonResult) map[string]string {
	m := make(map[string]string, len(results))
	for _, r := range results {
		m[r.Name] = r.Status
	}
	return m
}

func listRepos(t *testing.T, args ...string) []registry.Repo {
	t.Helper()
	stdout := mustRun(t, append([]string{"repo", "list", "-o", "json"}, args...)...)
	var repos []registry.Repo
	require.NoError(t, json.Unmarshal([]byte(stdout), &repos), stdout)
	return repos
}

func TestVersion(t *testing.T) {
	setupFleet(t)

	stdout := mustRun(t, "version")
	assert.True(t, strings.HasPrefix(stdout, "gitfleet dev (none, unknown, go"), stdout)
}

func TestUnknownCommand(t *testing.T) {
	setupFleet(t)

	code, _, stderr := gitfleet(t, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Run 'gitfleet -h' for help")
}

func TestInvalidFormat(t *testing.T) {
	setupFleet(t)

	code, _, stderr := gitfleet(t, "repo", "list", "-o", "xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `invalid format "xml"`)
}

func TestRepoAddListRemove(t *testing.T) {
	setupFleet(t)

	mustRun(t, "repo", "add", "https://example.com/acme/api.git", "-l", "backend")
	mustRun(t, "repo", "add", "git@example.com:acme/web.git", "--name", "frontend")

	repos := listRepos(t)
	require.Len(t, repos, 2)
	assert.Equal(t, "api", repos[0].Name)
	assert.Equal(t, []string{"backend"}, repos[0].Labels)
	assert.False(t, repos[0].Cloned)
	assert.NotEmpty(t, repos[0].ID)
	assert.Equal(t, "frontend", repos[1].Name)
	assert.Equal(t, "git@example.com:acme/web.git", repos[1].RemoteURL)

	backend := listRepos(t, "-l", "backend")
	require.Len(t, backend, 1)
	assert.Equal(t, "api", backend[0].Name)

	code, _, stderr := gitfleet(t, "repo", "add", "https://example.com/other/api.git")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "repo name already exists")

	mustRun(t, "repo", "rm", "api", "--yes")
	repos = listRepos(t)
	require.Len(t, repos, 1)
	assert.Equal(t, "frontend", repos[0].Name)

	code, _, stderr = gitfleet(t, "repo", "rm", "nope", "--yes")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "repo not found: nope")
}

func TestRepoAddWorkingCopy(t *testing.T) {
	f := setupFleet(t)
	bare := f.origin(t, "api")

	mustRun(t, "repo", "add", filepath.Join(f.home, "seeds", "api"), "--name", "api")

	repos := listRepos(t)
	require.Len(t, repos, 1)
	assert.True(t, repos[0].Cloned)
	assert.Equal(t, filepath.Join(f.home, "seeds", "api"), repos[0].Path)
	assert.Equal(t, bare, repos[0].RemoteURL)
}

func TestLabels(t *testing.T) {
	setupFleet(t)

	mustRun(t, "repo", "add", "https://example.com/acme/api.git", "https://example.com/acme/web.git")
	mustRun(t, "repo", "label", "add", "team", "api", "web")
	mustRun(t, "repo", "label", "add", "go", "api")

	assert.Len(t, listRepos(t, "-l", "team"), 2)

	mustRun(t, "repo", "label", "rm", "team", "web")
	assert.Len(t, listRepos(t, "-l", "team"), 1)

	var labels []string
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "repo", "label", "list", "-o", "json")), &labels))
	assert.Equal(t, []string{"go", "team"}, labels)

	mustRun(t, "repo", "label", "clear", "api")
	assert.Empty(t, listRepos(t, "-l", "team", "-l", "go"))
}

func TestCloneCommitPush(t *testing.T) {
	f := setupFleet(t)
	apiOrigin := f.origin(t, "api")
	webOrigin := f.origin(t, "web")

	mustRun(t, "repo", "add", apiOrigin, webOrigin)

	results := decodeResults(t, mustRun(t, "clone", "-o", "json"))
	require.Len(t, results, 2)
	assert.Equal(t, map[string]string{"api": "successful", "web": "successful"}, statuses(results))
	assert.Equal(t, filepath.Join(f.workspace, "api"), results[0].Payload.Path)

	for _, r := range listRepos(t) {
		assert.True(t, r.Cloned, r.Name)
		assert.Equal(t, filepath.Join(f.workspace, r.Name), r.Path)
	}

	// Cloning again skips everything, which is not a failure
	results = decodeResults(t, mustRun(t, "clone", "-o", "json"))
	assert.Equal(t, map[string]string{"api": "already-cloned", "web": "already-cloned"}, statuses(results))

	apiDir := filepath.Join(f.workspace, "api")
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "notes.txt"), []byte("notes\n"), 0644))

	results = decodeResults(t, mustRun(t, "add", "notes.txt", "-r", "api", "-o", "json"))
	assert.Equal(t, map[string]string{"api": "successful"}, statuses(results))

	results = decodeResults(t, mustRun(t, "commit", "-m", "Add notes", "--push", "-r", "api", "-o", "json"))
	require.Len(t, results, 1)
	assert.Equal(t, "successful", results[0].Status)
	assert.Equal(t, gitIn(t, apiDir, "rev-parse", "HEAD"), results[0].Payload.Commit)

	assert.Equal(t, "Add notes", gitIn(t, apiOrigin, "log", "-1", "--format=%s", "main"))
	assert.Equal(t, "Tests <tests@example.com>", gitIn(t, apiOrigin, "log", "-1", "--format=%an <%ae>", "main"))
	assert.Equal(t, "Initial commit", gitIn(t, webOrigin, "log", "-1", "--format=%s", "main"))
}

func TestCloneHandwrittenRegistry(t *testing.T) {
	f := setupFleet(t)
	apiOrigin := f.origin(t, "api")

	content := "[[repos]]\nname = \"api\"\nremote_url = \"" + filepath.ToSlash(apiOrigin) + "\"\ncloned = false\n"
	require.NoError(t, os.WriteFile(f.registry, []byte(content), 0644))

	results := decodeResults(t, mustRun(t, "clone", "-o", "json"))
	assert.Equal(t, map[string]string{"api": "successful"}, statuses(results))

	repos := listRepos(t)
	require.Len(t, repos, 1)
	assert.NotEmpty(t, repos[0].ID)
	assert.True(t, repos[0].Cloned)
	assert.Equal(t, filepath.Join(f.workspace, "api"), repos[0].Path)

	results = decodeResults(t, mustRun(t, "clone", "-o", "json"))
	assert.Equal(t, map[string]string{"api": "already-cloned"}, statuses(results))
}

func TestCommitAuthor(t *testing.T) {
	f := setupFleet(t)
	mustRun(t, "repo", "add", f.origin(t, "api"))
	mustRun(t, "clone")

	apiDir := filepath.Join(f.workspace, "api")
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "README.md"), []byte("changed\n"), 0644))

	mustRun(t, "commit", "-a", "-m", "Update readme", "--author", "Jane Doe <jane@example.com>")
	assert.Equal(t, "Jane Doe <jane@example.com>", gitIn(t, apiDir, "log", "-1", "--format=%an <%ae>"))

	code, _, stderr := gitfleet(t, "commit", "-m", "x", "--author", "Jane")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--author")
}

func TestPullSkipsUncloned(t *testing.T) {
	f := setupFleet(t)
	apiOrigin := f.origin(t, "api")
	mustRun(t, "repo", "add", apiOrigin)
	mustRun(t, "clone")
	mustRun(t, "repo", "add", "https://example.com/acme/docs.git")

	// Upstream change made through the seed clone
	seed := filepath.Join(f.home, "seeds", "api")
	require.NoError(t, os.WriteFile(filepath.Join(seed, "CHANGELOG.md"), []byte("v2\n"), 0644))
	gitIn(t, seed, "add", "CHANGELOG.md")
	gitIn(t, seed, "commit", "-m", "Changelog")
	gitIn(t, seed, "push", "origin", "HEAD:main")

	results := decodeResults(t, mustRun(t, "pull", "-o", "json"))
	assert.Equal(t, map[string]string{"api": "successful", "docs": "not-cloned"}, statuses(results))
	assert.FileExists(t, filepath.Join(f.workspace, "api", "CHANGELOG.md"))
}

func TestBranches(t *testing.T) {
	f := setupFleet(t)
	mustRun(t, "repo", "add", f.origin(t, "api"), f.origin(t, "web"))
	mustRun(t, "clone")

	results := decodeResults(t, mustRun(t, "branch", "create", "feature", "-r", "api", "-o", "json"))
	assert.Equal(t, map[string]string{"api": "successful"}, statuses(results))

	// Union lists feature once, --common drops it
	var branches []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "branch", "list", "-o", "json")), &branches))
	assert.ElementsMatch(t, []string{"feature/local", "main/local"}, branchKeys(branches))

	branches = nil
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "branch", "list", "--common", "-o", "json")), &branches))
	assert.Equal(t, []string{"main/local"}, branchKeys(branches))

	// web has no feature branch
	code, stdout, stderr := gitfleet(t, "branch", "switch", "feature", "-o", "json")
	assert.Equal(t, 1, code, stderr)
	assert.Equal(t, map[string]string{"api": "successful", "web": "branch-not-found"}, statuses(decodeResults(t, stdout)))
	assert.Equal(t, "feature", gitIn(t, filepath.Join(f.workspace, "api"), "branch", "--show-current"))

	// Already on the branch is a skip
	results = decodeResults(t, mustRun(t, "branch", "switch", "feature", "-r", "api", "-o", "json"))
	assert.Equal(t, "branch-currently-checked-out", results[0].Status)

	code, _, stderr = gitfleet(t, "branch", "switch", "featur", "-r", "api")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Did you mean: feature?")

	mustRun(t, "branch", "switch", "main", "-r", "api")
	results = decodeResults(t, mustRun(t, "branch", "delete", "feature", "-r", "api", "-o", "json"))
	assert.Equal(t, "successful", results[0].Status)
}

func branchKeys(branches []struct {
	Name string `json:"name"`
	Type string `json:"type"`
}) []string {
	keys := make([]string, len(branches))
	for i, b := range branches {
		keys[i] = b.Name + "/" + b.Type
	}
	return keys
}

func TestStatus(t *testing.T) {
	f := setupFleet(t)
	mustRun(t, "repo", "add", f.origin(t, "api"))
	mustRun(t, "clone")
	mustRun(t, "repo", "add", "https://example.com/acme/docs.git")

	apiDir := filepath.Join(f.workspace, "api")
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "README.md"), []byte("changed\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "new.txt"), []byte("new\n"), 0644))

	var got []repoStatus
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "status", "-o", "json")), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "api", got[0].Name)
	require.NotNil(t, got[0].Status)
	assert.Equal(t, "main", got[0].Status.Branch)
	assert.Equal(t, []string{"README.md"}, got[0].Status.Modified)
	assert.Equal(t, []string{"new.txt"}, got[0].Status.Untracked)

	assert.Equal(t, "docs", got[1].Name)
	assert.False(t, got[1].Cloned)
	assert.Nil(t, got[1].Status)

	table := mustRun(t, "status")
	assert.Contains(t, table, "REPO")
	assert.Contains(t, table, "not cloned")
}

func TestDiscover(t *testing.T) {
	f := setupFleet(t)
	apiOrigin := f.origin(t, "api")
	gitIn(t, f.home, "clone", apiOrigin, filepath.Join(f.workspace, "api"))

	mustRun(t, "repo", "add", apiOrigin)
	mustRun(t, "repo", "discover")

	repos := listRepos(t)
	require.Len(t, repos, 1)
	assert.True(t, repos[0].Cloned)
	assert.Equal(t, filepath.Join(f.workspace, "api"), repos[0].Path)
}

func TestNoRepositories(t *testing.T) {
	setupFleet(t)

	code, _, stderr := gitfleet(t, "pull")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no repositories registered")
}

func TestConfig(t *testing.T) {
	f := setupFleet(t)

	stdout := mustRun(t, "config", "init", "--stdout")
	assert.Contains(t, stdout, "# gitfleet configuration")

	mustRun(t, "config", "init")
	assert.FileExists(t, filepath.Join(f.home, "config.toml"))

	var cfg struct {
		WorkspaceDir string `json:"workspace_dir"`
		RegistryPath string `json:"registry_path"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "config", "show", "-o", "json")), &cfg))
	assert.Equal(t, f.workspace, cfg.WorkspaceDir)
	assert.Equal(t, f.registry, cfg.RegistryPath)

	assert.Contains(t, mustRun(t, "config", "show"), `workspace_dir = "`+f.workspace+`"`)
}

func TestCompletion(t *testing.T) {
	setupFleet(t)

	stdout := mustRun(t, "completion", "bash")
	assert.Contains(t, stdout, "gitfleet")

	code, _, _ := gitfleet(t, "completion", "tcsh")
	assert.Equal(t, 1, code)
}

func TestHooks(t *testing.T) {
	f := setupFleet(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.home, "config.toml"), []byte(`
[hooks.mark]
command = "echo {trigger} > .hooked"
on = ["clone"]
`), 0644))

	mustRun(t, "repo", "add", f.origin(t, "api"), f.origin(t, "web"))
	mustRun(t, "clone", "-r", "api")
	mustRun(t, "clone", "-r", "web", "--no-hooks")

	data, err := os.ReadFile(filepath.Join(f.workspace, "api", ".hooked"))
	require.NoError(t, err)
	assert.Equal(t, "clone\n", string(data))
	assert.NoFileExists(t, filepath.Join(f.workspace, "web", ".hooked"))
}
