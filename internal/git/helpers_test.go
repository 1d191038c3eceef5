package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// resolveTempDir creates a temp directory and resolves macOS symlinks.
func resolveTempDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("failed to resolve symlinks for %s: %v", tmpDir, err)
	}
	return resolved
}

// mustGit runs git in dir and fails the test on error.
func mustGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := outputGit(context.Background(), dir, args...)
	if err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
	return trimOutput(out)
}

// configureTestRepo sets git user config and disables GPG signing.
func configureTestRepo(t *testing.T, repoPath string) {
	t.Helper()
	mustGit(t, repoPath, "config", "user.email", "test@test.com")
	mustGit(t, repoPath, "config", "user.name", "Test User")
	mustGit(t, repoPath, "config", "commit.gpgsign", "false")
}

// writeFile writes content to name inside dir, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

// commitFile writes and commits a single file.
func commitFile(t *testing.T, dir, name, content, msg string) {
	t.Helper()
	writeFile(t, dir, name, content)
	mustGit(t, dir, "add", name)
	mustGit(t, dir, "commit", "-m", msg)
}

// setupTestRepo creates a git repo with main branch, initial commit, and git config.
// Returns the resolved repo path.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	repoPath := filepath.Join(resolveTempDir(t), "test-repo")
	mustGit(t, "", "init", "-b", "main", repoPath)
	configureTestRepo(t, repoPath)
	commitFile(t, repoPath, "README.md", "# test\n", "Initial commit")
	return repoPath
}

// setupTestRepoWithOrigin creates a repo with a bare origin remote.
// Returns (repoPath, originPath).
func setupTestRepoWithOrigin(t *testing.T) (string, string) {
	t.Helper()
	tmpDir := resolveTempDir(t)

	originPath := filepath.Join(tmpDir, "origin.git")
	repoPath := filepath.Join(tmpDir, "repo")

	// -b main ensures consistent default branch across git versions
	mustGit(t, "", "init", "--bare", "-b", "main", originPath)
	mustGit(t, "", "clone", originPath, repoPath)
	mustGit(t, repoPath, "symbolic-ref", "HEAD", "refs/heads/main")
	configureTestRepo(t, repoPath)

	commitFile(t, repoPath, "README.md", "# test\n", "Initial commit")
	mustGit(t, repoPath, "push", "-u", "origin", "HEAD")

	return repoPath, originPath
}

// cloneOther makes a second clone of origin, used to push upstream changes.
func cloneOther(t *testing.T, originPath string) string {
	t.Helper()
	other := filepath.Join(resolveTempDir(t), "other")
	mustGit(t, "", "clone", originPath, other)
	configureTestRepo(t, other)
	return other
}
