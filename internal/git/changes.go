package git

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/raphi011/gitfleet/internal/identity"
	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/result"
)

// FetchAndDiff fetches the upstream of the current branch and returns the
// sorted paths that differ between HEAD and the fetched tracking ref.
// Without a configured upstream it uses origin/<current branch>.
// The working tree, index and local branches are not touched.
func (a *Adapter) FetchAndDiff(ctx context.Context, path string) ([]string, error) {
	const op = "fetch"

	tracking, err := a.trackingBranch(ctx, path)
	if err != nil {
		return nil, err
	}
	remote, name, _ := strings.Cut(tracking, "/")

	if err := runGit(ctx, path, "fetch", "--quiet", "--no-write-fetch-head", remote, name); err != nil {
		log.FromContext(ctx).Debug("fetch failed", "path", path, "remote", remote, "branch", name, "err", err)
		return nil, classifyTransport(op, err)
	}

	out, err := outputGit(ctx, path, "diff", "--name-only", "-z", "--no-renames", "HEAD", "refs/remotes/"+tracking)
	if err != nil {
		return nil, classify(op, err)
	}
	return sortedUnique(splitNul(string(out))), nil
}

// trackingBranch returns "<remote>/<branch>" for the current branch.
func (a *Adapter) trackingBranch(ctx context.Context, path string) (string, error) {
	if up := a.upstream(ctx, path); strings.Contains(up, "/") {
		return up, nil
	}

	current, err := a.CurrentBranch(ctx, path)
	if err != nil {
		return "", err
	}
	if current == "" {
		return "", result.Errorf(result.Failed, "fetch", "HEAD is detached")
	}
	return Remote + "/" + current, nil
}

// Commit records a commit and returns its id.
// With StageAllTracked, modified and deleted tracked files are staged as
// part of the commit; new files must be added first.
func (a *Adapter) Commit(ctx context.Context, path string, opts CommitOptions) (string, error) {
	const op = "commit"
	if strings.TrimSpace(opts.Message) == "" {
		return "", result.Errorf(result.InvalidArgument, op, "commit message is required")
	}

	args := []string{"commit", "--quiet"}
	if opts.StageAllTracked {
		args = append(args, "--all")
	}
	args = append(args, "--message", opts.Message)

	if _, err := outputGitEnv(ctx, path, identityEnv(opts.Author, opts.Committer), args...); err != nil {
		if isExitCode(err, 1) {
			return "", result.Errorf(result.Failed, op, "nothing to commit")
		}
		return "", classify(op, err)
	}

	return a.ResolveRef(ctx, path, "HEAD")
}

// identityEnv sets author and committer through git's environment variables.
// Unset identities fall back to the repository configuration.
func identityEnv(author, committer identity.Identity) []string {
	var env []string
	if author.Valid() {
		env = append(env, "GIT_AUTHOR_NAME="+author.Name, "GIT_AUTHOR_EMAIL="+author.Email)
	}
	if committer.Valid() {
		env = append(env, "GIT_COMMITTER_NAME="+committer.Name, "GIT_COMMITTER_EMAIL="+committer.Email)
	}
	return env
}

// Push publishes the current branch to the branch of the same name on origin.
func (a *Adapter) Push(ctx context.Context, path string) error {
	const op = "push"

	current, err := a.CurrentBranch(ctx, path)
	if err != nil {
		return err
	}
	if current == "" {
		return result.Errorf(result.Failed, op, "HEAD is detached")
	}

	if err := runGit(ctx, path, "push", "--quiet", Remote, "HEAD"); err != nil {
		log.FromContext(ctx).Debug("push failed", "path", path, "branch", current, "err", err)
		return classifyTransport(op, err)
	}
	return nil
}

// Pull fetches and merges the upstream of the current branch.
// A merge that stops on conflicts is aborted so the working copy is left as
// it was.
func (a *Adapter) Pull(ctx context.Context, path string) error {
	const op = "pull"

	err := runGit(ctx, path, "pull", "--quiet", "--no-rebase", "--no-edit")
	if err == nil {
		return nil
	}

	if ok, _ := a.refExists(ctx, path, "MERGE_HEAD"); ok {
		if abortErr := runGit(ctx, path, "merge", "--abort"); abortErr != nil {
			log.FromContext(ctx).Debug("merge abort failed", "path", path, "err", abortErr)
		}
		return result.Errorf(result.Failed, op, "merge conflict, merge aborted")
	}
	return classify(op, err)
}

// ResolveRef returns the commit id ref points to.
func (a *Adapter) ResolveRef(ctx context.Context, path, ref string) (string, error) {
	out, err := outputGit(ctx, path, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		if isExitCode(err, 1) {
			return "", result.Errorf(result.BranchNotFound, "resolve", "unknown ref %q", ref)
		}
		return "", classify("resolve", err)
	}
	return trimOutput(out), nil
}

// AddPaths stages the given files, including untracked ones.
func (a *Adapter) AddPaths(ctx context.Context, path string, files []string) error {
	const op = "add"
	if len(files) == 0 {
		return result.Errorf(result.InvalidArgument, op, "no paths given")
	}
	args := append([]string{"add", "--"}, files...)
	return classify(op, runGit(ctx, path, args...))
}

// Change is one entry of git status.
type Change struct {
	Index    byte   `json:"-" yaml:"-"`
	Worktree byte   `json:"-" yaml:"-"`
	Path     string `json:"path" yaml:"path"`
	OrigPath string `json:"orig_path,omitempty" yaml:"orig_path,omitempty"`
}

// Code returns the two-letter porcelain status, e.g. " M" or "??".
func (c Change) Code() string {
	return string([]byte{c.Index, c.Worktree})
}

// IsUntracked reports whether the path is unknown to git.
func (c Change) IsUntracked() bool {
	return c.Index == '?' && c.Worktree == '?'
}

// IsConflicted reports whether the path has unmerged changes.
func (c Change) IsConflicted() bool {
	switch c.Code() {
	case "DD", "AA":
		return true
	}
	return c.Index == 'U' || c.Worktree == 'U'
}

// WorkingStatus summarises the state of a working copy.
type WorkingStatus struct {
	Branch     string   `json:"branch" yaml:"branch"`
	Staged     []string `json:"staged,omitempty" yaml:"staged,omitempty"`
	Modified   []string `json:"modified,omitempty" yaml:"modified,omitempty"`
	Untracked  []string `json:"untracked,omitempty" yaml:"untracked,omitempty"`
	Conflicted []string `json:"conflicted,omitempty" yaml:"conflicted,omitempty"`
}

// Clean reports whether there are no local changes at all.
func (s WorkingStatus) Clean() bool {
	return len(s.Staged)+len(s.Modified)+len(s.Untracked)+len(s.Conflicted) == 0
}

// Changes returns the porcelain status entries of the working copy.
func (a *Adapter) Changes(ctx context.Context, path string) ([]Change, error) {
	out, err := outputGit(ctx, path, "--no-optional-locks", "status", "--porcelain=v1", "-z", "--untracked-files=all")
	if err != nil {
		return nil, classify("status", err)
	}
	return parsePorcelain(string(out))
}

// Status summarises the working copy without writing the index.
func (a *Adapter) Status(ctx context.Context, path string) (WorkingStatus, error) {
	changes, err := a.Changes(ctx, path)
	if err != nil {
		return WorkingStatus{}, err
	}
	current, err := a.CurrentBranch(ctx, path)
	if err != nil {
		return WorkingStatus{}, err
	}

	s := WorkingStatus{Branch: current}
	for _, c := range changes {
		switch {
		case c.IsUntracked():
			s.Untracked = append(s.Untracked, c.Path)
		case c.IsConflicted():
			s.Conflicted = append(s.Conflicted, c.Path)
		default:
			if c.Index != ' ' {
				s.Staged = append(s.Staged, c.Path)
			}
			if c.Worktree != ' ' {
				s.Modified = append(s.Modified, c.Path)
			}
		}
	}
	return s, nil
}

// ModifiedPaths returns tracked paths with staged or unstaged changes.
// Both sides of a rename are included.
func (a *Adapter) ModifiedPaths(ctx context.Context, path string) ([]string, error) {
	changes, err := a.Changes(ctx, path)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, c := range changes {
		if c.IsUntracked() {
			continue
		}
		paths = append(paths, c.Path)
		if c.OrigPath != "" {
			paths = append(paths, c.OrigPath)
		}
	}
	return sortedUnique(paths), nil
}

// WorkingPaths returns every locally changed path, untracked files included.
func (a *Adapter) WorkingPaths(ctx context.Context, path string) ([]string, error) {
	changes, err := a.Changes(ctx, path)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, c := range changes {
		paths = append(paths, c.Path)
		if c.OrigPath != "" {
			paths = append(paths, c.OrigPath)
		}
	}
	return sortedUnique(paths), nil
}

// parsePorcelain parses `git status --porcelain=v1 -z`.
// Renames and copies are followed by a separate NUL-terminated source path.
func parsePorcelain(out string) ([]Change, error) {
	fields := splitNul(out)
	var changes []Change
	for i := 0; i < len(fields); i++ {
		entry := fields[i]
		if len(entry) < 4 || entry[2] != ' ' {
			return nil, fmt.Errorf("malformed status entry %q", entry)
		}

		c := Change{Index: entry[0], Worktree: entry[1], Path: entry[3:]}
		if c.Index == 'R' || c.Index == 'C' {
			if i+1 >= len(fields) {
				return nil, fmt.Errorf("rename entry %q without source path", entry)
			}
			i++
			c.OrigPath = fields[i]
		}
		changes = append(changes, c)
	}
	return changes, nil
}

func splitNul(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, "\x00") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sortedUnique(paths []string) []string {
	slices.Sort(paths)
	return slices.Compact(paths)
}
