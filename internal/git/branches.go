package git

import (
	"context"
	"strings"

	"github.com/raphi011/gitfleet/internal/branch"
	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/result"
)

// ListBranches returns the branches of the working copy at path, ordered by
// type then name. Remote branches are those of origin, stripped of the
// "origin/" prefix; symbolic refs like origin/HEAD are skipped.
func (a *Adapter) ListBranches(ctx context.Context, path string, filter branch.Filter) ([]branch.Branch, error) {
	var patterns []string
	if filter.Includes(branch.Local) {
		patterns = append(patterns, "refs/heads")
	}
	if filter.Includes(branch.Remote) {
		patterns = append(patterns, "refs/remotes/"+Remote)
	}

	args := append([]string{"for-each-ref", "--format=%(refname)%00%(symref)"}, patterns...)
	out, err := outputGit(ctx, path, args...)
	if err != nil {
		return nil, classify("list branches", err)
	}

	branches := parseRefs(string(out))
	branch.Sort(branches)
	return branches, nil
}

// parseRefs parses "refname\x00symref" lines from for-each-ref.
func parseRefs(out string) []branch.Branch {
	var branches []branch.Branch
	for line := range strings.SplitSeq(out, "\n") {
		ref, symref, _ := strings.Cut(line, "\x00")
		if ref == "" || symref != "" {
			continue
		}

		if name, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
			branches = append(branches, branch.Branch{Name: name, Type: branch.Local})
			continue
		}
		if name, ok := strings.CutPrefix(ref, "refs/remotes/"+Remote+"/"); ok {
			if name == "HEAD" {
				continue
			}
			branches = append(branches, branch.Branch{Name: name, Type: branch.Remote})
		}
	}
	return branches
}

// CurrentBranch returns the checked-out branch, or "" for a detached HEAD.
func (a *Adapter) CurrentBranch(ctx context.Context, path string) (string, error) {
	out, err := outputGit(ctx, path, "branch", "--show-current")
	if err != nil {
		return "", classify("current branch", err)
	}
	return trimOutput(out), nil
}

// CreateBranch creates name at HEAD. A name taken by a local branch or by a
// branch on origin is refused unless force is set, in which case the local
// branch is created or reset to HEAD. If the current branch has an upstream
// the new branch tracks it.
func (a *Adapter) CreateBranch(ctx context.Context, path, name string, force bool) error {
	const op = "create branch"
	if err := a.validBranchName(ctx, op, name); err != nil {
		return err
	}

	if !force {
		for _, ref := range []string{"refs/heads/" + name, "refs/remotes/" + Remote + "/" + name} {
			exists, err := a.refExists(ctx, path, ref)
			if err != nil {
				return classify(op, err)
			}
			if exists {
				return result.Errorf(result.BranchAlreadyExists, op, "branch %q already exists", name)
			}
		}
	}

	args := []string{"branch"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, "--no-track", name, "HEAD")
	if err := runGit(ctx, path, args...); err != nil {
		return classify(op, err)
	}

	if upstream := a.upstream(ctx, path); upstream != "" {
		if err := runGit(ctx, path, "branch", "--set-upstream-to="+upstream, name); err != nil {
			log.FromContext(ctx).Debug("setting upstream failed", "branch", name, "upstream", upstream, "err", err)
		}
	}
	return nil
}

// Checkout switches the working copy to name. An "origin/" prefix on name
// is ignored.
//
// With createLocalFromRemote a new local branch is created from
// origin/<name> and set to track it; the local branch must not exist yet.
// Without it the local branch must already exist.
func (a *Adapter) Checkout(ctx context.Context, path, name string, createLocalFromRemote bool) error {
	const op = "checkout"
	name = strings.TrimPrefix(name, Remote+"/")
	if name == "" {
		return result.Errorf(result.InvalidArgument, op, "branch name is required")
	}

	localExists, err := a.refExists(ctx, path, "refs/heads/"+name)
	if err != nil {
		return classify(op, err)
	}

	if !createLocalFromRemote {
		if !localExists {
			return result.Errorf(result.BranchNotFound, op, "no local branch %q", name)
		}
		return classify(op, runGit(ctx, path, "switch", name))
	}

	if localExists {
		return result.Errorf(result.BranchAlreadyExists, op, "local branch %q already exists", name)
	}
	remoteRef := Remote + "/" + name
	remoteExists, err := a.refExists(ctx, path, "refs/remotes/"+remoteRef)
	if err != nil {
		return classify(op, err)
	}
	if !remoteExists {
		return result.Errorf(result.BranchNotFound, op, "no remote branch %q", remoteRef)
	}
	return classify(op, runGit(ctx, path, "switch", "--create", name, "--track", remoteRef))
}

// DeleteBranch deletes the local branch name. Without force, branches that
// are not merged into their upstream or HEAD are kept.
func (a *Adapter) DeleteBranch(ctx context.Context, path, name string, force bool) error {
	const op = "delete branch"
	if name == "" {
		return result.Errorf(result.InvalidArgument, op, "branch name is required")
	}

	current, err := a.CurrentBranch(ctx, path)
	if err != nil {
		return err
	}
	if current == name {
		return result.Errorf(result.CannotDeleteCurrent, op, "%q is checked out", name)
	}

	exists, err := a.refExists(ctx, path, "refs/heads/"+name)
	if err != nil {
		return classify(op, err)
	}
	if !exists {
		return result.Errorf(result.BranchNotFound, op, "no local branch %q", name)
	}

	flag := "-d"
	if force {
		flag = "-D"
	}
	return classify(op, runGit(ctx, path, "branch", flag, name))
}

// refExists reports whether ref resolves to an object.
func (a *Adapter) refExists(ctx context.Context, path, ref string) (bool, error) {
	_, err := outputGit(ctx, path, "rev-parse", "--verify", "--quiet", ref)
	if err == nil {
		return true, nil
	}
	if isExitCode(err, 1) {
		return false, nil
	}
	return false, err
}

// upstream returns the upstream of the current branch (e.g. "origin/main"),
// or "" when there is none.
func (a *Adapter) upstream(ctx context.Context, path string) string {
	out, err := outputGit(ctx, path, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}")
	if err != nil {
		return ""
	}
	return trimOutput(out)
}

func (a *Adapter) validBranchName(ctx context.Context, op, name string) error {
	if name == "" {
		return result.Errorf(result.InvalidArgument, op, "branch name is required")
	}
	if err := runGit(ctx, "", "check-ref-format", "--branch", name); err != nil {
		return result.Errorf(result.InvalidArgument, op, "%q is not a valid branch name", name)
	}
	return nil
}
