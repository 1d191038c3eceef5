package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/raphi011/gitfleet/internal/branch"
	"github.com/raphi011/gitfleet/internal/git"
	"github.com/raphi011/gitfleet/internal/identity"
	"github.com/raphi011/gitfleet/internal/registry"
	"github.com/raphi011/gitfleet/internal/result"
)

// CommitRequest describes the commit made in every repository.
// Unset identities fall back to the runner's current user.
type CommitRequest struct {
	Message         string
	StageAllTracked bool
	Author          identity.Identity
	Committer       identity.Identity
}

func (r *Runner) commitOptions(req CommitRequest) git.CommitOptions {
	return git.CommitOptions{
		Message:         req.Message,
		StageAllTracked: req.StageAllTracked,
		Author:          identity.Resolve(req.Author, r.currentUser),
		Committer:       identity.Resolve(req.Committer, r.currentUser),
	}
}

// Clone clones every repository into destRoot/<name>.
// Handles are not modified: successful results carry the new path in
// Payload.Path for the caller to merge.
func (r *Runner) Clone(ctx context.Context, repos []*registry.Repo, destRoot string) (*result.Set, error) {
	if err := validate(OpClone, repos); err != nil {
		return nil, err
	}
	if err := required(OpClone, "destination", destRoot); err != nil {
		return nil, err
	}

	return r.execute(ctx, repos, task{
		op:   OpClone,
		done: "cloned",
		run: func(ctx context.Context, repo *registry.Repo) (result.Payload, error) {
			if repo.Cloned {
				return result.Payload{}, result.Errorf(result.AlreadyCloned, OpClone, "already cloned at %s", repo.Path)
			}
			if repo.RemoteURL == "" {
				return result.Payload{}, result.Errorf(result.InvalidArgument, OpClone, "no remote url")
			}

			dest := filepath.Join(destRoot, repo.Name)
			if err := r.ops.Clone(ctx, repo.RemoteURL, dest); err != nil {
				return result.Payload{}, err
			}
			return result.Payload{Path: dest}, nil
		},
	}), nil
}

// Pull updates every repository from its upstream, skipping repositories
// whose local modifications overlap the incoming changes.
func (r *Runner) Pull(ctx context.Context, repos []*registry.Repo) (*result.Set, error) {
	if err := validate(OpPull, repos); err != nil {
		return nil, err
	}

	return r.execute(ctx, repos, task{
		op:            OpPull,
		done:          "pulled",
		requireCloned: true,
		run: func(ctx context.Context, repo *registry.Repo) (result.Payload, error) {
			if !r.predictor.PullSafe(ctx, repo) {
				return result.Payload{}, result.Errorf(result.ConflictPredicted, OpPull, "local changes overlap incoming changes")
			}
			return result.Payload{}, r.ops.Pull(ctx, repo.Path)
		},
	}), nil
}

// Commit records a commit in every repository.
func (r *Runner) Commit(ctx context.Context, repos []*registry.Repo, req CommitRequest) (*result.Set, error) {
	if err := validate(OpCommit, repos); err != nil {
		return nil, err
	}
	if err := required(OpCommit, "commit message", strings.TrimSpace(req.Message)); err != nil {
		return nil, err
	}
	opts := r.commitOptions(req)

	return r.execute(ctx, repos, task{
		op:            OpCommit,
		done:          "committed",
		requireCloned: true,
		run: func(ctx context.Context, repo *registry.Repo) (result.Payload, error) {
			id, err := r.ops.Commit(ctx, repo.Path, opts)
			if err != nil {
				return result.Payload{}, err
			}
			return result.Payload{Commit: id}, nil
		},
	}), nil
}

// Push publishes the current branch of every repository.
func (r *Runner) Push(ctx context.Context, repos []*registry.Repo) (*result.Set, error) {
	if err := validate(OpPush, repos); err != nil {
		return nil, err
	}

	return r.execute(ctx, repos, task{
		op:            OpPush,
		done:          "pushed",
		requireCloned: true,
		run: func(ctx context.Context, repo *registry.Repo) (result.Payload, error) {
			return result.Payload{}, r.ops.Push(ctx, repo.Path)
		},
	}), nil
}

// CommitAndPush commits and then pushes in every repository. A repository
// whose commit fails is not pushed.
func (r *Runner) CommitAndPush(ctx context.Context, repos []*registry.Repo, req CommitRequest) (*result.Set, error) {
	if err := validate(OpCommitAndPush, repos); err != nil {
		return nil, err
	}
	if err := required(OpCommitAndPush, "commit message", strings.TrimSpace(req.Message)); err != nil {
		return nil, err
	}
	opts := r.commitOptions(req)

	return r.execute(ctx, repos, task{
		op:            OpCommitAndPush,
		done:          "committed and pushed",
		requireCloned: true,
		run: func(ctx context.Context, repo *registry.Repo) (result.Payload, error) {
			id, err := r.ops.Commit(ctx, repo.Path, opts)
			if err != nil {
				return result.Payload{}, err
			}
			if err := r.ops.Push(ctx, repo.Path); err != nil {
				return result.Payload{}, fmt.Errorf("committed %s: %w", shortID(id), err)
			}
			return result.Payload{Commit: id}, nil
		},
	}), nil
}

// CreateBranch creates name at HEAD in every repository without switching to it.
func (r *Runner) CreateBranch(ctx context.Context, repos []*registry.Repo, name string, force bool) (*result.Set, error) {
	if err := validate(OpCreateBranch, repos); err != nil {
		return nil, err
	}
	if err := required(OpCreateBranch, "branch name", name); err != nil {
		return nil, err
	}

	return r.execute(ctx, repos, task{
		op:            OpCreateBranch,
		done:          "created branch " + name,
		requireCloned: true,
		run: func(ctx context.Context, repo *registry.Repo) (result.Payload, error) {
			if err := r.ops.CreateBranch(ctx, repo.Path, name, force); err != nil {
				return result.Payload{}, err
			}
			return result.Payload{Branch: name}, nil
		},
	}), nil
}

// SwitchTo checks out name in every repository. With fromRemote a local
// branch is created from origin/<name>.
//
// Per repository the checks run in order: already on the branch, branch
// missing, local branch in the way of a remote switch, predicted conflict.
// The first one that applies decides the status and nothing is checked out.
func (r *Runner) SwitchTo(ctx context.Context, repos []*registry.Repo, name string, fromRemote bool) (*result.Set, error) {
	if err := validate(OpSwitch, repos); err != nil {
		return nil, err
	}
	name = strings.TrimPrefix(name, git.Remote+"/")
	if err := required(OpSwitch, "branch name", name); err != nil {
		return nil, err
	}

	return r.execute(ctx, repos, task{
		op:            OpSwitch,
		done:          "switched to " + name,
		requireCloned: true,
		run: func(ctx context.Context, repo *registry.Repo) (result.Payload, error) {
			if err := r.checkSwitch(ctx, repo, name, fromRemote); err != nil {
				return result.Payload{}, err
			}
			if err := r.ops.Checkout(ctx, repo.Path, name, fromRemote); err != nil {
				return result.Payload{}, err
			}
			return result.Payload{Branch: name}, nil
		},
	}), nil
}

func (r *Runner) checkSwitch(ctx context.Context, repo *registry.Repo, name string, fromRemote bool) error {
	current, err := r.ops.CurrentBranch(ctx, repo.Path)
	if err != nil {
		return err
	}
	if !fromRemote && current == name {
		return result.Errorf(result.BranchCurrentlyCheckedOut, OpSwitch, "already on %s", name)
	}

	branches, err := r.ops.ListBranches(ctx, repo.Path, branch.FilterAll)
	if err != nil {
		return err
	}
	local := slices.Contains(branches, branch.Branch{Name: name, Type: branch.Local})
	remote := slices.Contains(branches, branch.Branch{Name: name, Type: branch.Remote})

	switch {
	case !fromRemote && !local:
		return result.Errorf(result.BranchNotFound, OpSwitch, "no local branch %s", name)
	case fromRemote && !remote:
		return result.Errorf(result.BranchNotFound, OpSwitch, "no remote branch %s/%s", git.Remote, name)
	case fromRemote && local:
		return result.Errorf(result.BranchAlreadyExists, OpSwitch, "local branch %s already exists", name)
	}

	if r.predictor.SwitchConflicts(ctx, repo, name, fromRemote) {
		return result.Errorf(result.ConflictPredicted, OpSwitch, "local changes would be overwritten by %s", name)
	}
	return nil
}

// DeleteBranch deletes the local branch name in every repository.
func (r *Runner) DeleteBranch(ctx context.Context, repos []*registry.Repo, name string, force bool) (*result.Set, error) {
	if err := validate(OpDeleteBranch, repos); err != nil {
		return nil, err
	}
	if err := required(OpDeleteBranch, "branch name", name); err != nil {
		return nil, err
	}

	return r.execute(ctx, repos, task{
		op:            OpDeleteBranch,
		done:          "deleted branch " + name,
		requireCloned: true,
		run: func(ctx context.Context, repo *registry.Repo) (result.Payload, error) {
			if err := r.ops.DeleteBranch(ctx, repo.Path, name, force); err != nil {
				return result.Payload{}, err
			}
			return result.Payload{Branch: name}, nil
		},
	}), nil
}

// AddPaths stages the given repository-relative paths in every repository.
func (r *Runner) AddPaths(ctx context.Context, repos []*registry.Repo, paths []string) (*result.Set, error) {
	if err := validate(OpAdd, repos); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, result.Errorf(result.InvalidArgument, OpAdd, "no paths given")
	}

	return r.execute(ctx, repos, task{
		op:            OpAdd,
		done:          fmt.Sprintf("added %d path(s)", len(paths)),
		requireCloned: true,
		run: func(ctx context.Context, repo *registry.Repo) (result.Payload, error) {
			return result.Payload{}, r.ops.AddPaths(ctx, repo.Path, paths)
		},
	}), nil
}

// AddUntracked stages every untracked file in every repository.
// Repositories without untracked files succeed without changes.
func (r *Runner) AddUntracked(ctx context.Context, repos []*registry.Repo) (*result.Set, error) {
	if err := validate(OpAdd, repos); err != nil {
		return nil, err
	}

	return r.execute(ctx, repos, task{
		op:            OpAdd,
		done:          "added untracked files",
		requireCloned: true,
		run: func(ctx context.Context, repo *registry.Repo) (result.Payload, error) {
			untracked, err := r.untracked(ctx, repo.Path)
			if err != nil || len(untracked) == 0 {
				return result.Payload{}, err
			}
			return result.Payload{}, r.ops.AddPaths(ctx, repo.Path, untracked)
		},
	}), nil
}

// untracked returns working paths that are not tracked modifications.
func (r *Runner) untracked(ctx context.Context, path string) ([]string, error) {
	working, err := r.ops.WorkingPaths(ctx, path)
	if err != nil {
		return nil, err
	}
	modified, err := r.ops.ModifiedPaths(ctx, path)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(working, func(p string) bool {
		return slices.Contains(modified, p)
	}), nil
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
