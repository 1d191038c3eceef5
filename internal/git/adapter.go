package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphi011/gitfleet/internal/branch"
	"github.com/raphi011/gitfleet/internal/identity"
	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/result"
)

// Remote is the remote every working copy is cloned from and published to.
const Remote = "origin"

// Operations is the set of primitives the batch runner drives.
// Each call acts on exactly one working copy.
type Operations interface {
	Clone(ctx context.Context, remoteURL, dest string) error
	FetchAndDiff(ctx context.Context, path string) ([]string, error)
	Commit(ctx context.Context, path string, opts CommitOptions) (string, error)
	Push(ctx context.Context, path string) error
	Pull(ctx context.Context, path string) error
	ListBranches(ctx context.Context, path string, filter branch.Filter) ([]branch.Branch, error)
	CreateBranch(ctx context.Context, path, name string, force bool) error
	Checkout(ctx context.Context, path, name string, createLocalFromRemote bool) error
	DeleteBranch(ctx context.Context, path, name string, force bool) error
	CurrentBranch(ctx context.Context, path string) (string, error)
	ModifiedPaths(ctx context.Context, path string) ([]string, error)
	WorkingPaths(ctx context.Context, path string) ([]string, error)
	AddPaths(ctx context.Context, path string, files []string) error
}

// CommitOptions describes a commit.
type CommitOptions struct {
	Message string
	// StageAllTracked commits every modified or deleted tracked file.
	// Untracked files are never included.
	StageAllTracked bool
	Author          identity.Identity
	Committer       identity.Identity
}

// Adapter runs git primitives through the git CLI.
// It holds no per-repository state and is safe for concurrent use.
type Adapter struct{}

var _ Operations = (*Adapter)(nil)
var _ branch.Lister = (*Adapter)(nil)

// NewAdapter creates an adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// IsWorkingCopy reports whether dir is the top level of a git working copy.
// A directory nested inside another repository does not count.
func (a *Adapter) IsWorkingCopy(ctx context.Context, dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return false
	}
	out, err := outputGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return false
	}
	return samePath(trimOutput(out), dir)
}

// Clone clones remoteURL into dest.
//
// The clone lands in a temporary sibling of dest and is renamed into place
// once complete, so an interrupted clone never leaves a partial working copy.
// dest may be missing or an empty directory.
func (a *Adapter) Clone(ctx context.Context, remoteURL, dest string) error {
	const op = "clone"
	if remoteURL == "" || dest == "" {
		return result.Errorf(result.InvalidArgument, op, "remote url and destination are required")
	}

	dest, err := filepath.Abs(dest)
	if err != nil {
		return result.Wrap(result.InvalidArgument, op, err)
	}

	if a.IsWorkingCopy(ctx, dest) {
		return result.Errorf(result.AlreadyCloned, op, "%s is already a working copy", dest)
	}
	if err := requireEmptyOrMissing(dest); err != nil {
		return result.Wrap(result.InvalidArgument, op, err)
	}

	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return result.Wrap(result.Failed, op, fmt.Errorf("create parent directory: %w", err))
	}

	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dest)+".clone-*")
	if err != nil {
		return result.Wrap(result.Failed, op, fmt.Errorf("create temp directory: %w", err))
	}
	defer os.RemoveAll(tmp) // no-op after a successful rename

	if err := runGit(ctx, "", "clone", "--", remoteURL, tmp); err != nil {
		log.FromContext(ctx).Debug("clone failed", "url", remoteURL, "err", err)
		return classifyTransport(op, err)
	}

	// rename(2) cannot replace a non-empty directory, and the empty one is ours to drop.
	_ = os.Remove(dest)
	if err := os.Rename(tmp, dest); err != nil {
		return result.Wrap(result.Failed, op, fmt.Errorf("move clone into place: %w", err))
	}
	return nil
}

func requireEmptyOrMissing(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read destination: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("destination %s exists and is not empty", dir)
	}
	return nil
}
