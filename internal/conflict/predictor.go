// Package conflict predicts whether a branch switch or a pull would collide
// with local changes, without touching the working tree or the index.
//
// Switch prediction compares the HEAD and target commit trees in memory with
// go-git and intersects the changed paths with the locally changed paths.
// Pull prediction fetches the upstream and intersects the paths it changes
// with the locally modified tracked paths.
//
// The two predictions err in opposite directions. A switch whose outcome
// cannot be determined is reported as conflicting. A pull whose outcome
// cannot be determined is reported as safe, and the pull itself reports
// whatever went wrong.
package conflict

import (
	"context"
	"fmt"
	"slices"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/registry"
)

// Remote is the remote whose tracking branches remote switches start from.
const Remote = "origin"

// Source supplies the read-only git queries the predictor needs.
type Source interface {
	FetchAndDiff(ctx context.Context, path string) ([]string, error)
	ModifiedPaths(ctx context.Context, path string) ([]string, error)
	WorkingPaths(ctx context.Context, path string) ([]string, error)
}

// Predictor predicts switch and pull conflicts.
type Predictor struct {
	src Source
}

// New creates a predictor reading local state through src.
func New(src Source) *Predictor {
	return &Predictor{src: src}
}

// SwitchConflicts reports whether checking out target would touch a path
// with local changes. target is a local branch, or a branch on origin when
// fromRemote is set. Any failure to decide counts as a conflict.
func (p *Predictor) SwitchConflicts(ctx context.Context, repo *registry.Repo, target string, fromRemote bool) bool {
	if repo == nil || !repo.Cloned {
		return true
	}

	overlap, err := p.SwitchOverlap(ctx, repo.Path, target, fromRemote)
	if err != nil {
		log.FromContext(ctx).Debug("switch prediction failed, assuming conflict", "repo", repo.Name, "target", target, "err", err)
		return true
	}
	if len(overlap) > 0 {
		log.FromContext(ctx).Debug("switch conflict predicted", "repo", repo.Name, "target", target, "paths", overlap)
	}
	return len(overlap) > 0
}

// PullSafe reports whether pulling would leave local modifications alone.
// Any failure to decide counts as safe.
func (p *Predictor) PullSafe(ctx context.Context, repo *registry.Repo) bool {
	if repo == nil || !repo.Cloned {
		return true
	}

	overlap, err := p.PullOverlap(ctx, repo.Path)
	if err != nil {
		log.FromContext(ctx).Debug("pull prediction failed, assuming safe", "repo", repo.Name, "err", err)
		return true
	}
	if len(overlap) > 0 {
		log.FromContext(ctx).Debug("pull conflict predicted", "repo", repo.Name, "paths", overlap)
	}
	return len(overlap) == 0
}

// SwitchOverlap returns the locally changed paths (modified, staged, deleted
// or untracked) that also differ between HEAD and target.
func (p *Predictor) SwitchOverlap(ctx context.Context, path, target string, fromRemote bool) ([]string, error) {
	changed, err := TreeChanges(path, targetRef(target, fromRemote))
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return nil, nil
	}

	local, err := p.src.WorkingPaths(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("list working paths: %w", err)
	}
	return intersect(changed, local), nil
}

// PullOverlap fetches the upstream and returns the locally modified tracked
// paths that the upstream also changes.
func (p *Predictor) PullOverlap(ctx context.Context, path string) ([]string, error) {
	incoming, err := p.src.FetchAndDiff(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if len(incoming) == 0 {
		return nil, nil
	}

	local, err := p.src.ModifiedPaths(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("list modified paths: %w", err)
	}
	return intersect(incoming, local), nil
}

func targetRef(target string, fromRemote bool) plumbing.ReferenceName {
	if fromRemote {
		return plumbing.NewRemoteReferenceName(Remote, target)
	}
	return plumbing.NewBranchReferenceName(target)
}

// TreeChanges returns the sorted paths that differ between the trees of HEAD
// and ref in the repository at path. Trees are read from the object store
// only, so the working tree and the index are never consulted.
func TreeChanges(path string, ref plumbing.ReferenceName) ([]string, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	headTree, err := commitTree(repo, head.Hash())
	if err != nil {
		return nil, fmt.Errorf("read HEAD tree: %w", err)
	}

	target, err := repo.Reference(ref, true)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref, err)
	}
	targetTree, err := commitTree(repo, target.Hash())
	if err != nil {
		return nil, fmt.Errorf("read %s tree: %w", ref, err)
	}

	changes, err := object.DiffTree(headTree, targetTree)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	var paths []string
	for _, c := range changes {
		if c.From.Name != "" {
			paths = append(paths, c.From.Name)
		}
		if c.To.Name != "" {
			paths = append(paths, c.To.Name)
		}
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func commitTree(repo *gogit.Repository, hash plumbing.Hash) (*object.Tree, error) {
	commit, err := repo.CommitObject(hash)
	if err != nil {
		return nil, err
	}
	return commit.Tree()
}

// intersect returns the elements of a also present in b, in a's order.
func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, s := range b {
		set[s] = true
	}
	var out []string
	for _, s := range a {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}
