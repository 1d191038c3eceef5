package branch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/registry"
	"github.com/raphi011/gitfleet/internal/result"
)

// Lister lists the branches of the working copy at path.
type Lister interface {
	ListBranches(ctx context.Context, path string, filter Filter) ([]Branch, error)
}

// DefaultConcurrency bounds parallel listing in Across.
const DefaultConcurrency = 8

// Catalog enumerates branches through a Lister.
type Catalog struct {
	lister      Lister
	concurrency int
}

// NewCatalog creates a catalog. concurrency <= 0 uses DefaultConcurrency.
func NewCatalog(lister Lister, concurrency int) *Catalog {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Catalog{lister: lister, concurrency: concurrency}
}

// Of returns the branches of one repository, deduplicated by (name, type)
// and in display order.
func (c *Catalog) Of(ctx context.Context, repo *registry.Repo, filter Filter) ([]Branch, error) {
	if repo == nil {
		return nil, result.New(result.InvalidArgument, "list branches")
	}
	if !repo.Cloned {
		return nil, result.New(result.NotCloned, "list branches")
	}

	branches, err := c.lister.ListBranches(ctx, repo.Path, filter)
	if err != nil {
		return nil, err
	}
	branches = Dedupe(branches)
	Sort(branches)
	return branches, nil
}

// Across combines the branch sets of repos.
//
// With intersectOnly false the result is the union over all cloned repos.
// With intersectOnly true each repository's branches are intersected into
// the accumulator, except that an empty accumulator takes the repository's
// branches as they are. Intersection therefore starts with the second
// repository, and restarts after any step that leaves the accumulator empty.
//
// Uncloned repositories are skipped. A repository whose branches cannot be
// listed contributes an empty set.
func (c *Catalog) Across(ctx context.Context, repos []*registry.Repo, filter Filter, intersectOnly bool) ([]Branch, error) {
	if len(repos) == 0 {
		return nil, result.Errorf(result.InvalidArgument, "list branches", "no repositories given")
	}
	for _, repo := range repos {
		if repo == nil {
			return nil, result.Errorf(result.InvalidArgument, "list branches", "nil repository in collection")
		}
	}

	l := log.FromContext(ctx)
	lists := c.listAll(ctx, repos, filter)

	acc := NewSet()
	for i, repo := range repos {
		if !repo.Cloned {
			l.Debug("skipping uncloned repo", "repo", repo.Name)
			continue
		}
		merge(acc, lists[i], intersectOnly)
	}
	return acc.Sorted(), nil
}

// merge folds branches into acc.
func merge(acc *Set, branches []Branch, intersectOnly bool) {
	if intersectOnly && !acc.IsEmpty() {
		acc.Retain(branches)
		return
	}
	acc.Add(branches...)
}

// listAll lists branches of every cloned repo in parallel.
// Results are indexed like repos so merging stays in input order.
func (c *Catalog) listAll(ctx context.Context, repos []*registry.Repo, filter Filter) [][]Branch {
	l := log.FromContext(ctx)
	lists := make([][]Branch, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, repo := range repos {
		if !repo.Cloned {
			continue
		}
		g.Go(func() error {
			branches, err := c.lister.ListBranches(gctx, repo.Path, filter)
			if err != nil {
				l.Debug("listing branches failed", "repo", repo.Name, "err", err)
				return nil // Non-fatal, the repo contributes no branches
			}
			lists[i] = Dedupe(branches)
			return nil
		})
	}

	_ = g.Wait() // Always nil
	return lists
}
