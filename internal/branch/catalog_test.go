package branch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/gitfleet/internal/registry"
	"github.com/raphi011/gitfleet/internal/result"
)

// fakeLister serves fixed branch lists keyed by repository path.
type fakeLister struct {
	branches map[string][]Branch
	failing  map[string]bool
}

func (f fakeLister) ListBranches(_ context.Context, path string, filter Filter) ([]Branch, error) {
	if f.failing[path] {
		return nil, errors.New("cannot list")
	}
	var out []Branch
	for _, b := range f.branches[path] {
		if filter.Includes(b.Type) {
			out = append(out, b)
		}
	}
	return out, nil
}

func locals(names ...string) []Branch {
	out := make([]Branch, len(names))
	for i, n := range names {
		out[i] = Branch{Name: n, Type: Local}
	}
	return out
}

func repo(name string) *registry.Repo {
	return &registry.Repo{ID: name, Name: name, Path: "/ws/" + name, Cloned: true}
}

func TestCatalogOf(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	lister := fakeLister{branches: map[string][]Branch{
		"/ws/api": {
			{Name: "main", Type: Remote},
			{Name: "main", Type: Local},
			{Name: "dev", Type: Local},
			{Name: "main", Type: Local},
		},
	}}
	c := NewCatalog(lister, 0)

	got, err := c.Of(ctx, repo("api"), FilterAll)
	require.NoError(t, err)
	assert.Equal(t, []Branch{
		{Name: "dev", Type: Local},
		{Name: "main", Type: Local},
		{Name: "main", Type: Remote},
	}, got)

	_, err = c.Of(ctx, &registry.Repo{Name: "fresh"}, FilterAll)
	assert.ErrorIs(t, err, result.ErrNotCloned)

	_, err = c.Of(ctx, nil, FilterAll)
	assert.ErrorIs(t, err, result.ErrInvalidArgument)
}

func TestCatalogAcross_Intersection(t *testing.T) {
	t.Parallel()

	lister := fakeLister{branches: map[string][]Branch{
		"/ws/a": locals("A", "B", "C"),
		"/ws/b": locals("B", "C"),
		"/ws/c": locals("C"),
	}}
	c := NewCatalog(lister, 2)

	got, err := c.Across(context.Background(), []*registry.Repo{repo("a"), repo("b"), repo("c")}, FilterLocal, true)
	require.NoError(t, err)
	assert.Equal(t, locals("C"), got)
}

func TestCatalogAcross_Union(t *testing.T) {
	t.Parallel()

	lister := fakeLister{branches: map[string][]Branch{
		"/ws/a": locals("main", "x"),
		"/ws/b": locals("main", "y"),
	}}
	c := NewCatalog(lister, 0)

	got, err := c.Across(context.Background(), []*registry.Repo{repo("a"), repo("b")}, FilterLocal, false)
	require.NoError(t, err)
	assert.Equal(t, locals("main", "x", "y"), got)
}

func TestCatalogAcross_EmptyAccumulatorAbsorbs(t *testing.T) {
	t.Parallel()

	// The first repository has no branches, so the second one's set is taken
	// whole instead of intersecting down to nothing.
	lister := fakeLister{branches: map[string][]Branch{
		"/ws/empty": nil,
		"/ws/b":     locals("main", "dev"),
		"/ws/c":     locals("main"),
	}}
	c := NewCatalog(lister, 0)

	got, err := c.Across(context.Background(), []*registry.Repo{repo("empty"), repo("b")}, FilterLocal, true)
	require.NoError(t, err)
	assert.Equal(t, locals("dev", "main"), got)

	// Disjoint sets empty the accumulator, and the next repository restarts it
	lister.branches["/ws/d"] = locals("other")
	got, err = c.Across(context.Background(), []*registry.Repo{repo("c"), repo("d"), repo("b")}, FilterLocal, true)
	require.NoError(t, err)
	assert.Equal(t, locals("dev", "main"), got)
}

func TestCatalogAcross_SkipsUnclonedAndFailures(t *testing.T) {
	t.Parallel()

	lister := fakeLister{
		branches: map[string][]Branch{
			"/ws/a": locals("main", "dev"),
			"/ws/b": locals("main"),
		},
		failing: map[string]bool{"/ws/broken": true},
	}
	c := NewCatalog(lister, 0)

	fresh := &registry.Repo{ID: "fresh", Name: "fresh"}
	got, err := c.Across(context.Background(), []*registry.Repo{fresh, repo("a"), repo("b")}, FilterLocal, true)
	require.NoError(t, err)
	assert.Equal(t, locals("main"), got)

	got, err = c.Across(context.Background(), []*registry.Repo{repo("a"), repo("broken")}, FilterLocal, false)
	require.NoError(t, err)
	assert.Equal(t, locals("dev", "main"), got)
}

func TestCatalogAcross_InvalidArguments(t *testing.T) {
	t.Parallel()

	c := NewCatalog(fakeLister{}, 0)
	_, err := c.Across(context.Background(), []*registry.Repo{repo("a"), nil}, FilterAll, false)
	assert.ErrorIs(t, err, result.ErrInvalidArgument)

	_, err = c.Across(context.Background(), nil, FilterAll, false)
	assert.ErrorIs(t, err, result.ErrInvalidArgument)
}
