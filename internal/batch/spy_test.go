package batch

import (
	"context"
	"slices"
	"sync"

	"github.com/raphi011/gitfleet/internal/branch"
	"github.com/raphi011/gitfleet/internal/git"
	"github.com/raphi011/gitfleet/internal/registry"
	"github.com/raphi011/gitfleet/internal/result"
)

// spyRepo is the fake state of one working copy.
type spyRepo struct {
	current  string
	branches []branch.Branch
	working  []string
	modified []string
}

// spyOps records calls and simulates working copies keyed by path.
type spyOps struct {
	mu      sync.Mutex
	calls   map[string]int
	repos   map[string]*spyRepo
	errs    map[string]error // "<op> <path>" -> error
	commits []git.CommitOptions
}

var _ git.Operations = (*spyOps)(nil)

func newSpy() *spyOps {
	return &spyOps{
		calls: make(map[string]int),
		repos: make(map[string]*spyRepo),
		errs:  make(map[string]error),
	}
}

func (s *spyOps) addRepo(path, current string, branches ...branch.Branch) *spyRepo {
	r := &spyRepo{current: current, branches: branches}
	s.repos[path] = r
	return r
}

func (s *spyOps) failWith(op, path string, err error) {
	s.errs[op+" "+path] = err
}

func (s *spyOps) record(op, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	return s.errs[op+" "+path]
}

func (s *spyOps) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *spyOps) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *spyOps) Clone(_ context.Context, _, dest string) error {
	return s.record("clone", dest)
}

func (s *spyOps) FetchAndDiff(_ context.Context, path string) ([]string, error) {
	return nil, s.record("fetch", path)
}

func (s *spyOps) Commit(_ context.Context, path string, opts git.CommitOptions) (string, error) {
	if err := s.record("commit", path); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.commits = append(s.commits, opts)
	s.mu.Unlock()
	return "0123456789abcdef0123456789abcdef01234567", nil
}

func (s *spyOps) Push(_ context.Context, path string) error {
	return s.record("push", path)
}

func (s *spyOps) Pull(_ context.Context, path string) error {
	return s.record("pull", path)
}

func (s *spyOps) ListBranches(_ context.Context, path string, filter branch.Filter) ([]branch.Branch, error) {
	if err := s.record("list", path); err != nil {
		return nil, err
	}
	var out []branch.Branch
	for _, b := range s.repos[path].branches {
		if filter.Includes(b.Type) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *spyOps) CreateBranch(_ context.Context, path, name string, force bool) error {
	if err := s.record("create", path); err != nil {
		return err
	}
	r := s.repos[path]
	b := branch.Branch{Name: name, Type: branch.Local}
	for _, existing := range r.branches {
		if existing.Name == name && !force {
			return result.Errorf(result.BranchAlreadyExists, "create branch", "branch %q already exists", name)
		}
	}
	if !slices.Contains(r.branches, b) {
		r.branches = append(r.branches, b)
	}
	return nil
}

func (s *spyOps) Checkout(_ context.Context, path, name string, _ bool) error {
	if err := s.record("checkout", path); err != nil {
		return err
	}
	s.repos[path].current = name
	return nil
}

func (s *spyOps) DeleteBranch(_ context.Context, path, _ string, _ bool) error {
	return s.record("delete", path)
}

func (s *spyOps) CurrentBranch(_ context.Context, path string) (string, error) {
	if err := s.record("current", path); err != nil {
		return "", err
	}
	return s.repos[path].current, nil
}

func (s *spyOps) ModifiedPaths(_ context.Context, path string) ([]string, error) {
	if err := s.record("modified", path); err != nil {
		return nil, err
	}
	return s.repos[path].modified, nil
}

func (s *spyOps) WorkingPaths(_ context.Context, path string) ([]string, error) {
	if err := s.record("working", path); err != nil {
		return nil, err
	}
	return s.repos[path].working, nil
}

func (s *spyOps) AddPaths(_ context.Context, path string, _ []string) error {
	return s.record("add", path)
}

// fakePredictor answers from fixed sets of conflicting paths.
type fakePredictor struct {
	switchConflicts map[string]bool // repo path
	pullConflicts   map[string]bool // repo path
}

func (p fakePredictor) SwitchConflicts(_ context.Context, repo *registry.Repo, _ string, _ bool) bool {
	return p.switchConflicts[repo.Path]
}

func (p fakePredictor) PullSafe(_ context.Context, repo *registry.Repo) bool {
	return !p.pullConflicts[repo.Path]
}

func cloned(name string) *registry.Repo {
	return &registry.Repo{ID: "id-" + name, Name: name, Path: "/ws/" + name, Cloned: true}
}

func uncloned(name string) *registry.Repo {
	return &registry.Repo{ID: "id-" + name, Name: name, RemoteURL: "https://example.com/" + name + ".git"}
}
