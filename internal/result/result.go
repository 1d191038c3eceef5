package result

import (
	"fmt"
	"slices"
	"strings"

	"github.com/raphi011/gitfleet/internal/registry"
)

// Payload holds the optional data a successful operation produces.
type Payload struct {
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`     // clone destination
	Commit string `json:"commit,omitempty" yaml:"commit,omitempty"` // new commit id
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"` // branch touched by the operation
}

// Result is the immutable outcome of one operation on one repository.
type Result struct {
	Repo    *registry.Repo `json:"-" yaml:"-"`
	RepoID  string         `json:"id" yaml:"id"`
	Name    string         `json:"name" yaml:"name"`
	Op      string         `json:"op" yaml:"op"`
	Status  Status         `json:"status" yaml:"status"`
	Message string         `json:"message,omitempty" yaml:"message,omitempty"`
	Payload Payload        `json:"payload,omitzero" yaml:"payload,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Status.IsSuccess()
}

// FromError builds the result for repo from the error an operation returned.
func FromError(repo *registry.Repo, op string, err error) Result {
	r := Result{
		Repo:   repo,
		RepoID: repo.ID,
		Name:   repo.Name,
		Op:     op,
		Status: StatusOf(err),
	}
	if err != nil {
		r.Message = fmt.Sprintf("%s: %v", repo.Name, err)
	}
	return r
}

// Set collects one result per repository in processing order.
// Recording a second result for the same repository replaces the first.
type Set struct {
	order []string
	byID  map[string]Result
}

// NewSet creates an empty result set.
func NewSet() *Set {
	return &Set{byID: make(map[string]Result)}
}

// Record stores r, keyed by its repository ID.
func (s *Set) Record(r Result) {
	if _, ok := s.byID[r.RepoID]; !ok {
		s.order = append(s.order, r.RepoID)
	}
	s.byID[r.RepoID] = r
}

// Get returns the result for a repository ID.
func (s *Set) Get(id string) (Result, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// Status returns the status recorded for id, or "" when absent.
func (s *Set) Status(id string) Status {
	return s.byID[id].Status
}

// Len returns the number of recorded repositories.
func (s *Set) Len() int {
	return len(s.order)
}

// All returns results in processing order.
func (s *Set) All() []Result {
	out := make([]Result, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Failed returns the non-successful results in processing order.
func (s *Set) Failed() []Result {
	var out []Result
	for _, r := range s.All() {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Counts tallies results per status.
func (s *Set) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, r := range s.byID {
		counts[r.Status]++
	}
	return counts
}

// Statuses returns the statuses in processing order.
func (s *Set) Statuses() []Status {
	out := make([]Status, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Status)
	}
	return out
}

// ClonedPaths maps repository IDs to the paths of successful clones.
func (s *Set) ClonedPaths() map[string]string {
	paths := make(map[string]string)
	for _, r := range s.byID {
		if r.OK() && r.Payload.Path != "" {
			paths[r.RepoID] = r.Payload.Path
		}
	}
	return paths
}

// Summary returns a one-line description such as
// "pull: 2 succeeded, 1 failed (conflict-predicted: 1)".
func (s *Set) Summary(op string) string {
	counts := s.Counts()
	ok := counts[Successful]
	failed := s.Len() - ok
	msg := fmt.Sprintf("%s: %d succeeded, %d failed", op, ok, failed)
	if failed == 0 {
		return msg
	}

	var parts []string
	for _, st := range AllStatuses() {
		if st == Successful || counts[st] == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %d", st, counts[st]))
	}
	slices.Sort(parts)
	return fmt.Sprintf("%s (%s)", msg, strings.Join(parts, ", "))
}
