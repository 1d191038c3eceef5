package result

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/gitfleet/internal/registry"
)

func TestStatusOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Successful, StatusOf(nil))
	assert.Equal(t, Failed, StatusOf(errors.New("boom")))
	assert.Equal(t, NotMerged, StatusOf(New(NotMerged, "delete branch")))
	assert.Equal(t, TransportFailure, StatusOf(fmt.Errorf("outer: %w", Wrap(TransportFailure, "push", errors.New("rejected")))))
}

func TestErrorIs(t *testing.T) {
	t.Parallel()

	err := Errorf(BranchNotFound, "checkout", "no branch %q", "x")
	assert.ErrorIs(t, err, ErrBranchNotFound)
	assert.NotErrorIs(t, err, ErrNotMerged)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), ErrBranchNotFound)

	detail := errors.New("detail")
	assert.ErrorIs(t, Wrap(Failed, "op", detail), detail)
	assert.NoError(t, Wrap(Failed, "op", nil))
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "push: "+TransportFailure.Description()+": rejected",
		Wrap(TransportFailure, "push", errors.New("rejected")).Error())
	assert.Equal(t, "pull: "+NotCloned.Description(), New(NotCloned, "pull").Error())
	assert.Equal(t, Failed.Description(), ErrFailed.Error())
}

func TestStatusIsSuccess(t *testing.T) {
	t.Parallel()

	for _, s := range AllStatuses() {
		assert.Equal(t, s == Successful, s.IsSuccess(), s)
		assert.NotEmpty(t, s.Description(), s)
	}
}

func repo(name string) *registry.Repo {
	return &registry.Repo{ID: "id-" + name, Name: name}
}

func TestFromError(t *testing.T) {
	t.Parallel()

	ok := FromError(repo("api"), "pull", nil)
	assert.True(t, ok.OK())
	assert.Empty(t, ok.Message)
	assert.Equal(t, "id-api", ok.RepoID)

	failed := FromError(repo("web"), "pull", New(NotCloned, "pull"))
	assert.False(t, failed.OK())
	assert.Equal(t, NotCloned, failed.Status)
	assert.Contains(t, failed.Message, "web: ")
}

func TestSet(t *testing.T) {
	t.Parallel()

	s := NewSet()
	s.Record(FromError(repo("a"), "clone", nil))
	s.Record(FromError(repo("b"), "clone", New(TransportFailure, "clone")))
	s.Record(FromError(repo("c"), "clone", New(AlreadyCloned, "clone")))

	cloned := FromError(repo("a"), "clone", nil)
	cloned.Payload.Path = "/ws/a"
	s.Record(cloned)

	require.Equal(t, 3, s.Len())
	assert.Equal(t, []Status{Successful, TransportFailure, AlreadyCloned}, s.Statuses())
	assert.Equal(t, map[string]string{"id-a": "/ws/a"}, s.ClonedPaths())
	assert.Len(t, s.Failed(), 2)
	assert.Equal(t, map[Status]int{Successful: 1, TransportFailure: 1, AlreadyCloned: 1}, s.Counts())
	assert.Equal(t, "clone: 1 succeeded, 2 failed (already-cloned: 1, transport-failure: 1)", s.Summary("clone"))

	got, ok := s.Get("id-b")
	require.True(t, ok)
	assert.Equal(t, "b", got.Name)
	assert.Equal(t, Status(""), s.Status("missing"))
}

func TestSummary_AllSucceeded(t *testing.T) {
	t.Parallel()

	s := NewSet()
	s.Record(FromError(repo("a"), "push", nil))
	assert.Equal(t, "push: 1 succeeded, 0 failed", s.Summary("push"))
}

func TestListeners(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	var kinds []EventKind
	l := Multi(rec, nil, ListenerFunc(func(e Event) { kinds = append(kinds, e.Kind) }))

	Dispatch(l, Event{Kind: EventSuccess, Percent: 50})
	Dispatch(l, Event{Kind: EventError, Percent: 100})
	Dispatch(l, Event{Kind: EventFinish, Percent: 100})

	assert.Equal(t, []EventKind{EventSuccess, EventError, EventFinish}, kinds)
	assert.Len(t, rec.Events(), 3)
	assert.Equal(t, 1, rec.Count(EventFinish))
}
