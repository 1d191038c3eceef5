// Package batch runs one git operation over many repositories.
//
// A [Runner] visits the repositories of a call in order, one at a time.
// Every repository gets exactly one result and one success or error event,
// and the call ends with a single finish event carrying a summary. A
// failure in one repository is recorded and the runner moves on; only
// invalid arguments abort a call, and they do so before any event is sent.
package batch

import (
	"context"
	"fmt"

	"github.com/raphi011/gitfleet/internal/git"
	"github.com/raphi011/gitfleet/internal/identity"
	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/registry"
	"github.com/raphi011/gitfleet/internal/result"
)

// Operation names used in results, events and summaries.
const (
	OpClone         = "clone"
	OpPull          = "pull"
	OpCommit        = "commit"
	OpPush          = "push"
	OpCommitAndPush = "commit and push"
	OpCreateBranch  = "create branch"
	OpSwitch        = "switch"
	OpDeleteBranch  = "delete branch"
	OpAdd           = "add"
)

// Predictor decides whether a switch or pull can go ahead.
type Predictor interface {
	SwitchConflicts(ctx context.Context, repo *registry.Repo, target string, fromRemote bool) bool
	PullSafe(ctx context.Context, repo *registry.Repo) bool
}

// CompleteFunc is called after the finish event of every batch call.
type CompleteFunc func(op string, results *result.Set)

// Runner executes batch operations.
type Runner struct {
	ops         git.Operations
	predictor   Predictor
	listener    result.Listener
	onComplete  []CompleteFunc
	currentUser identity.Identity
}

// Option configures a Runner.
type Option func(*Runner)

// WithListener sends progress events to l.
func WithListener(l result.Listener) Option {
	return func(r *Runner) { r.listener = l }
}

// WithOnComplete registers hooks run after each call finishes.
func WithOnComplete(hooks ...CompleteFunc) Option {
	return func(r *Runner) { r.onComplete = append(r.onComplete, hooks...) }
}

// WithCurrentUser sets the identity used for commits that do not name an
// author or committer.
func WithCurrentUser(id identity.Identity) Option {
	return func(r *Runner) { r.currentUser = id }
}

// New creates a runner driving ops. predictor guards switches and pulls.
func New(ops git.Operations, predictor Predictor, opts ...Option) *Runner {
	r := &Runner{ops: ops, predictor: predictor}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// task performs one operation on one repository.
// done describes a success, e.g. "pulled".
type task struct {
	op            string
	done          string
	requireCloned bool
	run           func(ctx context.Context, repo *registry.Repo) (result.Payload, error)
}

// execute is the per-call state machine: for each repository it skips
// uncloned ones, runs the task and records the outcome, then emits the
// finish event and calls the completion hooks.
func (r *Runner) execute(ctx context.Context, repos []*registry.Repo, t task) *result.Set {
	l := log.FromContext(ctx)
	set := result.NewSet()
	step := 100 / len(repos)

	for i, repo := range repos {
		var res result.Result
		if t.requireCloned && !repo.Cloned {
			res = result.FromError(repo, t.op, result.New(result.NotCloned, t.op))
		} else {
			payload, err := t.run(ctx, repo)
			res = result.FromError(repo, t.op, err)
			if err == nil {
				res.Payload = payload
				res.Message = fmt.Sprintf("%s: %s", repo.Name, t.done)
			}
		}

		if !res.OK() {
			l.Debug("operation failed", "op", t.op, "repo", repo.Name, "status", res.Status, "msg", res.Message)
		}

		set.Record(res)
		r.emit(result.Event{
			Kind:    kindOf(res),
			Op:      t.op,
			Percent: step * (i + 1),
			Repo:    repo,
			Status:  res.Status,
			Message: res.Message,
		})
	}

	r.emit(result.Event{
		Kind:    result.EventFinish,
		Op:      t.op,
		Percent: 100,
		Status:  finishStatus(set),
		Message: set.Summary(t.op),
	})
	for _, hook := range r.onComplete {
		hook(t.op, set)
	}
	return set
}

func (r *Runner) emit(e result.Event) {
	if r.listener != nil {
		result.Dispatch(r.listener, e)
	}
}

func kindOf(res result.Result) result.EventKind {
	if res.OK() {
		return result.EventSuccess
	}
	return result.EventError
}

// finishStatus is Successful when every repository succeeded, Failed otherwise.
func finishStatus(set *result.Set) result.Status {
	if len(set.Failed()) > 0 {
		return result.Failed
	}
	return result.Successful
}

// validate checks the arguments shared by every call.
func validate(op string, repos []*registry.Repo) error {
	if len(repos) == 0 {
		return result.Errorf(result.InvalidArgument, op, "no repositories given")
	}
	seen := make(map[string]bool, len(repos))
	for i, repo := range repos {
		if repo == nil {
			return result.Errorf(result.InvalidArgument, op, "repository %d is nil", i)
		}
		if repo.ID == "" {
			return result.Errorf(result.InvalidArgument, op, "repository %d has no id", i)
		}
		if seen[repo.ID] {
			return result.Errorf(result.InvalidArgument, op, "repository %q given twice", repo.ID)
		}
		seen[repo.ID] = true
	}
	return nil
}

func required(op, what, value string) error {
	if value == "" {
		return result.Errorf(result.InvalidArgument, op, "%s is required", what)
	}
	return nil
}
