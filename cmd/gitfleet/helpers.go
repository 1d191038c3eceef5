package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/raphi011/gitfleet/internal/batch"
	"github.com/raphi011/gitfleet/internal/config"
	"github.com/raphi011/gitfleet/internal/conflict"
	"github.com/raphi011/gitfleet/internal/git"
	"github.com/raphi011/gitfleet/internal/hooks"
	"github.com/raphi011/gitfleet/internal/identity"
	"github.com/raphi011/gitfleet/internal/lock"
	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/output"
	"github.com/raphi011/gitfleet/internal/registry"
	"github.com/raphi011/gitfleet/internal/result"
	"github.com/raphi011/gitfleet/internal/ui/progress"
	"github.com/raphi011/gitfleet/internal/ui/prompt"
	"github.com/raphi011/gitfleet/internal/ui/static"
	"github.com/raphi011/gitfleet/internal/ui/styles"
)

// errRepoFailures is returned when at least one repository failed.
// The results have already been printed, so run only sets the exit code.
var errRepoFailures = errors.New("one or more repositories failed")

// lockTimeout bounds how long a command waits for other gitfleet
// processes to release the repositories it targets.
const lockTimeout = 10 * time.Second

// loadRegistry loads the registry configured in ctx.
func loadRegistry(ctx context.Context) (*registry.Registry, error) {
	cfg := config.FromContext(ctx)
	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return reg, nil
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newListener picks how progress is shown: a progress bar on a terminal,
// one line per repository otherwise, nothing in quiet mode.
func newListener(cmd *cobra.Command, message string) result.Listener {
	l := log.FromContext(cmd.Context())
	if l.IsQuiet() {
		return nil
	}
	w := cmd.ErrOrStderr()
	if isTerminal(w) && !l.IsVerbose() {
		return progress.NewBarListener(w, message)
	}
	return progress.NewLineListener(w)
}

// newRunner builds a batch runner over the git CLI.
// The configured user, or git's own identity, becomes the default
// author and committer.
func newRunner(cmd *cobra.Command, message string) *batch.Runner {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	adapter := git.NewAdapter()

	user := cfg.User
	if user.IsZero() {
		user = identity.FromGitConfig(ctx, "")
	}

	opts := []batch.Option{
		batch.WithCurrentUser(user),
		batch.WithOnComplete(func(op string, results *result.Set) {
			log.FromContext(ctx).Debug("batch finished", "op", op, "repos", results.Len())
		}),
	}
	if len(cfg.Hooks) > 0 {
		opts = append(opts, batch.WithOnComplete(hooks.OnComplete(ctx, cfg.Hooks, cmd.ErrOrStderr())))
	}
	if l := newListener(cmd, message); l != nil {
		opts = append(opts, batch.WithListener(l))
	}
	return batch.New(adapter, conflict.New(adapter), opts...)
}

// withLocks holds the locks of repos while fn runs.
func withLocks(ctx context.Context, repos []*registry.Repo, fn func() error) error {
	cfg := config.FromContext(ctx)
	mgr, err := lock.NewManager(cfg.LockDir)
	if err != nil {
		return err
	}

	ids := make([]string, len(repos))
	for i, r := range repos {
		ids[i] = r.ID
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	group, err := mgr.AcquireAll(lockCtx, ids)
	if err != nil {
		return err
	}
	defer func() {
		if err := group.Release(); err != nil {
			log.FromContext(ctx).Debug("release locks", "err", err)
		}
	}()

	return fn()
}

// report prints the results of a batch call in the configured format and
// a summary line on stderr. It returns errRepoFailures when a repository
// failed for a reason other than being skipped.
func report(cmd *cobra.Command, op string, set *result.Set) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	out := output.FromContext(ctx)

	if cfg.Output.Format == output.FormatTable {
		out.Styled(static.RenderTable(static.ResultHeaders, static.ResultRows(set.All())))
	} else if err := out.Encode(cfg.Output.Format, set.All()); err != nil {
		return err
	}

	log.FromContext(ctx).Println(set.Summary(op))

	for _, r := range set.Failed() {
		if !styles.IsSkipped(r.Status) {
			return errRepoFailures
		}
	}
	return nil
}

// printTable prints rows as a table, or v in a structured format.
func printTable(ctx context.Context, headers []string, rows [][]string, v any) error {
	cfg := config.FromContext(ctx)
	out := output.FromContext(ctx)
	if cfg.Output.Format != output.FormatTable {
		return out.Encode(cfg.Output.Format, v)
	}
	out.Styled(static.RenderTable(headers, rows))
	return nil
}

// confirm lists items and asks question on a terminal. Without a terminal
// the caller must pass --yes.
func confirm(cmd *cobra.Command, question string, items []string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if !isTerminal(cmd.InOrStdin()) {
		return false, errors.New("refusing to continue without a terminal (use --yes)")
	}
	return confirmFunc(cmd.InOrStdin(), cmd.ErrOrStderr(), question, items)
}

// confirmFunc shows the interactive prompt. Replaced in tests.
var confirmFunc = func(in io.Reader, out io.Writer, question string, items []string) (bool, error) {
	res, err := prompt.Confirm(in, out, question, items)
	if err != nil {
		return false, err
	}
	return res.Yes(), nil
}
