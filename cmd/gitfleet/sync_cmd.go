package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/gitfleet/internal/batch"
	"github.com/raphi011/gitfleet/internal/registry"
	"github.com/raphi011/gitfleet/internal/result"
)

// batchFunc runs one batch call over repos.
type batchFunc func(r *batch.Runner, repos []*registry.Repo) (*result.Set, error)

// runBatch resolves the targets, runs fn under the repository locks and
// reports the results.
func runBatch(cmd *cobra.Command, targets *targetFlags, op, message string, fn batchFunc) error {
	ctx := cmd.Context()

	reg, err := loadRegistry(ctx)
	if err != nil {
		return err
	}
	repos, err := targets.resolve(reg)
	if err != nil {
		return err
	}

	var set *result.Set
	err = withLocks(ctx, repos, func() error {
		var err error
		set, err = fn(newRunner(cmd, message), repos)
		return err
	})
	if err != nil {
		return err
	}
	return report(cmd, op, set)
}

func newPullCmd() *cobra.Command {
	var targets targetFlags

	cmd := &cobra.Command{
		Use:     "pull",
		Short:   "Pull repositories from their upstream",
		GroupID: GroupSync,
		Args:    cobra.NoArgs,
		Long: `Pull every targeted repository from its upstream branch.

Before pulling, incoming changes are compared with local modifications.
Repositories where they overlap are skipped with conflict-predicted and
left untouched.`,
		Example: `  gitfleet pull
  gitfleet pull -l backend`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, &targets, batch.OpPull, "Pulling...", func(r *batch.Runner, repos []*registry.Repo) (*result.Set, error) {
				return r.Pull(cmd.Context(), repos)
			})
		},
	}

	targets.register(cmd)
	return cmd
}

func newPushCmd() *cobra.Command {
	var targets targetFlags

	cmd := &cobra.Command{
		Use:     "push",
		Short:   "Push the current branch of repositories",
		GroupID: GroupSync,
		Args:    cobra.NoArgs,
		Long: `Push the current branch of every targeted repository to the branch of
the same name on origin. Repositories with a detached HEAD fail.`,
		Example: `  gitfleet push
  gitfleet push -r api -r web`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, &targets, batch.OpPush, "Pushing...", func(r *batch.Runner, repos []*registry.Repo) (*result.Set, error) {
				return r.Push(cmd.Context(), repos)
			})
		},
	}

	targets.register(cmd)
	return cmd
}
