package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitfleet/internal/batch"
	"github.com/raphi011/gitfleet/internal/registry"
	"github.com/raphi011/gitfleet/internal/result"
)

func newAddCmd() *cobra.Command {
	var (
		targets   targetFlags
		untracked bool
	)

	cmd := &cobra.Command{
		Use:     "add [path...]",
		Short:   "Stage files in repositories",
		GroupID: GroupSync,
		Long: `Stage files in every targeted repository.

Paths are relative to each repository root. With --untracked, every
untracked file is staged instead.`,
		Example: `  gitfleet add go.mod go.sum
  gitfleet add --untracked -l backend`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if untracked && len(args) > 0 {
				return errors.New("--untracked cannot be combined with paths")
			}
			if !untracked && len(args) == 0 {
				return errors.New("nothing to add: give paths or --untracked")
			}

			return runBatch(cmd, &targets, batch.OpAdd, "Staging...", func(r *batch.Runner, repos []*registry.Repo) (*result.Set, error) {
				if untracked {
					return r.AddUntracked(cmd.Context(), repos)
				}
				return r.AddPaths(cmd.Context(), repos, args)
			})
		},
	}

	targets.register(cmd)
	cmd.Flags().BoolVarP(&untracked, "untracked", "u", false, "Stage all untracked files")

	return cmd
}
