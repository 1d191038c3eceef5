package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitfleet/internal/batch"
	"github.com/raphi011/gitfleet/internal/branch"
	"github.com/raphi011/gitfleet/internal/config"
	"github.com/raphi011/gitfleet/internal/git"
	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/registry"
	"github.com/raphi011/gitfleet/internal/result"
	"github.com/raphi011/gitfleet/internal/ui/static"
)

// maxSuggestions caps the "did you mean" list for unknown branches.
const maxSuggestions = 3

func newBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "branch",
		Short:   "List, create, delete and switch branches",
		Aliases: []string{"br"},
		GroupID: GroupBranch,
		Long: `Work with branches across repositories.

Branch names are given without refs/heads/ or origin/. A local "main" and
the remote-tracking "origin/main" are listed as two entries.`,
		Example: `  gitfleet branch list --common          # Branches every repository has
  gitfleet branch create feature/x -l backend
  gitfleet branch switch feature/x
  gitfleet branch switch release --remote  # Create local branch from origin/release
  gitfleet branch delete feature/x`,
	}

	cmd.AddCommand(newBranchListCmd())
	cmd.AddCommand(newBranchCreateCmd())
	cmd.AddCommand(newBranchDeleteCmd())
	cmd.AddCommand(newBranchSwitchCmd())

	return cmd
}

func newBranchListCmd() *cobra.Command {
	var (
		targets  targetFlags
		typeFlag string
		common   bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List branches of repositories",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		Long: `List the branches of the targeted repositories.

By default the union over all cloned repositories is listed. With
--common, each repository's branches are intersected into the result;
a step that leaves nothing in common starts over from the next
repository's branches.`,
		Example: `  gitfleet branch list
  gitfleet branch list -t all -l backend
  gitfleet branch list --common -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			if typeFlag == "" {
				typeFlag = cfg.Branches.DefaultFilter
			}
			filter, err := branch.ParseFilter(typeFlag)
			if err != nil {
				return err
			}

			reg, err := loadRegistry(ctx)
			if err != nil {
				return err
			}
			repos, err := targets.resolve(reg)
			if err != nil {
				return err
			}

			catalog := branch.NewCatalog(git.NewAdapter(), cfg.Branches.ListConcurrency)
			branches, err := catalog.Across(ctx, repos, filter, common)
			if err != nil {
				return err
			}
			if branches == nil {
				branches = []branch.Branch{}
			}
			return printTable(ctx, static.BranchHeaders, static.BranchRows(branches), branches)
		},
	}

	targets.register(cmd)
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "Branch type: local, remote, or all (default from config)")
	cmd.Flags().BoolVarP(&common, "common", "c", false, "Only list branches common to the repositories")
	cmd.RegisterFlagCompletionFunc("type", cobra.FixedCompletions(config.ValidBranchFilters, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func newBranchCreateCmd() *cobra.Command {
	var (
		targets targetFlags
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a branch at HEAD without switching to it",
		Args:  cobra.ExactArgs(1),
		Example: `  gitfleet branch create feature/x
  gitfleet branch create feature/x --force   # Reset an existing branch to HEAD`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return runBatch(cmd, &targets, batch.OpCreateBranch, "Creating branch...", func(r *batch.Runner, repos []*registry.Repo) (*result.Set, error) {
				return r.CreateBranch(cmd.Context(), repos, name, force)
			})
		},
	}

	targets.register(cmd)
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reset the branch if it already exists")

	return cmd
}

func newBranchDeleteCmd() *cobra.Command {
	var (
		targets targetFlags
		force   bool
	)

	cmd := &cobra.Command{
		Use:     "delete <name>",
		Short:   "Delete a local branch",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		Long: `Delete a local branch in every targeted repository.

Branches that are not fully merged are kept unless --force is given.
The current branch is never deleted.`,
		Example: `  gitfleet branch delete feature/x
  gitfleet branch delete spike -f`,
		ValidArgsFunction: completeBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return runBranchBatch(cmd, &targets, batch.OpDeleteBranch, "Deleting branch...", name, func(r *batch.Runner, repos []*registry.Repo) (*result.Set, error) {
				return r.DeleteBranch(cmd.Context(), repos, name, force)
			})
		},
	}

	targets.register(cmd)
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even if not fully merged")

	return cmd
}

func newBranchSwitchCmd() *cobra.Command {
	var (
		targets targetFlags
		remote  bool
	)

	cmd := &cobra.Command{
		Use:     "switch <name>",
		Short:   "Check out a branch",
		Aliases: []string{"checkout", "co"},
		Args:    cobra.ExactArgs(1),
		Long: `Check out a branch in every targeted repository.

With --remote, a local branch is created from origin/<name>. Repositories
already on the branch are skipped, as are repositories where local
changes would be overwritten.`,
		Example: `  gitfleet branch switch main
  gitfleet branch switch release/2.0 --remote`,
		ValidArgsFunction: completeBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return runBranchBatch(cmd, &targets, batch.OpSwitch, "Switching...", name, func(r *batch.Runner, repos []*registry.Repo) (*result.Set, error) {
				return r.SwitchTo(cmd.Context(), repos, name, remote)
			})
		},
	}

	targets.register(cmd)
	cmd.Flags().BoolVar(&remote, "remote", false, "Create the local branch from origin/<name>")

	return cmd
}

// runBranchBatch is runBatch plus "did you mean" hints when a repository
// does not have the branch.
func runBranchBatch(cmd *cobra.Command, targets *targetFlags, op, message, name string, fn batchFunc) error {
	var missing []*registry.Repo
	err := runBatch(cmd, targets, op, message, func(r *batch.Runner, repos []*registry.Repo) (*result.Set, error) {
		set, err := fn(r, repos)
		if err != nil {
			return nil, err
		}
		for _, res := range set.All() {
			if res.Status == result.BranchNotFound {
				missing = append(missing, res.Repo)
			}
		}
		return set, nil
	})

	if len(missing) > 0 {
		suggestBranches(cmd, missing, name)
	}
	return err
}

// suggestBranches logs close matches for name among the branches of repos.
func suggestBranches(cmd *cobra.Command, repos []*registry.Repo, name string) {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	catalog := branch.NewCatalog(git.NewAdapter(), cfg.Branches.ListConcurrency)
	branches, err := catalog.Across(ctx, repos, branch.FilterAll, false)
	if err != nil {
		return
	}
	if suggestions := branch.Suggest(name, branches, maxSuggestions); len(suggestions) > 0 {
		log.FromContext(ctx).Printf("Did you mean: %s?\n", strings.Join(suggestions, ", "))
	}
}
