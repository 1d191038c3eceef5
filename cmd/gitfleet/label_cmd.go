package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/registry"
)

func newLabelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "label",
		Short:   "Manage repository labels",
		Aliases: []string{"lbl"},
		Long: `Manage labels on repositories.

Labels are stored in the registry and select repositories with -l.`,
		Example: `  gitfleet repo label add backend api web
  gitfleet repo label rm backend web
  gitfleet repo label clear api
  gitfleet repo label list`,
	}

	cmd.AddCommand(newLabelAddCmd())
	cmd.AddCommand(newLabelRemoveCmd())
	cmd.AddCommand(newLabelClearCmd())
	cmd.AddCommand(newLabelListCmd())

	return cmd
}

// resolveRefs looks up every ref before anything is changed.
func resolveRefs(reg *registry.Registry, refs []string) ([]*registry.Repo, error) {
	repos := make([]*registry.Repo, 0, len(refs))
	for _, ref := range refs {
		repo, err := reg.Find(ref)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// editLabels applies fn to each referenced repo and saves the registry.
func editLabels(cmd *cobra.Command, refs []string, fn func(reg *registry.Registry, repo *registry.Repo) error) error {
	reg, err := loadRegistry(cmd.Context())
	if err != nil {
		return err
	}
	repos, err := resolveRefs(reg, refs)
	if err != nil {
		return err
	}
	for _, repo := range repos {
		if err := fn(reg, repo); err != nil {
			return err
		}
	}
	return reg.Save()
}

func newLabelAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "add <label> <repo>...",
		Short:             "Add a label to repositories",
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: completeLabelArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			label := args[0]
			l := log.FromContext(cmd.Context())
			return editLabels(cmd, args[1:], func(reg *registry.Registry, repo *registry.Repo) error {
				if err := reg.AddLabel(repo.Name, label); err != nil {
					return err
				}
				l.Printf("Added label %q to %s\n", label, repo.Name)
				return nil
			})
		},
	}
}

func newLabelRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "rm <label> <repo>...",
		Short:             "Remove a label from repositories",
		Aliases:           []string{"remove"},
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: completeLabelArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			label := args[0]
			l := log.FromContext(cmd.Context())
			return editLabels(cmd, args[1:], func(reg *registry.Registry, repo *registry.Repo) error {
				if err := reg.RemoveLabel(repo.Name, label); err != nil {
					return err
				}
				l.Printf("Removed label %q from %s\n", label, repo.Name)
				return nil
			})
		},
	}
}

func newLabelClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "clear <repo>...",
		Short:             "Remove all labels from repositories",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeRepoNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := log.FromContext(cmd.Context())
			return editLabels(cmd, args, func(reg *registry.Registry, repo *registry.Repo) error {
				if err := reg.ClearLabels(repo.Name); err != nil {
					return err
				}
				l.Printf("Cleared labels of %s\n", repo.Name)
				return nil
			})
		},
	}
}

func newLabelListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List all labels in use",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, err := loadRegistry(ctx)
			if err != nil {
				return err
			}

			labels := reg.AllLabels()
			if labels == nil {
				labels = []string{}
			}
			rows := make([][]string, 0, len(labels))
			for _, label := range labels {
				rows = append(rows, []string{label, countRepos(reg, label)})
			}
			return printTable(ctx, []string{"LABEL", "REPOS"}, rows, labels)
		},
	}
}

func countRepos(reg *registry.Registry, label string) string {
	n := len(reg.FindByLabels([]string{label}))
	if n == 1 {
		return "1 repo"
	}
	return strconv.Itoa(n) + " repos"
}

// completeLabelArgs completes a label first, then repository names.
func completeLabelArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeLabels(cmd, args, toComplete)
	}
	return completeRepoNames(cmd, args, toComplete)
}
