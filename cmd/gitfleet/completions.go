package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitfleet/internal/branch"
	"github.com/raphi011/gitfleet/internal/config"
	"github.com/raphi011/gitfleet/internal/git"
	"github.com/raphi011/gitfleet/internal/registry"
)

// completionRegistry loads the registry for shell completion.
// Completion runs without the usual setup, so config is read here.
func completionRegistry(cmd *cobra.Command) (*registry.Registry, *config.Config) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil
	}
	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		return nil, nil
	}
	return reg, &cfg
}

// completeRepoNames completes registered repository names.
func completeRepoNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	reg, _ := completionRegistry(cmd)
	if reg == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return filterPrefix(reg.AllRepoNames(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeLabels completes labels used in the registry.
func completeLabels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	reg, _ := completionRegistry(cmd)
	if reg == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return filterPrefix(reg.AllLabels(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeBranches completes branch names of the repositories selected
// with -r and -l, or of every registered repository.
func completeBranches(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	reg, cfg := completionRegistry(cmd)
	if reg == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	refs, _ := cmd.Flags().GetStringSlice("repository")
	labels, _ := cmd.Flags().GetStringSlice("label")
	repos, err := resolveTargetRepos(reg, refs, labels)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	catalog := branch.NewCatalog(git.NewAdapter(), cfg.Branches.ListConcurrency)
	branches, err := catalog.Across(context.Background(), repos, branch.FilterAll, false)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	seen := make(map[string]bool)
	var names []string
	for _, name := range branch.Names(branches) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func filterPrefix(values []string, prefix string) []string {
	var matches []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			matches = append(matches, v)
		}
	}
	return matches
}
