package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitfleet/internal/registry"
)

// targetFlags selects the repositories a command operates on.
type targetFlags struct {
	repos  []string
	labels []string
}

// register adds -r and -l to cmd.
func (t *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&t.repos, "repository", "r", nil, "Repository name or ID (repeatable)")
	cmd.Flags().StringSliceVarP(&t.labels, "label", "l", nil, "Select repositories with this label (repeatable)")
	cmd.RegisterFlagCompletionFunc("repository", completeRepoNames)
	cmd.RegisterFlagCompletionFunc("label", completeLabels)
}

func (t *targetFlags) resolve(reg *registry.Registry) ([]*registry.Repo, error) {
	return resolveTargetRepos(reg, t.repos, t.labels)
}

// resolveTargetRepos finds repos by -r references and -l labels.
// Without either, every registered repo is targeted.
// Results keep the order they were selected in and are deduplicated by ID.
func resolveTargetRepos(reg *registry.Registry, refs, labels []string) ([]*registry.Repo, error) {
	if len(refs) == 0 && len(labels) == 0 {
		all := reg.All()
		if len(all) == 0 {
			return nil, errors.New("no repositories registered (use 'gitfleet repo add')")
		}
		return all, nil
	}

	var repos []*registry.Repo
	for _, ref := range refs {
		repo, err := reg.Find(ref)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}

	if len(labels) > 0 {
		labeled := reg.FindByLabels(labels)
		if len(labeled) == 0 {
			return nil, fmt.Errorf("no repositories with label %s", strings.Join(labels, " or "))
		}
		repos = append(repos, labeled...)
	}

	seen := make(map[string]bool)
	var unique []*registry.Repo
	for _, r := range repos {
		if !seen[r.ID] {
			seen[r.ID] = true
			unique = append(unique, r)
		}
	}
	return unique, nil
}
