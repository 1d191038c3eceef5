package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/raphi011/gitfleet/internal/config"
	"github.com/raphi011/gitfleet/internal/git"
	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/ui/static"
)

// repoStatus is the status of one repository in structured output.
type repoStatus struct {
	Name   string             `json:"name" yaml:"name"`
	Path   string             `json:"path,omitempty" yaml:"path,omitempty"`
	Cloned bool               `json:"cloned" yaml:"cloned"`
	Status *git.WorkingStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Error  string             `json:"error,omitempty" yaml:"error,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var targets targetFlags

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Show the working copy status of repositories",
		Aliases: []string{"st"},
		GroupID: GroupRegistry,
		Args:    cobra.NoArgs,
		Long: `Show the current branch and the number of staged, modified,
untracked and conflicted files of every targeted repository.`,
		Example: `  gitfleet status
  gitfleet status -l backend -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			l := log.FromContext(ctx)

			reg, err := loadRegistry(ctx)
			if err != nil {
				return err
			}
			repos, err := targets.resolve(reg)
			if err != nil {
				return err
			}

			adapter := git.NewAdapter()
			statuses := make([]repoStatus, len(repos))

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(cfg.Branches.ListConcurrency)
			for i, repo := range repos {
				statuses[i] = repoStatus{Name: repo.Name, Path: repo.Path, Cloned: repo.Cloned}
				if !repo.Cloned {
					continue
				}
				g.Go(func() error {
					ws, err := adapter.Status(gctx, repo.Path)
					if err != nil {
						l.Debug("status failed", "repo", repo.Name, "err", err)
						statuses[i].Error = err.Error()
						return nil // Reported per repository
					}
					statuses[i].Status = &ws
					return nil
				})
			}
			_ = g.Wait() // Always nil

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				switch {
				case !s.Cloned:
					rows = append(rows, static.StatusUnavailableRow(s.Name, "not cloned"))
				case s.Status == nil:
					rows = append(rows, static.StatusUnavailableRow(s.Name, "error"))
				default:
					rows = append(rows, static.StatusRow(s.Name, *s.Status))
				}
			}
			return printTable(ctx, static.StatusHeaders, rows, statuses)
		},
	}

	targets.register(cmd)
	return cmd
}
