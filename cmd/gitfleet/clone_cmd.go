package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitfleet/internal/batch"
	"github.com/raphi011/gitfleet/internal/config"
	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/result"
)

func newCloneCmd() *cobra.Command {
	var (
		targets targetFlags
		dest    string
	)

	cmd := &cobra.Command{
		Use:     "clone",
		Short:   "Clone registered repositories",
		GroupID: GroupSync,
		Args:    cobra.NoArgs,
		Long: `Clone registered repositories into <dest>/<name>.

dest defaults to workspace_dir from the config. Repositories that are
already cloned are skipped. Successful clones are recorded in the registry.`,
		Example: `  gitfleet clone                    # Clone everything not yet cloned
  gitfleet clone -l backend
  gitfleet clone -r api --dest ~/tmp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			if dest == "" {
				dest = cfg.WorkspaceDir
			}
			if dest == "" {
				return fmt.Errorf("no destination: set workspace_dir in the config or use --dest")
			}
			dest, err := filepath.Abs(dest)
			if err != nil {
				return fmt.Errorf("resolve destination: %w", err)
			}

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
				set, err = newRunner(cmd, "Cloning...").Clone(ctx, repos, dest)
				if err != nil {
					return err
				}

				// Reload so changes made while cloning are not overwritten
				reg, err := loadRegistry(ctx)
				if err != nil {
					return err
				}
				n := reg.ApplyClones(set.ClonedPaths())
				log.FromContext(ctx).Debug("recorded clones", "count", n)
				return reg.Save()
			})
			if err != nil {
				return err
			}
			return report(cmd, batch.OpClone, set)
		},
	}

	targets.register(cmd)
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Parent directory for the clones")
	cmd.MarkFlagDirname("dest")

	return cmd
}
