package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitfleet/internal/batch"
	"github.com/raphi011/gitfleet/internal/identity"
	"github.com/raphi011/gitfleet/internal/registry"
	"github.com/raphi011/gitfleet/internal/result"
)

func newCommitCmd() *cobra.Command {
	var (
		targets   targetFlags
		message   string
		all       bool
		author    string
		committer string
		push      bool
	)

	cmd := &cobra.Command{
		Use:     "commit",
		Short:   "Commit staged changes in repositories",
		GroupID: GroupSync,
		Args:    cobra.NoArgs,
		Long: `Create the same commit in every targeted repository.

Only staged changes are committed unless --all is given, which also
commits modified and deleted tracked files. Untracked files are never
committed; stage them with 'gitfleet add'.

Author and committer default to [user] from the config, then to git's
user.name and user.email.`,
		Example: `  gitfleet commit -m "Bump dependencies" -a
  gitfleet commit -m "Fix CI" -l backend --push
  gitfleet commit -m "Release" --author "Jane Doe <jane@example.com>"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return errors.New("commit message is required (-m)")
			}

			req := batch.CommitRequest{Message: message, StageAllTracked: all}
			var err error
			if req.Author, err = parseIdentity("--author", author); err != nil {
				return err
			}
			if req.Committer, err = parseIdentity("--committer", committer); err != nil {
				return err
			}

			op, msg := batch.OpCommit, "Committing..."
			if push {
				op, msg = batch.OpCommitAndPush, "Committing and pushing..."
			}
			return runBatch(cmd, &targets, op, msg, func(r *batch.Runner, repos []*registry.Repo) (*result.Set, error) {
				if push {
					return r.CommitAndPush(cmd.Context(), repos, req)
				}
				return r.Commit(cmd.Context(), repos, req)
			})
		},
	}

	targets.register(cmd)
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Also commit modified and deleted tracked files")
	cmd.Flags().StringVar(&author, "author", "", `Author as "Name <email>"`)
	cmd.Flags().StringVar(&committer, "committer", "", `Committer as "Name <email>"`)
	cmd.Flags().BoolVarP(&push, "push", "p", false, "Push after committing")
	cmd.MarkFlagRequired("message")

	return cmd
}

// parseIdentity parses an optional "Name <email>" flag value.
func parseIdentity(flag, value string) (identity.Identity, error) {
	if value == "" {
		return identity.Identity{}, nil
	}
	id, err := identity.Parse(value)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%s: %w", flag, err)
	}
	if !id.Valid() {
		return identity.Identity{}, fmt.Errorf("%s: expected \"Name <email>\", got %q", flag, value)
	}
	return id, nil
}
