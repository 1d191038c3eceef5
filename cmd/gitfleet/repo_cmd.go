package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitfleet/internal/config"
	"github.com/raphi011/gitfleet/internal/forge"
	"github.com/raphi011/gitfleet/internal/git"
	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/output"
	"github.com/raphi011/gitfleet/internal/registry"
	"github.com/raphi011/gitfleet/internal/ui/progress"
	"github.com/raphi011/gitfleet/internal/ui/static"
)

func newRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "repo",
		Short:   "Manage registered repositories",
		Aliases: []string{"repos"},
		GroupID: GroupRegistry,
		Long: `Manage the repositories gitfleet operates on.

The registry is a TOML file (default ~/.gitfleet/repos.toml). Each entry
has an ID, a name, the remote URL, the local path once cloned, and labels.`,
		Example: `  gitfleet repo add git@github.com:acme/api.git -l backend
  gitfleet repo add ~/src/web             # Register an existing working copy
  gitfleet repo import acme --ssh          # Register every repo of a GitHub org
  gitfleet repo discover ~/src             # Mark repos found in ~/src as cloned
  gitfleet repo list -l backend`,
	}

	cmd.AddCommand(newRepoAddCmd())
	cmd.AddCommand(newRepoRemoveCmd())
	cmd.AddCommand(newRepoListCmd())
	cmd.AddCommand(newRepoImportCmd())
	cmd.AddCommand(newRepoDiscoverCmd())
	cmd.AddCommand(newLabelCmd())

	return cmd
}

func newRepoAddCmd() *cobra.Command {
	var (
		name   string
		labels []string
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "add <url|path>...",
		Short: "Register repositories by remote URL or local working copy",
		Args:  cobra.MinimumNArgs(1),
		Long: `Register repositories.

A remote URL registers an uncloned repository; 'gitfleet clone' fetches it.
A path to an existing working copy registers it as cloned, with the origin
remote as its URL. Names default to the last path or URL segment.`,
		Example: `  gitfleet repo add https://github.com/acme/api.git
  gitfleet repo add git@github.com:acme/api.git --name api-v2
  gitfleet repo add . -l backend
  gitfleet repo add --verify https://github.com/acme/web.git`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			if name != "" && len(args) > 1 {
				return fmt.Errorf("--name can only be used with a single repository")
			}

			reg, err := loadRegistry(ctx)
			if err != nil {
				return err
			}

			adapter := git.NewAdapter()
			for _, arg := range args {
				repo := registry.Repo{Name: name, Labels: labels}

				if info, err := os.Stat(arg); err == nil && info.IsDir() && adapter.IsWorkingCopy(ctx, arg) {
					path, err := filepath.Abs(arg)
					if err != nil {
						return fmt.Errorf("resolve path: %w", err)
					}
					repo.Path = path
					repo.Cloned = true
					repo.RemoteURL, _ = adapter.OriginURL(ctx, path)
					if repo.Name == "" {
						repo.Name = filepath.Base(path)
					}
				} else {
					if verify {
						if err := git.ValidateRemoteURL(ctx, arg); err != nil {
							return fmt.Errorf("%s: %w", arg, err)
						}
					}
					repo.RemoteURL = arg
					if repo.Name == "" {
						repo.Name = git.RepoNameFromURL(arg)
					}
				}

				added, err := reg.Add(repo)
				if err != nil {
					return err
				}
				l.Printf("Added %s (%s)\n", added.Name, shortID(added.ID))
			}

			return reg.Save()
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name for the repository")
	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "Label to add (repeatable)")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check that the remote is reachable")
	cmd.RegisterFlagCompletionFunc("label", completeLabels)

	return cmd
}

func newRepoRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <name|id>...",
		Short:   "Unregister repositories",
		Aliases: []string{"remove"},
		Args:    cobra.MinimumNArgs(1),
		Long: `Unregister repositories.

Working copies on disk are left untouched.`,
		Example: `  gitfleet repo rm api
  gitfleet repo rm api web --yes`,
		ValidArgsFunction: completeRepoNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			reg, err := loadRegistry(ctx)
			if err != nil {
				return err
			}

			// Resolve everything first so a typo removes nothing
			var names []string
			for _, ref := range args {
				repo, err := reg.Find(ref)
				if err != nil {
					return err
				}
				names = append(names, repo.Name)
			}

			ok, err := confirm(cmd, fmt.Sprintf("Unregister %d repositories?", len(names)), names, yes)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}

			for _, name := range names {
				if err := reg.Remove(name); err != nil {
					return err
				}
				log.FromContext(ctx).Printf("Removed %s\n", name)
			}
			return reg.Save()
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func newRepoListCmd() *cobra.Command {
	var labels []string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List registered repositories",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		Example: `  gitfleet repo list
  gitfleet repo list -l backend -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			reg, err := loadRegistry(ctx)
			if err != nil {
				return err
			}

			repos := reg.All()
			if len(labels) > 0 {
				repos = reg.FindByLabels(labels)
			}
			if repos == nil {
				repos = []*registry.Repo{}
			}

			if len(repos) == 0 && config.FromContext(ctx).Output.Format == output.FormatTable {
				log.FromContext(ctx).Println("No repositories registered")
				return nil
			}
			return printTable(ctx, static.RepoHeaders, static.RepoRows(repos), repos)
		},
	}

	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "Only list repositories with this label (repeatable)")
	cmd.RegisterFlagCompletionFunc("label", completeLabels)

	return cmd
}

func newRepoImportCmd() *cobra.Command {
	var (
		ssh             bool
		includeArchived bool
		includeForks    bool
		labels          []string
		dryRun          bool
	)

	cmd := &cobra.Command{
		Use:   "import [owner]",
		Short: "Register the repositories of a GitHub organization or user",
		Args:  cobra.MaximumNArgs(1),
		Long: `Register every repository of a GitHub organization or user.

The owner defaults to github.org from the config. The API token is read
from the environment variable named by github.token_env (GITHUB_TOKEN).
Repositories whose name is already registered are skipped.`,
		Example: `  gitfleet repo import acme
  gitfleet repo import acme --ssh -l acme
  gitfleet repo import --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			l := log.FromContext(ctx)

			owner := cfg.GitHub.Org
			if len(args) > 0 {
				owner = args[0]
			}
			if owner == "" {
				return fmt.Errorf("no owner given and github.org is not configured")
			}

			gh, err := forge.NewGitHub(ctx, cfg.GitHub.Token(), cfg.GitHub.BaseURL)
			if err != nil {
				return err
			}

			var spinner *progress.Spinner
			if isTerminal(cmd.ErrOrStderr()) && !l.IsQuiet() {
				spinner = progress.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Listing repositories of %s...", owner))
				spinner.Start()
			}
			remotes, err := gh.ListRepos(ctx, owner, forge.ListOptions{
				IncludeArchived: includeArchived,
				IncludeForks:    includeForks,
			})
			if spinner != nil {
				spinner.Stop()
			}
			if err != nil {
				return err
			}

			candidates := forge.ToRepos(remotes, ssh, labels...)
			if dryRun {
				return printTable(ctx, static.RepoHeaders, static.RepoRows(candidates), candidates)
			}

			reg, err := loadRegistry(ctx)
			if err != nil {
				return err
			}

			added, skipped := 0, 0
			for _, repo := range candidates {
				if _, err := reg.FindByName(repo.Name); err == nil {
					l.Debug("already registered", "repo", repo.Name)
					skipped++
					continue
				}
				if _, err := reg.Add(*repo); err != nil {
					return err
				}
				added++
			}

			if err := reg.Save(); err != nil {
				return err
			}
			l.Printf("Imported %d repositories from %s (%d already registered)\n", added, gh.Name(), skipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&ssh, "ssh", false, "Register SSH clone URLs instead of HTTPS")
	cmd.Flags().BoolVar(&includeArchived, "archived", false, "Include archived repositories")
	cmd.Flags().BoolVar(&includeForks, "forks", false, "Include forks")
	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "Label to add to imported repositories (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be imported without registering")
	cmd.RegisterFlagCompletionFunc("label", completeLabels)

	return cmd
}

func newRepoDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover [dir]",
		Short: "Mark registered repositories found on disk as cloned",
		Args:  cobra.MaximumNArgs(1),
		Long: `Look for <dir>/<name> working copies of uncloned repositories.

Each one found is recorded as cloned at that path. dir defaults to
workspace_dir from the config.`,
		Example: `  gitfleet repo discover
  gitfleet repo discover ~/src`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			dir := cfg.WorkspaceDir
			if len(args) > 0 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no directory given and workspace_dir is not configured")
			}
			dir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			reg, err := loadRegistry(ctx)
			if err != nil {
				return err
			}

			n, err := reg.Discover(ctx, dir, git.NewAdapter().IsWorkingCopy)
			if err != nil {
				return err
			}
			if err := reg.Save(); err != nil {
				return err
			}
			log.FromContext(ctx).Printf("Discovered %d cloned repositories in %s\n", n, dir)
			return nil
		},
	}

	return cmd
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
