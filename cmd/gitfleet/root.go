package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/gitfleet/internal/config"
	"github.com/raphi011/gitfleet/internal/git"
	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/output"
	"github.com/raphi011/gitfleet/internal/ui/styles"
)

// Command group IDs for organizing help output
const (
	GroupRegistry = "registry"
	GroupSync     = "sync"
	GroupBranch   = "branch"
	GroupConfig   = "config"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	verbose    bool
	quiet      bool
	configPath string
	format     string
	noHooks    bool
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "gitfleet",
		Short: "Run git operations across many repositories at once",
		Long: `gitfleet runs git operations over a fleet of repositories.

Repositories are registered once and then targeted by name (-r) or by
label (-l). Every command visits each targeted repository, reports one
result per repository and keeps going when a repository fails.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2, // Enable typo suggestions
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return flags.setup(cmd)
		},
		// Run is not set - shows help when no subcommand provided
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show git commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "Suppress progress and log output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ~/.config/gitfleet/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&flags.format, "format", "o", "", "Output format: table, json, or yaml")
	rootCmd.PersistentFlags().BoolVar(&flags.noHooks, "no-hooks", false, "Do not run configured hooks")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(config.ValidFormats, cobra.ShellCompDirectiveNoFileComp))

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRegistry, Title: "Registry Commands:"},
		&cobra.Group{ID: GroupSync, Title: "Sync Commands:"},
		&cobra.Group{ID: GroupBranch, Title: "Branch Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Registry commands
	rootCmd.AddCommand(newRepoCmd())
	rootCmd.AddCommand(newStatusCmd())

	// Sync commands
	rootCmd.AddCommand(newCloneCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newPushCmd())

	// Branch commands
	rootCmd.AddCommand(newBranchCmd())

	// Config commands
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// setup attaches logger, printer and config to the command context and
// checks that git is installed.
func (f *globalFlags) setup(cmd *cobra.Command) error {
	if isCompletionCmd(cmd) || cmd.Name() == "help" {
		return nil
	}

	if f.verbose && f.quiet {
		return errors.New("--verbose and --quiet are mutually exclusive")
	}

	ctx := cmd.Context()
	ctx = log.WithLogger(ctx, log.New(cmd.ErrOrStderr(), f.verbose, f.quiet))
	ctx = output.WithPrinter(ctx, cmd.OutOrStdout())

	cfg, err := config.Load(f.configPath)
	if err != nil {
		// config init must work when the existing file is broken
		if cmd.Name() != "init" {
			return fmt.Errorf("load config: %w", err)
		}
		log.FromContext(ctx).Warnf("%v", err)
	}
	if f.format != "" {
		if err := config.ValidateFormat(f.format); err != nil {
			return err
		}
		cfg.Output.Format = f.format
	}
	if f.noHooks {
		cfg.Hooks = nil
	}
	styles.Init(cfg.Theme)

	ctx = config.WithConfig(ctx, &cfg)
	cmd.SetContext(ctx)

	if !needsGit(cmd) {
		return nil
	}
	return git.CheckGit(ctx)
}

func isCompletionCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

// needsGit reports whether cmd shells out to git.
func needsGit(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "config":
			return false
		}
	}
	return true
}
