package main

import (
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/raphi011/gitfleet/internal/config"
	"github.com/raphi011/gitfleet/internal/log"
	"github.com/raphi011/gitfleet/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage gitfleet configuration.

Config file: ~/.config/gitfleet/config.toml (override with --config or
GITFLEET_CONFIG). GITFLEET_REGISTRY and GITFLEET_WORKSPACE override
registry_path and workspace_dir.`,
		Example: `  gitfleet config init      # Create default config
  gitfleet config init -s   # Print default config
  gitfleet config show      # Show effective config`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Example: `  gitfleet config init      # Create config
  gitfleet config init -f   # Overwrite existing config
  gitfleet config init -s   # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if stdout {
				output.FromContext(ctx).Print(config.Template())
				return nil
			}

			path, err := config.Init(force)
			if err != nil {
				return err
			}
			log.FromContext(ctx).Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		Long: `Show the configuration after defaults and environment overrides.

The table format prints TOML.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)

			if cfg.Output.Format != output.FormatTable {
				return out.Encode(cfg.Output.Format, cfg)
			}
			return toml.NewEncoder(out.Writer()).Encode(cfg)
		},
	}
}
