package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/raphi011/gitfleet/internal/identity"
)

// GitHubConfig configures importing repositories from a GitHub organization.
type GitHubConfig struct {
	Org      string `toml:"org" json:"org" yaml:"org"`
	BaseURL  string `toml:"base_url" json:"base_url" yaml:"base_url"`    // GitHub Enterprise URL, empty for github.com
	TokenEnv string `toml:"token_env" json:"token_env" yaml:"token_env"` // env var holding the API token
}

// Token returns the API token from the configured environment variable.
func (g GitHubConfig) Token() string {
	return os.Getenv(g.TokenEnv)
}

// BranchesConfig holds branch listing settings.
type BranchesConfig struct {
	ListConcurrency int    `toml:"list_concurrency" json:"list_concurrency" yaml:"list_concurrency"`
	DefaultFilter   string `toml:"default_filter" json:"default_filter" yaml:"default_filter"` // "local", "remote" or "all"
}

// OutputConfig holds output settings.
type OutputConfig struct {
	Format string `toml:"format" json:"format" yaml:"format"` // "table", "json" or "yaml"
}

// ThemeConfig selects the color theme of tables and progress output.
type ThemeConfig struct {
	Name string `toml:"name" json:"name" yaml:"name"` // preset family, see ValidThemeNames
	Mode string `toml:"mode" json:"mode" yaml:"mode"` // "auto", "light" or "dark"
}

// Hook is a shell command run in every repository an operation succeeded in.
// Hooks without On never run.
type Hook struct {
	Command     string   `toml:"command" json:"command" yaml:"command"`
	Description string   `toml:"description" json:"description,omitempty" yaml:"description,omitempty"`
	On          []string `toml:"on" json:"on" yaml:"on"` // triggers, see ValidHookTriggers
}

// Config holds the gitfleet configuration
type Config struct {
	WorkspaceDir string            `toml:"workspace_dir" json:"workspace_dir" yaml:"workspace_dir"`
	RegistryPath string            `toml:"registry_path" json:"registry_path" yaml:"registry_path"`
	LockDir      string            `toml:"lock_dir" json:"lock_dir" yaml:"lock_dir"`
	User         identity.Identity `toml:"user" json:"user" yaml:"user"`
	GitHub       GitHubConfig      `toml:"github" json:"github" yaml:"github"`
	Branches     BranchesConfig    `toml:"branches" json:"branches" yaml:"branches"`
	Output       OutputConfig      `toml:"output" json:"output" yaml:"output"`
	Theme        ThemeConfig       `toml:"theme" json:"theme" yaml:"theme"`
	Hooks        map[string]Hook   `toml:"hooks" json:"hooks,omitempty" yaml:"hooks,omitempty"`
}

// Defaults for settings left empty in the config file.
const (
	DefaultRegistryPath    = "~/.gitfleet/repos.toml"
	DefaultLockDir         = "~/.gitfleet/locks"
	DefaultTokenEnv        = "GITHUB_TOKEN"
	DefaultListConcurrency = 8
	DefaultFormat          = "table"
	DefaultBranchFilter    = "local"
)

// Environment variables read by Load.
const (
	EnvConfig    = "GITFLEET_CONFIG"
	EnvRegistry  = "GITFLEET_REGISTRY"
	EnvWorkspace = "GITFLEET_WORKSPACE"
)

// Default returns the default configuration.
// Paths are unexpanded; Load expands them.
func Default() Config {
	return Config{
		RegistryPath: DefaultRegistryPath,
		LockDir:      DefaultLockDir,
		GitHub: GitHubConfig{
			TokenEnv: DefaultTokenEnv,
		},
		Branches: BranchesConfig{
			ListConcurrency: DefaultListConcurrency,
			DefaultFilter:   DefaultBranchFilter,
		},
		Output: OutputConfig{
			Format: DefaultFormat,
		},
	}
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // Empty is allowed (means not configured)
	}
	// Allow ~ paths
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the config file location: $GITFLEET_CONFIG if set,
// otherwise ~/.config/gitfleet/config.toml.
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gitfleet", "config.toml"), nil
}

// Load reads config from path, or from Path() when path is empty.
// A missing file yields Default() with environment overrides applied.
// Returns error only if the file exists but is invalid.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.finalize(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// applyEnv overrides path settings from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvWorkspace); v != "" {
		c.WorkspaceDir = v
	}
	if v := os.Getenv(EnvRegistry); v != "" {
		c.RegistryPath = v
	}
}

// finalize validates the settings, fills in defaults for empty values
// and expands ~ in paths.
func (c *Config) finalize() error {
	paths := []struct {
		field string
		value *string
		def   string
	}{
		{"workspace_dir", &c.WorkspaceDir, ""},
		{"registry_path", &c.RegistryPath, DefaultRegistryPath},
		{"lock_dir", &c.LockDir, DefaultLockDir},
	}
	for _, p := range paths {
		if *p.value == "" {
			*p.value = p.def
		}
		if err := ValidatePath(*p.value, p.field); err != nil {
			return err
		}
		expanded, err := expandPath(*p.value)
		if err != nil {
			return fmt.Errorf("expand %s: %w", p.field, err)
		}
		*p.value = expanded
	}

	if !c.User.IsZero() && !c.User.Valid() {
		return fmt.Errorf("user: name and email must both be set, got %q", c.User.String())
	}

	if err := validateEnum(c.Output.Format, "output.format", ValidFormats); err != nil {
		return err
	}
	if err := validateEnum(c.Branches.DefaultFilter, "branches.default_filter", ValidBranchFilters); err != nil {
		return err
	}
	if err := validateEnum(c.Theme.Name, "theme.name", ValidThemeNames); err != nil {
		return err
	}
	if err := validateEnum(c.Theme.Mode, "theme.mode", ValidThemeModes); err != nil {
		return err
	}
	if err := validateHooks(c.Hooks); err != nil {
		return err
	}
	if c.Branches.ListConcurrency < 0 {
		return fmt.Errorf("branches.list_concurrency must not be negative, got %d", c.Branches.ListConcurrency)
	}

	// Use defaults for empty values
	if c.Output.Format == "" {
		c.Output.Format = DefaultFormat
	}
	if c.Branches.DefaultFilter == "" {
		c.Branches.DefaultFilter = DefaultBranchFilter
	}
	if c.Branches.ListConcurrency == 0 {
		c.Branches.ListConcurrency = DefaultListConcurrency
	}
	if c.GitHub.TokenEnv == "" {
		c.GitHub.TokenEnv = DefaultTokenEnv
	}
	return nil
}

type ctxKey struct{}

// WithConfig returns a new context carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the config stored in ctx, or nil.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return c
	}
	return nil
}

const defaultConfig = `# gitfleet configuration

# Parent directory for new clones. Each repository is cloned to
# <workspace_dir>/<name>.
# Must be an absolute path or start with ~ (no relative paths like "." or "..")
# workspace_dir = "~/src/fleet"

# Repository registry file
# registry_path = "~/.gitfleet/repos.toml"

# Directory for per-repository lock files. Mutating commands hold a lock for
# every repository they touch.
# lock_dir = "~/.gitfleet/locks"

# Identity used as author and committer when "gitfleet commit" gets no
# --author. If unset, git's own user.name/user.email apply.
# [user]
# name = "Jane Doe"
# email = "jane@example.com"

# Import repositories with "gitfleet repo import"
# [github]
# org = "my-org"
# base_url = "https://github.mycompany.com"  # GitHub Enterprise only
# token_env = "GITHUB_TOKEN"                 # env var holding the API token

# [branches]
# list_concurrency = 8       # repositories listed in parallel
# default_filter = "local"   # local, remote, or all

# [output]
# format = "table"   # table, json, or yaml

# [theme]
# name = "default"   # none, default, dracula, nord, gruvbox, or catppuccin
# mode = "auto"      # auto, light, or dark

# Hooks run a shell command in every repository an operation succeeded in.
# Triggers: clone, pull, commit, push, commit-and-push, create-branch,
# switch, delete-branch, add, or all. Placeholders are shell-quoted:
# {path}, {repo}, {branch}, {commit}, {trigger}. Skip with --no-hooks.
# [hooks.deps]
# command = "go mod download"
# description = "Download modules"
# on = ["clone", "pull"]
`

// Template returns the commented default config file.
func Template() string {
	return defaultConfig
}

// Init creates a default config file at Path().
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}

	return path, nil
}
