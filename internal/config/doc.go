// Package config handles loading and validation of gitfleet configuration.
//
// Configuration is read from ~/.config/gitfleet/config.toml (or the file
// named by GITFLEET_CONFIG) with environment variable overrides for paths.
//
// # Configuration Sources (highest priority first)
//
//   - GITFLEET_WORKSPACE env var: directory new clones are placed in
//   - GITFLEET_REGISTRY env var: repository registry file
//   - Config file settings
//   - Default values
//
// # Key Settings
//
//   - workspace_dir: parent directory for clones (must be absolute or ~/...)
//   - registry_path: registry file (default: ~/.gitfleet/repos.toml)
//   - lock_dir: per-repository lock files (default: ~/.gitfleet/locks)
//   - [user] name/email: identity used when a commit names no author
//   - [github] org/base_url: organization imported by "gitfleet repo import"
//   - [branches] list_concurrency/default_filter: branch listing behaviour
//   - [output] format: "table", "json" or "yaml"
//   - [theme] name/mode: color theme of tables and progress bars
//
// # Path Validation
//
// Paths must be absolute or start with ~ (no relative paths like "." or
// "..") to avoid confusion about the working directory.
package config
