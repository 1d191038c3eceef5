// Package registry manages the repository handles gitfleet operates on.
//
// Handles are stored in a TOML file (default ~/.gitfleet/repos.toml). Each
// handle has an opaque ID; the local path is only one of its fields, so a
// moved working copy keeps its identity.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// Repo is a handle for one working copy.
type Repo struct {
	ID        string   `toml:"id" json:"id" yaml:"id"`
	Name      string   `toml:"name" json:"name" yaml:"name"`
	RemoteURL string   `toml:"remote_url,omitempty" json:"remote_url,omitempty" yaml:"remote_url,omitempty"`
	Path      string   `toml:"path,omitempty" json:"path,omitempty" yaml:"path,omitempty"`
	Cloned    bool     `toml:"cloned" json:"cloned" yaml:"cloned"`
	Labels    []string `toml:"labels,omitempty" json:"labels,omitempty" yaml:"labels,omitempty"`
}

// NewRepo creates an uncloned handle with a fresh ID.
func NewRepo(name, remoteURL string) *Repo {
	return &Repo{ID: uuid.NewString(), Name: name, RemoteURL: remoteURL}
}

// Registry holds all registered repos
type Registry struct {
	Repos []Repo `toml:"repos"`

	path string
}

// DefaultPath returns ~/.gitfleet/repos.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".gitfleet", "repos.toml"), nil
}

// Load reads the registry from path.
// Returns an empty registry if the file doesn't exist.
// Missing IDs are generated and saved; repeated IDs are an error.
func Load(path string) (*Registry, error) {
	reg := &Registry{Repos: []Repo{}, path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return reg, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}

	if err := toml.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	// Entries written by hand may lack an ID. Generated IDs are written
	// back so every later load sees the same ones.
	filled := false
	seen := make(map[string]bool, len(reg.Repos))
	for i := range reg.Repos {
		if reg.Repos[i].ID == "" {
			reg.Repos[i].ID = uuid.NewString()
			filled = true
		}
		if seen[reg.Repos[i].ID] {
			return nil, fmt.Errorf("parse registry: duplicate repo id %q", reg.Repos[i].ID)
		}
		seen[reg.Repos[i].ID] = true
	}

	if filled {
		if err := reg.Save(); err != nil {
			return nil, fmt.Errorf("store generated ids: %w", err)
		}
	}

	return reg, nil
}

// Path returns the file the registry was loaded from.
func (r *Registry) Path() string {
	return r.path
}

// Save writes the registry atomically
func (r *Registry) Save() error {
	if r.path == "" {
		return fmt.Errorf("registry has no file path")
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(r); err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}

	// Write to temp file first for atomic operation
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}

	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save registry: %w", err)
	}

	return nil
}

// Add registers a new repo and returns the stored handle.
// Names must be unique; an empty ID is filled in.
func (r *Registry) Add(repo Repo) (*Repo, error) {
	if repo.Name == "" {
		return nil, fmt.Errorf("repo name is required")
	}
	if repo.ID == "" {
		repo.ID = uuid.NewString()
	}
	if repo.Path != "" {
		absPath, err := filepath.Abs(repo.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve path: %w", err)
		}
		repo.Path = absPath
	}

	for _, existing := range r.Repos {
		if existing.Name == repo.Name {
			return nil, fmt.Errorf("repo name already exists: %s (use a different name)", repo.Name)
		}
		if repo.Path != "" && existing.Path == repo.Path {
			return nil, fmt.Errorf("repo already registered: %s", repo.Path)
		}
	}

	r.Repos = append(r.Repos, repo)
	return &r.Repos[len(r.Repos)-1], nil
}

// Remove unregisters a repo by ID, name or path
func (r *Registry) Remove(ref string) error {
	for i, repo := range r.Repos {
		if repo.ID == ref || repo.Name == ref || (repo.Path != "" && repo.Path == ref) {
			r.Repos = slices.Delete(r.Repos, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("repo not found: %s", ref)
}

// Find looks up a repo by ID, name or path
func (r *Registry) Find(ref string) (*Repo, error) {
	for i := range r.Repos {
		repo := &r.Repos[i]
		if repo.ID == ref || repo.Name == ref || (repo.Path != "" && repo.Path == ref) {
			return repo, nil
		}
	}
	return nil, fmt.Errorf("repo not found: %s", ref)
}

// FindByName looks up a repo by name only
func (r *Registry) FindByName(name string) (*Repo, error) {
	for i := range r.Repos {
		if r.Repos[i].Name == name {
			return &r.Repos[i], nil
		}
	}
	return nil, fmt.Errorf("repo not found: %s", name)
}

// FindByLabels returns repos matching any of the given labels
func (r *Registry) FindByLabels(labels []string) []*Repo {
	var matches []*Repo
	for i := range r.Repos {
		if r.Repos[i].MatchesLabels(labels) {
			matches = append(matches, &r.Repos[i])
		}
	}
	return matches
}

// All returns pointers to every registered repo in registration order.
func (r *Registry) All() []*Repo {
	out := make([]*Repo, len(r.Repos))
	for i := range r.Repos {
		out[i] = &r.Repos[i]
	}
	return out
}

// AllLabels returns all unique labels across all repos
func (r *Registry) AllLabels() []string {
	labelSet := make(map[string]bool)
	for _, repo := range r.Repos {
		for _, l := range repo.Labels {
			labelSet[l] = true
		}
	}

	var labels []string
	for l := range labelSet {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// AllRepoNames returns all repo names
func (r *Registry) AllRepoNames() []string {
	names := make([]string, len(r.Repos))
	for i, repo := range r.Repos {
		names[i] = repo.Name
	}
	slices.Sort(names)
	return names
}

// AddLabel adds a label to a repo
func (r *Registry) AddLabel(name, label string) error {
	repo, err := r.FindByName(name)
	if err != nil {
		return err
	}
	if repo.HasLabel(label) {
		return nil
	}
	repo.Labels = append(repo.Labels, label)
	slices.Sort(repo.Labels)
	return nil
}

// RemoveLabel removes a label from a repo
func (r *Registry) RemoveLabel(name, label string) error {
	repo, err := r.FindByName(name)
	if err != nil {
		return err
	}
	repo.Labels = slices.DeleteFunc(repo.Labels, func(l string) bool { return l == label })
	return nil
}

// ClearLabels removes all labels from a repo
func (r *Registry) ClearLabels(name string) error {
	repo, err := r.FindByName(name)
	if err != nil {
		return err
	}
	repo.Labels = nil
	return nil
}

// ApplyClones records successful clones: each ID in paths is marked cloned
// at the given path. Unknown IDs are ignored.
func (r *Registry) ApplyClones(paths map[string]string) int {
	n := 0
	for i := range r.Repos {
		if p, ok := paths[r.Repos[i].ID]; ok {
			r.Repos[i].Path = p
			r.Repos[i].Cloned = true
			n++
		}
	}
	return n
}

// WorkingCopyCheck reports whether dir is a git working copy.
type WorkingCopyCheck func(ctx context.Context, dir string) bool

// Discover marks uncloned repos as cloned when <dir>/<name> is a working
// copy, and returns how many were updated.
func (r *Registry) Discover(ctx context.Context, dir string, isWorkingCopy WorkingCopyCheck) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", dir, err)
	}

	folders := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			folders[e.Name()] = true
		}
	}

	n := 0
	for i := range r.Repos {
		repo := &r.Repos[i]
		if repo.Cloned || !folders[repo.Name] {
			continue
		}
		candidate := filepath.Join(dir, repo.Name)
		if !isWorkingCopy(ctx, candidate) {
			continue
		}
		repo.Path = candidate
		repo.Cloned = true
		n++
	}
	return n, nil
}

// HasLabel checks if a repo has a specific label
func (repo *Repo) HasLabel(label string) bool {
	return slices.Contains(repo.Labels, label)
}

// MatchesLabels checks if repo has any of the given labels
func (repo *Repo) MatchesLabels(labels []string) bool {
	for _, label := range labels {
		if repo.HasLabel(label) {
			return true
		}
	}
	return false
}

// String returns a display string for the repo
func (repo *Repo) String() string {
	if len(repo.Labels) > 0 {
		return fmt.Sprintf("%s (%s)", repo.Name, strings.Join(repo.Labels, ", "))
	}
	return repo.Name
}
