// Package manifest handles sybil.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/sybil/feedback"
)

// Manifest represents a sybil.toml project configuration.
type Manifest struct {
	Project   Project     `toml:"project"`
	Retention Retention   `toml:"retention"`
	Store     StoreConfig `toml:"store"`

	// Dir is the directory containing the sybil.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Retention configures which feedback categories survive hard clearing.
// Both default to true, matching the runtime's default policy.
type Retention struct {
	Numeric         *bool `toml:"numeric"`
	AllocationSites *bool `toml:"allocation-sites"`
}

// StoreConfig configures the profile database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// Load parses a sybil.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "sybil.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a sybil.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "sybil.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// RetentionPolicy converts the [retention] section to a runtime policy.
// Unset keys fall back to the default policy.
func (m *Manifest) RetentionPolicy() feedback.RetentionPolicy {
	policy := feedback.DefaultRetention()
	if m.Retention.Numeric != nil {
		policy.Numeric = *m.Retention.Numeric
	}
	if m.Retention.AllocationSites != nil {
		policy.AllocationSites = *m.Retention.AllocationSites
	}
	return policy
}

// StorePath returns the absolute path to the profile database,
// defaulting to .sybil/profiles.db under the manifest directory.
func (m *Manifest) StorePath() string {
	if m.Store.Path != "" {
		if filepath.IsAbs(m.Store.Path) {
			return m.Store.Path
		}
		return filepath.Join(m.Dir, m.Store.Path)
	}
	return filepath.Join(m.Dir, ".sybil", "profiles.db")
}
