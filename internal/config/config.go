// Package config loads the CLI's named profiles: reusable (destination,
// seed, per-collection size) bundles a user can select with --profile
// instead of repeating flags (spec.md §6).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Profile is one named bundle of generation settings.
type Profile struct {
	Destination string         `toml:"destination"`
	Seed        *uint64        `toml:"seed"`
	DefaultSize int            `toml:"default_size"`
	Sizes       map[string]int `toml:"sizes"`
}

// File is the parsed shape of profiles.toml: a table of named profiles.
type File struct {
	Profiles map[string]Profile `toml:"profiles"`
}

// DefaultPath returns ~/.local/state/synth/profiles.toml, honoring
// SYNTH_STATE_DIR to relocate it (e.g. for tests or containers).
func DefaultPath() (string, error) {
	if dir := os.Getenv("SYNTH_STATE_DIR"); dir != "" {
		return filepath.Join(dir, "profiles.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "synth", "profiles.toml"), nil
}

// Load parses the profiles file at path. A missing file is not an error; it
// yields an empty File so callers can --profile only when they've written one.
func Load(path string) (*File, error) {
	var f File
	_, err := toml.DecodeFile(path, &f)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{Profiles: map[string]Profile{}}, nil
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]Profile{}
	}
	return &f, nil
}

// Profile looks up name, reporting whether it was declared.
func (f *File) Profile(name string) (Profile, bool) {
	p, ok := f.Profiles[name]
	return p, ok
}
