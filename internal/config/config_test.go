package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsEmpty(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(f.Profiles) != 0 {
		t.Fatalf("Profiles = %v, want empty", f.Profiles)
	}
	if _, ok := f.Profile("default"); ok {
		t.Fatal("Profile(\"default\") found in an empty file")
	}
}

func TestLoadParsesProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	writeTOML(t, path, `
[profiles.dev]
destination = "stdout"
default_size = 10

[profiles.dev.sizes]
users = 50
orders = 200

[profiles.staging]
destination = "postgres://localhost/synth"
seed = 42
default_size = 1000
`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	dev, ok := f.Profile("dev")
	if !ok {
		t.Fatal("profile \"dev\" not found")
	}
	if dev.Destination != "stdout" {
		t.Errorf("dev.Destination = %q, want %q", dev.Destination, "stdout")
	}
	if dev.DefaultSize != 10 {
		t.Errorf("dev.DefaultSize = %d, want 10", dev.DefaultSize)
	}
	if dev.Sizes["users"] != 50 || dev.Sizes["orders"] != 200 {
		t.Errorf("dev.Sizes = %v, want users=50 orders=200", dev.Sizes)
	}
	if dev.Seed != nil {
		t.Errorf("dev.Seed = %v, want nil", dev.Seed)
	}

	staging, ok := f.Profile("staging")
	if !ok {
		t.Fatal("profile \"staging\" not found")
	}
	if staging.Seed == nil || *staging.Seed != 42 {
		t.Errorf("staging.Seed = %v, want 42", staging.Seed)
	}

	if _, ok := f.Profile("nonexistent"); ok {
		t.Fatal("Profile(\"nonexistent\") unexpectedly found")
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	writeTOML(t, path, `this is not = [valid toml`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}

func TestDefaultPathHonorsStateDirOverride(t *testing.T) {
	t.Setenv("SYNTH_STATE_DIR", "/tmp/synth-state")

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	want := filepath.Join("/tmp/synth-state", "profiles.toml")
	if path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}
}

func writeTOML(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
