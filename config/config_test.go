package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.GitBinary != "git" {
		t.Errorf("GitBinary = %q, want git", cfg.GitBinary)
	}
	if cfg.CommandTimeout() != 60*time.Second {
		t.Errorf("CommandTimeout = %v, want 60s", cfg.CommandTimeout())
	}
	if cfg.Debug {
		t.Error("Debug should default off")
	}
}

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `git_binary: /usr/local/bin/git
command_timeout_seconds: 5
allowed_roots:
  - /srv/repos
debug: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.GitBinary != "/usr/local/bin/git" {
		t.Errorf("GitBinary = %q", cfg.GitBinary)
	}
	if cfg.CommandTimeout() != 5*time.Second {
		t.Errorf("CommandTimeout = %v", cfg.CommandTimeout())
	}
	if len(cfg.AllowedRoots) != 1 || cfg.AllowedRoots[0] != "/srv/repos" {
		t.Errorf("AllowedRoots = %v", cfg.AllowedRoots)
	}
	if !cfg.Debug {
		t.Error("Debug should be set")
	}
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("git_binary: [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidateNegativeTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("command_timeout_seconds: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestDebugEnvOverride(t *testing.T) {
	t.Setenv("GITBRIDGE_DEBUG", "1")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("GITBRIDGE_DEBUG should enable debug")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.CommandTimeoutSeconds = 10
	cfg.AllowedRoots = []string{"/srv/repos"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.CommandTimeoutSeconds != 10 {
		t.Errorf("CommandTimeoutSeconds = %d", loaded.CommandTimeoutSeconds)
	}
	if len(loaded.AllowedRoots) != 1 || loaded.AllowedRoots[0] != "/srv/repos" {
		t.Errorf("AllowedRoots = %v", loaded.AllowedRoots)
	}
}
