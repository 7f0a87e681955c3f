package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestXDGLayout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "cfg"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))
	Reset()
	t.Cleanup(Reset)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(home, "cfg", "gitbridge") {
		t.Errorf("ConfigDir = %q", dir)
	}

	logs, err := LogsDir()
	if err != nil {
		t.Fatal(err)
	}
	if logs != filepath.Join(home, "state", "gitbridge", "logs") {
		t.Errorf("LogsDir = %q", logs)
	}

	if IsLegacyLayout() {
		t.Error("XDG env vars should select the XDG layout")
	}
}

func TestLegacyLayoutWins(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "cfg"))
	t.Setenv("XDG_STATE_HOME", "")
	if err := os.Mkdir(filepath.Join(home, ".gitbridge"), 0755); err != nil {
		t.Fatal(err)
	}
	Reset()
	t.Cleanup(Reset)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(home, ".gitbridge") {
		t.Errorf("ConfigDir = %q, want legacy dir", dir)
	}
	if !IsLegacyLayout() {
		t.Error("existing ~/.gitbridge should select the legacy layout")
	}
}

func TestConfigFilePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")
	Reset()
	t.Cleanup(Reset)

	path, err := ConfigFilePath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(home, ".gitbridge", "config.yaml") {
		t.Errorf("ConfigFilePath = %q", path)
	}
}
