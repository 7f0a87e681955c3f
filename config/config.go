// Package config loads and persists gitbridge's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomhartley/gitbridge/exec"
	"github.com/tomhartley/gitbridge/paths"
)

// Config holds the application configuration.
type Config struct {
	GitBinary             string   `yaml:"git_binary,omitempty"`              // Path to the git binary (default "git")
	CommandTimeoutSeconds int      `yaml:"command_timeout_seconds,omitempty"` // Per-command timeout (default 60)
	AllowedRoots          []string `yaml:"allowed_roots,omitempty"`           // Directories requests may target; empty allows all
	Debug                 bool     `yaml:"debug,omitempty"`                   // Enable debug-level logging
	LogFile               string   `yaml:"log_file,omitempty"`                // Log file path override

	filePath string
}

// Default returns a config with every field at its default.
func Default() *Config {
	return &Config{
		GitBinary:             "git",
		CommandTimeoutSeconds: int(exec.DefaultTimeout / time.Second),
	}
}

// Load reads the config from the standard location, or returns defaults when
// no file exists yet. The GITBRIDGE_DEBUG environment variable overrides the
// debug flag.
func Load() (*Config, error) {
	path, err := paths.ConfigFilePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.filePath = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.applyEnv()
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ensureInitialized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// ensureInitialized restores defaults for fields the file left empty.
func (c *Config) ensureInitialized() {
	if c.GitBinary == "" {
		c.GitBinary = "git"
	}
	if c.CommandTimeoutSeconds == 0 {
		c.CommandTimeoutSeconds = int(exec.DefaultTimeout / time.Second)
	}
}

func (c *Config) applyEnv() {
	if os.Getenv("GITBRIDGE_DEBUG") != "" {
		c.Debug = true
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.CommandTimeoutSeconds < 0 {
		return fmt.Errorf("command_timeout_seconds must not be negative, got %d", c.CommandTimeoutSeconds)
	}
	return nil
}

// CommandTimeout returns the per-command timeout as a duration.
func (c *Config) CommandTimeout() time.Duration {
	if c.CommandTimeoutSeconds <= 0 {
		return exec.DefaultTimeout
	}
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}

// Save writes the config back to the path it was loaded from, creating the
// directory if needed.
func (c *Config) Save() error {
	if c.filePath == "" {
		path, err := paths.ConfigFilePath()
		if err != nil {
			return err
		}
		c.filePath = path
	}

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.filePath, data, 0644)
}
