// Package config handles the console's settings file.
//
// Settings are stored at $XDG_CONFIG_HOME/pipedeck/config.yaml (defaults to
// ~/.config/pipedeck/config.yaml). Effective values are resolved with the
// usual precedence: command-line flag, then PIPEDECK_* environment variable,
// then the file, then the built-in default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"pipedeck/pipeline"
)

// Environment variables honored by Resolve.
const (
	EnvProjectDir = "PIPEDECK_PROJECT_DIR"
	EnvTailLines  = "PIPEDECK_TAIL"
	EnvLogLevel   = "PIPEDECK_LOG_LEVEL"
)

// Settings is the persisted shape of the config file. Zero values mean
// "not set"; Resolve fills the gaps.
type Settings struct {
	ProjectDir string `yaml:"project-dir,omitempty"`
	TailLines  int    `yaml:"tail,omitempty"`
	LogLevel   string `yaml:"log-level,omitempty"`
}

// Path returns the config file location. It respects XDG_CONFIG_HOME,
// falling back to ~/.config/pipedeck/config.yaml.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "pipedeck", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "pipedeck", "config.yaml")
}

// Load reads the settings file. A missing file yields empty Settings, not an
// error: the console works without any configuration.
func Load() (*Settings, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &s, nil
}

// Save writes the settings to disk, creating directories as needed.
func (s *Settings) Save() error {
	p := Path()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Resolve computes the effective settings from the file plus overrides.
// flagProjectDir and flagTail are the raw flag values; their zero values
// mean the flag was not given. Malformed environment values are ignored
// rather than fatal: a bad PIPEDECK_TAIL should not brick the console.
func Resolve(file *Settings, flagProjectDir string, flagTail int) Settings {
	if file == nil {
		file = &Settings{}
	}

	out := Settings{
		ProjectDir: ".",
		TailLines:  pipeline.DefaultTailLines,
		LogLevel:   "warn",
	}

	if file.ProjectDir != "" {
		out.ProjectDir = file.ProjectDir
	}
	if file.TailLines > 0 {
		out.TailLines = file.TailLines
	}
	if file.LogLevel != "" {
		out.LogLevel = file.LogLevel
	}

	if env := strings.TrimSpace(os.Getenv(EnvProjectDir)); env != "" {
		out.ProjectDir = env
	}
	if env := strings.TrimSpace(os.Getenv(EnvTailLines)); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n > 0 {
			out.TailLines = n
		}
	}
	if env := strings.TrimSpace(os.Getenv(EnvLogLevel)); env != "" {
		out.LogLevel = env
	}

	if flagProjectDir != "" {
		out.ProjectDir = flagProjectDir
	}
	if flagTail > 0 {
		out.TailLines = flagTail
	}

	return out
}
