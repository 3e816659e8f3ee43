// Package config loads the trustwatch configuration file and resolves the
// store paths the engine is constructed with.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config controls where trustwatch keeps its persisted stores.
type Config struct {
	DataDir     string `yaml:"data_dir"`
	HistoryPath string `yaml:"history_path"`
	History     bool   `yaml:"history"`
}

// Default returns the conventional ~/.moltbot layout with history enabled.
func Default() Config {
	base := defaultDataDir()
	return Config{
		DataDir:     base,
		HistoryPath: filepath.Join(base, "history.db"),
		History:     true,
	}
}

// Load reads the config from path, falling back to <data-dir>/config.yaml
// when path is empty. A missing file yields the defaults; a malformed file
// is an error at the call site. An unset history_path follows the effective
// data dir.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var raw struct {
		DataDir     string `yaml:"data_dir"`
		HistoryPath string `yaml:"history_path"`
		History     *bool  `yaml:"history"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if raw.DataDir != "" {
		cfg.DataDir = raw.DataDir
	}
	if raw.HistoryPath != "" {
		cfg.HistoryPath = raw.HistoryPath
	} else {
		cfg.HistoryPath = filepath.Join(cfg.DataDir, "history.db")
	}
	if raw.History != nil {
		cfg.History = *raw.History
	}
	return cfg, nil
}

// TrustedSessionsPath is the trusted-session registry artifact.
func (c Config) TrustedSessionsPath() string {
	return filepath.Join(c.DataDir, "trusted-sessions.json")
}

// ThreatIntelPath is the custom threat-intel artifact.
func (c Config) ThreatIntelPath() string {
	return filepath.Join(c.DataDir, "threat-intel.json")
}

// BaselinePath is the behavioral-baseline artifact.
func (c Config) BaselinePath() string {
	return filepath.Join(c.DataDir, "behavioral-baseline.json")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "moltbot")
	}
	return filepath.Join(home, ".moltbot")
}
