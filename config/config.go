// Package config loads the TOML configuration. Every field has a
// working default so the tracker runs with no config file at all.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

type Config struct {
	DBPath     string     `toml:"db_path"`
	WebPort    int        `toml:"web_port"` // 0 picks a free port
	Log        Log        `toml:"log"`
	Tracker    Tracker    `toml:"tracker"`
	Classifier Classifier `toml:"classifier"`
}

type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type Tracker struct {
	TickSeconds             int `toml:"tick_seconds"`
	ClassifyIntervalSeconds int `toml:"classify_interval_seconds"`
	EnforceIntervalSeconds  int `toml:"enforce_interval_seconds"`
}

type Classifier struct {
	DatasetPath string   `toml:"dataset_path"`
	Excluded    []string `toml:"excluded"`
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "fix-life", "config.toml")
}

// Load reads the config at path, or the default location when path is
// empty. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Log: Log{Level: "info"},
	}

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return cfg, nil
}
