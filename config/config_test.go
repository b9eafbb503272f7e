package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.DBPath)
	assert.Zero(t, cfg.WebPort)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Zero(t, cfg.Tracker.TickSeconds)
}

func TestLoadDecodesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
db_path = "/tmp/tracker.db"
web_port = 8090

[log]
level = "debug"

[tracker]
tick_seconds = 5
classify_interval_seconds = 120
enforce_interval_seconds = 30

[classifier]
dataset_path = "/tmp/games.csv"
excluded = ["chrome.exe", "code.exe"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/tracker.db", cfg.DBPath)
	assert.Equal(t, 8090, cfg.WebPort)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Tracker.TickSeconds)
	assert.Equal(t, 120, cfg.Tracker.ClassifyIntervalSeconds)
	assert.Equal(t, 30, cfg.Tracker.EnforceIntervalSeconds)
	assert.Equal(t, "/tmp/games.csv", cfg.Classifier.DatasetPath)
	assert.Equal(t, []string{"chrome.exe", "code.exe"}, cfg.Classifier.Excluded)
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`web_port = 9000`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.WebPort)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`web_port = [`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
