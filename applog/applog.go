// Package applog configures the global zerolog logger: human-readable
// console output plus a size-rotated log file.
package applog

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs the global logger. An empty file puts tracker.log in
// the user state directory; an unknown level falls back to info.
func Setup(level, file string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if file == "" {
		dir := filepath.Join(xdg.StateHome, "fix-life")
		_ = os.MkdirAll(dir, 0o755)
		file = filepath.Join(dir, "tracker.log")
	}

	fileWriter := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, fileWriter)).
		Level(lvl).
		With().Timestamp().Logger()
}
