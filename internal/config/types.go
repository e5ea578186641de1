// Package config holds the settings of a canvas-go session: window size,
// scale, colours, update policy, script and export paths, and runtime
// limits. Values come from Defaults, an optional Lua config file, CANVAS_*
// environment variables and command-line flags, in that order.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config is the complete session configuration.
type Config struct {
	// Script is the Lua drawing script to run.
	Script string
	// Window holds the canvas window settings.
	Window WindowConfig
	// Update holds the repaint and input policy.
	Update UpdateConfig
	// Output is a PNG path written with the final frame on exit. Empty
	// disables it.
	Output string
	// Watch reruns the script when it changes on disk.
	Watch bool
	// LogLevel is one of debug, info, warn or error.
	LogLevel string
	// Lua holds the script runtime limits.
	Lua LuaConfig
}

// WindowConfig describes the canvas window.
type WindowConfig struct {
	Width  int
	Height int
	// Scale is the number of pixels per logical unit.
	Scale int
	Title string
	// Background is a colour name, hex value or rgb()/rgba() string.
	Background string
	// Headless uses the off-screen toolkit instead of a real window.
	Headless    bool
	KeepAbove   bool
	SkipTaskbar bool
}

// UpdateConfig controls when the canvas repaints and which events reach
// the script.
type UpdateConfig struct {
	// Continuous repaints after every change; otherwise the script calls
	// canvas.render().
	Continuous bool
	// DuplicateEvents delivers repeated mouse positions and key repeats.
	DuplicateEvents bool
	// Tick is the interval of the canvas_tick hook. Zero disables it.
	Tick time.Duration
}

// LuaConfig bounds each script run and callback.
type LuaConfig struct {
	CPULimit    uint64
	MemoryLimit uint64
}

// ParseLogLevel converts a level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// Validate returns an error describing every invalid field, or nil.
func (c *Config) Validate() error {
	return NewValidator().Validate(c).Error()
}
