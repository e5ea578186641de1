package config

import "time"

// Default values for configuration options.
const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 400
	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 300
	// DefaultScale is the default number of pixels per logical unit.
	DefaultScale = 1
	// DefaultTitle is the default window title.
	DefaultTitle = "go-canvas"
	// DefaultBackground is the default background colour.
	DefaultBackground = "white"
	// DefaultTick is the default canvas_tick interval (20 Hz).
	DefaultTick = 50 * time.Millisecond
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
	// DefaultCPULimit is the default Lua instruction budget per call.
	DefaultCPULimit = 10_000_000
	// DefaultMemoryLimit is the default Lua memory budget (50 MB).
	DefaultMemoryLimit = 50 * 1024 * 1024
)

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Window: WindowConfig{
			Width:      DefaultWidth,
			Height:     DefaultHeight,
			Scale:      DefaultScale,
			Title:      DefaultTitle,
			Background: DefaultBackground,
		},
		Update: UpdateConfig{
			Continuous: true,
			Tick:       DefaultTick,
		},
		LogLevel: DefaultLogLevel,
		Lua: LuaConfig{
			CPULimit:    DefaultCPULimit,
			MemoryLimit: DefaultMemoryLimit,
		},
	}
}
