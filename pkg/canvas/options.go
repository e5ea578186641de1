package canvas

import (
	"image/color"
)

// DefaultTitle is the window title used when Options.Title is empty.
const DefaultTitle = "go-canvas"

// Options configures a Canvas.
type Options struct {
	// Title is the window title.
	Title string

	// Background fills the pixel buffer of a canvas created with New.
	// Ignored by NewFromImage. The zero value means white.
	Background color.Color

	// ContinuousUpdate repaints after every change. When false, changes
	// accumulate until Render is called.
	ContinuousUpdate bool

	// DuplicateEvents forwards pointer moves that repeat the previous
	// position and auto-repeated key presses. When false they are dropped.
	DuplicateEvents bool

	// Headless renders off-screen through a process-wide headless bridge.
	// Ignored when Bridge is set.
	Headless bool

	// Bridge selects the UI thread. Nil means DefaultBridge(), or the shared
	// headless bridge when Headless is set.
	Bridge *Bridge

	// KeepAbove and SkipTaskbar are window manager hints. Toolkits that
	// cannot apply them ignore them.
	KeepAbove   bool
	SkipTaskbar bool

	// Logger receives lifecycle and error messages. Nil disables logging.
	Logger Logger

	// Metrics collects operational counters. Nil means DefaultMetrics().
	Metrics *Metrics
}

// DefaultOptions returns the options used when New is given nil.
func DefaultOptions() Options {
	return Options{
		Title:            DefaultTitle,
		ContinuousUpdate: true,
	}
}

// Logger interface for custom logging.
// It follows the slog-style signature for compatibility with Go's structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
