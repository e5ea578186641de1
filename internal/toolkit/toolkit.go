// Package toolkit defines the boundary between the canvas and the windowing
// toolkit that owns the UI thread.
//
// A Loop is driven by exactly one goroutine that is locked to its OS thread.
// Every method other than Invoke and Quit must be called from that thread,
// which in practice means from inside a function passed to Invoke. Window
// methods carry the same restriction.
package toolkit

import "image"

// Loop is a toolkit event loop.
type Loop interface {
	// Init prepares the toolkit. It is called once, on the loop thread,
	// before Run.
	Init() error

	// Run pumps events until Quit is called. It blocks the calling thread.
	Run() error

	// Quit asks Run to return. Safe from any goroutine and idempotent.
	Quit()

	// Invoke posts fn to run on the loop thread. Functions run in the order
	// they were posted. Work posted after Quit is dropped.
	Invoke(fn func())

	// NewWindow creates a top-level window. Loop thread only.
	NewWindow(cfg WindowConfig) (Window, error)
}

// Window is a single top-level toolkit window. Loop thread only.
type Window interface {
	Show()
	Move(x, y int)
	Position() (x, y int)
	Size() (w, h int)

	// Invalidate schedules a paint. Several invalidations before the next
	// paint collapse into one.
	Invalidate()

	Destroy()

	// SetPaintHandler installs the function that fills frame during a
	// paint. frame is owned by the window and sized to the window.
	SetPaintHandler(fn func(frame *image.RGBA))

	// SetEventHandler installs the function that receives input events.
	SetEventHandler(fn func(Event))
}

// WindowConfig describes a window to create.
type WindowConfig struct {
	Title  string
	Width  int
	Height int

	// Window manager hints. Toolkits that cannot honour them ignore them.
	KeepAbove   bool
	SkipTaskbar bool
}

// EventKind identifies an input event.
type EventKind int

const (
	PointerMove EventKind = iota
	ButtonPress
	ButtonRelease
	KeyPress
	KeyRelease
	Close
)

// String returns a readable event kind.
func (k EventKind) String() string {
	switch k {
	case PointerMove:
		return "pointer-move"
	case ButtonPress:
		return "button-press"
	case ButtonRelease:
		return "button-release"
	case KeyPress:
		return "key-press"
	case KeyRelease:
		return "key-release"
	case Close:
		return "close"
	default:
		return "unknown"
	}
}

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModMeta
)

// Event is a toolkit input event in window pixel coordinates.
type Event struct {
	Kind   EventKind
	X, Y   int
	Button Button

	// Key is the toolkit's own key code; no translation is attempted.
	Key     int
	KeyName string
	Mods    Modifiers

	// Repeat is set on key presses generated by auto-repeat.
	Repeat bool
}
