package canvas

import (
	"sync"

	"github.com/opd-ai/go-canvas/internal/bridge"
	"github.com/opd-ai/go-canvas/internal/toolkit"
	"github.com/opd-ai/go-canvas/internal/toolkit/headless"
)

// Bridge owns the UI thread shared by the canvases created on it. The
// thread starts with the first canvas and stops when the last one is
// closed.
type Bridge struct {
	b *bridge.Bridge
}

// NewBridge returns a bridge for the platform toolkit. A nil log discards
// messages.
func NewBridge(log Logger) *Bridge {
	return newBridge(defaultLoop, log)
}

// NewHeadlessBridge returns a bridge whose windows render off-screen.
func NewHeadlessBridge(log Logger) *Bridge {
	return newBridge(func() toolkit.Loop { return headless.New() }, log)
}

func newBridge(newLoop func() toolkit.Loop, log Logger) *Bridge {
	var bl bridge.Logger
	if log != nil {
		bl = log
	}
	return &Bridge{b: bridge.New(newLoop, bl)}
}

var (
	defaultBridgeOnce sync.Once
	defaultBridge     *Bridge

	headlessBridgeOnce sync.Once
	headlessBridge     *Bridge
)

// DefaultBridge returns the process-wide platform bridge.
//
// Ebitengine runs its game loop once per process, so with the default
// toolkit opening a canvas after the last one was closed fails: the
// bridge restarts but the loop refuses to run again. The headless bridges
// restart freely.
func DefaultBridge() *Bridge {
	defaultBridgeOnce.Do(func() { defaultBridge = NewBridge(nil) })
	return defaultBridge
}

// SharedHeadlessBridge returns the process-wide headless bridge.
func SharedHeadlessBridge() *Bridge {
	headlessBridgeOnce.Do(func() { headlessBridge = NewHeadlessBridge(nil) })
	return headlessBridge
}

// Refs returns the number of open canvases holding the UI thread.
func (b *Bridge) Refs() int { return b.b.Refs() }

// Alive reports whether the UI thread is running.
func (b *Bridge) Alive() bool { return b.b.Alive() }

// OnUIThread reports whether the caller is running on the UI thread, as an
// input handler does.
func (b *Bridge) OnUIThread() bool { return b.b.OnUIThread() }
