// Package input turns pointer and key events into "last value" latches and
// ordered subscriber callbacks.
//
// Every pointer signal is kept twice: in raw window pixels and in scaled
// logical units (raw divided by the canvas scale, truncated toward zero).
// Each variant has its own freshness flag, so reading the raw value does
// not consume the scaled one.
package input

import (
	"image"
	"sync"
)

// Signal identifies a latched pointer signal.
type Signal int

const (
	Move Signal = iota
	LeftPress
	LeftRelease
	RightPress
	RightRelease

	numSignals
)

// Signals lists every Signal in order.
var Signals = []Signal{Move, LeftPress, LeftRelease, RightPress, RightRelease}

func (s Signal) String() string {
	switch s {
	case Move:
		return "move"
	case LeftPress:
		return "left-press"
	case LeftRelease:
		return "left-release"
	case RightPress:
		return "right-press"
	case RightRelease:
		return "right-release"
	default:
		return "unknown"
	}
}

// Pair holds the raw and scaled latch of one signal.
type Pair struct {
	mu          sync.Mutex
	raw, scaled image.Point
	rawFresh    bool
	scaledFresh bool
}

// Set stores a new value in both latches and marks them fresh.
func (p *Pair) Set(raw, scaled image.Point) {
	p.mu.Lock()
	p.raw, p.scaled = raw, scaled
	p.rawFresh, p.scaledFresh = true, true
	p.mu.Unlock()
}

// TakeRaw returns the last raw value and whether it had not been read
// since it was set. The value is kept; only the flag is cleared.
func (p *Pair) TakeRaw() (image.Point, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fresh := p.rawFresh
	p.rawFresh = false
	return p.raw, fresh
}

// TakeScaled is TakeRaw for the scaled latch.
func (p *Pair) TakeScaled() (image.Point, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fresh := p.scaledFresh
	p.scaledFresh = false
	return p.scaled, fresh
}

// InvalidateScaled marks the scaled latch stale. Its value, computed under
// the old scale, is left as is.
func (p *Pair) InvalidateScaled() {
	p.mu.Lock()
	p.scaledFresh = false
	p.mu.Unlock()
}

// Scale converts a raw window point to logical units.
func Scale(raw image.Point, scale int) image.Point {
	if scale < 1 {
		scale = 1
	}
	return raw.Div(scale)
}
