package headless

import (
	"image"
	"image/draw"

	"github.com/opd-ai/go-canvas/internal/toolkit"
)

// Window is an off-screen window. Apart from Inject, its methods belong to
// the loop thread.
type Window struct {
	loop  *Loop
	cfg   toolkit.WindowConfig
	frame *image.RGBA

	x, y      int
	shown     bool
	destroyed bool
	pending   bool
	paints    int

	paint  func(frame *image.RGBA)
	events func(toolkit.Event)
}

// Show implements toolkit.Window.
func (w *Window) Show() {
	if w.destroyed {
		return
	}
	w.shown = true
	w.Invalidate()
}

// Move implements toolkit.Window.
func (w *Window) Move(x, y int) {
	w.x, w.y = x, y
}

// Position implements toolkit.Window.
func (w *Window) Position() (x, y int) {
	return w.x, w.y
}

// Size implements toolkit.Window.
func (w *Window) Size() (width, height int) {
	return w.cfg.Width, w.cfg.Height
}

// Invalidate implements toolkit.Window. The paint runs as a separate loop
// task, after any work already queued.
func (w *Window) Invalidate() {
	if w.pending || w.destroyed {
		return
	}
	w.pending = true
	w.loop.Invoke(w.paintNow)
}

func (w *Window) paintNow() {
	w.pending = false
	if w.destroyed {
		return
	}
	if w.paint != nil {
		w.paint(w.frame)
	}
	w.paints++
}

// Destroy implements toolkit.Window.
func (w *Window) Destroy() {
	w.destroyed = true
	w.shown = false
	w.paint = nil
	w.events = nil
}

// SetPaintHandler implements toolkit.Window.
func (w *Window) SetPaintHandler(fn func(frame *image.RGBA)) {
	w.paint = fn
}

// SetEventHandler implements toolkit.Window.
func (w *Window) SetEventHandler(fn func(toolkit.Event)) {
	w.events = fn
}

// Inject queues ev for delivery to the event handler on the loop thread.
// Safe from any goroutine.
func (w *Window) Inject(ev toolkit.Event) {
	w.loop.Invoke(func() {
		if w.destroyed || w.events == nil {
			return
		}
		w.events(ev)
	})
}

// Frame returns a copy of the last painted frame.
func (w *Window) Frame() *image.RGBA {
	out := image.NewRGBA(w.frame.Bounds())
	draw.Draw(out, out.Bounds(), w.frame, image.Point{}, draw.Src)
	return out
}

// Title returns the configured title.
func (w *Window) Title() string { return w.cfg.Title }

// Paints reports how many paints have completed.
func (w *Window) Paints() int { return w.paints }

// Shown reports whether Show has been called and the window is alive.
func (w *Window) Shown() bool { return w.shown }

// Destroyed reports whether Destroy has been called.
func (w *Window) Destroyed() bool { return w.destroyed }
