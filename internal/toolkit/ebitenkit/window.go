//go:build !noebiten

package ebitenkit

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/opd-ai/go-canvas/internal/toolkit"
)

// Key auto-repeat timing, in ticks.
const (
	repeatDelay    = 30
	repeatInterval = 3
)

var buttons = []struct {
	eb ebiten.MouseButton
	tk toolkit.Button
}{
	{ebiten.MouseButtonLeft, toolkit.ButtonLeft},
	{ebiten.MouseButtonRight, toolkit.ButtonRight},
	{ebiten.MouseButtonMiddle, toolkit.ButtonMiddle},
}

// Window is the single Ebitengine window. Its methods belong to the loop
// thread.
type Window struct {
	cfg   toolkit.WindowConfig
	frame *image.RGBA
	img   *ebiten.Image

	dirty     bool
	destroyed bool

	cursor      image.Point
	cursorKnown bool
	closing     bool
	keys        []ebiten.Key

	paint  func(frame *image.RGBA)
	events func(toolkit.Event)
}

func newWindow(cfg toolkit.WindowConfig) *Window {
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowFloating(cfg.KeepAbove)
	return &Window{
		cfg:   cfg,
		frame: image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
		img:   ebiten.NewImage(cfg.Width, cfg.Height),
	}
}

// Show implements toolkit.Window.
func (w *Window) Show() {
	if w.destroyed {
		return
	}
	if ebiten.IsWindowMinimized() {
		ebiten.RestoreWindow()
	}
	// Window manager hints are advisory.
	_ = applyWindowHints(w.cfg.SkipTaskbar, w.cfg.KeepAbove)
	w.Invalidate()
}

// Move implements toolkit.Window.
func (w *Window) Move(x, y int) {
	ebiten.SetWindowPosition(x, y)
}

// Position implements toolkit.Window.
func (w *Window) Position() (x, y int) {
	return ebiten.WindowPosition()
}

// Size implements toolkit.Window.
func (w *Window) Size() (width, height int) {
	return w.cfg.Width, w.cfg.Height
}

// Invalidate implements toolkit.Window. The paint happens in the next tick.
func (w *Window) Invalidate() {
	w.dirty = true
}

func (w *Window) paintNow() {
	w.dirty = false
	if w.paint == nil {
		return
	}
	w.paint(w.frame)
	w.img.WritePixels(w.frame.Pix)
}

// Destroy implements toolkit.Window. Ebitengine cannot close its window
// while the game runs, so it is minimised until the loop quits.
func (w *Window) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.paint = nil
	w.events = nil
	w.img.Deallocate()
	ebiten.MinimizeWindow()
}

// SetPaintHandler implements toolkit.Window.
func (w *Window) SetPaintHandler(fn func(frame *image.RGBA)) {
	w.paint = fn
}

// SetEventHandler implements toolkit.Window.
func (w *Window) SetEventHandler(fn func(toolkit.Event)) {
	w.events = fn
}

// poll turns this tick's Ebitengine input state into events.
func (w *Window) poll() {
	if w.events == nil {
		return
	}
	mods := modifiers()

	x, y := ebiten.CursorPosition()
	if p := image.Pt(x, y); !w.cursorKnown || p != w.cursor {
		w.cursor, w.cursorKnown = p, true
		w.emit(toolkit.Event{Kind: toolkit.PointerMove, X: x, Y: y, Mods: mods})
	}

	for _, b := range buttons {
		if inpututil.IsMouseButtonJustPressed(b.eb) {
			w.emit(toolkit.Event{Kind: toolkit.ButtonPress, X: x, Y: y, Button: b.tk, Mods: mods})
		}
		if inpututil.IsMouseButtonJustReleased(b.eb) {
			w.emit(toolkit.Event{Kind: toolkit.ButtonRelease, X: x, Y: y, Button: b.tk, Mods: mods})
		}
	}

	w.keys = inpututil.AppendJustPressedKeys(w.keys[:0])
	for _, k := range w.keys {
		w.emit(keyEvent(toolkit.KeyPress, k, mods, false))
	}
	w.keys = inpututil.AppendPressedKeys(w.keys[:0])
	for _, k := range w.keys {
		if isRepeat(inpututil.KeyPressDuration(k)) {
			w.emit(keyEvent(toolkit.KeyPress, k, mods, true))
		}
	}
	w.keys = inpututil.AppendJustReleasedKeys(w.keys[:0])
	for _, k := range w.keys {
		w.emit(keyEvent(toolkit.KeyRelease, k, mods, false))
	}

	closing := ebiten.IsWindowBeingClosed()
	if closing && !w.closing {
		w.emit(toolkit.Event{Kind: toolkit.Close})
	}
	w.closing = closing
}

// emit delivers ev unless an earlier handler destroyed the window.
func (w *Window) emit(ev toolkit.Event) {
	if w.events != nil {
		w.events(ev)
	}
}

func keyEvent(kind toolkit.EventKind, k ebiten.Key, mods toolkit.Modifiers, repeat bool) toolkit.Event {
	return toolkit.Event{Kind: kind, Key: int(k), KeyName: k.String(), Mods: mods, Repeat: repeat}
}

// isRepeat reports whether a key held for d ticks auto-repeats this tick.
func isRepeat(d int) bool {
	return d > repeatDelay && (d-repeatDelay)%repeatInterval == 0
}

func modifiers() toolkit.Modifiers {
	var m toolkit.Modifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= toolkit.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= toolkit.ModControl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= toolkit.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		m |= toolkit.ModMeta
	}
	return m
}
