//go:build !noebiten

// Package ebitenkit implements the toolkit boundary on Ebitengine.
//
// Ebitengine hosts one window per process and its game loop can run only
// once, so a Loop supports a single window and cannot be restarted.
// The game runs in single-thread mode on the thread that calls Run, so
// Update, and the input handlers it dispatches, share that thread.
// Platforms that insist on the process main thread for windowing (macOS)
// are not supported.
package ebitenkit

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/opd-ai/go-canvas/internal/toolkit"
)

// ran is set once any Loop in the process has been initialised.
var ran atomic.Bool

// Loop runs queued work between Ebitengine ticks.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	quit  atomic.Bool

	win *Window
}

// New returns an idle loop.
func New() *Loop {
	return &Loop{}
}

// Init implements toolkit.Loop.
func (l *Loop) Init() error {
	if ran.Swap(true) {
		return toolkit.ErrLoopUsed
	}
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	return nil
}

// Run implements toolkit.Loop. It blocks in the game loop until Quit.
func (l *Loop) Run() error {
	err := ebiten.RunGameWithOptions(&game{loop: l}, &ebiten.RunGameOptions{SingleThread: true})
	closeWindowHints()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Quit implements toolkit.Loop. The game stops at the next tick.
func (l *Loop) Quit() {
	l.quit.Store(true)
}

// Invoke implements toolkit.Loop. Work runs at the start of the next tick.
func (l *Loop) Invoke(fn func()) {
	if l.quit.Load() {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
}

// drain runs the work queued so far. Work queued while draining waits for
// the next tick.
func (l *Loop) drain() {
	l.mu.Lock()
	work := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range work {
		if l.quit.Load() {
			return
		}
		fn()
	}
}

// NewWindow implements toolkit.Loop.
func (l *Loop) NewWindow(cfg toolkit.WindowConfig) (toolkit.Window, error) {
	if err := toolkit.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if l.win != nil && !l.win.destroyed {
		return nil, toolkit.ErrWindowLimit
	}
	l.win = newWindow(cfg)
	return l.win, nil
}

// game adapts a Loop to ebiten.Game.
type game struct {
	loop *Loop
}

// Update implements ebiten.Game.
func (g *game) Update() error {
	g.loop.drain()
	if g.loop.quit.Load() {
		return ebiten.Termination
	}
	if w := g.loop.win; w != nil && !w.destroyed {
		w.poll()
		if w.dirty {
			w.paintNow()
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *game) Draw(screen *ebiten.Image) {
	if w := g.loop.win; w != nil && !w.destroyed {
		screen.DrawImage(w.img, nil)
	}
}

// Layout implements ebiten.Game. The screen is the window size in pixels.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if w := g.loop.win; w != nil {
		return w.cfg.Width, w.cfg.Height
	}
	return outsideWidth, outsideHeight
}
