// Package headless implements an off-screen toolkit. Windows render into
// in-memory frames and input arrives through Inject, which makes the package
// suitable for tests, CI and batch rendering.
package headless

import (
	"image"
	"sync"

	"github.com/opd-ai/go-canvas/internal/toolkit"
)

// Loop is an off-screen event loop backed by a FIFO work queue.
type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	quit    bool
	quitCh  chan struct{}
	ran     bool
	windows []*Window
}

// New returns an idle loop.
func New() *Loop {
	l := &Loop{quitCh: make(chan struct{})}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Init implements toolkit.Loop.
func (l *Loop) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ran {
		return toolkit.ErrLoopUsed
	}
	return nil
}

// Run implements toolkit.Loop.
func (l *Loop) Run() error {
	l.mu.Lock()
	if l.ran {
		l.mu.Unlock()
		return toolkit.ErrLoopUsed
	}
	l.ran = true
	l.mu.Unlock()

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.quit {
			l.cond.Wait()
		}
		if l.quit {
			l.queue = nil
			l.mu.Unlock()
			return nil
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
	}
}

// Quit implements toolkit.Loop.
func (l *Loop) Quit() {
	l.mu.Lock()
	if !l.quit {
		l.quit = true
		close(l.quitCh)
	}
	l.mu.Unlock()
	l.cond.Broadcast()
}

// Invoke implements toolkit.Loop.
func (l *Loop) Invoke(fn func()) {
	l.mu.Lock()
	if l.quit {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.cond.Signal()
}

// Sync blocks until every function posted before the call has run. It
// returns false if the loop quit first. Must not be called on the loop
// thread.
func (l *Loop) Sync() bool {
	done := make(chan struct{})
	l.Invoke(func() { close(done) })
	select {
	case <-done:
		return true
	case <-l.quitCh:
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}

// Windows returns the windows created on this loop, including destroyed
// ones. Safe from any goroutine.
func (l *Loop) Windows() []*Window {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Window, len(l.windows))
	copy(out, l.windows)
	return out
}

// NewWindow implements toolkit.Loop.
func (l *Loop) NewWindow(cfg toolkit.WindowConfig) (toolkit.Window, error) {
	if err := toolkit.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	w := &Window{
		loop:  l,
		cfg:   cfg,
		frame: image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
	}
	l.mu.Lock()
	l.windows = append(l.windows, w)
	l.mu.Unlock()
	return w, nil
}
