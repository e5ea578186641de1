package canvas

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-canvas/internal/input"
	"github.com/opd-ai/go-canvas/internal/raster"
	"github.com/opd-ai/go-canvas/internal/scene"
	"github.com/opd-ai/go-canvas/internal/toolkit"
)

// Canvas is a window showing a background pixel buffer with a retained
// list of shapes drawn over it. All methods are safe for concurrent use.
//
// Input handlers run on the UI thread. Repaints and pixel writes made from
// a handler are queued rather than waited for, and Close called from a
// handler completes in the background. Calls from any other goroutine wait
// for the UI thread. Reads that need the UI thread (GetPixel,
// GetScaledPixel, Snapshot, Position) must not be called from a handler.
type Canvas struct {
	width, height int
	title         string
	duplicate     bool

	bridge  *Bridge
	log     Logger
	metrics *Metrics

	scene *scene.Scene
	input *input.Dispatcher

	scale      atomic.Int32
	continuous atomic.Bool
	dirty      atomic.Bool

	closeMu sync.Mutex
	closed  atomic.Bool

	// win and the fields below belong to the UI thread.
	win      *window
	lastMove image.Point
	moved    bool
}

// New opens a width×height canvas filled with opts.Background. A nil opts
// means DefaultOptions().
func New(width, height int, opts *Options) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas size %dx%d: %w", width, height, ErrOutOfRange)
	}
	o := resolveOptions(opts)
	bg := scene.ToNRGBA(o.Background, raster.White)
	return open(raster.NewBuffer(width, height, bg), o)
}

// NewFromImage opens a canvas the size of img with img as its background.
func NewFromImage(img image.Image, opts *Options) (*Canvas, error) {
	if img == nil {
		return nil, fmt.Errorf("background image: %w", ErrInvalidArgument)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("background image size %dx%d: %w", b.Dx(), b.Dy(), ErrOutOfRange)
	}
	return open(raster.BufferFromImage(img), resolveOptions(opts))
}

func resolveOptions(opts *Options) Options {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Logger == nil {
		o.Logger = NopLogger()
	}
	if o.Metrics == nil {
		o.Metrics = DefaultMetrics()
	}
	if o.Bridge == nil {
		if o.Headless {
			o.Bridge = SharedHeadlessBridge()
		} else {
			o.Bridge = DefaultBridge()
		}
	}
	return o
}

func open(buf *raster.Buffer, o Options) (*Canvas, error) {
	size := buf.Bounds().Size()
	c := &Canvas{
		width:     size.X,
		height:    size.Y,
		title:     o.Title,
		duplicate: o.DuplicateEvents,
		bridge:    o.Bridge,
		log:       o.Logger,
		metrics:   o.Metrics,
		scene:     scene.New(),
		input:     input.NewDispatcher(),
	}
	c.scale.Store(1)
	c.continuous.Store(o.ContinuousUpdate)
	c.input.OnPanic = func(v any) {
		c.metrics.handlerPanics.Add(1)
		c.log.Error("input handler panicked", "title", c.title, "panic", v)
	}

	if err := c.bridge.b.Start(); err != nil {
		return nil, fmt.Errorf("open canvas: %w", err)
	}

	cfg := toolkit.WindowConfig{
		Title:       o.Title,
		Width:       c.width,
		Height:      c.height,
		KeepAbove:   o.KeepAbove,
		SkipTaskbar: o.SkipTaskbar,
	}
	err := c.bridge.b.RunBlocking(func(loop toolkit.Loop) error {
		w, err := openWindow(loop, cfg, buf, c.scene, c.Scale, c.metrics, c.handleEvent)
		if err != nil {
			return err
		}
		c.win = w
		return nil
	})
	if err != nil {
		if stopErr := c.bridge.b.Stop(); stopErr != nil {
			c.log.Error("release ui thread", "error", stopErr)
		}
		return nil, fmt.Errorf("open canvas: %w", err)
	}

	c.metrics.canvasOpened()
	c.log.Info("canvas opened", "title", c.title, "width", c.width, "height", c.height)
	return c, nil
}

// Width returns the width in window pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the height in window pixels.
func (c *Canvas) Height() int { return c.height }

// Scale returns the number of window pixels per logical unit.
func (c *Canvas) Scale() int { return int(c.scale.Load()) }

// ScaledWidth returns the width in logical units.
func (c *Canvas) ScaledWidth() int { return c.width / c.Scale() }

// ScaledHeight returns the height in logical units.
func (c *Canvas) ScaledHeight() int { return c.height / c.Scale() }

// SetScale sets the pixels per logical unit, 1 <= n <= Width(). Values
// already latched keep the scale they were recorded with, but are marked
// stale.
func (c *Canvas) SetScale(n int) error {
	if n < 1 || n > c.width {
		return fmt.Errorf("scale %d not in [1, %d]: %w", n, c.width, ErrOutOfRange)
	}
	c.scale.Store(int32(n))
	c.input.InvalidateScaled()
	return c.damage()
}

// ContinuousUpdate reports whether every change repaints immediately.
func (c *Canvas) ContinuousUpdate() bool { return c.continuous.Load() }

// SetContinuousUpdate switches the update policy. Turning it on flushes any
// pending change.
func (c *Canvas) SetContinuousUpdate(on bool) error {
	c.continuous.Store(on)
	if on {
		return c.Render()
	}
	return nil
}

// DuplicateEvents reports whether repeated pointer moves and auto-repeated
// keys are delivered.
func (c *Canvas) DuplicateEvents() bool { return c.duplicate }

// Render repaints if anything changed since the last repaint.
func (c *Canvas) Render() error {
	if !c.dirty.Swap(false) {
		c.metrics.rendersSkipped.Add(1)
		return nil
	}
	return c.apply(func(w *window) { w.invalidate() })
}

// Clear removes every shape. The background buffer is untouched.
func (c *Canvas) Clear() error {
	c.scene.Clear()
	c.metrics.sceneClears.Add(1)
	return c.damage()
}

// Len returns the number of shapes in the scene.
func (c *Canvas) Len() int { return c.scene.Len() }

// Title returns the window title.
func (c *Canvas) Title() string { return c.title }

// Position returns the window position on screen.
func (c *Canvas) Position() (x, y int, err error) {
	err = c.do(func(w *window) error {
		x, y = w.tw.Position()
		return nil
	})
	return x, y, err
}

// Move places the window at (x, y) on screen.
func (c *Canvas) Move(x, y int) error {
	return c.apply(func(w *window) { w.tw.Move(x, y) })
}

// Snapshot returns the background with the scene painted over it at the
// current scale.
func (c *Canvas) Snapshot() (*image.RGBA, error) {
	var img *image.RGBA
	err := c.do(func(w *window) error {
		img = w.snapshot()
		return nil
	})
	return img, err
}

// Closed reports whether Close has been called.
func (c *Canvas) Closed() bool { return c.closed.Load() }

// Close destroys the window and releases the UI thread. Closing twice is a
// no-op. Afterwards every call that needs the UI thread returns
// ErrNotRunning.
func (c *Canvas) Close() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed.Swap(true) {
		return nil
	}

	if c.bridge.OnUIThread() {
		go c.teardown()
		return nil
	}
	return c.teardown()
}

func (c *Canvas) teardown() error {
	err := c.bridge.b.RunBlocking(func(toolkit.Loop) error {
		c.win.destroy()
		return nil
	})
	if errors.Is(err, ErrNotRunning) {
		err = nil
	}
	stopErr := c.bridge.b.Stop()

	c.metrics.canvasClosed()
	c.log.Info("canvas closed", "title", c.title)
	return errors.Join(err, stopErr)
}

// damage marks the scene changed and repaints when updating continuously.
func (c *Canvas) damage() error {
	c.dirty.Store(true)
	if !c.continuous.Load() {
		return nil
	}
	return c.Render()
}

// do runs work on the UI thread and waits for it.
func (c *Canvas) do(work func(w *window) error) error {
	if c.closed.Load() {
		return ErrNotRunning
	}
	start := time.Now()
	err := c.bridge.b.RunBlocking(func(toolkit.Loop) error {
		return work(c.win)
	})
	c.metrics.recordBridgeCall(time.Since(start), err)
	if err != nil && !errors.Is(err, ErrNotRunning) {
		c.log.Error("ui call failed", "title", c.title, "error", err)
	}
	return err
}

// apply runs a write on the UI thread. Called from the UI thread itself it
// is queued rather than waited for.
func (c *Canvas) apply(work func(w *window)) error {
	if !c.bridge.OnUIThread() {
		return c.do(func(w *window) error {
			work(w)
			return nil
		})
	}
	if c.closed.Load() {
		return ErrNotRunning
	}
	c.metrics.bridgeCalls.Add(1)
	return c.bridge.b.Post(func(toolkit.Loop) { work(c.win) })
}
