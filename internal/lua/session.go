package lua

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-canvas/pkg/canvas"
)

// DefaultQueueSize is the number of pending callbacks a Session buffers.
const DefaultQueueSize = 256

// Exporter saves or copies canvas snapshots for canvas.save and canvas.copy.
type Exporter interface {
	// Save writes img as PNG. An empty path asks the user for one; the
	// path actually written is returned.
	Save(img image.Image, path string) (string, error)
	// Copy places img on the clipboard.
	Copy(img image.Image) error
}

// SessionOptions configures a Session.
type SessionOptions struct {
	// QueueSize bounds the callback queue. Events beyond it are dropped.
	QueueSize int
	// Exporter backs canvas.save and canvas.copy. Nil disables them.
	Exporter Exporter
	// Logger receives callback errors and drops. Nil discards them.
	Logger canvas.Logger
}

// Session binds one Lua runtime to one canvas.
//
// Input handlers run on the UI thread and only enqueue callbacks; Pump
// runs them on its own goroutine, which must be the goroutine that runs
// the script.
type Session struct {
	runtime *Runtime
	canvas  *canvas.Canvas
	hooks   *HookManager
	export  Exporter
	log     canvas.Logger

	events  chan event
	dropped atomic.Int64

	// gen advances on every Reset. Events carry the generation their
	// handler was registered in and older ones are discarded.
	gen atomic.Uint64

	mu   sync.Mutex
	subs []*canvas.Subscription
}

type event struct {
	gen  uint64
	fn   rt.Value
	args []rt.Value
}

// NewSession registers the canvas table in runtime and returns a session
// driving cv.
func NewSession(runtime *Runtime, cv *canvas.Canvas, opts SessionOptions) (*Session, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	if cv == nil {
		return nil, ErrNilCanvas
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = canvas.NopLogger()
	}

	hooks, err := NewHookManager(runtime)
	if err != nil {
		return nil, err
	}
	s := &Session{
		runtime: runtime,
		canvas:  cv,
		hooks:   hooks,
		export:  opts.Exporter,
		log:     opts.Logger,
		events:  make(chan event, opts.QueueSize),
	}
	runtime.SetGlobal("canvas", rt.TableValue(s.table()))
	return s, nil
}

// Runtime returns the session's Lua runtime.
func (s *Session) Runtime() *Runtime { return s.runtime }

// Canvas returns the canvas the session draws on.
func (s *Session) Canvas() *canvas.Canvas { return s.canvas }

// Hooks returns the session's lifecycle hooks.
func (s *Session) Hooks() *HookManager { return s.hooks }

// Dropped returns the number of callbacks discarded on a full queue.
func (s *Session) Dropped() int64 { return s.dropped.Load() }

// RunFile executes the script at path, then registers its hooks and calls
// canvas_start if it defines one.
func (s *Session) RunFile(path string) error {
	closure, err := s.runtime.LoadFile(path)
	if err != nil {
		return err
	}
	return s.run(closure)
}

// RunString is RunFile for inline code.
func (s *Session) RunString(name, code string) error {
	closure, err := s.runtime.LoadString(name, code)
	if err != nil {
		return err
	}
	return s.run(closure)
}

func (s *Session) run(closure *rt.Closure) error {
	if _, err := s.runtime.Execute(closure); err != nil {
		return err
	}
	s.hooks.AutoRegisterHooks()
	_, err := s.hooks.Call(HookStart)
	return err
}

// Reset prepares the session for rerunning a script: it calls canvas_stop,
// removes every input subscription, discards queued callbacks and forgets
// the hooks. Callbacks queued later by a handler of the old run are
// dropped when delivered. The canvas scene is cleared unless it is already closed.
func (s *Session) Reset() error {
	_, err := s.hooks.Call(HookStop)
	s.hooks.Clear()
	s.gen.Add(1)

	s.mu.Lock()
	for _, sub := range s.subs {
		sub.Remove()
	}
	s.subs = nil
	s.mu.Unlock()

drain:
	for {
		select {
		case <-s.events:
		default:
			break drain
		}
	}

	if !s.canvas.Closed() {
		err = errors.Join(err, s.canvas.Clear())
	}
	return err
}

// Pump delivers queued callbacks and, if tick is positive, calls
// canvas_tick(dt) every tick. It returns ctx.Err() when ctx is done.
// Callback errors are logged and do not stop the pump.
func (s *Session) Pump(ctx context.Context, tick time.Duration) error {
	var ticks <-chan time.Time
	if tick > 0 {
		t := time.NewTicker(tick)
		defer t.Stop()
		ticks = t.C
	}
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.deliver(ev)
		case now := <-ticks:
			dt := now.Sub(last).Seconds()
			last = now
			if _, err := s.hooks.Call(HookTick, rt.FloatValue(dt)); err != nil {
				s.log.Error("tick failed", "error", err)
			}
		}
	}
}

// Drain runs the callbacks queued so far and returns how many ran.
func (s *Session) Drain() int {
	n := 0
	for {
		select {
		case ev := <-s.events:
			if s.deliver(ev) {
				n++
			}
		default:
			return n
		}
	}
}

// deliver calls ev unless it was queued by a handler from before the last
// Reset.
func (s *Session) deliver(ev event) bool {
	if ev.gen != s.gen.Load() {
		return false
	}
	if _, err := s.runtime.Call(ev.fn, ev.args...); err != nil {
		s.log.Error("callback failed", "error", err)
	}
	return true
}

// emitter returns the function an input handler registered now uses to
// queue calls of fn.
func (s *Session) emitter(fn rt.Value) func(args ...rt.Value) {
	gen := s.gen.Load()
	return func(args ...rt.Value) { s.push(event{gen: gen, fn: fn, args: args}) }
}

// enqueue queues a call of fn in the current generation.
func (s *Session) enqueue(fn rt.Value, args ...rt.Value) {
	s.push(event{gen: s.gen.Load(), fn: fn, args: args})
}

// push is called on the UI thread and must not block.
func (s *Session) push(ev event) {
	select {
	case s.events <- ev:
	default:
		if s.dropped.Add(1) == 1 {
			s.log.Warn("callback queue full, dropping events", "size", cap(s.events))
		}
	}
}

func (s *Session) track(sub *canvas.Subscription) {
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
}

func (s *Session) snapshot() (*image.RGBA, error) {
	if s.export == nil {
		return nil, ErrNoExporter
	}
	img, err := s.canvas.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return img, nil
}
