// Package bridge owns the UI thread. Every toolkit call made by the canvas
// goes through Bridge.RunBlocking, which marshals the call onto the thread
// running the toolkit loop and blocks until it finishes.
//
// A Bridge is reference counted: each canvas calls Start when it is created
// and Stop when it is closed. The first Start launches the UI thread, the
// last Stop shuts it down and joins it, after which the bridge can be
// started again.
package bridge

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/opd-ai/go-canvas/internal/toolkit"
)

// ErrNotRunning is returned when work is submitted while the UI thread is
// not running.
var ErrNotRunning = errors.New("ui thread is not running")

// Logger is the subset of structured logging the bridge uses.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// PanicError carries a panic recovered on the UI thread back to the caller
// of RunBlocking.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic on ui thread: %v", e.Value)
}

// Bridge marshals work onto a single UI thread.
type Bridge struct {
	newLoop func() toolkit.Loop
	log     Logger

	mu     sync.Mutex
	refs   int
	loop   toolkit.Loop
	exited chan struct{}
	runErr error

	// uiThread is the OS thread id of the running UI thread, 0 when
	// stopped. dispatching counts Dispatch calls in progress.
	uiThread    atomic.Int64
	dispatching atomic.Int32
}

// New returns a stopped bridge. newLoop is called on every 0→1 start to
// build a fresh toolkit loop. A nil log discards messages.
func New(newLoop func() toolkit.Loop, log Logger) *Bridge {
	if log == nil {
		log = nopLogger{}
	}
	return &Bridge{newLoop: newLoop, log: log}
}

// Start takes a reference on the UI thread, launching it if this is the
// first reference. It returns once the loop is confirmed to be pumping.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refs > 0 {
		b.refs++
		return nil
	}

	loop := b.newLoop()
	exited := make(chan struct{})
	initErr := make(chan error, 1)
	go b.run(loop, exited, initErr)

	if err := <-initErr; err != nil {
		<-exited
		return fmt.Errorf("start ui thread: %w", err)
	}

	ready := make(chan struct{})
	loop.Invoke(func() { close(ready) })
	select {
	case <-ready:
	case <-exited:
		if b.runErr != nil {
			return fmt.Errorf("start ui thread: %w", b.runErr)
		}
		return fmt.Errorf("start ui thread: %w", ErrNotRunning)
	}

	b.loop = loop
	b.exited = exited
	b.refs = 1
	b.log.Debug("ui thread started")
	return nil
}

// run is the body of the UI thread.
func (b *Bridge) run(loop toolkit.Loop, exited chan struct{}, initErr chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(exited)

	b.uiThread.Store(threadID())
	defer b.uiThread.Store(0)

	if err := call(loop, func(l toolkit.Loop) error { return l.Init() }); err != nil {
		initErr <- err
		return
	}
	initErr <- nil

	if err := call(loop, func(l toolkit.Loop) error { return l.Run() }); err != nil {
		b.log.Error("ui thread exited", "error", err)
		b.runErr = err
	}
}

// Stop releases a reference. The last reference quits the loop and waits
// for the UI thread to exit. Stop on a stopped bridge is a no-op. Stop must
// not be called from the UI thread.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refs == 0 {
		return nil
	}
	b.refs--
	if b.refs > 0 {
		return nil
	}

	loop, exited := b.loop, b.exited
	b.loop, b.exited = nil, nil
	loop.Quit()
	<-exited

	err := b.runErr
	b.runErr = nil
	b.log.Debug("ui thread stopped")
	return err
}

// RunBlocking runs work on the UI thread and waits for it. The error
// returned by work is returned unchanged; a panic in work is returned as a
// *PanicError. If the UI thread is not running, or stops before work runs,
// the result is ErrNotRunning.
//
// RunBlocking must not be called from the UI thread: work queued behind the
// current task can never run, so the call would deadlock.
func (b *Bridge) RunBlocking(work func(loop toolkit.Loop) error) error {
	b.mu.Lock()
	loop, exited := b.loop, b.exited
	b.mu.Unlock()

	if loop == nil {
		return ErrNotRunning
	}
	select {
	case <-exited:
		return ErrNotRunning
	default:
	}

	done := make(chan error, 1)
	loop.Invoke(func() { done <- call(loop, work) })

	select {
	case err := <-done:
		return err
	case <-exited:
		select {
		case err := <-done:
			return err
		default:
			return ErrNotRunning
		}
	}
}

// Post queues work on the UI thread without waiting for it. It is the one
// way to reach the UI thread from code already running there. A panic in
// work is logged.
func (b *Bridge) Post(work func(loop toolkit.Loop)) error {
	b.mu.Lock()
	loop, exited := b.loop, b.exited
	b.mu.Unlock()

	if loop == nil {
		return ErrNotRunning
	}
	select {
	case <-exited:
		return ErrNotRunning
	default:
	}

	loop.Invoke(func() {
		err := call(loop, func(l toolkit.Loop) error {
			work(l)
			return nil
		})
		if err != nil {
			b.log.Error("posted work failed", "error", err)
		}
	})
	return nil
}

// OnUIThread reports whether the caller is running on this bridge's UI
// thread. Code there must use Post, since RunBlocking and the last Stop
// would wait on the thread they are running on.
func (b *Bridge) OnUIThread() bool {
	if tid := threadID(); tid != 0 {
		return tid == b.uiThread.Load()
	}
	return b.dispatching.Load() > 0
}

// Dispatch runs fn, which must be called on the UI thread, marking it as UI
// work for OnUIThread on platforms without thread ids.
func (b *Bridge) Dispatch(fn func()) {
	b.dispatching.Add(1)
	defer b.dispatching.Add(-1)
	fn()
}

// Alive reports whether the UI thread is running.
func (b *Bridge) Alive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.exited == nil {
		return false
	}
	select {
	case <-b.exited:
		return false
	default:
		return true
	}
}

// Refs returns the current reference count.
func (b *Bridge) Refs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refs
}

func call(loop toolkit.Loop, work func(toolkit.Loop) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return work(loop)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
