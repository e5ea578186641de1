package input

import (
	"image"
	"sync"
)

// Handler receives a pointer position.
type Handler func(p image.Point)

// Key describes a key press or release in the toolkit's own key codes.
type Key struct {
	Code   int
	Name   string
	Shift  bool
	Ctrl   bool
	Alt    bool
	Meta   bool
	Repeat bool
}

// KeyHandler receives a key event.
type KeyHandler func(k Key)

// Subscription is returned by every Subscribe call.
type Subscription struct {
	once   sync.Once
	remove func()
}

// Remove unregisters the handler. Calling it more than once is harmless.
func (s *Subscription) Remove() {
	if s == nil || s.remove == nil {
		return
	}
	s.once.Do(s.remove)
}

// handlers is an ordered list of callbacks with stable removal ids.
type handlers[T any] struct {
	entries []entry[T]
}

type entry[T any] struct {
	id uint64
	fn T
}

func (h *handlers[T]) add(id uint64, fn T) {
	h.entries = append(h.entries, entry[T]{id: id, fn: fn})
}

func (h *handlers[T]) remove(id uint64) {
	for i, e := range h.entries {
		if e.id == id {
			h.entries = append(h.entries[:i:i], h.entries[i+1:]...)
			return
		}
	}
}

func (h *handlers[T]) snapshot() []T {
	out := make([]T, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.fn
	}
	return out
}

// Dispatcher owns the latches and subscriber lists of one canvas.
//
// Handlers run synchronously on the goroutine that calls Fire, which for a
// canvas is the UI thread. The subscriber lists are copied before they are
// walked, so a handler may subscribe or unsubscribe without deadlocking.
type Dispatcher struct {
	pairs [numSignals]Pair

	mu      sync.Mutex
	nextID  uint64
	raw     [numSignals]handlers[Handler]
	scaled  [numSignals]handlers[Handler]
	keyDown handlers[KeyHandler]
	keyUp   handlers[KeyHandler]
	closed  handlers[func()]

	// OnPanic, if set, receives values recovered from panicking handlers.
	OnPanic func(v any)
}

// NewDispatcher returns a dispatcher with empty latches.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Latch returns the latch pair for sig.
func (d *Dispatcher) Latch(sig Signal) *Pair {
	return &d.pairs[sig]
}

// InvalidateScaled marks every scaled latch stale.
func (d *Dispatcher) InvalidateScaled() {
	for i := range d.pairs {
		d.pairs[i].InvalidateScaled()
	}
}

// Subscribe registers fn for sig. With scaled set, fn receives logical
// coordinates; otherwise window pixels.
func (d *Dispatcher) Subscribe(sig Signal, scaled bool, fn Handler) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	list := &d.raw[sig]
	if scaled {
		list = &d.scaled[sig]
	}
	list.add(id, fn)
	return &Subscription{remove: func() {
		d.mu.Lock()
		list.remove(id)
		d.mu.Unlock()
	}}
}

// SubscribeKey registers fn for key presses, or releases when up is set.
func (d *Dispatcher) SubscribeKey(up bool, fn KeyHandler) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	list := &d.keyDown
	if up {
		list = &d.keyUp
	}
	list.add(id, fn)
	return &Subscription{remove: func() {
		d.mu.Lock()
		list.remove(id)
		d.mu.Unlock()
	}}
}

// SubscribeClose registers fn for window close requests.
func (d *Dispatcher) SubscribeClose(fn func()) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.closed.add(id, fn)
	return &Subscription{remove: func() {
		d.mu.Lock()
		d.closed.remove(id)
		d.mu.Unlock()
	}}
}

// Fire latches raw and its scaled counterpart for sig, then calls the raw
// subscribers followed by the scaled subscribers, each in registration
// order.
func (d *Dispatcher) Fire(sig Signal, raw image.Point, scale int) {
	scaled := Scale(raw, scale)
	d.pairs[sig].Set(raw, scaled)

	d.mu.Lock()
	rawFns := d.raw[sig].snapshot()
	scaledFns := d.scaled[sig].snapshot()
	d.mu.Unlock()

	for _, fn := range rawFns {
		d.call(func() { fn(raw) })
	}
	for _, fn := range scaledFns {
		d.call(func() { fn(scaled) })
	}
}

// FireKey calls the key subscribers.
func (d *Dispatcher) FireKey(up bool, k Key) {
	d.mu.Lock()
	var fns []KeyHandler
	if up {
		fns = d.keyUp.snapshot()
	} else {
		fns = d.keyDown.snapshot()
	}
	d.mu.Unlock()

	for _, fn := range fns {
		d.call(func() { fn(k) })
	}
}

// FireClose calls the close subscribers.
func (d *Dispatcher) FireClose() {
	d.mu.Lock()
	fns := d.closed.snapshot()
	d.mu.Unlock()

	for _, fn := range fns {
		d.call(fn)
	}
}

func (d *Dispatcher) call(fn func()) {
	defer func() {
		if r := recover(); r != nil && d.OnPanic != nil {
			d.OnPanic(r)
		}
	}()
	fn()
}
