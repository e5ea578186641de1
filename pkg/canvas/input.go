package canvas

import (
	"image"

	"github.com/opd-ai/go-canvas/internal/input"
	"github.com/opd-ai/go-canvas/internal/toolkit"
)

// Subscription is returned by every On* method. Remove unregisters the
// handler.
type Subscription = input.Subscription

// KeyEvent describes a key press or release. Code is the toolkit's key
// code and is not translated.
type KeyEvent = input.Key

// handleEvent receives toolkit events on the UI thread.
func (c *Canvas) handleEvent(ev toolkit.Event) {
	c.bridge.b.Dispatch(func() { c.dispatch(ev) })
}

func (c *Canvas) dispatch(ev toolkit.Event) {
	c.metrics.inputEvents.Add(1)

	pt := image.Pt(ev.X, ev.Y)
	switch ev.Kind {
	case toolkit.PointerMove:
		if !c.duplicate && c.moved && pt == c.lastMove {
			c.metrics.droppedEvents.Add(1)
			return
		}
		c.lastMove, c.moved = pt, true
		c.input.Fire(input.Move, pt, c.Scale())
	case toolkit.ButtonPress:
		if sig, ok := buttonSignal(ev.Button, false); ok {
			c.input.Fire(sig, pt, c.Scale())
		}
	case toolkit.ButtonRelease:
		if sig, ok := buttonSignal(ev.Button, true); ok {
			c.input.Fire(sig, pt, c.Scale())
		}
	case toolkit.KeyPress:
		if ev.Repeat && !c.duplicate {
			c.metrics.droppedEvents.Add(1)
			return
		}
		c.input.FireKey(false, keyEvent(ev))
	case toolkit.KeyRelease:
		c.input.FireKey(true, keyEvent(ev))
	case toolkit.Close:
		c.log.Debug("window close requested", "title", c.title)
		c.input.FireClose()
	}
}

func buttonSignal(b toolkit.Button, release bool) (input.Signal, bool) {
	switch b {
	case toolkit.ButtonLeft:
		if release {
			return input.LeftRelease, true
		}
		return input.LeftPress, true
	case toolkit.ButtonRight:
		if release {
			return input.RightRelease, true
		}
		return input.RightPress, true
	}
	return 0, false
}

func keyEvent(ev toolkit.Event) KeyEvent {
	return KeyEvent{
		Code:   ev.Key,
		Name:   ev.KeyName,
		Shift:  ev.Mods&toolkit.ModShift != 0,
		Ctrl:   ev.Mods&toolkit.ModControl != 0,
		Alt:    ev.Mods&toolkit.ModAlt != 0,
		Meta:   ev.Mods&toolkit.ModMeta != 0,
		Repeat: ev.Repeat,
	}
}

func (c *Canvas) take(sig input.Signal, scaled bool) (image.Point, bool) {
	l := c.input.Latch(sig)
	if scaled {
		return l.TakeScaled()
	}
	return l.TakeRaw()
}

// LastMousePosition returns the last pointer position in window pixels and
// whether it arrived since the previous call.
func (c *Canvas) LastMousePosition() (image.Point, bool) { return c.take(input.Move, false) }

// LastMousePositionScaled is LastMousePosition in logical units.
func (c *Canvas) LastMousePositionScaled() (image.Point, bool) { return c.take(input.Move, true) }

// LastLeftClick returns where the left button was last pressed.
func (c *Canvas) LastLeftClick() (image.Point, bool) { return c.take(input.LeftPress, false) }

// LastLeftClickScaled is LastLeftClick in logical units.
func (c *Canvas) LastLeftClickScaled() (image.Point, bool) { return c.take(input.LeftPress, true) }

// LastLeftRelease returns where the left button was last released.
func (c *Canvas) LastLeftRelease() (image.Point, bool) { return c.take(input.LeftRelease, false) }

// LastLeftReleaseScaled is LastLeftRelease in logical units.
func (c *Canvas) LastLeftReleaseScaled() (image.Point, bool) {
	return c.take(input.LeftRelease, true)
}

// LastRightClick returns where the right button was last pressed.
func (c *Canvas) LastRightClick() (image.Point, bool) { return c.take(input.RightPress, false) }

// LastRightClickScaled is LastRightClick in logical units.
func (c *Canvas) LastRightClickScaled() (image.Point, bool) { return c.take(input.RightPress, true) }

// LastRightRelease returns where the right button was last released.
func (c *Canvas) LastRightRelease() (image.Point, bool) { return c.take(input.RightRelease, false) }

// LastRightReleaseScaled is LastRightRelease in logical units.
func (c *Canvas) LastRightReleaseScaled() (image.Point, bool) {
	return c.take(input.RightRelease, true)
}

// OnMouseMove calls fn with each pointer position in window pixels.
func (c *Canvas) OnMouseMove(fn func(image.Point)) *Subscription {
	return c.input.Subscribe(input.Move, false, fn)
}

// OnMouseMoveScaled calls fn with each pointer position in logical units.
func (c *Canvas) OnMouseMoveScaled(fn func(image.Point)) *Subscription {
	return c.input.Subscribe(input.Move, true, fn)
}

// OnLeftClick calls fn with the pointer position, in window pixels, of each
// left button press.
func (c *Canvas) OnLeftClick(fn func(image.Point)) *Subscription {
	return c.input.Subscribe(input.LeftPress, false, fn)
}

// OnLeftClickScaled is OnLeftClick in logical units.
func (c *Canvas) OnLeftClickScaled(fn func(image.Point)) *Subscription {
	return c.input.Subscribe(input.LeftPress, true, fn)
}

// OnLeftRelease calls fn with the position of each left button release.
func (c *Canvas) OnLeftRelease(fn func(image.Point)) *Subscription {
	return c.input.Subscribe(input.LeftRelease, false, fn)
}

// OnLeftReleaseScaled is OnLeftRelease in logical units.
func (c *Canvas) OnLeftReleaseScaled(fn func(image.Point)) *Subscription {
	return c.input.Subscribe(input.LeftRelease, true, fn)
}

// OnRightClick calls fn with the position of each right button press.
func (c *Canvas) OnRightClick(fn func(image.Point)) *Subscription {
	return c.input.Subscribe(input.RightPress, false, fn)
}

// OnRightClickScaled is OnRightClick in logical units.
func (c *Canvas) OnRightClickScaled(fn func(image.Point)) *Subscription {
	return c.input.Subscribe(input.RightPress, true, fn)
}

// OnRightRelease calls fn with the position of each right button release.
func (c *Canvas) OnRightRelease(fn func(image.Point)) *Subscription {
	return c.input.Subscribe(input.RightRelease, false, fn)
}

// OnRightReleaseScaled is OnRightRelease in logical units.
func (c *Canvas) OnRightReleaseScaled(fn func(image.Point)) *Subscription {
	return c.input.Subscribe(input.RightRelease, true, fn)
}

// OnKeyDown calls fn for each key press. Auto-repeat presses are only
// delivered when DuplicateEvents is set.
func (c *Canvas) OnKeyDown(fn func(KeyEvent)) *Subscription {
	return c.input.SubscribeKey(false, fn)
}

// OnKeyUp calls fn for each key release.
func (c *Canvas) OnKeyUp(fn func(KeyEvent)) *Subscription {
	return c.input.SubscribeKey(true, fn)
}

// OnClose calls fn when the user asks to close the window. The window is
// not closed automatically; call Close.
func (c *Canvas) OnClose(fn func()) *Subscription {
	return c.input.SubscribeClose(fn)
}
