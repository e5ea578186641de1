package input

import (
	"image"
	"sync"
	"testing"
)

func TestPairTakeOnce(t *testing.T) {
	var p Pair

	if _, fresh := p.TakeRaw(); fresh {
		t.Error("empty latch reported fresh")
	}

	p.Set(image.Pt(7, 9), image.Pt(3, 4))

	v, fresh := p.TakeRaw()
	if !fresh || v != image.Pt(7, 9) {
		t.Errorf("first TakeRaw() = %v, %v; want (7,9), true", v, fresh)
	}
	v, fresh = p.TakeRaw()
	if fresh || v != image.Pt(7, 9) {
		t.Errorf("second TakeRaw() = %v, %v; want (7,9), false", v, fresh)
	}

	// The scaled latch is independent of the raw one.
	v, fresh = p.TakeScaled()
	if !fresh || v != image.Pt(3, 4) {
		t.Errorf("TakeScaled() = %v, %v; want (3,4), true", v, fresh)
	}
}

func TestPairInvalidateScaled(t *testing.T) {
	var p Pair
	p.Set(image.Pt(10, 10), image.Pt(5, 5))
	p.InvalidateScaled()

	v, fresh := p.TakeScaled()
	if fresh {
		t.Error("scaled latch still fresh after InvalidateScaled")
	}
	if v != image.Pt(5, 5) {
		t.Errorf("scaled value = %v, want the old (5,5) kept", v)
	}
	if _, fresh := p.TakeRaw(); !fresh {
		t.Error("InvalidateScaled consumed the raw latch")
	}
}

func TestScaleTruncates(t *testing.T) {
	tests := []struct {
		raw   image.Point
		scale int
		want  image.Point
	}{
		{image.Pt(7, 9), 2, image.Pt(3, 4)},
		{image.Pt(7, 9), 1, image.Pt(7, 9)},
		{image.Pt(5, 5), 3, image.Pt(1, 1)},
		{image.Pt(-3, -1), 2, image.Pt(-1, 0)},
		{image.Pt(4, 4), 0, image.Pt(4, 4)},
	}
	for _, tt := range tests {
		if got := Scale(tt.raw, tt.scale); got != tt.want {
			t.Errorf("Scale(%v, %d) = %v, want %v", tt.raw, tt.scale, got, tt.want)
		}
	}
}

func TestFireOrderAndLatch(t *testing.T) {
	d := NewDispatcher()
	var order []string
	d.Subscribe(LeftPress, true, func(p image.Point) { order = append(order, "scaled1") })
	d.Subscribe(LeftPress, false, func(p image.Point) { order = append(order, "raw1") })
	d.Subscribe(LeftPress, false, func(p image.Point) { order = append(order, "raw2") })
	d.Subscribe(RightPress, false, func(p image.Point) { order = append(order, "right") })

	d.Fire(LeftPress, image.Pt(7, 9), 2)

	want := []string{"raw1", "raw2", "scaled1"}
	if len(order) != len(want) {
		t.Fatalf("handlers = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("handlers = %v, want %v", order, want)
		}
	}

	if v, fresh := d.Latch(LeftPress).TakeScaled(); !fresh || v != image.Pt(3, 4) {
		t.Errorf("scaled latch = %v, %v", v, fresh)
	}
	if _, fresh := d.Latch(RightPress).TakeRaw(); fresh {
		t.Error("unrelated latch was set")
	}
}

func TestSubscriptionRemove(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	sub := d.Subscribe(Move, false, func(image.Point) { calls++ })

	d.Fire(Move, image.Pt(1, 1), 1)
	sub.Remove()
	sub.Remove()
	d.Fire(Move, image.Pt(2, 2), 1)

	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}

	var nilSub *Subscription
	nilSub.Remove() // no panic
}

func TestHandlerMayUnsubscribeItself(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	var sub *Subscription
	sub = d.Subscribe(Move, false, func(image.Point) {
		calls++
		sub.Remove()
	})
	d.Fire(Move, image.Pt(0, 0), 1)
	d.Fire(Move, image.Pt(0, 0), 1)
	if calls != 1 {
		t.Errorf("self-removing handler ran %d times, want 1", calls)
	}
}

func TestPanickingHandlerIsContained(t *testing.T) {
	d := NewDispatcher()
	var recovered []any
	d.OnPanic = func(v any) { recovered = append(recovered, v) }

	after := false
	d.Subscribe(LeftRelease, false, func(image.Point) { panic("bad handler") })
	d.Subscribe(LeftRelease, false, func(image.Point) { after = true })

	d.Fire(LeftRelease, image.Pt(1, 1), 1)

	if len(recovered) != 1 || recovered[0] != "bad handler" {
		t.Errorf("recovered = %v", recovered)
	}
	if !after {
		t.Error("handler after the panicking one did not run")
	}
}

func TestKeyAndCloseHandlers(t *testing.T) {
	d := NewDispatcher()
	var down, up []Key
	closed := 0
	d.SubscribeKey(false, func(k Key) { down = append(down, k) })
	d.SubscribeKey(true, func(k Key) { up = append(up, k) })
	sub := d.SubscribeClose(func() { closed++ })

	d.FireKey(false, Key{Code: 30, Name: "A", Shift: true})
	d.FireKey(true, Key{Code: 30, Name: "A"})
	d.FireClose()
	sub.Remove()
	d.FireClose()

	if len(down) != 1 || down[0].Name != "A" || !down[0].Shift {
		t.Errorf("down = %+v", down)
	}
	if len(up) != 1 || up[0].Code != 30 {
		t.Errorf("up = %+v", up)
	}
	if closed != 1 {
		t.Errorf("close handler ran %d times, want 1", closed)
	}
}

func TestConcurrentFireAndTake(t *testing.T) {
	d := NewDispatcher()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			d.Fire(Move, image.Pt(i, i), 2)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			d.Latch(Move).TakeRaw()
			d.Latch(Move).TakeScaled()
		}
	}()
	wg.Wait()

	v, _ := d.Latch(Move).TakeRaw()
	if v != image.Pt(999, 999) {
		t.Errorf("final raw = %v, want (999,999)", v)
	}
}

func TestSignalString(t *testing.T) {
	for _, s := range Signals {
		if s.String() == "unknown" {
			t.Errorf("Signal(%d) has no name", s)
		}
	}
}
