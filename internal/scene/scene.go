// Package scene holds the retained list of primitives a canvas paints.
//
// Primitives are immutable values stored in logical (unscaled) units. They
// are converted to device pixels only when rendered, so a canvas can change
// its scale after shapes have been added.
package scene

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/math/f64"
)

// Surface is the device-space drawing target a primitive renders onto.
// Coordinates are pixels; colours are straight (non-premultiplied) RGBA.
type Surface interface {
	Bounds() image.Rectangle
	FillRect(x, y, w, h float64, c color.NRGBA)
	StrokeRect(x, y, w, h, thickness float64, c color.NRGBA)
	FillEllipse(cx, cy, rx, ry float64, c color.NRGBA)
	StrokeEllipse(cx, cy, rx, ry, thickness float64, c color.NRGBA)
	FillPolygon(pts []f64.Vec2, c color.NRGBA)
	StrokePolygon(pts []f64.Vec2, thickness float64, c color.NRGBA)
	Line(p0, p1 f64.Vec2, thickness float64, c color.NRGBA)
	Cubic(p0, p1, p2, p3 f64.Vec2, thickness float64, c color.NRGBA)

	// Text draws s inside box. With wrap unset s is one centred line,
	// ellipsized to fit; with wrap set it is word-wrapped from the top left.
	Text(s string, box image.Rectangle, size float64, c color.NRGBA, wrap bool)
}

// Scene is an ordered, concurrency-safe list of primitives. Insertion order
// is paint order.
type Scene struct {
	mu    sync.Mutex
	prims []Primitive
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add appends p.
func (s *Scene) Add(p Primitive) {
	s.mu.Lock()
	s.prims = append(s.prims, p)
	s.mu.Unlock()
}

// Clear removes every primitive.
func (s *Scene) Clear() {
	s.mu.Lock()
	s.prims = nil
	s.mu.Unlock()
}

// Len returns the number of primitives.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prims)
}

// Primitives returns a copy of the current list.
func (s *Scene) Primitives() []Primitive {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Primitive, len(s.prims))
	copy(out, s.prims)
	return out
}

// RenderAll paints every primitive onto surf at the given scale, holding
// the scene lock so no primitive is added or removed mid-paint.
func (s *Scene) RenderAll(surf Surface, scale int) {
	if scale < 1 {
		scale = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.prims {
		p.Render(surf, scale)
	}
}
