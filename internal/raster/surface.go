package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// kappa places cubic control points for a quarter ellipse.
const kappa = 0.5522847498

// Surface paints shapes onto an RGBA frame in device pixels. Strokes are
// rasterized as filled outlines: rectangle and ellipse borders are rings
// centred on the edge, and open or closed polylines are unions of
// round-capped segments.
type Surface struct {
	dst   *image.RGBA
	faces *FaceCache
	z     *vector.Rasterizer
}

// NewSurface wraps dst, whose bounds must start at the origin. faces may be
// nil, in which case text is skipped.
func NewSurface(dst *image.RGBA, faces *FaceCache) *Surface {
	b := dst.Bounds()
	return &Surface{
		dst:   dst,
		faces: faces,
		z:     vector.NewRasterizer(b.Dx(), b.Dy()),
	}
}

// Bounds returns the frame rectangle.
func (s *Surface) Bounds() image.Rectangle { return s.dst.Bounds() }

// fill rasterizes whatever path adds to the rasterizer and composites it
// over the frame in c.
func (s *Surface) fill(c color.NRGBA, path func(z *vector.Rasterizer)) {
	if c.A == 0 {
		return
	}
	b := s.dst.Bounds()
	s.z.Reset(b.Dx(), b.Dy())
	path(s.z)
	s.z.Draw(s.dst, b, image.NewUniform(c), image.Point{})
}

// FillRect fills the axis-aligned rectangle at (x, y) of size w×h.
func (s *Surface) FillRect(x, y, w, h float64, c color.NRGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	s.fill(c, func(z *vector.Rasterizer) {
		rectPath(z, x, y, w, h, false)
	})
}

// StrokeRect draws a border of the given thickness centred on the edge of
// the rectangle.
func (s *Surface) StrokeRect(x, y, w, h, thickness float64, c color.NRGBA) {
	if thickness <= 0 {
		return
	}
	half := thickness / 2
	s.fill(c, func(z *vector.Rasterizer) {
		rectPath(z, x-half, y-half, w+thickness, h+thickness, false)
		if w > thickness && h > thickness {
			rectPath(z, x+half, y+half, w-thickness, h-thickness, true)
		}
	})
}

// FillEllipse fills the ellipse centred at (cx, cy) with radii rx, ry.
func (s *Surface) FillEllipse(cx, cy, rx, ry float64, c color.NRGBA) {
	if rx <= 0 || ry <= 0 {
		return
	}
	s.fill(c, func(z *vector.Rasterizer) {
		ellipsePath(z, cx, cy, rx, ry, false)
	})
}

// StrokeEllipse draws a ring of the given thickness centred on the ellipse
// outline.
func (s *Surface) StrokeEllipse(cx, cy, rx, ry, thickness float64, c color.NRGBA) {
	if thickness <= 0 {
		return
	}
	half := thickness / 2
	s.fill(c, func(z *vector.Rasterizer) {
		ellipsePath(z, cx, cy, rx+half, ry+half, false)
		if rx > half && ry > half {
			ellipsePath(z, cx, cy, rx-half, ry-half, true)
		}
	})
}

// FillPolygon fills the closed polygon through pts.
func (s *Surface) FillPolygon(pts []f64.Vec2, c color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	s.fill(c, func(z *vector.Rasterizer) {
		z.MoveTo(float32(pts[0][0]), float32(pts[0][1]))
		for _, p := range pts[1:] {
			z.LineTo(float32(p[0]), float32(p[1]))
		}
		z.ClosePath()
	})
}

// StrokePolygon outlines the closed polygon through pts with round joins.
func (s *Surface) StrokePolygon(pts []f64.Vec2, thickness float64, c color.NRGBA) {
	if len(pts) < 2 || thickness <= 0 {
		return
	}
	s.fill(c, func(z *vector.Rasterizer) {
		for i := range pts {
			capsulePath(z, pts[i], pts[(i+1)%len(pts)], thickness/2)
		}
	})
}

// Line draws a round-capped segment from p0 to p1.
func (s *Surface) Line(p0, p1 f64.Vec2, thickness float64, c color.NRGBA) {
	if thickness <= 0 {
		return
	}
	s.fill(c, func(z *vector.Rasterizer) {
		capsulePath(z, p0, p1, thickness/2)
	})
}

// Cubic strokes the cubic Bezier curve p0..p3 with round caps.
func (s *Surface) Cubic(p0, p1, p2, p3 f64.Vec2, thickness float64, c color.NRGBA) {
	if thickness <= 0 {
		return
	}
	pts := flattenCubic(p0, p1, p2, p3)
	s.fill(c, func(z *vector.Rasterizer) {
		for i := 1; i < len(pts); i++ {
			capsulePath(z, pts[i-1], pts[i], thickness/2)
		}
	})
}

// Text draws str at size pixels. With wrap unset the text is a single line
// centred in box and shortened with an ellipsis when it is too wide. With
// wrap set it is word-wrapped from the top-left of box. Either way nothing
// is drawn outside box.
func (s *Surface) Text(str string, box image.Rectangle, size float64, c color.NRGBA, wrap bool) {
	if s.faces == nil || str == "" || size <= 0 {
		return
	}
	clip := box.Intersect(s.dst.Bounds())
	if clip.Empty() {
		return
	}
	face, err := s.faces.Face(size)
	if err != nil {
		return
	}

	d := &font.Drawer{
		Dst:  s.dst.SubImage(clip).(*image.RGBA),
		Src:  image.NewUniform(c),
		Face: face,
	}
	m := face.Metrics()

	if !wrap {
		line := Ellipsize(face, str, box.Dx())
		width := Measure(face, line)
		x := box.Min.X + (box.Dx()-width)/2
		textH := (m.Ascent + m.Descent).Ceil()
		y := box.Min.Y + (box.Dy()-textH)/2 + m.Ascent.Ceil()
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
		return
	}

	lineH := m.Height.Ceil()
	if lineH <= 0 {
		lineH = int(math.Ceil(size))
	}
	y := box.Min.Y + m.Ascent.Ceil()
	for _, line := range Wrap(face, str, box.Dx()) {
		if y-m.Ascent.Ceil() >= box.Max.Y {
			break
		}
		d.Dot = fixed.P(box.Min.X, y)
		d.DrawString(line)
		y += lineH
	}
}

func rectPath(z *vector.Rasterizer, x, y, w, h float64, reverse bool) {
	x0, y0 := float32(x), float32(y)
	x1, y1 := float32(x+w), float32(y+h)
	z.MoveTo(x0, y0)
	if reverse {
		z.LineTo(x0, y1)
		z.LineTo(x1, y1)
		z.LineTo(x1, y0)
	} else {
		z.LineTo(x1, y0)
		z.LineTo(x1, y1)
		z.LineTo(x0, y1)
	}
	z.ClosePath()
}

// ellipsePath adds an ellipse built from four cubic arcs. reverse flips the
// winding so the ellipse cuts a hole in one added before it.
func ellipsePath(z *vector.Rasterizer, cx, cy, rx, ry float64, reverse bool) {
	kx, ky := rx*kappa, ry*kappa
	sy := 1.0
	if reverse {
		sy = -1
	}
	p := func(dx, dy float64) (float32, float32) {
		return float32(cx + dx), float32(cy + sy*dy)
	}

	z.MoveTo(p(rx, 0))
	bx, by := p(rx, ky)
	cx1, cy1 := p(kx, ry)
	dx, dy := p(0, ry)
	z.CubeTo(bx, by, cx1, cy1, dx, dy)
	bx, by = p(-kx, ry)
	cx1, cy1 = p(-rx, ky)
	dx, dy = p(-rx, 0)
	z.CubeTo(bx, by, cx1, cy1, dx, dy)
	bx, by = p(-rx, -ky)
	cx1, cy1 = p(-kx, -ry)
	dx, dy = p(0, -ry)
	z.CubeTo(bx, by, cx1, cy1, dx, dy)
	bx, by = p(kx, -ry)
	cx1, cy1 = p(rx, -ky)
	dx, dy = p(rx, 0)
	z.CubeTo(bx, by, cx1, cy1, dx, dy)
	z.ClosePath()
}

// capsulePath adds the outline of a segment of half-width r with round
// ends. Every capsule has the same winding, so overlapping capsules union
// instead of cancelling. A zero-length segment becomes a disc.
func capsulePath(z *vector.Rasterizer, p0, p1 f64.Vec2, r float64) {
	dx, dy := p1[0]-p0[0], p1[1]-p0[1]
	length := math.Hypot(dx, dy)
	ux, uy := 1.0, 0.0
	if length > 1e-9 {
		ux, uy = dx/length, dy/length
	}
	// Normal and its angle.
	nx, ny := -uy, ux
	base := math.Atan2(ny, nx)

	steps := arcSteps(r)
	z.MoveTo(float32(p0[0]+nx*r), float32(p0[1]+ny*r))
	z.LineTo(float32(p1[0]+nx*r), float32(p1[1]+ny*r))
	for i := 1; i <= steps; i++ {
		a := base - math.Pi*float64(i)/float64(steps)
		z.LineTo(float32(p1[0]+r*math.Cos(a)), float32(p1[1]+r*math.Sin(a)))
	}
	z.LineTo(float32(p0[0]-nx*r), float32(p0[1]-ny*r))
	for i := 1; i <= steps; i++ {
		a := base - math.Pi - math.Pi*float64(i)/float64(steps)
		z.LineTo(float32(p0[0]+r*math.Cos(a)), float32(p0[1]+r*math.Sin(a)))
	}
	z.ClosePath()
}

// arcSteps picks the number of segments for a half circle of radius r.
func arcSteps(r float64) int {
	n := int(math.Ceil(r * 1.5))
	switch {
	case n < 4:
		return 4
	case n > 64:
		return 64
	}
	return n
}

// flattenCubic samples the curve at a density proportional to its control
// polygon length.
func flattenCubic(p0, p1, p2, p3 f64.Vec2) []f64.Vec2 {
	hull := dist(p0, p1) + dist(p1, p2) + dist(p2, p3)
	n := int(math.Ceil(hull / 4))
	switch {
	case n < 8:
		n = 8
	case n > 512:
		n = 512
	}

	pts := make([]f64.Vec2, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
		pts[i] = f64.Vec2{
			a*p0[0] + b*p1[0] + c*p2[0] + d*p3[0],
			a*p0[1] + b*p1[1] + c*p2[1] + d*p3[1],
		}
	}
	return pts
}

func dist(a, b f64.Vec2) float64 {
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}
