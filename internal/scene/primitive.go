package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/math/f64"
)

var (
	// ErrOutOfRange reports a size, thickness or coordinate outside its
	// permitted range.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidArgument reports a malformed parameter such as a polygon
	// with fewer than three vertices or a non-finite coordinate.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Default colours. Text drawn across the whole canvas defaults to blue while
// text in a box defaults to black; callers rely on the difference.
var (
	DefaultFill        = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	DefaultLine        = color.NRGBA{A: 255}
	DefaultCanvasText  = color.NRGBA{B: 255, A: 255}
	DefaultBoundedText = color.NRGBA{A: 255}
)

// Primitive is one immutable drawable. The set of implementations is closed.
type Primitive interface {
	// Render paints the primitive onto s, multiplying logical units by scale.
	Render(s Surface, scale int)
	primitive()
}

// Style is the paint of a closed shape. A nil Fill means DefaultFill and a
// nil BorderColor means the fill colour. The border is drawn only when
// Border > 0.
type Style struct {
	Fill        color.Color
	Border      float64
	BorderColor color.Color
}

func (st Style) resolve() (fill, border color.NRGBA, width float64, err error) {
	if st.Border < 0 || !finite(st.Border) {
		return fill, border, 0, fmt.Errorf("%w: border thickness %v < 0", ErrOutOfRange, st.Border)
	}
	fill = ToNRGBA(st.Fill, DefaultFill)
	border = ToNRGBA(st.BorderColor, fill)
	return fill, border, st.Border, nil
}

// Rectangle is an axis-aligned box anchored at its top-left corner.
type Rectangle struct {
	X, Y, W, H  float64
	Fill        color.NRGBA
	Border      float64
	BorderColor color.NRGBA
}

// NewRectangle validates w, h >= 0.
func NewRectangle(x, y, w, h float64, st Style) (Rectangle, error) {
	if err := finiteAll(x, y, w, h); err != nil {
		return Rectangle{}, err
	}
	if w < 0 || h < 0 {
		return Rectangle{}, fmt.Errorf("%w: rectangle size %vx%v", ErrOutOfRange, w, h)
	}
	fill, bc, bw, err := st.resolve()
	if err != nil {
		return Rectangle{}, err
	}
	return Rectangle{X: x, Y: y, W: w, H: h, Fill: fill, Border: bw, BorderColor: bc}, nil
}

func (r Rectangle) primitive() {}

// Render implements Primitive.
func (r Rectangle) Render(s Surface, scale int) {
	k := float64(scale)
	s.FillRect(r.X*k, r.Y*k, r.W*k, r.H*k, r.Fill)
	if r.Border > 0 {
		s.StrokeRect(r.X*k, r.Y*k, r.W*k, r.H*k, r.Border*k, r.BorderColor)
	}
}

// Ellipse is inscribed in the box at (X, Y) of size W×H.
type Ellipse struct {
	X, Y, W, H  float64
	Fill        color.NRGBA
	Border      float64
	BorderColor color.NRGBA
}

// NewEllipse validates w, h >= 1.
func NewEllipse(x, y, w, h float64, st Style) (Ellipse, error) {
	if err := finiteAll(x, y, w, h); err != nil {
		return Ellipse{}, err
	}
	if w < 1 || h < 1 {
		return Ellipse{}, fmt.Errorf("%w: ellipse size %vx%v", ErrOutOfRange, w, h)
	}
	fill, bc, bw, err := st.resolve()
	if err != nil {
		return Ellipse{}, err
	}
	return Ellipse{X: x, Y: y, W: w, H: h, Fill: fill, Border: bw, BorderColor: bc}, nil
}

func (e Ellipse) primitive() {}

// Render implements Primitive.
func (e Ellipse) Render(s Surface, scale int) {
	k := float64(scale)
	rx, ry := e.W*k/2, e.H*k/2
	cx, cy := e.X*k+rx, e.Y*k+ry
	s.FillEllipse(cx, cy, rx, ry, e.Fill)
	if e.Border > 0 {
		s.StrokeEllipse(cx, cy, rx, ry, e.Border*k, e.BorderColor)
	}
}

// Polygon is a regular polygon of N vertices on a circle of Radius around
// (X, Y). Rotation, in degrees, is the angle of the first vertex.
type Polygon struct {
	X, Y        float64
	N           int
	Radius      float64
	Rotation    float64
	Fill        color.NRGBA
	Border      float64
	BorderColor color.NRGBA
}

// NewPolygon validates n >= 3 and radius >= 1.
func NewPolygon(x, y float64, n int, radius, rotation float64, st Style) (Polygon, error) {
	if err := finiteAll(x, y, radius, rotation); err != nil {
		return Polygon{}, err
	}
	if n < 3 {
		return Polygon{}, fmt.Errorf("%w: polygon needs at least 3 points, got %d", ErrInvalidArgument, n)
	}
	if radius < 1 {
		return Polygon{}, fmt.Errorf("%w: polygon radius %v", ErrOutOfRange, radius)
	}
	fill, bc, bw, err := st.resolve()
	if err != nil {
		return Polygon{}, err
	}
	return Polygon{
		X: x, Y: y, N: n, Radius: radius, Rotation: rotation,
		Fill: fill, Border: bw, BorderColor: bc,
	}, nil
}

func (p Polygon) primitive() {}

// Vertices returns the device-space corners at the given scale.
func (p Polygon) Vertices(scale int) []f64.Vec2 {
	k := float64(scale)
	cx, cy, r := p.X*k, p.Y*k, p.Radius*k
	rot := p.Rotation * math.Pi / 180
	pts := make([]f64.Vec2, p.N)
	for i := range pts {
		a := rot + 2*math.Pi*float64(i)/float64(p.N)
		pts[i] = f64.Vec2{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return pts
}

// Render implements Primitive.
func (p Polygon) Render(s Surface, scale int) {
	pts := p.Vertices(scale)
	s.FillPolygon(pts, p.Fill)
	if p.Border > 0 {
		s.StrokePolygon(pts, p.Border*float64(scale), p.BorderColor)
	}
}

// Line is a round-capped segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Thickness      float64
	Color          color.NRGBA
}

// NewLine validates thickness >= 1. A nil c means DefaultLine.
func NewLine(x1, y1, x2, y2, thickness float64, c color.Color) (Line, error) {
	if err := finiteAll(x1, y1, x2, y2, thickness); err != nil {
		return Line{}, err
	}
	if thickness < 1 {
		return Line{}, fmt.Errorf("%w: line thickness %v", ErrOutOfRange, thickness)
	}
	return Line{X1: x1, Y1: y1, X2: x2, Y2: y2, Thickness: thickness, Color: ToNRGBA(c, DefaultLine)}, nil
}

// NewPolarLine builds the line from (x, y) of the given length at angle
// degrees, measured clockwise from the positive x axis in screen space.
func NewPolarLine(x, y, length, angle, thickness float64, c color.Color) (Line, error) {
	if err := finiteAll(length, angle); err != nil {
		return Line{}, err
	}
	if length < 0 {
		return Line{}, fmt.Errorf("%w: line length %v", ErrOutOfRange, length)
	}
	rad := angle * math.Pi / 180
	return NewLine(x, y, x+length*math.Cos(rad), y+length*math.Sin(rad), thickness, c)
}

func (l Line) primitive() {}

// Render implements Primitive.
func (l Line) Render(s Surface, scale int) {
	k := float64(scale)
	s.Line(f64.Vec2{l.X1 * k, l.Y1 * k}, f64.Vec2{l.X2 * k, l.Y2 * k}, l.Thickness*k, l.Color)
}

// Bezier is a cubic curve from P0 to P3 with control points P1 and P2.
//
// Unlike every other primitive, a Bezier is rendered in device pixels as
// given: neither its points nor its thickness follow the canvas scale.
type Bezier struct {
	P0, P1, P2, P3 f64.Vec2
	Thickness      float64
	Color          color.NRGBA
}

// NewBezier validates thickness >= 1. A nil c means DefaultLine.
func NewBezier(p0, p1, p2, p3 f64.Vec2, thickness float64, c color.Color) (Bezier, error) {
	if err := finiteAll(p0[0], p0[1], p1[0], p1[1], p2[0], p2[1], p3[0], p3[1], thickness); err != nil {
		return Bezier{}, err
	}
	if thickness < 1 {
		return Bezier{}, fmt.Errorf("%w: curve thickness %v", ErrOutOfRange, thickness)
	}
	return Bezier{P0: p0, P1: p1, P2: p2, P3: p3, Thickness: thickness, Color: ToNRGBA(c, DefaultLine)}, nil
}

func (b Bezier) primitive() {}

// Render implements Primitive. scale is ignored.
func (b Bezier) Render(s Surface, scale int) {
	s.Cubic(b.P0, b.P1, b.P2, b.P3, b.Thickness, b.Color)
}

// Text is a string drawn across the whole canvas or inside a box.
type Text struct {
	Str     string
	Size    float64
	Color   color.NRGBA
	Bounded bool

	// Box, in logical units, when Bounded is set.
	X, Y, W, H float64
}

// NewCanvasText centres str on the canvas. A nil c means DefaultCanvasText.
func NewCanvasText(str string, size float64, c color.Color) (Text, error) {
	if err := finiteAll(size); err != nil {
		return Text{}, err
	}
	if size < 1 {
		return Text{}, fmt.Errorf("%w: text size %v", ErrOutOfRange, size)
	}
	return Text{Str: str, Size: size, Color: ToNRGBA(c, DefaultCanvasText)}, nil
}

// NewBoundedText wraps str inside the box at (x, y) of size w×h. A nil c
// means DefaultBoundedText.
func NewBoundedText(str string, x, y, w, h, size float64, c color.Color) (Text, error) {
	if err := finiteAll(x, y, w, h, size); err != nil {
		return Text{}, err
	}
	if size < 1 {
		return Text{}, fmt.Errorf("%w: text size %v", ErrOutOfRange, size)
	}
	if w < 1 || h < 1 {
		return Text{}, fmt.Errorf("%w: text box %vx%v", ErrOutOfRange, w, h)
	}
	return Text{
		Str: str, Size: size, Color: ToNRGBA(c, DefaultBoundedText),
		Bounded: true, X: x, Y: y, W: w, H: h,
	}, nil
}

func (t Text) primitive() {}

// Render implements Primitive.
func (t Text) Render(s Surface, scale int) {
	k := float64(scale)
	if !t.Bounded {
		s.Text(t.Str, s.Bounds(), t.Size*k, t.Color, false)
		return
	}
	box := image.Rect(
		int(math.Round(t.X*k)), int(math.Round(t.Y*k)),
		int(math.Round((t.X+t.W)*k)), int(math.Round((t.Y+t.H)*k)),
	)
	s.Text(t.Str, box, t.Size*k, t.Color, true)
}

// ToNRGBA converts c to straight (non-premultiplied) alpha, or returns def
// when c is nil.
func ToNRGBA(c color.Color, def color.NRGBA) color.NRGBA {
	if c == nil {
		return def
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteAll(vs ...float64) error {
	for _, v := range vs {
		if !finite(v) {
			return fmt.Errorf("%w: non-finite value %v", ErrInvalidArgument, v)
		}
	}
	return nil
}
