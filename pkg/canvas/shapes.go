package canvas

import (
	"fmt"
	"image/color"

	"golang.org/x/image/math/f64"

	"github.com/opd-ai/go-canvas/internal/scene"
)

// Point is a position in logical units.
type Point = f64.Vec2

// DefaultTextSize is the text size used when WithTextSize is not given.
const DefaultTextSize = 12

// shapeConfig collects the options of one Add call.
type shapeConfig struct {
	fill        color.Color
	border      float64
	borderColor color.Color
	color       color.Color
	thickness   float64
	rotation    float64
	textSize    float64
}

func newShapeConfig(opts []ShapeOption) shapeConfig {
	cfg := shapeConfig{thickness: 1, textSize: DefaultTextSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (cfg shapeConfig) style() scene.Style {
	return scene.Style{Fill: cfg.fill, Border: cfg.border, BorderColor: cfg.borderColor}
}

// ShapeOption adjusts a shape being added. Options that do not apply to a
// shape are ignored.
type ShapeOption func(*shapeConfig)

// WithFill sets the fill of a rectangle, ellipse or polygon. The default is
// gray.
func WithFill(c color.Color) ShapeOption {
	return func(cfg *shapeConfig) { cfg.fill = c }
}

// WithBorder draws a border of the given thickness, in logical units,
// around a rectangle, ellipse or polygon.
func WithBorder(thickness float64) ShapeOption {
	return func(cfg *shapeConfig) { cfg.border = thickness }
}

// WithBorderColor sets the border colour. The default is the fill colour.
func WithBorderColor(c color.Color) ShapeOption {
	return func(cfg *shapeConfig) { cfg.borderColor = c }
}

// WithColor sets the colour of a line, curve or text.
func WithColor(c color.Color) ShapeOption {
	return func(cfg *shapeConfig) { cfg.color = c }
}

// WithThickness sets the width of a line or curve. The default is 1.
func WithThickness(t float64) ShapeOption {
	return func(cfg *shapeConfig) { cfg.thickness = t }
}

// WithRotation rotates a polygon by deg degrees.
func WithRotation(deg float64) ShapeOption {
	return func(cfg *shapeConfig) { cfg.rotation = deg }
}

// WithTextSize sets the text size in logical units.
func WithTextSize(size float64) ShapeOption {
	return func(cfg *shapeConfig) { cfg.textSize = size }
}

// AddRectangle adds a w×h rectangle with its top-left corner at (x, y).
func (c *Canvas) AddRectangle(x, y, w, h float64, opts ...ShapeOption) error {
	cfg := newShapeConfig(opts)
	r, err := scene.NewRectangle(x, y, w, h, cfg.style())
	if err != nil {
		return fmt.Errorf("add rectangle: %w", err)
	}
	return c.add(r)
}

// AddEllipse adds the ellipse inscribed in the w×h box at (x, y).
func (c *Canvas) AddEllipse(x, y, w, h float64, opts ...ShapeOption) error {
	cfg := newShapeConfig(opts)
	e, err := scene.NewEllipse(x, y, w, h, cfg.style())
	if err != nil {
		return fmt.Errorf("add ellipse: %w", err)
	}
	return c.add(e)
}

// AddPolygon adds a regular polygon with n corners at distance radius from
// (x, y).
func (c *Canvas) AddPolygon(x, y float64, n int, radius float64, opts ...ShapeOption) error {
	cfg := newShapeConfig(opts)
	p, err := scene.NewPolygon(x, y, n, radius, cfg.rotation, cfg.style())
	if err != nil {
		return fmt.Errorf("add polygon: %w", err)
	}
	return c.add(p)
}

// AddLine adds a round-capped line from (x1, y1) to (x2, y2).
func (c *Canvas) AddLine(x1, y1, x2, y2 float64, opts ...ShapeOption) error {
	cfg := newShapeConfig(opts)
	l, err := scene.NewLine(x1, y1, x2, y2, cfg.thickness, cfg.color)
	if err != nil {
		return fmt.Errorf("add line: %w", err)
	}
	return c.add(l)
}

// AddPolarLine adds a line of the given length leaving (x, y) at angle
// degrees clockwise from the x axis.
func (c *Canvas) AddPolarLine(x, y, length, angle float64, opts ...ShapeOption) error {
	cfg := newShapeConfig(opts)
	l, err := scene.NewPolarLine(x, y, length, angle, cfg.thickness, cfg.color)
	if err != nil {
		return fmt.Errorf("add line: %w", err)
	}
	return c.add(l)
}

// AddBezier adds a cubic curve from p0 to p3 with control points p1 and
// p2. Curve coordinates are window pixels; they do not follow Scale.
func (c *Canvas) AddBezier(p0, p1, p2, p3 Point, opts ...ShapeOption) error {
	cfg := newShapeConfig(opts)
	b, err := scene.NewBezier(p0, p1, p2, p3, cfg.thickness, cfg.color)
	if err != nil {
		return fmt.Errorf("add bezier: %w", err)
	}
	return c.add(b)
}

// AddText centres one line of text on the canvas, shortened with an
// ellipsis when too wide. The default colour is blue.
func (c *Canvas) AddText(s string, opts ...ShapeOption) error {
	cfg := newShapeConfig(opts)
	t, err := scene.NewCanvasText(s, cfg.textSize, cfg.color)
	if err != nil {
		return fmt.Errorf("add text: %w", err)
	}
	return c.add(t)
}

// AddTextBox wraps text inside the w×h box at (x, y). The default colour is
// black.
func (c *Canvas) AddTextBox(s string, x, y, w, h float64, opts ...ShapeOption) error {
	cfg := newShapeConfig(opts)
	t, err := scene.NewBoundedText(s, x, y, w, h, cfg.textSize, cfg.color)
	if err != nil {
		return fmt.Errorf("add text: %w", err)
	}
	return c.add(t)
}

func (c *Canvas) add(p scene.Primitive) error {
	if c.closed.Load() {
		return ErrNotRunning
	}
	c.scene.Add(p)
	c.metrics.primitivesAdded.Add(1)
	return c.damage()
}
