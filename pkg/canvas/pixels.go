package canvas

import (
	"fmt"
	"image"
	"image/color"

	"github.com/opd-ai/go-canvas/internal/scene"
)

// GetPixel returns the background pixel at (x, y) as a premultiplied
// color.RGBA. Shapes are not included; use Snapshot for the composed image.
func (c *Canvas) GetPixel(x, y int) (color.RGBA, error) {
	if err := checkBounds(x, y, c.width, c.height); err != nil {
		return color.RGBA{}, err
	}
	var px color.RGBA
	err := c.do(func(w *window) error {
		px = w.pixel(x, y)
		return nil
	})
	return px, err
}

// SetPixel sets the background pixel at (x, y). Any color.Color is
// accepted; color.RGBA is read as premultiplied and color.NRGBA as straight
// alpha.
func (c *Canvas) SetPixel(x, y int, col color.Color) error {
	if err := checkBounds(x, y, c.width, c.height); err != nil {
		return err
	}
	if col == nil {
		return fmt.Errorf("pixel colour: %w", ErrInvalidArgument)
	}
	px := scene.ToNRGBA(col, color.NRGBA{})
	if err := c.apply(func(w *window) { w.setPixel(x, y, px) }); err != nil {
		return err
	}
	return c.damage()
}

// GetScaledPixel returns the top-left background pixel of the logical
// cell (x, y).
func (c *Canvas) GetScaledPixel(x, y int) (color.RGBA, error) {
	s := c.Scale()
	if err := checkBounds(x, y, c.width/s, c.height/s); err != nil {
		return color.RGBA{}, err
	}
	var px color.RGBA
	err := c.do(func(w *window) error {
		px = w.pixel(x*s, y*s)
		return nil
	})
	return px, err
}

// SetScaledPixel fills the Scale()×Scale() block of logical cell (x, y).
func (c *Canvas) SetScaledPixel(x, y int, col color.Color) error {
	s := c.Scale()
	if err := checkBounds(x, y, c.width/s, c.height/s); err != nil {
		return err
	}
	if col == nil {
		return fmt.Errorf("pixel colour: %w", ErrInvalidArgument)
	}
	px := scene.ToNRGBA(col, color.NRGBA{})
	block := image.Rect(x*s, y*s, (x+1)*s, (y+1)*s)
	if err := c.apply(func(w *window) { w.fill(block, px) }); err != nil {
		return err
	}
	return c.damage()
}

// FillBackground replaces the whole background with col.
func (c *Canvas) FillBackground(col color.Color) error {
	if col == nil {
		return fmt.Errorf("background colour: %w", ErrInvalidArgument)
	}
	px := scene.ToNRGBA(col, color.NRGBA{})
	all := image.Rect(0, 0, c.width, c.height)
	if err := c.apply(func(w *window) { w.fill(all, px) }); err != nil {
		return err
	}
	return c.damage()
}

func checkBounds(x, y, w, h int) error {
	if x < 0 || y < 0 || x >= w || y >= h {
		return fmt.Errorf("pixel (%d, %d) outside %dx%d: %w", x, y, w, h, ErrOutOfRange)
	}
	return nil
}
