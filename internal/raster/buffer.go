// Package raster is the software drawing layer behind every canvas window:
// the persistent background pixel buffer, a vector Surface that primitives
// paint onto, font faces for text, and colour parsing.
package raster

import (
	"image"
	"image/color"
	"image/draw"
)

// Buffer is a fixed-size pixel buffer stored premultiplied, like every
// image.RGBA. Colours come in with straight alpha and are converted on
// write. It is not safe for concurrent use; the canvas only touches it on
// the UI thread.
type Buffer struct {
	img *image.RGBA
}

// NewBuffer returns a w×h buffer filled with bg.
func NewBuffer(w, h int, bg color.NRGBA) *Buffer {
	b := &Buffer{img: image.NewRGBA(image.Rect(0, 0, w, h))}
	b.Fill(b.img.Rect, bg)
	return b
}

// BufferFromImage copies src into a new buffer anchored at the origin.
func BufferFromImage(src image.Image) *Buffer {
	sb := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(img, img.Rect, src, sb.Min, draw.Src)
	return &Buffer{img: img}
}

// Bounds returns the buffer rectangle, always anchored at the origin.
func (b *Buffer) Bounds() image.Rectangle { return b.img.Rect }

// At returns the premultiplied pixel at (x, y), or the zero colour outside
// the buffer.
func (b *Buffer) At(x, y int) color.RGBA { return b.img.RGBAAt(x, y) }

// Set stores c at (x, y). Points outside the buffer are ignored.
func (b *Buffer) Set(x, y int, c color.NRGBA) {
	b.img.SetRGBA(x, y, color.RGBAModel.Convert(c).(color.RGBA))
}

// Fill replaces every pixel of r, clipped to the buffer, with c.
func (b *Buffer) Fill(r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(b.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(b.img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// CopyInto overwrites dst with the buffer contents.
func (b *Buffer) CopyInto(dst *image.RGBA) {
	draw.Draw(dst, dst.Rect, b.img, image.Point{}, draw.Src)
}

// Image returns a copy of the buffer.
func (b *Buffer) Image() *image.RGBA {
	out := image.NewRGBA(b.img.Rect)
	copy(out.Pix, b.img.Pix)
	return out
}
