package canvas

import (
	"image"
	"image/color"
	"time"

	"github.com/opd-ai/go-canvas/internal/raster"
	"github.com/opd-ai/go-canvas/internal/scene"
	"github.com/opd-ai/go-canvas/internal/toolkit"
)

// window is the UI-thread half of a canvas. Every field is owned by the UI
// thread; methods must only run inside Bridge.RunBlocking.
type window struct {
	tw    toolkit.Window
	buf   *raster.Buffer
	faces *raster.FaceCache

	scene   *scene.Scene
	scale   func() int
	metrics *Metrics

	destroyed bool
}

// openWindow creates and shows the toolkit window. UI thread only.
func openWindow(loop toolkit.Loop, cfg toolkit.WindowConfig, buf *raster.Buffer,
	sc *scene.Scene, scale func() int, m *Metrics, onEvent func(toolkit.Event)) (*window, error) {
	tw, err := loop.NewWindow(cfg)
	if err != nil {
		return nil, err
	}
	w := &window{
		tw:      tw,
		buf:     buf,
		faces:   raster.NewFaceCache(),
		scene:   sc,
		scale:   scale,
		metrics: m,
	}
	tw.SetPaintHandler(w.paint)
	tw.SetEventHandler(onEvent)
	tw.Show()
	return w, nil
}

// paint composes the background and the scene into frame.
func (w *window) paint(frame *image.RGBA) {
	start := time.Now()
	w.compose(frame)
	w.metrics.recordPaint(time.Since(start))
}

func (w *window) compose(frame *image.RGBA) {
	w.buf.CopyInto(frame)
	w.scene.RenderAll(raster.NewSurface(frame, w.faces), w.scale())
}

// snapshot renders a fresh frame without touching the toolkit surface.
func (w *window) snapshot() *image.RGBA {
	frame := image.NewRGBA(w.buf.Bounds())
	w.compose(frame)
	return frame
}

func (w *window) invalidate() {
	if w.destroyed {
		return
	}
	w.metrics.repaintsRequested.Add(1)
	w.tw.Invalidate()
}

func (w *window) pixel(x, y int) color.RGBA {
	return w.buf.At(x, y)
}

func (w *window) setPixel(x, y int, c color.NRGBA) {
	w.buf.Set(x, y, c)
	w.metrics.pixelWrites.Add(1)
}

func (w *window) fill(r image.Rectangle, c color.NRGBA) {
	w.buf.Fill(r, c)
	r = r.Intersect(w.buf.Bounds())
	w.metrics.pixelWrites.Add(int64(r.Dx() * r.Dy()))
}

func (w *window) destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.tw.Destroy()
	w.faces.Close()
}
