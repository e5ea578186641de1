package raster

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"golang.org/x/image/math/f64"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
)

// px returns c in the premultiplied form frames and buffers store.
func px(c color.NRGBA) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

// near reports whether every channel of a and px(want) differs by at most
// tol.
func near(a color.RGBA, want color.NRGBA, tol int) bool {
	b := px(want)
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return v <= tol && v >= -tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func newFrame(w, h int) *image.RGBA {
	b := NewBuffer(w, h, White)
	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	b.CopyInto(frame)
	return frame
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "red", want: color.NRGBA{R: 255, A: 255}},
		{in: "  Navy ", want: color.NRGBA{B: 128, A: 255}},
		{in: "#f00", want: color.NRGBA{R: 255, A: 255}},
		{in: "#f008", want: color.NRGBA{R: 255, A: 0x88}},
		{in: "00ff00", want: color.NRGBA{G: 255, A: 255}},
		{in: "#0000FF80", want: color.NRGBA{B: 255, A: 0x80}},
		{in: "rgb(1, 2, 3)", want: color.NRGBA{R: 1, G: 2, B: 3, A: 255}},
		{in: "rgba(1, 2, 3, 128)", want: color.NRGBA{R: 1, G: 2, B: 3, A: 128}},
		{in: "RGBA(1,2,3,1.0)", want: color.NRGBA{R: 1, G: 2, B: 3, A: 255}},
		{in: "", wantErr: true},
		{in: "#12345", wantErr: true},
		{in: "#gg0000", wantErr: true},
		{in: "rgb(1,2)", wantErr: true},
		{in: "rgb(300,0,0)", wantErr: true},
		{in: "chartreuse-ish", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidColor) {
					t.Errorf("ParseColor(%q) error = %v, want ErrInvalidColor", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToHex(t *testing.T) {
	if got := ToHex(color.NRGBA{R: 255, G: 16, B: 1, A: 255}); got != "#FF1001" {
		t.Errorf("ToHex(opaque) = %q", got)
	}
	if got := ToHex(color.NRGBA{R: 1, A: 2}); got != "#01000002" {
		t.Errorf("ToHex(translucent) = %q", got)
	}
}

func TestBuffer(t *testing.T) {
	b := NewBuffer(4, 3, White)
	if b.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("Bounds() = %v", b.Bounds())
	}
	if b.At(3, 2) != px(White) {
		t.Errorf("initial pixel = %v, want white", b.At(3, 2))
	}

	b.Set(1, 1, red)
	if b.At(1, 1) != px(red) {
		t.Errorf("At after Set = %v", b.At(1, 1))
	}
	b.Set(10, 10, red) // ignored

	b.Fill(image.Rect(2, 0, 10, 2), green)
	for _, p := range []image.Point{{2, 0}, {3, 1}} {
		if b.At(p.X, p.Y) != px(green) {
			t.Errorf("pixel %v = %v, want green", p, b.At(p.X, p.Y))
		}
	}
	if b.At(2, 2) != px(White) {
		t.Errorf("pixel outside fill changed: %v", b.At(2, 2))
	}

	img := b.Image()
	b.Set(0, 0, red)
	if img.RGBAAt(0, 0) != px(White) {
		t.Error("Image() is not a copy")
	}
}

func TestBufferStoresPremultiplied(t *testing.T) {
	b := NewBuffer(2, 1, color.NRGBA{R: 255, A: 128})
	if got, want := b.At(0, 0), (color.RGBA{R: 128, A: 128}); got != want {
		t.Errorf("translucent background = %v, want %v", got, want)
	}

	b.Set(1, 0, color.NRGBA{G: 255, A: 64})
	got := b.At(1, 0)
	if got != (color.RGBA{G: 64, A: 64}) {
		t.Errorf("translucent pixel = %v, want {0 64 0 64}", got)
	}
	if got.G > got.A {
		t.Errorf("pixel %v is not a valid premultiplied colour", got)
	}
}

func TestBufferFromImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 7))
	src.Set(5, 5, red)
	b := BufferFromImage(src)
	if b.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("Bounds() = %v, want origin-anchored 3x2", b.Bounds())
	}
	if b.At(0, 0) != px(red) {
		t.Errorf("At(0,0) = %v, want red", b.At(0, 0))
	}
}

func TestSurfaceFillRect(t *testing.T) {
	frame := newFrame(50, 50)
	s := NewSurface(frame, nil)
	s.FillRect(10, 10, 20, 20, red)

	if got := frame.RGBAAt(15, 15); got != px(red) {
		t.Errorf("inside = %v, want red", got)
	}
	if got := frame.RGBAAt(5, 5); got != px(White) {
		t.Errorf("outside = %v, want white", got)
	}
	if got := frame.RGBAAt(30, 30); got != px(White) {
		t.Errorf("pixel past the far edge = %v, want white", got)
	}
}

func TestSurfaceStrokeRectIsRing(t *testing.T) {
	frame := newFrame(50, 50)
	s := NewSurface(frame, nil)
	s.StrokeRect(10, 10, 30, 30, 4, red)

	if got := frame.RGBAAt(10, 20); got != px(red) {
		t.Errorf("border pixel = %v, want red", got)
	}
	if got := frame.RGBAAt(25, 25); got != px(White) {
		t.Errorf("centre = %v, want white (hollow)", got)
	}
}

func TestSurfaceEllipse(t *testing.T) {
	frame := newFrame(60, 60)
	s := NewSurface(frame, nil)
	s.FillEllipse(30, 30, 20, 10, red)

	if got := frame.RGBAAt(30, 30); !near(got, red, 2) {
		t.Errorf("centre = %v, want red", got)
	}
	if got := frame.RGBAAt(30, 15); got != px(White) {
		t.Errorf("outside minor axis = %v, want white", got)
	}

	frame = newFrame(60, 60)
	s = NewSurface(frame, nil)
	s.StrokeEllipse(30, 30, 20, 20, 4, red)
	if got := frame.RGBAAt(30, 30); got != px(White) {
		t.Errorf("ring centre = %v, want white", got)
	}
	if got := frame.RGBAAt(50, 30); !near(got, red, 40) {
		t.Errorf("ring edge = %v, want red", got)
	}
}

func TestSurfacePolygon(t *testing.T) {
	frame := newFrame(40, 40)
	s := NewSurface(frame, nil)
	tri := []f64.Vec2{{5, 5}, {35, 5}, {5, 35}}
	s.FillPolygon(tri, red)

	if got := frame.RGBAAt(10, 10); !near(got, red, 2) {
		t.Errorf("inside = %v, want red", got)
	}
	if got := frame.RGBAAt(33, 33); got != px(White) {
		t.Errorf("outside = %v, want white", got)
	}

	frame = newFrame(40, 40)
	s = NewSurface(frame, nil)
	s.StrokePolygon(tri, 2, green)
	if got := frame.RGBAAt(20, 5); !near(got, green, 2) {
		t.Errorf("edge = %v, want green", got)
	}
	if got := frame.RGBAAt(12, 12); got != px(White) {
		t.Errorf("inside outline = %v, want white", got)
	}
}

func TestSurfaceLineHasRoundCaps(t *testing.T) {
	frame := newFrame(40, 20)
	s := NewSurface(frame, nil)
	s.Line(f64.Vec2{10, 10}, f64.Vec2{30, 10}, 6, red)

	if got := frame.RGBAAt(20, 10); !near(got, red, 2) {
		t.Errorf("midpoint = %v, want red", got)
	}
	// The cap extends past the end point by half the thickness.
	if got := frame.RGBAAt(31, 10); !near(got, red, 2) {
		t.Errorf("cap = %v, want red", got)
	}
	if got := frame.RGBAAt(20, 16); got != px(White) {
		t.Errorf("beside the line = %v, want white", got)
	}
}

func TestSurfaceZeroLengthLineIsDot(t *testing.T) {
	frame := newFrame(20, 20)
	NewSurface(frame, nil).Line(f64.Vec2{10, 10}, f64.Vec2{10, 10}, 6, red)
	if got := frame.RGBAAt(10, 10); !near(got, red, 2) {
		t.Errorf("dot centre = %v, want red", got)
	}
}

func TestSurfaceCubic(t *testing.T) {
	frame := newFrame(50, 50)
	s := NewSurface(frame, nil)
	// A degenerate cubic along y=25.
	s.Cubic(f64.Vec2{5, 25}, f64.Vec2{15, 25}, f64.Vec2{35, 25}, f64.Vec2{45, 25}, 4, red)

	if got := frame.RGBAAt(25, 25); !near(got, red, 2) {
		t.Errorf("on curve = %v, want red", got)
	}
	if got := frame.RGBAAt(25, 40); got != px(White) {
		t.Errorf("off curve = %v, want white", got)
	}
}

func TestSurfaceTranslucentFillBlends(t *testing.T) {
	frame := newFrame(10, 10)
	NewSurface(frame, nil).FillRect(0, 0, 10, 10, color.NRGBA{R: 255, A: 128})
	if got := frame.RGBAAt(5, 5); !near(got, color.NRGBA{R: 255, G: 127, B: 127, A: 255}, 1) {
		t.Errorf("half red over white = %v, want about {255 127 127 255}", got)
	}
}

func TestSurfaceTransparentFillIsNoop(t *testing.T) {
	frame := newFrame(10, 10)
	NewSurface(frame, nil).FillRect(0, 0, 10, 10, color.NRGBA{})
	if got := frame.RGBAAt(5, 5); got != px(White) {
		t.Errorf("pixel = %v, want untouched white", got)
	}
}

func countNonWhite(img *image.RGBA, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) != px(White) {
				n++
			}
		}
	}
	return n
}

func TestSurfaceTextCentredAndClipped(t *testing.T) {
	frame := newFrame(200, 60)
	s := NewSurface(frame, NewFaceCache())
	s.Text("Hi", frame.Bounds(), 24, Blue, false)

	if countNonWhite(frame, frame.Bounds()) == 0 {
		t.Fatal("no text pixels drawn")
	}
	// Centred text leaves the outer quarters empty.
	if n := countNonWhite(frame, image.Rect(0, 0, 50, 60)); n != 0 {
		t.Errorf("%d pixels drawn in the left quarter", n)
	}
	if n := countNonWhite(frame, image.Rect(150, 0, 200, 60)); n != 0 {
		t.Errorf("%d pixels drawn in the right quarter", n)
	}
}

func TestSurfaceTextBoundedStaysInBox(t *testing.T) {
	frame := newFrame(200, 200)
	s := NewSurface(frame, NewFaceCache())
	box := image.Rect(20, 20, 100, 60)
	s.Text(strings.Repeat("wrap me please ", 20), box, 12, Black, true)

	if countNonWhite(frame, box) == 0 {
		t.Fatal("no text pixels in the box")
	}
	total := countNonWhite(frame, frame.Bounds())
	inside := countNonWhite(frame, box)
	if total != inside {
		t.Errorf("%d text pixels escaped the box", total-inside)
	}
}

func TestEllipsizeAndWrap(t *testing.T) {
	fc := NewFaceCache()
	defer fc.Close()
	face, err := fc.Face(16)
	if err != nil {
		t.Fatalf("Face() error = %v", err)
	}
	again, _ := fc.Face(16)
	if face != again {
		t.Error("Face() did not reuse the cached face")
	}

	long := "the quick brown fox jumps over the lazy dog"
	short := Ellipsize(face, long, 80)
	if !strings.HasSuffix(short, Ellipsis) {
		t.Errorf("Ellipsize() = %q, want trailing ellipsis", short)
	}
	if Measure(face, short) > 80 {
		t.Errorf("Ellipsize() result is %dpx wide, limit 80", Measure(face, short))
	}
	if got := Ellipsize(face, "ok", 500); got != "ok" {
		t.Errorf("Ellipsize() of fitting text = %q", got)
	}
	if got := Ellipsize(face, long, 1); got != "" {
		t.Errorf("Ellipsize() with no room = %q, want empty", got)
	}

	lines := Wrap(face, long, 100)
	if len(lines) < 2 {
		t.Fatalf("Wrap() = %q, want several lines", lines)
	}
	for _, l := range lines {
		if Measure(face, l) > 100 {
			t.Errorf("line %q is %dpx wide, limit 100", l, Measure(face, l))
		}
	}
	if got := strings.Join(lines, " "); got != long {
		t.Errorf("Wrap() lost words: %q", got)
	}

	if got := Wrap(face, "a\nb", 100); len(got) != 2 {
		t.Errorf("Wrap() with newline = %q, want 2 lines", got)
	}
}
