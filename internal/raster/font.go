package raster

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Ellipsis is appended to text truncated to fit a width.
const Ellipsis = "…"

var (
	regularOnce sync.Once
	regularFont *opentype.Font
	regularErr  error
)

func regular() (*opentype.Font, error) {
	regularOnce.Do(func() {
		regularFont, regularErr = opentype.Parse(goregular.TTF)
	})
	return regularFont, regularErr
}

// FaceCache hands out Go Regular faces by pixel size.
type FaceCache struct {
	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFaceCache returns an empty cache.
func NewFaceCache() *FaceCache {
	return &FaceCache{faces: make(map[float64]font.Face)}
}

// Face returns the face for size pixels, creating it on first use.
func (fc *FaceCache) Face(size float64) (font.Face, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if f, ok := fc.faces[size]; ok {
		return f, nil
	}
	ttf, err := regular()
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	// At 72 DPI one point is one pixel.
	f, err := opentype.NewFace(ttf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face size %.1f: %w", size, err)
	}
	fc.faces[size] = f
	return f, nil
}

// Close releases every cached face.
func (fc *FaceCache) Close() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	for size, f := range fc.faces {
		f.Close()
		delete(fc.faces, size)
	}
}

// Measure returns the advance width of s in whole pixels, rounded up.
func Measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// Ellipsize shortens s until it fits in maxWidth pixels, ending it with
// Ellipsis when anything was removed. If not even the ellipsis fits, the
// result is empty.
func Ellipsize(face font.Face, s string, maxWidth int) string {
	limit := fixed.I(maxWidth)
	if font.MeasureString(face, s) <= limit {
		return s
	}
	for s != "" {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
		if font.MeasureString(face, s+Ellipsis) <= limit {
			return s + Ellipsis
		}
	}
	if font.MeasureString(face, Ellipsis) <= limit {
		return Ellipsis
	}
	return ""
}

// Wrap breaks s into lines no wider than maxWidth pixels. Explicit newlines
// are kept. Words wider than a line are split between runes.
func Wrap(face font.Face, s string, maxWidth int) []string {
	limit := fixed.I(maxWidth)
	fits := func(line string) bool { return font.MeasureString(face, line) <= limit }

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if fits(candidate) {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			for !fits(w) {
				cut := splitPoint(w, fits)
				lines = append(lines, w[:cut])
				w = w[cut:]
			}
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}

// splitPoint returns the byte length of the longest prefix of w that fits,
// but at least one rune so wrapping always makes progress.
func splitPoint(w string, fits func(string) bool) int {
	_, first := utf8.DecodeRuneInString(w)
	cut := first
	for i := range w {
		if i == 0 {
			continue
		}
		if !fits(w[:i]) {
			break
		}
		cut = i
	}
	return cut
}
