package raster

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned by ParseColor for unrecognised input.
var ErrInvalidColor = errors.New("invalid color")

// Colors used as primitive defaults.
var (
	Black = color.NRGBA{A: 255}
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Gray  = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	Blue  = color.NRGBA{B: 255, A: 255}
)

// NamedColors maps lower-case CSS names to colours.
var NamedColors = map[string]color.NRGBA{
	"black":       Black,
	"white":       White,
	"red":         {R: 255, A: 255},
	"green":       {G: 128, A: 255},
	"lime":        {G: 255, A: 255},
	"blue":        Blue,
	"yellow":      {R: 255, G: 255, A: 255},
	"cyan":        {G: 255, B: 255, A: 255},
	"magenta":     {R: 255, B: 255, A: 255},
	"gray":        Gray,
	"grey":        Gray,
	"silver":      {R: 192, G: 192, B: 192, A: 255},
	"maroon":      {R: 128, A: 255},
	"olive":       {R: 128, G: 128, A: 255},
	"teal":        {G: 128, B: 128, A: 255},
	"navy":        {B: 128, A: 255},
	"purple":      {R: 128, B: 128, A: 255},
	"orange":      {R: 255, G: 165, A: 255},
	"pink":        {R: 255, G: 192, B: 203, A: 255},
	"brown":       {R: 165, G: 42, B: 42, A: 255},
	"gold":        {R: 255, G: 215, A: 255},
	"indigo":      {R: 75, B: 130, A: 255},
	"violet":      {R: 238, G: 130, B: 238, A: 255},
	"darkgray":    {R: 169, G: 169, B: 169, A: 255},
	"lightgray":   {R: 211, G: 211, B: 211, A: 255},
	"transparent": {},
}

// ParseColor parses a colour name, a hex value ("#rgb", "#rgba",
// "#rrggbb", "#rrggbbaa", with or without '#'), "rgb(r, g, b)" or
// "rgba(r, g, b, a)" where a is 0-255 or a 0.0-1.0 fraction.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("%w: empty string", ErrInvalidColor)
	}
	lower := strings.ToLower(s)
	if c, ok := NamedColors[lower]; ok {
		return c, nil
	}

	switch {
	case strings.HasPrefix(lower, "rgba(") && strings.HasSuffix(lower, ")"):
		return parseFunc(lower[5:len(lower)-1], 4)
	case strings.HasPrefix(lower, "rgb(") && strings.HasSuffix(lower, ")"):
		return parseFunc(lower[4:len(lower)-1], 3)
	}
	return parseHex(strings.TrimPrefix(lower, "#"))
}

func parseHex(h string) (color.NRGBA, error) {
	var digits []string
	switch len(h) {
	case 3, 4:
		for i := 0; i < len(h); i++ {
			digits = append(digits, h[i:i+1]+h[i:i+1])
		}
	case 6, 8:
		for i := 0; i < len(h); i += 2 {
			digits = append(digits, h[i:i+2])
		}
	default:
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, h)
	}

	ch := [4]uint8{0, 0, 0, 255}
	for i, d := range digits {
		v, err := strconv.ParseUint(d, 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, h)
		}
		ch[i] = uint8(v)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

func parseFunc(body string, n int) (color.NRGBA, error) {
	parts := strings.Split(body, ",")
	if len(parts) != n {
		return color.NRGBA{}, fmt.Errorf("%w: want %d components, got %d", ErrInvalidColor, n, len(parts))
	}

	ch := [4]uint8{0, 0, 0, 255}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == 3 && strings.Contains(p, ".") {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return color.NRGBA{}, fmt.Errorf("%w: alpha %q", ErrInvalidColor, p)
			}
			ch[3] = uint8(clamp01(f) * 255)
			continue
		}
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: component %q", ErrInvalidColor, p)
		}
		ch[i] = uint8(v)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// ToHex formats c as "#RRGGBB", or "#RRGGBBAA" when it is not opaque.
func ToHex(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
