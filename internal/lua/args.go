package lua

import (
	"fmt"
	"image/color"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-canvas/internal/raster"
	"github.com/opd-ai/go-canvas/pkg/canvas"
)

// getAllArgs returns all arguments, including variadic ones.
func getAllArgs(c *rt.GoCont) []rt.Value {
	return append(c.Args(), c.Etc()...)
}

// hasArg reports whether args[idx] is present and not nil.
func hasArg(args []rt.Value, idx int) bool {
	return idx < len(args) && args[idx] != rt.NilValue
}

func toFloat(v rt.Value) (float64, bool) {
	if f, ok := v.TryFloat(); ok {
		return f, true
	}
	if i, ok := v.TryInt(); ok {
		return float64(i), true
	}
	return 0, false
}

func getFloatArg(args []rt.Value, idx int) (float64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("argument %d out of range (have %d)", idx, len(args))
	}
	if f, ok := toFloat(args[idx]); ok {
		return f, nil
	}
	return 0, fmt.Errorf("argument %d is not a number", idx)
}

func getIntArg(args []rt.Value, idx int) (int64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("argument %d out of range (have %d)", idx, len(args))
	}
	if i, ok := args[idx].TryInt(); ok {
		return i, nil
	}
	if f, ok := args[idx].TryFloat(); ok {
		return int64(f), nil
	}
	return 0, fmt.Errorf("argument %d is not an integer", idx)
}

func getStringArg(args []rt.Value, idx int) (string, error) {
	if idx >= len(args) {
		return "", fmt.Errorf("argument %d out of range (have %d)", idx, len(args))
	}
	if s, ok := args[idx].TryString(); ok {
		return s, nil
	}
	return "", fmt.Errorf("argument %d is not a string", idx)
}

// getFloats reads n consecutive numbers starting at args[0].
func getFloats(args []rt.Value, n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		f, err := getFloatArg(args, i)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// getFunctionArg returns args[idx] if it is a Lua function.
func getFunctionArg(args []rt.Value, idx int) (rt.Value, error) {
	if idx >= len(args) {
		return rt.NilValue, fmt.Errorf("argument %d out of range (have %d)", idx, len(args))
	}
	if args[idx].Type() != rt.FunctionType {
		return rt.NilValue, fmt.Errorf("argument %d is not a function", idx)
	}
	return args[idx], nil
}

// truthy follows Lua: everything but nil and false is true.
func truthy(v rt.Value) bool {
	return v != rt.NilValue && v != rt.BoolValue(false)
}

// optBool returns the truthiness of args[idx], or false when absent.
func optBool(args []rt.Value, idx int) bool {
	return idx < len(args) && truthy(args[idx])
}

func getColorArg(args []rt.Value, idx int) (color.NRGBA, error) {
	if idx >= len(args) {
		return color.NRGBA{}, fmt.Errorf("argument %d out of range (have %d)", idx, len(args))
	}
	c, err := colorValue(args[idx])
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("argument %d: %w", idx, err)
	}
	return c, nil
}

// colorValue converts a colour string ("red", "#ff0000", "rgb(255,0,0)")
// or an {r, g, b[, a]} table of 0-255 components.
func colorValue(v rt.Value) (color.NRGBA, error) {
	if s, ok := v.TryString(); ok {
		return raster.ParseColor(s)
	}
	tbl, ok := v.TryTable()
	if !ok {
		return color.NRGBA{}, ErrInvalidColor
	}

	comp := [4]float64{0, 0, 0, 255}
	for i, key := range []string{"r", "g", "b", "a"} {
		f, ok := toFloat(tbl.Get(rt.IntValue(int64(i + 1))))
		if !ok {
			f, ok = toFloat(tbl.Get(rt.StringValue(key)))
		}
		if !ok {
			if i < 3 {
				return color.NRGBA{}, fmt.Errorf("%w: missing %s", ErrInvalidColor, key)
			}
			continue
		}
		if f < 0 || f > 255 {
			return color.NRGBA{}, fmt.Errorf("%w: %s=%v outside 0-255", ErrInvalidColor, key, f)
		}
		comp[i] = f
	}
	return color.NRGBA{uint8(comp[0]), uint8(comp[1]), uint8(comp[2]), uint8(comp[3])}, nil
}

// shapeOptions reads the optional style table at args[idx]:
// {fill=, border=, border_color=, color=, thickness=, rotation=, size=}.
func shapeOptions(args []rt.Value, idx int) ([]canvas.ShapeOption, error) {
	if !hasArg(args, idx) {
		return nil, nil
	}
	tbl, ok := args[idx].TryTable()
	if !ok {
		return nil, fmt.Errorf("argument %d is not an options table", idx)
	}

	var opts []canvas.ShapeOption
	colors := []struct {
		key  string
		with func(color.Color) canvas.ShapeOption
	}{
		{"fill", canvas.WithFill},
		{"border_color", canvas.WithBorderColor},
		{"color", canvas.WithColor},
	}
	for _, o := range colors {
		v := tbl.Get(rt.StringValue(o.key))
		if v == rt.NilValue {
			continue
		}
		c, err := colorValue(v)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", o.key, err)
		}
		opts = append(opts, o.with(c))
	}

	numbers := []struct {
		key  string
		with func(float64) canvas.ShapeOption
	}{
		{"border", canvas.WithBorder},
		{"thickness", canvas.WithThickness},
		{"rotation", canvas.WithRotation},
		{"size", canvas.WithTextSize},
	}
	for _, o := range numbers {
		v := tbl.Get(rt.StringValue(o.key))
		if v == rt.NilValue {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("option %s is not a number", o.key)
		}
		opts = append(opts, o.with(f))
	}
	return opts, nil
}
