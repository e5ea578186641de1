package lua

import (
	"fmt"
	"image"
	"image/color"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-canvas/internal/raster"
	"github.com/opd-ai/go-canvas/pkg/canvas"
)

// table builds the global canvas table.
func (s *Session) table() *rt.Table {
	tbl := rt.NewTable()
	set := func(name string, fn rt.GoFunctionFunc, nArgs int, varArgs bool) {
		tbl.Set(rt.StringValue(name), rt.FunctionValue(newGoFunction("canvas."+name, fn, nArgs, varArgs)))
	}

	set("rect", s.rect, 0, true)
	set("ellipse", s.ellipse, 0, true)
	set("polygon", s.polygon, 0, true)
	set("line", s.line, 0, true)
	set("polar_line", s.polarLine, 0, true)
	set("bezier", s.bezier, 0, true)
	set("text", s.text, 0, true)
	set("text_box", s.textBox, 0, true)
	set("clear", s.clear, 0, false)
	set("render", s.render, 0, false)
	set("len", s.length, 0, false)

	set("set_scale", s.setScale, 1, false)
	set("scale", s.scale, 0, false)
	set("width", s.width, 0, false)
	set("height", s.height, 0, false)
	set("title", s.title, 0, false)
	set("continuous", s.continuous, 0, true)
	set("move", s.move, 2, false)
	set("position", s.position, 0, false)

	set("get_pixel", s.getPixel, 2, false)
	set("set_pixel", s.setPixel, 3, false)
	set("get_scaled_pixel", s.getScaledPixel, 2, false)
	set("set_scaled_pixel", s.setScaledPixel, 3, false)
	set("fill", s.fill, 1, false)

	latches := []struct {
		name string
		raw  func() (image.Point, bool)
		sc   func() (image.Point, bool)
	}{
		{"last_mouse", s.canvas.LastMousePosition, s.canvas.LastMousePositionScaled},
		{"last_click", s.canvas.LastLeftClick, s.canvas.LastLeftClickScaled},
		{"last_release", s.canvas.LastLeftRelease, s.canvas.LastLeftReleaseScaled},
		{"last_right_click", s.canvas.LastRightClick, s.canvas.LastRightClickScaled},
		{"last_right_release", s.canvas.LastRightRelease, s.canvas.LastRightReleaseScaled},
	}
	for _, l := range latches {
		set(l.name, latch(l.raw, l.sc), 0, true)
	}

	pointers := []struct {
		name string
		raw  func(func(image.Point)) *canvas.Subscription
		sc   func(func(image.Point)) *canvas.Subscription
	}{
		{"on_move", s.canvas.OnMouseMove, s.canvas.OnMouseMoveScaled},
		{"on_click", s.canvas.OnLeftClick, s.canvas.OnLeftClickScaled},
		{"on_release", s.canvas.OnLeftRelease, s.canvas.OnLeftReleaseScaled},
		{"on_right_click", s.canvas.OnRightClick, s.canvas.OnRightClickScaled},
		{"on_right_release", s.canvas.OnRightRelease, s.canvas.OnRightReleaseScaled},
	}
	for _, p := range pointers {
		set(p.name, s.onPoint(p.raw, p.sc), 1, true)
	}
	set("on_key", s.onKey, 1, false)
	set("on_close", s.onClose, 1, false)

	set("save", s.save, 0, true)
	set("copy", s.copy, 0, false)
	return tbl
}

// --- Shapes ---

// addShape reads n numbers followed by an optional style table and hands
// them to add.
func (s *Session) addShape(name string, c *rt.GoCont, n int, add func(v []float64, opts []canvas.ShapeOption) error) (rt.Cont, error) {
	args := getAllArgs(c)
	v, err := getFloats(args, n)
	if err != nil {
		return nil, fmt.Errorf("canvas.%s: %w", name, err)
	}
	opts, err := shapeOptions(args, n)
	if err != nil {
		return nil, fmt.Errorf("canvas.%s: %w", name, err)
	}
	if err := add(v, opts); err != nil {
		return nil, fmt.Errorf("canvas.%s: %w", name, err)
	}
	return c.Next(), nil
}

// rect handles canvas.rect(x, y, w, h [, opts])
func (s *Session) rect(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return s.addShape("rect", c, 4, func(v []float64, opts []canvas.ShapeOption) error {
		return s.canvas.AddRectangle(v[0], v[1], v[2], v[3], opts...)
	})
}

// ellipse handles canvas.ellipse(x, y, w, h [, opts])
func (s *Session) ellipse(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return s.addShape("ellipse", c, 4, func(v []float64, opts []canvas.ShapeOption) error {
		return s.canvas.AddEllipse(v[0], v[1], v[2], v[3], opts...)
	})
}

// polygon handles canvas.polygon(cx, cy, sides, radius [, opts])
func (s *Session) polygon(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return s.addShape("polygon", c, 4, func(v []float64, opts []canvas.ShapeOption) error {
		return s.canvas.AddPolygon(v[0], v[1], int(v[2]), v[3], opts...)
	})
}

// line handles canvas.line(x1, y1, x2, y2 [, opts])
func (s *Session) line(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return s.addShape("line", c, 4, func(v []float64, opts []canvas.ShapeOption) error {
		return s.canvas.AddLine(v[0], v[1], v[2], v[3], opts...)
	})
}

// polarLine handles canvas.polar_line(x, y, length, angle [, opts])
func (s *Session) polarLine(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return s.addShape("polar_line", c, 4, func(v []float64, opts []canvas.ShapeOption) error {
		return s.canvas.AddPolarLine(v[0], v[1], v[2], v[3], opts...)
	})
}

// bezier handles canvas.bezier(x0, y0, x1, y1, x2, y2, x3, y3 [, opts])
func (s *Session) bezier(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return s.addShape("bezier", c, 8, func(v []float64, opts []canvas.ShapeOption) error {
		return s.canvas.AddBezier(
			canvas.Point{v[0], v[1]}, canvas.Point{v[2], v[3]},
			canvas.Point{v[4], v[5]}, canvas.Point{v[6], v[7]}, opts...)
	})
}

// text handles canvas.text(s [, opts])
func (s *Session) text(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	str, err := getStringArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("canvas.text: %w", err)
	}
	opts, err := shapeOptions(args, 1)
	if err != nil {
		return nil, fmt.Errorf("canvas.text: %w", err)
	}
	if err := s.canvas.AddText(str, opts...); err != nil {
		return nil, fmt.Errorf("canvas.text: %w", err)
	}
	return c.Next(), nil
}

// textBox handles canvas.text_box(s, x, y, w, h [, opts])
func (s *Session) textBox(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	str, err := getStringArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("canvas.text_box: %w", err)
	}
	v, err := getFloats(args[1:], 4)
	if err != nil {
		return nil, fmt.Errorf("canvas.text_box: %w", err)
	}
	opts, err := shapeOptions(args, 5)
	if err != nil {
		return nil, fmt.Errorf("canvas.text_box: %w", err)
	}
	if err := s.canvas.AddTextBox(str, v[0], v[1], v[2], v[3], opts...); err != nil {
		return nil, fmt.Errorf("canvas.text_box: %w", err)
	}
	return c.Next(), nil
}

func (s *Session) clear(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	if err := s.canvas.Clear(); err != nil {
		return nil, fmt.Errorf("canvas.clear: %w", err)
	}
	return c.Next(), nil
}

func (s *Session) render(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	if err := s.canvas.Render(); err != nil {
		return nil, fmt.Errorf("canvas.render: %w", err)
	}
	return c.Next(), nil
}

func (s *Session) length(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(s.canvas.Len()))), nil
}

// --- Geometry and window ---

func (s *Session) setScale(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	n, err := getIntArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("canvas.set_scale: %w", err)
	}
	if err := s.canvas.SetScale(int(n)); err != nil {
		return nil, fmt.Errorf("canvas.set_scale: %w", err)
	}
	return c.Next(), nil
}

func (s *Session) scale(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(s.canvas.Scale()))), nil
}

// width handles canvas.width() and returns the width and scaled width.
func (s *Session) width(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return c.PushingNext(t.Runtime,
		rt.IntValue(int64(s.canvas.Width())),
		rt.IntValue(int64(s.canvas.ScaledWidth()))), nil
}

// height handles canvas.height() and returns the height and scaled height.
func (s *Session) height(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return c.PushingNext(t.Runtime,
		rt.IntValue(int64(s.canvas.Height())),
		rt.IntValue(int64(s.canvas.ScaledHeight()))), nil
}

func (s *Session) title(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return c.PushingNext1(t.Runtime, rt.StringValue(s.canvas.Title())), nil
}

// continuous handles canvas.continuous([on]). With an argument it sets
// the update policy; it always returns the policy in effect.
func (s *Session) continuous(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	if len(args) > 0 {
		if err := s.canvas.SetContinuousUpdate(truthy(args[0])); err != nil {
			return nil, fmt.Errorf("canvas.continuous: %w", err)
		}
	}
	return c.PushingNext1(t.Runtime, rt.BoolValue(s.canvas.ContinuousUpdate())), nil
}

func (s *Session) move(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	x, err := getIntArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("canvas.move: %w", err)
	}
	y, err := getIntArg(args, 1)
	if err != nil {
		return nil, fmt.Errorf("canvas.move: %w", err)
	}
	if err := s.canvas.Move(int(x), int(y)); err != nil {
		return nil, fmt.Errorf("canvas.move: %w", err)
	}
	return c.Next(), nil
}

func (s *Session) position(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	x, y, err := s.canvas.Position()
	if err != nil {
		return nil, fmt.Errorf("canvas.position: %w", err)
	}
	return c.PushingNext(t.Runtime, rt.IntValue(int64(x)), rt.IntValue(int64(y))), nil
}

// --- Pixels ---

func (s *Session) pixelGetter(name string, c *rt.GoCont, t *rt.Thread, get func(x, y int) (color.RGBA, error)) (rt.Cont, error) {
	args := getAllArgs(c)
	x, err := getIntArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("canvas.%s: %w", name, err)
	}
	y, err := getIntArg(args, 1)
	if err != nil {
		return nil, fmt.Errorf("canvas.%s: %w", name, err)
	}
	col, err := get(int(x), int(y))
	if err != nil {
		return nil, fmt.Errorf("canvas.%s: %w", name, err)
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(raster.ToHex(color.NRGBAModel.Convert(col).(color.NRGBA)))), nil
}

func (s *Session) pixelSetter(name string, c *rt.GoCont, set func(x, y int, col color.NRGBA) error) (rt.Cont, error) {
	args := getAllArgs(c)
	x, err := getIntArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("canvas.%s: %w", name, err)
	}
	y, err := getIntArg(args, 1)
	if err != nil {
		return nil, fmt.Errorf("canvas.%s: %w", name, err)
	}
	col, err := getColorArg(args, 2)
	if err != nil {
		return nil, fmt.Errorf("canvas.%s: %w", name, err)
	}
	if err := set(int(x), int(y), col); err != nil {
		return nil, fmt.Errorf("canvas.%s: %w", name, err)
	}
	return c.Next(), nil
}

// getPixel handles canvas.get_pixel(x, y) and returns "#rrggbbaa".
func (s *Session) getPixel(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return s.pixelGetter("get_pixel", c, t, s.canvas.GetPixel)
}

func (s *Session) getScaledPixel(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return s.pixelGetter("get_scaled_pixel", c, t, s.canvas.GetScaledPixel)
}

// setPixel handles canvas.set_pixel(x, y, colour)
func (s *Session) setPixel(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return s.pixelSetter("set_pixel", c, func(x, y int, col color.NRGBA) error {
		return s.canvas.SetPixel(x, y, col)
	})
}

func (s *Session) setScaledPixel(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return s.pixelSetter("set_scaled_pixel", c, func(x, y int, col color.NRGBA) error {
		return s.canvas.SetScaledPixel(x, y, col)
	})
}

// fill handles canvas.fill(colour), repainting the whole background.
func (s *Session) fill(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	col, err := getColorArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("canvas.fill: %w", err)
	}
	if err := s.canvas.FillBackground(col); err != nil {
		return nil, fmt.Errorf("canvas.fill: %w", err)
	}
	return c.Next(), nil
}

// --- Input ---

// latch builds canvas.last_*([scaled]), returning x, y, fresh.
func latch(raw, scaled func() (image.Point, bool)) rt.GoFunctionFunc {
	return func(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
		take := raw
		if optBool(getAllArgs(c), 0) {
			take = scaled
		}
		p, fresh := take()
		return c.PushingNext(t.Runtime,
			rt.IntValue(int64(p.X)), rt.IntValue(int64(p.Y)), rt.BoolValue(fresh)), nil
	}
}

// onPoint builds canvas.on_*(fn [, scaled]); fn is called with x, y.
func (s *Session) onPoint(raw, scaled func(func(image.Point)) *canvas.Subscription) rt.GoFunctionFunc {
	return func(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
		args := getAllArgs(c)
		fn, err := getFunctionArg(args, 0)
		if err != nil {
			return nil, err
		}
		subscribe := raw
		if optBool(args, 1) {
			subscribe = scaled
		}
		emit := s.emitter(fn)
		s.track(subscribe(func(p image.Point) {
			emit(rt.IntValue(int64(p.X)), rt.IntValue(int64(p.Y)))
		}))
		return c.Next(), nil
	}
}

// onKey handles canvas.on_key(fn); fn is called with name, down, code.
func (s *Session) onKey(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	fn, err := getFunctionArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("canvas.on_key: %w", err)
	}
	emit := s.emitter(fn)
	handler := func(down bool) func(canvas.KeyEvent) {
		return func(k canvas.KeyEvent) {
			emit(rt.StringValue(k.Name), rt.BoolValue(down), rt.IntValue(int64(k.Code)))
		}
	}
	s.track(s.canvas.OnKeyDown(handler(true)))
	s.track(s.canvas.OnKeyUp(handler(false)))
	return c.Next(), nil
}

// onClose handles canvas.on_close(fn).
func (s *Session) onClose(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	fn, err := getFunctionArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("canvas.on_close: %w", err)
	}
	emit := s.emitter(fn)
	s.track(s.canvas.OnClose(func() { emit() }))
	return c.Next(), nil
}

// --- Export ---

// save handles canvas.save([path]) and returns the path written.
func (s *Session) save(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	var path string
	if hasArg(args, 0) {
		p, err := getStringArg(args, 0)
		if err != nil {
			return nil, fmt.Errorf("canvas.save: %w", err)
		}
		path = p
	}
	img, err := s.snapshot()
	if err != nil {
		return nil, fmt.Errorf("canvas.save: %w", err)
	}
	written, err := s.export.Save(img, path)
	if err != nil {
		return nil, fmt.Errorf("canvas.save: %w", err)
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(written)), nil
}

// copy handles canvas.copy(), placing a PNG snapshot on the clipboard.
func (s *Session) copy(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	img, err := s.snapshot()
	if err != nil {
		return nil, fmt.Errorf("canvas.copy: %w", err)
	}
	if err := s.export.Copy(img); err != nil {
		return nil, fmt.Errorf("canvas.copy: %w", err)
	}
	return c.Next(), nil
}
