package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-canvas/internal/config"
	"github.com/opd-ai/go-canvas/pkg/canvas"
)

// recordingExporter keeps saved images in memory.
type recordingExporter struct {
	mu    sync.Mutex
	saved map[string]image.Image
}

func (r *recordingExporter) Save(img image.Image, path string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		r.saved = make(map[string]image.Image)
	}
	r.saved[path] = img
	return path, nil
}

func (r *recordingExporter) Copy(image.Image) error { return nil }

func writeScript(t *testing.T, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "draw.lua")
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestApp(t *testing.T, cfg config.Config, exp *recordingExporter) (*app, *bytes.Buffer) {
	t.Helper()
	var stdout bytes.Buffer
	a, err := newApp(cfg, appOptions{
		Stdout:   &stdout,
		Bridge:   canvas.NewHeadlessBridge(nil),
		Exporter: exp,
		Metrics:  canvas.NewMetrics(),
	})
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	return a, &stdout
}

func testConfig(script string) config.Config {
	cfg := config.Defaults()
	cfg.Script = script
	cfg.Window.Width = 40
	cfg.Window.Height = 30
	cfg.Window.Headless = true
	return cfg
}

func TestRunOnceWritesOutput(t *testing.T) {
	script := writeScript(t, `
		canvas.rect(2, 2, 10, 10, {fill = "red"})
		function canvas_stop() print("stopped") end
	`)
	cfg := testConfig(script)
	cfg.Output = "frame.png"
	exp := &recordingExporter{}
	a, stdout := newTestApp(t, cfg, exp)

	if err := a.runOnce(); err != nil {
		t.Fatalf("runOnce() error = %v", err)
	}
	if err := a.close(); err != nil {
		t.Fatalf("close() error = %v", err)
	}

	img, ok := exp.saved["frame.png"]
	if !ok {
		t.Fatalf("output not saved: %v", exp.saved)
	}
	if got := color.RGBAModel.Convert(img.At(5, 5)); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel = %v, want red", got)
	}
	if !bytes.Contains(stdout.Bytes(), []byte("stopped")) {
		t.Errorf("canvas_stop did not run, stdout %q", stdout.String())
	}
	if !a.canvas.Closed() {
		t.Error("canvas should be closed")
	}
}

func TestScaleApplied(t *testing.T) {
	script := writeScript(t, `s = canvas.scale()`)
	cfg := testConfig(script)
	cfg.Window.Scale = 2
	a, _ := newTestApp(t, cfg, &recordingExporter{})
	defer a.close()

	if err := a.runOnce(); err != nil {
		t.Fatalf("runOnce() error = %v", err)
	}
	if a.canvas.Scale() != 2 {
		t.Errorf("Scale() = %d, want 2", a.canvas.Scale())
	}
}

func TestRunOnceScriptError(t *testing.T) {
	cfg := testConfig(writeScript(t, `canvas.rect(1)`))
	a, _ := newTestApp(t, cfg, &recordingExporter{})
	defer a.close()

	if err := a.runOnce(); err == nil {
		t.Fatal("expected script error")
	}
}

func TestLoopReloadsAndStops(t *testing.T) {
	script := writeScript(t, `
		runs = (runs or 0) + 1
		canvas.rect(0, 0, 5, 5)
	`)
	cfg := testConfig(script)
	cfg.Update.Tick = 0
	a, _ := newTestApp(t, cfg, &recordingExporter{})
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.loop(ctx) }()

	waitFor(t, func() bool { return a.canvas.Len() == 1 })
	a.requestReload()

	// The reload clears the scene and reruns the script on the loop
	// goroutine, so the global counter is only read after the loop exits.
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("loop() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}

	if a.canvas.Len() != 1 {
		t.Errorf("Len() = %d after reload, want 1", a.canvas.Len())
	}
	if n, ok := a.runtime.GetGlobal("runs").TryInt(); !ok || n != 2 {
		t.Errorf("runs = %v, want 2", a.runtime.GetGlobal("runs"))
	}
}

func TestLoopScriptErrorWithoutWatch(t *testing.T) {
	cfg := testConfig(writeScript(t, `error("broken")`))
	a, _ := newTestApp(t, cfg, &recordingExporter{})
	defer a.close()

	if err := a.loop(context.Background()); err == nil {
		t.Fatal("expected script error")
	}
}

func TestLoopWatchRerunsOnChange(t *testing.T) {
	script := writeScript(t, `canvas.rect(0, 0, 5, 5)`)
	cfg := testConfig(script)
	cfg.Watch = true
	cfg.Update.Tick = 0
	a, _ := newTestApp(t, cfg, &recordingExporter{})
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.loop(ctx) }()

	waitFor(t, func() bool { return a.canvas.Len() == 1 })
	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(script, []byte("canvas.rect(0, 0, 5, 5)\ncanvas.rect(5, 5, 5, 5)"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return a.canvas.Len() == 2 })

	cancel()
	if err := <-done; err != nil {
		t.Errorf("loop() error = %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestCanvasOptions(t *testing.T) {
	cfg := config.Defaults()
	cfg.Window.Background = "#102030"
	cfg.Update.DuplicateEvents = true
	cfg.Window.KeepAbove = true

	opts, err := canvasOptions(cfg, appOptions{})
	if err != nil {
		t.Fatalf("canvasOptions() error = %v", err)
	}
	if got := color.RGBAModel.Convert(opts.Background); got != (color.RGBA{0x10, 0x20, 0x30, 0xff}) {
		t.Errorf("Background = %v", got)
	}
	if !opts.ContinuousUpdate || !opts.DuplicateEvents || !opts.KeepAbove {
		t.Errorf("flags not carried: %+v", opts)
	}

	cfg.Window.Background = "plaid"
	if _, err := canvasOptions(cfg, appOptions{}); err == nil {
		t.Error("expected error for bad background")
	}
}

func TestExporterWritesPNG(t *testing.T) {
	dir := t.TempDir()
	e := newExporter(canvas.NopLogger())
	e.askPath = func(string) (string, error) { return filepath.Join(dir, "picked"), nil }
	var clipped []byte
	e.clip = func(b []byte) error { clipped = b; return nil }

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})

	path, err := e.Save(img, "")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if path != filepath.Join(dir, "picked.png") {
		t.Errorf("path = %q, want .png added", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if decoded.Bounds().Size() != (image.Point{4, 3}) {
		t.Errorf("size = %v", decoded.Bounds().Size())
	}

	explicit := filepath.Join(dir, "explicit.png")
	if path, err := e.Save(img, explicit); err != nil || path != explicit {
		t.Errorf("Save(explicit) = %q, %v", path, err)
	}

	if err := e.Copy(img); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(clipped)); err != nil {
		t.Errorf("clipboard data is not PNG: %v", err)
	}
}

func TestExporterCancelledDialog(t *testing.T) {
	e := newExporter(canvas.NopLogger())
	e.askPath = func(string) (string, error) { return "", errNoPath }
	if _, err := e.Save(image.NewRGBA(image.Rect(0, 0, 1, 1)), ""); err == nil {
		t.Error("expected error when no path is chosen")
	}
}
