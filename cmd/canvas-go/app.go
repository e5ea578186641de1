package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-canvas/internal/config"
	"github.com/opd-ai/go-canvas/internal/lua"
	"github.com/opd-ai/go-canvas/internal/raster"
	"github.com/opd-ai/go-canvas/pkg/canvas"
)

var (
	errReload       = errors.New("reload requested")
	errWindowClosed = errors.New("window closed")
)

// appOptions carries the collaborators of an app. Zero values select the
// defaults used by the command.
type appOptions struct {
	Logger   canvas.Logger
	Stdout   io.Writer
	Bridge   *canvas.Bridge
	Exporter lua.Exporter
	Metrics  *canvas.Metrics
}

// app runs one script against one canvas.
type app struct {
	cfg     config.Config
	log     canvas.Logger
	metrics *canvas.Metrics
	export  lua.Exporter

	canvas  *canvas.Canvas
	runtime *lua.Runtime
	session *lua.Session

	reloads chan struct{}
}

func newLogger(w io.Writer, level string, json bool) (canvas.Logger, error) {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	if json {
		return canvas.JSONLogger(w, lvl), nil
	}
	return canvas.LevelLogger(w, lvl), nil
}

// canvasOptions translates the window and update settings.
func canvasOptions(cfg config.Config, o appOptions) (canvas.Options, error) {
	bg, err := raster.ParseColor(cfg.Window.Background)
	if err != nil {
		return canvas.Options{}, fmt.Errorf("background: %w", err)
	}
	return canvas.Options{
		Title:            cfg.Window.Title,
		Background:       bg,
		ContinuousUpdate: cfg.Update.Continuous,
		DuplicateEvents:  cfg.Update.DuplicateEvents,
		Headless:         cfg.Window.Headless,
		Bridge:           o.Bridge,
		KeepAbove:        cfg.Window.KeepAbove,
		SkipTaskbar:      cfg.Window.SkipTaskbar,
		Logger:           o.Logger,
		Metrics:          o.Metrics,
	}, nil
}

func newApp(cfg config.Config, o appOptions) (*app, error) {
	if o.Logger == nil {
		o.Logger = canvas.NopLogger()
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Metrics == nil {
		o.Metrics = canvas.DefaultMetrics()
	}
	if o.Exporter == nil {
		o.Exporter = newExporter(o.Logger)
	}

	opts, err := canvasOptions(cfg, o)
	if err != nil {
		return nil, err
	}
	cv, err := canvas.New(cfg.Window.Width, cfg.Window.Height, &opts)
	if err != nil {
		return nil, fmt.Errorf("open canvas: %w", err)
	}
	if cfg.Window.Scale != 1 {
		if err := cv.SetScale(cfg.Window.Scale); err != nil {
			cv.Close()
			return nil, err
		}
	}

	runtime, err := lua.New(lua.RuntimeConfig{
		CPULimit:    cfg.Lua.CPULimit,
		MemoryLimit: cfg.Lua.MemoryLimit,
		Stdout:      o.Stdout,
	})
	if err != nil {
		cv.Close()
		return nil, fmt.Errorf("lua runtime: %w", err)
	}
	session, err := lua.NewSession(runtime, cv, lua.SessionOptions{
		Exporter: o.Exporter,
		Logger:   o.Logger,
	})
	if err != nil {
		runtime.Close()
		cv.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     o.Logger,
		metrics: o.Metrics,
		export:  o.Exporter,
		canvas:  cv,
		runtime: runtime,
		session: session,
		reloads: make(chan struct{}, 1),
	}, nil
}

// start runs the script once.
func (a *app) start() error {
	if err := a.session.RunFile(a.cfg.Script); err != nil {
		return fmt.Errorf("%s: %w", a.cfg.Script, err)
	}
	a.log.Info("script started", "script", a.cfg.Script, "shapes", a.canvas.Len())
	return nil
}

// reload stops the running script and runs it again on a cleared canvas.
func (a *app) reload() {
	if err := a.session.Reset(); err != nil {
		a.log.Warn("reset before reload", "error", err)
	}
	a.runtime.ClearOutput()
	if err := a.start(); err != nil {
		a.log.Error("reload failed", "error", err)
	}
}

// requestReload asks the loop to rerun the script. Requests made while
// one is pending are merged.
func (a *app) requestReload() {
	select {
	case a.reloads <- struct{}{}:
	default:
	}
}

// run executes the script until SIGINT, SIGTERM or the window is closed.
// SIGHUP reruns the script.
func (a *app) run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				a.log.Info("received SIGHUP, reloading")
				a.requestReload()
			case <-ctx.Done():
				return
			}
		}
	}()

	return a.loop(ctx)
}

// loop runs the script and pumps its callbacks until ctx is done or the
// window is closed. With watching enabled a failing script is reported
// and the loop waits for the next change.
func (a *app) loop(ctx context.Context) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	sub := a.canvas.OnClose(func() { cancel(errWindowClosed) })
	defer sub.Remove()

	if a.cfg.Watch {
		w, err := newScriptWatcher(a.cfg.Script, 0, a.requestReload, func(err error) {
			a.log.Warn("watch", "error", err)
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", a.cfg.Script, err)
		}
		w.Start()
		defer w.Stop()
	}

	if err := a.start(); err != nil {
		if !a.cfg.Watch {
			return err
		}
		a.log.Error("script failed, waiting for changes", "error", err)
	}

	for {
		if !a.pump(ctx) {
			break
		}
		a.reload()
	}

	if errors.Is(context.Cause(ctx), errWindowClosed) {
		a.log.Info("window closed")
	}
	return nil
}

// pump runs callbacks until ctx is done or a reload is requested, and
// reports whether it stopped for a reload.
func (a *app) pump(ctx context.Context) bool {
	pctx, pcancel := context.WithCancelCause(ctx)
	defer pcancel(nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-a.reloads:
			pcancel(errReload)
		case <-pctx.Done():
		}
	}()

	_ = a.session.Pump(pctx, a.cfg.Update.Tick)
	pcancel(nil)
	<-done
	return errors.Is(context.Cause(pctx), errReload)
}

// runOnce runs the script, delivers the callbacks it queued and returns.
func (a *app) runOnce() error {
	if err := a.start(); err != nil {
		return err
	}
	a.session.Drain()
	return nil
}

// close calls canvas_stop, writes the output frame and releases the
// canvas and the runtime.
func (a *app) close() error {
	var errs []error
	if _, err := a.session.Hooks().Call(lua.HookStop); err != nil {
		errs = append(errs, err)
	}
	if a.cfg.Output != "" {
		if err := a.writeOutput(); err != nil {
			errs = append(errs, err)
		}
	}
	if n := a.session.Dropped(); n > 0 {
		a.log.Warn("callbacks dropped", "count", n)
	}

	errs = append(errs, a.canvas.Close(), a.runtime.Close())

	m := a.metrics.Snapshot()
	a.log.Debug("metrics",
		"primitives", m.PrimitivesAdded,
		"paints", m.Paints,
		"input_events", m.InputEvents,
		"dropped_events", m.DroppedEvents,
		"bridge_latency", m.BridgeLatencyAvg,
		"paint_latency", m.PaintLatencyAvg,
	)
	return errors.Join(errs...)
}

func (a *app) writeOutput() error {
	img, err := a.canvas.Snapshot()
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	path, err := a.export.Save(img, a.cfg.Output)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	a.log.Info("frame written", "path", path)
	return nil
}
