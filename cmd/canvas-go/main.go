// Package main provides canvas-go, which runs a Lua drawing script against
// a canvas window.
//
// Usage:
//
//	canvas-go [flags] script.lua
//
// Settings are taken from defaults, then the Lua config file given with -c,
// then CANVAS_* environment variables, then flags.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/opd-ai/go-canvas/internal/config"
	"github.com/opd-ai/go-canvas/internal/profiling"
)

// Version is the current version of canvas-go.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cliOptions holds the flags that are not part of config.Config.
type cliOptions struct {
	configPath string
	version    bool
	once       bool
	logJSON    bool
	profile    profiling.Options

	// set applies the flags given on the command line to a Config.
	set []func(*config.Config)
}

// parseFlags parses args. Only flags that appear in args override the
// configuration, so file and environment values survive unset flags.
func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	fs := flag.NewFlagSet("canvas-go", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: canvas-go [flags] [script.lua]")
		fs.PrintDefaults()
	}

	opts := &cliOptions{}
	def := config.Defaults()
	var f config.Config

	fs.StringVar(&opts.configPath, "c", "", "Path to a Lua config file")
	fs.BoolVar(&opts.version, "v", false, "Print version and exit")
	fs.BoolVar(&opts.once, "once", false, "Run the script, write -o and exit")
	fs.BoolVar(&opts.logJSON, "log-json", false, "Log as JSON")
	fs.StringVar(&opts.profile.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	fs.StringVar(&opts.profile.MemProfile, "memprofile", "", "Write memory profile to file")

	fs.StringVar(&f.Script, "s", "", "Lua script to run")
	fs.IntVar(&f.Window.Width, "w", def.Window.Width, "Canvas width in pixels")
	fs.IntVar(&f.Window.Height, "h", def.Window.Height, "Canvas height in pixels")
	fs.IntVar(&f.Window.Scale, "scale", def.Window.Scale, "Pixels per logical unit")
	fs.StringVar(&f.Window.Title, "title", def.Window.Title, "Window title")
	fs.StringVar(&f.Window.Background, "bg", def.Window.Background, "Background colour")
	fs.BoolVar(&f.Window.Headless, "headless", false, "Render off-screen")
	fs.BoolVar(&f.Window.KeepAbove, "above", false, "Keep the window above others")
	fs.BoolVar(&f.Window.SkipTaskbar, "skip-taskbar", false, "Hide the window from the taskbar")
	fs.BoolVar(&f.Update.Continuous, "continuous", def.Update.Continuous, "Repaint after every change")
	fs.BoolVar(&f.Update.DuplicateEvents, "dup", false, "Deliver repeated mouse moves and key repeats")
	fs.DurationVar(&f.Update.Tick, "tick", def.Update.Tick, "canvas_tick interval, 0 disables it")
	fs.BoolVar(&f.Watch, "watch", false, "Rerun the script when it changes")
	fs.StringVar(&f.Output, "o", "", "Write the final frame to this PNG file")
	fs.StringVar(&f.LogLevel, "log-level", def.LogLevel, "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	setters := map[string]func(*config.Config){
		"s":            func(c *config.Config) { c.Script = f.Script },
		"w":            func(c *config.Config) { c.Window.Width = f.Window.Width },
		"h":            func(c *config.Config) { c.Window.Height = f.Window.Height },
		"scale":        func(c *config.Config) { c.Window.Scale = f.Window.Scale },
		"title":        func(c *config.Config) { c.Window.Title = f.Window.Title },
		"bg":           func(c *config.Config) { c.Window.Background = f.Window.Background },
		"headless":     func(c *config.Config) { c.Window.Headless = f.Window.Headless },
		"above":        func(c *config.Config) { c.Window.KeepAbove = f.Window.KeepAbove },
		"skip-taskbar": func(c *config.Config) { c.Window.SkipTaskbar = f.Window.SkipTaskbar },
		"continuous":   func(c *config.Config) { c.Update.Continuous = f.Update.Continuous },
		"dup":          func(c *config.Config) { c.Update.DuplicateEvents = f.Update.DuplicateEvents },
		"tick":         func(c *config.Config) { c.Update.Tick = f.Update.Tick },
		"watch":        func(c *config.Config) { c.Watch = f.Watch },
		"o":            func(c *config.Config) { c.Output = f.Output },
		"log-level":    func(c *config.Config) { c.LogLevel = f.LogLevel },
	}
	fs.Visit(func(fl *flag.Flag) {
		if set, ok := setters[fl.Name]; ok {
			opts.set = append(opts.set, set)
		}
	})

	switch fs.NArg() {
	case 0:
	case 1:
		script := fs.Arg(0)
		opts.set = append(opts.set, func(c *config.Config) { c.Script = script })
	default:
		return nil, fmt.Errorf("expected one script, got %d arguments", fs.NArg())
	}
	return opts, nil
}

// loadConfig builds the run configuration and validates it.
func loadConfig(opts *cliOptions, lookup func(string) (string, bool)) (config.Config, error) {
	cfg, err := config.Load(opts.configPath, lookup, opts.set...)
	if err != nil {
		return cfg, err
	}
	if opts.once && cfg.Output == "" {
		return cfg, errors.New("-once needs an output file (-o)")
	}
	return cfg, cfg.Validate()
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "canvas-go version %s\n", Version)
		return 0
	}

	if opts.profile.Enabled() {
		profiler, err := profiling.Start(opts.profile)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to start profiling: %v\n", err)
			return 1
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				fmt.Fprintf(stderr, "Warning: failed to stop profiling: %v\n", err)
			}
		}()
	}

	cfg, err := loadConfig(opts, os.LookupEnv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log, err := newLogger(stderr, cfg.LogLevel, opts.logJSON)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	for _, w := range config.NewValidator().Validate(&cfg).Warnings {
		log.Warn("config", "field", w.Field, "issue", w.Message)
	}

	a, err := newApp(cfg, appOptions{Logger: log, Stdout: stdout})
	if err != nil {
		log.Error("startup failed", "error", err)
		return 1
	}

	start := time.Now()
	if opts.once {
		err = a.runOnce()
	} else {
		err = a.run()
	}
	if cerr := a.close(); cerr != nil {
		log.Warn("shutdown", "error", cerr)
	}
	if err != nil {
		log.Error("canvas-go failed", "error", err)
		return 1
	}
	log.Debug("exited", "uptime", time.Since(start).Round(time.Millisecond))
	return 0
}
