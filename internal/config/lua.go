package config

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// ConfigGlobal is the Lua global a config file assigns, e.g.
//
//	canvas_config = { width = 640, height = 480, scale = 2 }
const ConfigGlobal = "canvas_config"

// LuaConfigParser reads config files written in Lua. A config file is an
// ordinary chunk, so it may compute values or read os.getenv.
type LuaConfigParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaConfigParser creates a parser whose print output is discarded.
func NewLuaConfigParser() (*LuaConfigParser, error) {
	return NewLuaConfigParserWithOutput(io.Discard)
}

// NewLuaConfigParserWithOutput creates a parser printing to stdout.
func NewLuaConfigParserWithOutput(stdout io.Writer) (*LuaConfigParser, error) {
	if stdout == nil {
		stdout = io.Discard
	}
	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &LuaConfigParser{
		runtime: runtime,
		cleanup: cleanup,
	}, nil
}

// Parse executes content and overlays the canvas_config table on base.
// Keys the file does not set keep their base value.
func (p *LuaConfigParser) Parse(content []byte, base Config) (cfg Config, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.runtime.GlobalEnv().Set(rt.StringValue(ConfigGlobal), rt.NilValue)

	closure, err := p.runtime.CompileAndLoadLuaChunk(
		"config",
		content,
		rt.TableValue(p.runtime.GlobalEnv()),
	)
	if err != nil {
		return base, fmt.Errorf("failed to compile Lua configuration: %w", err)
	}

	// golua panics when a hard limit is exceeded.
	defer func() {
		if r := recover(); r != nil {
			cfg, err = base, fmt.Errorf("Lua configuration aborted: %v", r)
		}
	}()
	p.runtime.PushContext(rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    DefaultCPULimit,
			Memory: DefaultMemoryLimit,
		},
	})
	defer p.runtime.PopContext()

	if _, err := rt.Call1(p.runtime.MainThread(), rt.FunctionValue(closure)); err != nil {
		return base, fmt.Errorf("failed to execute Lua configuration: %w", err)
	}
	return p.extractConfig(base)
}

func (p *LuaConfigParser) extractConfig(cfg Config) (Config, error) {
	val := p.runtime.GlobalEnv().Get(rt.StringValue(ConfigGlobal))
	if val == rt.NilValue {
		return cfg, nil
	}
	table, ok := val.TryTable()
	if !ok {
		return cfg, fmt.Errorf("%s is not a table", ConfigGlobal)
	}

	strs := []struct {
		key    string
		target *string
	}{
		{"script", &cfg.Script},
		{"output", &cfg.Output},
		{"title", &cfg.Window.Title},
		{"background", &cfg.Window.Background},
		{"log_level", &cfg.LogLevel},
	}
	for _, f := range strs {
		if v := getTableString(table, f.key); v != nil {
			*f.target = *v
		}
	}

	ints := []struct {
		key    string
		target *int
	}{
		{"width", &cfg.Window.Width},
		{"height", &cfg.Window.Height},
		{"scale", &cfg.Window.Scale},
	}
	for _, f := range ints {
		if v := getTableInt(table, f.key); v != nil {
			*f.target = *v
		}
	}

	bools := []struct {
		key    string
		target *bool
	}{
		{"headless", &cfg.Window.Headless},
		{"keep_above", &cfg.Window.KeepAbove},
		{"skip_taskbar", &cfg.Window.SkipTaskbar},
		{"continuous", &cfg.Update.Continuous},
		{"duplicate_events", &cfg.Update.DuplicateEvents},
		{"watch", &cfg.Watch},
	}
	for _, f := range bools {
		if v := getTableBool(table, f.key); v != nil {
			*f.target = *v
		}
	}

	// tick is in milliseconds.
	if v := getTableFloat(table, "tick"); v != nil {
		cfg.Update.Tick = time.Duration(*v * float64(time.Millisecond))
	}
	if v := getTableInt(table, "cpu_limit"); v != nil {
		if *v < 0 {
			return cfg, fmt.Errorf("cpu_limit must be non-negative, got %d", *v)
		}
		cfg.Lua.CPULimit = uint64(*v)
	}
	if v := getTableInt(table, "memory_limit"); v != nil {
		if *v < 0 {
			return cfg, fmt.Errorf("memory_limit must be non-negative, got %d", *v)
		}
		cfg.Lua.MemoryLimit = uint64(*v)
	}
	return cfg, nil
}

// Close releases resources associated with the parser's Lua runtime.
func (p *LuaConfigParser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

// getTableBool retrieves a boolean value from a Lua table.
// Returns nil if the key doesn't exist or is not a boolean.
func getTableBool(table *rt.Table, key string) *bool {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if b, ok := val.TryBool(); ok {
		return &b
	}
	if s, ok := val.TryString(); ok {
		if b, err := parseBool(s); err == nil {
			return &b
		}
	}
	return nil
}

// getTableString retrieves a string value from a Lua table.
// Returns nil if the key doesn't exist or is not a string.
func getTableString(table *rt.Table, key string) *string {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if s, ok := val.TryString(); ok {
		return &s
	}
	return nil
}

// getTableFloat retrieves a float64 value from a Lua table.
// Returns nil if the key doesn't exist or is not a number.
func getTableFloat(table *rt.Table, key string) *float64 {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if n, ok := val.TryFloat(); ok {
		return &n
	}
	if n, ok := val.TryInt(); ok {
		f := float64(n)
		return &f
	}
	return nil
}

// getTableInt retrieves an int value from a Lua table.
// Returns nil if the key doesn't exist or is not a number.
func getTableInt(table *rt.Table, key string) *int {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if n, ok := val.TryInt(); ok {
		i := int(n)
		return &i
	}
	if f, ok := val.TryFloat(); ok {
		i := int(f)
		return &i
	}
	return nil
}
