package lua

import (
	"fmt"
	"sync"

	rt "github.com/arnodel/golua/runtime"
)

// HookType identifies a script lifecycle hook.
type HookType int

const (
	// HookInvalid is returned by ParseHookType when parsing fails.
	HookInvalid HookType = iota

	// HookStart runs once after the script body has executed.
	HookStart

	// HookTick runs on every Session tick with the elapsed seconds since
	// the previous tick.
	HookTick

	// HookStop runs when the session is reset for a reload or closed.
	HookStop
)

var hookTypes = []HookType{HookStart, HookTick, HookStop}

// String returns the string representation of a HookType.
func (h HookType) String() string {
	switch h {
	case HookStart:
		return "start"
	case HookTick:
		return "tick"
	case HookStop:
		return "stop"
	case HookInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// LuaFunctionName returns the global a script defines for the hook,
// e.g. canvas_tick.
func (h HookType) LuaFunctionName() string {
	return "canvas_" + h.String()
}

// ParseHookType parses a string into a HookType.
func ParseHookType(s string) (HookType, error) {
	for _, h := range hookTypes {
		if h.String() == s {
			return h, nil
		}
	}
	return HookInvalid, fmt.Errorf("unknown hook type: %s", s)
}

// HookManager tracks which lifecycle hooks a script defines.
type HookManager struct {
	runtime *Runtime
	hooks   map[HookType]rt.Value
	mu      sync.RWMutex
}

// NewHookManager creates a HookManager for runtime.
func NewHookManager(runtime *Runtime) (*HookManager, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	return &HookManager{
		runtime: runtime,
		hooks:   make(map[HookType]rt.Value),
	}, nil
}

// RegisterHook binds hookType to the global Lua function funcName.
func (hm *HookManager) RegisterHook(hookType HookType, funcName string) error {
	fn := hm.runtime.GetGlobal(funcName)
	if fn == rt.NilValue {
		return fmt.Errorf("Lua function %s not found", funcName)
	}
	if fn.Type() != rt.FunctionType {
		return fmt.Errorf("%s is not a function (type: %v)", funcName, fn.Type())
	}

	hm.mu.Lock()
	hm.hooks[hookType] = fn
	hm.mu.Unlock()
	return nil
}

// IsRegistered reports whether a hook is registered for hookType.
func (hm *HookManager) IsRegistered(hookType HookType) bool {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	_, ok := hm.hooks[hookType]
	return ok
}

// Call invokes the hook registered for hookType. It returns nil if none is.
func (hm *HookManager) Call(hookType HookType, args ...rt.Value) (rt.Value, error) {
	hm.mu.RLock()
	fn, ok := hm.hooks[hookType]
	hm.mu.RUnlock()

	if !ok {
		return rt.NilValue, nil
	}
	result, err := hm.runtime.Call(fn, args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("hook %s: %w", hookType, err)
	}
	return result, nil
}

// AutoRegisterHooks registers every canvas_<hook> function the script
// defines and returns their types.
func (hm *HookManager) AutoRegisterHooks() []HookType {
	found := make([]HookType, 0, len(hookTypes))
	for _, h := range hookTypes {
		if hm.RegisterHook(h, h.LuaFunctionName()) == nil {
			found = append(found, h)
		}
	}
	return found
}

// Clear removes all hook registrations.
func (hm *HookManager) Clear() {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	hm.hooks = make(map[HookType]rt.Value)
}
