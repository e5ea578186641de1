package lua

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	rt "github.com/arnodel/golua/runtime"
)

func newRuntime(t *testing.T, config RuntimeConfig) *Runtime {
	t.Helper()
	runtime, err := New(config)
	if err != nil {
		t.Fatalf("failed to create runtime: %v", err)
	}
	t.Cleanup(func() { runtime.Close() })
	return runtime
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.CPULimit != 10_000_000 {
		t.Errorf("expected CPULimit 10000000, got %d", config.CPULimit)
	}
	if config.MemoryLimit != 50*1024*1024 {
		t.Errorf("expected MemoryLimit %d, got %d", 50*1024*1024, config.MemoryLimit)
	}
	if config.Stdout != os.Stdout {
		t.Error("expected Stdout to be os.Stdout")
	}
}

func TestNewWithCustomStdout(t *testing.T) {
	buf := &bytes.Buffer{}
	runtime := newRuntime(t, RuntimeConfig{
		CPULimit:    1_000_000,
		MemoryLimit: 10 * 1024 * 1024,
		Stdout:      buf,
	})

	if _, err := runtime.ExecuteString("print", `print("hello")`); err != nil {
		t.Fatalf("ExecuteString() error = %v", err)
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("stdout = %q, want hello", buf.String())
	}
	if !strings.Contains(runtime.Output(), "hello") {
		t.Errorf("Output() = %q, want hello", runtime.Output())
	}
	if runtime.Config().CPULimit != 1_000_000 {
		t.Errorf("Config().CPULimit = %d", runtime.Config().CPULimit)
	}
}

func TestLoadString(t *testing.T) {
	runtime := newRuntime(t, DefaultConfig())

	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"valid code", "return 42", false},
		{"valid function", "function test() return 1 end", false},
		{"syntax error", "invalid lua syntax {{}}", true},
		{"empty code", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closure, err := runtime.LoadString(tt.name, tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadString() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && closure == nil {
				t.Error("expected closure to be non-nil")
			}
		})
	}
}

func TestExecuteString(t *testing.T) {
	runtime := newRuntime(t, DefaultConfig())

	tests := []struct {
		name       string
		code       string
		wantResult interface{}
		wantErr    bool
	}{
		{"return integer", "return 42", int64(42), false},
		{"return string", `return "hello"`, "hello", false},
		{"return calculation", "return 10 + 20 * 2", int64(50), false},
		{"return nil", "return nil", nil, false},
		{"syntax error", "return {{invalid", nil, true},
		{"runtime error", `error("boom")`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := runtime.ExecuteString(tt.name, tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("ExecuteString() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			switch expected := tt.wantResult.(type) {
			case int64:
				got, ok := rt.ToInt(result)
				if !ok || got != expected {
					t.Errorf("expected %d, got %v", expected, result)
				}
			case string:
				if result.AsString() != expected {
					t.Errorf("expected %q, got %q", expected, result.AsString())
				}
			case nil:
				if result != rt.NilValue {
					t.Errorf("expected nil, got %v", result)
				}
			}
		})
	}
}

func TestExecuteFile(t *testing.T) {
	runtime := newRuntime(t, DefaultConfig())

	luaFile := filepath.Join(t.TempDir(), "test.lua")
	if err := os.WriteFile(luaFile, []byte("return 456"), 0o644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	result, err := runtime.ExecuteFile(luaFile)
	if err != nil {
		t.Fatalf("ExecuteFile() error = %v", err)
	}
	if got, ok := rt.ToInt(result); !ok || got != 456 {
		t.Errorf("expected 456, got %v", result)
	}

	if _, err := runtime.ExecuteFile("/nonexistent/file.lua"); err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoadFileFromFS(t *testing.T) {
	runtime := newRuntime(t, DefaultConfig())
	testFS := fstest.MapFS{
		"scripts/hello.lua": &fstest.MapFile{Data: []byte(`return "embedded"`)},
	}

	closure, err := runtime.LoadFileFromFS(testFS, "scripts/hello.lua")
	if err != nil {
		t.Fatalf("LoadFileFromFS() error = %v", err)
	}
	result, err := runtime.Execute(closure)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.AsString() != "embedded" {
		t.Errorf("expected %q, got %q", "embedded", result.AsString())
	}

	if _, err := runtime.LoadFileFromFS(testFS, "scripts/missing.lua"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSetAndGetGlobal(t *testing.T) {
	runtime := newRuntime(t, DefaultConfig())

	runtime.SetGlobal("myVar", rt.IntValue(999))
	if got, ok := rt.ToInt(runtime.GetGlobal("myVar")); !ok || got != 999 {
		t.Errorf("expected 999, got %v", runtime.GetGlobal("myVar"))
	}
	if v := runtime.GetGlobal("nonexistent"); v != rt.NilValue {
		t.Errorf("expected nil for non-existent global, got %v", v)
	}
}

func TestSetGoFunction(t *testing.T) {
	runtime := newRuntime(t, DefaultConfig())

	addFunc := func(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
		a, _ := c.IntArg(0)
		b, _ := c.IntArg(1)
		return c.PushingNext1(t.Runtime, rt.IntValue(a+b)), nil
	}
	runtime.SetGoFunction("add", addFunc, 2, false)

	result, err := runtime.ExecuteString("test", "return add(10, 20)")
	if err != nil {
		t.Fatalf("failed to execute Lua code: %v", err)
	}
	if got, ok := rt.ToInt(result); !ok || got != 30 {
		t.Errorf("expected 30, got %v", result)
	}
}

func TestCallFunction(t *testing.T) {
	runtime := newRuntime(t, DefaultConfig())

	if _, err := runtime.ExecuteString("setup", `
		function multiply(a, b)
			return a * b
		end
	`); err != nil {
		t.Fatalf("failed to define function: %v", err)
	}

	result, err := runtime.CallFunction("multiply", rt.IntValue(5), rt.IntValue(7))
	if err != nil {
		t.Fatalf("CallFunction() error = %v", err)
	}
	if got, ok := rt.ToInt(result); !ok || got != 35 {
		t.Errorf("expected 35, got %v", result)
	}

	if _, err := runtime.CallFunction("nonexistent"); err == nil {
		t.Error("expected error for non-existent function")
	}
}

func TestOutput(t *testing.T) {
	runtime := newRuntime(t, RuntimeConfig{})

	if _, err := runtime.ExecuteString("print", `print("one") print("two")`); err != nil {
		t.Fatalf("ExecuteString() error = %v", err)
	}
	if out := runtime.Output(); !strings.Contains(out, "one") || !strings.Contains(out, "two") {
		t.Errorf("Output() = %q", out)
	}
	runtime.ClearOutput()
	if out := runtime.Output(); out != "" {
		t.Errorf("Output() after ClearOutput = %q", out)
	}
}

func TestClose(t *testing.T) {
	runtime, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create runtime: %v", err)
	}
	if err := runtime.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := runtime.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestResourceLimitsAbortScript(t *testing.T) {
	runtime := newRuntime(t, RuntimeConfig{
		CPULimit:    100,
		MemoryLimit: 1 * 1024 * 1024,
	})

	code := `
		local sum = 0
		for i = 1, 100000 do
			sum = sum + i
		end
		return sum
	`
	_, err := runtime.ExecuteString("heavy", code)
	if err == nil {
		t.Fatal("expected the CPU limit to abort the script")
	}
	if !errors.Is(err, ErrScriptAborted) {
		t.Logf("limit reported as a Lua error: %v", err)
	}
}
