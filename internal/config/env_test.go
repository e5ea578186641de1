package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestExpandEnv(t *testing.T) {
	// Set up test environment variables
	os.Setenv("CANVAS_TEST_VAR", "test_value")
	os.Setenv("CANVAS_TEST_FONT", "Sans Bold")
	os.Setenv("CANVAS_TEST_PATH", "/home/user/.config")
	defer func() {
		os.Unsetenv("CANVAS_TEST_VAR")
		os.Unsetenv("CANVAS_TEST_FONT")
		os.Unsetenv("CANVAS_TEST_PATH")
	}()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no variables",
			input:    "plain text without variables",
			expected: "plain text without variables",
		},
		{
			name:     "simple ${VAR} format",
			input:    "prefix ${CANVAS_TEST_VAR} suffix",
			expected: "prefix test_value suffix",
		},
		{
			name:     "simple $VAR format",
			input:    "prefix $CANVAS_TEST_VAR suffix",
			expected: "prefix test_value suffix",
		},
		{
			name:     "unset variable becomes empty",
			input:    "prefix ${UNSET_VAR_12345} suffix",
			expected: "prefix  suffix",
		},
		{
			name:     "unset variable with default",
			input:    "prefix ${UNSET_VAR_12345:-default_value} suffix",
			expected: "prefix default_value suffix",
		},
		{
			name:     "set variable ignores default",
			input:    "font: ${CANVAS_TEST_FONT:-fallback}",
			expected: "font: Sans Bold",
		},
		{
			name:     "empty default",
			input:    "${UNSET_VAR_12345:-}",
			expected: "",
		},
		{
			name:     "multiple variables",
			input:    "${CANVAS_TEST_PATH}/config and ${CANVAS_TEST_FONT}",
			expected: "/home/user/.config/config and Sans Bold",
		},
		{
			name:     "mixed formats",
			input:    "$CANVAS_TEST_VAR and ${CANVAS_TEST_FONT}",
			expected: "test_value and Sans Bold",
		},
		{
			name:     "adjacent variables",
			input:    "${CANVAS_TEST_PATH}/${CANVAS_TEST_VAR}",
			expected: "/home/user/.config/test_value",
		},
		{
			name:     "variable at start",
			input:    "${CANVAS_TEST_VAR} at start",
			expected: "test_value at start",
		},
		{
			name:     "variable at end",
			input:    "at end ${CANVAS_TEST_VAR}",
			expected: "at end test_value",
		},
		{
			name:     "preserve non-matching patterns",
			input:    "literal ${width} and ${height}",
			expected: "literal  and ", // width and height are not env vars
		},
		{
			name:     "default with special chars",
			input:    "${UNSET:-/path/to/file.txt}",
			expected: "/path/to/file.txt",
		},
		{
			name:     "default with colon",
			input:    "${UNSET:-value:with:colons}",
			expected: "value:with:colons",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExpandEnv(tt.input)
			if result != tt.expected {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}


func TestExpandEnvEmptyString(t *testing.T) {
	result := ExpandEnv("")
	if result != "" {
		t.Errorf("ExpandEnv(%q) = %q, want empty string", "", result)
	}
}

func TestExpandEnvVariableNameValidation(t *testing.T) {
	os.Setenv("VALID_VAR", "valid")
	defer os.Unsetenv("VALID_VAR")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "valid variable name",
			input:    "$VALID_VAR",
			expected: "valid",
		},
		{
			name:     "variable with underscore",
			input:    "$VALID_VAR",
			expected: "valid",
		},
		{
			name:     "variable with numbers",
			input:    "${VALID_VAR}",
			expected: "valid",
		},
		{
			name:     "variable cannot start with number",
			input:    "$123VAR",
			expected: "$123VAR", // not matched as variable
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExpandEnv(tt.input)
			if result != tt.expected {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestExpandEnvConfig(t *testing.T) {
	os.Setenv("CANVAS_TEST_DIR", "/tmp/canvas")
	defer os.Unsetenv("CANVAS_TEST_DIR")

	cfg := Defaults()
	cfg.Script = "${CANVAS_TEST_DIR}/draw.lua"
	cfg.Output = "$CANVAS_TEST_DIR/out.png"
	cfg.Window.Title = "${UNSET_VAR_12345:-Demo}"
	cfg.Window.Background = "${UNSET_VAR_12345:-#202020}"
	cfg.LogLevel = "$CANVAS_TEST_DIR"

	ExpandEnvConfig(&cfg)

	if cfg.Script != "/tmp/canvas/draw.lua" {
		t.Errorf("Script = %q", cfg.Script)
	}
	if cfg.Output != "/tmp/canvas/out.png" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.Window.Title != "Demo" {
		t.Errorf("Title = %q", cfg.Window.Title)
	}
	if cfg.Window.Background != "#202020" {
		t.Errorf("Background = %q", cfg.Window.Background)
	}
	if cfg.LogLevel != "$CANVAS_TEST_DIR" {
		t.Errorf("LogLevel should not be expanded, got %q", cfg.LogLevel)
	}
}

func TestExpandEnvConfigNil(t *testing.T) {
	// Should not panic on nil config
	ExpandEnvConfig(nil)
}

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Defaults()
	err := ApplyEnv(&cfg, mapLookup(map[string]string{
		"CANVAS_SCRIPT":           "draw.lua",
		"CANVAS_OUTPUT":           "out.png",
		"CANVAS_TITLE":            "Env Title",
		"CANVAS_BACKGROUND":       "black",
		"CANVAS_LOG_LEVEL":        "debug",
		"CANVAS_WIDTH":            " 640 ",
		"CANVAS_HEIGHT":           "480",
		"CANVAS_SCALE":            "4",
		"CANVAS_HEADLESS":         "yes",
		"CANVAS_KEEP_ABOVE":       "on",
		"CANVAS_SKIP_TASKBAR":     "1",
		"CANVAS_CONTINUOUS":       "false",
		"CANVAS_DUPLICATE_EVENTS": "true",
		"CANVAS_WATCH":            "TRUE",
		"CANVAS_TICK":             "16",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	want := Config{
		Script: "draw.lua",
		Output: "out.png",
		Window: WindowConfig{
			Width: 640, Height: 480, Scale: 4,
			Title: "Env Title", Background: "black",
			Headless: true, KeepAbove: true, SkipTaskbar: true,
		},
		Update:   UpdateConfig{Continuous: false, DuplicateEvents: true, Tick: 16 * time.Millisecond},
		Watch:    true,
		LogLevel: "debug",
		Lua:      Defaults().Lua,
	}
	if cfg != want {
		t.Errorf("ApplyEnv() = %+v, want %+v", cfg, want)
	}
}

func TestApplyEnvTickDuration(t *testing.T) {
	cfg := Defaults()
	if err := ApplyEnv(&cfg, mapLookup(map[string]string{"CANVAS_TICK": "1.5s"})); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Update.Tick != 1500*time.Millisecond {
		t.Errorf("Tick = %v, want 1.5s", cfg.Update.Tick)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	cfg := Defaults()
	err := ApplyEnv(&cfg, mapLookup(map[string]string{
		"CANVAS_WIDTH":    "wide",
		"CANVAS_HEADLESS": "maybe",
		"CANVAS_TICK":     "soon",
		"CANVAS_HEIGHT":   "200",
	}))
	if err == nil {
		t.Fatal("expected error for malformed values")
	}
	for _, name := range []string{"CANVAS_WIDTH", "CANVAS_HEADLESS", "CANVAS_TICK"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
	if cfg.Window.Width != DefaultWidth {
		t.Errorf("malformed width applied: %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 200 {
		t.Errorf("valid height not applied: %d", cfg.Window.Height)
	}
}

func TestApplyEnvUnset(t *testing.T) {
	cfg := Defaults()
	if err := ApplyEnv(&cfg, mapLookup(nil)); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg != Defaults() {
		t.Errorf("ApplyEnv with no variables changed config: %+v", cfg)
	}
	if err := ApplyEnv(nil, mapLookup(nil)); err != nil {
		t.Errorf("ApplyEnv(nil) error = %v", err)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"1", true, false},
		{"true", true, false},
		{" Yes ", true, false},
		{"on", true, false},
		{"0", false, false},
		{"False", false, false},
		{"no", false, false},
		{"off", false, false},
		{"", false, true},
		{"2", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBool(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseBool(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseBool(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
