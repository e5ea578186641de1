package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable ApplyEnv reads.
const EnvPrefix = "CANVAS_"

// envVarPattern matches environment variable references in configuration values.
// Supports formats:
//   - ${VAR_NAME} - standard shell-like format
//   - ${VAR_NAME:-default} - with default value if unset or empty
//   - $VAR_NAME - simple format (word characters only)
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string.
// It supports the following formats:
//   - ${VAR_NAME} - replaced with value of VAR_NAME
//   - ${VAR_NAME:-default} - replaced with VAR_NAME's value, or "default" if unset/empty
//   - $VAR_NAME - replaced with value of VAR_NAME (simple format)
//
// Unknown or unset variables without defaults are replaced with empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "${") && strings.HasSuffix(match, "}") {
			inner := match[2 : len(match)-1]

			if idx := strings.Index(inner, ":-"); idx >= 0 {
				if val := os.Getenv(inner[:idx]); val != "" {
					return val
				}
				return inner[idx+2:]
			}
			return os.Getenv(inner)
		}
		return os.Getenv(match[1:])
	})
}

// ExpandEnvConfig expands environment variables in the string settings
// that name files or are shown to the user: script, output, title and
// background.
func ExpandEnvConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	for _, s := range []*string{&cfg.Script, &cfg.Output, &cfg.Window.Title, &cfg.Window.Background} {
		*s = ExpandEnv(*s)
	}
}

// ApplyEnv overrides cfg with the CANVAS_* variables found by lookup,
// typically os.LookupEnv. Every malformed value is reported; valid ones
// are still applied.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}
	a := envApplier{lookup: lookup}

	a.str("SCRIPT", &cfg.Script)
	a.str("OUTPUT", &cfg.Output)
	a.str("TITLE", &cfg.Window.Title)
	a.str("BACKGROUND", &cfg.Window.Background)
	a.str("LOG_LEVEL", &cfg.LogLevel)

	a.integer("WIDTH", &cfg.Window.Width)
	a.integer("HEIGHT", &cfg.Window.Height)
	a.integer("SCALE", &cfg.Window.Scale)

	a.boolean("HEADLESS", &cfg.Window.Headless)
	a.boolean("KEEP_ABOVE", &cfg.Window.KeepAbove)
	a.boolean("SKIP_TASKBAR", &cfg.Window.SkipTaskbar)
	a.boolean("CONTINUOUS", &cfg.Update.Continuous)
	a.boolean("DUPLICATE_EVENTS", &cfg.Update.DuplicateEvents)
	a.boolean("WATCH", &cfg.Watch)

	a.duration("TICK", &cfg.Update.Tick)

	if len(a.errs) == 0 {
		return nil
	}
	return fmt.Errorf("environment: %s", strings.Join(a.errs, "; "))
}

// envApplier collects parse errors while applying variables.
type envApplier struct {
	lookup func(string) (string, bool)
	errs   []string
}

func (a *envApplier) get(name string) (string, bool) {
	v, ok := a.lookup(EnvPrefix + name)
	return strings.TrimSpace(v), ok
}

func (a *envApplier) fail(name, v string, err error) {
	a.errs = append(a.errs, fmt.Sprintf("%s%s=%q: %v", EnvPrefix, name, v, err))
}

func (a *envApplier) str(name string, dst *string) {
	if v, ok := a.get(name); ok {
		*dst = v
	}
}

func (a *envApplier) integer(name string, dst *int) {
	v, ok := a.get(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		a.fail(name, v, err)
		return
	}
	*dst = n
}

func (a *envApplier) boolean(name string, dst *bool) {
	v, ok := a.get(name)
	if !ok {
		return
	}
	b, err := parseBool(v)
	if err != nil {
		a.fail(name, v, err)
		return
	}
	*dst = b
}

// duration accepts Go durations ("50ms") or a plain number of milliseconds.
func (a *envApplier) duration(name string, dst *time.Duration) {
	v, ok := a.get(name)
	if !ok {
		return
	}
	if ms, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(ms) * time.Millisecond
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		a.fail(name, v, err)
		return
	}
	*dst = d
}

// parseBool accepts the usual spellings: 1/0, true/false, yes/no, on/off.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", s)
	}
}
