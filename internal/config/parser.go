package config

import (
	"fmt"
	"io/fs"
	"os"
)

// LoadFile reads a Lua config file and overlays it on base.
func LoadFile(path string, base Config) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return parse(content, base)
}

// LoadFS is LoadFile for a file in fsys, such as an embedded filesystem.
func LoadFS(fsys fs.FS, path string, base Config) (Config, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return base, fmt.Errorf("failed to read config from FS %s: %w", path, err)
	}
	return parse(content, base)
}

func parse(content []byte, base Config) (Config, error) {
	p, err := NewLuaConfigParser()
	if err != nil {
		return base, fmt.Errorf("failed to create Lua parser: %w", err)
	}
	defer p.Close()
	return p.Parse(content, base)
}

// Load builds the configuration for a run: Defaults, then the config file
// at path if one is given, then CANVAS_* variables from lookup, then the
// overrides (command-line flags), and finally ${VAR} expansion of string
// values.
func Load(path string, lookup func(string) (string, bool), overrides ...func(*Config)) (Config, error) {
	cfg := Defaults()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path, cfg); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	for _, o := range overrides {
		o(&cfg)
	}
	ExpandEnvConfig(&cfg)
	return cfg, nil
}
