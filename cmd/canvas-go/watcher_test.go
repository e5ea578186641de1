package main

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestScriptWatcherDetectsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draw.lua")
	if err := os.WriteFile(path, []byte("-- v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	var changes atomic.Int32
	w, err := newScriptWatcher(path, 50*time.Millisecond, func() { changes.Add(1) }, nil)
	if err != nil {
		t.Fatalf("newScriptWatcher() error = %v", err)
	}
	w.Start()
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("-- v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if n := changes.Load(); n != 1 {
		t.Errorf("changes = %d, want 1", n)
	}
}

func TestScriptWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draw.lua")
	if err := os.WriteFile(path, []byte("-- v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	var changes atomic.Int32
	w, err := newScriptWatcher(path, 150*time.Millisecond, func() { changes.Add(1) }, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("-- burst"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(400 * time.Millisecond)

	if n := changes.Load(); n != 1 {
		t.Errorf("changes = %d, want 1 after a burst of writes", n)
	}
}

func TestScriptWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draw.lua")
	if err := os.WriteFile(path, []byte("-- v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	var changes atomic.Int32
	w, err := newScriptWatcher(path, 50*time.Millisecond, func() { changes.Add(1) }, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.lua"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if n := changes.Load(); n != 0 {
		t.Errorf("changes = %d, want 0", n)
	}
}

func TestScriptWatcherAtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draw.lua")
	if err := os.WriteFile(path, []byte("-- v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	var changes atomic.Int32
	w, err := newScriptWatcher(path, 50*time.Millisecond, func() { changes.Add(1) }, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	tmp := filepath.Join(dir, ".draw.lua.swp")
	if err := os.WriteFile(tmp, []byte("-- v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if n := changes.Load(); n < 1 {
		t.Error("rename into place was not seen")
	}
}

func TestScriptWatcherStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draw.lua")

	w, err := newScriptWatcher(path, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if w.debounce != defaultWatchDebounce {
		t.Errorf("debounce = %v, want default", w.debounce)
	}
	// Stop without Start, twice, and Start after Stop must not hang.
	w.Stop()
	w.Stop()
	w.Start()

	w2, err := newScriptWatcher(path, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	w2.Start()
	w2.Start()
	w2.Stop()
	w2.Stop()

	if _, err := newScriptWatcher(filepath.Join(dir, "missing", "x.lua"), 0, nil, nil); err == nil {
		t.Error("expected error for a missing directory")
	}
}
