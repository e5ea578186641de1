// Package profiling writes pprof CPU and heap profiles for a canvas-go run.
package profiling

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
)

// ErrStopped is returned by Stop on a profiler that has already stopped.
var ErrStopped = errors.New("profiler already stopped")

// Options selects the profiles to write. Empty paths disable a profile.
type Options struct {
	// CPUProfile receives the CPU profile, written on Stop.
	CPUProfile string
	// MemProfile receives a heap profile taken on Stop.
	MemProfile string
}

// Enabled reports whether any profile is requested.
func (o Options) Enabled() bool {
	return o.CPUProfile != "" || o.MemProfile != ""
}

// Profiler covers the span between Start and Stop.
type Profiler struct {
	opts    Options
	cpuFile *os.File
	stopped bool
	mu      sync.Mutex
}

// Start begins CPU profiling when requested. Only one CPU profile can run
// per process.
func Start(opts Options) (*Profiler, error) {
	p := &Profiler{opts: opts}
	if opts.CPUProfile == "" {
		return p, nil
	}

	f, err := os.Create(opts.CPUProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to create CPU profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to start CPU profile: %w", err)
	}
	p.cpuFile = f
	return p, nil
}

// Stop ends CPU profiling and writes the heap profile.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrStopped
	}
	p.stopped = true

	var errs []error
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := p.cpuFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close CPU profile file: %w", err))
		}
		p.cpuFile = nil
	}
	if p.opts.MemProfile != "" {
		if err := WriteHeapProfile(p.opts.MemProfile); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteHeapProfile forces a collection and writes a heap profile to path.
func WriteHeapProfile(path string) error {
	runtime.GC()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create memory profile file: %w", err)
	}
	defer f.Close()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	return nil
}
