package main

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultWatchDebounce collapses the burst of events an editor save makes.
const defaultWatchDebounce = 300 * time.Millisecond

// scriptWatcher calls onChange when the script file is written, created or
// renamed into place.
type scriptWatcher struct {
	watcher   *fsnotify.Watcher
	path      string
	debounce  time.Duration
	onChange  func()
	onError   func(error)
	stopCh    chan struct{}
	stoppedCh chan struct{}
	mu        sync.Mutex
	running   bool
	stopped   bool
}

// newScriptWatcher watches path. A non-positive debounce selects
// defaultWatchDebounce.
func newScriptWatcher(path string, debounce time.Duration, onChange func(), onError func(error)) (*scriptWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}

	// The directory is watched so editors that save by renaming a
	// temporary file are still seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &scriptWatcher{
		watcher:   watcher,
		path:      path,
		debounce:  debounce,
		onChange:  onChange,
		onError:   onError,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}, nil
}

// Start begins watching in a goroutine.
func (sw *scriptWatcher) Start() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.running || sw.stopped {
		return
	}
	sw.running = true
	go sw.watchLoop()
}

// Stop ends watching and waits for the goroutine to exit. A watcher that
// was never started just releases its resources.
func (sw *scriptWatcher) Stop() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	running := sw.running
	sw.mu.Unlock()

	if !running {
		sw.watcher.Close()
		return
	}
	close(sw.stopCh)
	<-sw.stoppedCh
}

func (sw *scriptWatcher) matches(name string) bool {
	if filepath.Clean(name) == filepath.Clean(sw.path) {
		return true
	}
	a, err1 := filepath.Abs(name)
	b, err2 := filepath.Abs(sw.path)
	return err1 == nil && err2 == nil && a == b
}

func (sw *scriptWatcher) watchLoop() {
	defer close(sw.stoppedCh)
	defer sw.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-sw.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.matches(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(sw.debounce)
			fire = timer.C

		case <-fire:
			timer, fire = nil, nil
			if sw.onChange != nil {
				sw.onChange()
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			if sw.onError != nil {
				sw.onError(err)
			}
		}
	}
}
