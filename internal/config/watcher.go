package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"clonekit/internal/logging"
	"clonekit/internal/timing"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a set of files. It watches each file's parent
// directory, so editors that save by rename are still seen. Bursts of events
// for one file are debounced into a single callback.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	files    map[string]*timing.Debouncer
	dirs     map[string]struct{}
	delay    time.Duration
	onChange func(path string)
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stopped  bool

	stats WatcherStats
}

// WatcherStats tracks watcher activity.
type WatcherStats struct {
	Events        int
	Notifications int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// NewWatcher creates a watcher that calls onChange with the absolute path
// of a changed file once events for it settle for delay.
func NewWatcher(delay time.Duration, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		watcher:  fw,
		files:    make(map[string]*timing.Debouncer),
		dirs:     make(map[string]struct{}),
		delay:    delay,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Add starts watching path.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if _, ok := w.dirs[dir]; !ok {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
		logging.Watch("Watching directory: %s", dir)
	}
	w.files[abs] = timing.Debounce(func() { w.notify(abs) }, w.delay)
	return nil
}

// Start begins delivering events. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if w.running {
		return nil // Already running
	}
	w.running = true
	go w.run(ctx)
	return nil
}

// Stop stops the watcher, drops pending notifications and waits for the
// event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	running := w.running
	for _, d := range w.files {
		d.Cancel()
	}
	w.mu.Unlock()

	close(w.stopCh)
	if running {
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Error("Watcher: error closing: %v", err)
	}
	logging.Watch("Watcher: stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("Watcher: context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Error("Watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return // Ignore chmod and removals
	}
	path := filepath.Clean(event.Name)

	w.mu.Lock()
	d, ok := w.files[path]
	if ok {
		w.stats.Events++
		w.stats.LastEventTime = time.Now()
		w.stats.LastEventPath = path
	}
	defer w.mu.Unlock()

	// Arm the debouncer under w.mu so Stop cannot cancel it in between.
	if !ok || w.stopped {
		return
	}
	logging.WatchDebug("Watcher: %s %s", event.Op, path)
	d.Call()
}

func (w *Watcher) notify(path string) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stats.Notifications++
	w.mu.Unlock()

	w.onChange(path)
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
