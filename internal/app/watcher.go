package app

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	defaultDebounce     = 200 * time.Millisecond
	defaultPollInterval = 10 * time.Second
)

// Watcher watches the notify signal file and calls onChange when another
// storefront process on this machine has written session or cart storage.
// The caller typically re-runs SessionManager.Restore and CartStore.Restore.
type Watcher struct {
	signalPath   string
	onChange     func()
	logger       *log.Logger
	debounce     time.Duration
	pollInterval time.Duration

	mu            sync.Mutex
	lastRev       string
	debounceTimer *time.Timer
	stopped       bool
	watcher       *fsnotify.Watcher
	stopCh        chan struct{}
	doneCh        chan struct{}
	fireMu        sync.Mutex // serializes checkAndFire so one revision fires once
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithPollInterval sets the fallback poll interval (default 10s).
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithDebounce sets how long a burst of file events is coalesced (default 200ms).
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a watcher. The revision present at construction time is
// treated as already seen.
func NewWatcher(signalPath string, onChange func(), logger *log.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		signalPath:   signalPath,
		onChange:     onChange,
		logger:       logger,
		debounce:     defaultDebounce,
		pollInterval: defaultPollInterval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	w.lastRev = w.readRevision()
	return w
}

// Start runs the file watcher and the fallback poll. Returns when ctx is
// cancelled or Stop is called. If fsnotify cannot watch the directory the
// watcher polls only.
func (w *Watcher) Start(ctx context.Context) {
	defer close(w.doneCh)
	defer w.halt()

	watchDir := filepath.Dir(w.signalPath)
	if err := os.MkdirAll(watchDir, 0755); err != nil {
		logf(w.logger, "Watcher: create %s failed (%v)", watchDir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		logf(w.logger, "Watcher: fsnotify init failed (%v), using poll-only", err)
	} else if err := fw.Add(watchDir); err != nil {
		logf(w.logger, "Watcher: fsnotify add %s failed (%v), using poll-only", watchDir, err)
		_ = fw.Close()
	} else {
		w.watcher = fw
		defer fw.Close()
		go w.watchLoop(ctx, filepath.Base(w.signalPath))
	}

	w.pollLoop(ctx)
}

// Stop signals the watcher to stop and waits for Start to return. A pending
// debounced check is cancelled, so onChange is not called after Stop returns.
// Call only after Start.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

// CheckOnce runs one check cycle.
func (w *Watcher) CheckOnce() {
	w.checkAndFire()
}

func (w *Watcher) watchLoop(ctx context.Context, signalName string) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != signalName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.triggerDebounced()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logf(w.logger, "Watcher: fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) triggerDebounced() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() { w.fire(true) })
}

// halt cancels the debounce timer and waits out a check already running.
func (w *Watcher) halt() {
	w.mu.Lock()
	w.stopped = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.mu.Unlock()
	w.fireMu.Lock()
	w.fireMu.Unlock()
}

func (w *Watcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.checkAndFire()
		}
	}
}

func (w *Watcher) checkAndFire() {
	w.fire(false)
}

// fire calls onChange if the signal revision moved. Debounced checks pass
// onlyRunning and are dropped once the watcher has stopped.
func (w *Watcher) fire(onlyRunning bool) {
	w.fireMu.Lock()
	defer w.fireMu.Unlock()

	rev := w.readRevision()
	if rev == "" {
		return
	}
	w.mu.Lock()
	if onlyRunning && w.stopped {
		w.mu.Unlock()
		return
	}
	if rev == w.lastRev {
		w.mu.Unlock()
		return
	}
	w.lastRev = rev
	w.mu.Unlock()

	w.onChange()
}

func (w *Watcher) readRevision() string {
	data, err := os.ReadFile(w.signalPath)
	if err != nil {
		return ""
	}
	return string(data)
}
