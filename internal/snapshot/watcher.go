package snapshot

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vthunder/deskmate/internal/logging"
)

// DefaultStaleAfter is how long without a capture write before the feed is
// reported stale.
const DefaultStaleAfter = 2 * time.Minute

// Watcher observes the capture directory and tracks how fresh the feed is.
// The rules themselves read snapshots directly; the watcher only feeds
// status reporting and logs stale/recovered transitions.
type Watcher struct {
	dir        string
	staleAfter time.Duration

	mu            sync.RWMutex
	lastLiveWrite time.Time
	lastAnalyzed  time.Time
	staleReported bool

	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	stopped  bool
}

// NewWatcher creates a watcher over the capture directory.
func NewWatcher(dir string, staleAfter time.Duration) *Watcher {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Watcher{
		dir:        dir,
		staleAfter: staleAfter,
		stopChan:   make(chan struct{}),
	}
}

// Start begins watching the capture directory.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.watcher = fw

	go w.loop()
	logging.Info("snapshot-watcher", "Watching %s (stale after %v)", w.dir, w.staleAfter)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.stopChan)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *Watcher) loop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.record(filepath.Base(event.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("snapshot-watcher", "watch error: %v", err)
		case <-ticker.C:
			w.checkStale()
		}
	}
}

func (w *Watcher) record(name string) {
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()

	switch name {
	case LiveFilename:
		w.lastLiveWrite = now
	case AnalyzedFilename:
		w.lastAnalyzed = now
	default:
		return
	}

	if w.staleReported {
		w.staleReported = false
		logging.Info("snapshot-watcher", "Capture feed recovered")
	}
}

func (w *Watcher) checkStale() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.lastLiveWrite.IsZero() {
		return // nothing observed yet, nothing to report
	}
	if time.Since(w.lastLiveWrite) >= w.staleAfter && !w.staleReported {
		w.staleReported = true
		logging.Warn("snapshot-watcher", "capture feed stale (no write for %v)",
			time.Since(w.lastLiveWrite).Round(time.Second))
	}
}

// Freshness returns the age of the last live capture write, and whether any
// write has been observed at all.
func (w *Watcher) Freshness() (time.Duration, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.lastLiveWrite.IsZero() {
		return 0, false
	}
	return time.Since(w.lastLiveWrite), true
}
