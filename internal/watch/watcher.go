// Package watch evaluates batch files as they appear or change in a directory.
package watch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/skim-satellite/adder/internal/batch"
)

// ErrStopped is returned by Start on a watcher that was already stopped.
// A Watcher cannot be restarted; create a new one instead.
var ErrStopped = errors.New("watcher stopped")

// EventType represents the type of batch file event.
type EventType int

const (
	// Created indicates a batch file was seen for the first time.
	Created EventType = iota
	// Updated indicates a known batch file was modified.
	Updated
	// Removed indicates a batch file was deleted or renamed away.
	Removed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Event reports a batch file that was evaluated or removed.
type Event struct {
	Type       EventType
	Name       string // path of the batch file
	ResultPath string // path of the written .sum file, empty for Removed
	Results    []batch.LineResult
	Err        error // evaluation failure; Results may be partial
}

// Options configures a Watcher.
type Options struct {
	// Suffix selects batch files (default ".add").
	Suffix string
	// Debounce is the quiet period before a file is evaluated (default 100ms).
	Debounce time.Duration
	// Log receives non-fatal watcher errors (default os.Stderr).
	Log io.Writer
}

// Watcher monitors a directory for batch files.
type Watcher struct {
	dir     string
	suffix  string
	log     io.Writer
	watcher *fsnotify.Watcher
	events  chan Event

	// Debouncing. timersMu also guards stopping, fileLocks and the
	// inflight.Add calls so Stop can wait for callbacks already running.
	debounceDelay  time.Duration
	debounceTimers map[string]*time.Timer
	fileLocks      map[string]*sync.Mutex
	stopping       bool
	inflight       sync.WaitGroup
	timersMu       sync.Mutex

	// Track known files for detecting created vs updated
	knownFiles   map[string]struct{}
	knownFilesMu sync.RWMutex

	// Guards sends against Stop closing the channel.
	emitMu sync.RWMutex
	closed bool

	// Lifecycle
	stopCh    chan struct{}
	stoppedCh chan struct{}
	running   bool
	stopped   bool
	runningMu sync.Mutex
}

// New creates a new watcher for the given directory.
func New(dir string, opts Options) *Watcher {
	if opts.Suffix == "" {
		opts.Suffix = ".add"
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 100 * time.Millisecond
	}
	if opts.Log == nil {
		opts.Log = os.Stderr
	}
	return &Watcher{
		dir:            dir,
		suffix:         opts.Suffix,
		log:            opts.Log,
		events:         make(chan Event, 100),
		debounceDelay:  opts.Debounce,
		debounceTimers: make(map[string]*time.Timer),
		fileLocks:      make(map[string]*sync.Mutex),
		knownFiles:     make(map[string]struct{}),
		stopCh:         make(chan struct{}),
		stoppedCh:      make(chan struct{}),
	}
}

// Start begins watching the directory, creating it if needed. Batch files
// already present are evaluated once. Calling Start on a running watcher is
// a no-op; calling it after Stop returns ErrStopped.
func (w *Watcher) Start() error {
	w.runningMu.Lock()
	defer w.runningMu.Unlock()

	if w.running {
		return nil
	}
	if w.stopped {
		return ErrStopped
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create watch dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.watcher = watcher

	if err := w.watcher.Add(w.dir); err != nil {
		w.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.running = true
	go w.watchLoop()

	w.scanExistingFiles()

	return nil
}

// Stop terminates the watcher and closes the events channel. It returns
// after any evaluation already in progress has finished, so no result file
// is written once Stop returns.
func (w *Watcher) Stop() {
	w.runningMu.Lock()
	if !w.running {
		w.runningMu.Unlock()
		return
	}
	w.running = false
	w.stopped = true
	w.runningMu.Unlock()

	close(w.stopCh)
	<-w.stoppedCh

	if w.watcher != nil {
		w.watcher.Close()
	}

	w.timersMu.Lock()
	w.stopping = true
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.timersMu.Unlock()

	w.inflight.Wait()

	w.emitMu.Lock()
	w.closed = true
	close(w.events)
	w.emitMu.Unlock()
}

// Events returns the channel for receiving batch file events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) isBatchFile(name string) bool {
	return strings.HasSuffix(name, w.suffix)
}

// scanExistingFiles evaluates batch files present before the watch started.
func (w *Watcher) scanExistingFiles() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !w.isBatchFile(entry.Name()) {
			continue
		}
		w.debounce(filepath.Join(w.dir, entry.Name()), fsnotify.Create)
	}
}

func (w *Watcher) watchLoop() {
	defer close(w.stoppedCh)

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.isBatchFile(filepath.Base(event.Name)) {
				w.debounce(event.Name, event.Op)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(w.log, "watch: %v\n", err)
		}
	}
}

// debounce coalesces rapid changes to one file. Remove/Rename wins over
// earlier writes in the same window.
func (w *Watcher) debounce(path string, op fsnotify.Op) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if w.stopping {
		return
	}
	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(w.debounceDelay, func() {
		w.timersMu.Lock()
		if w.stopping {
			w.timersMu.Unlock()
			return
		}
		if w.debounceTimers[path] == timer {
			delete(w.debounceTimers, path)
		}
		lock, ok := w.fileLocks[path]
		if !ok {
			lock = &sync.Mutex{}
			w.fileLocks[path] = lock
		}
		w.inflight.Add(1)
		w.timersMu.Unlock()
		defer w.inflight.Done()

		// A write landing mid-evaluation schedules another run; it waits
		// here rather than racing this one.
		lock.Lock()
		defer lock.Unlock()
		w.process(path, op)
	})
	w.debounceTimers[path] = timer
}

func (w *Watcher) process(path string, op fsnotify.Op) {
	// A rename can leave the file in place under the same name (editors
	// that save via rename), so check the disk rather than trusting op.
	if _, err := os.Stat(path); err != nil {
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) || os.IsNotExist(err) {
			w.knownFilesMu.Lock()
			_, known := w.knownFiles[path]
			delete(w.knownFiles, path)
			w.knownFilesMu.Unlock()
			if known {
				w.emit(Event{Type: Removed, Name: path})
			}
		}
		return
	}

	w.knownFilesMu.Lock()
	_, known := w.knownFiles[path]
	w.knownFiles[path] = struct{}{}
	w.knownFilesMu.Unlock()

	eventType := Updated
	if !known {
		eventType = Created
	}

	results, out, err := batch.EvalFile(path, w.suffix)
	w.emit(Event{
		Type:       eventType,
		Name:       path,
		ResultPath: out,
		Results:    results,
		Err:        err,
	})
}

func (w *Watcher) emit(ev Event) {
	w.emitMu.RLock()
	defer w.emitMu.RUnlock()
	if w.closed {
		return
	}

	select {
	case w.events <- ev:
	default:
		fmt.Fprintf(w.log, "watch: event channel full, dropping %s event for %s\n", ev.Type, ev.Name)
	}
}
