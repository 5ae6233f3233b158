// Package watcher reports changes to configuration files and grammar
// directories.
//
// Parent directories are registered with fsnotify so that files replaced
// by rename (as most editors save) keep being observed. Bursts of events
// for one path are coalesced and delivered once the path has been quiet
// for the debounce interval.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/glint/internal/logging"
)

// DefaultDebounce is the quiet period before an event is delivered.
const DefaultDebounce = 100 * time.Millisecond

// ErrClosed is returned by operations on a closed watcher.
var ErrClosed = errors.New("watcher closed")

// Event describes a change to one path.
type Event struct {
	// Path is absolute.
	Path string
	Op   Operation
	Time time.Time
}

// Operation is the kind of change.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota
	// OpCreate indicates a new file appeared.
	OpCreate
	// OpRemove indicates the file was deleted.
	OpRemove
	// OpRename indicates the file was moved away.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Gone reports whether the path no longer exists after the operation.
func (op Operation) Gone() bool {
	return op == OpRemove || op == OpRename
}

// Handler is called for each delivered event.
type Handler func(event Event)

// Watcher delivers change events for individual files and for files
// matching a pattern inside directories.
type Watcher struct {
	mu sync.RWMutex

	fsw *fsnotify.Watcher

	// Watched files, directory patterns, and fsnotify registrations
	// (reference counted per directory).
	files map[string]bool
	dirs  map[string]string
	refs  map[string]int

	handlers []Handler
	debounce time.Duration
	logger   *logging.Logger

	pendingMu sync.Mutex
	pending   map[string]pendingEvent

	running bool
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

type pendingEvent struct {
	Op   Operation
	Time time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero delivers events immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a stopped watcher.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]string),
		refs:     make(map[string]int),
		debounce: DefaultDebounce,
		logger:   logging.Default(),
		pending:  make(map[string]pendingEvent),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("watcher")
	return w, nil
}

// Watch adds a file. The file need not exist yet, but its directory must.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.files[absPath] {
		return nil
	}
	if err := w.retain(filepath.Dir(absPath)); err != nil {
		return err
	}
	w.files[absPath] = true
	return nil
}

// WatchDir adds every file in dir whose base name matches pattern
// (filepath.Match syntax). Files created later are included.
func (w *Watcher) WatchDir(dir, pattern string) error {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("watch pattern %q: %w", pattern, err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if _, ok := w.dirs[absDir]; !ok {
		if err := w.retain(absDir); err != nil {
			return err
		}
	}
	w.dirs[absDir] = pattern
	return nil
}

// Unwatch removes a file or directory added with Watch or WatchDir.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.files[absPath] {
		delete(w.files, absPath)
		w.release(filepath.Dir(absPath))
	}
	if _, ok := w.dirs[absPath]; ok {
		delete(w.dirs, absPath)
		w.release(absPath)
	}
	return nil
}

// retain registers dir with fsnotify on first use. Callers hold mu.
func (w *Watcher) retain(dir string) error {
	if w.refs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.refs[dir]++
	return nil
}

// release drops one reference to dir. Callers hold mu.
func (w *Watcher) release(dir string) {
	w.refs[dir]--
	if w.refs[dir] > 0 {
		return
	}
	delete(w.refs, dir)
	if err := w.fsw.Remove(dir); err != nil {
		w.logger.WithError(err).Debug("removing watch on %s", dir)
	}
}

// OnChange registers a handler.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// WatchedFiles returns the watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// Start begins delivering events.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running || w.closed {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	w.wg.Add(1)
	go w.eventLoop(done)

	if w.debounce > 0 {
		w.wg.Add(1)
		go w.debounceLoop(done)
	}
}

// Stop stops delivering events. Pending events are dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()

	w.wg.Wait()

	w.pendingMu.Lock()
	w.pending = make(map[string]pendingEvent)
	w.pendingMu.Unlock()
}

// IsRunning reports whether events are being delivered.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.Stop()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}

func (w *Watcher) eventLoop(done <-chan struct{}) {
	defer w.wg.Done()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("watch error")
		}
	}
}

// handle filters and dispatches one fsnotify event.
func (w *Watcher) handle(ev fsnotify.Event) {
	op, ok := convertOp(ev.Op)
	if !ok || !w.matches(ev.Name) {
		return
	}

	event := Event{Path: ev.Name, Op: op, Time: time.Now()}
	if w.debounce > 0 {
		w.queueEvent(event)
		return
	}
	w.emitEvent(event)
}

// convertOp picks the most significant operation. Chmod alone is dropped.
func convertOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}

func (w *Watcher) matches(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.files[path] {
		return true
	}
	pattern, ok := w.dirs[filepath.Dir(path)]
	if !ok {
		return false
	}
	matched, _ := filepath.Match(pattern, filepath.Base(path))
	return matched
}

// queueEvent coalesces events per path: remove and rename win, create
// survives later writes, and every event refreshes the quiet period.
func (w *Watcher) queueEvent(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	op := event.Op
	if existing, ok := w.pending[event.Path]; ok {
		switch {
		case op == OpWrite && existing.Op != OpWrite:
			op = existing.Op
		case op == OpCreate && existing.Op.Gone():
			// Replaced in place.
			op = OpWrite
		}
	}
	w.pending[event.Path] = pendingEvent{Op: op, Time: event.Time}
}

func (w *Watcher) debounceLoop(done <-chan struct{}) {
	defer w.wg.Done()

	interval := w.debounce / 2
	if interval <= 0 {
		interval = w.debounce
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

// flush delivers events whose path has been quiet for the debounce period.
func (w *Watcher) flush(now time.Time) {
	threshold := now.Add(-w.debounce)

	w.pendingMu.Lock()
	var ready []Event
	for path, p := range w.pending {
		if !p.Time.After(threshold) {
			ready = append(ready, Event{Path: path, Op: p.Op, Time: p.Time})
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	for _, event := range ready {
		w.emitEvent(event)
	}
}

func (w *Watcher) emitEvent(event Event) {
	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, handler := range handlers {
		w.safeCallHandler(handler, event)
	}
}

// safeCallHandler keeps a panicking handler from stopping delivery.
func (w *Watcher) safeCallHandler(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("handler panicked on %s: %v", event.Path, r)
		}
	}()
	handler(event)
}
