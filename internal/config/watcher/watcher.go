// Package watcher reports changes to profile files.
//
// Editors often save by writing a temporary file and renaming it over the
// original, so the watcher subscribes to each file's directory and filters
// events by name. Bursts of events for one file are debounced into a single
// callback.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/keypipe/internal/logging"
)

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// Event is a debounced change to a watched file.
type Event struct {
	Path string // absolute
	Op   Operation
	Time time.Time
}

// Operation is the last file operation seen in a burst.
type Operation int

const (
	OpWrite Operation = iota
	OpCreate
	OpRemove
	OpRename
)

var operationNames = [...]string{"write", "create", "remove", "rename"}

func (op Operation) String() string {
	if op < 0 || int(op) >= len(operationNames) {
		return "unknown"
	}
	return operationNames[op]
}

func operationOf(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	default:
		return 0, false
	}
}

// Handler receives change events. It runs with the watcher locked and must
// not call back into it.
type Handler func(event Event)

// Watcher monitors files for changes.
type Watcher struct {
	mu sync.Mutex

	fsw *fsnotify.Watcher
	log *logging.Logger

	// files maps watched absolute paths to true; dirs counts watched
	// files per directory.
	files map[string]bool
	dirs  map[string]int

	handlers []Handler

	debounce time.Duration
	pending  map[string]pendingEvent
	gen      uint64

	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// pendingEvent is a debounce timer and the generation that armed it. A
// timer whose generation no longer matches was superseded.
type pendingEvent struct {
	t   *time.Timer
	gen uint64
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must be quiet before its change is
// reported. Zero reports every event. Default 100ms.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets where fsnotify errors are logged.
func WithLogger(log *logging.Logger) Option {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// New creates a watcher and starts its event loop.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		log:      logging.Nop(),
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		debounce: 100 * time.Millisecond,
		pending:  make(map[string]pendingEvent),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithComponent("watcher")

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Watch adds a file to the watch list. The file need not exist yet.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[absPath] {
		return nil
	}
	delete(w.files, absPath)

	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if !w.closed {
			return w.fsw.Remove(dir)
		}
	}
	return nil
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// WatchedFiles returns the list of watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// Close stops the watcher. Pending debounced events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	for path, p := range w.pending {
		p.t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	op, ok := operationOf(ev.Op)
	if !ok {
		return
	}
	path, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || !w.files[path] {
		return
	}
	event := Event{Path: path, Op: op, Time: time.Now()}

	if w.debounce <= 0 {
		w.emitLocked(event)
		return
	}
	if p, ok := w.pending[path]; ok {
		p.t.Stop()
	}
	w.gen++
	gen := w.gen
	w.pending[path] = pendingEvent{
		t:   time.AfterFunc(w.debounce, func() { w.fire(path, gen, event) }),
		gen: gen,
	}
}

// fire emits a debounced event unless a later event for path re-armed the
// timer after this callback was already running.
func (w *Watcher) fire(path string, gen uint64, event Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if p, ok := w.pending[path]; !ok || p.gen != gen {
		return
	}
	delete(w.pending, path)
	w.emitLocked(event)
}

// emitLocked calls handlers with w.mu held; handlers must not call back
// into the watcher.
func (w *Watcher) emitLocked(event Event) {
	for _, h := range w.handlers {
		h(event)
	}
}
