// Package watcher provides file watching for configuration live reload.
//
// The watcher observes the config directory with fsnotify and queues a
// debounced event per changed mod file. Nothing is called back on the
// watcher's goroutines: the host drains the queue on its own thread and
// reloads the affected trees there.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrRunning is returned by Start on a watcher that is already started.
var ErrRunning = errors.New("watcher already running")

// Event represents a debounced change to one mod's config file.
type Event struct {
	// ModID is the mod the file belongs to.
	ModID string

	// Path is the absolute path to the changed file.
	Path string

	// Op is the coalesced operation.
	Op Operation

	// Time is when the last underlying change was seen.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created. Atomic replacement by
	// rename shows up as a create.
	OpCreate

	// OpRemove indicates the file was deleted or renamed away.
	OpRemove
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
	default:
		return "unknown"
	}
}

// Resolver maps a file path to the mod id owning it.
type Resolver func(path string) (modID string, ok bool)

// JSONResolver accepts "<modid>.json" files.
func JSONResolver(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
		return "", false
	}
	id := strings.TrimSuffix(name, ".json")
	return id, id != ""
}

// Watcher monitors a config directory for changes.
type Watcher struct {
	mu sync.Mutex

	dir      string
	debounce time.Duration
	resolve  Resolver
	logger   *slog.Logger

	fs      *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool

	pendingMu sync.Mutex
	pending   map[string]Event

	queueMu sync.Mutex
	queue   []Event
	ready   chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period a file must observe before its event
// is queued. Zero queues every change immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithResolver sets how file paths map to mod ids.
func WithResolver(r Resolver) Option {
	return func(w *Watcher) {
		if r != nil {
			w.resolve = r
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for dir. Call Start to begin watching.
func New(dir string, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		debounce: 100 * time.Millisecond,
		resolve:  JSONResolver,
		logger:   slog.New(slog.DiscardHandler),
		pending:  make(map[string]Event),
		ready:    make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Start creates the directory if needed and begins watching it.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return ErrRunning
	}

	abs, err := filepath.Abs(w.dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("creating watch dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := fsw.Add(abs); err != nil {
		fsw.Close()
		return fmt.Errorf("watching %s: %w", abs, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.dir = abs
	w.fs = fsw
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go w.processLoop(ctx)

	if w.debounce > 0 {
		w.wg.Add(1)
		go w.debounceLoop(ctx)
	}
	return nil
}

// Stop stops watching. Queued events stay available to Drain.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.cancel()
	w.running = false
	fsw := w.fs
	w.mu.Unlock()

	err := fsw.Close()
	w.wg.Wait()
	return err
}

// IsRunning returns whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir
}

// Ready is signalled when events are queued. A host blocked in a select
// can wait on it and then call Drain.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Pending returns the number of queued events.
func (w *Watcher) Pending() int {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	return len(w.queue)
}

// Drain removes and returns all queued events in arrival order.
func (w *Watcher) Drain() []Event {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	events := w.queue
	w.queue = nil
	return events
}

func (w *Watcher) processLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", "dir", w.dir, "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	op, ok := convertOp(ev.Op)
	if !ok {
		return
	}
	modID, ok := w.resolve(ev.Name)
	if !ok {
		return
	}

	event := Event{ModID: modID, Path: ev.Name, Op: op, Time: time.Now()}
	if w.debounce > 0 {
		w.coalesce(event)
	} else {
		w.enqueue(event)
	}
}

func convertOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return OpRemove, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}

// coalesce merges an event into the pending set:
//   - remove + create => write (atomic replace)
//   - create + write => create
//   - any + remove => remove
func (w *Watcher) coalesce(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	existing, exists := w.pending[event.Path]
	if exists {
		switch {
		case event.Op == OpRemove:
		case existing.Op == OpRemove && event.Op == OpCreate:
			event.Op = OpWrite
		case existing.Op == OpCreate:
			event.Op = OpCreate
		}
	}
	w.pending[event.Path] = event
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flush(time.Time{})
			return
		case now := <-ticker.C:
			w.flush(now.Add(-w.debounce))
		}
	}
}

// minTick bounds how often the debounce loop wakes for tiny debounces.
const minTick = time.Millisecond

func (w *Watcher) tickInterval() time.Duration {
	return max(w.debounce/2, minTick)
}

// flush queues pending events last seen before the threshold. A zero
// threshold flushes everything.
func (w *Watcher) flush(threshold time.Time) {
	w.pendingMu.Lock()
	var stable []Event
	for path, ev := range w.pending {
		if threshold.IsZero() || ev.Time.Before(threshold) {
			stable = append(stable, ev)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	for _, ev := range stable {
		w.enqueue(ev)
	}
}

func (w *Watcher) enqueue(event Event) {
	w.queueMu.Lock()
	w.queue = append(w.queue, event)
	w.queueMu.Unlock()

	select {
	case w.ready <- struct{}{}:
	default:
	}
}
