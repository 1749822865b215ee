// Package notify delivers change events for registered mod configs.
//
// Observers subscribe globally, to a single mod, or to a key path inside a
// mod. Paths are namespaced by mod id, so "mymod.display" receives changes
// to "mymod.display.scale" but nothing from other mods.
package notify

import (
	"strings"
	"sync"
)

// ChangeType says what happened to an option.
type ChangeType int

const (
	// ChangeSet is a new value assigned to an option.
	ChangeSet ChangeType = iota

	// ChangeReset is an option returned to its default.
	ChangeReset

	// ChangeReload is a whole mod tree re-read from disk.
	ChangeReload
)

var changeTypeNames = [...]string{
	ChangeSet:    "set",
	ChangeReset:  "reset",
	ChangeReload: "reload",
}

func (c ChangeType) String() string {
	if c < 0 || int(c) >= len(changeTypeNames) {
		return "unknown"
	}
	return changeTypeNames[c]
}

// Change sources.
const (
	SourceUser  = "user"
	SourceFile  = "file"
	SourceReset = "reset"
)

// Change is one event delivered to observers. Path, OldValue and NewValue
// are empty for reloads.
type Change struct {
	ModID    string // lowercase owner id
	Path     string // dotted key inside the mod tree
	Type     ChangeType
	OldValue any
	NewValue any
	Source   string
}

// Key returns the namespaced path "modid.path", or just the mod id for
// reload events.
func (c Change) Key() string {
	if c.Path == "" {
		return c.ModID
	}
	return c.ModID + "." + c.Path
}

// Observer receives changes.
type Observer func(change Change)

// Subscription is returned by the Subscribe methods.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe stops delivery to the observer. Calling it twice is harmless.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.remove(s.id)
	}
}

type entry struct {
	key      string // "" for global observers
	global   bool
	observer Observer
}

// Notifier fans changes out to observers. Delivery is synchronous unless
// WithAsync is given.
type Notifier struct {
	mu      sync.RWMutex
	entries map[uint64]entry
	nextID  uint64
	closed  bool

	async bool
	queue chan Change
	done  chan struct{}
	wg    sync.WaitGroup
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous notification delivery. Observers then run
// on the notifier's goroutine and must not touch config trees.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.queue = make(chan Change, bufferSize)
		}
	}
}

// New returns a Notifier with no observers.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		entries: make(map[uint64]entry),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.async {
		n.wg.Add(1)
		go n.run()
	}
	return n
}

func (n *Notifier) add(e entry) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.entries[id] = e
	return &Subscription{id: id, notifier: n}
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	delete(n.entries, id)
	n.mu.Unlock()
}

// Subscribe registers an observer for all changes of all mods.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.add(entry{global: true, observer: observer})
}

// SubscribeMod registers an observer for every change to one mod.
func (n *Notifier) SubscribeMod(modID string, observer Observer) *Subscription {
	return n.SubscribePath(modID, "", observer)
}

// SubscribePath registers an observer for a key path inside a mod. The
// observer receives changes to the path itself and to anything below it,
// and reload events of the mod.
func (n *Notifier) SubscribePath(modID, path string, observer Observer) *Subscription {
	key := strings.ToLower(modID)
	if path != "" {
		key += "." + path
	}
	return n.add(entry{key: key, observer: observer})
}

// Notify delivers change, or queues it in async mode. It does nothing once
// the notifier is closed.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}

	if !n.async {
		n.deliver(change)
		return
	}
	select {
	case n.queue <- change:
	case <-n.done:
	}
}

// NotifySet sends a ChangeSet.
func (n *Notifier) NotifySet(modID, path string, oldValue, newValue any, source string) {
	n.Notify(Change{ModID: modID, Path: path, Type: ChangeSet,
		OldValue: oldValue, NewValue: newValue, Source: source})
}

// NotifyReset sends a ChangeReset.
func (n *Notifier) NotifyReset(modID, path string, oldValue, newValue any) {
	n.Notify(Change{ModID: modID, Path: path, Type: ChangeReset,
		OldValue: oldValue, NewValue: newValue, Source: SourceReset})
}

// NotifyReload sends a ChangeReload for the whole mod.
func (n *Notifier) NotifyReload(modID, source string) {
	n.Notify(Change{ModID: modID, Type: ChangeReload, Source: source})
}

// Close stops delivery. In async mode queued changes are delivered before
// Close returns. Later calls are no-ops.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) deliver(change Change) {
	key := change.Key()
	reload := change.Type == ChangeReload

	n.mu.RLock()
	var targets []Observer
	for _, e := range n.entries {
		if e.global || matches(e.key, key, reload) {
			targets = append(targets, e.observer)
		}
	}
	n.mu.RUnlock()

	for _, obs := range targets {
		obs(change)
	}
}

// matches reports whether a subscription path receives a change key.
// Reloads reach every subscription inside the reloaded mod.
func matches(sub, key string, reload bool) bool {
	if sub == key || isParentPath(sub, key) {
		return true
	}
	return reload && isParentPath(key, sub)
}

func (n *Notifier) run() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.queue:
			n.deliver(change)
		case <-n.done:
			for len(n.queue) > 0 {
				n.deliver(<-n.queue)
			}
			return
		}
	}
}

// isParentPath reports whether child lies strictly below parent. The empty
// parent contains every non-empty path.
func isParentPath(parent, child string) bool {
	if parent == "" {
		return child != ""
	}
	return strings.HasPrefix(child, parent+".")
}

// Batch holds changes back until Commit.
type Batch struct {
	mu       sync.Mutex
	notifier *Notifier
	held     []Change
}

// NewBatch starts an empty batch bound to n.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{notifier: n}
}

// Add holds change until Commit.
func (b *Batch) Add(change Change) {
	b.mu.Lock()
	b.held = append(b.held, change)
	b.mu.Unlock()
}

// Commit sends the held changes in the order they were added.
func (b *Batch) Commit() {
	b.mu.Lock()
	held := b.held
	b.held = nil
	b.mu.Unlock()

	for _, change := range held {
		b.notifier.Notify(change)
	}
}

// Discard drops the held changes.
func (b *Batch) Discard() {
	b.mu.Lock()
	b.held = nil
	b.mu.Unlock()
}

// Len returns the number of held changes.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.held)
}
