// Package registry keeps the configuration trees of all mods, keyed by
// lowercase mod id, and connects each tree to its file and to change
// observers.
//
// Every effective option change is written through to the owning mod's
// file before observers are notified. Trees are mutated on the caller's
// goroutine only; the registry itself may be queried concurrently.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/modernconfig/internal/config"
	"github.com/dshills/modernconfig/internal/config/codec"
	"github.com/dshills/modernconfig/internal/config/notify"
	"github.com/dshills/modernconfig/internal/config/store"
	"github.com/dshills/modernconfig/internal/config/tree"
)

// Registry maintains the registered mod configuration trees.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]*Config

	store    *store.Store
	notifier *notify.Notifier
	logger   *slog.Logger
	encoder  codec.Encoder
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for load and save failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithNotifier sets the notifier that receives change events.
func WithNotifier(n *notify.Notifier) Option {
	return func(r *Registry) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithIndent sets the indentation of written files.
func WithIndent(indent string) Option {
	return func(r *Registry) {
		r.encoder.Indent = indent
	}
}

// New creates a registry persisting through st.
func New(st *store.Store, opts ...Option) *Registry {
	r := &Registry{
		configs:  make(map[string]*Config),
		store:    st,
		notifier: notify.New(),
		logger:   slog.New(slog.DiscardHandler),
		encoder:  codec.Encoder{Indent: codec.DefaultIndent},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the backing store.
func (r *Registry) Store() *store.Store { return r.store }

// Notifier returns the notifier receiving change events.
func (r *Registry) Notifier() *notify.Notifier { return r.notifier }

// NormalizeModID returns the registry key for modID.
func NormalizeModID(modID string) (string, error) {
	id := cases.Lower(language.Und).String(strings.TrimSpace(modID))
	if err := store.ValidateModID(id); err != nil {
		return "", fmt.Errorf("%w: %q", config.ErrInvalidModID, modID)
	}
	return id, nil
}

// RegisterOption configures a registration.
type RegisterOption func(*Config)

// WithInfo attaches mod metadata to the registration.
func WithInfo(info tree.Info) RegisterOption {
	return func(c *Config) {
		c.info = info
	}
}

// Register stores root under the lowercased modID, binds write-through to
// every option and loads the mod's file. A later registration under the
// same id replaces the earlier tree.
//
// A missing file leaves the defaults in place. An unreadable or malformed
// file is logged and also leaves the defaults; only an invalid id or a
// nil root is an error.
func (r *Registry) Register(modID string, root *tree.Category, opts ...RegisterOption) (*Config, error) {
	id, err := NormalizeModID(modID)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("registering %s: nil tree", id)
	}

	c := &Config{
		reg:       r,
		modID:     id,
		root:      root,
		info:      tree.Info{Name: root.Title(), Description: root.Description()},
		source:    notify.SourceUser,
		listeners: make(map[int]func(*Config)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.bind()

	r.mu.Lock()
	prev := r.configs[id]
	r.configs[id] = c
	r.mu.Unlock()

	if prev != nil && prev.root != root {
		prev.unbind()
		r.logger.Debug("config replaced", "mod", id)
	}

	report, err := c.Load()
	switch {
	case err != nil:
		r.logger.Warn("config load failed, using defaults", "mod", id, "path", c.Path(), "err", err)
	case len(report.Skipped) > 0:
		r.logger.Warn("config values ignored", "mod", id, "keys", report.Skipped)
	}
	r.logger.Debug("config registered", "mod", id, "path", c.Path(), "applied", len(report.Applied))
	return c, nil
}

// Unregister removes a mod and detaches its tree from persistence.
func (r *Registry) Unregister(modID string) bool {
	id, err := NormalizeModID(modID)
	if err != nil {
		return false
	}

	r.mu.Lock()
	c, ok := r.configs[id]
	delete(r.configs, id)
	r.mu.Unlock()

	if ok {
		c.unbind()
	}
	return ok
}

// Config returns the handle of a registered mod.
func (r *Registry) Config(modID string) (*Config, bool) {
	id, err := NormalizeModID(modID)
	if err != nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.configs[id]
	return c, ok
}

// MustConfig is like Config but returns ErrModNotFound for unknown mods.
func (r *Registry) MustConfig(modID string) (*Config, error) {
	c, ok := r.Config(modID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", config.ErrModNotFound, modID)
	}
	return c, nil
}

// Get resolves an option through the mod's nested categories.
func (r *Registry) Get(modID string, path ...string) (tree.Option, bool) {
	c, ok := r.Config(modID)
	if !ok {
		return nil, false
	}
	return c.Option(path...)
}

// Info returns the metadata of a registered mod.
func (r *Registry) Info(modID string) (tree.Info, bool) {
	c, ok := r.Config(modID)
	if !ok {
		return tree.Info{}, false
	}
	return c.Info(), true
}

// ModIDs returns all registered mod ids sorted.
func (r *Registry) ModIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Batch runs fn with write-through suspended for the mod, then saves once.
func (r *Registry) Batch(modID string, fn func(c *Config)) error {
	c, err := r.MustConfig(modID)
	if err != nil {
		return err
	}
	return c.Batch(func() { fn(c) })
}

// Result is a search hit in one mod's tree.
type Result struct {
	ModID string
	tree.Match
}

// Search finds options in every registered mod, best matches first.
func (r *Registry) Search(query string) []Result {
	var out []Result
	for _, id := range r.ModIDs() {
		c, ok := r.Config(id)
		if !ok {
			continue
		}
		for _, m := range c.root.Search(query) {
			out = append(out, Result{ModID: id, Match: m})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score < out[j].Score
	})
	return out
}

// SaveAll writes every registered mod and joins the errors.
func (r *Registry) SaveAll() error {
	var errs []error
	for _, id := range r.ModIDs() {
		if c, ok := r.Config(id); ok {
			if err := c.Save(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
