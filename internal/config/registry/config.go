package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/modernconfig/internal/config"
	"github.com/dshills/modernconfig/internal/config/codec"
	"github.com/dshills/modernconfig/internal/config/notify"
	"github.com/dshills/modernconfig/internal/config/store"
	"github.com/dshills/modernconfig/internal/config/tree"
)

// Config is the handle of one registered mod tree.
type Config struct {
	reg   *Registry
	modID string
	root  *tree.Category
	info  tree.Info

	// Write-through state.
	loading  bool
	batching int
	dirty    bool
	pending  []notify.Change
	source   string

	listeners    map[int]func(*Config)
	nextListener int
}

// ModID returns the lowercase mod id.
func (c *Config) ModID() string { return c.modID }

// Root returns the tree.
func (c *Config) Root() *tree.Category { return c.root }

// Info returns the mod metadata.
func (c *Config) Info() tree.Info { return c.info }

// Path returns the file the tree persists to.
func (c *Config) Path() string { return c.reg.store.PathFor(c.modID) }

// Option resolves an option by key path.
func (c *Config) Option(path ...string) (tree.Option, bool) {
	return c.root.Lookup(path...)
}

// Lookup resolves a dot-separated key path, returning ErrOptionNotFound
// when it does not name an option.
func (c *Config) Lookup(dotted string) (tree.Option, error) {
	opt, ok := c.root.Lookup(SplitPath(dotted)...)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", config.ErrOptionNotFound, c.modID, dotted)
	}
	return opt, nil
}

// SplitPath splits a dot-separated key path.
func SplitPath(dotted string) []string {
	if dotted == "" {
		return nil
	}
	return strings.Split(dotted, ".")
}

// SetString parses value for the option at the dotted path and sets it.
// Unlike a direct option set, a failed save is returned. The new value is
// kept in memory either way. Inside an outer Batch the save is deferred to
// that Batch.
func (c *Config) SetString(dotted, value string) error {
	opt, err := c.Lookup(dotted)
	if err != nil {
		return err
	}
	var perr error
	if err := c.Batch(func() { perr = tree.ParseInto(opt, value) }); err != nil {
		return fmt.Errorf("saving %s.%s: %w", c.modID, dotted, err)
	}
	if perr != nil {
		return fmt.Errorf("setting %s.%s: %w", c.modID, dotted, perr)
	}
	return nil
}

// Save writes the whole tree to the mod's file and then runs the OnSave
// listeners.
func (c *Config) Save() error {
	data, err := c.reg.encoder.Encode(c.root)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.modID, err)
	}
	if err := c.reg.store.Write(c.modID, data); err != nil {
		return err
	}
	c.dirty = false
	for _, fn := range c.listenersSnapshot() {
		fn(c)
	}
	return nil
}

// Load applies the mod's file to the tree. A missing file is not an error
// and leaves the current values. Loading never writes the file back.
func (c *Config) Load() (codec.Report, error) {
	data, err := c.reg.store.Read(c.modID)
	if errors.Is(err, store.ErrNotExist) {
		return codec.Report{}, nil
	}
	if err != nil {
		return codec.Report{}, err
	}
	return c.apply(data)
}

func (c *Config) apply(data []byte) (codec.Report, error) {
	c.loading = true
	defer func() { c.loading = false }()

	report, err := codec.Decode(c.root, data)
	if err != nil {
		return report, &config.ParseError{
			Path:    c.Path(),
			Message: "not a JSON object",
			Err:     err,
		}
	}
	return report, nil
}

// Reload re-reads the mod's file after an external edit and notifies
// observers with a reload event. It reports false without touching the
// tree when the file is gone or holds exactly what this process last
// wrote.
func (c *Config) Reload() (bool, error) {
	data, err := c.reg.store.Read(c.modID)
	if errors.Is(err, store.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.reg.store.IsOwnWrite(c.modID, data) {
		return false, nil
	}

	report, err := c.apply(data)
	if err != nil {
		return false, err
	}
	c.reg.logger.Info("config reloaded", "mod", c.modID,
		"applied", len(report.Applied), "skipped", len(report.Skipped))
	c.reg.notifier.NotifyReload(c.modID, notify.SourceFile)
	return true, nil
}

// Reset restores defaults for the option or category at path, or for the
// whole tree when path is empty. The file is written once.
func (c *Config) Reset(path ...string) error {
	var entries []tree.Entry
	if opt, ok := c.root.Lookup(path...); ok {
		entries = []tree.Entry{{Path: path, Option: opt}}
	} else if sub, ok := c.root.Sub(path...); ok {
		entries = sub.Options()
	} else {
		return fmt.Errorf("%w: %s.%s", config.ErrOptionNotFound, c.modID, strings.Join(path, "."))
	}

	prev := c.source
	c.source = notify.SourceReset
	defer func() { c.source = prev }()

	return c.Batch(func() {
		for _, e := range entries {
			e.Option.Reset()
		}
	})
}

// ResetAll restores every option to its default.
func (c *Config) ResetAll() error {
	return c.Reset()
}

// Batch runs fn with write-through suspended and then saves once if any
// option changed. Notifications are delivered after the save.
func (c *Config) Batch(fn func()) error {
	c.batching++
	func() {
		defer func() { c.batching-- }()
		fn()
	}()
	if c.batching > 0 {
		return nil
	}
	return c.flush()
}

// OnSave registers fn to run after every successful save. The returned
// function removes it.
func (c *Config) OnSave(fn func(*Config)) (cancel func()) {
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	return func() { delete(c.listeners, id) }
}

func (c *Config) listenersSnapshot() []func(*Config) {
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(*Config), len(ids))
	for i, id := range ids {
		fns[i] = c.listeners[id]
	}
	return fns
}

func (c *Config) bind() {
	for _, e := range c.root.Options() {
		key := strings.Join(e.Path, ".")
		e.Option.Bind(func(_ tree.Option, oldValue, newValue any) {
			c.changed(key, oldValue, newValue)
		})
	}
}

func (c *Config) unbind() {
	for _, e := range c.root.Options() {
		e.Option.Bind(nil)
	}
}

// changed is the sink bound to every option.
func (c *Config) changed(path string, oldValue, newValue any) {
	if c.loading {
		return
	}

	typ := notify.ChangeSet
	if c.source == notify.SourceReset {
		typ = notify.ChangeReset
	}
	change := notify.Change{
		ModID:    c.modID,
		Path:     path,
		Type:     typ,
		OldValue: oldValue,
		NewValue: newValue,
		Source:   c.source,
	}

	c.dirty = true
	c.pending = append(c.pending, change)
	if c.batching == 0 {
		_ = c.flush()
	}
}

// flush saves pending changes and then notifies them. A failed save is
// logged and the in-memory values are kept.
func (c *Config) flush() error {
	if !c.dirty {
		return nil
	}
	var err error
	if err = c.Save(); err != nil {
		c.reg.logger.Error("config save failed", "mod", c.modID, "path", c.Path(), "err", err)
		c.dirty = false
	}

	pending := c.pending
	c.pending = nil
	for _, change := range pending {
		c.reg.notifier.Notify(change)
	}
	return err
}
