// Package app wires the configuration library together for a host
// process: settings, logging, the file store, the registry and the
// optional file watcher. It also owns the hand-off of watcher events to
// the host's thread.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dshills/modernconfig/internal/config"
	"github.com/dshills/modernconfig/internal/config/layer"
	"github.com/dshills/modernconfig/internal/config/loader"
	"github.com/dshills/modernconfig/internal/config/notify"
	"github.com/dshills/modernconfig/internal/config/registry"
	"github.com/dshills/modernconfig/internal/config/store"
	"github.com/dshills/modernconfig/internal/config/watcher"
	"github.com/dshills/modernconfig/internal/script"
)

// Application owns one registry and the components around it.
type Application struct {
	settings config.Settings
	layers   *layer.Manager
	logger   *slog.Logger

	store    *store.Store
	notifier *notify.Notifier
	registry *registry.Registry
	watcher  *watcher.Watcher
	metrics  *Metrics

	closed atomic.Bool
}

// Options configures the application. Non-zero fields override the
// settings file and environment.
type Options struct {
	// ConfigDir is the directory holding the mod files.
	ConfigDir string

	// SettingsPath is the library settings file.
	SettingsPath string

	// Watch enables live reload of externally edited files.
	Watch bool

	// Debounce is the quiet period before an edited file is reloaded.
	Debounce time.Duration

	// LogLevel sets the logging verbosity.
	LogLevel string

	// LogOutput receives log records. Defaults to os.Stderr.
	LogOutput io.Writer
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	layers, err := config.SettingsLayers(loader.DefaultFS(), opts.SettingsPath)
	if err != nil {
		return nil, &InitError{Component: "settings", Err: err}
	}
	layers.AddLayer(config.FlagsLayer(config.Settings{
		Dir:      opts.ConfigDir,
		Watch:    opts.Watch,
		Debounce: opts.Debounce,
		LogLevel: opts.LogLevel,
	}))
	settings, err := config.SettingsFromLayers(layers)
	if err != nil {
		return nil, &InitError{Component: "settings", Err: err}
	}

	lc := DefaultLoggerConfig()
	lc.Level = ParseLogLevel(settings.LogLevel)
	if opts.LogOutput != nil {
		lc.Output = opts.LogOutput
	}

	app := &Application{
		settings: settings,
		layers:   layers,
		logger:   NewLogger(lc),
		metrics:  NewMetrics(),
	}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	app.store = store.New(app.settings.Dir)
	app.notifier = notify.New()
	app.registry = registry.New(app.store,
		registry.WithLogger(componentLogger(app.logger, "registry")),
		registry.WithNotifier(app.notifier),
		registry.WithIndent(app.settings.Indent),
	)

	if !app.settings.Watch {
		return nil
	}

	app.watcher = watcher.New(app.store.Dir(),
		watcher.WithDebounce(app.settings.Debounce),
		watcher.WithResolver(app.store.ModIDFor),
		watcher.WithLogger(componentLogger(app.logger, "watcher")),
	)
	if err := app.watcher.Start(); err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	app.logger.Debug("watching config directory", "dir", app.watcher.Dir())
	return nil
}

// Settings returns the effective library settings.
func (app *Application) Settings() config.Settings { return app.settings }

// SettingsLayers returns the sources the settings were merged from.
func (app *Application) SettingsLayers() *layer.Manager { return app.layers }

// Logger returns the application's logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// Registry returns the mod registry.
func (app *Application) Registry() *registry.Registry { return app.registry }

// Notifier returns the change notifier.
func (app *Application) Notifier() *notify.Notifier { return app.notifier }

// Watcher returns the file watcher, or nil when watching is disabled.
func (app *Application) Watcher() *watcher.Watcher { return app.watcher }

// Metrics returns the reload metrics.
func (app *Application) Metrics() *Metrics { return app.metrics }

// RegisterSchema runs the schema script at path and registers the tree it
// declares, loading any saved values.
func (app *Application) RegisterSchema(path string) (*registry.Config, error) {
	s, err := script.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return app.registry.Register(s.ModID, s.Root, registry.WithInfo(s.Info))
}

// Tick applies queued external edits to the registered trees and returns
// how many trees were reloaded. Call it from the thread that owns the
// trees, for example once per frame or whenever Watcher().Ready() fires.
func (app *Application) Tick() int {
	if app.watcher == nil || app.closed.Load() {
		return 0
	}
	start := time.Now()
	events := app.watcher.Drain()
	if len(events) == 0 {
		return 0
	}

	applied := 0
	for _, ev := range events {
		if app.apply(ev) {
			applied++
		}
	}
	app.metrics.RecordTick(time.Since(start), len(events))
	return applied
}

func (app *Application) apply(ev watcher.Event) bool {
	c, ok := app.registry.Config(ev.ModID)
	if !ok {
		app.logger.Debug("ignoring unregistered config file", "mod", ev.ModID, "path", ev.Path)
		app.metrics.RecordIgnored()
		return false
	}
	if ev.Op == watcher.OpRemove {
		// The next save recreates the file from the in-memory values.
		app.logger.Warn("config file removed", "mod", ev.ModID, "path", ev.Path)
		app.metrics.RecordIgnored()
		return false
	}

	reloaded, err := c.Reload()
	if err != nil {
		app.logger.Warn("config reload failed",
			"error", &ReloadError{ModID: ev.ModID, Path: ev.Path, Err: err})
		app.metrics.RecordFailure()
		return false
	}
	if !reloaded {
		app.metrics.RecordIgnored()
		return false
	}
	app.metrics.RecordReload()
	return true
}

// Run calls Tick whenever the watcher has events until ctx is done.
// It must be called from the thread that owns the trees.
func (app *Application) Run(ctx context.Context) error {
	if app.closed.Load() {
		return ErrClosed
	}
	if app.watcher == nil {
		return ErrWatchDisabled
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-app.watcher.Ready():
			app.Tick()
		}
	}
}

// Shutdown stops the watcher and the notifier. It is safe to call more
// than once.
func (app *Application) Shutdown() error {
	if !app.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if app.watcher != nil {
		if err := app.watcher.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	app.notifier.Close()
	return errors.Join(errs...)
}
