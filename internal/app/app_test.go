package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modernconfig/internal/config/builder"
	"github.com/dshills/modernconfig/internal/config/notify"
	"github.com/dshills/modernconfig/internal/config/tree"
)

func exampleTree() *tree.Category {
	return builder.New("ExampleMod", "An example").
		Toggle("enabled", "Enabled", true).
		Slider("volume", "Volume", 50, 0, 100, 1, 0).
		MustBuild()
}

func newApp(t *testing.T, watch bool) (*Application, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "config")
	app, err := New(Options{
		ConfigDir:    dir,
		SettingsPath: filepath.Join(root, "missing.toml"),
		Watch:        watch,
		Debounce:     20 * time.Millisecond,
		LogOutput:    &bytes.Buffer{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown() })
	return app, dir
}

func TestNew_Defaults(t *testing.T) {
	app, dir := newApp(t, false)

	assert.Equal(t, dir, app.Settings().Dir)
	assert.Equal(t, "  ", app.Settings().Indent)
	assert.Nil(t, app.Watcher())
	assert.NotNil(t, app.Registry())
	assert.NotNil(t, app.Notifier())
	assert.Equal(t, 0, app.Tick())
	assert.ErrorIs(t, app.Run(context.Background()), ErrWatchDisabled)
}

func TestNew_SettingsFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "modernconfig.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
dir = "mods"
indent = 4

[log]
level = "debug"
`), 0o644))

	app, err := New(Options{SettingsPath: path, LogOutput: &bytes.Buffer{}})
	require.NoError(t, err)
	defer app.Shutdown()

	assert.Equal(t, "mods", app.Settings().Dir)
	assert.Equal(t, "    ", app.Settings().Indent)
	assert.Equal(t, "debug", app.Settings().LogLevel)
}

func TestNew_BadSettings(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "modernconfig.toml")
	require.NoError(t, os.WriteFile(path, []byte("dir = ["), 0o644))

	_, err := New(Options{SettingsPath: path})
	var ierr *InitError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "settings", ierr.Component)
}

func TestRegisterSchema(t *testing.T) {
	app, dir := newApp(t, false)
	schema := filepath.Join(t.TempDir(), "example.lua")
	require.NoError(t, os.WriteFile(schema, []byte(`
local mod = config.mod("ExampleMod", "An example")
mod:toggle("enabled", "Enabled", true)
`), 0o644))

	c, err := app.RegisterSchema(schema)
	require.NoError(t, err)
	assert.Equal(t, "examplemod", c.ModID())
	assert.Equal(t, filepath.Join(dir, "examplemod.json"), c.Path())
	assert.Equal(t, "ExampleMod", c.Info().Name)

	_, err = app.RegisterSchema(filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)
}

type changes struct {
	mu  sync.Mutex
	all []notify.Change
}

func (c *changes) add(ch notify.Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = append(c.all, ch)
}

func (c *changes) count(typ notify.ChangeType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ch := range c.all {
		if ch.Type == typ {
			n++
		}
	}
	return n
}

func TestTick_AppliesExternalEdit(t *testing.T) {
	app, dir := newApp(t, true)
	require.NotNil(t, app.Watcher())

	c, err := app.Registry().Register("examplemod", exampleTree())
	require.NoError(t, err)

	rec := &changes{}
	app.Notifier().SubscribeMod("examplemod", rec.add)

	path := filepath.Join(dir, "examplemod.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"enabled": false, "volume": 75}`), 0o644))

	require.Eventually(t, func() bool {
		app.Tick()
		v, err := c.Float("volume")
		return err == nil && v == 75
	}, 5*time.Second, 20*time.Millisecond)

	enabled, err := c.Bool("enabled")
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.GreaterOrEqual(t, rec.count(notify.ChangeReload), 1)
	assert.Zero(t, rec.count(notify.ChangeSet), "reload does not report per-option sets")
	assert.GreaterOrEqual(t, app.Metrics().Snapshot().Reloads, uint64(1))
}

func TestTick_SkipsOwnWrites(t *testing.T) {
	app, _ := newApp(t, true)

	c, err := app.Registry().Register("examplemod", exampleTree())
	require.NoError(t, err)

	rec := &changes{}
	app.Notifier().SubscribeMod("examplemod", rec.add)

	opt, err := c.Lookup("volume")
	require.NoError(t, err)
	opt.(*tree.Slider).Set(80)
	assert.Equal(t, 1, rec.count(notify.ChangeSet))

	require.Eventually(t, func() bool {
		return app.Watcher().Pending() > 0
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, app.Tick())
	assert.Zero(t, rec.count(notify.ChangeReload))
	assert.GreaterOrEqual(t, app.Metrics().Snapshot().Ignored, uint64(1))
}

func TestTick_IgnoresUnregisteredMods(t *testing.T) {
	app, dir := newApp(t, true)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "othermod.json"), []byte(`{}`), 0o644))
	require.Eventually(t, func() bool {
		return app.Watcher().Pending() > 0
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, app.Tick())
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, dir := newApp(t, true)

	c, err := app.Registry().Register("examplemod", exampleTree())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "examplemod.json"), []byte(`{"volume": 10}`), 0o644))
	require.Eventually(t, func() bool {
		return app.Metrics().Snapshot().Reloads > 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	v, err := c.Float("volume")
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)
}

func TestShutdown(t *testing.T) {
	app, _ := newApp(t, true)

	require.NoError(t, app.Shutdown())
	require.NoError(t, app.Shutdown())
	assert.False(t, app.Watcher().IsRunning())
	assert.Equal(t, 0, app.Tick())
	assert.ErrorIs(t, app.Run(context.Background()), ErrClosed)
}
