package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const testSchema = `
local mod = config.mod("ExampleMod", "An example")
mod:toggle("enabled", "Enabled", true)
mod:category("audio", "Audio", "Sound settings", function(c)
  c:slider("volume", "Volume", 50, 0, 100, 1, 0)
  c:dropdown("mode", "Mode", {"Quiet", "Loud"}, "Quiet")
end)
mod:color("tint", "Tint", "#0066CC")
`

type env struct {
	dir    string
	schema string
	args   []string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	root := t.TempDir()
	schema := filepath.Join(root, "example.lua")
	require.NoError(t, os.WriteFile(schema, []byte(testSchema), 0o644))
	dir := filepath.Join(root, "config")
	return &env{
		dir:    dir,
		schema: schema,
		args: []string{
			"--dir", dir,
			"--settings", filepath.Join(root, "missing.toml"),
			"--schema", schema,
			"--log-level", "error",
		},
	}
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runContext(t, context.Background(), args...)
}

func (e *env) runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, e.args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestShow(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "show")
	require.NoError(t, err)

	assert.Contains(t, out, "ExampleMod (examplemod)")
	assert.Contains(t, out, "  enabled = true (toggle)")
	assert.Contains(t, out, "  [audio] Audio")
	assert.Contains(t, out, "    volume = 50 (slider)")
	assert.Contains(t, out, "  tint = #0066CC (color)")
}

func TestSetGetPersist(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "set", "audio.volume", "75")
	require.NoError(t, err)
	assert.Equal(t, "examplemod.audio.volume = 75\n", out)

	out, err = e.run(t, "get", "audio.volume")
	require.NoError(t, err)
	assert.Equal(t, "75\n", out)

	data, err := os.ReadFile(filepath.Join(e.dir, "examplemod.json"))
	require.NoError(t, err)
	assert.Equal(t, 75.0, gjson.GetBytes(data, "audio.volume").Float())

	out, err = e.run(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "volume = 75 (slider) *")
}

func TestSet_Errors(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "set", "audio.missing", "1")
	assert.Error(t, err)

	_, err = e.run(t, "set", "enabled", "maybe")
	assert.Error(t, err)

	_, err = e.run(t, "set", "audio.volume")
	assert.Error(t, err)
}

func TestSet_SaveFailure(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(e.dir, []byte("not a directory"), 0o644))

	out, err := e.run(t, "set", "audio.volume", "80")
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestReset(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "set", "audio.volume", "10")
	require.NoError(t, err)
	_, err = e.run(t, "set", "enabled", "false")
	require.NoError(t, err)

	_, err = e.run(t, "reset", "audio")
	require.NoError(t, err)

	out, err := e.run(t, "get", "audio.volume")
	require.NoError(t, err)
	assert.Equal(t, "50\n", out)
	out, err = e.run(t, "get", "enabled")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	_, err = e.run(t, "reset")
	require.NoError(t, err)
	out, err = e.run(t, "get", "enabled")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestExport(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "export")
	require.NoError(t, err)
	assert.Equal(t, 50.0, gjson.Get(out, "audio.volume").Float())
	assert.Equal(t, "Quiet", gjson.Get(out, "audio.mode").String())

	out, err = e.run(t, "export", "--format", "yaml")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, true, doc["enabled"])

	out, err = e.run(t, "export", "-f", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "[audio]")

	_, err = e.run(t, "export", "--format", "xml")
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "search", "volum")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "examplemod.audio.volume\tVolume\t50"))

	out, err = e.run(t, "search", "zzzzzz")
	require.NoError(t, err)
	assert.Contains(t, out, "no options match")
}

func TestMissingSchema(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"show", "--dir", t.TempDir()})
	assert.Error(t, cmd.Execute())
}

func TestWatch_StopsOnCancel(t *testing.T) {
	e := newEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	out, err := e.runContext(t, ctx, "watch")
	require.NoError(t, err)
	assert.Contains(t, out, "watching ")
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "modcfg dev")
}

func TestSettings(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, `dir = "`+e.dir+`" (flags)`)
	assert.Contains(t, out, `indent = "  " (defaults)`)
	assert.Contains(t, out, `log.level = "error" (flags)`)
	assert.Contains(t, out, `watch.debounce = "100ms" (defaults)`)
}
