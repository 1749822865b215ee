package loader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvLoader_Load(t *testing.T) {
	t.Setenv("MODERNCONFIG_DIR", "/srv/config")
	t.Setenv("MODERNCONFIG_WATCH", "off")
	t.Setenv("MODERNCONFIG_DEBOUNCE", "250ms")
	t.Setenv("MODERNCONFIG_LOG_LEVEL", "debug")

	m, err := NewEnvLoader(EnvPrefix).Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/config", m["dir"])

	v, ok := Lookup(m, "watch.enabled")
	require.True(t, ok)
	assert.Equal(t, false, v)

	v, ok = Lookup(m, "watch.debounce")
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, v)

	v, ok = Lookup(m, "log.level")
	require.True(t, ok)
	assert.Equal(t, "debug", v)
}

func TestEnvLoader_LoadUnmapped(t *testing.T) {
	t.Setenv("MODERNCONFIG_LOG_FILE_NAME", "mods.log")

	m, err := NewEnvLoader(EnvPrefix).Load()
	require.NoError(t, err)

	v, ok := Lookup(m, "log.fileName")
	require.True(t, ok)
	assert.Equal(t, "mods.log", v)
}

func TestEnvLoader_StringSettingsKeepRawValue(t *testing.T) {
	t.Setenv("MODERNCONFIG_DIR", "2024")
	t.Setenv("MODERNCONFIG_INDENT", "1.5")
	t.Setenv("MODERNCONFIG_LOG_LEVEL", "off")
	t.Setenv("MODERNCONFIG_DEBOUNCE", "5")

	m, err := NewEnvLoader(EnvPrefix).Load()
	require.NoError(t, err)

	assert.Equal(t, "2024", m["dir"])
	assert.Equal(t, "1.5", m["indent"])
	v, _ := Lookup(m, "log.level")
	assert.Equal(t, "off", v)
	v, _ = Lookup(m, "watch.debounce")
	assert.Equal(t, int64(5), v, "non-string settings are still typed")
}

func TestEnvLoader_envToPath(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)
	tests := map[string]string{
		"MODERNCONFIG_DIR":                "dir",
		"MODERNCONFIG_LOG_LEVEL":          "log.level",
		"MODERNCONFIG_WATCH_DEBOUNCE":     "watch.debounce",
		"MODERNCONFIG_WATCH_MAX_IDLE_AGE": "watch.maxIdleAge",
	}
	for env, want := range tests {
		assert.Equal(t, want, l.envToPath(env), env)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"true", true},
		{"Yes", true},
		{"off", false},
		{"42", int64(42)},
		{"0.5", 0.5},
		{"1.2.3", "1.2.3"},
		{"2s", 2 * time.Second},
		{"info", "info"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseValue(tt.in), tt.in)
	}
}

func TestEnvLoader_CustomMapping(t *testing.T) {
	t.Setenv("MODS_HOME", "/home/mods")

	l := NewEnvLoaderWithMapping("MODERNCONFIG_", nil)
	l.AddMapping("MODS_HOME", "dir")

	m, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "/home/mods", m["dir"])
}
