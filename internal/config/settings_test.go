package config

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettingsWithFS(fstest.MapFS{}, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_File(t *testing.T) {
	fsys := fstest.MapFS{
		"modernconfig.toml": {Data: []byte(`
dir = "mods"
indent = 4

[watch]
enabled = true
debounce = "250ms"

[log]
level = "DEBUG"
`)},
	}

	s, err := LoadSettingsWithFS(fsys, "")
	require.NoError(t, err)
	assert.Equal(t, Settings{
		Dir:      "mods",
		Indent:   "    ",
		Watch:    true,
		Debounce: 250 * time.Millisecond,
		LogLevel: "debug",
	}, s)
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	fsys := fstest.MapFS{
		"settings.toml": {Data: []byte("dir = \"from-file\"\n[watch]\nenabled = false\n")},
	}
	t.Setenv("MODERNCONFIG_DIR", "from-env")
	t.Setenv("MODERNCONFIG_WATCH", "1")
	t.Setenv("MODERNCONFIG_DEBOUNCE", "2s")

	s, err := LoadSettingsWithFS(fsys, "settings.toml")
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.Dir)
	assert.True(t, s.Watch)
	assert.Equal(t, 2*time.Second, s.Debounce)
}

func TestLoadSettings_NumericDirFromEnv(t *testing.T) {
	t.Setenv("MODERNCONFIG_DIR", "2024")

	s, err := LoadSettingsWithFS(fstest.MapFS{}, "settings.toml")
	require.NoError(t, err)
	assert.Equal(t, "2024", s.Dir)
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"dir not string", "dir = 3"},
		{"empty dir", `dir = ""`},
		{"bad debounce", "[watch]\ndebounce = \"soon\""},
		{"negative debounce", "[watch]\ndebounce = -5"},
		{"watch not bool", "[watch]\nenabled = \"maybe\""},
		{"level not string", "[log]\nlevel = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"s.toml": {Data: []byte(tt.data)}}
			_, err := LoadSettingsWithFS(fsys, "s.toml")
			assert.ErrorIs(t, err, ErrInvalidSetting)
		})
	}
}

func TestLoadSettings_ParseError(t *testing.T) {
	fsys := fstest.MapFS{"s.toml": {Data: []byte("[watch\n")}}
	_, err := LoadSettingsWithFS(fsys, "s.toml")

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "s.toml", perr.Path)
}

func TestParseError_Error(t *testing.T) {
	assert.Equal(t, "parse error in a.toml at line 3, column 2: bad",
		(&ParseError{Path: "a.toml", Line: 3, Column: 2, Message: "bad"}).Error())
	assert.Equal(t, "parse error in a.toml at line 3: bad",
		(&ParseError{Path: "a.toml", Line: 3, Message: "bad"}).Error())
	assert.Equal(t, "parse error in a.toml: bad",
		(&ParseError{Path: "a.toml", Message: "bad"}).Error())
}

func TestSettingsLayers_Origin(t *testing.T) {
	fsys := fstest.MapFS{
		"s.toml": {Data: []byte("indent = 4\n[log]\nlevel = \"warn\"\n")},
	}
	t.Setenv("MODERNCONFIG_LOG_LEVEL", "error")

	m, err := SettingsLayers(fsys, "s.toml")
	require.NoError(t, err)
	m.AddLayer(FlagsLayer(Settings{Dir: "from-flags", Debounce: time.Second}))

	s, err := SettingsFromLayers(m)
	require.NoError(t, err)
	assert.Equal(t, Settings{
		Dir:      "from-flags",
		Indent:   "    ",
		Watch:    false,
		Debounce: time.Second,
		LogLevel: "error",
	}, s)

	origins := map[string]string{}
	for _, key := range SettingKeys {
		origins[key] = m.WhichLayer(key)
	}
	assert.Equal(t, map[string]string{
		"dir":            "flags",
		"indent":         "file",
		"watch.enabled":  "defaults",
		"watch.debounce": "flags",
		"log.level":      "environment",
	}, origins)
	assert.Equal(t, "s.toml", m.Layer("file").Path)
}
