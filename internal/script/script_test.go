package script

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modernconfig/internal/config"
	"github.com/dshills/modernconfig/internal/config/tree"
)

const exampleSchema = `
local mod = config.mod("ExampleMod", "An example")
mod:icon("minecraft:book")
mod:toggle("enabled", "Enabled", true)
mod:category("examples", "Examples", "Sample options", function(c)
  c:slider("volume", "Volume", 50, 0, 100, 1, 0)
  c:dropdown("mode", "Mode", {"Easy", "Hard"}, "Hard")
  c:color("tint", "Tint", 0x0066CC)
  c:color("accent", "Accent", "#FF8800")
  c:list("names", "Names", "Name", {"alice", "bob"})
  c:text("motd", "Message", "Hello"):maxlength(5):describe("Shown on join")
  c:item("icon", "Icon", "stone")
end)
local nested = mod:category("advanced", "Advanced")
nested:toggle("debug", "Debug", false)
nested:done()
`

func TestLoadString(t *testing.T) {
	s, err := LoadString(exampleSchema)
	require.NoError(t, err)

	assert.Equal(t, "examplemod", s.ModID)
	assert.Equal(t, "ExampleMod", s.Info.Name)
	assert.Equal(t, "An example", s.Info.Description)
	assert.Equal(t, "minecraft:book", s.Info.Icon.String())
	assert.Equal(t, []string{"enabled", "examples", "advanced"}, s.Root.Keys())

	tests := []struct {
		path []string
		kind tree.Kind
		want any
	}{
		{[]string{"enabled"}, tree.KindToggle, true},
		{[]string{"examples", "volume"}, tree.KindSlider, 50.0},
		{[]string{"examples", "mode"}, tree.KindDropdown, "Hard"},
		{[]string{"examples", "tint"}, tree.KindColor, 0x0066CC},
		{[]string{"examples", "accent"}, tree.KindColor, 0xFF8800},
		{[]string{"examples", "names"}, tree.KindList, []string{"alice", "bob"}},
		{[]string{"examples", "motd"}, tree.KindText, "Hello"},
		{[]string{"examples", "icon"}, tree.KindItem, "minecraft:stone"},
		{[]string{"advanced", "debug"}, tree.KindToggle, false},
	}
	for _, tt := range tests {
		opt, ok := s.Root.Lookup(tt.path...)
		require.True(t, ok, tt.path)
		assert.Equal(t, tt.kind, opt.Kind(), tt.path)
		assert.Equal(t, tt.want, opt.Value(), tt.path)
	}

	motd, _ := s.Root.Lookup("examples", "motd")
	assert.Equal(t, "Shown on join", motd.Description())
	motd.(*tree.Text).Set("Welcome aboard")
	assert.Equal(t, "Welco", motd.Value(), "max length applied")
}

func TestLoadString_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		is   error
	}{
		{"no mod", `local x = 1`, ErrNoMod},
		{"two mods", `config.mod("a") config.mod("b")`, nil},
		{"builder error", `config.mod("a"):slider("s", "S", 1, 10, 0)`, tree.ErrInvalidRange},
		{"bad item", `config.mod("a"):item("i", "I", "Not Valid")`, tree.ErrInvalidIdentifier},
		{"bad color", `config.mod("a"):color("c", "C", "#XYZ")`, nil},
		{"runtime error", `error("boom")`, nil},
		{"unclosed category", `config.mod("a"):category("c", "C")`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadString(tt.src)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestLoadString_SyntaxError(t *testing.T) {
	_, err := New().LoadString("broken.lua", `config.mod("a"`)
	var perr *config.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "broken.lua", perr.Path)
}

func TestLoadString_Sandbox(t *testing.T) {
	for _, src := range []string{
		`os.exit(1)`,
		`io.open("/etc/passwd")`,
		`dofile("/tmp/x.lua")`,
		`require("os")`,
	} {
		_, err := LoadString(src)
		assert.Error(t, err, src)
	}
}

func TestLoadString_Timeout(t *testing.T) {
	start := time.Now()
	_, err := New(WithTimeout(50*time.Millisecond)).LoadString("loop.lua", `while true do end`)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.lua")
	require.NoError(t, os.WriteFile(path, []byte(exampleSchema), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "examplemod", s.ModID)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)
}
