// Package script loads configuration schemas declared in Lua.
//
// A schema script declares one mod through the global config table and
// the same calls the builder package offers:
//
//	local mod = config.mod("ExampleMod", "An example")
//	mod:icon("minecraft:book")
//	mod:category("examples", "Examples", "Sample options", function(c)
//	  c:toggle("enabled", "Enabled", true)
//	  c:slider("volume", "Volume", 50, 0, 100, 1, 0)
//	  c:dropdown("mode", "Mode", {"Easy", "Hard"}, "Easy")
//	  c:color("tint", "Tint", 0x0066CC)
//	  c:list("names", "Names", "Name", {"alice"})
//	  c:text("motd", "Message", "Hello"):maxlength(32)
//	  c:item("icon", "Icon", "minecraft:stone"):describe("Shown in menus")
//	end)
//
// Scripts run in a fresh state with only the base, table, string and math
// libraries, and are cancelled after a timeout.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/modernconfig/internal/config"
	"github.com/dshills/modernconfig/internal/config/tree"
)

// DefaultTimeout bounds the run time of a schema script.
const DefaultTimeout = 5 * time.Second

// Errors returned by the loader.
var (
	// ErrNoMod indicates a script that never called config.mod.
	ErrNoMod = errors.New("script declares no mod")

	// ErrDuplicateMod indicates a script that called config.mod twice.
	ErrDuplicateMod = errors.New("script declares more than one mod")
)

// Schema is a mod tree declared by a script.
type Schema struct {
	ModID string
	Info  tree.Info
	Root  *tree.Category
}

// Loader runs schema scripts.
type Loader struct {
	timeout time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithTimeout sets the maximum run time of a script.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// New creates a loader.
func New(opts ...Option) *Loader {
	l := &Loader{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile runs the script at path with a default loader.
func LoadFile(path string) (*Schema, error) {
	return New().LoadFile(path)
}

// LoadString runs src with a default loader.
func LoadString(src string) (*Schema, error) {
	return New().LoadString("<string>", src)
}

// LoadFile runs the script at path.
func (l *Loader) LoadFile(path string) (*Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	return l.LoadString(path, string(src))
}

// LoadString runs src; name is used in error messages.
func (l *Loader) LoadString(name, src string) (*Schema, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibraries(L)

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	L.SetContext(ctx)

	s := &session{}
	s.install(L)

	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return nil, &config.ParseError{Path: name, Message: err.Error(), Err: err}
	}
	L.Push(fn)
	if err := L.PCall(0, 0, nil); err != nil {
		return nil, fmt.Errorf("running %s: %w", name, err)
	}

	if s.root == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMod, name)
	}
	root, err := s.root.Build()
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	return &Schema{ModID: s.root.ModID(), Info: s.root.Info(), Root: root}, nil
}

// openSafeLibraries opens only the libraries a schema needs.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}
