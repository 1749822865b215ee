// Package builder provides the fluent API mod authors use to declare a
// configuration tree.
//
//	root, err := builder.New("ExampleMod", "Example configuration").
//		CategoryFunc("video", "Video", "Display settings", func(b *builder.Builder) {
//			b.Toggle("vsync", "VSync", true).
//				Slider("fov", "Field of View", 70, 30, 110, 1, 0)
//		}).
//		Color("tint", "Tint", 0x0066CC).
//		Build()
//
// Declaration errors are sticky: the first one is kept and reported by
// Build, so a chain of calls needs a single error check.
package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/modernconfig/internal/config/tree"
)

// Errors returned by Build.
var (
	// ErrNotRoot indicates Build was called on a category builder.
	ErrNotRoot = errors.New("build called on a category builder; use End")

	// ErrUnclosed indicates a category builder was never ended.
	ErrUnclosed = errors.New("category builder not ended")
)

// Builder declares one level of a configuration tree.
type Builder struct {
	parent *Builder
	id     string
	cat    *tree.Category
	last   tree.Option
	open   int

	// Root only.
	info tree.Info
	err  error
}

// New starts a root builder. The mod id derived from name is its
// lowercase form.
func New(name, description string) *Builder {
	return &Builder{
		id:   strings.ToLower(name),
		cat:  tree.NewCategory(name, description),
		info: tree.Info{Name: name, Description: description},
	}
}

// ModID returns the id derived from the root name.
func (b *Builder) ModID() string { return b.root().id }

// Info returns the mod metadata declared on the root.
func (b *Builder) Info() tree.Info { return b.root().info }

// WithIcon sets the mod icon identifier.
func (b *Builder) WithIcon(ident string) *Builder {
	id, err := tree.ParseIdentifier(ident)
	if err != nil {
		b.fail(fmt.Errorf("icon: %w", err))
		return b
	}
	b.root().info.Icon = id
	return b
}

// Err returns the first declaration error, if any.
func (b *Builder) Err() error { return b.root().err }

// Category starts a nested category and returns its builder. Call End on
// the returned builder to get back to b. The category takes its display
// position now, not when End is called.
func (b *Builder) Category(id, title, description string) *Builder {
	child := &Builder{parent: b, id: id, cat: tree.NewCategory(title, description)}
	if err := b.cat.AddCategory(id, child.cat); err != nil {
		b.fail(fmt.Errorf("category %q: %w", id, err))
	}
	b.open++
	return child
}

// CategoryFunc declares a nested category populated by fn and returns b.
func (b *Builder) CategoryFunc(id, title, description string, fn func(*Builder)) *Builder {
	child := b.Category(id, title, description)
	if fn != nil {
		fn(child)
	}
	return child.End()
}

// End closes a category builder and returns its parent. On the root it
// returns the root.
func (b *Builder) End() *Builder {
	if b.parent == nil {
		return b
	}
	if b.open > 0 {
		b.fail(fmt.Errorf("%w: inside %q", ErrUnclosed, b.id))
	}
	b.parent.open--
	return b.parent
}

// Build returns the finished root category along with the first
// declaration error.
func (b *Builder) Build() (*tree.Category, error) {
	if b.parent != nil {
		return nil, ErrNotRoot
	}
	if b.err != nil {
		return nil, b.err
	}
	if b.open > 0 {
		return nil, ErrUnclosed
	}
	return b.cat, nil
}

// MustBuild is like Build but panics on error. Useful for trees declared
// at init time.
func (b *Builder) MustBuild() *tree.Category {
	root, err := b.Build()
	if err != nil {
		panic(err)
	}
	return root
}

// Toggle declares a boolean option.
func (b *Builder) Toggle(id, label string, def bool) *Builder {
	return b.Option(tree.NewToggle(id, label, def))
}

// Text declares a string option.
func (b *Builder) Text(id, label, def string) *Builder {
	return b.Option(tree.NewText(id, label, def))
}

// Slider declares a numeric option on [min, max], nudged by step and
// rounded to precision decimals.
func (b *Builder) Slider(id, label string, def, min, max, step float64, precision int) *Builder {
	s, err := tree.NewSlider(id, label, def, min, max, step, precision)
	if err != nil {
		b.fail(err)
		return b
	}
	return b.Option(s)
}

// Dropdown declares a choice option. A default missing from choices
// becomes the first choice.
func (b *Builder) Dropdown(id, label string, choices []string, def string) *Builder {
	return b.Option(tree.NewDropdown(id, label, choices, def))
}

// Color declares a 24-bit RGB option.
func (b *Builder) Color(id, label string, rgb int) *Builder {
	return b.Option(tree.NewColor(id, label, rgb))
}

// List declares a string list option. childLabel names one entry.
func (b *Builder) List(id, label, childLabel string, defaults ...string) *Builder {
	return b.Option(tree.NewList(id, label, childLabel, defaults...))
}

// Item declares an item identifier option.
func (b *Builder) Item(id, label, ident string) *Builder {
	def, err := tree.ParseIdentifier(ident)
	if err != nil {
		b.fail(fmt.Errorf("item %q: %w", id, err))
		return b
	}
	return b.Option(tree.NewItem(id, label, def))
}

// Option adds a pre-built option.
func (b *Builder) Option(opt tree.Option) *Builder {
	if err := b.cat.AddOption(opt); err != nil {
		b.fail(err)
		return b
	}
	b.last = opt
	return b
}

// Describe sets the description of the most recently declared option.
func (b *Builder) Describe(text string) *Builder {
	type describer interface{ SetDescription(string) }
	if d, ok := b.last.(describer); ok {
		d.SetDescription(text)
	}
	return b
}

// MaxLength limits the most recently declared text option.
func (b *Builder) MaxLength(n int) *Builder {
	if t, ok := b.last.(*tree.Text); ok {
		t.SetMaxLength(n)
	}
	return b
}

func (b *Builder) root() *Builder {
	r := b
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (b *Builder) fail(err error) {
	if r := b.root(); r.err == nil {
		r.err = err
	}
}
