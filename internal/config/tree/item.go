package tree

import (
	"fmt"
	"strings"
)

// DefaultNamespace is assumed for identifiers written without one.
const DefaultNamespace = "minecraft"

// Identifier names a registry entry as namespace:path.
type Identifier struct {
	Namespace string
	Path      string
}

// ParseIdentifier parses "namespace:path" or a bare "path".
// Namespaces allow [a-z0-9_.-]; paths additionally allow '/'.
func ParseIdentifier(s string) (Identifier, error) {
	ns, p, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		ns, p = DefaultNamespace, ns
	}
	if ns == "" {
		ns = DefaultNamespace
	}
	if !validIdentPart(ns, false) || !validIdentPart(p, true) {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return Identifier{Namespace: ns, Path: p}, nil
}

// MustIdentifier is like ParseIdentifier but panics on error.
func MustIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns "namespace:path".
func (id Identifier) String() string {
	if id.IsZero() {
		return ""
	}
	return id.Namespace + ":" + id.Path
}

// IsZero reports whether the identifier is unset.
func (id Identifier) IsZero() bool {
	return id.Namespace == "" && id.Path == ""
}

func validIdentPart(s string, allowSlash bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
		case r == '/' && allowSlash:
		default:
			return false
		}
	}
	return true
}

// Item is an option holding an item identifier. Resolving the identifier
// against the game's item registry is left to the host.
type Item struct {
	base
	value Identifier
	def   Identifier
}

// NewItem creates an item option.
func NewItem(id, label string, def Identifier) *Item {
	return &Item{base: newBase(id, label), value: def, def: def}
}

// Kind returns KindItem.
func (it *Item) Kind() Kind { return KindItem }

// Value returns the identifier as a string.
func (it *Item) Value() any { return it.value.String() }

// Default returns the default identifier as a string.
func (it *Item) Default() any { return it.def.String() }

// IsDefault reports whether the default item is selected.
func (it *Item) IsDefault() bool { return it.value == it.def }

// Reset restores the default item.
func (it *Item) Reset() { it.Set(it.def) }

// Get returns the identifier.
func (it *Item) Get() Identifier { return it.value }

// Set selects an item. Zero identifiers are rejected.
func (it *Item) Set(v Identifier) bool {
	if v.IsZero() {
		return false
	}
	if v != it.value {
		old := it.value
		it.value = v
		it.changed(it, old.String(), v.String())
	}
	return true
}

// SetString parses s and selects it. Invalid identifiers are a no-op.
func (it *Item) SetString(s string) bool {
	v, err := ParseIdentifier(s)
	if err != nil {
		return false
	}
	return it.Set(v)
}
