package tree

import (
	"slices"
	"strings"
)

// DefaultChildLabel names list entries when no label is given.
const DefaultChildLabel = "Item"

// List is an ordered sequence of unique, trimmed, non-empty strings.
type List struct {
	base
	items      []string
	def        []string
	childLabel string
}

// NewList creates a list option. Defaults are sanitised like any other
// input.
func NewList(id, label, childLabel string, defaults ...string) *List {
	if childLabel == "" {
		childLabel = DefaultChildLabel
	}
	def := sanitize(defaults)
	return &List{
		base:       newBase(id, label),
		items:      slices.Clone(def),
		def:        def,
		childLabel: childLabel,
	}
}

// Kind returns KindList.
func (l *List) Kind() Kind { return KindList }

// Value returns a copy of the items.
func (l *List) Value() any { return l.Items() }

// Default returns a copy of the default items.
func (l *List) Default() any { return slices.Clone(l.def) }

// IsDefault reports whether the items equal the defaults.
func (l *List) IsDefault() bool { return slices.Equal(l.items, l.def) }

// Reset restores the default items.
func (l *List) Reset() { l.Set(l.def) }

// ChildLabel names a single entry, e.g. "Player".
func (l *List) ChildLabel() string { return l.childLabel }

// Items returns a copy of the entries.
func (l *List) Items() []string { return slices.Clone(l.items) }

// Len returns the number of entries.
func (l *List) Len() int { return len(l.items) }

// Contains reports whether item is present after trimming.
func (l *List) Contains(item string) bool {
	return slices.Contains(l.items, strings.TrimSpace(item))
}

// Set replaces all entries. Blank entries and duplicates are dropped.
func (l *List) Set(items []string) {
	l.replace(sanitize(items))
}

// Add appends item if it is non-blank and not already present.
func (l *List) Add(item string) bool {
	item = strings.TrimSpace(item)
	if item == "" || slices.Contains(l.items, item) {
		return false
	}
	l.replace(append(slices.Clone(l.items), item))
	return true
}

// RemoveAt deletes the entry at i. Out of range is a no-op.
func (l *List) RemoveAt(i int) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.replace(slices.Delete(slices.Clone(l.items), i, i+1))
	return true
}

// Remove deletes item if present.
func (l *List) Remove(item string) bool {
	return l.RemoveAt(slices.Index(l.items, strings.TrimSpace(item)))
}

// UpdateAt replaces the entry at i. Blank values and values duplicating
// another entry are rejected.
func (l *List) UpdateAt(i int, v string) bool {
	v = strings.TrimSpace(v)
	if i < 0 || i >= len(l.items) || v == "" {
		return false
	}
	if j := slices.Index(l.items, v); j >= 0 && j != i {
		return false
	}
	next := slices.Clone(l.items)
	next[i] = v
	l.replace(next)
	return true
}

func (l *List) replace(next []string) {
	if slices.Equal(next, l.items) {
		return
	}
	old := l.items
	l.items = next
	l.changed(l, slices.Clone(old), slices.Clone(next))
}

func sanitize(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || slices.Contains(out, item) {
			continue
		}
		out = append(out, item)
	}
	return out
}
