package tree

import (
	"fmt"
	"slices"
)

// Node is one child of a category: exactly one of Option or Category is
// set.
type Node struct {
	Option   Option
	Category *Category
}

// IsOption reports whether the node holds an option.
func (n Node) IsOption() bool { return n.Option != nil }

// IsCategory reports whether the node holds a category.
func (n Node) IsCategory() bool { return n.Category != nil }

// Category is a titled group of options and sub-categories. Children keep
// insertion order, which is also display order.
type Category struct {
	title       string
	description string
	keys        []string
	nodes       map[string]Node
	parent      *Category
}

// NewCategory creates an empty category.
func NewCategory(title, description string) *Category {
	return &Category{
		title:       title,
		description: description,
		nodes:       make(map[string]Node),
	}
}

// Title returns the display title.
func (c *Category) Title() string { return c.title }

// Description returns the display description.
func (c *Category) Description() string { return c.description }

// Len returns the number of direct children.
func (c *Category) Len() int { return len(c.keys) }

// Keys returns the child keys in display order.
func (c *Category) Keys() []string { return slices.Clone(c.keys) }

// Child returns the direct child with the given key.
func (c *Category) Child(key string) (Node, bool) {
	n, ok := c.nodes[key]
	return n, ok
}

// AddOption inserts opt under opt.ID(). An existing child with the same
// key is replaced in place.
func (c *Category) AddOption(opt Option) error {
	if opt == nil {
		return fmt.Errorf("%w: nil option", ErrInvalidValue)
	}
	if opt.ID() == "" {
		return ErrEmptyID
	}
	c.put(opt.ID(), Node{Option: opt})
	return nil
}

// AddCategory inserts sub under key. sub must not already belong to a
// category and must not be c or one of its ancestors.
func (c *Category) AddCategory(key string, sub *Category) error {
	if key == "" {
		return ErrEmptyID
	}
	if sub == nil {
		return fmt.Errorf("%w: nil category", ErrInvalidValue)
	}
	for p := c; p != nil; p = p.parent {
		if p == sub {
			return fmt.Errorf("%w: %q", ErrCycle, key)
		}
	}
	if sub.parent != nil {
		return fmt.Errorf("%w: %q", ErrAttached, key)
	}
	sub.parent = c
	c.put(key, Node{Category: sub})
	return nil
}

func (c *Category) put(key string, n Node) {
	if old, ok := c.nodes[key]; ok {
		if old.Category != nil && old.Category != n.Category {
			old.Category.parent = nil
		}
	} else {
		c.keys = append(c.keys, key)
	}
	c.nodes[key] = n
}

// Sub resolves a nested category. An empty path returns c itself.
func (c *Category) Sub(path ...string) (*Category, bool) {
	cur := c
	for _, key := range path {
		n, ok := cur.nodes[key]
		if !ok || n.Category == nil {
			return nil, false
		}
		cur = n.Category
	}
	return cur, true
}

// Lookup resolves an option by its key path. Missing keys, an empty path,
// or a path running through an option report false.
func (c *Category) Lookup(path ...string) (Option, bool) {
	if len(path) == 0 {
		return nil, false
	}
	parent, ok := c.Sub(path[:len(path)-1]...)
	if !ok {
		return nil, false
	}
	n, ok := parent.nodes[path[len(path)-1]]
	if !ok || n.Option == nil {
		return nil, false
	}
	return n.Option, true
}

// WalkFunc is called for every node with its full key path.
// Returning SkipCategory from a category node skips its children.
type WalkFunc func(path []string, n Node) error

// Walk visits every node depth-first in display order.
func (c *Category) Walk(fn WalkFunc) error {
	err := c.walk(nil, fn)
	if err == SkipCategory {
		return nil
	}
	return err
}

func (c *Category) walk(prefix []string, fn WalkFunc) error {
	for _, key := range c.keys {
		n := c.nodes[key]
		path := append(slices.Clone(prefix), key)
		err := fn(path, n)
		if err == SkipCategory {
			continue
		}
		if err != nil {
			return err
		}
		if n.Category != nil {
			if err := n.Category.walk(path, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Options returns every option with its path, in display order.
func (c *Category) Options() []Entry {
	var out []Entry
	_ = c.Walk(func(path []string, n Node) error {
		if n.Option != nil {
			out = append(out, Entry{Path: path, Option: n.Option})
		}
		return nil
	})
	return out
}

// Entry pairs an option with its key path.
type Entry struct {
	Path   []string
	Option Option
}

// Info describes the mod owning a tree.
type Info struct {
	Name        string
	Description string
	Icon        Identifier
}
