package registry

import (
	"github.com/dshills/modernconfig/internal/config"
	"github.com/dshills/modernconfig/internal/config/tree"
)

// Typed access to option values by dot-separated path. Each getter returns
// ErrOptionNotFound for an unknown path and a *config.TypeError (matching
// ErrTypeMismatch) when the option has another kind.

// Bool returns the value of a toggle.
func (c *Config) Bool(path string) (bool, error) {
	o, err := lookupAs[*tree.Toggle](c, path, tree.KindToggle)
	if err != nil {
		return false, err
	}
	return o.Get(), nil
}

// String returns the value of a text, dropdown or item option.
func (c *Config) String(path string) (string, error) {
	opt, err := c.Lookup(path)
	if err != nil {
		return "", err
	}
	switch o := opt.(type) {
	case *tree.Text:
		return o.Get(), nil
	case *tree.Dropdown:
		return o.Get(), nil
	case *tree.Item:
		return o.Get().String(), nil
	default:
		return "", &config.TypeError{Path: path, Expected: tree.KindText, Actual: opt.Kind()}
	}
}

// Float returns the value of a slider.
func (c *Config) Float(path string) (float64, error) {
	o, err := lookupAs[*tree.Slider](c, path, tree.KindSlider)
	if err != nil {
		return 0, err
	}
	return o.Get(), nil
}

// Int returns the value of a slider rounded toward zero, or the RGB value
// of a color.
func (c *Config) Int(path string) (int, error) {
	opt, err := c.Lookup(path)
	if err != nil {
		return 0, err
	}
	switch o := opt.(type) {
	case *tree.Slider:
		return int(o.Get()), nil
	case *tree.Color:
		return o.Get(), nil
	default:
		return 0, &config.TypeError{Path: path, Expected: tree.KindSlider, Actual: opt.Kind()}
	}
}

// Color returns the RGB value of a color option.
func (c *Config) Color(path string) (int, error) {
	o, err := lookupAs[*tree.Color](c, path, tree.KindColor)
	if err != nil {
		return 0, err
	}
	return o.Get(), nil
}

// Strings returns a copy of a list option's entries.
func (c *Config) Strings(path string) ([]string, error) {
	o, err := lookupAs[*tree.List](c, path, tree.KindList)
	if err != nil {
		return nil, err
	}
	return o.Items(), nil
}

// Identifier returns the value of an item option.
func (c *Config) Identifier(path string) (tree.Identifier, error) {
	o, err := lookupAs[*tree.Item](c, path, tree.KindItem)
	if err != nil {
		return tree.Identifier{}, err
	}
	return o.Get(), nil
}

func lookupAs[T tree.Option](c *Config, path string, want tree.Kind) (T, error) {
	var zero T
	opt, err := c.Lookup(path)
	if err != nil {
		return zero, err
	}
	o, ok := opt.(T)
	if !ok {
		return zero, &config.TypeError{Path: path, Expected: want, Actual: opt.Kind()}
	}
	return o, nil
}
