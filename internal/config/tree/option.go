// Package tree provides the data model for mod configuration: typed
// option nodes grouped into ordered, nested categories.
//
// A tree is built once (usually through the builder package), handed to a
// registry, and then mutated in place as the user edits values. Options
// never raise errors on bad input; out-of-domain values are clamped or
// rejected and the previous value is kept.
package tree

// Kind identifies the value domain of an option.
type Kind uint8

const (
	// KindToggle is an on/off switch.
	KindToggle Kind = iota
	// KindText is a free-form string.
	KindText
	// KindSlider is a bounded number.
	KindSlider
	// KindDropdown is one choice from a fixed set.
	KindDropdown
	// KindColor is a 24-bit RGB color.
	KindColor
	// KindList is an ordered set of strings.
	KindList
	// KindItem is a namespaced item identifier.
	KindItem
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindToggle:
		return "toggle"
	case KindText:
		return "text"
	case KindSlider:
		return "slider"
	case KindDropdown:
		return "dropdown"
	case KindColor:
		return "color"
	case KindList:
		return "list"
	case KindItem:
		return "item"
	default:
		return "unknown"
	}
}

// Sink receives every effective value change of an option.
// The registry binds a sink that saves the owning tree and then notifies
// observers.
type Sink func(opt Option, oldValue, newValue any)

// Option is a single named, typed, user-editable setting.
type Option interface {
	// ID is the key of the option inside its category.
	ID() string
	// Label is the display text.
	Label() string
	// Description is the longer help text. Defaults to the label.
	Description() string
	// Kind reports the value domain.
	Kind() Kind
	// Value returns the current value as its natural Go type.
	Value() any
	// Default returns the default value.
	Default() any
	// IsDefault reports whether the current value equals the default.
	IsDefault() bool
	// Reset restores the default value.
	Reset()
	// Bind installs the change sink. A nil sink unbinds.
	Bind(sink Sink)
}

// base carries the fields shared by every option kind.
type base struct {
	id          string
	label       string
	description string
	sink        Sink
}

func newBase(id, label string) base {
	return base{id: id, label: label, description: label}
}

// ID returns the option key.
func (b *base) ID() string { return b.id }

// Label returns the display text.
func (b *base) Label() string { return b.label }

// Description returns the help text.
func (b *base) Description() string { return b.description }

// SetDescription replaces the help text.
func (b *base) SetDescription(d string) { b.description = d }

// Bind installs the change sink.
func (b *base) Bind(sink Sink) { b.sink = sink }

func (b *base) changed(opt Option, oldValue, newValue any) {
	if b.sink != nil {
		b.sink(opt, oldValue, newValue)
	}
}

// Toggle is a boolean option.
type Toggle struct {
	base
	value bool
	def   bool
}

// NewToggle creates a toggle starting at its default.
func NewToggle(id, label string, def bool) *Toggle {
	return &Toggle{base: newBase(id, label), value: def, def: def}
}

// Kind returns KindToggle.
func (t *Toggle) Kind() Kind { return KindToggle }

// Value returns the current value.
func (t *Toggle) Value() any { return t.value }

// Default returns the default value.
func (t *Toggle) Default() any { return t.def }

// IsDefault reports whether the toggle is at its default.
func (t *Toggle) IsDefault() bool { return t.value == t.def }

// Reset restores the default.
func (t *Toggle) Reset() { t.Set(t.def) }

// Get returns the current state.
func (t *Toggle) Get() bool { return t.value }

// Set changes the state.
func (t *Toggle) Set(v bool) {
	if v == t.value {
		return
	}
	old := t.value
	t.value = v
	t.changed(t, old, v)
}

// Flip inverts the state.
func (t *Toggle) Flip() { t.Set(!t.value) }
