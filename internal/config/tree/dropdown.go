package tree

import "slices"

// Dropdown is a string option restricted to a fixed set of choices.
type Dropdown struct {
	base
	choices []string
	value   string
	def     string
}

// NewDropdown creates a dropdown. A default missing from choices is
// inserted at index 0. NewDropdown with an empty default selects the first
// choice, or "" when there are none.
func NewDropdown(id, label string, choices []string, def string) *Dropdown {
	cs := slices.Clone(choices)
	if def == "" && len(cs) > 0 {
		def = cs[0]
	}
	if !slices.Contains(cs, def) {
		cs = slices.Insert(cs, 0, def)
	}
	return &Dropdown{base: newBase(id, label), choices: cs, value: def, def: def}
}

// Kind returns KindDropdown.
func (d *Dropdown) Kind() Kind { return KindDropdown }

// Value returns the selected choice.
func (d *Dropdown) Value() any { return d.value }

// Default returns the default choice.
func (d *Dropdown) Default() any { return d.def }

// IsDefault reports whether the default is selected.
func (d *Dropdown) IsDefault() bool { return d.value == d.def }

// Reset selects the default.
func (d *Dropdown) Reset() { d.Set(d.def) }

// Choices returns a copy of the choice set in display order.
func (d *Dropdown) Choices() []string { return slices.Clone(d.choices) }

// Len returns the number of choices.
func (d *Dropdown) Len() int { return len(d.choices) }

// ChoiceAt returns the choice at i, or "" when out of range.
func (d *Dropdown) ChoiceAt(i int) string {
	if i < 0 || i >= len(d.choices) {
		return ""
	}
	return d.choices[i]
}

// Get returns the selected choice.
func (d *Dropdown) Get() string { return d.value }

// Set selects v. Values outside the choice set are rejected and false is
// returned.
func (d *Dropdown) Set(v string) bool {
	if !slices.Contains(d.choices, v) {
		return false
	}
	if v != d.value {
		old := d.value
		d.value = v
		d.changed(d, old, v)
	}
	return true
}

// SelectedIndex returns the index of the selection, 0 if not found.
func (d *Dropdown) SelectedIndex() int {
	return max(0, slices.Index(d.choices, d.value))
}

// SetSelectedIndex selects the choice at i. Out of range is a no-op.
func (d *Dropdown) SetSelectedIndex(i int) {
	if i >= 0 && i < len(d.choices) {
		d.Set(d.choices[i])
	}
}

// Cycle advances the selection by n positions, wrapping around.
func (d *Dropdown) Cycle(n int) {
	if len(d.choices) == 0 {
		return
	}
	i := (d.SelectedIndex() + n) % len(d.choices)
	if i < 0 {
		i += len(d.choices)
	}
	d.SetSelectedIndex(i)
}
