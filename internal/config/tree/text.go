package tree

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Text is a free-form string option.
type Text struct {
	base
	value     string
	def       string
	maxLength int
}

// NewText creates a text option starting at its default.
func NewText(id, label, def string) *Text {
	return &Text{base: newBase(id, label), value: def, def: def}
}

// Kind returns KindText.
func (t *Text) Kind() Kind { return KindText }

// Value returns the current value.
func (t *Text) Value() any { return t.value }

// Default returns the default value.
func (t *Text) Default() any { return t.def }

// IsDefault reports whether the text is at its default.
func (t *Text) IsDefault() bool { return t.value == t.def }

// Reset restores the default.
func (t *Text) Reset() { t.Set(t.def) }

// Get returns the current text.
func (t *Text) Get() string { return t.value }

// MaxLength returns the limit in grapheme clusters, 0 when unlimited.
func (t *Text) MaxLength() int { return t.maxLength }

// SetMaxLength limits the text to n grapheme clusters. The current value
// is truncated if needed. n <= 0 removes the limit.
func (t *Text) SetMaxLength(n int) {
	if n < 0 {
		n = 0
	}
	t.maxLength = n
	t.Set(t.value)
}

// Set replaces the text, truncating it to MaxLength clusters.
func (t *Text) Set(v string) {
	v = truncateClusters(v, t.maxLength)
	if v == t.value {
		return
	}
	old := t.value
	t.value = v
	t.changed(t, old, v)
}

// truncateClusters cuts s after n user-perceived characters so combined
// emoji and accents are never split.
func truncateClusters(s string, n int) string {
	if n <= 0 || uniseg.GraphemeClusterCount(s) <= n {
		return s
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for i := 0; i < n && g.Next(); i++ {
		b.WriteString(g.Str())
	}
	return b.String()
}
