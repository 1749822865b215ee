package tree

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBMask limits colors to 24 bits.
const RGBMask = 0xFFFFFF

// Color is a 24-bit RGB option stored as 0xRRGGBB.
type Color struct {
	base
	value int
	def   int
}

// NewColor creates a color option. The default is masked to 24 bits.
func NewColor(id, label string, def int) *Color {
	def &= RGBMask
	return &Color{base: newBase(id, label), value: def, def: def}
}

// Kind returns KindColor.
func (c *Color) Kind() Kind { return KindColor }

// Value returns the current color.
func (c *Color) Value() any { return c.value }

// Default returns the default color.
func (c *Color) Default() any { return c.def }

// IsDefault reports whether the color is at its default.
func (c *Color) IsDefault() bool { return c.value == c.def }

// Reset restores the default.
func (c *Color) Reset() { c.Set(c.def) }

// Get returns the color as 0xRRGGBB.
func (c *Color) Get() int { return c.value }

// Set stores v masked to 24 bits.
func (c *Color) Set(v int) {
	v &= RGBMask
	if v == c.value {
		return
	}
	old := c.value
	c.value = v
	c.changed(c, old, v)
}

// Red returns the red component.
func (c *Color) Red() int { return (c.value >> 16) & 0xFF }

// Green returns the green component.
func (c *Color) Green() int { return (c.value >> 8) & 0xFF }

// Blue returns the blue component.
func (c *Color) Blue() int { return c.value & 0xFF }

// SetRGB sets the color from components, each clamped to [0, 255].
func (c *Color) SetRGB(r, g, b int) {
	c.Set(clampByte(r)<<16 | clampByte(g)<<8 | clampByte(b))
}

// Hex returns the color as "#RRGGBB".
func (c *Color) Hex() string {
	return fmt.Sprintf("#%06X", c.value)
}

// SetHex parses "#RRGGBB", "RRGGBB", "#RGB" or "RGB". Invalid input leaves
// the color unchanged and returns false.
func (c *Color) SetHex(s string) bool {
	v, ok := ParseHex(s)
	if !ok {
		return false
	}
	c.Set(v)
	return true
}

// HSV returns hue in [0, 360) and saturation and value in [0, 1].
func (c *Color) HSV() (h, s, v float64) {
	return c.colorful().Hsv()
}

// SetHSV sets the color from hue, saturation and value, as a color wheel
// picker reports them.
func (c *Color) SetHSV(h, s, v float64) {
	r, g, b := colorful.Hsv(h, s, v).Clamped().RGB255()
	c.SetRGB(int(r), int(g), int(b))
}

func (c *Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.Red()) / 255,
		G: float64(c.Green()) / 255,
		B: float64(c.Blue()) / 255,
	}
}

// ParseHex converts a hex color string to 0xRRGGBB.
func ParseHex(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return 0, false
	}
	for _, r := range s[1:] {
		if !isHexDigit(r) {
			return 0, false
		}
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return 0, false
	}
	r, g, b := col.RGB255()
	return int(r)<<16 | int(g)<<8 | int(b), true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func clampByte(v int) int {
	return max(0, min(255, v))
}
