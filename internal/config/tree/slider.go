package tree

import (
	"fmt"
	"math"
	"strconv"
)

// MaxPrecision is the largest number of decimals a slider may keep.
const MaxPrecision = 10

// Slider is a numeric option bounded to [Min, Max] and rounded to a fixed
// number of decimals.
type Slider struct {
	base
	value     float64
	def       float64
	min       float64
	max       float64
	step      float64
	precision int
}

// NewSlider creates a slider. The default is clamped into range.
// step <= 0 falls back to one unit of precision.
func NewSlider(id, label string, def, min, max, step float64, precision int) (*Slider, error) {
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		return nil, fmt.Errorf("%w: slider %q min %v > max %v", ErrInvalidRange, id, min, max)
	}
	if precision < 0 || precision > MaxPrecision {
		return nil, fmt.Errorf("%w: slider %q precision %d", ErrInvalidRange, id, precision)
	}
	if math.IsNaN(def) {
		def = min
	}
	if step <= 0 || math.IsNaN(step) {
		step = math.Pow(10, -float64(precision))
	}
	s := &Slider{
		base:      newBase(id, label),
		min:       min,
		max:       max,
		step:      step,
		precision: precision,
	}
	s.def = s.normalize(def)
	s.value = s.def
	return s, nil
}

// Kind returns KindSlider.
func (s *Slider) Kind() Kind { return KindSlider }

// Value returns the current value.
func (s *Slider) Value() any { return s.value }

// Default returns the default value.
func (s *Slider) Default() any { return s.def }

// IsDefault reports whether the slider is at its default.
func (s *Slider) IsDefault() bool { return s.value == s.def }

// Reset restores the default.
func (s *Slider) Reset() { s.Set(s.def) }

// Min returns the lower bound.
func (s *Slider) Min() float64 { return s.min }

// Max returns the upper bound.
func (s *Slider) Max() float64 { return s.max }

// Step returns the nudge increment.
func (s *Slider) Step() float64 { return s.step }

// Precision returns the number of decimals kept.
func (s *Slider) Precision() int { return s.precision }

// Get returns the current value.
func (s *Slider) Get() float64 { return s.value }

// Set clamps v to [Min, Max] and rounds it to Precision decimals.
// NaN is ignored.
func (s *Slider) Set(v float64) {
	if math.IsNaN(v) {
		return
	}
	v = s.normalize(v)
	if v == s.value {
		return
	}
	old := s.value
	s.value = v
	s.changed(s, old, v)
}

// Nudge moves the value by n steps.
func (s *Slider) Nudge(n int) {
	s.Set(s.value + float64(n)*s.step)
}

// Fraction returns the position of the value inside the range, in [0, 1].
func (s *Slider) Fraction() float64 {
	if s.max == s.min {
		return 0
	}
	return (s.value - s.min) / (s.max - s.min)
}

// SetFraction positions the slider at f of its range, as a drag handle does.
func (s *Slider) SetFraction(f float64) {
	s.Set(s.min + f*(s.max-s.min))
}

// Format renders the value with Precision decimals.
func (s *Slider) Format() string {
	return strconv.FormatFloat(s.value, 'f', s.precision, 64)
}

func (s *Slider) normalize(v float64) float64 {
	return round(clamp(v, s.min, s.max), s.precision)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, precision int) float64 {
	if precision == 0 {
		return math.Round(v)
	}
	factor := math.Pow(10, float64(precision))
	return math.Round(v*factor) / factor
}
