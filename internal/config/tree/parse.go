package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseInto sets opt from its textual form, as typed into a text field or
// passed on a command line. Lists take comma-separated entries; colors take
// "#RRGGBB", "0xRRGGBB" or decimal.
func ParseInto(opt Option, s string) error {
	switch o := opt.(type) {
	case *Toggle:
		v, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
		}
		o.Set(v)
	case *Text:
		o.Set(s)
	case *Slider:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
		}
		o.Set(v)
	case *Dropdown:
		if !o.Set(s) {
			return fmt.Errorf("%w: %q is not one of %v", ErrInvalidValue, s, o.choices)
		}
	case *Color:
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "#") {
			if !o.SetHex(s) {
				return fmt.Errorf("%w: %q is not a color", ErrInvalidValue, s)
			}
			return nil
		}
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a color", ErrInvalidValue, s)
		}
		o.Set(int(v))
	case *List:
		if strings.TrimSpace(s) == "" {
			o.Set(nil)
			return nil
		}
		o.Set(strings.Split(s, ","))
	case *Item:
		if !o.SetString(s) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
		}
	default:
		return fmt.Errorf("%w: unsupported option type %T", ErrInvalidValue, opt)
	}
	return nil
}

// Format renders the current value of opt in the form ParseInto accepts.
func Format(opt Option) string {
	switch o := opt.(type) {
	case *Toggle:
		return strconv.FormatBool(o.Get())
	case *Text:
		return o.Get()
	case *Slider:
		return o.Format()
	case *Dropdown:
		return o.Get()
	case *Color:
		return o.Hex()
	case *List:
		return strings.Join(o.Items(), ",")
	case *Item:
		return o.Get().String()
	default:
		return fmt.Sprint(opt.Value())
	}
}
