package codec

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/modernconfig/internal/config/tree"
)

// ErrNotObject indicates a document that is not a JSON object.
var ErrNotObject = errors.New("document is not a JSON object")

// Report summarises a decode. Paths are dot-joined key paths.
type Report struct {
	// Applied lists options whose value was taken from the document.
	// The option may still have clamped the value.
	Applied []string
	// Skipped lists keys present in both tree and document whose value had
	// the wrong shape or could not be coerced.
	Skipped []string
	// Unknown lists document keys with no counterpart in the tree.
	Unknown []string
}

// Decode applies the values in data to cat.
func Decode(cat *tree.Category, data []byte) (Report, error) {
	var r Report
	if !gjson.ValidBytes(data) {
		return r, ErrNotObject
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return r, ErrNotObject
	}
	decodeCategory(cat, doc, "", &r)
	return r, nil
}

func decodeCategory(cat *tree.Category, obj gjson.Result, prefix string, r *Report) {
	obj.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		n, ok := cat.Child(key)
		switch {
		case !ok:
			r.Unknown = append(r.Unknown, path)
		case n.Category != nil:
			if v.IsObject() {
				decodeCategory(n.Category, v, path, r)
			} else {
				r.Skipped = append(r.Skipped, path)
			}
		case n.Option != nil:
			if v.IsObject() || v.Type == gjson.Null || !DecodeValue(n.Option, v) {
				r.Skipped = append(r.Skipped, path)
			} else {
				r.Applied = append(r.Applied, path)
			}
		}
		return true
	})
}

// DecodeValue coerces v to the type of opt and sets it. It reports false
// when v cannot be coerced or the option rejected it.
func DecodeValue(opt tree.Option, v gjson.Result) bool {
	switch o := opt.(type) {
	case *tree.Toggle:
		b, ok := coerceBool(v)
		if ok {
			o.Set(b)
		}
		return ok
	case *tree.Text:
		switch v.Type {
		case gjson.String:
			o.Set(v.Str)
		case gjson.Number, gjson.True, gjson.False:
			o.Set(v.Raw)
		default:
			return false
		}
		return true
	case *tree.Slider:
		f, ok := coerceFloat(v)
		if ok {
			o.Set(f)
		}
		return ok
	case *tree.Color:
		c, ok := coerceColor(v)
		if ok {
			o.Set(c)
		}
		return ok
	case *tree.Dropdown:
		return v.Type == gjson.String && o.Set(v.Str)
	case *tree.List:
		if !v.IsArray() {
			return false
		}
		var items []string
		for _, e := range v.Array() {
			if e.Type == gjson.String {
				items = append(items, e.Str)
			}
		}
		o.Set(items)
		return true
	case *tree.Item:
		return v.Type == gjson.String && o.SetString(v.Str)
	default:
		return false
	}
}

func coerceBool(v gjson.Result) (bool, bool) {
	switch v.Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	case gjson.String:
		b, err := strconv.ParseBool(strings.TrimSpace(v.Str))
		return b, err == nil
	default:
		return false, false
	}
}

func coerceFloat(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Num, true
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceColor(v gjson.Result) (int, bool) {
	switch v.Type {
	case gjson.Number:
		return int(v.Int()), true
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if strings.HasPrefix(s, "#") {
			return tree.ParseHex(s)
		}
		i, err := strconv.ParseInt(s, 0, 64)
		return int(i), err == nil
	default:
		return 0, false
	}
}
