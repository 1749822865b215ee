// Package codec maps configuration trees to and from their persisted JSON
// form.
//
// Encoding writes keys in display order. Decoding is forgiving: unknown
// keys are ignored, keys missing from the document keep their current
// value, and values of the wrong shape or type are skipped. Only a document
// that is not a JSON object at all is reported as an error.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/modernconfig/internal/config/tree"
)

// DefaultIndent is the indentation used for persisted files.
const DefaultIndent = "  "

// pathSyntax lists characters with meaning in sjson paths.
const pathSyntax = `.*?|#@\:!=<>%`

// Encoder renders trees as JSON.
type Encoder struct {
	Indent string
}

// Encode renders cat with DefaultIndent.
func Encode(cat *tree.Category) ([]byte, error) {
	return Encoder{Indent: DefaultIndent}.Encode(cat)
}

// Encode renders cat as a pretty-printed JSON object ending in a newline.
func (e Encoder) Encode(cat *tree.Category) ([]byte, error) {
	doc := []byte("{}")
	err := cat.Walk(func(path []string, n tree.Node) error {
		key := joinPath(path)
		var err error
		if n.Category != nil {
			doc, err = sjson.SetRawBytes(doc, key, []byte("{}"))
		} else {
			doc, err = sjson.SetBytes(doc, key, EncodeValue(n.Option))
		}
		if err != nil {
			return fmt.Errorf("encoding %s: %w", strings.Join(path, "."), err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	indent := e.Indent
	if indent == "" {
		indent = DefaultIndent
	}
	return pretty.PrettyOptions(doc, &pretty.Options{
		Width:  80,
		Indent: indent,
	}), nil
}

// EncodeValue returns the JSON-native value persisted for opt.
func EncodeValue(opt tree.Option) any {
	switch o := opt.(type) {
	case *tree.Toggle:
		return o.Get()
	case *tree.Text:
		return o.Get()
	case *tree.Slider:
		return o.Get()
	case *tree.Dropdown:
		return o.Get()
	case *tree.Color:
		return o.Get()
	case *tree.List:
		if o.Len() == 0 {
			return []string{}
		}
		return o.Items()
	case *tree.Item:
		return o.Get().String()
	default:
		return opt.Value()
	}
}

// joinPath builds an sjson path whose components are always object keys.
func joinPath(path []string) string {
	parts := make([]string, len(path))
	for i, key := range path {
		parts[i] = escapeKey(key)
	}
	return strings.Join(parts, ".")
}

func escapeKey(key string) string {
	var b strings.Builder
	// A numeric component would otherwise address an array index.
	if _, err := strconv.Atoi(key); err == nil {
		b.WriteByte(':')
	}
	for _, r := range key {
		if strings.ContainsRune(pathSyntax, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
