package codec

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/modernconfig/internal/config/tree"
)

// Values returns the tree as nested maps of persisted values.
func Values(cat *tree.Category) map[string]any {
	out := make(map[string]any, cat.Len())
	for _, key := range cat.Keys() {
		n, _ := cat.Child(key)
		if n.Category != nil {
			out[key] = Values(n.Category)
		} else {
			out[key] = EncodeValue(n.Option)
		}
	}
	return out
}

// EncodeYAML renders the tree as YAML, keeping display order.
func EncodeYAML(cat *tree.Category) ([]byte, error) {
	node, err := yamlMapping(cat)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func yamlMapping(cat *tree.Category) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range cat.Keys() {
		n, _ := cat.Child(key)

		var value *yaml.Node
		if n.Category != nil {
			sub, err := yamlMapping(n.Category)
			if err != nil {
				return nil, err
			}
			value = sub
		} else {
			value = &yaml.Node{}
			if err := value.Encode(EncodeValue(n.Option)); err != nil {
				return nil, fmt.Errorf("encoding %s: %w", key, err)
			}
		}
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			value,
		)
	}
	return m, nil
}

// EncodeTOML renders the tree as TOML. Categories become tables; TOML
// tables are written in key order, not display order.
func EncodeTOML(cat *tree.Category) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(Values(cat)); err != nil {
		return nil, fmt.Errorf("encoding toml: %w", err)
	}
	return buf.Bytes(), nil
}
