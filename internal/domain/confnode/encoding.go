package confnode

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML parses a YAML mapping into a tree, keeping key order. Nested
// mappings become children built by factory.
func FromYAML(data []byte, factory Factory) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	n := New(factory)
	if len(doc.Content) == 0 {
		return n, nil
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config root must be a mapping (line %d)", root.Line)
	}
	if err := n.fillYAML(root); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Node) fillYAML(m *yaml.Node) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i].Value
		val := resolveAlias(m.Content[i+1])

		if val.Kind == yaml.MappingNode {
			child := n.newChild()
			if err := child.fillYAML(val); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			n.set(key, child)
			continue
		}

		var v any
		if err := val.Decode(&v); err != nil {
			return fmt.Errorf("decode %s (line %d): %w", key, val.Line, err)
		}
		n.set(key, v)
	}
	return nil
}

func resolveAlias(y *yaml.Node) *yaml.Node {
	for y.Kind == yaml.AliasNode && y.Alias != nil {
		y = y.Alias
	}
	return y
}

// MarshalYAML encodes the tree as an ordered YAML mapping.
func (n *Node) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range n.keys {
		var val yaml.Node
		if err := val.Encode(n.values[k]); err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		out.Content = append(out.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&val,
		)
	}
	return out, nil
}

// MarshalJSON encodes the tree as a JSON object in insertion order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range n.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		vb, err := json.Marshal(n.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
