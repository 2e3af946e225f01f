package export

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry is one metadata pair. Key and Value are Go expressions as written
// in the directive.
type Entry struct {
	Key   string
	Value string
}

// Metadata is an ordered list of pairs. It is written as a YAML mapping,
// which keeps the order on the way out and is read back in order.
type Metadata []Entry

// NewMetadata pairs up a flat list of expressions.
func NewMetadata(exprs []string) Metadata {
	if len(exprs) < 2 {
		return nil
	}

	md := make(Metadata, 0, len(exprs)/2)
	for i := 0; i+1 < len(exprs); i += 2 {
		md = append(md, Entry{Key: exprs[i], Value: exprs[i+1]})
	}

	return md
}

// MarshalYAML implements yaml.Marshaler.
func (md Metadata) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, e := range md {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value},
		)
	}

	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (md *Metadata) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("metadata: expected a mapping, got %v", node.Kind)
	}

	out := make(Metadata, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("metadata: line %d: keys and values must be scalars", k.Line)
		}

		out = append(out, Entry{Key: k.Value, Value: v.Value})
	}

	*md = out

	return nil
}
