package serial

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// EncodeYAML writes doc as YAML. Arrays of scalars use flow style so matrices
// stay on one line.
func EncodeYAML(w io.Writer, doc *Value) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(doc)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func toYAML(v *Value) *yaml.Node {
	if v == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch v.Kind {
	case KindBool:
		s := "false"
		if v.Bool {
			s = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: s}
	case KindNumber:
		tag := "!!int"
		if strings.ContainsAny(v.Number, ".eEnN") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.Number}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str}
	case KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		flat := true
		for _, item := range v.Items {
			n.Content = append(n.Content, toYAML(item))
			flat = flat && item.scalar()
		}
		if flat {
			n.Style = yaml.FlowStyle
		}
		return n
	case KindObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v.Members {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Name},
				toYAML(m.Value),
			)
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// DecodeYAML parses a YAML document into an ordered value tree.
func DecodeYAML(r io.Reader) (*Value, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	v, err := fromYAML(&root)
	if err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return v, nil
}

func fromYAML(n *yaml.Node) (*Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &Value{Kind: KindNull}, nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.SequenceNode:
		arr := NewArray()
		for _, c := range n.Content {
			item, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			arr.Append(item)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			item, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, item)
		}
		return obj, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return &Value{Kind: KindNull}, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, err
			}
			return &Value{Kind: KindBool, Bool: b}, nil
		case "!!int", "!!float":
			return newNumber(n.Value), nil
		default:
			return &Value{Kind: KindString, Str: n.Value}, nil
		}
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}
