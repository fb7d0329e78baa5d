package buildconfig

import (
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"
)

// Number is a numeric scalar from a build description. It keeps the text the
// user wrote, so version pins like 7.0 or 5.10 decode into string options
// unchanged. Numeric options still decode from it.
type Number string

func (n Number) String() string {
	return string(n)
}

// decodeDocument turns a YAML document into the generic mapping a Config
// holds. An empty document yields an empty mapping.
func decodeDocument(data []byte) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	v, err := nodeValue(&doc)
	if err != nil {
		return nil, err
	}
	switch m := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return m, nil
	default:
		return nil, fmt.Errorf("top level must be a mapping, got %T", v)
	}
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := nodeValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return mappingValue(n)
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int", "!!float":
			return Number(n.Value), nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

// mappingValue applies merge keys ("<<") first so explicit keys win.
func mappingValue(n *yaml.Node) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].ShortTag() == "!!merge" {
			if err := mergeInto(out, n.Content[i+1]); err != nil {
				return nil, err
			}
		}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.ShortTag() == "!!merge" {
			continue
		}
		v, err := nodeValue(value)
		if err != nil {
			return nil, err
		}
		out[key.Value] = v
	}
	return out, nil
}

// mergeInto copies a merged mapping into out. In a list of mappings the
// earlier entries take precedence.
func mergeInto(out map[string]any, n *yaml.Node) error {
	if n.Kind == yaml.SequenceNode {
		for i := len(n.Content) - 1; i >= 0; i-- {
			if err := mergeInto(out, n.Content[i]); err != nil {
				return err
			}
		}
		return nil
	}
	v, err := nodeValue(n)
	if err != nil {
		return err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("line %d: merge value must be a mapping", n.Line)
	}
	maps.Copy(out, m)
	return nil
}
