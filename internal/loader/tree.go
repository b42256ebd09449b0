package loader

import (
	"fmt"

	"github.com/pb33f/libopenapi/orderedmap"
	"go.yaml.in/yaml/v4"
)

// Mapping is a raw document mapping. Keys keep their document order.
type Mapping = orderedmap.Map[string, any]

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping {
	return orderedmap.New[string, any]()
}

// Parse decodes a YAML or JSON document into a raw tree made of *Mapping,
// []any and scalar values (string, int, float64, bool, nil).
func Parse(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, fmt.Errorf("empty document")
	}
	d := &decoder{expanding: make(map[*yaml.Node]bool)}
	return d.fromNode(&doc)
}

// maxAliasNodes caps how many nodes alias expansion may produce in one
// document.
const maxAliasNodes = 100_000

type decoder struct {
	expanding  map[*yaml.Node]bool
	aliasDepth int
	aliasNodes int
}

func (d *decoder) fromNode(n *yaml.Node) (any, error) {
	if d.aliasDepth > 0 {
		d.aliasNodes++
		if d.aliasNodes > maxAliasNodes {
			return nil, fmt.Errorf("line %d: document contains excessive aliasing", n.Line)
		}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.fromNode(n.Content[0])

	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("line %d: unknown anchor %q", n.Line, n.Value)
		}
		if d.expanding[n.Alias] {
			return nil, fmt.Errorf("line %d: anchor %q value contains itself", n.Line, n.Value)
		}
		d.expanding[n.Alias] = true
		d.aliasDepth++
		v, err := d.fromNode(n.Alias)
		d.aliasDepth--
		delete(d.expanding, n.Alias)
		return v, err

	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i < len(n.Content)-1; i += 2 {
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			value, err := d.fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key.Value, value)
		}
		return m, nil

	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := d.fromNode(c)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil

	case yaml.ScalarNode:
		return scalar(n)
	}

	return nil, fmt.Errorf("line %d: unsupported node kind %v", n.Line, n.Kind)
}

func scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int
		if err := n.Decode(&i); err == nil {
			return i, nil
		}
		// Out of range for int; keep the numeric value.
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	}
	return n.Value, nil
}

// Plain converts a raw tree into plain Go values, replacing every *Mapping
// with a map[string]any. Used where key order no longer matters.
func Plain(v any) any {
	switch t := v.(type) {
	case *Mapping:
		out := make(map[string]any, t.Len())
		for k, item := range t.FromOldest() {
			out[k] = Plain(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Plain(item)
		}
		return out
	}
	return v
}

// String returns the string value stored under key, or "" when it is absent
// or not a string.
func String(m *Mapping, key string) string {
	if m == nil {
		return ""
	}
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Bool returns the boolean stored under key. Absent keys are false.
func Bool(m *Mapping, key string) bool {
	if m == nil {
		return false
	}
	v, ok := m.Get(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Child returns the mapping stored under key, or nil.
func Child(m *Mapping, key string) *Mapping {
	if m == nil {
		return nil
	}
	v, ok := m.Get(key)
	if !ok {
		return nil
	}
	child, _ := v.(*Mapping)
	return child
}

// Has reports whether key is present in m.
func Has(m *Mapping, key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.Get(key)
	return ok
}
