package schema

import (
	"github.com/kolah/specmodel/internal/loader"
	"github.com/kolah/specmodel/internal/registry"
)

// TypeEquals matches schemas whose type is typ. An OpenAPI 3.1 type list
// matches when it holds typ and nothing else except "null".
func TypeEquals(typ string) registry.Predicate {
	return func(node any) bool {
		m, ok := node.(*loader.Mapping)
		if !ok || m == nil {
			return false
		}
		v, ok := m.Get("type")
		if !ok {
			return false
		}
		switch t := v.(type) {
		case string:
			return t == typ
		case []any:
			found := false
			for _, item := range t {
				switch item {
				case typ:
					found = true
				case "null":
				default:
					return false
				}
			}
			return found
		}
		return false
	}
}

// Contains matches schemas that declare key.
func Contains(key string) registry.Predicate {
	return func(node any) bool {
		m, ok := node.(*loader.Mapping)
		return ok && loader.Has(m, key)
	}
}
