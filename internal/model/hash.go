package model

import (
	"fmt"
	"hash"
	"hash/fnv"
	"strconv"

	"github.com/google/go-cmp/cmp"
)

// Equal reports whether a and b are structurally identical, declared names
// included.
func Equal(a, b DataType) bool {
	return cmp.Equal(a, b)
}

// Hash computes a structural hash of dt consistent with Equal: equal data
// types hash equally. Collisions are possible; confirm with Equal.
func Hash(dt DataType) uint64 {
	h := fnv.New64a()
	hashDataType(h, dt)
	return h.Sum64()
}

func hashDataType(h hash.Hash64, dt DataType) {
	if dt == nil {
		writeString(h, "nil")
		return
	}

	writeString(h, string(dt.Kind()))
	base := dt.Base()
	writeString(h, base.Name)
	writeString(h, base.Description)
	writeString(h, strconv.FormatBool(base.IsNullable))

	switch t := dt.(type) {
	case String:
		writeString(h, t.Format)
		writeString(h, t.Pattern)
		hashDefault(h, t.Default)
		hashEnumerators(h, t.Enumerators)
	case Number:
		writeString(h, t.Format)
		hashDefault(h, t.Default)
		hashEnumerators(h, t.Enumerators)
	case Integer:
		writeString(h, t.Format)
		hashDefault(h, t.Default)
		hashEnumerators(h, t.Enumerators)
	case Boolean:
		hashDefault(h, t.Default)
		hashEnumerators(h, t.Enumerators)
	case Object:
		writeString(h, formatValue(t.Default))
		hashEnumerators(h, t.Enumerators)
		writeString(h, strconv.FormatBool(t.AdditionalProperties))
		for _, p := range t.Properties {
			writeString(h, p.Name)
			writeString(h, strconv.FormatBool(p.IsRequired))
			hashDataType(h, p.DataType)
		}
	case Array:
		writeString(h, formatValue(t.Default))
		hashEnumerators(h, t.Enumerators)
		hashDataType(h, t.ItemType)
	case OneOf:
		hashMembers(h, t.Default, t.Enumerators, t.DataTypes)
	case AnyOf:
		hashMembers(h, t.Default, t.Enumerators, t.DataTypes)
	case AllOf:
		hashMembers(h, t.Default, t.Enumerators, t.DataTypes)
	}
}

func hashMembers(h hash.Hash64, def any, enums []Enumerator[any], members []DataType) {
	writeString(h, formatValue(def))
	hashEnumerators(h, enums)
	writeString(h, strconv.Itoa(len(members)))
	for _, m := range members {
		hashDataType(h, m)
	}
}

func hashDefault[T any](h hash.Hash64, def *T) {
	if def == nil {
		writeString(h, "nil")
		return
	}
	writeString(h, formatValue(*def))
}

func hashEnumerators[T any](h hash.Hash64, enums []Enumerator[T]) {
	writeString(h, strconv.Itoa(len(enums)))
	for _, e := range enums {
		writeString(h, e.Name)
		writeString(h, strconv.FormatBool(e.IsNull))
		writeString(h, formatValue(e.Value))
	}
}

// formatValue renders v for hashing. Negative zero is written as zero since
// Equal does not tell them apart.
func formatValue(v any) string {
	return fmt.Sprintf("%v", positiveZero(v))
}

func positiveZero(v any) any {
	switch t := v.(type) {
	case float64:
		if t == 0 {
			return float64(0)
		}
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = positiveZero(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = positiveZero(item)
		}
		return out
	}
	return v
}

// writeString writes s with a terminator so adjacent fields cannot run
// together.
func writeString(h hash.Hash64, s string) {
	_, _ = h.Write([]byte(s))
	_, _ = h.Write([]byte{0})
}
