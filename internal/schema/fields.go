package schema

import (
	"fmt"
	"math"
	"strconv"

	"github.com/kolah/specmodel/internal/loader"
	"github.com/kolah/specmodel/internal/model"
	"github.com/kolah/specmodel/internal/resolver"
)

const enumNamesField = "x-enum-varnames"

func parseCommon(m *loader.Mapping) model.Common {
	return model.Common{
		Name:        loader.String(m, resolver.SchemaNameField),
		Description: loader.String(m, "description"),
		IsNullable:  isNullable(m),
	}
}

// isNullable accepts nullable: true (also written as a string) and an
// OpenAPI 3.1 type list containing "null".
func isNullable(m *loader.Mapping) bool {
	if v, ok := m.Get("nullable"); ok {
		switch t := v.(type) {
		case bool:
			if t {
				return true
			}
		case string:
			if b, err := strconv.ParseBool(t); err == nil && b {
				return true
			}
		}
	}
	if types, ok := m.Get("type"); ok {
		if list, ok := types.([]any); ok {
			for _, item := range list {
				if item == "null" {
					return true
				}
			}
		}
	}
	return false
}

// parseDefault coerces the default value. Absent and null defaults are nil.
func parseDefault[T any](m *loader.Mapping, coerce func(any) (T, error)) (*T, error) {
	v, ok := m.Get("default")
	if !ok || v == nil {
		return nil, nil
	}
	value, err := coerce(v)
	if err != nil {
		return nil, &SchemaError{Name: loader.String(m, resolver.SchemaNameField), Keyword: "default", Message: "cannot convert default", Cause: err}
	}
	return &value, nil
}

// parseEnumerators pairs enum values with their x-enum-varnames names. An
// absent or empty enum yields nil.
func parseEnumerators[T any](m *loader.Mapping, coerce func(any) (T, error)) ([]model.Enumerator[T], error) {
	name := loader.String(m, resolver.SchemaNameField)

	raw, _ := m.Get("enum")
	if raw == nil {
		return nil, nil
	}
	values, ok := raw.([]any)
	if !ok {
		return nil, &SchemaError{Name: name, Keyword: "enum", Message: fmt.Sprintf("expected a list, got %T", raw)}
	}
	if len(values) == 0 {
		return nil, nil
	}

	names := make([]string, len(values))
	if rawNames, ok := m.Get(enumNamesField); ok {
		list, ok := rawNames.([]any)
		if !ok {
			return nil, &SchemaError{Name: name, Keyword: enumNamesField, Message: fmt.Sprintf("expected a list, got %T", rawNames)}
		}
		if len(list) != len(values) {
			return nil, &SchemaError{
				Name:    name,
				Keyword: enumNamesField,
				Message: fmt.Sprintf("%d names for %d enum values", len(list), len(values)),
			}
		}
		for i, n := range list {
			s, ok := n.(string)
			if !ok {
				return nil, &SchemaError{Name: name, Keyword: enumNamesField, Message: fmt.Sprintf("name %d is %T, not a string", i, n)}
			}
			names[i] = s
		}
	}

	enumerators := make([]model.Enumerator[T], len(values))
	for i, v := range values {
		enumerators[i].Name = names[i]
		if v == nil {
			enumerators[i].IsNull = true
			continue
		}
		value, err := coerce(v)
		if err != nil {
			return nil, &SchemaError{Name: name, Keyword: "enum", Message: fmt.Sprintf("cannot convert value %d", i), Cause: err}
		}
		enumerators[i].Value = value
	}
	return enumerators, nil
}

func toString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case *loader.Mapping, []any:
		return "", fmt.Errorf("%T is not a scalar", v)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	}
	return fmt.Sprint(v), nil
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		return strconv.ParseFloat(t, 64)
	}
	return 0, fmt.Errorf("%T is not a number", v)
}

func toInt(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, fmt.Errorf("%v is not an integer", t)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which is out of range.
		if t < math.MinInt64 || t >= math.MaxInt64 {
			return 0, fmt.Errorf("%v overflows int64", t)
		}
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	}
	return 0, fmt.Errorf("%T is not an integer", v)
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	}
	return false, fmt.Errorf("%T is not a boolean", v)
}

// toPlain keeps untyped values as plain Go values.
func toPlain(v any) (any, error) {
	return loader.Plain(v), nil
}
