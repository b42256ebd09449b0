// Package schema holds the baseline rules that classify resolved schema
// nodes into model data types.
package schema

import (
	"fmt"
	"log/slog"

	"github.com/kolah/specmodel/internal/loader"
	"github.com/kolah/specmodel/internal/model"
	"github.com/kolah/specmodel/internal/registry"
)

// Registry is a registry producing model data types.
type Registry = registry.Registry[model.DataType]

// Rule is a rule producing model data types.
type Rule = registry.Rule[model.DataType]

// Rules returns the baseline rules in registration order, all at the
// default priority.
func Rules() []Rule {
	return []Rule{
		{Name: "string", Predicate: TypeEquals("string"), Converter: convertString},
		{Name: "number", Predicate: TypeEquals("number"), Converter: convertNumber},
		{Name: "integer", Predicate: TypeEquals("integer"), Converter: convertInteger},
		{Name: "boolean", Predicate: TypeEquals("boolean"), Converter: convertBoolean},
		{Name: "object", Predicate: TypeEquals("object"), Converter: convertObject},
		{Name: "array", Predicate: TypeEquals("array"), Converter: convertArray},
		{Name: "oneOf", Predicate: Contains("oneOf"), Converter: convertOneOf},
		{Name: "anyOf", Predicate: Contains("anyOf"), Converter: convertAnyOf},
		{Name: "allOf", Predicate: Contains("allOf"), Converter: convertAllOf},
	}
}

// NewRegistry returns a registry loaded with the baseline rules.
func NewRegistry(logger *slog.Logger) *Registry {
	return registry.New[model.DataType](registry.WithLogger(logger)).MustRegister(Rules()...)
}

func convertString(_ *Registry, node any) (model.DataType, error) {
	m := node.(*loader.Mapping)
	def, err := parseDefault(m, toString)
	if err != nil {
		return nil, err
	}
	enums, err := parseEnumerators(m, toString)
	if err != nil {
		return nil, err
	}
	return model.String{
		Common:      parseCommon(m),
		Default:     def,
		Enumerators: enums,
		Format:      loader.String(m, "format"),
		Pattern:     loader.String(m, "pattern"),
	}, nil
}

func convertNumber(_ *Registry, node any) (model.DataType, error) {
	m := node.(*loader.Mapping)
	def, err := parseDefault(m, toFloat)
	if err != nil {
		return nil, err
	}
	enums, err := parseEnumerators(m, toFloat)
	if err != nil {
		return nil, err
	}
	return model.Number{
		Common:      parseCommon(m),
		Default:     def,
		Enumerators: enums,
		Format:      loader.String(m, "format"),
	}, nil
}

func convertInteger(_ *Registry, node any) (model.DataType, error) {
	m := node.(*loader.Mapping)
	def, err := parseDefault(m, toInt)
	if err != nil {
		return nil, err
	}
	enums, err := parseEnumerators(m, toInt)
	if err != nil {
		return nil, err
	}
	return model.Integer{
		Common:      parseCommon(m),
		Default:     def,
		Enumerators: enums,
		Format:      loader.String(m, "format"),
	}, nil
}

func convertBoolean(_ *Registry, node any) (model.DataType, error) {
	m := node.(*loader.Mapping)
	def, err := parseDefault(m, toBool)
	if err != nil {
		return nil, err
	}
	enums, err := parseEnumerators(m, toBool)
	if err != nil {
		return nil, err
	}
	return model.Boolean{
		Common:      parseCommon(m),
		Default:     def,
		Enumerators: enums,
	}, nil
}

// untyped holds the common fields of variants without a scalar type.
type untyped struct {
	common      model.Common
	def         any
	enumerators []model.Enumerator[any]
}

func parseUntyped(m *loader.Mapping) (untyped, error) {
	def, err := parseDefault(m, toPlain)
	if err != nil {
		return untyped{}, err
	}
	enums, err := parseEnumerators(m, toPlain)
	if err != nil {
		return untyped{}, err
	}
	u := untyped{common: parseCommon(m), enumerators: enums}
	if def != nil {
		u.def = *def
	}
	return u, nil
}

func convertObject(r *Registry, node any) (model.DataType, error) {
	m := node.(*loader.Mapping)
	u, err := parseUntyped(m)
	if err != nil {
		return nil, err
	}

	required := make(map[string]bool)
	if list, ok := m.Get("required"); ok {
		names, ok := list.([]any)
		if !ok {
			return nil, &SchemaError{Name: u.common.Name, Keyword: "required", Message: fmt.Sprintf("expected a list, got %T", list)}
		}
		for _, n := range names {
			if s, ok := n.(string); ok {
				required[s] = true
			}
		}
	}

	obj := model.Object{
		Common:               u.common,
		Default:              u.def,
		Enumerators:          u.enumerators,
		AdditionalProperties: !loader.Has(m, "properties") && allowsAdditional(m),
	}

	if raw, ok := m.Get("properties"); ok && raw != nil {
		props, ok := raw.(*loader.Mapping)
		if !ok {
			return nil, &SchemaError{Name: u.common.Name, Keyword: "properties", Message: fmt.Sprintf("expected a mapping, got %T", raw)}
		}
		for name, propSchema := range props.FromOldest() {
			dt, err := r.Convert(propSchema)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			obj.Properties = append(obj.Properties, model.ObjectProperty{
				Name:       name,
				DataType:   dt,
				IsRequired: required[name],
			})
		}
	}
	return obj, nil
}

// allowsAdditional reports whether additionalProperties is absent, true or
// an empty schema.
func allowsAdditional(m *loader.Mapping) bool {
	v, ok := m.Get("additionalProperties")
	if !ok || v == nil {
		return true
	}
	switch t := v.(type) {
	case bool:
		return t
	case *loader.Mapping:
		return t.Len() == 0
	}
	return false
}

func convertArray(r *Registry, node any) (model.DataType, error) {
	m := node.(*loader.Mapping)
	u, err := parseUntyped(m)
	if err != nil {
		return nil, err
	}

	items, ok := m.Get("items")
	if !ok || items == nil {
		return nil, &SchemaError{Name: u.common.Name, Keyword: "items", Message: "array schema has no items"}
	}
	itemType, err := r.Convert(items)
	if err != nil {
		return nil, fmt.Errorf("array items: %w", err)
	}
	return model.Array{
		Common:      u.common,
		Default:     u.def,
		Enumerators: u.enumerators,
		ItemType:    itemType,
	}, nil
}

func convertOneOf(r *Registry, node any) (model.DataType, error) {
	u, members, err := parseComposition(r, node.(*loader.Mapping), "oneOf")
	if err != nil {
		return nil, err
	}
	return model.OneOf{Common: u.common, Default: u.def, Enumerators: u.enumerators, DataTypes: members}, nil
}

func convertAnyOf(r *Registry, node any) (model.DataType, error) {
	u, members, err := parseComposition(r, node.(*loader.Mapping), "anyOf")
	if err != nil {
		return nil, err
	}
	return model.AnyOf{Common: u.common, Default: u.def, Enumerators: u.enumerators, DataTypes: members}, nil
}

func convertAllOf(r *Registry, node any) (model.DataType, error) {
	u, members, err := parseComposition(r, node.(*loader.Mapping), "allOf")
	if err != nil {
		return nil, err
	}
	return model.AllOf{Common: u.common, Default: u.def, Enumerators: u.enumerators, DataTypes: members}, nil
}

func parseComposition(r *Registry, m *loader.Mapping, keyword string) (untyped, []model.DataType, error) {
	u, err := parseUntyped(m)
	if err != nil {
		return untyped{}, nil, err
	}

	raw, _ := m.Get(keyword)
	list, ok := raw.([]any)
	if !ok {
		return untyped{}, nil, &SchemaError{Name: u.common.Name, Keyword: keyword, Message: fmt.Sprintf("expected a list, got %T", raw)}
	}

	members := make([]model.DataType, len(list))
	for i, item := range list {
		dt, err := r.Convert(item)
		if err != nil {
			return untyped{}, nil, fmt.Errorf("%s member %d: %w", keyword, i, err)
		}
		members[i] = dt
	}
	return u, members, nil
}
