package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kolah/specmodel/internal/loader"
	"github.com/kolah/specmodel/internal/model"
	"github.com/kolah/specmodel/internal/registry"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func node(t *testing.T, doc string) any {
	t.Helper()
	n, err := loader.Parse([]byte(doc))
	require.NoError(t, err)
	return n
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want model.DataType
	}{
		{
			name: "object with required property",
			doc: `
type: object
properties:
  id:
    type: integer
required: [id]
`,
			want: model.Object{
				Properties: []model.ObjectProperty{
					{Name: "id", DataType: model.Integer{}, IsRequired: true},
				},
				AdditionalProperties: false,
			},
		},
		{
			name: "string enum with names",
			doc: `
type: string
enum: [a, b]
x-enum-varnames: [A, B]
`,
			want: model.String{
				Enumerators: []model.Enumerator[string]{
					{Name: "A", Value: "a"},
					{Name: "B", Value: "b"},
				},
			},
		},
		{
			name: "string fields",
			doc: `
x-schema-name: Email
type: string
description: contact address
format: email
pattern: '^.+@.+$'
default: nobody@example.com
nullable: true
`,
			want: model.String{
				Common:  model.Common{Name: "Email", Description: "contact address", IsNullable: true},
				Default: ptr("nobody@example.com"),
				Format:  "email",
				Pattern: "^.+@.+$",
			},
		},
		{
			name: "nullable written as string",
			doc:  "type: boolean\nnullable: 'true'\ndefault: false\n",
			want: model.Boolean{Common: model.Common{IsNullable: true}, Default: ptr(false)},
		},
		{
			name: "type list with null",
			doc:  "type: [integer, 'null']\nformat: int32\n",
			want: model.Integer{Common: model.Common{IsNullable: true}, Format: "int32"},
		},
		{
			name: "number coerces integers",
			doc:  "type: number\ndefault: 2\nenum: [1, 2.5]\n",
			want: model.Number{
				Default:     ptr(2.0),
				Enumerators: []model.Enumerator[float64]{{Value: 1}, {Value: 2.5}},
			},
		},
		{
			name: "integer accepts integral floats",
			doc:  "type: integer\ndefault: 3.0\n",
			want: model.Integer{Default: ptr(int64(3))},
		},
		{
			name: "string coerces scalars",
			doc:  "type: string\nenum: [1, true, x]\n",
			want: model.String{Enumerators: []model.Enumerator[string]{{Value: "1"}, {Value: "true"}, {Value: "x"}}},
		},
		{
			name: "null enum member",
			doc:  "type: string\nenum: [a, null]\n",
			want: model.String{Enumerators: []model.Enumerator[string]{{Value: "a"}, {IsNull: true}}},
		},
		{
			name: "empty enum",
			doc:  "type: string\nenum: []\n",
			want: model.String{},
		},
		{
			name: "null default",
			doc:  "type: integer\ndefault: null\n",
			want: model.Integer{},
		},
		{
			name: "open object",
			doc:  "type: object\n",
			want: model.Object{AdditionalProperties: true},
		},
		{
			name: "open object with empty schema",
			doc:  "type: object\nadditionalProperties: {}\n",
			want: model.Object{AdditionalProperties: true},
		},
		{
			name: "closed object",
			doc:  "type: object\nadditionalProperties: false\n",
			want: model.Object{},
		},
		{
			name: "typed additional properties",
			doc:  "type: object\nadditionalProperties:\n  type: string\n",
			want: model.Object{},
		},
		{
			name: "object default stays plain",
			doc:  "type: object\ndefault:\n  a: [1, b]\n",
			want: model.Object{Default: map[string]any{"a": []any{1, "b"}}, AdditionalProperties: true},
		},
		{
			name: "array",
			doc:  "type: array\nitems:\n  type: string\n",
			want: model.Array{ItemType: model.String{}},
		},
		{
			name: "oneOf",
			doc:  "oneOf:\n  - type: string\n  - type: integer\n",
			want: model.OneOf{DataTypes: []model.DataType{model.String{}, model.Integer{}}},
		},
		{
			name: "anyOf",
			doc:  "anyOf:\n  - type: boolean\n",
			want: model.AnyOf{DataTypes: []model.DataType{model.Boolean{}}},
		},
		{
			name: "allOf keeps members in order",
			doc: `
x-schema-name: Pet
allOf:
  - x-schema-name: Base
    type: object
    properties:
      id:
        type: integer
  - type: object
    properties:
      name:
        type: string
`,
			want: model.AllOf{
				Common: model.Common{Name: "Pet"},
				DataTypes: []model.DataType{
					model.Object{
						Common:     model.Common{Name: "Base"},
						Properties: []model.ObjectProperty{{Name: "id", DataType: model.Integer{}}},
					},
					model.Object{
						Properties: []model.ObjectProperty{{Name: "name", DataType: model.String{}}},
					},
				},
			},
		},
		{
			name: "type wins over composition",
			doc:  "type: object\nallOf:\n  - type: object\n",
			want: model.Object{AdditionalProperties: true},
		},
	}

	reg := NewRegistry(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Convert(node(t, tt.doc))
			require.NoError(t, err)
			require.True(t, model.Equal(tt.want, got), cmp.Diff(tt.want, got))
		})
	}
}

func TestConvertPropertiesKeepDocumentOrder(t *testing.T) {
	got, err := NewRegistry(nil).Convert(node(t, `
type: object
properties:
  zeta: {type: string}
  alpha: {type: string}
  mid: {type: string}
`))
	require.NoError(t, err)

	var names []string
	for _, p := range got.(model.Object).Properties {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"enum names mismatch", "type: string\nenum: [a, b]\nx-enum-varnames: [A]\n", ErrSchema},
		{"enum names not a list", "type: string\nenum: [a]\nx-enum-varnames: A\n", ErrSchema},
		{"enum not a list", "type: string\nenum: a\n", ErrSchema},
		{"fractional integer default", "type: integer\ndefault: 1.5\n", ErrSchema},
		{"integer default overflows", "type: integer\ndefault: 99999999999999999999\n", ErrSchema},
		{"exponent integer default overflows", "type: integer\ndefault: 1.0e20\n", ErrSchema},
		{"integer enum overflows", "type: integer\nenum: [1e19]\n", ErrSchema},
		{"bad boolean enum", "type: boolean\nenum: [maybe]\n", ErrSchema},
		{"bad number default", "type: number\ndefault: lots\n", ErrSchema},
		{"array without items", "type: array\n", ErrSchema},
		{"oneOf not a list", "oneOf: {type: string}\n", ErrSchema},
		{"properties not a mapping", "type: object\nproperties: [a]\n", ErrSchema},
		{"unknown type", "type: file\n", registry.ErrNoConverterFound},
		{"no type", "description: nothing\n", registry.ErrNoConverterFound},
		{"nested unknown type", "type: array\nitems:\n  type: file\n", registry.ErrNoConverterFound},
		{"nested property error", "type: object\nproperties:\n  a:\n    type: array\n", ErrSchema},
	}

	reg := NewRegistry(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Convert(node(t, tt.doc))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSchemaErrorMessage(t *testing.T) {
	_, err := NewRegistry(nil).Convert(node(t, "x-schema-name: Color\ntype: string\nenum: [r, g]\nx-enum-varnames: [Red]\n"))

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, "Color", schemaErr.Name)
	require.Equal(t, enumNamesField, schemaErr.Keyword)
	require.Equal(t, "schema Color x-enum-varnames: 1 names for 2 enum values", err.Error())
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name      string
		predicate registry.Predicate
		doc       string
		want      bool
	}{
		{"type equals", TypeEquals("string"), "type: string\n", true},
		{"type differs", TypeEquals("string"), "type: integer\n", false},
		{"type list", TypeEquals("string"), "type: [string, 'null']\n", true},
		{"mixed type list", TypeEquals("string"), "type: [string, integer]\n", false},
		{"null only", TypeEquals("string"), "type: ['null']\n", false},
		{"no type", TypeEquals("string"), "format: uuid\n", false},
		{"contains", Contains("oneOf"), "oneOf: []\n", true},
		{"does not contain", Contains("oneOf"), "anyOf: []\n", false},
		{"scalar node", Contains("oneOf"), "oneOf\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.predicate(node(t, tt.doc)))
		})
	}
}

func TestRulesOverride(t *testing.T) {
	reg := NewRegistry(nil)
	reg.MustRegister(Rule{
		Name:      "uuid",
		Predicate: func(n any) bool { return TypeEquals("string")(n) && loader.String(n.(*loader.Mapping), "format") == "uuid" },
		Converter: func(*Registry, any) (model.DataType, error) {
			return model.String{Common: model.Common{Name: "UUID"}, Format: "uuid"}, nil
		},
		Priority: 99,
	})

	got, err := reg.Convert(node(t, "type: string\nformat: uuid\n"))
	require.NoError(t, err)
	require.Equal(t, "UUID", got.Base().Name)

	got, err = reg.Convert(node(t, "type: string\nformat: email\n"))
	require.NoError(t, err)
	require.Empty(t, got.Base().Name)

	require.ErrorIs(t, reg.Register(Rules()[0]), registry.ErrDuplicateConverter)
}
