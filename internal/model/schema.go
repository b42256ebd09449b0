package model

// Kind identifies a DataType variant.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindOneOf   Kind = "oneOf"
	KindAnyOf   Kind = "anyOf"
	KindAllOf   Kind = "allOf"
)

// DataType is the closed set of schema variants: String, Number, Integer,
// Boolean, Object, Array, OneOf, AnyOf and AllOf. Values are immutable once
// built; compare them with Equal.
type DataType interface {
	Kind() Kind
	Base() Common
	isDataType()
}

// Common holds the attributes shared by every variant.
type Common struct {
	// Name is the declared name of a schema reached through a $ref; empty
	// for inline schemas
	Name        string
	Description string
	IsNullable  bool
}

// Base returns the shared attributes.
func (c Common) Base() Common { return c }

// Enumerator is one member of an enum. Name comes from x-enum-varnames and
// may be empty.
type Enumerator[T any] struct {
	Name  string
	Value T
	// IsNull marks a null enum member; Value is then the zero value
	IsNull bool
}

type String struct {
	Common
	Default     *string
	Enumerators []Enumerator[string]
	Format      string
	Pattern     string
}

type Number struct {
	Common
	Default     *float64
	Enumerators []Enumerator[float64]
	Format      string
}

type Integer struct {
	Common
	Default     *int64
	Enumerators []Enumerator[int64]
	Format      string
}

type Boolean struct {
	Common
	Default     *bool
	Enumerators []Enumerator[bool]
}

// ObjectProperty is a named property of an Object. Names are unique within
// an object.
type ObjectProperty struct {
	Name       string
	DataType   DataType
	IsRequired bool
}

type Object struct {
	Common
	Default     any
	Enumerators []Enumerator[any]
	Properties  []ObjectProperty
	// AdditionalProperties is true when the schema declares no properties and
	// does not forbid extra keys
	AdditionalProperties bool
}

// Property returns the property called name.
func (o Object) Property(name string) (ObjectProperty, bool) {
	for _, p := range o.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return ObjectProperty{}, false
}

type Array struct {
	Common
	Default     any
	Enumerators []Enumerator[any]
	ItemType    DataType
}

// MultiDataType is implemented by the union variants.
type MultiDataType interface {
	DataType
	Members() []DataType
}

// OneOf matches exactly one member.
type OneOf struct {
	Common
	Default     any
	Enumerators []Enumerator[any]
	DataTypes   []DataType
}

// AnyOf matches one or more members.
type AnyOf struct {
	Common
	Default     any
	Enumerators []Enumerator[any]
	DataTypes   []DataType
}

// AllOf matches all members, merged.
type AllOf struct {
	Common
	Default     any
	Enumerators []Enumerator[any]
	DataTypes   []DataType
}

func (String) Kind() Kind  { return KindString }
func (Number) Kind() Kind  { return KindNumber }
func (Integer) Kind() Kind { return KindInteger }
func (Boolean) Kind() Kind { return KindBoolean }
func (Object) Kind() Kind  { return KindObject }
func (Array) Kind() Kind   { return KindArray }
func (OneOf) Kind() Kind   { return KindOneOf }
func (AnyOf) Kind() Kind   { return KindAnyOf }
func (AllOf) Kind() Kind   { return KindAllOf }

func (String) isDataType()  {}
func (Number) isDataType()  {}
func (Integer) isDataType() {}
func (Boolean) isDataType() {}
func (Object) isDataType()  {}
func (Array) isDataType()   {}
func (OneOf) isDataType()   {}
func (AnyOf) isDataType()   {}
func (AllOf) isDataType()   {}

func (u OneOf) Members() []DataType { return u.DataTypes }
func (u AnyOf) Members() []DataType { return u.DataTypes }
func (u AllOf) Members() []DataType { return u.DataTypes }

var (
	_ DataType      = String{}
	_ DataType      = Number{}
	_ DataType      = Integer{}
	_ DataType      = Boolean{}
	_ DataType      = Object{}
	_ DataType      = Array{}
	_ MultiDataType = OneOf{}
	_ MultiDataType = AnyOf{}
	_ MultiDataType = AllOf{}
)
