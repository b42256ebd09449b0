package model

import "fmt"

// Visitor handles each DataType variant. Implementations must cover the
// whole closed set.
type Visitor[R any] interface {
	String(String) R
	Number(Number) R
	Integer(Integer) R
	Boolean(Boolean) R
	Object(Object) R
	Array(Array) R
	OneOf(OneOf) R
	AnyOf(AnyOf) R
	AllOf(AllOf) R
}

// Visit dispatches dt to the matching Visitor method. It panics on a nil or
// foreign DataType.
func Visit[R any](dt DataType, v Visitor[R]) R {
	switch t := dt.(type) {
	case String:
		return v.String(t)
	case Number:
		return v.Number(t)
	case Integer:
		return v.Integer(t)
	case Boolean:
		return v.Boolean(t)
	case Object:
		return v.Object(t)
	case Array:
		return v.Array(t)
	case OneOf:
		return v.OneOf(t)
	case AnyOf:
		return v.AnyOf(t)
	case AllOf:
		return v.AllOf(t)
	}
	panic(fmt.Sprintf("model: unknown data type %T", dt))
}

// Walk calls fn for dt and then, while fn returns true, for each nested data
// type in depth-first order: object properties, array items and union
// members.
func Walk(dt DataType, fn func(DataType) bool) {
	if dt == nil || !fn(dt) {
		return
	}
	switch t := dt.(type) {
	case Object:
		for _, p := range t.Properties {
			Walk(p.DataType, fn)
		}
	case Array:
		Walk(t.ItemType, fn)
	case MultiDataType:
		for _, m := range t.Members() {
			Walk(m, fn)
		}
	}
}
