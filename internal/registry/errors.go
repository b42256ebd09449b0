package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNoConverterFound is returned when no rule matches a node.
	ErrNoConverterFound = errors.New("no converter found")
	// ErrDuplicateConverter is returned when a converter name is registered
	// twice.
	ErrDuplicateConverter = errors.New("duplicate converter")
)

// NoConverterFoundError reports a node no registered predicate accepts.
type NoConverterFoundError struct {
	Node any
}

func (e *NoConverterFoundError) Error() string {
	return fmt.Sprintf("no converter found for %s", describe(e.Node))
}

func (e *NoConverterFoundError) Is(target error) bool {
	return target == ErrNoConverterFound
}

// DuplicateConverterError reports a second registration of the same
// converter.
type DuplicateConverterError struct {
	Name string
}

func (e *DuplicateConverterError) Error() string {
	return fmt.Sprintf("converter %q is already registered", e.Name)
}

func (e *DuplicateConverterError) Is(target error) bool {
	return target == ErrDuplicateConverter
}

type keyed interface {
	Len() int
	Get(key string) (any, bool)
}

// describe summarizes a node without dumping it whole.
func describe(node any) string {
	m, ok := node.(keyed)
	if !ok {
		return fmt.Sprintf("%T", node)
	}
	if name, ok := m.Get("x-schema-name"); ok {
		return fmt.Sprintf("schema %v", name)
	}
	if typ, ok := m.Get("type"); ok {
		return fmt.Sprintf("schema of type %v", typ)
	}
	return fmt.Sprintf("schema with %d keys", m.Len())
}
