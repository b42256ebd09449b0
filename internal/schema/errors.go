package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema is returned for schema content that cannot be converted.
var ErrSchema = errors.New("invalid schema")

// SchemaError describes malformed schema content.
type SchemaError struct {
	// Name is the declared name of the schema, empty for inline schemas
	Name string
	// Keyword is the schema keyword at fault, e.g. "enum" or "items"
	Keyword string
	Message string
	Cause   error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema")
	if e.Name != "" {
		fmt.Fprintf(&b, " %s", e.Name)
	}
	if e.Keyword != "" {
		fmt.Fprintf(&b, " %s", e.Keyword)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
