package resolver

import (
	"errors"
	"strings"
)

var (
	// ErrCircularReference matches every *CircularReferenceError.
	ErrCircularReference = errors.New("circular reference")

	// ErrInvalidReference matches every *ReferenceError.
	ErrInvalidReference = errors.New("invalid reference")
)

// CircularReferenceError reports a $ref chain that revisits an identity
// already on its own resolution path.
type CircularReferenceError struct {
	// Ref is the offending $ref string as written in the document
	Ref string
	// Identity is the target the reference points to
	Identity Identity
	// Path is the chain of identities that led back to Identity
	Path []Identity
}

func (e *CircularReferenceError) Error() string {
	chain := make([]string, 0, len(e.Path))
	for _, id := range e.Path {
		chain = append(chain, id.String())
	}
	return "circular reference found in " + e.Ref + ": " + strings.Join(chain, " -> ")
}

func (e *CircularReferenceError) Is(target error) bool {
	return target == ErrCircularReference
}

// ReferenceError reports a $ref that cannot be followed: a non-string
// value or a target that is not a mapping.
type ReferenceError struct {
	Ref      string
	Location string
	Message  string
}

func (e *ReferenceError) Error() string {
	msg := "invalid reference"
	if e.Ref != "" {
		msg += " " + e.Ref
	}
	if e.Location != "" {
		msg += " in " + e.Location
	}
	return msg + ": " + e.Message
}

func (e *ReferenceError) Is(target error) bool {
	return target == ErrInvalidReference
}
