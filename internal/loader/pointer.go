package loader

import (
	"fmt"
	"strconv"
	"strings"
)

// Segments splits a JSON pointer into unescaped reference tokens.
// Empty segments are ignored, so "/a//b/" and "a/b" are equivalent.
func Segments(pointer string) []string {
	var segments []string
	for _, part := range strings.Split(pointer, "/") {
		if part == "" {
			continue
		}
		segments = append(segments, unescapePointer(part))
	}
	return segments
}

// NormalizePointer returns the canonical form of pointer: "/"-prefixed with
// empty segments removed. The document root is "".
func NormalizePointer(pointer string) string {
	var b strings.Builder
	for _, part := range strings.Split(pointer, "/") {
		if part == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(part)
	}
	return b.String()
}

// Fragment returns the node at pointer inside doc.
func Fragment(doc any, pointer string) (any, error) {
	current := doc
	for i, part := range Segments(pointer) {
		switch v := current.(type) {
		case *Mapping:
			next, ok := v.Get(part)
			if !ok {
				return nil, fmt.Errorf("missing key %q at /%s", part, strings.Join(Segments(pointer)[:i], "/"))
			}
			current = next

		case []any:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 {
				return nil, fmt.Errorf("invalid array index %q", part)
			}
			if index >= len(v) {
				return nil, fmt.Errorf("array index %d out of bounds (length %d)", index, len(v))
			}
			current = v[index]

		default:
			return nil, fmt.Errorf("cannot traverse into %T at segment %q", v, part)
		}
	}
	return current, nil
}

// LastSegment returns the final unescaped token of pointer, or "".
func LastSegment(pointer string) string {
	segments := Segments(pointer)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// RFC 6901: ~1 is "/" and ~0 is "~", in that order.
func unescapePointer(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
