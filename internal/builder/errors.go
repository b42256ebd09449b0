package builder

import (
	"errors"
	"fmt"

	"github.com/kolah/specmodel/internal/model"
)

// ErrUnsupportedContent is returned for bodies that do not declare exactly
// one media type.
var ErrUnsupportedContent = errors.New("unsupported content")

// UnsupportedContentError reports a request body or response whose content
// map does not hold exactly one media type.
type UnsupportedContentError struct {
	Method model.Method
	Path   string
	// StatusCode is empty for request bodies
	StatusCode string
	MediaTypes []string
}

func (e *UnsupportedContentError) Error() string {
	where := "request body"
	if e.StatusCode != "" {
		where = "response " + e.StatusCode
	}
	return fmt.Sprintf("%s %s: %s declares %d media types %v, exactly one is supported",
		e.Method, e.Path, where, len(e.MediaTypes), e.MediaTypes)
}

func (e *UnsupportedContentError) Is(target error) bool {
	return target == ErrUnsupportedContent
}
