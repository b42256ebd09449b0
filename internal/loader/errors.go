package loader

import (
	"errors"
)

// ErrDocumentLoad matches every *DocumentLoadError through errors.Is.
var ErrDocumentLoad = errors.New("document load error")

// DocumentLoadError reports a failure to fetch, parse or navigate a document.
type DocumentLoadError struct {
	// Location is the normalized document location
	Location string
	// Pointer is the JSON pointer being extracted, if any
	Pointer string
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

func (e *DocumentLoadError) Error() string {
	msg := "loading " + e.Location
	if e.Pointer != "" {
		msg += "#" + e.Pointer
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DocumentLoadError) Unwrap() error {
	return e.Cause
}

func (e *DocumentLoadError) Is(target error) bool {
	return target == ErrDocumentLoad
}
