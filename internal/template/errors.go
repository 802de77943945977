package template

import "errors"

var (
	// ErrUnknown indicates an invalid prompt name was specified.
	ErrUnknown = errors.New("unknown prompt")

	// ErrUnknownPlaceholder indicates a %(name)s placeholder with no value.
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
)
