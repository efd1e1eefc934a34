package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRecord signals a record that fails validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidField signals an unknown or unsupported field name.
	ErrInvalidField = errors.New("invalid field")
	// ErrBookmarkLimit signals that the bookmark cap has been reached.
	ErrBookmarkLimit = errors.New("bookmark limit reached")
)
