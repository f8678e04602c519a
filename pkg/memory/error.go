package memory

import "errors"

var (
	// ErrEmptyContent indicates a store call without content.
	ErrEmptyContent = errors.New("content is required")

	// ErrEmptyQuery indicates a query call without query text.
	ErrEmptyQuery = errors.New("query text is required")
)
