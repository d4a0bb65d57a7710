package blob

import "errors"

var (
	// ErrInvalidName rejects names with path traversal segments or names that
	// resolve outside the storage root.
	ErrInvalidName = errors.New("invalid blob name")
	// ErrNotFound signals that no blob exists at the requested path.
	ErrNotFound = errors.New("blob not found")
)
