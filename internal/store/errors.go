package store

import "errors"

var (
	// ErrNotFound is returned when no record matches. Malformed ids are
	// reported the same way.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("store: duplicate key")
)
