package repository

import "errors"

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned when a conditional update loses against a
	// concurrent write to the same document.
	ErrConflict = errors.New("document update conflict")
)
