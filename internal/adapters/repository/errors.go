package repository

import "errors"

var (
	// ErrNotFound indicates no session exists with the given id.
	ErrNotFound = errors.New("session not found")

	// ErrDuplicateID indicates an insert with an id already in use.
	ErrDuplicateID = errors.New("duplicate session id")

	// ErrSnapshot indicates the snapshot file could not be written.
	ErrSnapshot = errors.New("snapshot write failed")
)
