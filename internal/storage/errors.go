package storage

import "errors"

// Storage errors shared by all store implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting a record whose key
	// already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStateConflict is returned by compare-and-set transitions when the
	// stored state does not match the expected one, or when the requested
	// transition is not legal for the transfer state machine.
	ErrStateConflict = errors.New("state conflict")
)
