package repository

import "errors"

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a conditional write did not match,
	// e.g. a stock decrement below zero or a duplicate key.
	ErrConflict = errors.New("conditional write conflict")
	// ErrCacheMiss is returned by caches on a missing key.
	ErrCacheMiss = errors.New("cache miss")
	// ErrLocked is returned when a lock is held by someone else.
	ErrLocked = errors.New("resource locked")
)
