package hashtable

import "errors"

var (
	// ErrStoreFull is returned when a new key finds neither an empty slot nor a tombstone.
	ErrStoreFull = errors.New("hashtable: store is full")
	// ErrCapacity is returned when the configured capacity is not a positive power of two.
	ErrCapacity = errors.New("hashtable: capacity must be a positive power of two")
)
