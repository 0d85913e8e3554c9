package store

import (
	"errors"
	"fmt"

	"github.com/ValentinKolb/mmkv/lib/db"
	"github.com/ValentinKolb/mmkv/lib/serializer"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// DBFactory is a function type that creates a new db used by the store.
// This is used to abstract the creation of the db from the store implementation.
type DBFactory func() (db.KVDB, error)

// IStore is the generic interface for interacting with a key–value store.
// All write operations return only a *Error (nil on success),
// while read operations return the requested data along with a *Error (nil on success).
type IStore interface {
	// Set inserts or updates a key–value pair.
	Set(key string, value []byte) (err error)
	// Delete deletes a key–value pair. Deleting a missing key is not an error.
	Delete(key string) (err error)
	// Get return the value for a key. The boolean return value indicates whether a value for the key was found.
	Get(key string) (value []byte, loaded bool, err error)
	// Has returns whether a key exists in the store.
	Has(key string) (loaded bool, err error)
	// Keys returns all keys in unspecified order.
	Keys() (keys []string, err error)
	// Count returns the number of keys.
	Count() (n int, err error)
	// Compact reclaims the space of deleted entries.
	Compact() (err error)
	// Clear removes all entries.
	Clear() (err error)
	// Snapshot returns a consistent copy of all entries.
	Snapshot() (snap serializer.Snapshot, err error)
	// Restore sets every entry of snap. Keys not in snap are kept.
	Restore(snap serializer.Snapshot) (err error)
	// GetDBInfo returns metadata about the database underlying the store.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetDBInfo() (info db.DatabaseInfo, err error)
	// Close closes the underlying database.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The cause, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KVStoreError (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the cause so errors.Is sees through the store error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new KVStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError converts an error of the db layer into a store error.
// It returns nil for a nil error.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr
	}

	code := RetCInternalError
	switch {
	case errors.Is(err, db.ErrKeyTooLong):
		code = RetCKeyTooLong
	case errors.Is(err, db.ErrValueTooLarge):
		code = RetCValueTooLarge
	case errors.Is(err, db.ErrStoreFull):
		code = RetCStoreFull
	case errors.Is(err, db.ErrCorruptedInput):
		code = RetCInvalidOperation
	}

	return &Error{Code: code, Msg: err.Error(), Err: err}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by underlying database.
	RetCInvalidOperation                    // 3: Invalid operation.
	RetCKeyTooLong                          // 4: Key exceeds the maximum key size.
	RetCValueTooLarge                       // 5: Value exceeds the maximum value size.
	RetCStoreFull                           // 6: No free slot for a new key.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCKeyTooLong:
		return "KeyTooLong"
	case RetCValueTooLarge:
		return "ValueTooLarge"
	case RetCStoreFull:
		return "StoreFull"
	default:
		return "Unknown"
	}
}
