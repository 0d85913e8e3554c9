package db

import (
	"errors"
	"io"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMMHT Implementation = "mmht"
)

// Errors every implementation reports for bounded keys, values and capacity.
// Implementations wrap them, so match them with errors.Is.
var (
	ErrKeyTooLong     = errors.New("db: key too long")
	ErrValueTooLarge  = errors.New("db: value too large")
	ErrStoreFull      = errors.New("db: store is full")
	ErrCorruptedInput = errors.New("db: corrupted snapshot")
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureSet     Feature = 1 << iota // Support for Set operations
	FeatureGet                         // Support for Get operations
	FeatureDelete                      // Support for Delete operations
	FeatureHas                         // Support for Has operations
	FeatureKeys                        // Support for Keys and Count operations
	FeatureSave                        // Support for Save operations
	FeatureLoad                        // Support for Load operations
	FeatureCompact                     // Support for Compact operations
	FeatureClear                       // Support for Clear operations
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeatureHas:
		return "Has"
	case FeatureKeys:
		return "Keys"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	case FeatureCompact:
		return "Compact"
	case FeatureClear:
		return "Clear"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for key-value database implementations.
// It provides methods for basic operations like Set, Get, Delete, and various utility functions.
// Implementations can vary in their feature support, which can be queried with SupportsFeature.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates an entry with the given key and value.
	// If the key already exists, the old value is overwritten.
	// Fails with ErrKeyTooLong, ErrValueTooLarge or ErrStoreFull (wrapped).
	Set(key string, value []byte) (err error)

	// Delete removes an entry with the specified key.
	// Deleting a key that does not exist is not an error. Unlike Set, Delete does
	// not report ErrKeyTooLong: a key too long to be stored is simply absent.
	Delete(key string) (err error)

	// Compact rebuilds the internal layout, reclaiming space held by deleted entries.
	Compact() (err error)

	// Clear removes all entries.
	Clear() (err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a value for the key was found.
	// The returned slice is a copy.
	Get(key string) (value []byte, loaded bool)

	// Has checks whether a key exists in the database.
	Has(key string) (loaded bool)

	// Keys returns all stored keys in unspecified order.
	Keys() (keys []string)

	// Count returns the number of stored keys.
	Count() (n int)

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save writes a snapshot of all entries to the provided io.Writer.
	Save(w io.Writer) (err error)

	// Load adds the entries of a snapshot read from the provided io.Reader.
	// Existing keys are overwritten, other keys are kept.
	Load(r io.Reader) (err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Returns true if the feature is supported, false otherwise.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close closes the database. The persisted data is kept.
	Close() (err error)
}
