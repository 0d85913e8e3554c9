// Package store provides a high-level interface for key-value storage operations
// with unified error handling. It serves as an abstraction layer over the
// lower-level db.KVDB implementations.
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations for interacting with
//     a key-value store. The interface methods return *Error values that carry a
//     return code, so callers can react to specific conditions (a full store, a key
//     that is too long) without knowing the engine.
//
//   - Error System: Error holds a RetCode, a message and the underlying cause.
//     WrapError maps the db package errors to return codes; errors.Is keeps
//     working through the wrapper.
//
//   - DBFactory: A function type that abstracts the creation of underlying db.KVDB
//     instances, providing dependency injection and flexible configuration of
//     storage backends.
//
//   - Snapshots: Snapshot and Restore move the content of a store in the
//     serializer.Snapshot form, which any serializer can encode.
//
// Implementations:
//
//	- Local Store (lstore): Directly uses a db.KVDB instance.
//	  Available in the "github.com/ValentinKolb/mmkv/lib/store/lstore" package.
package store
