// Package lstore implements a local, single-node key-value store based on the
// store.IStore interface. It is a thin wrapper around any db.KVDB
// implementation. Whether data survives a restart depends on the engine: with
// the mmht engine every write lives in a memory-mapped file.
//
// Implementation Details:
//
//   - Feature Detection: Before executing operations, the store checks if the underlying
//     db.KVDB implementation supports the requested feature through the SupportsFeature
//     method. Unsupported operations return RetCUnsupportedOperation rather than failing
//     silently or producing undefined behavior.
//
//   - Error Mapping: Errors of the engine are converted with store.WrapError, so a
//     full table becomes RetCStoreFull and an oversized key RetCKeyTooLong.
//
//   - Snapshots: Snapshot uses the engine's Save, so the copy is taken in one pass
//     under the engine's lock. Restore uses Load.
//
// Thread Safety:
//
//	The store adds no state of its own. The underlying db.KVDB implementation
//	provides the thread safety guarantees for the actual storage operations.
//
// Usage Example:
//
//	factory := func() (db.KVDB, error) {
//		return mmht.NewMMHT("/tmp/cache.mmkv", &mmht.Options{Capacity: 1024})
//	}
//	s, err := lstore.NewLocalStore(factory)
//	if err != nil { ... }
//	defer s.Close()
//
//	err = s.Set("session:123", sessionData)
//	value, exists, err := s.Get("session:123")
package lstore
