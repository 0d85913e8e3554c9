// Package db provides a standardized interface for key-value database implementations.
// It defines the KVDB interface that allows for consistent interaction with
// database backends while abstracting implementation details.
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides methods for basic operations (Set, Get, Has, Delete), enumeration
//     (Keys, Count), maintenance (Compact, Clear), metadata retrieval (GetInfo)
//     and persistence operations (Save, Load).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method. This allows clients to
//     discover supported operations at runtime.
//
//   - Implementation Identifiers: The Implementation type provides string constants
//     for the database backends (currently "mmht").
//
//   - Errors: ErrKeyTooLong, ErrValueTooLarge and ErrStoreFull are shared by all
//     implementations with bounded keys, values or capacity.
//
//   - Database Information: The DatabaseInfo structure reports size, implementation
//     type and implementation-specific metadata.
//
// Note on durability:
//   - Implementations backed by a memory-mapped file persist every completed write
//     in the page cache. Whether it reaches the disk before a machine crash is up
//     to the operating system unless the caller syncs explicitly.
//
// Related Packages:
//
// The engines/mmht package (github.com/ValentinKolb/mmkv/lib/db/engines/mmht) implements
// KVDB on top of a memory-mapped open-addressing hash table with fixed capacity.
//
// The util package (github.com/ValentinKolb/mmkv/lib/db/util) provides the hash functions
// used by the table and statistics helpers (SizeHistogram, DistributionStats).
//
// The testing package (github.com/ValentinKolb/mmkv/lib/db/testing) provides
// standardized tests and benchmarks for database implementations that satisfy the db.KVDB interface.
//   - RunKVDBTests: Runs a standardized test suite to validate implementations
//   - RunKVDBBenchmarks: Provides performance benchmarks for comparing implementations
package db
