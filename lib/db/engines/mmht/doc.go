// Package mmht implements db.KVDB on top of a memory-mapped, fixed-capacity
// open-addressing hash table (see lib/hashtable). Every completed write lands
// directly in the shared mapping of the backing file, so the data survives a
// crash of the process without any explicit save step.
//
// Keys are strings of up to 62 bytes, values are byte slices of up to 252
// bytes. Longer input is rejected with db.ErrKeyTooLong or db.ErrValueTooLarge.
// The number of keys is bounded by the capacity chosen when the file is
// created; a Set for a new key on a full table fails with db.ErrStoreFull.
// Deleted keys leave tombstones behind that are reused by later inserts and
// dropped by Compact.
//
// Key Components:
//
//   - mmhtImpl: The db.KVDB implementation. It converts keys and values to the
//     fixed-size codec types, maps table errors to the db errors, counts
//     operations and measures latency.
//
//   - OpenShared: A process-wide registry (xsync.MapOf) of open databases keyed
//     by the absolute file path. All handles for the same file share one
//     mapping and one lock, which makes concurrent use from many goroutines
//     safe. NewMMHT returns an independent handle with its own lock instead.
//
//   - Metrics: Operation counters are registered with VictoriaMetrics/metrics
//     and can be exported with WritePrometheus. Set and Get latencies are
//     tracked per handle with rcrowley/go-metrics timers and reported by GetInfo.
//
// Persistence:
//
//	Save and Load use the binary snapshot format of lib/serializer. A snapshot
//	holds only live entries, so it can be loaded into a table of any capacity
//	that is large enough.
//
// Usage:
//
//	database, err := mmht.NewMMHT("/var/lib/app/cache.mmkv", &mmht.Options{Capacity: 4096})
//	if err != nil { ... }
//	defer database.Close()
//	err = database.Set("user:42", []byte("alice"))
package mmht
