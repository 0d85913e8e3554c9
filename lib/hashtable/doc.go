// Package hashtable implements a fixed-capacity open-addressing hash table that
// lives entirely inside a memory-mapped region. The table is the region's
// record: Capacity contiguous slots of {Key, Value, State}. Every operation
// runs directly against the mapped bytes while the region's lock is held, so
// each completed mutation is already in the page cache when it returns.
//
// Keys and Values:
//
//	K and V must be fixed-size records (see package region). K additionally
//	implements Key[K]: Equal over its significant bytes and Hashes returning a
//	primary hash h1 and a step hash h2 that must be odd. codec.Key and
//	codec.Value are the stock implementations.
//
// Probing (double hashing):
//
//	The probe sequence of a key starts at h1 & (N-1) and advances by h2. N is a
//	power of two and h2 is odd, so the two are coprime and the sequence visits
//	all N slots before repeating. While walking the sequence:
//	  1. an occupied slot with an equal key ends the probe (found)
//	  2. a tombstone never ends the probe, the first one is remembered
//	  3. an empty slot ends the probe; the first tombstone seen (or the empty
//	     slot itself) is where a new key goes
//	  4. after N steps without an empty slot the first tombstone is used, or the
//	     table is full
//
// Deletion:
//
//	A deleted slot becomes a tombstone instead of empty, so keys inserted after
//	it on the same probe chain stay reachable. Tombstones are reused by later
//	inserts and removed by Compact (or RemoveAll).
//
// Compaction:
//
//	Compact collects the live entries, zeroes the table and reinserts each entry
//	at the first empty slot of its own probe sequence. It is O(N), dirties the
//	whole mapping and is never run automatically. It is not crash-atomic: a crash
//	between the reset and the last reinsertion loses entries.
//
// Capacity:
//
//	Fixed when the file is created and validated to be a power of two. The file
//	does not record the capacity; a table must always be reopened with the
//	capacity (and key/value types) it was created with.
//
// Errors:
//
//	Put and Update return ErrStoreFull when a new key finds no slot. A full
//	table still serves reads, overwrites and deletes. Set is the ergonomic form
//	of Update that discards the error; use Update when the outcome matters.
package hashtable
