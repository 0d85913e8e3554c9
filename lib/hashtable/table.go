package hashtable

import (
	"fmt"
	"math/bits"

	"github.com/ValentinKolb/mmkv/lib/lockmgr"
	"github.com/ValentinKolb/mmkv/lib/region"
	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

var log = logger.GetLogger("hashtable")

// DefaultCapacity is the number of slots of a table opened without an explicit capacity.
const DefaultCapacity = 256

// Key is the constraint on table keys.
type Key[K any] interface {
	// Equal reports whether both keys have the same significant bytes.
	Equal(other K) bool
	// Hashes returns the primary hash and the probe step. The step must be odd.
	Hashes() (h1, h2 uint64)
}

// State is the state of one slot.
type State uint8

const (
	StateEmpty State = iota
	StateOccupied
	StateTombstone
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateOccupied:
		return "Occupied"
	case StateTombstone:
		return "Tombstone"
	default:
		return "Unknown"
	}
}

// Slot is the on-disk layout of one table index.
type Slot[K any, V any] struct {
	Key   K
	Value V
	State State
}

// Entry is a live key-value pair as returned by Entries.
type Entry[K any, V any] struct {
	Key   K
	Value V
}

// Options configures a table.
type Options struct {
	Capacity int           // Number of slots, a power of two (0 = DefaultCapacity)
	Lock     lockmgr.ILock // Lock policy (nil = mutex)
	Magic    uint64        // File header (0 = region.MagicNumber)
	MaxSize  int64         // Mapping ceiling in bytes (0 = region.DefaultMaxSize)
}

// HashTable is a fixed-capacity open-addressing table stored in a memory-mapped file.
type HashTable[K Key[K], V any] struct {
	region *region.Region[Slot[K, V]]
	mask   uint64 // capacity - 1
}

// --------------------------------------------------------------------------
// Initialization
// --------------------------------------------------------------------------

// Open opens the table stored at path, creating it if the file does not exist.
// The file does not record its capacity. A file longer than the given capacity
// needs is refused with region.ErrFormat; a shorter one is grown, which leaves
// entries written with a smaller capacity unreachable.
// Errors of the underlying region (region.ErrFormat, region.ErrSize, *region.IOError, ...)
// are wrapped and can be matched with errors.Is / errors.As.
func Open[K Key[K], V any](path string, opts *Options) (*HashTable[K, V], error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Capacity == 0 {
		o.Capacity = DefaultCapacity
	}
	if o.Capacity < 1 || bits.OnesCount(uint(o.Capacity)) != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrCapacity, o.Capacity)
	}

	r, err := region.Open[Slot[K, V]](path, o.Capacity, &region.Options{
		Lock:    o.Lock,
		Magic:   o.Magic,
		MaxSize: o.MaxSize,
		Exact:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("open hash table: %w", err)
	}

	return &HashTable[K, V]{
		region: r,
		mask:   uint64(o.Capacity - 1),
	}, nil
}

// Close unmaps the table. The file is kept.
func (t *HashTable[K, V]) Close() error {
	return t.region.Close()
}

// Sync forces the mapped pages to disk. Regular operations never call it.
func (t *HashTable[K, V]) Sync() error {
	return t.region.Sync()
}

// Capacity returns the number of slots.
func (t *HashTable[K, V]) Capacity() int {
	return int(t.mask + 1)
}

// Size returns the mapped size in bytes, header included.
func (t *HashTable[K, V]) Size() int {
	return t.region.Size()
}

// Path returns the path of the backing file.
func (t *HashTable[K, V]) Path() string {
	return t.region.Path()
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Update stores value for key, or deletes key if value is nil.
//
//   - key present, value set: only the value field is overwritten
//   - key present, value nil: the slot becomes a tombstone
//   - key absent, value set: the key is written to the first free slot of its probe sequence
//   - key absent, value nil: nothing happens
//
// Returns ErrStoreFull if a new key finds no slot, region.ErrClosed after Close.
func (t *HashTable[K, V]) Update(key K, value *V) error {
	_, err := t.update(key, value)
	return err
}

// Put stores value for key.
func (t *HashTable[K, V]) Put(key K, value V) error {
	_, err := t.update(key, &value)
	return err
}

// Set is Update without an error result.
// A full table or a closed table silently leaves the key unchanged.
func (t *HashTable[K, V]) Set(key K, value *V) {
	_ = t.Update(key, value)
}

// Delete removes key and reports whether a live entry was removed.
func (t *HashTable[K, V]) Delete(key K) (bool, error) {
	return t.update(key, nil)
}

// update is the shared implementation of Update, Put and Delete.
// The boolean reports whether an existing entry was turned into a tombstone.
func (t *HashTable[K, V]) update(key K, value *V) (deleted bool, err error) {
	err = t.region.WithExclusive(func(slots []Slot[K, V]) error {
		res, idx := t.probe(slots, key)

		switch res {
		case probeFound:
			if value != nil {
				slots[idx].Value = *value
			} else {
				slots[idx].State = StateTombstone
				deleted = true
			}

		case probeAvailable:
			if value != nil {
				// state last, so a torn write leaves a free slot instead of a half-written entry
				slot := &slots[idx]
				slot.Key = key
				slot.Value = *value
				slot.State = StateOccupied
			}

		case probeFull:
			if value != nil {
				log.Warningf("%s: rejected insert, all %d slots are occupied", t.region.Path(), len(slots))
				return ErrStoreFull
			}
		}
		return nil
	})
	return deleted, err
}

// RemoveAll resets every slot to empty.
func (t *HashTable[K, V]) RemoveAll() error {
	return t.region.WithExclusive(func(slots []Slot[K, V]) error {
		clear(slots)
		return nil
	})
}

// Compact rebuilds the table from its live entries, dropping all tombstones.
// It panics if a live entry cannot be reinserted, which is only possible if
// the file holds more live entries than slots.
func (t *HashTable[K, V]) Compact() error {
	return t.region.WithExclusive(func(slots []Slot[K, V]) error {
		live := make([]Slot[K, V], 0, len(slots))
		tombstones := 0
		for i := range slots {
			switch slots[i].State {
			case StateOccupied:
				live = append(live, slots[i])
			case StateTombstone:
				tombstones++
			}
		}

		clear(slots)
		for i := range live {
			t.reinsert(slots, &live[i])
		}

		log.Infof("%s: compacted %d live entries, removed %d tombstones", t.region.Path(), len(live), tombstones)
		return nil
	})
}

// reinsert places a live slot at the first empty index of its probe sequence.
// Only valid right after a reset, when no tombstones exist.
func (t *HashTable[K, V]) reinsert(slots []Slot[K, V], src *Slot[K, V]) {
	h1, h2 := src.Key.Hashes()
	idx := h1 & t.mask
	for n := uint64(0); n <= t.mask; n++ {
		if slots[idx].State == StateEmpty {
			dst := &slots[idx]
			dst.Key = src.Key
			dst.Value = src.Value
			dst.State = StateOccupied
			return
		}
		idx = (idx + h2) & t.mask
	}
	panic(fmt.Sprintf("hashtable: %s: no empty slot for a live entry during compaction", t.region.Path()))
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Get returns the value stored for key.
// It takes the same lock as writers, so the value is never torn.
func (t *HashTable[K, V]) Get(key K) (value V, ok bool) {
	_ = t.region.WithExclusive(func(slots []Slot[K, V]) error {
		if res, idx := t.probe(slots, key); res == probeFound {
			value, ok = slots[idx].Value, true
		}
		return nil
	})
	return value, ok
}

// Contains reports whether key is stored.
func (t *HashTable[K, V]) Contains(key K) bool {
	found := false
	_ = t.region.WithExclusive(func(slots []Slot[K, V]) error {
		res, _ := t.probe(slots, key)
		found = res == probeFound
		return nil
	})
	return found
}

// Count returns the number of live entries.
func (t *HashTable[K, V]) Count() int {
	count := 0
	_ = t.region.WithExclusive(func(slots []Slot[K, V]) error {
		for i := range slots {
			if slots[i].State == StateOccupied {
				count++
			}
		}
		return nil
	})
	return count
}

// IsEmpty reports whether the table holds no live entries.
func (t *HashTable[K, V]) IsEmpty() bool {
	return t.Count() == 0
}

// Keys returns the live keys in slot order.
func (t *HashTable[K, V]) Keys() []K {
	var keys []K
	_ = t.region.WithExclusive(func(slots []Slot[K, V]) error {
		for i := range slots {
			if slots[i].State == StateOccupied {
				keys = append(keys, slots[i].Key)
			}
		}
		return nil
	})
	return keys
}

// Entries returns the live key-value pairs in slot order.
func (t *HashTable[K, V]) Entries() []Entry[K, V] {
	var entries []Entry[K, V]
	_ = t.region.WithExclusive(func(slots []Slot[K, V]) error {
		for i := range slots {
			if slots[i].State == StateOccupied {
				entries = append(entries, Entry[K, V]{Key: slots[i].Key, Value: slots[i].Value})
			}
		}
		return nil
	})
	return entries
}
