package hashtable

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ValentinKolb/mmkv/lib/codec"
	"github.com/ValentinKolb/mmkv/lib/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pinnedKey carries its own hashes, so tests can force collisions.
type pinnedKey struct {
	ID uint64
	H1 uint64
	H2 uint64
}

func (k pinnedKey) Equal(other pinnedKey) bool { return k.ID == other.ID }
func (k pinnedKey) Hashes() (uint64, uint64)  { return k.H1, k.H2 }

// colliding returns a key that always starts probing at index 5 with step 3.
func colliding(id uint64) pinnedKey {
	return pinnedKey{ID: id, H1: 5, H2: 3}
}

func openPinned(t *testing.T, capacity int) *HashTable[pinnedKey, uint64] {
	t.Helper()
	ht, err := Open[pinnedKey, uint64](filepath.Join(t.TempDir(), "table.bin"), &Options{Capacity: capacity})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ht.Close() })
	return ht
}

// slotOf returns the index key is stored at, or -1.
func slotOf(t *testing.T, ht *HashTable[pinnedKey, uint64], key pinnedKey) int {
	t.Helper()
	at := -1
	require.NoError(t, ht.region.WithShared(func(slots []Slot[pinnedKey, uint64]) error {
		for i := range slots {
			if slots[i].State == StateOccupied && slots[i].Key.Equal(key) {
				require.Equal(t, -1, at, "key %d stored twice", key.ID)
				at = i
			}
		}
		return nil
	}))
	return at
}

func TestPutGetDelete(t *testing.T) {
	ht, err := Open[codec.Key, codec.Value](filepath.Join(t.TempDir(), "kv.bin"), nil)
	require.NoError(t, err)
	defer ht.Close()

	assert.Equal(t, DefaultCapacity, ht.Capacity())
	assert.True(t, ht.IsEmpty())

	v, _ := codec.ValueString("world")
	require.NoError(t, ht.Put(codec.MustKey("hello"), v))

	got, ok := ht.Get(codec.MustKey("hello"))
	require.True(t, ok)
	s, err := got.AsString()
	require.NoError(t, err)
	assert.Equal(t, "world", s)
	assert.True(t, ht.Contains(codec.MustKey("hello")))
	assert.Equal(t, 1, ht.Count())

	// overwrite keeps a single entry
	require.NoError(t, ht.Put(codec.MustKey("hello"), codec.ValueInt(7)))
	got, _ = ht.Get(codec.MustKey("hello"))
	i, err := got.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(7), i)
	assert.Equal(t, 1, ht.Count())

	deleted, err := ht.Delete(codec.MustKey("hello"))
	require.NoError(t, err)
	assert.True(t, deleted)
	_, ok = ht.Get(codec.MustKey("hello"))
	assert.False(t, ok)

	// deleting an absent key is a no-op
	deleted, err = ht.Delete(codec.MustKey("hello"))
	require.NoError(t, err)
	assert.False(t, deleted)

	// Update with nil deletes as well
	require.NoError(t, ht.Put(codec.MustKey("a"), codec.ValueBool(true)))
	require.NoError(t, ht.Update(codec.MustKey("a"), nil))
	assert.False(t, ht.Contains(codec.MustKey("a")))
	assert.True(t, ht.IsEmpty())
}

func TestProbeContinuesPastTombstones(t *testing.T) {
	ht := openPinned(t, 8)

	a, b, c, d := colliding(1), colliding(2), colliding(3), colliding(4)
	for i, k := range []pinnedKey{a, b, c, d} {
		require.NoError(t, ht.Put(k, uint64(i+1)*10))
	}
	assert.Equal(t, 5, slotOf(t, ht, a))
	assert.Equal(t, 0, slotOf(t, ht, b))
	assert.Equal(t, 3, slotOf(t, ht, c))
	assert.Equal(t, 6, slotOf(t, ht, d))

	_, err := ht.Delete(b)
	require.NoError(t, err)
	_, err = ht.Delete(c)
	require.NoError(t, err)

	// d is still reachable through two tombstones
	v, ok := ht.Get(d)
	require.True(t, ok)
	assert.Equal(t, uint64(40), v)
	assert.False(t, ht.Contains(b))
	assert.False(t, ht.Contains(c))
}

func TestDeletingInsideAChainKeepsTheRestReachable(t *testing.T) {
	ht := openPinned(t, 8)

	a, b, c, d := colliding(1), colliding(2), colliding(3), colliding(4)
	for i, k := range []pinnedKey{a, b, c, d} {
		require.NoError(t, ht.Put(k, uint64(i+1)*10))
	}

	deleted, err := ht.Delete(b)
	require.NoError(t, err)
	require.True(t, deleted)

	for i, k := range []pinnedKey{a, b, c, d} {
		v, ok := ht.Get(k)
		if k == b {
			assert.False(t, ok, "deleted key %d still found", k.ID)
			continue
		}
		require.True(t, ok, "key %d unreachable", k.ID)
		assert.Equal(t, uint64(i+1)*10, v)
	}
	assert.Equal(t, 3, ht.Count())
}

func TestTombstoneIsReusedWithoutDuplicates(t *testing.T) {
	ht := openPinned(t, 8)

	a, b, c := colliding(1), colliding(2), colliding(3)
	for _, k := range []pinnedKey{a, b, c} {
		require.NoError(t, ht.Put(k, k.ID))
	}
	_, err := ht.Delete(b)
	require.NoError(t, err)

	// updating c must overwrite it in place, not fill b's tombstone
	require.NoError(t, ht.Put(c, 33))
	assert.Equal(t, 3, slotOf(t, ht, c))
	assert.Equal(t, 2, ht.Count())

	// a new key takes the first tombstone of its sequence
	e := colliding(5)
	require.NoError(t, ht.Put(e, 55))
	assert.Equal(t, 0, slotOf(t, ht, e))

	// a deleted key comes back in the first free slot
	_, err = ht.Delete(a)
	require.NoError(t, err)
	require.NoError(t, ht.Put(b, 22))
	assert.Equal(t, 5, slotOf(t, ht, b))

	v, ok := ht.Get(c)
	require.True(t, ok)
	assert.Equal(t, uint64(33), v)
}

func TestCompactMovesEntriesToTheirCanonicalSlots(t *testing.T) {
	ht := openPinned(t, 8)

	keys := []pinnedKey{colliding(0), colliding(1), colliding(2), colliding(3)}
	for _, k := range keys {
		require.NoError(t, ht.Put(k, k.ID+100))
	}
	_, err := ht.Delete(keys[0])
	require.NoError(t, err)
	_, err = ht.Delete(keys[1])
	require.NoError(t, err)

	st := ht.Stats()
	assert.Equal(t, 2, st.Tombstones)
	assert.Equal(t, []int{2, 3}, st.ProbeLengths)

	require.NoError(t, ht.Compact())

	assert.Equal(t, 5, slotOf(t, ht, keys[2]))
	assert.Equal(t, 0, slotOf(t, ht, keys[3]))

	st = ht.Stats()
	assert.Equal(t, 0, st.Tombstones)
	assert.Equal(t, 2, st.Occupied)
	assert.Equal(t, 6, st.Empty)
	assert.Equal(t, []int{1, 0}, st.ProbeLengths)

	for _, k := range keys[2:] {
		v, ok := ht.Get(k)
		require.True(t, ok)
		assert.Equal(t, k.ID+100, v)
	}
}

func TestCompactAfterDeletingOneOfFourCollidingKeys(t *testing.T) {
	ht := openPinned(t, 8)

	k := []pinnedKey{colliding(0), colliding(1), colliding(2), colliding(3)}
	for _, key := range k {
		require.NoError(t, ht.Put(key, key.ID))
	}
	for _, key := range k {
		require.True(t, ht.Contains(key), "key %d", key.ID)
	}

	_, err := ht.Delete(k[1])
	require.NoError(t, err)
	assert.True(t, ht.Contains(k[0]))
	assert.False(t, ht.Contains(k[1]))
	assert.True(t, ht.Contains(k[2]))
	assert.True(t, ht.Contains(k[3]))

	require.NoError(t, ht.Compact())

	assert.Equal(t, 3, ht.Count())
	assert.ElementsMatch(t, []pinnedKey{k[0], k[2], k[3]}, ht.Keys())
	assert.Equal(t, 0, ht.Stats().Tombstones)
	for _, key := range []pinnedKey{k[0], k[2], k[3]} {
		v, ok := ht.Get(key)
		require.True(t, ok, "key %d", key.ID)
		assert.Equal(t, key.ID, v)
	}
}

func TestCompactKeepsEveryLiveEntry(t *testing.T) {
	ht, err := Open[codec.Key, codec.Value](filepath.Join(t.TempDir(), "kv.bin"), &Options{Capacity: 64})
	require.NoError(t, err)
	defer ht.Close()

	for i := 0; i < 60; i++ {
		require.NoError(t, ht.Put(codec.KeyInt(int64(i)), codec.ValueInt(int64(i*i))))
	}
	for i := 0; i < 60; i += 3 {
		_, err := ht.Delete(codec.KeyInt(int64(i)))
		require.NoError(t, err)
	}
	require.NoError(t, ht.Compact())

	st := ht.Stats()
	assert.Equal(t, 0, st.Tombstones)
	assert.Equal(t, 40, st.Occupied)

	for i := 0; i < 60; i++ {
		v, ok := ht.Get(codec.KeyInt(int64(i)))
		if i%3 == 0 {
			assert.False(t, ok, "key %d", i)
			continue
		}
		require.True(t, ok, "key %d", i)
		n, err := v.AsInt()
		require.NoError(t, err)
		assert.Equal(t, int64(i*i), n)
	}
}

func TestFullTableRejectsNewKeys(t *testing.T) {
	ht := openPinned(t, 4)

	for i := uint64(0); i < 4; i++ {
		require.NoError(t, ht.Put(pinnedKey{ID: i, H1: i, H2: 1}, i))
	}

	extra := pinnedKey{ID: 99, H1: 2, H2: 1}
	assert.ErrorIs(t, ht.Put(extra, 99), ErrStoreFull)
	assert.False(t, ht.Contains(extra))

	// Set drops the error
	v := uint64(99)
	ht.Set(extra, &v)
	assert.False(t, ht.Contains(extra))

	// existing keys can still be updated, absent keys still deleted
	require.NoError(t, ht.Put(pinnedKey{ID: 1, H1: 1, H2: 1}, 11))
	deleted, err := ht.Delete(extra)
	require.NoError(t, err)
	assert.False(t, deleted)

	// a tombstone frees room again
	_, err = ht.Delete(pinnedKey{ID: 3, H1: 3, H2: 1})
	require.NoError(t, err)
	require.NoError(t, ht.Put(extra, 99))
	assert.Equal(t, 3, slotOf(t, ht, extra))
}

func TestRejectedInsertLeavesEntriesUnchanged(t *testing.T) {
	ht := openPinned(t, 8)

	for i := uint64(0); i < 8; i++ {
		require.NoError(t, ht.Put(colliding(i), i*i))
	}
	before := ht.Entries()
	require.Len(t, before, 8)

	assert.ErrorIs(t, ht.Put(colliding(8), 64), ErrStoreFull)

	assert.Equal(t, before, ht.Entries())
	assert.Equal(t, 8, ht.Count())
}

func TestTableOfTombstones(t *testing.T) {
	ht := openPinned(t, 4)

	for i := uint64(0); i < 4; i++ {
		require.NoError(t, ht.Put(pinnedKey{ID: i, H1: i, H2: 1}, i))
	}
	for i := uint64(0); i < 4; i++ {
		_, err := ht.Delete(pinnedKey{ID: i, H1: i, H2: 1})
		require.NoError(t, err)
	}

	st := ht.Stats()
	assert.Equal(t, 4, st.Tombstones)
	assert.Equal(t, 1.0, st.LoadFactor)

	// lookups terminate without an empty slot
	assert.False(t, ht.Contains(pinnedKey{ID: 7, H1: 1, H2: 1}))

	// inserts reuse the first tombstone
	k := pinnedKey{ID: 7, H1: 2, H2: 1}
	require.NoError(t, ht.Put(k, 7))
	assert.Equal(t, 2, slotOf(t, ht, k))
}

func TestRemoveAll(t *testing.T) {
	ht := openPinned(t, 8)
	for i := uint64(0); i < 5; i++ {
		require.NoError(t, ht.Put(colliding(i), i))
	}
	_, err := ht.Delete(colliding(2))
	require.NoError(t, err)

	require.NoError(t, ht.RemoveAll())
	st := ht.Stats()
	assert.Equal(t, 8, st.Empty)
	assert.Empty(t, ht.Keys())
	assert.Empty(t, ht.Entries())
}

func TestEntriesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.bin")

	ht, err := Open[codec.Key, codec.Value](path, &Options{Capacity: 16})
	require.NoError(t, err)
	require.NoError(t, ht.Put(codec.MustKey("x"), codec.ValueInt(1)))
	require.NoError(t, ht.Put(codec.MustKey("y"), codec.ValueInt(2)))
	_, err = ht.Delete(codec.MustKey("y"))
	require.NoError(t, err)
	require.NoError(t, ht.Sync())
	require.NoError(t, ht.Close())

	ht, err = Open[codec.Key, codec.Value](path, &Options{Capacity: 16})
	require.NoError(t, err)
	defer ht.Close()

	v, ok := ht.Get(codec.MustKey("x"))
	require.True(t, ok)
	n, err := v.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, ht.Contains(codec.MustKey("y")))

	st := ht.Stats()
	assert.Equal(t, 1, st.Occupied)
	assert.Equal(t, 1, st.Tombstones)
}

func TestOpenRefusesForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a table, just some bytes"), 0600))

	_, err := Open[codec.Key, codec.Value](path, nil)
	assert.ErrorIs(t, err, region.ErrFormat)
}

func TestOpenRefusesFileOfALargerCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.bin")

	ht, err := Open[codec.Key, codec.Value](path, &Options{Capacity: 16})
	require.NoError(t, err)
	require.NoError(t, ht.Put(codec.MustKey("x"), codec.ValueInt(1)))
	require.NoError(t, ht.Close())

	_, err = Open[codec.Key, codec.Value](path, &Options{Capacity: 8})
	assert.ErrorIs(t, err, region.ErrFormat)

	// the file is untouched and opens with its own capacity
	ht, err = Open[codec.Key, codec.Value](path, &Options{Capacity: 16})
	require.NoError(t, err)
	defer ht.Close()
	assert.True(t, ht.Contains(codec.MustKey("x")))
}

func TestOpenValidatesCapacity(t *testing.T) {
	dir := t.TempDir()
	for _, capacity := range []int{-4, 3, 6, 100} {
		_, err := Open[codec.Key, codec.Value](filepath.Join(dir, fmt.Sprintf("c%d.bin", capacity)), &Options{Capacity: capacity})
		assert.ErrorIs(t, err, ErrCapacity, "capacity %d", capacity)
	}

	ht, err := Open[codec.Key, codec.Value](filepath.Join(dir, "one.bin"), &Options{Capacity: 1})
	require.NoError(t, err)
	defer ht.Close()
	require.NoError(t, ht.Put(codec.MustKey("only"), codec.ValueBool(true)))
	assert.ErrorIs(t, ht.Put(codec.MustKey("second"), codec.ValueBool(true)), ErrStoreFull)
}

func TestOpenRespectsSizeCeiling(t *testing.T) {
	_, err := Open[codec.Key, codec.Value](filepath.Join(t.TempDir(), "big.bin"), &Options{Capacity: 1 << 20, MaxSize: 1 << 20})
	assert.ErrorIs(t, err, region.ErrSize)
}

func TestConcurrentWriters(t *testing.T) {
	ht, err := Open[codec.Key, codec.Value](filepath.Join(t.TempDir(), "kv.bin"), &Options{Capacity: 1024})
	require.NoError(t, err)
	defer ht.Close()

	const workers, perWorker = 8, 100
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				k := codec.KeyInt(int64(w*perWorker + i))
				if err := ht.Put(k, codec.ValueInt(int64(w))); err != nil {
					t.Error(err)
					return
				}
				ht.Contains(k)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, ht.Count())
	for w := 0; w < workers; w++ {
		v, ok := ht.Get(codec.KeyInt(int64(w * perWorker)))
		require.True(t, ok)
		n, _ := v.AsInt()
		assert.Equal(t, int64(w), n)
	}
}

func TestClosedTable(t *testing.T) {
	ht := openPinned(t, 8)
	require.NoError(t, ht.Put(colliding(1), 1))
	require.NoError(t, ht.Close())

	err := ht.Put(colliding(2), 2)
	assert.True(t, errors.Is(err, region.ErrClosed))
	_, ok := ht.Get(colliding(1))
	assert.False(t, ok)
	assert.Equal(t, 0, ht.Count())
	assert.ErrorIs(t, ht.Compact(), region.ErrClosed)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Empty", StateEmpty.String())
	assert.Equal(t, "Occupied", StateOccupied.String())
	assert.Equal(t, "Tombstone", StateTombstone.String())
	assert.Equal(t, "Unknown", State(9).String())
}
