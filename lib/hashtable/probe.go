package hashtable

type probeResult int

const (
	probeFound     probeResult = iota // key stored at the returned index
	probeAvailable                    // key absent, the returned index can take it
	probeFull                         // key absent, no slot can take it
)

// probe walks the probe sequence of key. The caller must hold the region lock.
func (t *HashTable[K, V]) probe(slots []Slot[K, V], key K) (probeResult, uint64) {
	h1, h2 := key.Hashes()
	idx := h1 & t.mask

	var (
		tombstone     uint64
		haveTombstone bool
	)

	for n := uint64(0); n <= t.mask; n++ {
		slot := &slots[idx]
		switch slot.State {
		case StateOccupied:
			if slot.Key.Equal(key) {
				return probeFound, idx
			}
		case StateTombstone:
			if !haveTombstone {
				tombstone, haveTombstone = idx, true
			}
		case StateEmpty:
			if haveTombstone {
				return probeAvailable, tombstone
			}
			return probeAvailable, idx
		}
		idx = (idx + h2) & t.mask
	}

	if haveTombstone {
		return probeAvailable, tombstone
	}
	return probeFull, 0
}

// probeLength returns how many steps the probe sequence of key needs to reach target.
func (t *HashTable[K, V]) probeLength(key K, target uint64) int {
	h1, h2 := key.Hashes()
	idx := h1 & t.mask
	for n := 0; uint64(n) <= t.mask; n++ {
		if idx == target {
			return n
		}
		idx = (idx + h2) & t.mask
	}
	// unreachable for an odd step, the sequence covers every index
	return int(t.mask + 1)
}
