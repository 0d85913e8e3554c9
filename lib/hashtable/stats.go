package hashtable

// Stats describes the slot usage of a table at one point in time.
type Stats struct {
	Capacity   int     `json:"capacity"`
	Occupied   int     `json:"occupied"`
	Tombstones int     `json:"tombstones"`
	Empty      int     `json:"empty"`
	LoadFactor float64 `json:"load_factor"` // (occupied + tombstones) / capacity
	MaxProbe   int     `json:"max_probe"`
	MeanProbe  float64 `json:"mean_probe"`

	// ProbeLengths holds, per live entry in slot order, the number of steps
	// between its canonical index and the index it is stored at.
	ProbeLengths []int `json:"-"`
}

// Stats scans the whole table under the lock. O(N) plus the probe walks of the live entries.
func (t *HashTable[K, V]) Stats() Stats {
	st := Stats{Capacity: t.Capacity()}

	_ = t.region.WithExclusive(func(slots []Slot[K, V]) error {
		total := 0
		for i := range slots {
			switch slots[i].State {
			case StateOccupied:
				st.Occupied++
				n := t.probeLength(slots[i].Key, uint64(i))
				st.ProbeLengths = append(st.ProbeLengths, n)
				total += n
				if n > st.MaxProbe {
					st.MaxProbe = n
				}
			case StateTombstone:
				st.Tombstones++
			default:
				st.Empty++
			}
		}
		if st.Occupied > 0 {
			st.MeanProbe = float64(total) / float64(st.Occupied)
		}
		return nil
	})

	st.LoadFactor = float64(st.Occupied+st.Tombstones) / float64(st.Capacity)
	return st
}
