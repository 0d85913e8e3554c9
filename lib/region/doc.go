// Package region maps a fixed-layout record onto a file through a shared memory
// mapping. Writes to the record are writes to the page cache, so the last
// completed operation survives a crash of the process without any explicit
// serialisation step.
//
// File Layout:
//
//	bytes[0..8)      magic number (little-endian uint64)
//	bytes[8..8+S)    raw bytes of n contiguous elements of type E (S = n*sizeof(E))
//
// The file is created with mode 0600 if it does not exist and grown with
// truncate if it is shorter than required. It is never shrunk or deleted.
// There is no version field: a format change requires a new magic number, and a
// file with an unknown header is refused with ErrFormat.
//
// Records:
//
//	E must be a fixed-size record: bools, sized integers, floats, complex
//	numbers, and arrays or structs built from those. Pointers, slices, strings,
//	maps, channels, funcs, interfaces, uintptr and unsafe.Pointer are rejected
//	with ErrBind when the region is opened, because their bytes are meaningless
//	once written to a file. Open checks this with reflection; it is the only
//	validation of E and happens once.
//
// Locking:
//
//	Every access to the payload goes through WithExclusive, which holds the
//	injected lockmgr.ILock while the callback runs and releases it on every exit
//	path (including panics). WithShared skips the lock for callers that
//	synchronise externally. Two regions over the same file never share a lock;
//	they only share the page cache.
//
// Durability:
//
//	No msync is issued by any operation. The OS writes dirty pages back on its
//	own schedule. Sync forces a synchronous write-back for callers that need it.
//
// Usage Example:
//
//	type counter struct{ N uint64 }
//
//	r, err := region.OpenRecord[counter]("counter.bin", nil)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	err = r.WithExclusive(func(view []counter) error {
//	    view[0].N++
//	    return nil
//	})
package region
