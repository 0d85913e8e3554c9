package mmht

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/ValentinKolb/mmkv/lib/db"
	"github.com/puzpuzpuz/xsync/v3"
)

// sharedEntry is one open database and the number of handles using it
type sharedEntry struct {
	impl *mmhtImpl
	refs int
}

// registry maps cleaned absolute paths to the open databases of this process
var registry = xsync.NewMapOf[string, *sharedEntry]()

// sharedHandle is a reference to a registry entry. Close releases the reference.
type sharedHandle struct {
	*mmhtImpl
	path   string
	closed atomic.Bool
}

// OpenShared returns a handle to the database at path that shares its mapping
// and lock with every other handle of this process opened for the same file.
// Options only apply when the file is not open yet. The database is closed
// when the last handle is closed.
func OpenShared(path string, opts *Options) (db.KVDB, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	abs = filepath.Clean(abs)

	var openErr error
	entry, ok := registry.Compute(abs, func(old *sharedEntry, loaded bool) (*sharedEntry, bool) {
		if loaded {
			old.refs++
			return old, false
		}
		impl, err := open(abs, opts)
		if err != nil {
			openErr = err
			return nil, true
		}
		return &sharedEntry{impl: impl, refs: 1}, false
	})
	if openErr != nil {
		return nil, openErr
	}
	if !ok {
		return nil, fmt.Errorf("open shared %s: entry vanished", abs)
	}

	return &sharedHandle{mmhtImpl: entry.impl, path: abs}, nil
}

// Close releases this handle. Further calls are no-ops.
func (h *sharedHandle) Close() error {
	if h.closed.Swap(true) {
		return nil
	}

	var closeErr error
	registry.Compute(h.path, func(old *sharedEntry, loaded bool) (*sharedEntry, bool) {
		if !loaded {
			return nil, true
		}
		old.refs--
		if old.refs > 0 {
			return old, false
		}
		closeErr = old.impl.Close()
		return nil, true
	})
	return closeErr
}

