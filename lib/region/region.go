package region

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ValentinKolb/mmkv/lib/lockmgr"
	"github.com/lni/dragonboat/v4/logger"
	"golang.org/x/sys/unix"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// HeaderSize is the size of the magic number in front of the payload.
	HeaderSize = 8
	// MagicNumber is the default header of a region file.
	MagicNumber uint64 = 0x31564b4d4d00cafe
	// DefaultMaxSize is the default ceiling for header plus payload (1 GiB).
	DefaultMaxSize int64 = 1 << 30

	fileMode fs.FileMode = 0600
)

var log = logger.GetLogger("region")

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures how a region is opened.
type Options struct {
	Lock    lockmgr.ILock // Lock policy (nil = mutex)
	Magic   uint64        // Header value (0 = MagicNumber)
	MaxSize int64         // Ceiling for header + payload in bytes (0 = DefaultMaxSize)
	Exact   bool          // Refuse existing files longer than header + payload
}

// DefaultOptions returns options with a mutex lock, the default magic number and the default size ceiling.
func DefaultOptions() *Options {
	return &Options{
		Lock:    lockmgr.NewMutexLock(),
		Magic:   MagicNumber,
		MaxSize: DefaultMaxSize,
	}
}

// withDefaults returns a copy of opts with all zero fields filled in.
func withDefaults(opts *Options) Options {
	if opts == nil {
		return *DefaultOptions()
	}
	o := *opts
	if o.Lock == nil {
		o.Lock = lockmgr.NewMutexLock()
	}
	if o.Magic == 0 {
		o.Magic = MagicNumber
	}
	if o.MaxSize == 0 {
		o.MaxSize = DefaultMaxSize
	}
	return o
}

// --------------------------------------------------------------------------
// Region
// --------------------------------------------------------------------------

// Region is a file-backed shared mapping of n elements of the fixed-size record E.
type Region[E any] struct {
	path   string
	lock   lockmgr.ILock
	file   *os.File
	data   []byte // header + payload
	view   []E    // payload bound to E
	closed bool   // guarded by lock
}

// OpenRecord opens a region holding exactly one record of type R.
func OpenRecord[R any](path string, opts *Options) (*Region[R], error) {
	return Open[R](path, 1, opts)
}

// Open creates or opens the file at path and maps n elements of E onto it.
//
// A missing file is created; a file that is too short is grown with zero bytes.
// The header of an existing, non-empty file must match the magic number, a
// new (or empty) file gets the magic number written.
//
// Possible errors:
//   - ErrBind: E is not a fixed-size record, or n < 1
//   - ErrSize: the mapping would exceed opts.MaxSize
//   - ErrFormat: the existing header does not match, or opts.Exact is set and
//     the file is longer than the mapping
//   - ErrAlignment: the mapped payload is not aligned for E
//   - *IOError: a file system or mmap call failed
func Open[E any](path string, n int, opts *Options) (*Region[E], error) {
	o := withDefaults(opts)

	elemSize, _, err := layout[E]()
	if err != nil {
		return nil, err
	}
	size, err := requiredSize(n, elemSize, o.MaxSize)
	if err != nil {
		return nil, err
	}

	f, created, err := openOrCreate(path)
	if err != nil {
		return nil, err
	}

	// from here on the file must be closed on every error path
	fail := func(err error) (*Region[E], error) {
		_ = f.Close()
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		return fail(&IOError{Op: "stat", Path: path, Err: err})
	}

	fresh := created || fi.Size() == 0
	if !fresh {
		// check the header before touching the file so a foreign file is never grown
		if err := checkHeader(f, fi.Size(), o.Magic); err != nil {
			return fail(fmt.Errorf("%s: %w", path, err))
		}
		if o.Exact && fi.Size() > size {
			return fail(fmt.Errorf("%s: %w: file has %d bytes, expected %d", path, ErrFormat, fi.Size(), size))
		}
	}

	if fi.Size() < size {
		if err := f.Truncate(size); err != nil {
			return fail(&IOError{Op: "truncate", Path: path, Err: err})
		}
		if !fresh {
			log.Infof("grew %s from %d to %d bytes", path, fi.Size(), size)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fail(&IOError{Op: "mmap", Path: path, Err: err})
	}

	view, err := bind[E](data[HeaderSize:], n)
	if err != nil {
		_ = unix.Munmap(data)
		return fail(err)
	}

	if fresh {
		binary.LittleEndian.PutUint64(data[:HeaderSize], o.Magic)
		log.Infof("created %s (%d elements, %d bytes)", path, n, size)
	} else {
		log.Debugf("opened %s (%d elements, %d bytes)", path, n, size)
	}

	return &Region[E]{
		path: path,
		lock: o.Lock,
		file: f,
		data: data,
		view: view,
	}, nil
}

// openOrCreate opens path read-write, creating it if it does not exist.
// The boolean reports whether the file was created by this call.
func openOrCreate(path string) (*os.File, bool, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, fileMode)
	if err == nil {
		return f, true, nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return nil, false, &IOError{Op: "create", Path: path, Err: err}
	}

	f, err = os.OpenFile(path, os.O_RDWR, fileMode)
	if err != nil {
		return nil, false, &IOError{Op: "open", Path: path, Err: err}
	}
	return f, false, nil
}

// checkHeader reads the first HeaderSize bytes of f and compares them to magic.
func checkHeader(f *os.File, fileSize int64, magic uint64) error {
	if fileSize < HeaderSize {
		return fmt.Errorf("%w: file has only %d bytes", ErrFormat, fileSize)
	}

	var header [HeaderSize]byte
	if _, err := f.ReadAt(header[:], 0); err != nil {
		return &IOError{Op: "read header", Path: f.Name(), Err: err}
	}

	if got := binary.LittleEndian.Uint64(header[:]); got != magic {
		return fmt.Errorf("%w: got %#016x, expected %#016x", ErrFormat, got, magic)
	}
	return nil
}

// --------------------------------------------------------------------------
// Access
// --------------------------------------------------------------------------

// WithExclusive calls fn with the mapped elements while holding the region's lock.
// The lock is released on every exit path; fn's error is returned unchanged.
// The view must not be retained after fn returns.
func (r *Region[E]) WithExclusive(fn func(view []E) error) error {
	r.lock.Acquire()
	defer r.lock.Release()

	if r.closed {
		return ErrClosed
	}
	return fn(r.view)
}

// WithShared calls fn with the mapped elements without taking the lock.
// Only for callers that synchronise access to the region themselves. That
// includes Close: a WithShared call running concurrently with Close may touch
// memory that has already been unmapped.
func (r *Region[E]) WithShared(fn func(view []E) error) error {
	if r.closed {
		return ErrClosed
	}
	return fn(r.view)
}

// Sync writes the mapped pages back to the file synchronously.
// Regular operations never call it.
func (r *Region[E]) Sync() error {
	r.lock.Acquire()
	defer r.lock.Release()

	if r.closed {
		return ErrClosed
	}
	if err := unix.Msync(r.data, unix.MS_SYNC); err != nil {
		return &IOError{Op: "msync", Path: r.path, Err: err}
	}
	return nil
}

// Close unmaps the region and closes the file and the lock (if the lock is an io.Closer).
// The file is kept. Closing an already closed region is a no-op.
func (r *Region[E]) Close() error {
	r.lock.Acquire()
	if r.closed {
		r.lock.Release()
		return nil
	}
	r.closed = true
	r.view = nil

	var errs []error
	if err := unix.Munmap(r.data); err != nil {
		errs = append(errs, &IOError{Op: "munmap", Path: r.path, Err: err})
	}
	r.data = nil
	if err := r.file.Close(); err != nil {
		errs = append(errs, &IOError{Op: "close", Path: r.path, Err: err})
	}
	r.lock.Release()

	if closer, ok := r.lock.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, &IOError{Op: "close lock", Path: r.path, Err: err})
		}
	}
	return errors.Join(errs...)
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Path returns the path of the backing file.
func (r *Region[E]) Path() string {
	return r.path
}

// Len returns the number of mapped elements.
func (r *Region[E]) Len() int {
	return len(r.view)
}

// Size returns the number of mapped bytes including the header.
func (r *Region[E]) Size() int {
	return len(r.data)
}
