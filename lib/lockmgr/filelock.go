package lockmgr

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// fileLockImpl combines an in-process mutex with an advisory flock on a lock file.
// The mutex is needed because flock is per open file description, so two
// goroutines sharing the descriptor would not exclude each other.
type fileLockImpl struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileLock opens (or creates) the lock file at path and returns a lock that
// holds an exclusive flock on it between Acquire and Release.
func NewFileLock(path string) (ILock, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	return &fileLockImpl{file: f}, nil
}

func (l *fileLockImpl) Acquire() {
	l.mu.Lock()
	if err := flock(l.file, unix.LOCK_EX); err != nil {
		l.mu.Unlock()
		// the descriptor was valid at construction, so this is not recoverable
		panic(fmt.Sprintf("lockmgr: flock %s: %v", l.file.Name(), err))
	}
}

func (l *fileLockImpl) Release() {
	if err := flock(l.file, unix.LOCK_UN); err != nil {
		l.mu.Unlock()
		panic(fmt.Sprintf("lockmgr: funlock %s: %v", l.file.Name(), err))
	}
	l.mu.Unlock()
}

// Close closes the lock file. A region closes its lock when it is closed itself.
func (l *fileLockImpl) Close() error {
	return l.file.Close()
}

// flock retries the call when it is interrupted by a signal.
func flock(f *os.File, how int) error {
	for {
		err := unix.Flock(int(f.Fd()), how)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
