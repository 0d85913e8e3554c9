package lockmgr

import (
	"fmt"
	"sync"
)

// --------------------------------------------------------------------------
// No-op lock
// --------------------------------------------------------------------------

type noopLockImpl struct{}

// NewNoopLock returns a lock that does nothing.
// It must only be used when a single goroutine accesses the store.
func NewNoopLock() ILock {
	return noopLockImpl{}
}

func (noopLockImpl) Acquire() {}

func (noopLockImpl) Release() {}

// --------------------------------------------------------------------------
// Mutex lock
// --------------------------------------------------------------------------

type mutexLockImpl struct {
	mu sync.Mutex
}

// NewMutexLock returns a lock backed by a sync.Mutex.
func NewMutexLock() ILock {
	return &mutexLockImpl{}
}

func (l *mutexLockImpl) Acquire() {
	l.mu.Lock()
}

func (l *mutexLockImpl) Release() {
	l.mu.Unlock()
}

// --------------------------------------------------------------------------
// Policy selection
// --------------------------------------------------------------------------

// Parse creates the lock policy with the given name.
// The storePath is only used by the file policy, which locks storePath + ".lock".
func Parse(kind string, storePath string) (ILock, error) {
	switch Kind(kind) {
	case KindNone:
		return NewNoopLock(), nil
	case KindMutex, "":
		return NewMutexLock(), nil
	case KindFile:
		return NewFileLock(storePath + ".lock")
	default:
		return nil, fmt.Errorf("invalid lock policy %q (expected one of: none, mutex, file)", kind)
	}
}
