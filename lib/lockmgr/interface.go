package lockmgr

// ILock is the lock policy a region uses to serialise access to its payload.
type ILock interface {
	// Acquire blocks until the caller holds the lock.
	Acquire()

	// Release releases a lock previously obtained with Acquire.
	Release()
}

// Kind names a lock policy.
type Kind string

const (
	KindNone  Kind = "none"
	KindMutex Kind = "mutex"
	KindFile  Kind = "file"
)
