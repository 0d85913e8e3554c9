// Package lockmgr provides the lock policies used to serialise access to a
// memory-mapped region. A policy is injected into the region when it is opened
// and held as an owned field; there is no package-level lock.
//
// Every policy implements the two-method ILock interface:
//
//	type ILock interface {
//	    Acquire()
//	    Release()
//	}
//
// Available Policies:
//
//   - NewNoopLock: Acquire and Release do nothing. Only safe when a single
//     goroutine uses the store (or the caller synchronises externally).
//
//   - NewMutexLock: a sync.Mutex. The default policy; serialises every read and
//     write of one region instance inside one process.
//
//   - NewFileLock: a sync.Mutex combined with an advisory flock(2) on a lock
//     file next to the store. This additionally serialises instances in
//     different processes that use the same lock file. It is opt-in; two
//     instances that do not share a lock file are not coordinated.
//
// Policies are selected by name with Parse ("none", "mutex", "file"), which is
// what the command line uses.
//
// Usage Example:
//
//	lock := lockmgr.NewMutexLock()
//	lock.Acquire()
//	defer lock.Release()
//	// ... touch the mapped payload ...
//
// Blocking:
//
//	Acquire blocks until the lock is available. There is no timeout and no
//	cancellation. Callers that need responsiveness keep critical sections short.
package lockmgr
