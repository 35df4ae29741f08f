package lock

import (
	"context"
	"errors"
)

var (
	ErrManagerClosed   = errors.New("lock manager is closed")
	ErrAlreadyAcquired = errors.New("lock is already acquired by this handle")
)

// Manager creates named locks. A campaign, for example, is guarded by the lock
// named "campaign/<address>".
//
// Locks for the same name produced by the same etcd backed Manager share a
// session and are re-entrant. Callers coordinating goroutines within a process
// must also hold a local lock for the name.
type Manager interface {
	// Create creates an unlocked DistributedLock for a specific name.
	Create(ctx context.Context, name string) (DistributedLock, error)
}

// DistributedLock is a handle to a lock that spans across multiple processes.
type DistributedLock interface {
	// Acquire blocks until the lock has been acquired, or the context is done.
	//
	// The returned channel is closed when the lock is lost, which happens when
	// Unlock() is called or the backend can no longer guarantee ownership.
	Acquire(ctx context.Context) (<-chan struct{}, error)

	// Unlock unlocks the lock, if the lock is held.
	//
	// Unlock is idempotent.
	Unlock(ctx context.Context) error

	// IsLocked returns whether the lock is held by this handle.
	IsLocked() bool
}
