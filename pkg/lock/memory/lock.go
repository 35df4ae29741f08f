package memory

import (
	"context"
	"sync"

	"github.com/code-payments/affiliate-market/pkg/lock"
)

// Manager is an in process lock.Manager. Locks are exclusive across every
// handle it creates.
type Manager struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLockManager() *Manager {
	return &Manager{
		slots: make(map[string]chan struct{}),
	}
}

// Create implements lock.Manager.Create
func (m *Manager) Create(_ context.Context, name string) (lock.DistributedLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.slots[name]
	if !ok {
		slot = make(chan struct{}, 1)
		m.slots[name] = slot
	}

	return &Lock{slot: slot}, nil
}

type Lock struct {
	slot chan struct{}

	mu     sync.Mutex
	lostCh chan struct{}
}

// Acquire implements lock.DistributedLock.Acquire
func (l *Lock) Acquire(ctx context.Context) (<-chan struct{}, error) {
	l.mu.Lock()
	if l.lostCh != nil {
		l.mu.Unlock()
		return nil, lock.ErrAlreadyAcquired
	}
	l.mu.Unlock()

	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.lostCh = make(chan struct{})
	return l.lostCh, nil
}

// Unlock implements lock.DistributedLock.Unlock
func (l *Lock) Unlock(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lostCh == nil {
		return nil
	}

	close(l.lostCh)
	l.lostCh = nil
	<-l.slot

	return nil
}

// IsLocked implements lock.DistributedLock.IsLocked
func (l *Lock) IsLocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.lostCh != nil
}
