package etcd

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	v3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"

	"github.com/code-payments/affiliate-market/pkg/lock"
)

// LockManager is a lock.Manager backed by etcd mutexes. Every lock it creates
// is held under a single lease, so all of them are released if the process
// stops heartbeating.
type LockManager struct {
	log     *logrus.Entry
	client  *v3.Client
	rootKey string
	lockTTL int

	closeOnce sync.Once
	closeCh   chan struct{}

	sessionMu sync.Mutex
	session   *concurrency.Session
}

func NewLockManager(client *v3.Client, rootKey string, lockTTL time.Duration) (*LockManager, error) {
	// concurrency.WithTTL silently falls back to 60s outside of this range
	if lockTTL < time.Second || lockTTL > time.Minute {
		return nil, errors.Errorf("invalid lock ttl: %s (must be [1s, 60s])", lockTTL)
	}

	lm := &LockManager{
		log: logrus.StandardLogger().WithFields(logrus.Fields{
			"type": "lock/etcd",
			"root": rootKey,
		}),
		client:  client,
		rootKey: rootKey,
		lockTTL: int(lockTTL.Round(time.Second).Seconds()),
		closeCh: make(chan struct{}),
	}

	session, err := lm.newSession()
	if err != nil {
		return nil, errors.Wrap(err, "error creating etcd session")
	}
	lm.session = session

	go lm.maintainSession()

	return lm, nil
}

// Create implements lock.Manager.Create
func (lm *LockManager) Create(_ context.Context, name string) (lock.DistributedLock, error) {
	lm.sessionMu.Lock()
	defer lm.sessionMu.Unlock()

	if lm.session == nil {
		return nil, lock.ErrManagerClosed
	}

	return &Lock{
		log: lm.log.WithField("key", path.Join(lm.rootKey, name)),
		lm:  lm,
		key: path.Join(lm.rootKey, name),
	}, nil
}

// Close closes the manager. Every lock held through it is released.
func (lm *LockManager) Close() {
	lm.closeOnce.Do(func() {
		lm.sessionMu.Lock()
		defer lm.sessionMu.Unlock()

		close(lm.closeCh)

		if err := lm.session.Close(); err != nil {
			lm.log.WithError(err).Warn("failure closing etcd session")
		}
		lm.session = nil
	})
}

func (lm *LockManager) newSession() (*concurrency.Session, error) {
	return concurrency.NewSession(
		lm.client,
		concurrency.WithTTL(lm.lockTTL),
		concurrency.WithContext(v3.WithRequireLeader(context.Background())),
	)
}

func (lm *LockManager) currentSession() (*concurrency.Session, error) {
	lm.sessionMu.Lock()
	defer lm.sessionMu.Unlock()

	if lm.session == nil {
		return nil, lock.ErrManagerClosed
	}
	return lm.session, nil
}

// maintainSession replaces the session whenever its lease expires. Locks held
// under the expired session observe the loss through their lost channel.
func (lm *LockManager) maintainSession() {
	for {
		session, err := lm.currentSession()
		if err != nil {
			return
		}

		select {
		case <-lm.closeCh:
			return
		case <-session.Done():
		}

		lm.log.Info("etcd session expired, recreating")

		for {
			select {
			case <-lm.closeCh:
				return
			default:
			}

			session, err = lm.newSession()
			if err == nil {
				break
			}

			lm.log.WithError(err).Warn("failure recreating etcd session, retrying in 1s")
			time.Sleep(time.Second)
		}

		lm.sessionMu.Lock()
		if lm.session == nil {
			lm.sessionMu.Unlock()
			session.Close()
			return
		}
		lm.session = session
		lm.sessionMu.Unlock()
	}
}

type Lock struct {
	log *logrus.Entry
	lm  *LockManager
	key string

	mu       sync.Mutex
	mutex    *concurrency.Mutex
	unlockCh chan struct{}
}

// Acquire implements lock.DistributedLock.Acquire
func (l *Lock) Acquire(ctx context.Context) (<-chan struct{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mutex != nil {
		return nil, lock.ErrAlreadyAcquired
	}

	session, err := l.lm.currentSession()
	if err != nil {
		return nil, err
	}

	mutex := concurrency.NewMutex(session, l.key)
	if err := mutex.Lock(ctx); err != nil {
		return nil, errors.Wrap(err, "error acquiring etcd mutex")
	}

	l.log.Debug("lock acquired")

	l.mutex = mutex
	l.unlockCh = make(chan struct{})

	lostCh := make(chan struct{})
	go func(unlockCh chan struct{}) {
		defer close(lostCh)

		select {
		case <-unlockCh:
		case <-session.Done():
			l.log.Warn("etcd session ended while holding lock")

			l.mu.Lock()
			if l.unlockCh == unlockCh {
				l.mutex = nil
				l.unlockCh = nil
			}
			l.mu.Unlock()
		}
	}(l.unlockCh)

	return lostCh, nil
}

// Unlock implements lock.DistributedLock.Unlock
func (l *Lock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mutex == nil {
		return nil
	}

	err := l.mutex.Unlock(ctx)

	close(l.unlockCh)
	l.mutex = nil
	l.unlockCh = nil

	if err != nil {
		return errors.Wrap(err, "error releasing etcd mutex")
	}
	return nil
}

// IsLocked implements lock.DistributedLock.IsLocked
func (l *Lock) IsLocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mutex != nil
}
