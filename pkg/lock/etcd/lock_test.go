//go:build integration

package etcd

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"
	v3 "go.etcd.io/etcd/client/v3"

	"github.com/code-payments/affiliate-market/pkg/etcdtest"
	"github.com/code-payments/affiliate-market/pkg/lock"
)

func TestLock(t *testing.T) {
	require := require.New(t)

	pool, err := dockertest.NewPool("")
	require.NoError(err)

	client, teardown, err := etcdtest.StartEtcd(pool)
	require.NoError(err)
	defer teardown()

	for _, tc := range []struct {
		name string
		f    func(t *testing.T, client *v3.Client)
	}{
		{name: "Happy", f: testHappy},
		{name: "MultipleManagers", f: testMultipleManagers},
		{name: "Cancellation", f: testCancellation},
		{name: "Close", f: testClose},
		{name: "DoubleAcquire", f: testDoubleAcquire},
		{name: "DoubleUnlock", f: testDoubleUnlock},
	} {
		t.Run(tc.name, func(t *testing.T) { tc.f(t, client) })
	}
}

func testHappy(t *testing.T, client *v3.Client) {
	require := require.New(t)

	lm, err := NewLockManager(client, "/locks", 10*time.Second)
	require.NoError(err)
	defer lm.Close()

	l, err := lm.Create(context.Background(), "campaign/happy")
	require.NoError(err)
	require.False(l.IsLocked())

	lostCh, err := l.Acquire(context.Background())
	require.NoError(err)
	require.True(l.IsLocked())

	kvs, err := client.Get(context.Background(), "/locks/campaign/happy", v3.WithPrefix())
	require.NoError(err)
	require.Len(kvs.Kvs, 1)

	require.NoError(l.Unlock(context.Background()))
	require.False(l.IsLocked())

	select {
	case <-lostCh:
	case <-time.After(time.Second):
		require.Fail("lost channel not closed after unlock")
	}

	kvs, err = client.Get(context.Background(), "/locks/campaign/happy", v3.WithPrefix())
	require.NoError(err)
	require.Empty(kvs.Kvs)
}

func testMultipleManagers(t *testing.T, client *v3.Client) {
	require := require.New(t)

	first, err := NewLockManager(client, "/locks", 10*time.Second)
	require.NoError(err)
	defer first.Close()

	second, err := NewLockManager(client, "/locks", 10*time.Second)
	require.NoError(err)
	defer second.Close()

	l1, err := first.Create(context.Background(), "campaign/shared")
	require.NoError(err)
	l2, err := second.Create(context.Background(), "campaign/shared")
	require.NoError(err)

	_, err = l1.Acquire(context.Background())
	require.NoError(err)

	acquired := make(chan struct{})
	go func() {
		_, err := l2.Acquire(context.Background())
		require.NoError(err)
		close(acquired)
	}()

	select {
	case <-acquired:
		require.Fail("second manager acquired a held lock")
	case <-time.After(500 * time.Millisecond):
	}

	require.NoError(l1.Unlock(context.Background()))

	select {
	case <-acquired:
	case <-time.After(5 * time.Second):
		require.Fail("second manager never acquired the released lock")
	}

	require.True(l2.IsLocked())
	require.NoError(l2.Unlock(context.Background()))
}

func testCancellation(t *testing.T, client *v3.Client) {
	require := require.New(t)

	first, err := NewLockManager(client, "/locks", 10*time.Second)
	require.NoError(err)
	defer first.Close()

	second, err := NewLockManager(client, "/locks", 10*time.Second)
	require.NoError(err)
	defer second.Close()

	l1, err := first.Create(context.Background(), "campaign/cancel")
	require.NoError(err)
	l2, err := second.Create(context.Background(), "campaign/cancel")
	require.NoError(err)

	_, err = l1.Acquire(context.Background())
	require.NoError(err)
	defer l1.Unlock(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	_, err = l2.Acquire(ctx)
	require.Error(err)
	require.False(l2.IsLocked())
}

func testClose(t *testing.T, client *v3.Client) {
	require := require.New(t)

	lm, err := NewLockManager(client, "/locks", 10*time.Second)
	require.NoError(err)

	l, err := lm.Create(context.Background(), "campaign/close")
	require.NoError(err)

	lostCh, err := l.Acquire(context.Background())
	require.NoError(err)

	lm.Close()

	select {
	case <-lostCh:
	case <-time.After(5 * time.Second):
		require.Fail("lock not lost after manager close")
	}

	_, err = lm.Create(context.Background(), "campaign/close")
	require.Equal(lock.ErrManagerClosed, err)

	kvs, err := client.Get(context.Background(), "/locks/campaign/close", v3.WithPrefix())
	require.NoError(err)
	require.Empty(kvs.Kvs)
}

func testDoubleAcquire(t *testing.T, client *v3.Client) {
	require := require.New(t)

	lm, err := NewLockManager(client, "/locks", 10*time.Second)
	require.NoError(err)
	defer lm.Close()

	l, err := lm.Create(context.Background(), "campaign/double_acquire")
	require.NoError(err)

	_, err = l.Acquire(context.Background())
	require.NoError(err)

	_, err = l.Acquire(context.Background())
	require.Equal(lock.ErrAlreadyAcquired, err)

	require.NoError(l.Unlock(context.Background()))
}

func testDoubleUnlock(t *testing.T, client *v3.Client) {
	require := require.New(t)

	lm, err := NewLockManager(client, "/locks", 10*time.Second)
	require.NoError(err)
	defer lm.Close()

	l, err := lm.Create(context.Background(), "campaign/double_unlock")
	require.NoError(err)

	_, err = l.Acquire(context.Background())
	require.NoError(err)

	require.NoError(l.Unlock(context.Background()))
	require.NoError(l.Unlock(context.Background()))
	require.False(l.IsLocked())
}
