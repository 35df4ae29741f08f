package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/lock"
)

func TestLock_HappyPath(t *testing.T) {
	ctx := context.Background()
	lm := NewLockManager()

	l, err := lm.Create(ctx, "campaign/abc")
	require.NoError(t, err)
	assert.False(t, l.IsLocked())

	lostCh, err := l.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, l.IsLocked())

	_, err = l.Acquire(ctx)
	assert.Equal(t, lock.ErrAlreadyAcquired, err)

	require.NoError(t, l.Unlock(ctx))
	assert.False(t, l.IsLocked())

	select {
	case <-lostCh:
	default:
		assert.Fail(t, "lost channel should be closed after unlock")
	}

	require.NoError(t, l.Unlock(ctx))
}

func TestLock_ExclusiveAcrossHandles(t *testing.T) {
	ctx := context.Background()
	lm := NewLockManager()

	first, err := lm.Create(ctx, "campaign/abc")
	require.NoError(t, err)
	second, err := lm.Create(ctx, "campaign/abc")
	require.NoError(t, err)
	other, err := lm.Create(ctx, "campaign/xyz")
	require.NoError(t, err)

	_, err = first.Acquire(ctx)
	require.NoError(t, err)

	_, err = other.Acquire(ctx)
	require.NoError(t, err)

	timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = second.Acquire(timeoutCtx)
	assert.Equal(t, context.DeadlineExceeded, err)
	assert.False(t, second.IsLocked())

	acquired := make(chan struct{})
	go func() {
		_, err := second.Acquire(ctx)
		assert.NoError(t, err)
		close(acquired)
	}()

	select {
	case <-acquired:
		assert.Fail(t, "lock acquired while held")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, first.Unlock(ctx))

	select {
	case <-acquired:
	case <-time.After(time.Second):
		assert.Fail(t, "lock not acquired after release")
	}
	assert.True(t, second.IsLocked())
}

func TestLock_Contention(t *testing.T) {
	ctx := context.Background()
	lm := NewLockManager()

	var counter, maxConcurrent, current int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			l, err := lm.Create(ctx, "campaign/abc")
			require.NoError(t, err)

			_, err = l.Acquire(ctx)
			require.NoError(t, err)

			mu.Lock()
			current++
			if current > maxConcurrent {
				maxConcurrent = current
			}
			counter++
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()

			require.NoError(t, l.Unlock(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, 32, counter)
	assert.Equal(t, 1, maxConcurrent)
}
