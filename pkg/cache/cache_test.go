package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_InsertAndRetrieve(t *testing.T) {
	c := New[string]("test", 10)

	_, ok := c.Retrieve("a")
	assert.False(t, ok)

	require.NoError(t, c.Insert("a", "value-a", 2))
	require.NoError(t, c.Insert("b", "value-b", 3))
	assert.Equal(t, 5, c.GetWeight())
	assert.Equal(t, 10, c.GetBudget())

	value, ok := c.Retrieve("a")
	require.True(t, ok)
	assert.Equal(t, "value-a", value)

	assert.Equal(t, ErrKeyExists, c.Insert("a", "other", 1))
	value, _ = c.Retrieve("a")
	assert.Equal(t, "value-a", value)
	assert.Equal(t, 5, c.GetWeight())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int]("test", 3)

	for i, key := range []string{"a", "b", "c"} {
		require.NoError(t, c.Insert(key, i, 1))
	}

	// Touching a makes b the least recently used
	_, ok := c.Retrieve("a")
	require.True(t, ok)

	require.NoError(t, c.Insert("d", 3, 1))
	assert.Equal(t, 3, c.GetWeight())

	_, ok = c.Retrieve("b")
	assert.False(t, ok)
	for _, key := range []string{"a", "c", "d"} {
		_, ok = c.Retrieve(key)
		assert.True(t, ok, key)
	}

	// A heavy entry evicts as many entries as needed
	require.NoError(t, c.Insert("e", 4, 2))
	assert.Equal(t, 3, c.GetWeight())
	_, ok = c.Retrieve("a")
	assert.False(t, ok)
	_, ok = c.Retrieve("c")
	assert.False(t, ok)
	_, ok = c.Retrieve("d")
	assert.True(t, ok)
	_, ok = c.Retrieve("e")
	assert.True(t, ok)

	// An entry heavier than the budget never stays cached
	require.NoError(t, c.Insert("f", 5, 4))
	assert.Equal(t, 0, c.GetWeight())
	_, ok = c.Retrieve("f")
	assert.False(t, ok)
}

func TestCache_RemoveAndClear(t *testing.T) {
	c := New[int]("test", 10)

	for i, key := range []string{"a", "b", "c"} {
		require.NoError(t, c.Insert(key, i, 1))
	}

	c.Remove("b")
	c.Remove("missing")
	assert.Equal(t, 2, c.GetWeight())
	_, ok := c.Retrieve("b")
	assert.False(t, ok)

	c.Remove("a")
	c.Remove("c")
	assert.Equal(t, 0, c.GetWeight())
	require.NoError(t, c.Insert("a", 1, 1))

	c.Clear()
	assert.Equal(t, 0, c.GetWeight())
	_, ok = c.Retrieve("a")
	assert.False(t, ok)
	require.NoError(t, c.Insert("a", 1, 1))
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int]("test", 50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", worker, j)
				assert.NoError(t, c.Insert(key, j, 1))
				c.Retrieve(key)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, c.GetWeight())
}
