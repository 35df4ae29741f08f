package sync

import (
	"fmt"
	base "sync"
)

const (
	hashEntriesPerLock = 200
)

// StripedLock consistently maps a key space onto a fixed set of mutexes, so
// unrelated keys rarely contend while memory stays bounded.
type StripedLock struct {
	locks    []base.Mutex
	hashRing *ring
}

// NewStripedLock returns a new StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	if stripes == 0 {
		stripes = 1
	}

	entries := make(map[string]interface{}, stripes)
	for i := 0; i < int(stripes); i++ {
		entries[fmt.Sprintf("stripe%d", i)] = i
	}

	return &StripedLock{
		locks:    make([]base.Mutex, stripes),
		hashRing: newRing(entries, hashEntriesPerLock),
	}
}

// Get gets the mutex for a key
func (l *StripedLock) Get(key string) *base.Mutex {
	return &l.locks[l.hashRing.shard([]byte(key)).(int)]
}

// Lock locks the mutex for a key, and returns the function that unlocks it.
func (l *StripedLock) Lock(key string) func() {
	mu := l.Get(key)
	mu.Lock()
	return mu.Unlock
}
