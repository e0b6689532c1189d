package sync

import (
	"sort"
	base "sync"
)

const (
	hashEntriesPerLock = 200
)

// StripedLock is a partitioned locking mechanism that consistently maps a key
// space to a set of locks. This provides concurrent data access while also
// limiting the total memory footprint.
type StripedLock struct {
	locks    []base.RWMutex
	hashRing *ring
}

// NewStripedLock returns a new StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	return &StripedLock{
		locks:    make([]base.RWMutex, stripes),
		hashRing: newRing(stripes, hashEntriesPerLock),
	}
}

// Get gets the lock for a key
func (l *StripedLock) Get(key []byte) *base.RWMutex {
	return &l.locks[l.stripe(key)]
}

// GetAll gets the distinct set of locks covering keys, in a stable order.
// Acquiring them in the returned order avoids deadlocks between callers that
// lock overlapping key sets, including keys that share a stripe.
func (l *StripedLock) GetAll(keys ...[]byte) []*base.RWMutex {
	stripes := make(map[int]struct{})
	for _, key := range keys {
		stripes[l.stripe(key)] = struct{}{}
	}

	ordered := make([]int, 0, len(stripes))
	for stripe := range stripes {
		ordered = append(ordered, stripe)
	}
	sort.Ints(ordered)

	res := make([]*base.RWMutex, len(ordered))
	for i, stripe := range ordered {
		res[i] = &l.locks[stripe]
	}
	return res
}

// LockAll exclusively locks every key and returns a function that releases
// them.
func (l *StripedLock) LockAll(keys ...[]byte) func() {
	locks := l.GetAll(keys...)
	for _, mu := range locks {
		mu.Lock()
	}

	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

func (l *StripedLock) stripe(key []byte) int {
	return l.hashRing.shard(key)
}
