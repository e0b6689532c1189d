package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndRetrieve(t *testing.T) {
	c := NewCache(10)

	require.NoError(t, c.Insert("alice", "owner-a", 1))
	assert.Equal(t, ErrKeyExists, c.Insert("alice", "owner-b", 1))

	value, ok := c.Retrieve("alice")
	require.True(t, ok)
	assert.Equal(t, "owner-a", value)

	_, ok = c.Retrieve("bob")
	assert.False(t, ok)

	assert.Equal(t, 1, c.GetWeight())
	assert.Equal(t, 10, c.GetBudget())
}

func TestEviction(t *testing.T) {
	c := NewCache(3)

	require.NoError(t, c.Insert("a", 1, 1))
	require.NoError(t, c.Insert("b", 2, 1))
	require.NoError(t, c.Insert("c", 3, 1))

	// Touching "a" makes "b" the least recently used entry
	_, ok := c.Retrieve("a")
	require.True(t, ok)

	require.NoError(t, c.Insert("d", 4, 1))
	assert.Equal(t, 3, c.GetWeight())

	_, ok = c.Retrieve("b")
	assert.False(t, ok)
	for _, key := range []string{"a", "c", "d"} {
		_, ok = c.Retrieve(key)
		assert.True(t, ok, key)
	}

	// A heavy entry evicts everything before it
	require.NoError(t, c.Insert("heavy", 5, 3))
	assert.Equal(t, 3, c.GetWeight())
	for _, key := range []string{"a", "c", "d"} {
		_, ok = c.Retrieve(key)
		assert.False(t, ok, key)
	}

	// An entry heavier than the budget is not retained
	require.NoError(t, c.Insert("huge", 6, 4))
	assert.Equal(t, 0, c.GetWeight())
	_, ok = c.Retrieve("huge")
	assert.False(t, ok)
}

func TestDeleteAndClear(t *testing.T) {
	c := NewCache(10)

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Insert(fmt.Sprintf("key%d", i), i, 2))
	}
	assert.Equal(t, 10, c.GetWeight())

	assert.True(t, c.Delete("key2"))
	assert.False(t, c.Delete("key2"))
	assert.Equal(t, 8, c.GetWeight())

	// Deleted keys can be reinserted
	require.NoError(t, c.Insert("key2", 42, 2))
	value, ok := c.Retrieve("key2")
	require.True(t, ok)
	assert.Equal(t, 42, value)

	assert.True(t, c.Delete("key0"))
	assert.True(t, c.Delete("key2"))
	require.NoError(t, c.Insert("key5", 5, 2))
	require.NoError(t, c.Insert("key6", 6, 2))
	require.NoError(t, c.Insert("key7", 7, 2))
	assert.Equal(t, 10, c.GetWeight())
	_, ok = c.Retrieve("key1")
	assert.False(t, ok)
	_, ok = c.Retrieve("key3")
	assert.True(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.GetWeight())
	_, ok = c.Retrieve("key3")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	c := NewCache(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", i, j%20)
				_ = c.Insert(key, j, 1)
				c.Retrieve(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.GetWeight(), 100)
}
