package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Run("new store is empty", func(t *testing.T) {
		store := NewMemoryStore()

		assert.Empty(t, store.List())
		_, err := store.Get("nonexistent")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("put and get values", func(t *testing.T) {
		store := NewMemoryStore()

		require.NoError(t, store.Put("key1", "value1"))
		got, err := store.Get("key1")
		require.NoError(t, err)
		assert.Equal(t, "value1", got)
	})

	t.Run("overwrite existing key", func(t *testing.T) {
		store := NewMemoryStore()
		_ = store.Put("key1", "value1")
		_ = store.Put("key1", "value2")

		got, err := store.Get("key1")
		require.NoError(t, err)
		assert.Equal(t, "value2", got)
	})

	t.Run("empty value is distinct from missing key", func(t *testing.T) {
		store := NewMemoryStore()
		_ = store.Put("key1", "")

		got, err := store.Get("key1")
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})

	t.Run("list reflects all keys", func(t *testing.T) {
		store := NewMemoryStore()
		_ = store.Put("a", "1")
		_ = store.Put("b", "2")

		assert.Len(t, store.List(), 2)
	})

	t.Run("stats count keys and bytes", func(t *testing.T) {
		store := NewMemoryStore()
		_ = store.Put("ab", "cde")

		stats := store.Stats()
		assert.Equal(t, 1, stats.Keys)
		assert.Equal(t, len("ab")+len("cde"), stats.Bytes)
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		store := NewMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = store.Put("key", "value")
				_, _ = store.Get("key")
				_ = store.List()
				_ = store.Stats()
			}(i)
		}
		wg.Wait()
	})
}
