package idempotency

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	key := Key(1, "abc")

	state, _, err := store.Begin(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, Started, state)

	state, _, err = store.Begin(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, InFlight, state)

	require.NoError(t, store.Complete(ctx, key, 99))
	state, orderID, err := store.Begin(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, Completed, state)
	assert.Equal(t, int64(99), orderID)
}

func TestMemoryStoreReleaseAllowsRetry(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, _, _ = store.Begin(ctx, "k")
	require.NoError(t, store.Release(ctx, "k"))

	state, _, err := store.Begin(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, Started, state)
}

func TestMemoryStoreExpiredKeyIsReclaimed(t *testing.T) {
	store := NewMemoryStore(time.Minute).(*memoryStore)
	ctx := context.Background()
	_, _, _ = store.Begin(ctx, "k")

	store.now = func() time.Time { return time.Now().Add(time.Hour) }
	state, _, err := store.Begin(ctx, "k")

	require.NoError(t, err)
	assert.Equal(t, Started, state)
}

func TestMemoryStoreSweepsExpiredKeys(t *testing.T) {
	store := NewMemoryStore(time.Minute).(*memoryStore)
	ctx := context.Background()
	_, _, _ = store.Begin(ctx, "old-1")
	require.NoError(t, store.Complete(ctx, "old-1", 7))
	_, _, _ = store.Begin(ctx, "old-2")

	store.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, _, err := store.Begin(ctx, "fresh")

	require.NoError(t, err)
	assert.Len(t, store.entries, 1)
	assert.Contains(t, store.entries, "fresh")
}

func TestMemoryStoreSingleWinner(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, _, err := store.Begin(ctx, "same")
			if err == nil && state == Started {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, started)
}

func TestKeyIsScopedPerUser(t *testing.T) {
	assert.NotEqual(t, Key(1, "abc"), Key(2, "abc"))
	assert.Equal(t, "idempotent-key:1:abc", Key(1, "abc"))
}
