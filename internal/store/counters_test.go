package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickstack/tickstack-server/internal/id"
)

func TestCounters_SequentialValues(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	counters := store.Counters()

	for want := uint64(1); want <= 3; want++ {
		got, err := counters.Next(ctx, id.CounterChecklist)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCounters_IndependentNames(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	counters := store.Counters()

	_, err := counters.Next(ctx, id.CounterChecklist)
	require.NoError(t, err)
	_, err = counters.Next(ctx, id.CounterChecklist)
	require.NoError(t, err)

	got, err := counters.Next(ctx, id.CounterItem)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got)
}

func TestCounters_SurviveReopen(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tickstack-counter-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")
	ctx := context.Background()

	store, err := New(dbPath, nil, NewNoopEmitter())
	require.NoError(t, err)

	_, err = store.Counters().Next(ctx, id.CounterItem)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(dbPath, nil, NewNoopEmitter())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Counters().Next(ctx, id.CounterItem)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got)
}

func TestCounters_ConcurrentNextNeverRepeats(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	counters := store.Counters()

	const n = 25
	values := make(chan uint64, n)

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := counters.Next(ctx, id.CounterItem)
			assert.NoError(t, err)
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[uint64]bool)
	for v := range values {
		assert.False(t, seen[v], "counter value %d repeated", v)
		seen[v] = true
	}
	assert.Len(t, seen, n)
}
