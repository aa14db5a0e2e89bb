package buffer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sync.db"), "sync")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEnqueue_AssignsDefaults(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Item{Entity: EntityTag, Operation: OperationCreate, TargetID: "1"}))
	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationCreate, TargetID: "t1"}))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.NotEmpty(t, item.ID)
		assert.False(t, item.Timestamp.IsZero())
	}
	assert.Equal(t, 1, items[0].Priority)
	assert.Equal(t, 2, items[1].Priority)
}

func TestGetBatch_TagsDrainBeforeTasks(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Minute)
	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate, TargetID: "t1", Timestamp: base}))
	require.NoError(t, store.Enqueue(Item{Entity: EntityTag, Operation: OperationCreate, TargetID: "1", Timestamp: base.Add(time.Second)}))
	require.NoError(t, store.Enqueue(Item{Entity: EntityTag, Operation: OperationUpdate, TargetID: "2", Timestamp: base.Add(2 * time.Second)}))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "1", items[0].TargetID)
	assert.Equal(t, "2", items[1].TargetID)
	assert.Equal(t, "t1", items[2].TargetID)
}

func TestGetBatch_RespectsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationCreate}))
	}

	items, err := store.GetBatch(3)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 5, size)
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationDelete, TargetID: "t1"}))
	items, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, store.Remove(items[0]))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestRequeue_KeepsRetryCount(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate, TargetID: "t1"}))
	items, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	require.NoError(t, store.Remove(item))
	item.Retries++
	require.NoError(t, store.Requeue(item))

	items, err = store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Retries)
	assert.Equal(t, "t1", items[0].TargetID)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestCleanup_RemovesStaleItems(t *testing.T) {
	store := openTestStore(t)

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationCreate, TargetID: "old", Timestamp: stale}))
	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationCreate, TargetID: "fresh"}))

	require.NoError(t, store.Cleanup(time.Now().Add(-24*time.Hour)))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].TargetID)
}
