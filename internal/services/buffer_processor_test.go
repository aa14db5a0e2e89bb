package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/internal/infrastructure/buffer"
)

type stubTaskRepo struct {
	deleteErr error
	deletes   []string
}

func (r *stubTaskRepo) List(context.Context, string) ([]domain.Task, error) { return nil, nil }
func (r *stubTaskRepo) Upsert(context.Context, string, *domain.Task) error  { return nil }
func (r *stubTaskRepo) Delete(ctx context.Context, id string) error {
	r.deletes = append(r.deletes, id)
	return r.deleteErr
}

type stubTagRepo struct {
	deleteErr error
}

func (r *stubTagRepo) List(context.Context, string) ([]domain.Tag, error) { return nil, nil }
func (r *stubTagRepo) Upsert(context.Context, string, *domain.Tag) error  { return nil }
func (r *stubTagRepo) Delete(context.Context, string) error               { return r.deleteErr }

func openProcessorStore(t *testing.T) *buffer.Store {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "sync.db"), "sync")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// Deleting a row the remote never saw is benign; a wrapped not-found must
// drain the item instead of retrying it.
func TestDrain_ToleratesWrappedNotFoundOnDelete(t *testing.T) {
	store := openProcessorStore(t)
	tasks := &stubTaskRepo{deleteErr: fmt.Errorf("delete task: %w", domain.ErrTaskNotFound)}
	tags := &stubTagRepo{deleteErr: fmt.Errorf("delete tag: %w", domain.ErrTagNotFound)}

	require.NoError(t, store.Enqueue(buffer.Item{Entity: buffer.EntityTask, Operation: buffer.OperationDelete, TargetID: "t1"}))
	require.NoError(t, store.Enqueue(buffer.Item{Entity: buffer.EntityTag, Operation: buffer.OperationDelete, TargetID: "1"}))

	bp := NewBufferProcessor(store, nil, tasks, tags, "local", nil, ProcessorConfig{})
	require.NoError(t, bp.Drain(context.Background()))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)
	assert.Equal(t, []string{"t1"}, tasks.deletes)
}
