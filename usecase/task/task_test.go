package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklight/backend/domain"
)

type stubState struct {
	tasks []domain.Task
	tags  []domain.Tag
}

func (s *stubState) LoadTasks() ([]domain.Task, error)          { return s.tasks, nil }
func (s *stubState) SaveTasks(tasks []domain.Task) error        { s.tasks = tasks; return nil }
func (s *stubState) LoadTags() ([]domain.Tag, error)            { return s.tags, nil }
func (s *stubState) SaveTags(tags []domain.Tag) error           { s.tags = tags; return nil }
func (s *stubState) LoadSettings() (domain.Settings, error)     { return domain.DefaultSettings(), nil }
func (s *stubState) SaveSettings(settings domain.Settings) error { return nil }

type captureWriter struct {
	mu        sync.Mutex
	taskSnaps [][]domain.Task
	tagSnaps  [][]domain.Tag
}

func (w *captureWriter) EnqueueTasks(tasks []domain.Task) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.taskSnaps = append(w.taskSnaps, tasks)
}

func (w *captureWriter) EnqueueTags(tags []domain.Tag) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tagSnaps = append(w.tagSnaps, tags)
}

func (w *captureWriter) EnqueueSettings(domain.Settings) {}

func (w *captureWriter) taskWrites() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.taskSnaps)
}

func newTestStore(t *testing.T) (*Store, *captureWriter) {
	t.Helper()
	writer := &captureWriter{}
	store, err := NewStore(&stubState{}, writer, nil, nil)
	require.NoError(t, err)
	return store, writer
}

func TestAdd_AssignsIDAndCreatedAt(t *testing.T) {
	store, writer := newTestStore(t)
	ctx := context.Background()

	before := time.Now()
	first := store.Add(ctx, Input{Title: "Buy groceries", Priority: domain.PriorityMedium, Status: domain.StatusTodo})
	second := store.Add(ctx, Input{Title: "Morning jog", Priority: domain.PriorityLow, Status: domain.StatusTodo})
	after := time.Now()

	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)

	assert.False(t, first.CreatedAt.Before(before))
	assert.False(t, first.CreatedAt.After(after))

	// Insertion order is preserved.
	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	// Each mutation enqueued a snapshot.
	assert.Equal(t, 2, writer.taskWrites())
}

func TestUpdate_MergesSuppliedFields(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created := store.Add(ctx, Input{
		Title:       "Read chapter 5",
		Description: "Design Patterns",
		Priority:    domain.PriorityLow,
		Status:      domain.StatusInProgress,
	})

	title := "Read chapter 6"
	updated, err := store.Update(ctx, created.ID, Patch{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Read chapter 6", updated.Title)
	assert.Equal(t, "Design Patterns", updated.Description)
	assert.Equal(t, domain.PriorityLow, updated.Priority)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
}

func TestUpdate_CreatedAtImmutable(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created := store.Add(ctx, Input{Title: "Complete project proposal"})

	title := "Renamed"
	completed := true
	_, err := store.Update(ctx, created.ID, Patch{Title: &title, Completed: &completed})
	require.NoError(t, err)

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestUpdate_AllowsInconsistentStatusAndCompleted(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created := store.Add(ctx, Input{Title: "Archive me"})

	// The generic path does not enforce the toggle pairing.
	status := domain.StatusArchived
	completed := true
	updated, err := store.Update(ctx, created.ID, Patch{Status: &status, Completed: &completed})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, updated.Status)
	assert.True(t, updated.Completed)
}

func TestUpdate_ClearsDueDate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	due := time.Now().Add(48 * time.Hour)
	created := store.Add(ctx, Input{Title: "Dated", DueDate: &due})
	require.NotNil(t, created.DueDate)

	updated, err := store.Update(ctx, created.ID, Patch{SetDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestUpdate_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	title := "whatever"
	_, err := store.Update(context.Background(), "nonexistent", Patch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestRemove(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created := store.Add(ctx, Input{Title: "Ephemeral"})
	keep := store.Add(ctx, Input{Title: "Keeper"})

	require.NoError(t, store.Remove(ctx, created.ID))

	_, err := store.Get(created.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	assert.ErrorIs(t, store.Remove(ctx, created.ID), domain.ErrTaskNotFound)
}

func TestToggleComplete_Involution(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created := store.Add(ctx, Input{Title: "Flip me", Status: domain.StatusInProgress})

	on, err := store.ToggleComplete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, on.Completed)
	assert.Equal(t, domain.StatusCompleted, on.Status)

	off, err := store.ToggleComplete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, off.Completed)
	assert.Equal(t, domain.StatusTodo, off.Status)
}

func TestToggleComplete_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ToggleComplete(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestList_ReturnsDetachedSnapshot(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	created := store.Add(ctx, Input{
		Title: "Shared",
		Tags:  []domain.Tag{{ID: "1", Name: "Work", Color: "#9b87f5"}},
	})

	snapshot := store.List()
	snapshot[0].Title = "Mutated"
	snapshot[0].Tags[0].Name = "Hacked"

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shared", got.Title)
	assert.Equal(t, "Work", got.Tags[0].Name)
}

func TestNewStore_LoadsExistingState(t *testing.T) {
	due := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	state := &stubState{tasks: []domain.Task{
		{ID: "t-1", Title: "Persisted", DueDate: &due, CreatedAt: time.Now()},
	}}

	store, err := NewStore(state, nil, nil, nil)
	require.NoError(t, err)

	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Persisted", list[0].Title)
	require.NotNil(t, list[0].DueDate)
	assert.True(t, due.Equal(*list[0].DueDate))
}
