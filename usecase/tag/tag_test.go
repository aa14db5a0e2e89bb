package tag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklight/backend/domain"
	taskStore "github.com/tasklight/backend/usecase/task"
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
	tagSnaps [][]domain.Tag
}

func (w *captureWriter) EnqueueTasks([]domain.Task) {}
func (w *captureWriter) EnqueueTags(tags []domain.Tag) {
	w.tagSnaps = append(w.tagSnaps, tags)
}
func (w *captureWriter) EnqueueSettings(domain.Settings) {}

func newTestStores(t *testing.T) (*Store, *taskStore.Store) {
	t.Helper()
	state := &stubState{}
	tasks, err := taskStore.NewStore(state, nil, nil, nil)
	require.NoError(t, err)
	tags, err := NewStore(state, tasks, nil, nil, nil)
	require.NoError(t, err)
	return tags, tasks
}

func TestAdd(t *testing.T) {
	tags, _ := newTestStores(t)
	ctx := context.Background()

	work := tags.Add(ctx, "Work", "#9b87f5")
	personal := tags.Add(ctx, "Personal", "#4ade80")

	assert.NotEmpty(t, work.ID)
	assert.NotEqual(t, work.ID, personal.ID)

	list := tags.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Work", list[0].Name)
	assert.Equal(t, "Personal", list[1].Name)
}

func TestUpdate_CascadesIntoEmbeddedCopies(t *testing.T) {
	tags, tasks := newTestStores(t)
	ctx := context.Background()

	study := tags.Add(ctx, "Study", "#facc15")
	health := tags.Add(ctx, "Health", "#fb923c")

	tagged := tasks.Add(ctx, taskStore.Input{Title: "Read chapter 5", Tags: []domain.Tag{study}})
	other := tasks.Add(ctx, taskStore.Input{Title: "Morning jog", Tags: []domain.Tag{health}})

	color := "#00ff00"
	updated, err := tags.Update(ctx, study.ID, Patch{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", updated.Color)
	assert.Equal(t, "Study", updated.Name)

	// The embedded copy was rewritten, nothing else on the task moved.
	got, err := tasks.Get(tagged.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "#00ff00", got.Tags[0].Color)
	assert.Equal(t, "Study", got.Tags[0].Name)
	assert.Equal(t, "Read chapter 5", got.Title)

	// Tasks referencing other tags are untouched.
	untouched, err := tasks.Get(other.ID)
	require.NoError(t, err)
	require.Len(t, untouched.Tags, 1)
	assert.Equal(t, "#fb923c", untouched.Tags[0].Color)
}

func TestUpdate_RenameCascades(t *testing.T) {
	tags, tasks := newTestStores(t)
	ctx := context.Background()

	work := tags.Add(ctx, "Work", "#9b87f5")
	created := tasks.Add(ctx, taskStore.Input{Title: "Proposal", Tags: []domain.Tag{work}})

	name := "Office"
	_, err := tags.Update(ctx, work.ID, Patch{Name: &name})
	require.NoError(t, err)

	got, err := tasks.Get(created.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "Office", got.Tags[0].Name)
	assert.Equal(t, "#9b87f5", got.Tags[0].Color)
}

func TestUpdate_NotFound(t *testing.T) {
	tags, _ := newTestStores(t)

	name := "Ghost"
	_, err := tags.Update(context.Background(), "nonexistent", Patch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrTagNotFound)
}

func TestRemove_StripsEmbeddedCopies(t *testing.T) {
	tags, tasks := newTestStores(t)
	ctx := context.Background()

	study := tags.Add(ctx, "Study", "#facc15")
	work := tags.Add(ctx, "Work", "#9b87f5")

	both := tasks.Add(ctx, taskStore.Input{Title: "Mixed", Tags: []domain.Tag{study, work}})
	onlyWork := tasks.Add(ctx, taskStore.Input{Title: "Proposal", Tags: []domain.Tag{work}})

	require.NoError(t, tags.Remove(ctx, study.ID))

	// Canonical collection lost the entry.
	_, err := tags.Get(study.ID)
	assert.ErrorIs(t, err, domain.ErrTagNotFound)

	// Tasks no longer embed the removed id.
	got, err := tasks.Get(both.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, work.ID, got.Tags[0].ID)

	// Other tasks' tag lists are unchanged.
	untouched, err := tasks.Get(onlyWork.ID)
	require.NoError(t, err)
	require.Len(t, untouched.Tags, 1)
	assert.Equal(t, work.ID, untouched.Tags[0].ID)

	for _, task := range tasks.List() {
		assert.False(t, task.HasTag(study.ID))
	}
}

func TestRemove_NotFound(t *testing.T) {
	tags, _ := newTestStores(t)
	assert.ErrorIs(t, tags.Remove(context.Background(), "nonexistent"), domain.ErrTagNotFound)
}

func TestRemove_LastTagPersistsEmptyCollection(t *testing.T) {
	state := &stubState{}
	writer := &captureWriter{}
	tasks, err := taskStore.NewStore(state, nil, nil, nil)
	require.NoError(t, err)
	tags, err := NewStore(state, tasks, writer, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	study := tags.Add(ctx, "Study", "#facc15")
	require.NoError(t, tags.Remove(ctx, study.ID))

	// The emptied collection must still reach the writer, otherwise the
	// deleted tag would be reloaded on the next start.
	require.NotEmpty(t, writer.tagSnaps)
	last := writer.tagSnaps[len(writer.tagSnaps)-1]
	require.NotNil(t, last)
	assert.Empty(t, last)
}
