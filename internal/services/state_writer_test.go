package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tasklight/backend/domain"
	boltRepo "github.com/tasklight/backend/repository/bolt"
	tagStore "github.com/tasklight/backend/usecase/tag"
	taskStore "github.com/tasklight/backend/usecase/task"
)

type recordingState struct {
	mu       sync.Mutex
	tasks    [][]domain.Task
	tags     [][]domain.Tag
	settings []domain.Settings
	taskErr  error
}

func (s *recordingState) LoadTasks() ([]domain.Task, error)      { return nil, nil }
func (s *recordingState) LoadTags() ([]domain.Tag, error)        { return nil, nil }
func (s *recordingState) LoadSettings() (domain.Settings, error) { return domain.DefaultSettings(), nil }

func (s *recordingState) SaveTasks(tasks []domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taskErr != nil {
		err := s.taskErr
		s.taskErr = nil
		return err
	}
	s.tasks = append(s.tasks, tasks)
	return nil
}

func (s *recordingState) SaveTags(tags []domain.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append(s.tags, tags)
	return nil
}

func (s *recordingState) SaveSettings(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = append(s.settings, settings)
	return nil
}

func (s *recordingState) lastTasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return nil
	}
	return s.tasks[len(s.tasks)-1]
}

func stopCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestStateWriter_StopFlushesPending(t *testing.T) {
	state := &recordingState{}
	writer := NewStateWriter(state, zap.NewNop())
	writer.Start()

	writer.EnqueueTasks([]domain.Task{{ID: "t1", Title: "Read"}})
	writer.EnqueueTags([]domain.Tag{{ID: "1", Name: "Work"}})
	writer.EnqueueSettings(domain.Settings{DarkMode: true})
	writer.Stop(stopCtx(t))

	state.mu.Lock()
	defer state.mu.Unlock()
	require.NotEmpty(t, state.tasks)
	assert.Equal(t, "Read", state.tasks[len(state.tasks)-1][0].Title)
	require.NotEmpty(t, state.tags)
	assert.Equal(t, "Work", state.tags[len(state.tags)-1][0].Name)
	require.NotEmpty(t, state.settings)
	assert.True(t, state.settings[len(state.settings)-1].DarkMode)
}

func TestStateWriter_LatestSnapshotWins(t *testing.T) {
	state := &recordingState{}
	writer := NewStateWriter(state, zap.NewNop())
	writer.Start()

	for i := 0; i < 50; i++ {
		writer.EnqueueTasks([]domain.Task{{ID: "t1", Title: "draft"}})
	}
	writer.EnqueueTasks([]domain.Task{{ID: "t1", Title: "final"}})
	writer.Stop(stopCtx(t))

	last := state.lastTasks()
	require.Len(t, last, 1)
	assert.Equal(t, "final", last[0].Title)
}

func TestStateWriter_WriteFailureDoesNotStopLoop(t *testing.T) {
	state := &recordingState{taskErr: errors.New("disk full")}
	writer := NewStateWriter(state, zap.NewNop())
	writer.Start()

	writer.EnqueueTasks([]domain.Task{{ID: "t1", Title: "lost"}})
	// Let the failing flush run before the snapshot that should land.
	time.Sleep(50 * time.Millisecond)
	writer.EnqueueTasks([]domain.Task{{ID: "t1", Title: "kept"}})
	writer.Stop(stopCtx(t))

	last := state.lastTasks()
	require.Len(t, last, 1)
	assert.Equal(t, "kept", last[0].Title)
}

func TestStateWriter_StopWithoutWrites(t *testing.T) {
	state := &recordingState{}
	writer := NewStateWriter(state, zap.NewNop())
	writer.Start()
	writer.Stop(stopCtx(t))

	state.mu.Lock()
	defer state.mu.Unlock()
	assert.Empty(t, state.tasks)
	assert.Empty(t, state.tags)
	assert.Empty(t, state.settings)
}

func TestStateWriter_EmptiedTagCollectionSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	repo, err := boltRepo.Open(path)
	require.NoError(t, err)
	require.NoError(t, repo.SaveTags([]domain.Tag{{ID: "3", Name: "Study", Color: "#facc15"}}))

	writer := NewStateWriter(repo, zap.NewNop())
	writer.Start()

	tasks, err := taskStore.NewStore(repo, writer, nil, nil)
	require.NoError(t, err)
	tags, err := tagStore.NewStore(repo, tasks, writer, nil, nil)
	require.NoError(t, err)

	require.NoError(t, tags.Remove(context.Background(), "3"))
	writer.Stop(stopCtx(t))
	require.NoError(t, repo.Close())

	reopened, err := boltRepo.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.LoadTags()
	require.NoError(t, err)
	assert.Empty(t, got, "deleted tag must not reload after restart")
}

func TestStateWriter_StopIsIdempotent(t *testing.T) {
	state := &recordingState{}
	writer := NewStateWriter(state, zap.NewNop())
	writer.Start()

	writer.Stop(stopCtx(t))
	writer.Stop(stopCtx(t))
}
