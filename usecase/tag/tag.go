package tag

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/repository"
	"github.com/tasklight/backend/usecase"
)

// Cascader is the slice of the task store the tag store needs to keep
// embedded tag copies consistent with the canonical collection.
type Cascader interface {
	CascadeTagUpdate(ctx context.Context, tag domain.Tag)
	CascadeTagRemove(ctx context.Context, tagID string)
}

// Patch is a shallow merge for tag fields; nil pointers leave the field
// untouched.
type Patch struct {
	Name  *string
	Color *string
}

// Store owns the canonical tag collection. Tag mutations cascade into every
// task's embedded copies through the task store before returning.
type Store struct {
	mu     sync.RWMutex
	tags   []domain.Tag
	tasks  Cascader
	writer usecase.StateWriter
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

// NewStore loads the persisted tag collection and returns a ready store.
func NewStore(state repository.StateRepository, tasks Cascader, writer usecase.StateWriter, buffer usecase.OperationBuffer, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tags, err := state.LoadTags()
	if err != nil {
		return nil, err
	}
	return &Store{
		tags:   tags,
		tasks:  tasks,
		writer: writer,
		buffer: buffer,
		logger: logger,
	}, nil
}

// List returns a detached snapshot of the canonical collection.
func (s *Store) List() []domain.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Tag(nil), s.tags...)
}

// Get returns the tag with the given id.
func (s *Store) Get(id string) (domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tags {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Tag{}, domain.ErrTagNotFound
}

// Add appends a new tag with a generated id.
func (s *Store) Add(ctx context.Context, name, color string) domain.Tag {
	created := domain.Tag{
		ID:    uuid.NewString(),
		Name:  name,
		Color: color,
	}

	s.mu.Lock()
	s.tags = append(s.tags, created)
	s.persistLocked()
	s.mu.Unlock()

	s.sync(ctx, usecase.OperationCreate, created)
	return created
}

// Update merges the supplied fields into the canonical tag, then rewrites
// the embedded copy on every task that references it.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (domain.Tag, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Tag{}, domain.ErrTagNotFound
	}

	t := &s.tags[idx]
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Color != nil {
		t.Color = *patch.Color
	}
	updated := *t
	s.persistLocked()
	s.mu.Unlock()

	if s.tasks != nil {
		s.tasks.CascadeTagUpdate(ctx, updated)
	}
	s.sync(ctx, usecase.OperationUpdate, updated)
	return updated, nil
}

// Remove deletes the tag from the canonical collection and strips it from
// every task. After it returns no task embeds the removed id.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrTagNotFound
	}
	s.tags = append(s.tags[:idx], s.tags[idx+1:]...)
	s.persistLocked()
	s.mu.Unlock()

	if s.tasks != nil {
		s.tasks.CascadeTagRemove(ctx, id)
	}
	s.syncDelete(ctx, id)
	return nil
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tags {
		if s.tags[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked() {
	if s.writer == nil {
		return
	}
	// The snapshot must stay non-nil so removing the last tag still
	// reaches durable storage as an empty collection.
	snapshot := make([]domain.Tag, len(s.tags))
	copy(snapshot, s.tags)
	s.writer.EnqueueTags(snapshot)
}

func (s *Store) sync(ctx context.Context, operation string, t domain.Tag) {
	if s.buffer == nil {
		return
	}
	if err := s.buffer.BufferTag(ctx, operation, &t); err != nil {
		s.logger.Warn("tag sync buffering failed",
			zap.String("operation", operation),
			zap.String("tag_id", t.ID),
			zap.Error(err))
	}
}

func (s *Store) syncDelete(ctx context.Context, id string) {
	if s.buffer == nil {
		return
	}
	if err := s.buffer.BufferTagDelete(ctx, id); err != nil {
		s.logger.Warn("tag delete sync buffering failed", zap.String("tag_id", id), zap.Error(err))
	}
}
