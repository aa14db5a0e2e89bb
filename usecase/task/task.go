package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/repository"
	"github.com/tasklight/backend/usecase"
)

// Input carries the task fields a caller supplies on creation. ID and
// CreatedAt are assigned by the store.
type Input struct {
	Title       string
	Description string
	Priority    domain.Priority
	Status      domain.Status
	DueDate     *time.Time
	Tags        []domain.Tag
	Completed   bool
}

// Patch is a shallow merge: nil pointers leave the field untouched.
// DueDate and Tags carry explicit Set flags so a caller can distinguish
// "leave alone" from "clear".
type Patch struct {
	Title       *string
	Description *string
	Priority    *domain.Priority
	Status      *domain.Status
	DueDate     *time.Time
	SetDueDate  bool
	Tags        []domain.Tag
	SetTags     bool
	Completed   *bool
}

// Store owns the in-memory task collection. It is constructed once at the
// composition root, loads state from the local repository at that moment,
// and serves all reads from memory. Every mutation hands a full snapshot to
// the async writer and offers the changed task to the remote sync buffer.
type Store struct {
	mu     sync.RWMutex
	tasks  []domain.Task
	writer usecase.StateWriter
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

// NewStore loads the persisted task collection and returns a ready store.
func NewStore(state repository.StateRepository, writer usecase.StateWriter, buffer usecase.OperationBuffer, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tasks, err := state.LoadTasks()
	if err != nil {
		return nil, err
	}
	return &Store{
		tasks:  tasks,
		writer: writer,
		buffer: buffer,
		logger: logger,
	}, nil
}

// List returns a detached snapshot of the full collection in insertion order.
func (s *Store) List() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return s.tasks[i].Clone(), nil
		}
	}
	return domain.Task{}, domain.ErrTaskNotFound
}

// Add appends a new task with a generated id and a CreatedAt stamp.
// Title is not validated here; that is a presentation concern.
func (s *Store) Add(ctx context.Context, input Input) domain.Task {
	created := domain.Task{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		DueDate:     input.DueDate,
		CreatedAt:   time.Now(),
		Tags:        append([]domain.Tag(nil), input.Tags...),
		Completed:   input.Completed,
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, created)
	s.persistLocked()
	s.mu.Unlock()

	s.sync(ctx, usecase.OperationCreate, created)
	return created.Clone()
}

// Update merges the supplied fields into the matching task. ID and
// CreatedAt are never rewritten. Status and Completed may be set
// independently; the pairing is only enforced by ToggleComplete.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (domain.Task, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Task{}, domain.ErrTaskNotFound
	}

	t := &s.tasks[idx]
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.SetDueDate {
		t.DueDate = patch.DueDate
	}
	if patch.SetTags {
		t.Tags = append([]domain.Tag(nil), patch.Tags...)
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	updated := t.Clone()
	s.persistLocked()
	s.mu.Unlock()

	s.sync(ctx, usecase.OperationUpdate, updated)
	return updated, nil
}

// Remove deletes the task with the given id.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrTaskNotFound
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.persistLocked()
	s.mu.Unlock()

	s.syncDelete(ctx, id)
	return nil
}

// ToggleComplete flips the Completed flag and forces the paired status:
// completed when toggling on, todo when toggling off.
func (s *Store) ToggleComplete(ctx context.Context, id string) (domain.Task, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Task{}, domain.ErrTaskNotFound
	}

	t := &s.tasks[idx]
	t.Completed = !t.Completed
	if t.Completed {
		t.Status = domain.StatusCompleted
	} else {
		t.Status = domain.StatusTodo
	}
	updated := t.Clone()
	s.persistLocked()
	s.mu.Unlock()

	s.sync(ctx, usecase.OperationUpdate, updated)
	return updated, nil
}

// CascadeTagUpdate rewrites the embedded copy of the given tag on every
// task that references it. Called by the tag store at tag mutation time;
// embedded copies are never kept live-synchronized otherwise.
func (s *Store) CascadeTagUpdate(ctx context.Context, tag domain.Tag) {
	s.mu.Lock()
	var touched []domain.Task
	for i := range s.tasks {
		changed := false
		for j := range s.tasks[i].Tags {
			if s.tasks[i].Tags[j].ID == tag.ID {
				s.tasks[i].Tags[j] = tag
				changed = true
			}
		}
		if changed {
			touched = append(touched, s.tasks[i].Clone())
		}
	}
	if len(touched) > 0 {
		s.persistLocked()
	}
	s.mu.Unlock()

	for _, t := range touched {
		s.sync(ctx, usecase.OperationUpdate, t)
	}
}

// CascadeTagRemove strips the tag with the given id from every task's
// embedded tag list.
func (s *Store) CascadeTagRemove(ctx context.Context, tagID string) {
	s.mu.Lock()
	var touched []domain.Task
	for i := range s.tasks {
		if !s.tasks[i].HasTag(tagID) {
			continue
		}
		kept := s.tasks[i].Tags[:0:0]
		for _, tag := range s.tasks[i].Tags {
			if tag.ID != tagID {
				kept = append(kept, tag)
			}
		}
		s.tasks[i].Tags = kept
		touched = append(touched, s.tasks[i].Clone())
	}
	if len(touched) > 0 {
		s.persistLocked()
	}
	s.mu.Unlock()

	for _, t := range touched {
		s.sync(ctx, usecase.OperationUpdate, t)
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []domain.Task {
	out := make([]domain.Task, len(s.tasks))
	for i := range s.tasks {
		out[i] = s.tasks[i].Clone()
	}
	return out
}

func (s *Store) persistLocked() {
	if s.writer != nil {
		s.writer.EnqueueTasks(s.snapshotLocked())
	}
}

func (s *Store) sync(ctx context.Context, operation string, t domain.Task) {
	if s.buffer == nil {
		return
	}
	if err := s.buffer.BufferTask(ctx, operation, &t); err != nil {
		s.logger.Warn("task sync buffering failed",
			zap.String("operation", operation),
			zap.String("task_id", t.ID),
			zap.Error(err))
	}
}

func (s *Store) syncDelete(ctx context.Context, id string) {
	if s.buffer == nil {
		return
	}
	if err := s.buffer.BufferTaskDelete(ctx, id); err != nil {
		s.logger.Warn("task delete sync buffering failed", zap.String("task_id", id), zap.Error(err))
	}
}
