package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/repository"
	"github.com/tasklight/backend/usecase"
)

// StateWriter persists collection snapshots in the background. Mutating
// callers hand over a snapshot and return immediately; a single goroutine
// writes the latest pending snapshot per key, coalescing bursts. Write
// failures are logged and dropped, so durability is best effort: a crash
// between mutation and flush loses the mutation.
type StateWriter struct {
	state  repository.StateRepository
	logger *zap.Logger

	mu       sync.Mutex
	tasks    []domain.Task
	tags     []domain.Tag
	settings *domain.Settings

	notify   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewStateWriter builds a writer over the given state repository.
func NewStateWriter(state repository.StateRepository, logger *zap.Logger) *StateWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateWriter{
		state:  state,
		logger: logger,
		notify: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the background flush loop.
func (w *StateWriter) Start() {
	go w.loop()
}

// EnqueueTasks records the latest task snapshot for persistence.
func (w *StateWriter) EnqueueTasks(tasks []domain.Task) {
	w.mu.Lock()
	w.tasks = tasks
	w.mu.Unlock()
	w.wake()
}

// EnqueueTags records the latest tag snapshot for persistence.
func (w *StateWriter) EnqueueTags(tags []domain.Tag) {
	w.mu.Lock()
	w.tags = tags
	w.mu.Unlock()
	w.wake()
}

// EnqueueSettings records the latest settings for persistence.
func (w *StateWriter) EnqueueSettings(settings domain.Settings) {
	w.mu.Lock()
	w.settings = &settings
	w.mu.Unlock()
	w.wake()
}

// Stop flushes any pending snapshot and stops the loop. It returns when the
// final flush completes or the context expires.
func (w *StateWriter) Stop(ctx context.Context) {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	select {
	case <-w.doneCh:
	case <-ctx.Done():
		w.logger.Warn("state writer stop timed out", zap.Error(ctx.Err()))
	}
}

func (w *StateWriter) wake() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *StateWriter) loop() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.notify:
			w.flush()
		case <-w.stopCh:
			w.flush()
			return
		}
	}
}

func (w *StateWriter) flush() {
	w.mu.Lock()
	tasks := w.tasks
	tags := w.tags
	settings := w.settings
	w.tasks = nil
	w.tags = nil
	w.settings = nil
	w.mu.Unlock()

	if tasks != nil {
		if err := w.state.SaveTasks(tasks); err != nil {
			w.logger.Error("task snapshot write failed", zap.Int("count", len(tasks)), zap.Error(err))
		}
	}
	if tags != nil {
		if err := w.state.SaveTags(tags); err != nil {
			w.logger.Error("tag snapshot write failed", zap.Int("count", len(tags)), zap.Error(err))
		}
	}
	if settings != nil {
		if err := w.state.SaveSettings(*settings); err != nil {
			w.logger.Error("settings write failed", zap.Error(err))
		}
	}
}

var _ usecase.StateWriter = (*StateWriter)(nil)
