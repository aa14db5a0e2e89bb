package usecase

import (
	"context"

	"github.com/tasklight/backend/domain"
)

// StateWriter receives whole-collection snapshots for asynchronous local
// persistence. Enqueue calls never block and never report failure to the
// mutating caller; durability is best effort.
type StateWriter interface {
	EnqueueTasks(tasks []domain.Task)
	EnqueueTags(tags []domain.Tag)
	EnqueueSettings(settings domain.Settings)
}

// OperationBuffer forwards mutations to the remote document store, queuing
// them locally while the remote is unreachable.
type OperationBuffer interface {
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
	BufferTaskDelete(ctx context.Context, id string) error
	BufferTag(ctx context.Context, operation string, tag *domain.Tag) error
	BufferTagDelete(ctx context.Context, id string) error
}

// Operation names understood by the buffer.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)
