package repository

import (
	"context"

	"github.com/tasklight/backend/domain"
)

// TaskRepository is the remote document store for tasks. The in-memory
// store is authoritative; this mirror is written best-effort by the sync
// processor, so create and update collapse into Upsert.
type TaskRepository interface {
	List(ctx context.Context, userID string) ([]domain.Task, error)
	Upsert(ctx context.Context, userID string, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}
