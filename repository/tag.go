package repository

import (
	"context"

	"github.com/tasklight/backend/domain"
)

// TagRepository mirrors the canonical tag collection to the remote store.
type TagRepository interface {
	List(ctx context.Context, userID string) ([]domain.Tag, error)
	Upsert(ctx context.Context, userID string, tag *domain.Tag) error
	Delete(ctx context.Context, id string) error
}
