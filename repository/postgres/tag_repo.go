package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/repository"
)

type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository returns a Postgres-backed implementation of TagRepository.
func NewTagRepository(pool *pgxpool.Pool) repository.TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) List(ctx context.Context, userID string) ([]domain.Tag, error) {
	const query = `
	SELECT id, name, color
	FROM tags
	WHERE user_id = $1
	ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *tagRepository) Upsert(ctx context.Context, userID string, tag *domain.Tag) error {
	if tag == nil || tag.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tags (id, user_id, name, color)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		color = EXCLUDED.color,
		synced_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query, tag.ID, userID, tag.Name, tag.Color)
	return err
}

func (r *tagRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tags WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTagNotFound
	}
	return nil
}
