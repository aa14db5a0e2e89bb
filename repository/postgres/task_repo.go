package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) List(ctx context.Context, userID string) ([]domain.Task, error) {
	const query = `
	SELECT id, title, description, priority, status, due_date, created_at, tags, completed
	FROM tasks
	WHERE user_id = $1
	ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var task domain.Task
		var tags []byte
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Priority,
			&task.Status,
			&task.DueDate,
			&task.CreatedAt,
			&tags,
			&task.Completed,
		); err != nil {
			return nil, err
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &task.Tags); err != nil {
				return nil, err
			}
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Upsert(ctx context.Context, userID string, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (id, user_id, title, description, priority, status, due_date, created_at, tags, completed)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title,
		description = EXCLUDED.description,
		priority = EXCLUDED.priority,
		status = EXCLUDED.status,
		due_date = EXCLUDED.due_date,
		tags = EXCLUDED.tags,
		completed = EXCLUDED.completed,
		synced_at = NOW()
	`

	var due interface{}
	if task.DueDate != nil {
		due = *task.DueDate
	}

	tags, err := marshalTags(task.Tags)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		task.ID,
		userID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		due,
		task.CreatedAt,
		tags,
		task.Completed,
	)
	return err
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
