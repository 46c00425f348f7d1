package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pixelmint/backend/internal/domain"
)

// TaskRepositoryPG persists task-history records in PostgreSQL.
type TaskRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepositoryPG.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepositoryPG {
	return &TaskRepositoryPG{pool: pool}
}

// Create inserts a new task record.
func (r *TaskRepositoryPG) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = domain.TaskQueued
	}
	query := `
INSERT INTO tasks (id, user_id, feature, status, quantity, width, height, credits_spent, country, prompt)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at, updated_at;
`
	row := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Feature,
		task.Status,
		task.Quantity,
		task.Width,
		task.Height,
		task.CreditsSpent,
		task.Country,
		task.Prompt,
	)
	return row.Scan(&task.CreatedAt, &task.UpdatedAt)
}

const taskColumns = `
t.id, t.user_id, t.feature, t.status, t.quantity, t.width, t.height,
t.credits_spent, t.country, t.prompt, t.error_message, t.created_at, t.updated_at,
(SELECT COUNT(*) FROM task_likes l WHERE l.task_id = t.id),
(SELECT COUNT(*) FROM task_favorites f WHERE f.task_id = t.id),
COALESCE((SELECT AVG(score) FROM task_ratings rt WHERE rt.task_id = t.id), 0)
`

// GetByID fetches a task owned by the given user.
func (r *TaskRepositoryPG) GetByID(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = $1 AND t.user_id = $2`, taskID, userID)
	return scanTask(row)
}

// ListByUser returns the user's task history, newest first.
func (r *TaskRepositoryPG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Task, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks t WHERE t.user_id = $1 ORDER BY t.created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateStatus advances the task lifecycle.
func (r *TaskRepositoryPG) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus, errMsg *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET status = $2, error_message = $3, updated_at = NOW() WHERE id = $1`,
		taskID, status, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Feature, &t.Status, &t.Quantity, &t.Width, &t.Height,
		&t.CreditsSpent, &t.Country, &t.Prompt, &t.ErrorMessage, &t.CreatedAt, &t.UpdatedAt,
		&t.LikeCount, &t.FavoriteCount, &t.RatingAvg,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
