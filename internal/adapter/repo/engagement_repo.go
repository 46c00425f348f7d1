package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pixelmint/backend/internal/domain"
)

// mapFKViolation turns a foreign-key violation on task_id into ErrNotFound,
// so writes against a deleted or bogus task read as a missing task.
func mapFKViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return domain.ErrNotFound
	}
	return err
}

// EngagementRepositoryPG persists likes, favorites and ratings.
type EngagementRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewEngagementRepository creates a new EngagementRepositoryPG.
func NewEngagementRepository(pool *pgxpool.Pool) *EngagementRepositoryPG {
	return &EngagementRepositoryPG{pool: pool}
}

// Like records a like; repeating it is a no-op.
func (r *EngagementRepositoryPG) Like(ctx context.Context, userID, taskID string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO task_likes (user_id, task_id)
VALUES ($1, $2)
ON CONFLICT (user_id, task_id) DO NOTHING;
`, userID, taskID)
	return mapFKViolation(err)
}

// Unlike removes a like if present.
func (r *EngagementRepositoryPG) Unlike(ctx context.Context, userID, taskID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM task_likes WHERE user_id = $1 AND task_id = $2`, userID, taskID)
	return err
}

// Favorite records a favorite; repeating it is a no-op.
func (r *EngagementRepositoryPG) Favorite(ctx context.Context, userID, taskID string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO task_favorites (user_id, task_id)
VALUES ($1, $2)
ON CONFLICT (user_id, task_id) DO NOTHING;
`, userID, taskID)
	return mapFKViolation(err)
}

// Unfavorite removes a favorite if present.
func (r *EngagementRepositoryPG) Unfavorite(ctx context.Context, userID, taskID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM task_favorites WHERE user_id = $1 AND task_id = $2`, userID, taskID)
	return err
}

// UpsertRating writes the score whether or not a rating pre-exists, keyed on
// (user, task).
func (r *EngagementRepositoryPG) UpsertRating(ctx context.Context, rating *domain.Rating) error {
	if rating.Score < 1 || rating.Score > 5 {
		return domain.ErrInvalidRating
	}
	query := `
INSERT INTO task_ratings (user_id, task_id, score)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, task_id) DO UPDATE
SET score = EXCLUDED.score,
    updated_at = NOW()
RETURNING created_at, updated_at;
`
	row := r.pool.QueryRow(ctx, query, rating.UserID, rating.TaskID, rating.Score)
	if err := row.Scan(&rating.CreatedAt, &rating.UpdatedAt); err != nil {
		return mapFKViolation(err)
	}
	return nil
}

// GetEngagement returns the aggregate counters plus the viewer's own state.
func (r *EngagementRepositoryPG) GetEngagement(ctx context.Context, taskID, userID string) (*domain.Engagement, error) {
	query := `
SELECT t.id,
       (SELECT COUNT(*) FROM task_likes l WHERE l.task_id = t.id),
       (SELECT COUNT(*) FROM task_favorites f WHERE f.task_id = t.id),
       COALESCE((SELECT AVG(score) FROM task_ratings rt WHERE rt.task_id = t.id), 0),
       (SELECT COUNT(*) FROM task_ratings rt WHERE rt.task_id = t.id),
       EXISTS(SELECT 1 FROM task_likes l WHERE l.task_id = t.id AND l.user_id = $2),
       EXISTS(SELECT 1 FROM task_favorites f WHERE f.task_id = t.id AND f.user_id = $2),
       (SELECT score FROM task_ratings rt WHERE rt.task_id = t.id AND rt.user_id = $2)
FROM tasks t
WHERE t.id = $1;
`
	row := r.pool.QueryRow(ctx, query, taskID, userID)
	var e domain.Engagement
	if err := row.Scan(
		&e.TaskID, &e.LikeCount, &e.FavoriteCount, &e.RatingAvg, &e.RatingCount,
		&e.Liked, &e.Favorited, &e.OwnRating,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
