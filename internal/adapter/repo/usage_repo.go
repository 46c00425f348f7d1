package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UsageRepositoryPG derives daily usage counters from the task history.
type UsageRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUsageRepository creates a new UsageRepositoryPG.
func NewUsageRepository(pool *pgxpool.Pool) *UsageRepositoryPG {
	return &UsageRepositoryPG{pool: pool}
}

// DailyUsage returns the total quantity the user generated today. Failed
// tasks still count: the capacity was spent.
func (r *UsageRepositoryPG) DailyUsage(ctx context.Context, userID string) (int, error) {
	row := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(quantity), 0)
FROM tasks
WHERE user_id = $1
  AND created_at::date = CURRENT_DATE;
`, userID)

	var total int
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
