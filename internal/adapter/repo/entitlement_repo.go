package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pixelmint/backend/internal/domain"
)

// EntitlementRepositoryPG resolves plan entitlements from PostgreSQL.
type EntitlementRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewEntitlementRepository creates a new EntitlementRepositoryPG.
func NewEntitlementRepository(pool *pgxpool.Pool) *EntitlementRepositoryPG {
	return &EntitlementRepositoryPG{pool: pool}
}

// GetEntitlement joins the user with their plan row and feature flags.
func (r *EntitlementRepositoryPG) GetEntitlement(ctx context.Context, userID string) (*domain.Entitlement, error) {
	query := `
SELECT p.code, p.name, p.credits_monthly, p.daily_usage, p.priority,
       COALESCE(s.status, 'free')
FROM users u
JOIN plans p ON p.code = u.plan
LEFT JOIN subscriptions s ON s.user_id = u.id
WHERE u.id = $1;
`
	row := r.pool.QueryRow(ctx, query, userID)

	var ent domain.Entitlement
	var daily *int
	if err := row.Scan(
		&ent.Plan.Code,
		&ent.Plan.Name,
		&ent.Plan.CreditsMonthly,
		&daily,
		&ent.Plan.Priority,
		&ent.Status,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	ent.Plan.DailyUsage = daily

	features, err := r.planFeatures(ctx, ent.Plan.Code)
	if err != nil {
		return nil, err
	}
	ent.Plan.Features = features
	return &ent, nil
}

// planFeatures reads the feature flag rows for a plan into a total FeatureSet,
// so features missing a row stay explicitly disabled.
func (r *EntitlementRepositoryPG) planFeatures(ctx context.Context, plan domain.PlanCode) (domain.FeatureSet, error) {
	rows, err := r.pool.Query(ctx, `SELECT feature, enabled FROM plan_features WHERE plan_code = $1`, plan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := domain.NewFeatureSet()
	for rows.Next() {
		var name string
		var enabled bool
		if err := rows.Scan(&name, &enabled); err != nil {
			return nil, err
		}
		feature, err := domain.ParseFeature(name)
		if err != nil {
			// Unknown rows are tolerated so a rolled-back binary keeps
			// working against a newer schema.
			continue
		}
		set[feature] = enabled
	}
	return set, rows.Err()
}
