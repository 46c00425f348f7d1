package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pixelmint/backend/internal/domain"
)

// CreditRepositoryPG implements domain.CreditRepository backed by PostgreSQL.
type CreditRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCreditRepository creates a new CreditRepositoryPG.
func NewCreditRepository(pool *pgxpool.Pool) *CreditRepositoryPG {
	return &CreditRepositoryPG{pool: pool}
}

// Balance returns the current available credits for the user.
func (r *CreditRepositoryPG) Balance(ctx context.Context, userID string) (int, error) {
	row := r.pool.QueryRow(ctx, `SELECT available_credits FROM credit_balances WHERE user_id = $1`, userID)
	var balance int
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

// DecrementIfAvailable performs the conditional debit as a single statement.
// The WHERE clause is what makes concurrent over-spend impossible: a call
// that would drive the balance negative matches no row and returns
// domain.ErrNotFound.
func (r *CreditRepositoryPG) DecrementIfAvailable(ctx context.Context, userID string, cost int) (int, error) {
	query := `
UPDATE credit_balances
SET available_credits = available_credits - $2,
    updated_at = NOW()
WHERE user_id = $1
  AND available_credits >= $2
RETURNING available_credits;
`
	row := r.pool.QueryRow(ctx, query, userID, cost)
	var remaining int
	if err := row.Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return remaining, nil
}

// Grant adds credits to the balance, creating the row when absent.
func (r *CreditRepositoryPG) Grant(ctx context.Context, userID string, amount int) error {
	query := `
INSERT INTO credit_balances (user_id, available_credits)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE
SET available_credits = credit_balances.available_credits + EXCLUDED.available_credits,
    updated_at = NOW();
`
	_, err := r.pool.Exec(ctx, query, userID, amount)
	return err
}
