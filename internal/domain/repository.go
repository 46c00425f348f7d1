package domain

import "context"

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// EntitlementRepository resolves a user's plan, feature flags and billing
// state from the store.
type EntitlementRepository interface {
	GetEntitlement(ctx context.Context, userID string) (*Entitlement, error)
}

// CreditRepository handles the credit balance, including the atomic
// conditional decrement that backs credit consumption.
type CreditRepository interface {
	Balance(ctx context.Context, userID string) (int, error)
	// DecrementIfAvailable subtracts cost from the balance only when the
	// balance covers it, as a single store operation. It returns the
	// remaining balance, or ErrNotFound when no row qualified.
	DecrementIfAvailable(ctx context.Context, userID string, cost int) (int, error)
	Grant(ctx context.Context, userID string, amount int) error
}

// UsageRepository reports accumulated metered usage.
type UsageRepository interface {
	DailyUsage(ctx context.Context, userID string) (int, error)
}

// TaskRepository persists task-history records.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, taskID, userID string) (*Task, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Task, error)
	UpdateStatus(ctx context.Context, taskID string, status TaskStatus, errMsg *string) error
}

// EngagementRepository persists likes, favorites and ratings.
type EngagementRepository interface {
	Like(ctx context.Context, userID, taskID string) error
	Unlike(ctx context.Context, userID, taskID string) error
	Favorite(ctx context.Context, userID, taskID string) error
	Unfavorite(ctx context.Context, userID, taskID string) error
	// UpsertRating writes the score whether or not a rating pre-exists,
	// keyed on (user, task) uniqueness.
	UpsertRating(ctx context.Context, rating *Rating) error
	GetEngagement(ctx context.Context, taskID, userID string) (*Engagement, error)
}
