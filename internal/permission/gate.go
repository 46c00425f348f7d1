package permission

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/pixelmint/backend/internal/domain"
)

// DefaultSnapshotTTL bounds how long a cached entitlement snapshot may be
// served before a store refetch is forced.
const DefaultSnapshotTTL = 5 * time.Minute

// Store is the slice of the persistence layer the gate depends on.
type Store struct {
	Entitlements domain.EntitlementRepository
	Credits      domain.CreditRepository
	Usage        domain.UsageRepository
}

// Gate decides whether a user may invoke a metered feature and performs the
// atomic credit debit tied to feature usage. The in-process snapshot cache
// only ever serves reads; the conditional decrement in the store is the sole
// authority for the debit decision.
type Gate struct {
	store  Store
	cache  *snapshotCache
	logger zerolog.Logger
}

// NewGate constructs a gate with its own snapshot cache. A non-positive ttl
// falls back to DefaultSnapshotTTL.
func NewGate(store Store, ttl time.Duration, logger zerolog.Logger) *Gate {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Gate{
		store:  store,
		cache:  newSnapshotCache(ttl),
		logger: logger,
	}
}

// UserPermissions returns the user's entitlement snapshot, served from cache
// when a non-expired entry exists.
func (g *Gate) UserPermissions(ctx context.Context, userID string) (domain.UserPermissions, error) {
	if userID == "" {
		return domain.UserPermissions{}, domain.ErrUnauthorized
	}
	if perms, ok := g.cache.get(userID); ok {
		return perms, nil
	}
	return g.fetch(ctx, userID)
}

func (g *Gate) fetch(ctx context.Context, userID string) (domain.UserPermissions, error) {
	ent, err := g.store.Entitlements.GetEntitlement(ctx, userID)
	if err != nil {
		return domain.UserPermissions{}, err
	}
	balance, err := g.store.Credits.Balance(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.UserPermissions{}, err
	}
	perms := domain.UserPermissions{
		PlanCode:           ent.Plan.Code,
		PlanName:           ent.Plan.Name,
		SubscriptionStatus: ent.Status,
		Features:           ent.Plan.Features.Clone(),
		Credits:            domain.CreditBalance{AvailableCredits: balance},
		Limits: domain.Limits{
			CreditsMonthly: ent.Plan.CreditsMonthly,
			DailyUsage:     ent.Plan.DailyUsage,
		},
		Priority:  ent.Plan.Priority,
		FetchedAt: time.Now(),
	}
	g.cache.set(userID, perms)
	return perms, nil
}

// CheckFeature evaluates whether the user may invoke the feature right now.
// It is read-only and never deducts credits.
func (g *Gate) CheckFeature(ctx context.Context, userID string, feature domain.Feature, res ResourceData) domain.CheckResult {
	if userID == "" {
		return domain.CheckResult{Allowed: false, Reason: domain.ReasonNotAuthenticated, Message: "sign in required"}
	}
	perms, err := g.UserPermissions(ctx, userID)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", userID).Msg("permission lookup failed")
		return domain.CheckResult{Allowed: false, Reason: domain.ReasonCheckFailed, Message: "permissions unavailable"}
	}
	if !perms.Features.Enabled(feature) {
		return domain.CheckResult{Allowed: false, Reason: domain.ReasonFeatureDisabled, Message: string(feature) + " is not included in the " + perms.PlanName + " plan"}
	}
	if perms.PlanCode == domain.PlanFree && perms.Limits.DailyUsage != nil {
		// The daily counter is read live from the store; the cached snapshot
		// cannot see usage accumulated since it was taken.
		used, err := g.store.Usage.DailyUsage(ctx, userID)
		if err != nil {
			g.logger.Error().Err(err).Str("user_id", userID).Msg("daily usage lookup failed")
			return domain.CheckResult{Allowed: false, Reason: domain.ReasonCheckFailed, Message: "usage unavailable"}
		}
		if used >= *perms.Limits.DailyUsage {
			return domain.CheckResult{Allowed: false, Reason: domain.ReasonDailyLimitReached, Message: "free plan daily limit reached"}
		}
	}
	if perms.Credits.AvailableCredits < Cost(feature, res) {
		return domain.CheckResult{Allowed: false, Reason: domain.ReasonInsufficientCredits, Message: "not enough credits"}
	}
	return domain.CheckResult{Allowed: true}
}

// ConsumeCredits re-validates eligibility and performs the atomic conditional
// decrement in the store. Two concurrent calls can both pass the check; only
// the decrement decides who actually spends.
func (g *Gate) ConsumeCredits(ctx context.Context, userID string, feature domain.Feature, res ResourceData) domain.ConsumeResult {
	if userID == "" {
		return domain.ConsumeResult{Success: false, Reason: domain.ReasonNotAuthenticated, Message: "sign in required"}
	}
	check := g.CheckFeature(ctx, userID, feature, res)
	if !check.Allowed {
		reason := check.Reason
		switch reason {
		case domain.ReasonDailyLimitReached:
			// The consume result taxonomy folds the free-tier ceiling into
			// the credit outcome; the message keeps the real cause.
			reason = domain.ReasonInsufficientCredits
		case domain.ReasonCheckFailed:
			reason = domain.ReasonConsumptionFailed
		}
		return domain.ConsumeResult{Success: false, Reason: reason, Message: check.Message}
	}
	cost := Cost(feature, res)
	remaining, err := g.store.Credits.DecrementIfAvailable(ctx, userID, cost)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Lost the race: the balance genuinely was insufficient at
			// decrement time.
			g.cache.invalidate(userID)
			return domain.ConsumeResult{Success: false, Reason: domain.ReasonInsufficientCredits, Message: "not enough credits"}
		}
		g.logger.Error().Err(err).Str("user_id", userID).Str("feature", string(feature)).Msg("credit decrement failed")
		return domain.ConsumeResult{Success: false, Reason: domain.ReasonConsumptionFailed, Message: "credit consumption failed"}
	}
	g.cache.updateCredits(userID, remaining)
	g.logger.Info().
		Str("user_id", userID).
		Str("feature", string(feature)).
		Int("credits", cost).
		Int("remaining", remaining).
		Msg("credits consumed")
	return domain.ConsumeResult{Success: true, CreditsConsumed: cost, RemainingCredits: remaining}
}

// Refresh drops the cached snapshot and refetches it from the store.
func (g *Gate) Refresh(ctx context.Context, userID string) (domain.UserPermissions, error) {
	if userID == "" {
		return domain.UserPermissions{}, domain.ErrUnauthorized
	}
	g.cache.invalidate(userID)
	return g.fetch(ctx, userID)
}

// Invalidate drops the cached snapshot for one user.
func (g *Gate) Invalidate(userID string) {
	g.cache.invalidate(userID)
}

// ClearCache drops every cached snapshot.
func (g *Gate) ClearCache() {
	g.cache.clear()
}
