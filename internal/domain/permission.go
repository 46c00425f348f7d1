package domain

import "time"

// DenyReason tags the outcome of a failed permission check or credit debit.
type DenyReason string

const (
	ReasonNotAuthenticated    DenyReason = "not_authenticated"
	ReasonFeatureDisabled     DenyReason = "feature_disabled"
	ReasonInsufficientCredits DenyReason = "insufficient_credits"
	ReasonDailyLimitReached   DenyReason = "daily_limit_reached"
	ReasonConsumptionFailed   DenyReason = "consumption_failed"
	ReasonCheckFailed         DenyReason = "check_failed"
)

// CreditBalance is the consumable balance usable for metered operations.
type CreditBalance struct {
	AvailableCredits int `json:"available_credits"`
}

// Limits carries entitlement ceilings for a plan.
type Limits struct {
	CreditsMonthly int  `json:"credits_monthly"`
	DailyUsage     *int `json:"daily_usage"`
}

// UserPermissions is a point-in-time entitlement snapshot. It is immutable
// once constructed; the permission cache hands out copies, never the cached
// value itself.
type UserPermissions struct {
	PlanCode           PlanCode           `json:"plan_code"`
	PlanName           string             `json:"plan_name"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	Features           FeatureSet         `json:"features"`
	Credits            CreditBalance      `json:"credits"`
	Limits             Limits             `json:"limits"`
	Priority           string             `json:"priority"`
	FetchedAt          time.Time          `json:"fetched_at"`
}

// Clone returns a deep copy so callers can hold the snapshot without
// aliasing cache state.
func (p UserPermissions) Clone() UserPermissions {
	out := p
	out.Features = p.Features.Clone()
	if p.Limits.DailyUsage != nil {
		v := *p.Limits.DailyUsage
		out.Limits.DailyUsage = &v
	}
	return out
}

// CheckResult is the outcome of a read-only feature permission check.
type CheckResult struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
	Message string     `json:"message,omitempty"`
}

// ConsumeResult is the outcome of a credit debit attempt.
type ConsumeResult struct {
	Success          bool       `json:"success"`
	Reason           DenyReason `json:"reason,omitempty"`
	Message          string     `json:"message,omitempty"`
	CreditsConsumed  int        `json:"credits_consumed,omitempty"`
	RemainingCredits int        `json:"remaining_credits"`
}
