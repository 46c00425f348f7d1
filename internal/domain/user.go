package domain

import "time"

// PlanCode enumerates subscription tiers.
type PlanCode string

const (
	PlanFree   PlanCode = "free"
	PlanPro    PlanCode = "pro"
	PlanStudio PlanCode = "studio"
)

// SubscriptionStatus enumerates billing states.
type SubscriptionStatus string

const (
	SubscriptionFree     SubscriptionStatus = "free"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// User represents an authenticated account within the platform.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Locale       string
	Plan         PlanCode
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsFree reports whether the user is on the free plan.
func (u User) IsFree() bool {
	return u.Plan == PlanFree
}

// Plan describes a subscription tier and its entitlements.
type Plan struct {
	Code           PlanCode
	Name           string
	Features       FeatureSet
	CreditsMonthly int
	DailyUsage     *int // nil means no daily ceiling
	Priority       string
}

// Entitlement joins a user's plan with their current billing state.
type Entitlement struct {
	Plan   Plan
	Status SubscriptionStatus
}
