package models

import "time"

// Well-known plan identifiers.
const (
	PlanFree    = "free"
	PlanWeekly  = "weekly"
	PlanMonthly = "monthly"
)

// Plan is a subscription tier with daily/monthly translation quotas.
// MonthlyLimit is always derived as DailyLimit * 30.
type Plan struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	DailyLimit   int    `json:"daily_limit"`
	MonthlyLimit int    `json:"monthly_limit"`
	Price        int    `json:"price"`
	DurationDays int    `json:"duration_days"` // 0 for the free plan: it cannot be activated by key
}

// Subscription is a time-boxed plan upgrade attached to a user after an
// activation key is redeemed. Expiry is never enforced actively; callers
// derive the effective plan from ExpiresAt at read time.
type Subscription struct {
	PlanID      string    `json:"plan_id"`
	ActivatedAt time.Time `json:"activated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// SubscriptionStatus is the snapshot returned to clients, also attached to
// translate failures so the UI can always render remaining quota.
type SubscriptionStatus struct {
	PlanID                string     `json:"plan_id"`
	Status                string     `json:"status"` // "active" or "expired"
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	RemainingTranslations int        `json:"remaining_translations"`
	Plan                  *Plan      `json:"plan,omitempty"`
}
