package models

import "time"

// ActivationKey is a single-use token redeemable for a time-boxed plan
// upgrade. A key transitions unused -> used exactly once.
type ActivationKey struct {
	Key       string     `json:"key"`
	PlanID    string     `json:"plan_id"`
	Used      bool       `json:"used"`
	CreatedAt time.Time  `json:"created_at"`
	UsedBy    string     `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}
