// subscription.go defines the SkillSubscription model: a per-(user, skill)
// opt-in record controlling machine resolution under subscription-gated policy.
package models

import "time"

// SkillSubscription is unique per (user, skill). Existence of the record is
// distinct from enabled=true: a disabled record still marks "previously
// subscribed" and is surfaced to the UI, but the resolution engine treats
// "no record" and "disabled record" identically.
type SkillSubscription struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	SkillID      string    `json:"skill_id" db:"skill_id"`
	Enabled      bool      `json:"enabled" db:"enabled"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	// Joined fields (not stored in skill_subscriptions table)
	SkillName *string `json:"skill_name,omitempty" db:"skill_name"`
}
