// usage_log.go defines the UsageLog model: one immutable fact per plugin call.
package models

import "time"

// Usage actions
const (
	ActionResolve = "resolve"
	ActionRaw     = "raw"
	ActionCatalog = "catalog"
)

// WildcardSkillName marks usage entries that are not tied to a single skill
// (catalog calls). Wildcard entries are excluded from per-skill aggregates.
const WildcardSkillName = "*"

// UsageLog is an append-only record of a resolution, raw, or catalog call.
// Rows are never updated or deleted; statistics are computed by aggregation.
// Skill and key references are nullable so that deleting a skill or key does
// not erase the usage history it generated.
type UsageLog struct {
	ID           string    `json:"id" db:"id"`
	SkillID      *string   `json:"skill_id,omitempty" db:"skill_id"`
	SkillName    string    `json:"skill_name" db:"skill_name"`
	SkillVersion *string   `json:"skill_version,omitempty" db:"skill_version"`
	UserID       *string   `json:"user_id,omitempty" db:"user_id"`
	APIKeyID     *string   `json:"api_key_id,omitempty" db:"api_key_id"`
	Action       string    `json:"action" db:"action"` // resolve / raw / catalog
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UsageOverview summarizes one user's plugin activity. TotalCalls and
// ActiveSkills span the whole ledger; TodayCalls counts since local midnight
// and WeekCalls the trailing seven days.
type UsageOverview struct {
	TotalCalls   int `json:"total_calls"`
	TodayCalls   int `json:"today_calls"`
	WeekCalls    int `json:"week_calls"`
	ActiveSkills int `json:"active_skills"`
}

// PopularSkill is one row of the most-used-skills ranking. Percentage is the
// skill's share of all calls in the window, wildcard entries included in the
// denominator, rounded to one decimal place.
type PopularSkill struct {
	SkillName  string  `json:"skill_name" db:"skill_name"`
	CallCount  int     `json:"call_count" db:"call_count"`
	Percentage float64 `json:"percentage"`
}

// UsagePoint is one day's call count in a usage trend series
type UsagePoint struct {
	Date      string `json:"date"` // YYYY-MM-DD, local time
	CallCount int    `json:"call_count"`
}
