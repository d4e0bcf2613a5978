// team.go defines the Team and TeamMember models. Team membership is a proper
// association entity (user↔team with a per-team role) rather than a column on users.
package models

import "time"

// Team membership roles, scoped to a single team
const (
	TeamRoleMember = "member"
	TeamRoleAdmin  = "admin"
)

// Team represents a named group that acts as a visibility boundary for skills
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	// Joined fields (not stored in teams table)
	MemberCount int `json:"member_count,omitempty"`
}

// TeamMember represents one user's membership in one team.
// A team with members must always retain at least one member with the
// team admin role; the membership service enforces this on removal.
type TeamMember struct {
	UserID   string    `json:"user_id" db:"user_id"`
	TeamID   string    `json:"team_id" db:"team_id"`
	Role     string    `json:"role" db:"role"` // "admin" or "member" within the team
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
	// Joined fields (not stored in team_members table)
	Username *string `json:"username,omitempty" db:"username"`
}
