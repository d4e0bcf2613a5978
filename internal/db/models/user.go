// Package models defines the database model types for the Skills Hub backend.
// Each type corresponds to a database table and uses struct tags for JSON serialization
// and, where the repository uses sqlx, for row scanning.
// Models are pure data types: business logic belongs in the service and policy layers,
// query logic belongs in the repositories layer.
package models

import "time"

// User roles. Site-wide, distinct from per-team membership roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User represents a registered account
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // "member" or "admin"
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the site-wide admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserWithMemberships is a user together with their team memberships,
// loaded in a single query for authorization decisions
type UserWithMemberships struct {
	User
	Memberships []TeamMember `json:"memberships"`
}

// MemberOf reports whether the user belongs to the given team
func (u *UserWithMemberships) MemberOf(teamID string) bool {
	for _, m := range u.Memberships {
		if m.TeamID == teamID {
			return true
		}
	}
	return false
}

// TeamRole returns the user's role within the given team, or "" if not a member
func (u *UserWithMemberships) TeamRole(teamID string) string {
	for _, m := range u.Memberships {
		if m.TeamID == teamID {
			return m.Role
		}
	}
	return ""
}
