// Package policy implements the authorization rules for skills: who can see
// a skill, who can change it, and which skills a machine credential may
// resolve. All functions are pure; callers load the data and policy decides.
package policy

import (
	"github.com/skills-hub/skills-hub/internal/db/models"
)

// Resolution policies, selected by configuration. They are cumulative: each
// tier adds a requirement on top of the previous one.
const (
	PolicyOpen       = "open"       // visibility only
	PolicySubscribed = "subscribed" // visibility + enabled subscription
	PolicyTagScoped  = "tag_scoped" // visibility + subscription + key tag scope
)

// CanView reports whether the user may see the skill at all. Public skills
// are visible to everyone; team skills to members of the owning team; private
// skills only to their author. Site admins see everything.
func CanView(user *models.UserWithMemberships, skill *models.Skill) bool {
	if user == nil || skill == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	if skill.AuthorID == user.ID {
		return true
	}
	switch skill.Visibility {
	case models.VisibilityPublic:
		return true
	case models.VisibilityTeam:
		return skill.TeamID != nil && user.MemberOf(*skill.TeamID)
	default:
		return false
	}
}

// CanEdit reports whether the user may modify or delete the skill and publish
// new versions of it. Team membership grants no edit rights; only the author
// and site admins may write.
func CanEdit(user *models.UserWithMemberships, skill *models.Skill) bool {
	if user == nil || skill == nil {
		return false
	}
	return user.IsAdmin() || skill.AuthorID == user.ID
}

// TagScopeAllows applies a key's tag allow-list to a skill. An empty
// allow-list denies everything; a key resolves only skills it was explicitly
// scoped to. The skill passes when it carries at least one allowed tag.
func TagScopeAllows(allowedTags []string, skill *models.Skill) bool {
	for _, tag := range allowedTags {
		if skill.HasTag(tag) {
			return true
		}
	}
	return false
}

// ResolveInput carries everything a resolution decision needs. Subscribed is
// the set of skill IDs the key's owner holds enabled subscriptions for.
type ResolveInput struct {
	User       *models.UserWithMemberships
	Key        *models.APIKey
	Skill      *models.Skill
	Subscribed map[string]bool
}

// CanResolve reports whether a machine credential may resolve the skill under
// the given policy. Unpublished skills never resolve.
func CanResolve(policyName string, in ResolveInput) bool {
	if in.Skill == nil || !in.Skill.IsPublished {
		return false
	}
	if !CanView(in.User, in.Skill) {
		return false
	}
	if policyName == PolicyOpen {
		return true
	}
	if !in.Subscribed[in.Skill.ID] {
		return false
	}
	if policyName == PolicySubscribed {
		return true
	}
	// tag_scoped
	if in.Key == nil {
		return false
	}
	return TagScopeAllows(in.Key.AllowedTags, in.Skill)
}

// ValidPolicy reports whether the name is a recognized resolution policy
func ValidPolicy(name string) bool {
	switch name {
	case PolicyOpen, PolicySubscribed, PolicyTagScoped:
		return true
	}
	return false
}
