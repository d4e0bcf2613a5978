// api_key.go defines the APIKey model for machine authentication.
package models

import "time"

// API key scopes
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// APIKey represents a long-lived machine credential belonging to one user.
//
// The secret is stored only as KeyHash, a SHA-256 hex digest used for
// exact-equality lookup at authentication time. KeyEncrypted optionally holds
// an AES-GCM encrypted copy of the raw key so the owner can re-display it;
// it is a strictly weaker guarantee than the hash and is never consulted
// during authentication. It is only populated when an encryption secret is
// configured.
type APIKey struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	KeyHash      string     `json:"-"`
	KeyEncrypted *string    `json:"-"`
	Scopes       []string   `json:"scopes"`       // "read" / "write"
	AllowedTags  []string   `json:"allowed_tags"` // tag scope allow-list; empty = deny all
	IsActive     bool       `json:"is_active"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// HasScope reports whether the key's scope set contains the given scope
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Expired reports whether the key is expired relative to now.
// Keys without an expiry never expire.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}
