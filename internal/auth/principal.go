// principal.go defines the Principal produced by request authentication: a
// human session or a machine caller bound to an API key. Handlers and the
// policy layer branch on the principal kind, never on raw header contents.
package auth

import "github.com/skills-hub/skills-hub/internal/db/models"

// Method names for the two authentication paths
const (
	MethodSession = "session"
	MethodAPIKey  = "api_key"
)

// Principal is the authenticated actor making a request. User is always set;
// Key is set only for machine principals.
type Principal struct {
	User   *models.UserWithMemberships
	Key    *models.APIKey
	Method string
}

// IsMachine reports whether the principal authenticated with an API key
func (p *Principal) IsMachine() bool {
	return p.Key != nil
}

// NewHumanPrincipal builds a principal for a session-authenticated user
func NewHumanPrincipal(user *models.UserWithMemberships) *Principal {
	return &Principal{User: user, Method: MethodSession}
}

// NewMachinePrincipal builds a principal for an API-key caller acting on
// behalf of the key's owner
func NewMachinePrincipal(user *models.UserWithMemberships, key *models.APIKey) *Principal {
	return &Principal{User: user, Key: key, Method: MethodAPIKey}
}
