// Package middleware provides Gin HTTP middleware for authentication,
// security headers, CORS, request IDs and metrics.
//
// Ordering is enforced in router.go: SecurityHeaders, CORS, RequestID,
// Metrics, then Authenticate. Security headers run first so they appear on
// every response including errors; auth runs last so the earlier layers
// cover 401s too.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skills-hub/skills-hub/internal/auth"
	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
	"github.com/skills-hub/skills-hub/internal/safego"
)

// PrincipalKey is the gin.Context key holding the authenticated *auth.Principal
const PrincipalKey = "principal"

// Authenticate validates the bearer credential and stores a Principal in the
// request context. Session tokens are tried first; anything that is not a
// valid JWT is treated as an API key and looked up by hash.
func Authenticate(userRepo *repositories.UserRepository, keyRepo *repositories.APIKeyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed authorization header"})
			return
		}

		if claims, err := auth.ValidateJWT(token); err == nil {
			user, err := userRepo.GetUserWithMemberships(c.Request.Context(), claims.UserID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
				return
			}
			if user == nil || !user.IsActive {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found or deactivated"})
				return
			}
			c.Set(PrincipalKey, auth.NewHumanPrincipal(user))
			c.Next()
			return
		}

		key, err := keyRepo.GetByHash(c.Request.Context(), auth.HashAPIKey(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to look up api key"})
			return
		}
		// Expiry is checked against the current time on every request, never
		// cached from creation.
		if key == nil || !key.IsActive || key.Expired(time.Now()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired credentials"})
			return
		}

		user, err := userRepo.GetUserWithMemberships(c.Request.Context(), key.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
			return
		}
		if user == nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found or deactivated"})
			return
		}

		c.Set(PrincipalKey, auth.NewMachinePrincipal(user, key))

		// Last-used bookkeeping happens off the request path.
		keyID := key.ID
		safego.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := keyRepo.TouchLastUsed(ctx, keyID); err != nil {
				slog.Warn("failed to update api key last_used_at", "key_id", keyID, "error", err)
			}
		})

		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal set by Authenticate
func GetPrincipal(c *gin.Context) *auth.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}

// RequireSession rejects machine callers. Used on the human CRUD surface.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil || p.IsMachine() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "session authentication required"})
			return
		}
		c.Next()
	}
}

// RequireMachine admits only API-key callers holding the read scope. Every
// plugin operation (catalog, resolve, raw) runs behind this gate.
func RequireMachine() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil || !p.IsMachine() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "api key required"})
			return
		}
		if !p.Key.HasScope(models.ScopeRead) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "read scope required"})
			return
		}
		c.Next()
	}
}

// RequireAdmin admits only site admins authenticated by session
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil || p.IsMachine() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "session authentication required"})
			return
		}
		if !p.User.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}
