// Package admin implements the session-authenticated management surface:
// account auth, skill and version CRUD, teams, subscriptions, API keys,
// usage statistics, and site administration.
//
// Handlers translate HTTP to service calls and back; authorization beyond
// the middleware gates lives in the service and policy layers.
package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/middleware"
	"github.com/skills-hub/skills-hub/internal/services"
)

// currentUser returns the session user set by the auth middleware. The
// RequireSession gate guarantees a human principal on every route in this
// package, so a nil principal here is a wiring bug.
func currentUser(c *gin.Context) *models.UserWithMemberships {
	p := middleware.GetPrincipal(c)
	if p == nil {
		return nil
	}
	return p.User
}

// renderError maps a service error onto its HTTP status and a safe message
func renderError(c *gin.Context, err error) {
	c.JSON(services.HTTPStatus(err), gin.H{"error": services.UserMessage(err)})
}
