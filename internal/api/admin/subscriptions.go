// subscriptions.go implements the per-user skill subscription endpoints.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skills-hub/skills-hub/internal/services"
)

// ListSubscriptionsHandler returns the caller's subscriptions, including
// disabled ones so the UI can show resubscribe affordances.
// Implements: GET /api/v1/subscriptions
func ListSubscriptionsHandler(svc *services.SubscriptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		subs, err := svc.List(c.Request.Context(), currentUser(c))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
	}
}

// SubscribeHandler subscribes the caller to a skill, re-enabling a previously
// disabled subscription if one exists.
// Implements: PUT /api/v1/subscriptions/:skill
func SubscribeHandler(svc *services.SubscriptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := svc.Subscribe(c.Request.Context(), currentUser(c), c.Param("skill"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"subscription": sub})
	}
}

// UnsubscribeHandler disables the caller's subscription to a skill. Succeeds
// even when no subscription exists.
// Implements: DELETE /api/v1/subscriptions/:skill
func UnsubscribeHandler(svc *services.SubscriptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Unsubscribe(c.Request.Context(), currentUser(c), c.Param("skill")); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unsubscribed": true})
	}
}
