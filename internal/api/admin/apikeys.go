// apikeys.go implements API key lifecycle management for the key owner.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skills-hub/skills-hub/internal/services"
)

// @Summary      Create an API key
// @Tags         API Keys
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]interface{}  "key record plus the raw secret, shown exactly once"
// @Router       /api/v1/keys [post]
// CreateKeyHandler issues a new API key for the calling user
func CreateKeyHandler(svc *services.APIKeyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CreateKeyInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		key, rawKey, err := svc.CreateKey(c.Request.Context(), currentUser(c), input)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"api_key": key,
			"key":     rawKey,
		})
	}
}

// ListKeysHandler returns the caller's API keys without secrets.
// Implements: GET /api/v1/keys
func ListKeysHandler(svc *services.APIKeyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		keys, err := svc.ListKeys(c.Request.Context(), currentUser(c))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"api_keys": keys})
	}
}

// RevealKeyHandler re-displays a key's secret from its encrypted copy.
// Only available when the server is configured with an encryption secret.
// Implements: GET /api/v1/keys/:id/reveal
func RevealKeyHandler(svc *services.APIKeyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawKey, err := svc.RevealKey(c.Request.Context(), currentUser(c), c.Param("id"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"key": rawKey})
	}
}

// updateKeyTagsRequest replaces a key's tag allow-list
type updateKeyTagsRequest struct {
	AllowedTags []string `json:"allowed_tags" binding:"required"`
}

// UpdateKeyTagsHandler replaces the key's tag scope allow-list. An empty
// list denies all tag-scoped resolution for the key.
// Implements: PATCH /api/v1/keys/:id
func UpdateKeyTagsHandler(svc *services.APIKeyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateKeyTagsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "allowed_tags is required"})
			return
		}

		key, err := svc.UpdateAllowedTags(c.Request.Context(), currentUser(c), c.Param("id"), req.AllowedTags)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"api_key": key})
	}
}

// DeleteKeyHandler permanently deletes one of the caller's keys.
// Implements: DELETE /api/v1/keys/:id
func DeleteKeyHandler(svc *services.APIKeyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteKey(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}
