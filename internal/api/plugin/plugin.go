// Package plugin implements the machine-facing resolution surface consumed
// by editor and agent integrations: catalog enumeration, batch resolution,
// and raw content fetch. Every route requires an API key with the read
// scope; the active resolution policy decides which skills each key sees.
package plugin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skills-hub/skills-hub/internal/middleware"
	"github.com/skills-hub/skills-hub/internal/services"
)

// resolveRequest is the batch resolution payload
type resolveRequest struct {
	Skills []string `json:"skills" binding:"required"`
}

// renderError maps a service error onto its HTTP status and a safe message
func renderError(c *gin.Context, err error) {
	c.JSON(services.HTTPStatus(err), gin.H{"error": services.UserMessage(err)})
}

// @Summary      List skills resolvable by this API key
// @Tags         Plugin
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "skills: [{name, description, version, tags}]"
// @Router       /api/v1/plugin/catalog [get]
// CatalogHandler enumerates the skills the calling key may resolve
func CatalogHandler(svc *services.ResolutionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.Catalog(c.Request.Context(), middleware.GetPrincipal(c))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"skills": items})
	}
}

// @Summary      Resolve a batch of skill specs
// @Tags         Plugin
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "skills: resolved entries; denied or unknown specs are omitted"
// @Failure      400  {object}  map[string]interface{}  "Batch size out of range"
// @Router       /api/v1/plugin/resolve [post]
// ResolveHandler resolves up to 50 specs of the form name or name@version
func ResolveHandler(svc *services.ResolutionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resolveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "skills is required"})
			return
		}

		resolved, err := svc.Resolve(c.Request.Context(), middleware.GetPrincipal(c), req.Skills)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"skills": resolved})
	}
}

// @Summary      Fetch one skill's raw content
// @Tags         Plugin
// @Produce      json
// @Param        version  query  string  false  "Exact version; omitted means latest"
// @Success      200  {object}  map[string]interface{}  "name, version, content"
// @Failure      403  {object}  map[string]interface{}  "Denied by the active policy"
// @Failure      404  {object}  map[string]interface{}  "Unknown skill or version"
// @Router       /api/v1/plugin/skills/{name}/raw [get]
// RawHandler serves a single version's SKILL.md content
func RawHandler(svc *services.ResolutionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := svc.Raw(c.Request.Context(), middleware.GetPrincipal(c), c.Param("name"), c.Query("version"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, raw)
	}
}
