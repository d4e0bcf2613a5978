// skills.go implements skill CRUD, version publishing, and SKILL.md parsing.
package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skills-hub/skills-hub/internal/services"
	"github.com/skills-hub/skills-hub/internal/validation"
)

// @Summary      List skills visible to the caller
// @Tags         Skills
// @Produce      json
// @Param        q       query  string  false  "Search in name, display name and description"
// @Param        tag     query  string  false  "Filter by tag"
// @Param        limit   query  int     false  "Maximum results (default 20, max 100)"
// @Param        offset  query  int     false  "Pagination offset"
// @Success      200  {object}  map[string]interface{}  "skills: [], meta: {limit, offset, total}"
// @Router       /api/v1/skills [get]
// ListSkillsHandler returns the visibility-filtered skill catalog
func ListSkillsHandler(svc *services.SkillService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit < 1 || limit > 100 {
			limit = 20
		}
		offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil || offset < 0 {
			offset = 0
		}

		skills, total, err := svc.ListSkills(c.Request.Context(), currentUser(c), c.Query("q"), c.Query("tag"), limit, offset)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"skills": skills,
			"meta":   gin.H{"limit": limit, "offset": offset, "total": total},
		})
	}
}

// @Summary      Create a skill
// @Tags         Skills
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]interface{}  "skill"
// @Failure      409  {object}  map[string]interface{}  "Name already taken"
// @Router       /api/v1/skills [post]
// CreateSkillHandler creates a skill owned by the calling user
func CreateSkillHandler(svc *services.SkillService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CreateSkillInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		skill, err := svc.CreateSkill(c.Request.Context(), currentUser(c), input)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"skill": skill})
	}
}

// GetSkillHandler fetches one skill by name.
// Implements: GET /api/v1/skills/:name
func GetSkillHandler(svc *services.SkillService) gin.HandlerFunc {
	return func(c *gin.Context) {
		skill, err := svc.GetSkill(c.Request.Context(), currentUser(c), c.Param("name"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"skill": skill})
	}
}

// UpdateSkillHandler applies a partial metadata update.
// Implements: PATCH /api/v1/skills/:name
func UpdateSkillHandler(svc *services.SkillService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.UpdateSkillInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		skill, err := svc.UpdateSkill(c.Request.Context(), currentUser(c), c.Param("name"), input)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"skill": skill})
	}
}

// DeleteSkillHandler removes a skill and all its versions.
// Implements: DELETE /api/v1/skills/:name
func DeleteSkillHandler(svc *services.SkillService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteSkill(c.Request.Context(), currentUser(c), c.Param("name")); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// @Summary      Publish a new skill version
// @Tags         Skills
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]interface{}  "version"
// @Failure      409  {object}  map[string]interface{}  "Version already exists"
// @Router       /api/v1/skills/{name}/versions [post]
// PublishVersionHandler creates an immutable version and marks the skill published
func PublishVersionHandler(svc *services.SkillService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.PublishVersionInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "version and content are required"})
			return
		}

		version, err := svc.PublishVersion(c.Request.Context(), currentUser(c), c.Param("name"), input)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"version": version})
	}
}

// ListVersionsHandler returns all versions of a skill, newest first.
// Implements: GET /api/v1/skills/:name/versions
func ListVersionsHandler(svc *services.SkillService) gin.HandlerFunc {
	return func(c *gin.Context) {
		versions, err := svc.ListVersions(c.Request.Context(), currentUser(c), c.Param("name"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"versions": versions})
	}
}

// GetVersionHandler returns one version together with its attached files.
// Implements: GET /api/v1/skills/:name/versions/:version
func GetVersionHandler(svc *services.SkillService) gin.HandlerFunc {
	return func(c *gin.Context) {
		version, files, err := svc.GetVersion(c.Request.Context(), currentUser(c), c.Param("name"), c.Param("version"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"version": version, "files": files})
	}
}

// parseSkillMDRequest carries a raw SKILL.md document for parsing
type parseSkillMDRequest struct {
	Content string `json:"content" binding:"required"`
}

// ParseSkillMDHandler parses a SKILL.md document into structured metadata
// without persisting anything. The UI uses it to prefill the publish form.
// Implements: POST /api/v1/parse-skill-md
func ParseSkillMDHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req parseSkillMDRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
			return
		}

		parsed, err := validation.ParseSkillMD(req.Content)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"name":         parsed.Name,
			"display_name": parsed.DisplayName,
			"description":  parsed.Description,
			"tags":         parsed.Tags,
			"category":     parsed.Category,
			"version":      parsed.Version,
			"metadata":     parsed.Metadata,
			"body":         parsed.Body,
		})
	}
}
