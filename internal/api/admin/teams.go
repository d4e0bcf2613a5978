// teams.go implements team CRUD and membership management.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skills-hub/skills-hub/internal/services"
)

// @Summary      Create a team
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]interface{}  "team"
// @Failure      409  {object}  map[string]interface{}  "Slug already taken"
// @Router       /api/v1/teams [post]
// CreateTeamHandler creates a team with the caller as its first team admin
func CreateTeamHandler(svc *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CreateTeamInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and slug are required"})
			return
		}

		team, err := svc.CreateTeam(c.Request.Context(), currentUser(c), input)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"team": team})
	}
}

// ListTeamsHandler returns all teams.
// Implements: GET /api/v1/teams
func ListTeamsHandler(svc *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		teams, err := svc.ListTeams(c.Request.Context())
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"teams": teams})
	}
}

// GetTeamHandler fetches one team by slug.
// Implements: GET /api/v1/teams/:slug
func GetTeamHandler(svc *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		team, err := svc.GetTeam(c.Request.Context(), c.Param("slug"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"team": team})
	}
}

// updateTeamRequest is the partial update payload for a team
type updateTeamRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// UpdateTeamHandler renames a team or changes its description.
// Implements: PATCH /api/v1/teams/:slug
func UpdateTeamHandler(svc *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateTeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		team, err := svc.UpdateTeam(c.Request.Context(), currentUser(c), c.Param("slug"), req.Name, req.Description)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"team": team})
	}
}

// DeleteTeamHandler removes a team. Site admin only.
// Implements: DELETE /api/v1/teams/:slug
func DeleteTeamHandler(svc *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteTeam(c.Request.Context(), currentUser(c), c.Param("slug")); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// ListMembersHandler returns the team's membership roster.
// Implements: GET /api/v1/teams/:slug/members
func ListMembersHandler(svc *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		members, err := svc.ListMembers(c.Request.Context(), c.Param("slug"))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"members": members})
	}
}

// addMemberRequest identifies the user to add and their role in the team
type addMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}

// @Summary      Add a member to a team
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]interface{}  "added"
// @Failure      403  {object}  map[string]interface{}  "Not a team admin"
// @Router       /api/v1/teams/{slug}/members [post]
// AddMemberHandler adds a user to the team. Team admins and site admins only.
func AddMemberHandler(svc *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		if err := svc.AddMember(c.Request.Context(), currentUser(c), c.Param("slug"), req.UserID, req.Role); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"added": true})
	}
}

// RemoveMemberHandler removes a user from the team and disables their
// subscriptions to the team's team-visibility skills.
// Implements: DELETE /api/v1/teams/:slug/members/:userID
func RemoveMemberHandler(svc *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.RemoveMember(c.Request.Context(), currentUser(c), c.Param("slug"), c.Param("userID")); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": true})
	}
}

// LeaveTeamHandler lets the caller leave a team themselves.
// Implements: POST /api/v1/teams/:slug/leave
func LeaveTeamHandler(svc *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Leave(c.Request.Context(), currentUser(c), c.Param("slug")); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"left": true})
	}
}
