// users.go implements site-admin user management.
package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
)

// @Summary      List all user accounts
// @Tags         Administration
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "users: [], meta: {limit, offset, total}"
// @Router       /api/v1/admin/users [get]
// ListUsersHandler returns all accounts, paginated. Site admin only.
func ListUsersHandler(userRepo *repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit < 1 || limit > 200 {
			limit = 50
		}
		offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil || offset < 0 {
			offset = 0
		}

		users, total, err := userRepo.ListUsers(c.Request.Context(), limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"users": users,
			"meta":  gin.H{"limit": limit, "offset": offset, "total": total},
		})
	}
}

// changeRoleRequest sets a user's site-wide role
type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ChangeRoleHandler promotes or demotes a user's site-wide role.
// Implements: PATCH /api/v1/admin/users/:id/role
func ChangeRoleHandler(userRepo *repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changeRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
			return
		}
		if req.Role != models.RoleMember && req.Role != models.RoleAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role must be 'member' or 'admin'"})
			return
		}

		ctx := c.Request.Context()
		user, err := userRepo.GetUserByID(ctx, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up user"})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		// Admins cannot demote themselves.
		if actor := currentUser(c); actor != nil && actor.ID == user.ID && req.Role != models.RoleAdmin {
			c.JSON(http.StatusConflict, gin.H{"error": "cannot change your own role"})
			return
		}

		user.Role = req.Role
		if err := userRepo.UpdateUser(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
