// auth.go implements credential login, self-service registration, and the
// current-session endpoint.
package admin

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skills-hub/skills-hub/internal/auth"
	"github.com/skills-hub/skills-hub/internal/config"
	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
)

// loginRequest is the credential payload for password login
type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// registerRequest is the self-service account creation payload
type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// @Summary      Log in with username and password
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "token, user"
// @Failure      401  {object}  map[string]interface{}  "Invalid credentials"
// @Router       /api/v1/auth/login [post]
// LoginHandler verifies a password and issues a session token
func LoginHandler(cfg *config.Config, userRepo *repositories.UserRepository) gin.HandlerFunc {
	ttl := cfg.Auth.SessionTTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}

	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}

		user, err := userRepo.GetUserByUsername(c.Request.Context(), req.Username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up user"})
			return
		}
		// Same response for unknown user and wrong password so login does
		// not leak which usernames exist.
		if user == nil || !user.IsActive || !auth.VerifyPassword(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		token, err := auth.GenerateJWT(user.ID, ttl)
		if err != nil {
			slog.Error("failed to issue session token", "user_id", user.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_in": int(ttl.Seconds()),
			"user":       user,
		})
	}
}

// @Summary      Register a new account
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]interface{}  "user"
// @Failure      403  {object}  map[string]interface{}  "Registration disabled"
// @Failure      409  {object}  map[string]interface{}  "Username or email taken"
// @Router       /api/v1/auth/register [post]
// RegisterHandler creates a new member account when registration is enabled
func RegisterHandler(cfg *config.Config, userRepo *repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Auth.AllowRegistration {
			c.JSON(http.StatusForbidden, gin.H{"error": "registration is disabled"})
			return
		}

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and a password of at least 8 characters are required"})
			return
		}
		req.Username = strings.ToLower(strings.TrimSpace(req.Username))
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		ctx := c.Request.Context()
		if existing, err := userRepo.GetUserByUsername(ctx, req.Username); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up user"})
			return
		} else if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "username is already taken"})
			return
		}
		if existing, err := userRepo.GetUserByEmail(ctx, req.Email); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up user"})
			return
		} else if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}

		user := &models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         models.RoleMember,
		}
		if err := userRepo.CreateUser(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
			return
		}

		slog.Info("user registered", "user_id", user.ID, "username", user.Username)
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// @Summary      Get the current session's user
// @Tags         Authentication
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "user with team memberships"
// @Router       /api/v1/auth/me [get]
// MeHandler returns the authenticated user together with their memberships
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
	}
}
