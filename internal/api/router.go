// Package api wires together all HTTP routes for the Skills Hub backend.
//
// Route grouping:
//   - /api/v1/auth/{login,register} are unauthenticated entry points.
//   - /api/v1/plugin/ is the machine surface: API keys with the read scope
//     only. Humans cannot call it with a session token.
//   - Everything else under /api/v1/ requires a session; /api/v1/admin/
//     additionally requires the site admin role.
//
// Health endpoints sit outside /api/v1 so load balancers and probes need no
// credentials.
package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/skills-hub/skills-hub/internal/api/admin"
	"github.com/skills-hub/skills-hub/internal/api/plugin"
	"github.com/skills-hub/skills-hub/internal/config"
	"github.com/skills-hub/skills-hub/internal/crypto"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
	"github.com/skills-hub/skills-hub/internal/jobs"
	"github.com/skills-hub/skills-hub/internal/middleware"
	"github.com/skills-hub/skills-hub/internal/safego"
	"github.com/skills-hub/skills-hub/internal/services"
)

// BackgroundServices holds background jobs that must be stopped during
// graceful shutdown. The caller (cmd/server) calls Shutdown after the HTTP
// server has drained in-flight requests.
type BackgroundServices struct {
	keyCleanupJob *jobs.APIKeyCleanupJob
}

// Shutdown stops all background goroutines
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.keyCleanupJob != nil {
		bg.keyCleanupJob.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(&cfg.Security.CORS))
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())

	// Repositories. Raw database/sql for the scan-heavy ones, sqlx where
	// struct scanning pays off.
	userRepo := repositories.NewUserRepository(db)
	apiKeyRepo := repositories.NewAPIKeyRepository(db)
	teamRepo := repositories.NewTeamRepository(db)
	skillRepo := repositories.NewSkillRepository(db)

	sqlxDB := sqlx.NewDb(db, "postgres")
	subRepo := repositories.NewSubscriptionRepository(sqlxDB)
	usageRepo := repositories.NewUsageRepository(sqlxDB)

	// Key cipher is optional; without a secret only the one-way hash is stored
	// and the reveal endpoint is unavailable.
	var keyCipher *crypto.KeyCipher
	if cfg.Auth.EncryptionSecret != "" {
		var err error
		keyCipher, err = crypto.DeriveKeyCipher(cfg.Auth.EncryptionSecret)
		if err != nil {
			return nil, nil, err
		}
	} else {
		slog.Warn("auth.encryption_secret not set; api keys will not be recoverable after creation")
	}

	skillSvc := services.NewSkillService(sqlxDB, skillRepo, subRepo)
	subSvc := services.NewSubscriptionService(skillRepo, subRepo)
	teamSvc := services.NewTeamService(sqlxDB, teamRepo, subRepo)
	keySvc := services.NewAPIKeyService(apiKeyRepo, keyCipher)
	resolutionSvc := services.NewResolutionService(skillRepo, subRepo, usageRepo, cfg.Auth.ResolutionPolicy)
	statsSvc := services.NewStatsService(usageRepo)

	// Health endpoints, unauthenticated
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Unauthenticated entry points
	v1.POST("/auth/login", admin.LoginHandler(cfg, userRepo))
	v1.POST("/auth/register", admin.RegisterHandler(cfg, userRepo))

	authed := v1.Group("")
	authed.Use(middleware.Authenticate(userRepo, apiKeyRepo))

	// Machine surface
	machine := authed.Group("/plugin")
	machine.Use(middleware.RequireMachine())
	{
		machine.GET("/catalog", plugin.CatalogHandler(resolutionSvc))
		machine.POST("/resolve", plugin.ResolveHandler(resolutionSvc))
		machine.GET("/skills/:name/raw", plugin.RawHandler(resolutionSvc))
	}

	// Human surface
	session := authed.Group("")
	session.Use(middleware.RequireSession())
	{
		session.GET("/auth/me", admin.MeHandler())

		session.GET("/skills", admin.ListSkillsHandler(skillSvc))
		session.POST("/skills", admin.CreateSkillHandler(skillSvc))
		session.GET("/skills/:name", admin.GetSkillHandler(skillSvc))
		session.PATCH("/skills/:name", admin.UpdateSkillHandler(skillSvc))
		session.DELETE("/skills/:name", admin.DeleteSkillHandler(skillSvc))
		session.POST("/skills/:name/versions", admin.PublishVersionHandler(skillSvc))
		session.GET("/skills/:name/versions", admin.ListVersionsHandler(skillSvc))
		session.GET("/skills/:name/versions/:version", admin.GetVersionHandler(skillSvc))
		session.POST("/parse-skill-md", admin.ParseSkillMDHandler())

		session.GET("/subscriptions", admin.ListSubscriptionsHandler(subSvc))
		session.PUT("/subscriptions/:skill", admin.SubscribeHandler(subSvc))
		session.DELETE("/subscriptions/:skill", admin.UnsubscribeHandler(subSvc))

		session.POST("/teams", admin.CreateTeamHandler(teamSvc))
		session.GET("/teams", admin.ListTeamsHandler(teamSvc))
		session.GET("/teams/:slug", admin.GetTeamHandler(teamSvc))
		session.PATCH("/teams/:slug", admin.UpdateTeamHandler(teamSvc))
		session.DELETE("/teams/:slug", admin.DeleteTeamHandler(teamSvc))
		session.GET("/teams/:slug/members", admin.ListMembersHandler(teamSvc))
		session.POST("/teams/:slug/members", admin.AddMemberHandler(teamSvc))
		session.DELETE("/teams/:slug/members/:userID", admin.RemoveMemberHandler(teamSvc))
		session.POST("/teams/:slug/leave", admin.LeaveTeamHandler(teamSvc))

		session.POST("/keys", admin.CreateKeyHandler(keySvc))
		session.GET("/keys", admin.ListKeysHandler(keySvc))
		session.GET("/keys/:id/reveal", admin.RevealKeyHandler(keySvc))
		session.PATCH("/keys/:id", admin.UpdateKeyTagsHandler(keySvc))
		session.DELETE("/keys/:id", admin.DeleteKeyHandler(keySvc))

		session.GET("/stats/overview", admin.OverviewHandler(statsSvc))
		session.GET("/stats/popular", admin.PopularHandler(statsSvc))
		session.GET("/stats/trend", admin.TrendHandler(statsSvc))
	}

	// Site administration
	adminGroup := authed.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin())
	{
		adminGroup.GET("/users", admin.ListUsersHandler(userRepo))
		adminGroup.PATCH("/users/:id/role", admin.ChangeRoleHandler(userRepo))
	}

	// Background jobs
	bg := &BackgroundServices{
		keyCleanupJob: jobs.NewAPIKeyCleanupJob(apiKeyRepo, cfg.Auth.APIKeyCleanupIntervalHours),
	}
	safego.Go(func() { bg.keyCleanupJob.Start(context.Background()) })

	return router, bg, nil
}
