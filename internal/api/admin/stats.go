// stats.go implements usage statistics over the caller's own API keys.
package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skills-hub/skills-hub/internal/services"
)

// windowDays parses the days query parameter, falling back to def
func windowDays(c *gin.Context, def int) int {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return days
}

// @Summary      Usage overview
// @Tags         Statistics
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "total_calls, today_calls, week_calls, active_skills"
// @Router       /api/v1/stats/overview [get]
// OverviewHandler returns headline usage counters for the caller's keys
func OverviewHandler(svc *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		overview, err := svc.Overview(c.Request.Context(), currentUser(c))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}

// PopularHandler returns the caller's most-resolved skills within a window.
// Implements: GET /api/v1/stats/popular?days=30&limit=10
func PopularHandler(svc *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPopularN)))
		if err != nil || limit < 1 {
			limit = services.DefaultPopularN
		}

		popular, err := svc.Popular(c.Request.Context(), currentUser(c), windowDays(c, services.DefaultWindowDays), limit)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"skills": popular})
	}
}

// TrendHandler returns a zero-filled per-day call count series.
// Implements: GET /api/v1/stats/trend?days=7
func TrendHandler(svc *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		trend, err := svc.Trend(c.Request.Context(), currentUser(c), windowDays(c, 7))
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"trend": trend})
	}
}
