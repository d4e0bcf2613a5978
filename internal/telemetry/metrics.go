// metrics.go defines the Prometheus instruments exposed by the backend.
package telemetry

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts API requests by method, route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillshub_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route template.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skillshub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// SkillResolutionsTotal counts resolution outcomes per policy decision.
	SkillResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillshub_skill_resolutions_total",
			Help: "Skill resolution attempts by outcome (resolved, skipped).",
		},
		[]string{"outcome"},
	)

	// UsageEntriesTotal counts usage ledger rows written, by action.
	UsageEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillshub_usage_entries_total",
			Help: "Usage ledger entries recorded, by action.",
		},
		[]string{"action"},
	)

	// APIKeysCleanedTotal counts expired API keys removed by the cleanup job.
	APIKeysCleanedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skillshub_api_keys_cleaned_total",
			Help: "Expired API keys removed by the background cleanup job.",
		},
	)

	dbOpenConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skillshub_db_open_connections",
			Help: "Currently open database connections.",
		},
	)

	dbInUseConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skillshub_db_in_use_connections",
			Help: "Database connections currently in use.",
		},
	)
)

// MetricsHandler returns the handler serving the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// CollectDBStats polls sql.DB pool statistics into gauges until ctx is done.
func CollectDBStats(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			dbOpenConnections.Set(float64(stats.OpenConnections))
			dbInUseConnections.Set(float64(stats.InUse))
		}
	}
}
