// Package jobs contains background maintenance loops started alongside the
// HTTP server and stopped during graceful shutdown.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/skills-hub/skills-hub/internal/db/repositories"
	"github.com/skills-hub/skills-hub/internal/telemetry"
)

// APIKeyCleanupJob periodically deletes expired API keys. Expired keys are
// already rejected at authentication time; this job only reclaims the rows.
type APIKeyCleanupJob struct {
	apiKeyRepo *repositories.APIKeyRepository
	interval   time.Duration
	stopChan   chan struct{}
}

// NewAPIKeyCleanupJob creates the cleanup job. intervalHours controls how
// often the purge runs; zero or negative disables the job entirely.
func NewAPIKeyCleanupJob(apiKeyRepo *repositories.APIKeyRepository, intervalHours int) *APIKeyCleanupJob {
	return &APIKeyCleanupJob{
		apiKeyRepo: apiKeyRepo,
		interval:   time.Duration(intervalHours) * time.Hour,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the cleanup loop. It runs one purge immediately, then repeats
// on the configured interval until ctx is cancelled or Stop is called.
func (j *APIKeyCleanupJob) Start(ctx context.Context) {
	if j.interval <= 0 {
		slog.Info("api key cleanup job disabled")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	slog.Info("api key cleanup job started", "interval", j.interval)

	j.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			j.runOnce(ctx)
		case <-j.stopChan:
			slog.Info("api key cleanup job stopped")
			return
		case <-ctx.Done():
			slog.Info("api key cleanup job context cancelled")
			return
		}
	}
}

// Stop signals the cleanup loop to exit
func (j *APIKeyCleanupJob) Stop() {
	close(j.stopChan)
}

// runOnce deletes all currently expired keys
func (j *APIKeyCleanupJob) runOnce(ctx context.Context) {
	deleted, err := j.apiKeyRepo.DeleteExpired(ctx)
	if err != nil {
		slog.Error("api key cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		telemetry.APIKeysCleanedTotal.Add(float64(deleted))
		slog.Info("purged expired api keys", "count", deleted)
	}
}
