// stats_service.go aggregates the usage ledger into the per-user statistics
// views. All numbers are scoped to calls made with the requesting user's own
// API keys; nobody sees anyone else's call volume.
package services

import (
	"context"
	"time"

	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
)

// Stats window bounds
const (
	DefaultWindowDays = 30
	MaxWindowDays     = 365
	DefaultPopularN   = 10
)

// StatsService computes usage statistics for human callers
type StatsService struct {
	usageRepo *repositories.UsageRepository
	now       func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(usageRepo *repositories.UsageRepository) *StatsService {
	return &StatsService{usageRepo: usageRepo, now: time.Now}
}

// localMidnight returns the start of t's calendar day in local time
func localMidnight(t time.Time) time.Time {
	year, month, day := t.Local().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// clampWindow normalizes a requested window length
func clampWindow(days int) int {
	if days <= 0 {
		return DefaultWindowDays
	}
	if days > MaxWindowDays {
		return MaxWindowDays
	}
	return days
}

// Overview returns the user's all-time, today and trailing-week call counts.
// Both cutoffs anchor at local midnight so the week window covers seven full
// calendar days plus today.
func (s *StatsService) Overview(ctx context.Context, user *models.UserWithMemberships) (*models.UsageOverview, error) {
	todayStart := localMidnight(s.now())
	return s.usageRepo.Overview(ctx, user.ID, todayStart, todayStart.AddDate(0, 0, -7))
}

// Popular returns the user's most used skills within the window
func (s *StatsService) Popular(ctx context.Context, user *models.UserWithMemberships, windowDays, limit int) ([]*models.PopularSkill, error) {
	windowDays = clampWindow(windowDays)
	if limit <= 0 {
		limit = DefaultPopularN
	}
	since := localMidnight(s.now()).AddDate(0, 0, -windowDays)
	return s.usageRepo.Popular(ctx, user.ID, since, limit)
}

// Trend returns one point per calendar day from windowDays ago through today
// inclusive, oldest first, zero-filled for quiet days. The series always has
// windowDays+1 entries.
func (s *StatsService) Trend(ctx context.Context, user *models.UserWithMemberships, windowDays int) ([]models.UsagePoint, error) {
	windowDays = clampWindow(windowDays)
	start := localMidnight(s.now()).AddDate(0, 0, -windowDays)

	counts, err := s.usageRepo.DailyCounts(ctx, user.ID, start)
	if err != nil {
		return nil, err
	}

	points := make([]models.UsagePoint, 0, windowDays+1)
	for i := 0; i <= windowDays; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		points = append(points, models.UsagePoint{Date: date, CallCount: counts[date]})
	}
	return points, nil
}
