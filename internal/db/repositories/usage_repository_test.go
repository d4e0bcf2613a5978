package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/skills-hub/skills-hub/internal/db/models"
)

func newUsageRepo(t *testing.T) (*UsageRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUsageRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// InsertBatch
// ---------------------------------------------------------------------------

func TestInsertBatch_SingleTransaction(t *testing.T) {
	repo, mock := newUsageRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO skill_usage_logs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO skill_usage_logs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entries := []*models.UsageLog{
		{SkillName: "code-review", Action: models.ActionResolve, UserID: strPtr("user-1")},
		{SkillName: "deploy-helper", Action: models.ActionResolve, UserID: strPtr("user-1")},
	}
	if err := repo.InsertBatch(context.Background(), entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].ID == "" || entries[1].ID == "" {
		t.Error("expected generated IDs")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestInsertBatch_RollsBackOnFailure(t *testing.T) {
	repo, mock := newUsageRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO skill_usage_logs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO skill_usage_logs").WillReturnError(errDB)
	mock.ExpectRollback()

	entries := []*models.UsageLog{
		{SkillName: "a", Action: models.ActionResolve},
		{SkillName: "b", Action: models.ActionResolve},
	}
	if err := repo.InsertBatch(context.Background(), entries); err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestInsertBatch_EmptyIsNoop(t *testing.T) {
	repo, mock := newUsageRepo(t)

	if err := repo.InsertBatch(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no queries expected: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Popular
// ---------------------------------------------------------------------------

func TestPopular_PercentageAgainstWholeWindow(t *testing.T) {
	repo, mock := newUsageRepo(t)
	since := time.Now().AddDate(0, 0, -30)
	// Total of 10 includes wildcard catalog entries.
	mock.ExpectQuery("SELECT COUNT.*FROM skill_usage_logs").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	mock.ExpectQuery("SELECT skill_name, COUNT.*GROUP BY skill_name").
		WillReturnRows(sqlmock.NewRows([]string{"skill_name", "call_count"}).
			AddRow("code-review", 6).
			AddRow("deploy-helper", 2))

	popular, err := repo.Popular(context.Background(), "user-1", since, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(popular) != 2 {
		t.Fatalf("len = %d, want 2", len(popular))
	}
	if popular[0].Percentage != 60.0 {
		t.Errorf("percentage = %f, want 60.0", popular[0].Percentage)
	}
	if popular[1].Percentage != 20.0 {
		t.Errorf("percentage = %f, want 20.0", popular[1].Percentage)
	}
}

func TestPopular_ZeroTotal(t *testing.T) {
	repo, mock := newUsageRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM skill_usage_logs").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT skill_name, COUNT.*GROUP BY skill_name").
		WillReturnRows(sqlmock.NewRows([]string{"skill_name", "call_count"}))

	popular, err := repo.Popular(context.Background(), "user-1", time.Now(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(popular) != 0 {
		t.Errorf("expected empty ranking, got %v", popular)
	}
}

// ---------------------------------------------------------------------------
// Overview
// ---------------------------------------------------------------------------

func TestOverview_ScansAllCounters(t *testing.T) {
	repo, mock := newUsageRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM skill_usage_logs").
		WillReturnRows(sqlmock.NewRows([]string{"total", "today", "week", "active_skills"}).AddRow(42, 5, 12, 3))

	now := time.Now()
	overview, err := repo.Overview(context.Background(), "user-1", now.Truncate(24*time.Hour), now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overview.TotalCalls != 42 || overview.TodayCalls != 5 || overview.WeekCalls != 12 || overview.ActiveSkills != 3 {
		t.Errorf("overview = %+v", overview)
	}
}

// ---------------------------------------------------------------------------
// DailyCounts
// ---------------------------------------------------------------------------

func TestDailyCounts_BucketsByLocalDate(t *testing.T) {
	repo, mock := newUsageRepo(t)
	day := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	mock.ExpectQuery("SELECT created_at.*FROM skill_usage_logs").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).
			AddRow(day).
			AddRow(day.Add(2 * time.Hour)).
			AddRow(day.AddDate(0, 0, 1)))

	counts, err := repo.DailyCounts(context.Background(), "user-1", day.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts["2026-08-30"] != 2 {
		t.Errorf("counts[2026-08-30] = %d, want 2", counts["2026-08-30"])
	}
	if counts["2026-08-31"] != 1 {
		t.Errorf("counts[2026-08-31] = %d, want 1", counts["2026-08-31"])
	}
}
