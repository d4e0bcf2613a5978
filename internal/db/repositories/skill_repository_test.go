package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/skills-hub/skills-hub/internal/db/models"
)

var skillCols = []string{"id", "name", "display_name", "description", "tags", "visibility", "team_id", "author_id", "is_published", "created_at", "updated_at", "version"}

func sampleSkillRow() *sqlmock.Rows {
	return sqlmock.NewRows(skillCols).
		AddRow("skill-1", "code-review", "Code Review", nil, "{golang,review}", "public", nil, "user-1", true, time.Now(), time.Now(), "1.2.0")
}

func newSkillRepo(t *testing.T) (*SkillRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSkillRepository(db), mock
}

// ---------------------------------------------------------------------------
// GetSkillByName
// ---------------------------------------------------------------------------

func TestGetSkillByName_Found(t *testing.T) {
	repo, mock := newSkillRepo(t)
	mock.ExpectQuery("SELECT.*FROM skills s.*WHERE s.name").
		WithArgs("code-review").
		WillReturnRows(sampleSkillRow())

	skill, err := repo.GetSkillByName(context.Background(), "code-review")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skill == nil {
		t.Fatal("expected skill, got nil")
	}
	if len(skill.Tags) != 2 || skill.Tags[0] != "golang" {
		t.Errorf("Tags = %v, want [golang review]", skill.Tags)
	}
	if skill.LatestVersion == nil || *skill.LatestVersion != "1.2.0" {
		t.Errorf("LatestVersion = %v, want 1.2.0", skill.LatestVersion)
	}
}

// The latest-version pick must be deterministic when created_at ties: greatest
// core version first, release before its pre-releases at an equal core.
func TestGetSkillByName_LatestVersionTieBreak(t *testing.T) {
	repo, mock := newSkillRepo(t)
	mock.ExpectQuery(`SELECT.*FROM skills s.*` +
		`ORDER BY sv\.created_at DESC, ` +
		`string_to_array.*::int\[\] DESC, ` +
		`\(sv\.version LIKE '%-%'\) ASC, sv\.version DESC`).
		WithArgs("code-review").
		WillReturnRows(sampleSkillRow())

	if _, err := repo.GetSkillByName(context.Background(), "code-review"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetSkillByName_NotFound(t *testing.T) {
	repo, mock := newSkillRepo(t)
	mock.ExpectQuery("SELECT.*FROM skills s.*WHERE s.name").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(skillCols))

	skill, err := repo.GetSkillByName(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skill != nil {
		t.Errorf("expected nil skill, got %v", skill)
	}
}

// ---------------------------------------------------------------------------
// ListSkills
// ---------------------------------------------------------------------------

func TestListSkills_VisibilityFilter(t *testing.T) {
	repo, mock := newSkillRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM skills s").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT.*FROM skills s.*ORDER BY s.name").
		WillReturnRows(sampleSkillRow())

	skills, total, err := repo.ListSkills(context.Background(), SkillFilter{
		UserID:  "user-1",
		TeamIDs: []string{"team-1"},
		Limit:   20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	if len(skills) != 1 {
		t.Fatalf("len(skills) = %d, want 1", len(skills))
	}
}

func TestListSkills_AdminSkipsVisibilityClause(t *testing.T) {
	repo, mock := newSkillRepo(t)
	// Admin queries carry only limit/offset args.
	mock.ExpectQuery("SELECT COUNT.*FROM skills s").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT.*FROM skills s").
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(skillCols))

	_, _, err := repo.ListSkills(context.Background(), SkillFilter{Admin: true, Limit: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ---------------------------------------------------------------------------
// CreateVersion
// ---------------------------------------------------------------------------

func TestCreateVersion_CommitsVersionFilesAndPublishFlag(t *testing.T) {
	repo, mock := newSkillRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO skill_versions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO skill_files").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE skills SET is_published").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	version := &models.SkillVersion{
		SkillID:   "skill-1",
		Version:   "1.0.0",
		Content:   "# Skill\nbody",
		CreatedBy: "user-1",
	}
	files := []*models.SkillFile{{Path: "scripts/run.sh", Content: "echo hi"}}

	if err := repo.CreateVersion(context.Background(), version, files); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version.ID == "" {
		t.Error("expected generated version ID")
	}
	if files[0].SkillVersionID != version.ID {
		t.Error("file not linked to version")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateVersion_RollsBackOnFileError(t *testing.T) {
	repo, mock := newSkillRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO skill_versions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO skill_files").
		WillReturnError(errDB)
	mock.ExpectRollback()

	version := &models.SkillVersion{SkillID: "skill-1", Version: "1.0.0", Content: "x", CreatedBy: "user-1"}
	files := []*models.SkillFile{{Path: "a.md", Content: "y"}}

	if err := repo.CreateVersion(context.Background(), version, files); err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ---------------------------------------------------------------------------
// ListVersions ordering
// ---------------------------------------------------------------------------

func TestListVersions_NewestFirstSemverTieBreak(t *testing.T) {
	repo, mock := newSkillRepo(t)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	versionCols := []string{"id", "skill_id", "version", "content", "metadata", "changelog", "created_by", "created_at"}
	mock.ExpectQuery("SELECT.*FROM skill_versions").
		WithArgs("skill-1").
		WillReturnRows(sqlmock.NewRows(versionCols).
			AddRow("v1", "skill-1", "9.0.0", "c", []byte(`{}`), nil, "u", ts).
			AddRow("v2", "skill-1", "10.0.0", "c", []byte(`{}`), nil, "u", ts).
			AddRow("v3", "skill-1", "1.0.0", "c", []byte(`{}`), nil, "u", ts.Add(time.Hour)))

	versions, err := repo.ListVersions(context.Background(), "skill-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []string{versions[0].Version, versions[1].Version, versions[2].Version}
	want := []string{"1.0.0", "10.0.0", "9.0.0"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

func TestGetFile_NotFound(t *testing.T) {
	repo, mock := newSkillRepo(t)
	mock.ExpectQuery("SELECT.*FROM skill_files").
		WithArgs("ver-1", "missing.md").
		WillReturnRows(sqlmock.NewRows([]string{"id", "version_id", "file_path", "content", "file_type", "created_at"}))

	f, err := repo.GetFile(context.Background(), "ver-1", "missing.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != nil {
		t.Errorf("expected nil file, got %v", f)
	}
}
