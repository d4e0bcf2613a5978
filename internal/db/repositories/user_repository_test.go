package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/skills-hub/skills-hub/internal/db/models"
)

var errDB = errors.New("db error")

var userCols = []string{"id", "username", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}

func sampleUserRow() *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow("user-1", "alice", "alice@example.com", "$2a$12$hash", "member", true, time.Now(), time.Now())
}

func newUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), mock
}

// ---------------------------------------------------------------------------
// GetUserByID / GetUserByUsername
// ---------------------------------------------------------------------------

func TestGetUserByID_Found(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT.*FROM users WHERE id").
		WithArgs("user-1").
		WillReturnRows(sampleUserRow())

	user, err := repo.GetUserByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.Username != "alice" {
		t.Errorf("Username = %s, want alice", user.Username)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT.*FROM users WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userCols))

	user, err := repo.GetUserByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user for not found, got %v", user)
	}
}

func TestGetUserByUsername_DBError(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT.*FROM users WHERE username").
		WithArgs("alice").
		WillReturnError(errDB)

	_, err := repo.GetUserByUsername(context.Background(), "alice")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// CreateUser
// ---------------------------------------------------------------------------

func TestCreateUser_AssignsIDAndTimestamps(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "bob", "bob@example.com", "hashed", "member", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: "hashed",
		Role:         models.RoleMember,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == "" {
		t.Error("expected generated ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if !user.IsActive {
		t.Error("new users should be active")
	}
}

// ---------------------------------------------------------------------------
// GetUserWithMemberships
// ---------------------------------------------------------------------------

func TestGetUserWithMemberships_LoadsTeams(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT.*FROM users WHERE id").
		WithArgs("user-1").
		WillReturnRows(sampleUserRow())
	mock.ExpectQuery("SELECT.*FROM team_members").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"team_id", "user_id", "role", "joined_at"}).
			AddRow("team-1", "user-1", "admin", time.Now()).
			AddRow("team-2", "user-1", "member", time.Now()))

	user, err := repo.GetUserWithMemberships(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(user.Memberships) != 2 {
		t.Fatalf("memberships = %d, want 2", len(user.Memberships))
	}
	if !user.MemberOf("team-1") {
		t.Error("expected membership of team-1")
	}
	if got := user.TeamRole("team-1"); got != "admin" {
		t.Errorf("TeamRole(team-1) = %s, want admin", got)
	}
	if got := user.TeamRole("team-3"); got != "" {
		t.Errorf("TeamRole(team-3) = %s, want empty", got)
	}
}

func TestGetUserWithMemberships_UserMissing(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT.*FROM users WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userCols))

	user, err := repo.GetUserWithMemberships(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil, got %v", user)
	}
}

// ---------------------------------------------------------------------------
// ListUsers
// ---------------------------------------------------------------------------

func TestListUsers_ReturnsTotal(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("SELECT.*FROM users.*ORDER BY created_at").
		WithArgs(2, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("user-1", "alice", "alice@example.com", "h", "member", true, time.Now(), time.Now()).
			AddRow("user-2", "bob", "bob@example.com", "h", "admin", true, time.Now(), time.Now()))

	users, total, err := repo.ListUsers(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(users) != 2 {
		t.Errorf("len(users) = %d, want 2", len(users))
	}
}
