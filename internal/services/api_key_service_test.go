package services

import (
	"context"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
)

func newAPIKeyService(t *testing.T) (*APIKeyService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAPIKeyService(repositories.NewAPIKeyRepository(db), nil), mock
}

// ---------------------------------------------------------------------------
// CreateKey
// ---------------------------------------------------------------------------

func TestCreateKey_DefaultsToDenyAllTagScope(t *testing.T) {
	svc, mock := newAPIKeyService(t)
	mock.ExpectExec("INSERT INTO api_keys").
		WithArgs(sqlmock.AnyArg(), "user-1", "ci", sqlmock.AnyArg(), nil,
			sqlmock.AnyArg(), "{}", true, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.UserWithMemberships{User: models.User{ID: "user-1"}}
	key, rawKey, err := svc.CreateKey(context.Background(), user, CreateKeyInput{Name: "ci"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(rawKey, "skh_") {
		t.Errorf("raw key = %q, want skh_ prefix", rawKey)
	}
	if key.AllowedTags == nil || len(key.AllowedTags) != 0 {
		t.Errorf("AllowedTags = %v, want stored empty deny-all list", key.AllowedTags)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateKey_RejectsUnknownScope(t *testing.T) {
	svc, _ := newAPIKeyService(t)
	user := &models.UserWithMemberships{User: models.User{ID: "user-1"}}
	_, _, err := svc.CreateKey(context.Background(), user, CreateKeyInput{
		Name:   "ci",
		Scopes: []string{"root"},
	})
	if err == nil || HTTPStatus(err) != 400 {
		t.Fatalf("expected invalid-scope error, got %v", err)
	}
}
