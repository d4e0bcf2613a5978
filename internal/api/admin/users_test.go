package admin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
)

func usersTestRouter(t *testing.T, actor *models.UserWithMemberships) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := repositories.NewUserRepository(db)
	r := sessionRouter(actor)
	r.GET("/users", ListUsersHandler(userRepo))
	r.PATCH("/users/:id/role", ChangeRoleHandler(userRepo))
	return r, mock
}

func TestListUsers(t *testing.T) {
	r, mock := usersTestRouter(t, siteAdmin("admin-1"))

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT.*FROM users").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("user-1", "alice", "alice@example.com", "h", "member", true, time.Now(), time.Now()).
			AddRow("user-2", "bob", "bob@example.com", "h", "admin", true, time.Now(), time.Now()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"total":2`) {
		t.Errorf("body = %s, want total 2", w.Body.String())
	}
}

func TestChangeRole_PromotesMember(t *testing.T) {
	r, mock := usersTestRouter(t, siteAdmin("admin-1"))

	mock.ExpectQuery("SELECT.*FROM users WHERE id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("user-1", "alice", "alice@example.com", "h", "member", true, time.Now(), time.Now()))
	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postJSONMethod(r, http.MethodPatch, "/users/user-1/role", `{"role":"admin"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestChangeRole_InvalidRoleRejected(t *testing.T) {
	r, _ := usersTestRouter(t, siteAdmin("admin-1"))

	w := postJSONMethod(r, http.MethodPatch, "/users/user-1/role", `{"role":"superuser"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestChangeRole_SelfDemotionRejected(t *testing.T) {
	r, mock := usersTestRouter(t, siteAdmin("admin-1"))

	mock.ExpectQuery("SELECT.*FROM users WHERE id").
		WithArgs("admin-1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("admin-1", "root", "root@example.com", "h", "admin", true, time.Now(), time.Now()))

	w := postJSONMethod(r, http.MethodPatch, "/users/admin-1/role", `{"role":"member"}`)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestChangeRole_UnknownUser(t *testing.T) {
	r, mock := usersTestRouter(t, siteAdmin("admin-1"))

	mock.ExpectQuery("SELECT.*FROM users WHERE id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userCols))

	w := postJSONMethod(r, http.MethodPatch, "/users/ghost/role", `{"role":"admin"}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
