package plugin

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/skills-hub/skills-hub/internal/auth"
	"github.com/skills-hub/skills-hub/internal/db/models"
	"github.com/skills-hub/skills-hub/internal/db/repositories"
	"github.com/skills-hub/skills-hub/internal/middleware"
	"github.com/skills-hub/skills-hub/internal/policy"
	"github.com/skills-hub/skills-hub/internal/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var skillCols = []string{"id", "name", "display_name", "description", "tags", "visibility", "team_id", "author_id", "is_published", "created_at", "updated_at", "version"}
var versionCols = []string{"id", "skill_id", "version", "content", "metadata", "changelog", "created_by", "created_at"}

// pluginRouter builds the machine routes with a fixed machine principal
func pluginRouter(t *testing.T, policyName string) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	svc := services.NewResolutionService(
		repositories.NewSkillRepository(db),
		repositories.NewSubscriptionRepository(sqlxDB),
		repositories.NewUsageRepository(sqlxDB),
		policyName,
	)

	user := &models.UserWithMemberships{User: models.User{ID: "user-1", Role: models.RoleMember}}
	key := &models.APIKey{ID: "key-1", UserID: "user-1", Scopes: []string{models.ScopeRead}}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, auth.NewMachinePrincipal(user, key))
		c.Next()
	})
	r.GET("/catalog", CatalogHandler(svc))
	r.POST("/resolve", ResolveHandler(svc))
	r.GET("/skills/:name/raw", RawHandler(svc))
	return r, mock
}

func TestCatalog_ReturnsSkills(t *testing.T) {
	r, mock := pluginRouter(t, policy.PolicyOpen)

	mock.ExpectQuery("SELECT COUNT.*FROM skills s").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT.*FROM skills s").
		WillReturnRows(sqlmock.NewRows(skillCols).
			AddRow("skill-1", "code-review", "Code Review", "reviews code", "{golang}", "public",
				nil, "author-1", true, time.Now(), time.Now(), "2.1.0"))
	mock.ExpectExec("INSERT INTO skill_usage_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `"name":"code-review"`) || !strings.Contains(body, `"version":"2.1.0"`) {
		t.Errorf("body = %s, want catalog item", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("catalog usage entry missing: %v", err)
	}
}

func TestResolve_EmptyBatchIs400(t *testing.T) {
	r, mock := pluginRouter(t, policy.PolicyOpen)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/resolve", strings.NewReader(`{"skills":[]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("rejected batch touched the database: %v", err)
	}
}

func TestResolve_MissingBodyIs400(t *testing.T) {
	r, _ := pluginRouter(t, policy.PolicyOpen)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/resolve", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRaw_UnknownSkillIs404(t *testing.T) {
	r, mock := pluginRouter(t, policy.PolicyOpen)

	mock.ExpectQuery("SELECT.*FROM skills s.*WHERE s.name").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(skillCols))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/skills/ghost/raw", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRaw_PolicyDenialIs403(t *testing.T) {
	r, mock := pluginRouter(t, policy.PolicySubscribed)

	// Published public skill, but the key owner holds no subscription.
	mock.ExpectQuery("SELECT.*FROM skill_subscriptions").
		WillReturnRows(sqlmock.NewRows([]string{"skill_id"}))
	mock.ExpectQuery("SELECT.*FROM skills s.*WHERE s.name").
		WithArgs("code-review").
		WillReturnRows(sqlmock.NewRows(skillCols).
			AddRow("skill-1", "code-review", "Code Review", nil, "{golang}", "public",
				nil, "author-1", true, time.Now(), time.Now(), "1.0.0"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/skills/code-review/raw", nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 (body %s)", w.Code, w.Body.String())
	}
}

func TestRaw_Success(t *testing.T) {
	r, mock := pluginRouter(t, policy.PolicyOpen)

	mock.ExpectQuery("SELECT.*FROM skills s.*WHERE s.name").
		WithArgs("code-review").
		WillReturnRows(sqlmock.NewRows(skillCols).
			AddRow("skill-1", "code-review", "Code Review", nil, "{golang}", "public",
				nil, "author-1", true, time.Now(), time.Now(), "1.0.0"))
	mock.ExpectQuery("SELECT.*FROM skill_versions").
		WillReturnRows(sqlmock.NewRows(versionCols).
			AddRow("ver-1", "skill-1", "1.0.0", "# Code Review\n", []byte(`{}`), nil, "author-1", time.Now()))
	mock.ExpectExec("INSERT INTO skill_usage_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/skills/code-review/raw", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"content":"# Code Review\n"`) {
		t.Errorf("body = %s, want raw content", w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("raw usage entry missing: %v", err)
	}
}
