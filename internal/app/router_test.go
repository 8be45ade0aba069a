package app

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/salon-reports-api/internal/middleware"
	"github.com/noah-isme/salon-reports-api/internal/models"
	"github.com/noah-isme/salon-reports-api/pkg/config"
)

func newTestContainer(t *testing.T, secret string) (*Container, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{
		Env:       config.EnvDevelopment,
		APIPrefix: "/api/v1",
		JWT:       config.JWTConfig{Secret: "test-secret", Expiration: time.Hour},
		Scheduler: config.SchedulerConfig{TriggerSecret: secret, ClaimEnabled: true},
	}
	c := &Container{Config: cfg, Logger: zap.NewNop(), DB: sqlx.NewDb(db, "sqlmock"), Redis: client}
	c.build()
	return c, mock
}

func TestRouterHealth(t *testing.T) {
	c, _ := newTestContainer(t, "")
	router := c.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterProcessWithNothingDue(t *testing.T) {
	c, mock := newTestContainer(t, "")
	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduled_reports WHERE is_active = TRUE AND next_run_at <= $1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := httptest.NewRecorder()
	c.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scheduled-reports/process", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"processed":0,"results":[]}`, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRouterProcessRequiresSecret(t *testing.T) {
	c, mock := newTestContainer(t, "cron-secret")
	router := c.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scheduled-reports/process", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"unauthorized"}`, rec.Body.String())

	token, _, err := c.Auth.IssueToken("cron", models.RoleService, "")
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduled_reports WHERE is_active = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduled-reports/process", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduled_reports WHERE is_active = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	req = httptest.NewRequest(http.MethodPost, "/api/v1/scheduled-reports/process", nil)
	req.Header.Set(middleware.CronSecretHeader, "cron-secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRouterAdminRoutesRequireToken(t *testing.T) {
	c, _ := newTestContainer(t, "")
	router := c.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scheduled-reports", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := c.Auth.IssueToken("cron", models.RoleService, "")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/scheduled-reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouterTriggerPreflight(t *testing.T) {
	c, _ := newTestContainer(t, "cron-secret")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/scheduled-reports/process", nil)
	req.Header.Set("Origin", "https://scheduler.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	c.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://scheduler.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), middleware.CronSecretHeader)
}
