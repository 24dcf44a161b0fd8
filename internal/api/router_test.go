package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/apikit/internal/auth"
	"github.com/yanizio/apikit/internal/pagination"
	"github.com/yanizio/apikit/internal/tasks"
	"github.com/yanizio/apikit/internal/users"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type fixture struct {
	router http.Handler
	mock   sqlmock.Sqlmock
	issuer *auth.Issuer
	queue  *tasks.MemoryQueue
}

func newFixture(t *testing.T, db Pinger) *fixture {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	iss, err := auth.NewIssuer("router-test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	q := tasks.NewMemoryQueue(4)
	h := users.NewHandler(users.NewStore(sqlx.NewDb(raw, "mysql")), pagination.Defaults{}, iss)
	return &fixture{
		router: NewRouter(Deps{DB: db, Users: h, Tasks: tasks.NewHandler(q, tasks.NewRegistry()), Issuer: iss}),
		mock:   mock,
		issuer: iss,
		queue:  q,
	}
}

func newRouter(t *testing.T, db Pinger) http.Handler {
	t.Helper()
	return newFixture(t, db).router
}

func get(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

func TestHealthz(t *testing.T) {
	rec, body := get(t, newRouter(t, pinger{}), http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	if rec.Header().Get("X-Request-ID") == "" || rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("middleware headers missing: %v", rec.Header())
	}

	rec, body = get(t, newRouter(t, pinger{err: errors.New("down")}), http.MethodGet, "/healthz")
	if rec.Code != http.StatusServiceUnavailable || body["success"] != false {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	rec, body := get(t, newRouter(t, pinger{}), http.MethodGet, "/nope")
	if rec.Code != http.StatusNotFound || body["message"] != "Endpoint not found" {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
}

func TestMethodNotAllowedEnvelope(t *testing.T) {
	rec, body := get(t, newRouter(t, pinger{}), http.MethodPut, "/healthz")
	if rec.Code != http.StatusMethodNotAllowed || body["success"] != false {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
}

func TestUsersRequireAuth(t *testing.T) {
	rec, body := get(t, newRouter(t, pinger{}), http.MethodGet, "/api/users/")
	if rec.Code != http.StatusUnauthorized || body["success"] != false {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
}

func TestMetricsExposed(t *testing.T) {
	rec, _ := get(t, newRouter(t, pinger{}), http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTasksStaffOnly(t *testing.T) {
	f := newFixture(t, pinger{})

	rec, _ := get(t, f.router, http.MethodPost, "/api/tasks/")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", rec.Code)
	}

	cols := []string{
		"id", "email", "password_hash", "first_name", "last_name", "is_active",
		"is_staff", "is_superuser", "date_joined", "last_login", "is_deleted",
		"deleted_at", "created_at", "updated_at",
	}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = ? AND is_deleted = FALSE LIMIT 1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "ops@example.com", "", "", "", true,
			true, false, now, nil, false, nil, now, now))

	tok, err := f.issuer.Issue(auth.Principal{UserID: 1, Staff: true})
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/tasks/",
		strings.NewReader(`{"name":"dummy","args":["a","b"]}`))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if f.queue.Len() != 1 {
		t.Fatalf("queue Len = %d, want 1", f.queue.Len())
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
