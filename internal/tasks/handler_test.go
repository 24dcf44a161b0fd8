package tasks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestHandlerEnqueue(t *testing.T) {
	q := NewMemoryQueue(4)
	h := NewHandler(q, NewRegistry()).Routes()

	rec, env := post(t, h, `{"name":"dummy","args":["a","b"]}`)
	if rec.Code != http.StatusAccepted || env["message"] != "Task queued" {
		t.Fatalf("status = %d, body = %v", rec.Code, env)
	}
	data := env["data"].(map[string]any)
	if data["id"] == "" || data["name"] != DummyName {
		t.Fatalf("data = %v", data)
	}
	if q.Len() != 1 {
		t.Fatalf("Len = %d, want 1", q.Len())
	}
}

func TestHandlerRejectsUnknownTask(t *testing.T) {
	q := NewMemoryQueue(4)
	h := NewHandler(q, NewRegistry()).Routes()

	rec, env := post(t, h, `{"name":"nope"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %v", rec.Code, env)
	}
	details := env["error"].(map[string]any)["details"].(map[string]any)
	if _, ok := details["name"]; !ok {
		t.Fatalf("details = %v", details)
	}
	if q.Len() != 0 {
		t.Fatalf("Len = %d, want 0", q.Len())
	}
}

func TestHandlerClosedQueue(t *testing.T) {
	q := NewMemoryQueue(1)
	_ = q.Close()
	h := NewHandler(q, NewRegistry()).Routes()

	rec, env := post(t, h, `{"name":"dummy","args":[1,2]}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, body = %v", rec.Code, env)
	}
}

func TestHandlerNames(t *testing.T) {
	h := NewHandler(NewMemoryQueue(1), NewRegistry()).Routes()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"dummy"`) {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
