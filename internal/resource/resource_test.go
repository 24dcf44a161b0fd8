// internal/resource/resource_test.go
//
// Unit-tests for the Standardized wrapper.
//
// fakeHandler ── minimal Handler implementation with injectable outcomes and
// errors, so the wrapper is exercised without any store.

package resource

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/apikit/internal/apperr"
	"github.com/yanizio/apikit/internal/response"
)

type item struct {
	Name string `json:"name"`
}

type fakeHandler struct {
	list      Outcome[[]item]
	created   Outcome[item]
	err       error
	destroyed bool
}

func (f *fakeHandler) List(*http.Request) (Outcome[[]item], error) { return f.list, f.err }
func (f *fakeHandler) Create(*http.Request) (Outcome[item], error) { return f.created, f.err }
func (f *fakeHandler) Destroy(*http.Request) (Outcome[item], error) {
	if f.err != nil {
		return Outcome[item]{}, f.err
	}
	f.destroyed = true
	return Outcome[item]{Data: item{Name: "discarded"}}, nil
}

func TestStandardizedList(t *testing.T) {
	inner := &fakeHandler{list: Outcome[[]item]{Data: []item{{"a"}, {"b"}}}}
	resp, err := Wrap[item](inner).List(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusOK || resp.Body.Message != ListMessage {
		t.Fatalf("resp = %+v", resp)
	}
	if len(resp.Body.Data) != 2 || resp.Body.Data[1].Name != "b" {
		t.Fatalf("data = %+v", resp.Body.Data)
	}
}

func TestStandardizedListCarriesStatusAndMetadata(t *testing.T) {
	inner := &fakeHandler{list: Outcome[[]item]{
		Status:   http.StatusPartialContent,
		Metadata: map[string]any{"pagination": "x"},
	}}
	resp, _ := Wrap[item](inner).List(httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Status != http.StatusPartialContent || resp.Body.Metadata["pagination"] != "x" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestStandardizedCreate(t *testing.T) {
	inner := &fakeHandler{created: Outcome[item]{Status: http.StatusOK, Data: item{"new"}}}
	resp, err := Wrap[item](inner).Create(httptest.NewRequest(http.MethodPost, "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusCreated || resp.Body.Message != CreateMessage || resp.Body.Data.Name != "new" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestStandardizedDestroyDiscardsPayload(t *testing.T) {
	inner := &fakeHandler{}
	resp, err := Wrap[item](inner).Destroy(httptest.NewRequest(http.MethodDelete, "/1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !inner.destroyed {
		t.Fatal("inner Destroy not called")
	}
	if resp.Status != http.StatusNoContent || resp.Body.Message != DestroyMessage || resp.Body.Data != nil {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestStandardizedPropagatesErrors(t *testing.T) {
	want := apperr.NotFound("Item", "1")
	s := Wrap[item](&fakeHandler{err: want})
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, err := s.List(req); err != want {
		t.Fatalf("List err = %v", err)
	}
	if _, err := s.Create(req); err != want {
		t.Fatalf("Create err = %v", err)
	}
	if _, err := s.Destroy(req); err != want {
		t.Fatalf("Destroy err = %v", err)
	}
}

func TestRoutes(t *testing.T) {
	inner := &fakeHandler{
		list:    Outcome[[]item]{Data: []item{{"a"}}},
		created: Outcome[item]{Data: item{"c"}},
	}
	h := Wrap[item](inner).Routes()

	tests := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodPost, "/", http.StatusCreated},
		{http.MethodDelete, "/7", http.StatusNoContent},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
		if rr.Code != tt.status {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, rr.Code, tt.status)
		}
	}
}

func TestRoutesTranslateErrors(t *testing.T) {
	h := Wrap[item](&fakeHandler{err: apperr.Forbidden("")}).Routes()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
	var env response.Envelope[any]
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Success || env.Error == nil || env.Error.Code != response.CodeForbidden {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Message != response.DefaultForbiddenMessage {
		t.Fatalf("message = %q", env.Message)
	}
}
