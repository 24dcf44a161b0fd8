// internal/resource/resource.go
//
// Standardized list / create / destroy wrapper.
//
// Context
// -------
// A resource implements Handler: it validates input, talks to its store,
// and returns a raw Outcome.  Standardized wraps that inner handler and
// re-emits each successful outcome as a success envelope with a fixed
// message and status:
//
//	List    → 200 (or the inner status)  "Data retrieved successfully"
//	Create  → 201                        "Resource created successfully"
//	Destroy → 204, payload discarded     "Resource deleted successfully"
//
// Errors from the inner handler pass through untouched.  Only the route
// boundary in Routes turns them into error envelopes.
//
// Notes
// -----
// • Standardized holds no state besides the inner handler; it is safe for
//   concurrent use when the inner handler is.
// • Oxford commas, two spaces after periods.
package resource

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/apikit/internal/response"
)

// Messages used by Standardized.
const (
	ListMessage    = "Data retrieved successfully"
	CreateMessage  = "Resource created successfully"
	DestroyMessage = "Resource deleted successfully"
)

// Outcome is what an inner handler produced.  Status 0 means "default".
// Metadata, when set, is carried into the envelope (e.g. pagination).
type Outcome[T any] struct {
	Status   int
	Data     T
	Metadata map[string]any
}

// Handler is the inner resource behaviour that Standardized decorates.
type Handler[T any] interface {
	List(r *http.Request) (Outcome[[]T], error)
	Create(r *http.Request) (Outcome[T], error)
	Destroy(r *http.Request) (Outcome[T], error)
}

// Standardized re-wraps inner outcomes as envelopes.
type Standardized[T any] struct {
	inner Handler[T]
}

// Wrap returns a Standardized around inner.
func Wrap[T any](inner Handler[T]) *Standardized[T] {
	return &Standardized[T]{inner: inner}
}

// List delegates to the inner handler and wraps its payload.
func (s *Standardized[T]) List(r *http.Request) (response.Response[[]T], error) {
	out, err := s.inner.List(r)
	if err != nil {
		return response.Response[[]T]{}, err
	}
	status := out.Status
	if status == 0 {
		status = http.StatusOK
	}
	return response.Success(out.Data,
		response.WithMessage(ListMessage),
		response.WithStatus(status),
		response.WithMetadata(out.Metadata),
	), nil
}

// Create delegates to the inner handler and answers 201.
func (s *Standardized[T]) Create(r *http.Request) (response.Response[T], error) {
	out, err := s.inner.Create(r)
	if err != nil {
		return response.Response[T]{}, err
	}
	return response.Success(out.Data,
		response.WithMessage(CreateMessage),
		response.WithStatus(http.StatusCreated),
	), nil
}

// Destroy delegates to the inner handler, drops its payload, and answers 204.
func (s *Standardized[T]) Destroy(r *http.Request) (response.Response[any], error) {
	if _, err := s.inner.Destroy(r); err != nil {
		return response.Response[any]{}, err
	}
	return response.Success[any](nil,
		response.WithMessage(DestroyMessage),
		response.WithStatus(http.StatusNoContent),
	), nil
}

// Serve adapts fn to an http.HandlerFunc.  Errors become error envelopes
// through response.WriteError; successes are written as-is.
func Serve[T any](fn func(*http.Request) (response.Response[T], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := fn(r)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.Write(w, resp)
	}
}

// ListHandler, CreateHandler, and DestroyHandler expose each action for
// routers that need per-route middleware.
func (s *Standardized[T]) ListHandler() http.HandlerFunc    { return Serve(s.List) }
func (s *Standardized[T]) CreateHandler() http.HandlerFunc  { return Serve(s.Create) }
func (s *Standardized[T]) DestroyHandler() http.HandlerFunc { return Serve(s.Destroy) }

// Routes mounts GET /, POST /, and DELETE /{id}.  Callers may add more
// routes to the returned router.
func (s *Standardized[T]) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.ListHandler())
	r.Post("/", s.CreateHandler())
	r.Delete("/{id}", s.DestroyHandler())
	return r
}
