// internal/tasks/handler.go
//
// HTTP producer for the task queue.
//
// Context
// -------
// Mounted at /api/tasks behind the staff gate.  POST / validates the task
// name against the Registry the workers run, publishes through Enqueue, and
// answers 202 with the queued Message.  GET / lists the registered names so
// operators can see what is available.
//
// Notes
// -----
// • Publishing waits at most publishTimeout on a full in-memory buffer.
// • Oxford commas, two spaces after periods.
package tasks

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/apikit/internal/apperr"
	"github.com/yanizio/apikit/internal/auth"
	"github.com/yanizio/apikit/internal/resource"
	"github.com/yanizio/apikit/internal/response"
	"github.com/yanizio/apikit/internal/validation"
)

const publishTimeout = 5 * time.Second

// Handler serves /api/tasks.
type Handler struct {
	queue    Queue
	registry *Registry
}

// NewHandler wires a Handler.
func NewHandler(q Queue, reg *Registry) *Handler {
	return &Handler{queue: q, registry: reg}
}

// Routes mounts the task routes.  Access control belongs to the caller.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", resource.Serve(h.Names))
	r.Post("/", resource.Serve(h.Enqueue))
	return r
}

// Names lists registered tasks.
func (h *Handler) Names(*http.Request) (response.Response[[]string], error) {
	return response.Success(h.registry.Names(), response.WithMessage(resource.ListMessage)), nil
}

type enqueueRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Args []any  `json:"args"`
}

// Enqueue publishes one task run.
func (h *Handler) Enqueue(r *http.Request) (response.Response[Message], error) {
	var in enqueueRequest
	if err := resource.Decode(r, &in); err != nil {
		return response.Response[Message]{}, err
	}
	if err := validation.Struct(in); err != nil {
		return response.Response[Message]{}, err
	}
	if _, ok := h.registry.Lookup(in.Name); !ok {
		return response.Response[Message]{}, validation.Field("name", "Unknown task \""+in.Name+"\".")
	}

	ctx, cancel := context.WithTimeout(r.Context(), publishTimeout)
	defer cancel()
	m, err := Enqueue(ctx, h.queue, in.Name, in.Args...)
	if err != nil {
		if errors.Is(err, ErrClosed) || ctx.Err() != nil {
			return response.Response[Message]{}, apperr.Wrap(apperr.KindUnavailable, "Task queue unavailable.", err)
		}
		return response.Response[Message]{}, err
	}

	uid, _ := auth.UserID(r.Context())
	zap.L().Info("task enqueued",
		zap.String("task", m.Name),
		zap.String("task_id", m.ID),
		zap.Int64("by_user", uid),
	)
	return response.Success(m,
		response.WithMessage("Task queued"),
		response.WithStatus(http.StatusAccepted),
	), nil
}
