// internal/api/router.go
//
// Root HTTP handler.
//
// Route map
// ---------
//
//	GET  /healthz           database ping, 200 or 503 envelope
//	GET  /metrics           Prometheus exposition
//	POST /api/auth/token    email + password → bearer token
//	*    /api/users/...     user resource (see users.Handler.Routes)
//	*    /api/tasks/...     staff task producer (see tasks.Handler.Routes)
//
// Middleware order, outermost first: request logging, panic recovery,
// security headers, optional HTTPS redirect.  Bearer authentication runs
// only under /api.
//
// Unknown routes and methods still answer with an error envelope so
// clients can rely on a single response shape.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/apikit/internal/auth"
	"github.com/yanizio/apikit/internal/middleware"
	"github.com/yanizio/apikit/internal/response"
	"github.com/yanizio/apikit/internal/tasks"
	"github.com/yanizio/apikit/internal/users"
)

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators NewRouter wires together.
type Deps struct {
	DB         Pinger
	Users      *users.Handler
	Tasks      *tasks.Handler
	Issuer     *auth.Issuer
	ForceHTTPS bool
}

const healthTimeout = 2 * time.Second

// NewRouter builds the root handler.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Logging,
		middleware.Recover,
		middleware.Security,
		middleware.ForceHTTPS(d.ForceHTTPS),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Write(w, response.NotFound("Endpoint", ""))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Write(w, response.Error(
			response.WithMessage("Method not allowed"),
			response.WithStatus(http.StatusMethodNotAllowed),
		))
	})

	r.Get("/healthz", health(d.DB))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Authenticate(d.Issuer))
		r.Post("/auth/token", d.Users.TokenHandler())
		r.Mount("/users", d.Users.Routes())
		if d.Tasks != nil {
			r.Group(func(r chi.Router) {
				r.Use(auth.Refresh(d.Users.Lookup()), auth.RequireStaff)
				r.Mount("/tasks", d.Tasks.Routes())
			})
		}
	})
	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			response.Write(w, response.Error(
				response.WithMessage("Database unavailable"),
				response.WithStatus(http.StatusServiceUnavailable),
			))
			return
		}
		response.Write(w, response.Success(map[string]string{"status": "ok"}))
	}
}
