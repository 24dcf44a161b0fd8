// internal/users/handler.go
//
// HTTP surface for the user resource.
//
// Context
// -------
// Handler is the inner resource.Handler[PublicUser]; resource.Wrap turns
// its outcomes into standard envelopes.  Routes mounts the standardized
// list / create / destroy actions plus the user-specific extras:
//
//	POST   /                 signup                        (anonymous)
//	GET    /                 paginated active users        (any user)
//	GET    /me               caller's own record           (any user)
//	POST   /me/password      change own password           (any user)
//	GET    /{id}             one active user               (any user)
//	GET    /all              paginated, deleted included   (staff)
//	DELETE /{id}             soft delete                   (staff)
//	POST   /{id}/restore     undo soft delete              (staff)
//
// TokenHandler is mounted separately at /api/auth/token.
//
// Notes
// -----
// • Bodies are capped at resource.MaxBody bytes before decoding.
// • Oxford commas, two spaces after periods.
package users

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/apikit/internal/apperr"
	"github.com/yanizio/apikit/internal/auth"
	"github.com/yanizio/apikit/internal/pagination"
	"github.com/yanizio/apikit/internal/record"
	"github.com/yanizio/apikit/internal/resource"
	"github.com/yanizio/apikit/internal/response"
	"github.com/yanizio/apikit/internal/validation"
)

// Handler serves /api/users.
type Handler struct {
	store  *Store
	pages  pagination.Defaults
	issuer *auth.Issuer
}

// NewHandler wires a Handler.  issuer may be nil when TokenHandler is unused.
func NewHandler(store *Store, pages pagination.Defaults, issuer *auth.Issuer) *Handler {
	return &Handler{store: store, pages: pages, issuer: issuer}
}

var _ resource.Handler[PublicUser] = (*Handler)(nil)

// Routes mounts every user route.  Callers must run auth.Authenticate
// upstream so the gates can see the principal.  Gated groups reload the
// caller's row first, so a token outliving its account's rights is refused.
func (h *Handler) Routes() chi.Router {
	res := resource.Wrap[PublicUser](h)

	r := chi.NewRouter()
	r.Post("/", res.CreateHandler())

	r.Group(func(r chi.Router) {
		r.Use(auth.Refresh(h.store.Principal), auth.RequireUser)
		r.Get("/", res.ListHandler())
		r.Get("/me", resource.Serve(h.Me))
		r.Post("/me/password", resource.Serve(h.ChangePassword))
		r.Get("/{id}", resource.Serve(h.Detail))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Refresh(h.store.Principal), auth.RequireStaff)
		r.Get("/all", resource.Serve(h.All))
		r.Delete("/{id}", res.DestroyHandler())
		r.Post("/{id}/restore", resource.Serve(h.Restore))
	})
	return r
}

/*──────────────────────── resource.Handler ────────────────────────────────*/

// List pages through active users.
func (h *Handler) List(r *http.Request) (resource.Outcome[[]PublicUser], error) {
	return h.page(r, h.store.ActiveRecords())
}

type signupRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,strong_password"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// Create validates a signup payload and inserts the user.
func (h *Handler) Create(r *http.Request) (resource.Outcome[PublicUser], error) {
	var in signupRequest
	if err := resource.Decode(r, &in); err != nil {
		return resource.Outcome[PublicUser]{}, err
	}
	if err := validation.Struct(in); err != nil {
		return resource.Outcome[PublicUser]{}, err
	}
	u, err := h.store.Create(r.Context(), NewUser{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		return resource.Outcome[PublicUser]{}, err
	}
	zap.L().Info("user created", zap.Int64("user_id", u.ID))
	return resource.Outcome[PublicUser]{Data: Public(*u)}, nil
}

// Destroy soft-deletes the user named by {id}.
func (h *Handler) Destroy(r *http.Request) (resource.Outcome[PublicUser], error) {
	id, err := idParam(r)
	if err != nil {
		return resource.Outcome[PublicUser]{}, err
	}
	u, err := h.store.SoftDelete(r.Context(), id)
	if err != nil {
		return resource.Outcome[PublicUser]{}, err
	}
	zap.L().Info("user soft-deleted", zap.Int64("user_id", id))
	return resource.Outcome[PublicUser]{Data: Public(*u)}, nil
}

/*────────────────────────────── extras ────────────────────────────────────*/

// Detail returns one active user.
func (h *Handler) Detail(r *http.Request) (response.Response[PublicUser], error) {
	id, err := idParam(r)
	if err != nil {
		return response.Response[PublicUser]{}, err
	}
	u, err := h.store.Get(r.Context(), record.Active, id)
	if err != nil {
		return response.Response[PublicUser]{}, err
	}
	return response.Success(Public(*u), response.WithMessage(resource.ListMessage)), nil
}

// All pages through every user, soft-deleted ones included.
func (h *Handler) All(r *http.Request) (response.Response[[]PublicUser], error) {
	out, err := h.page(r, h.store.AllRecords())
	if err != nil {
		return response.Response[[]PublicUser]{}, err
	}
	return response.Success(out.Data,
		response.WithMessage(resource.ListMessage),
		response.WithMetadata(out.Metadata),
	), nil
}

// Restore clears the soft-delete flag on {id}.
func (h *Handler) Restore(r *http.Request) (response.Response[PublicUser], error) {
	id, err := idParam(r)
	if err != nil {
		return response.Response[PublicUser]{}, err
	}
	u, err := h.store.Restore(r.Context(), id)
	if err != nil {
		return response.Response[PublicUser]{}, err
	}
	zap.L().Info("user restored", zap.Int64("user_id", id))
	return response.Success(Public(*u), response.WithMessage("Resource restored successfully")), nil
}

// Me returns the caller's own record.
func (h *Handler) Me(r *http.Request) (response.Response[PublicUser], error) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		return response.Response[PublicUser]{}, apperr.Unauthorized("")
	}
	u, err := h.store.Get(r.Context(), record.Active, id)
	if err != nil {
		return response.Response[PublicUser]{}, err
	}
	return response.Success(Public(*u)), nil
}

type passwordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// ChangePassword replaces the caller's password.
func (h *Handler) ChangePassword(r *http.Request) (response.Response[any], error) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		return response.Response[any]{}, apperr.Unauthorized("")
	}
	var in passwordRequest
	if err := resource.Decode(r, &in); err != nil {
		return response.Response[any]{}, err
	}
	if err := validation.Struct(in); err != nil {
		return response.Response[any]{}, err
	}
	if err := h.store.ChangePassword(r.Context(), id, in.OldPassword, in.NewPassword); err != nil {
		return response.Response[any]{}, err
	}
	return response.Success[any](nil, response.WithMessage("Password updated successfully")), nil
}

/*────────────────────────────── tokens ────────────────────────────────────*/

type tokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is the payload of a successful login.
type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"`
	User        PublicUser `json:"user"`
}

// Token exchanges credentials for a bearer token.
func (h *Handler) Token(r *http.Request) (response.Response[TokenResponse], error) {
	var in tokenRequest
	if err := resource.Decode(r, &in); err != nil {
		return response.Response[TokenResponse]{}, err
	}
	if err := validation.Struct(in); err != nil {
		return response.Response[TokenResponse]{}, err
	}
	u, err := h.store.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		return response.Response[TokenResponse]{}, err
	}
	token, err := h.issuer.Issue(principalOf(u))
	if err != nil {
		return response.Response[TokenResponse]{}, err
	}
	return response.Success(TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.issuer.TTL().Seconds()),
		User:        Public(*u),
	}, response.WithMessage("Login successful")), nil
}

// Lookup exposes the caller reload for route groups mounted elsewhere.
func (h *Handler) Lookup() auth.Lookup { return h.store.Principal }

// TokenHandler is Token as an http.HandlerFunc.
func (h *Handler) TokenHandler() http.HandlerFunc { return resource.Serve(h.Token) }

/*────────────────────────────── helpers ───────────────────────────────────*/

func (h *Handler) page(r *http.Request, src pagination.Source[User]) (resource.Outcome[[]PublicUser], error) {
	p := pagination.ParseParams(r, h.pages)
	resp, err := pagination.Paginate(r.Context(), src, p.Page, p.PerPage, Public,
		pagination.WithDefaultPerPage(h.pages.PerPage))
	if err != nil {
		return resource.Outcome[[]PublicUser]{}, err
	}
	return resource.Outcome[[]PublicUser]{
		Status:   resp.Status,
		Data:     resp.Body.Data,
		Metadata: resp.Body.Metadata,
	}, nil
}

func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.NotFound("User", raw)
	}
	return id, nil
}
