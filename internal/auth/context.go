// internal/auth/context.go
//
// Request-scoped principal helpers.
//
// Usage
// -----
//
//	// Attach the caller after the bearer token checks out.
//	ctx = auth.WithPrincipal(ctx, auth.Principal{UserID: 123, Email: "a@b.c"})
//
//	// Downstream code retrieves it.
//	p, ok := auth.FromContext(ctx)   // p.UserID == 123, ok == true
//	id, ok := auth.UserID(ctx)       // 123, true
//
// Notes
// -----
// • The principal is copied from verified token claims.  Handlers that need
//   fresh flags (is_active, is_deleted) must reload the user row.
// • Oxford commas, two spaces after periods.

package auth

import "context"

// principalKey is unexported to avoid context-key collisions.
type principalKey struct{}

// Principal identifies the authenticated caller.
type Principal struct {
	UserID    int64
	Email     string
	Staff     bool
	Superuser bool
}

// WithPrincipal returns a new context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext extracts the principal.  It returns (Principal{}, false) when
// the request is anonymous.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UserID extracts only the caller's id.
func UserID(ctx context.Context) (int64, bool) {
	p, ok := FromContext(ctx)
	return p.UserID, ok
}
