// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects industry-standard headers on every response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years + preload)
//   • Content-Security-Policy   –  JSON only, nothing may load or frame it
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// Notes
// -----
// • Headers are set *before* next.ServeHTTP; once a handler calls
//   WriteHeader later additions would be dropped.  Handlers may still
//   override any value.
// • Behind a TLS-terminating proxy HSTS still applies, since clients see
//   the public host as HTTPS.
// • Cache-Control defaults to no-store; envelopes may carry user data.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	const (
		hsts  = "max-age=63072000; includeSubDomains; preload"
		csp   = "default-src 'none'; frame-ancestors 'none'"
		cache = "no-store"
		xfo   = "DENY"
		nosn  = "nosniff"
		refer = "strict-origin-when-cross-origin"
		perm  = "geolocation=(), microphone=(), camera=()"
	)

	defaults := [][2]string{
		{"Strict-Transport-Security", hsts},
		{"Content-Security-Policy", csp},
		{"X-Frame-Options", xfo},
		{"X-Content-Type-Options", nosn},
		{"Referrer-Policy", refer},
		{"Permissions-Policy", perm},
		{"Cache-Control", cache},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range defaults {
			if h.Get(kv[0]) == "" {
				h.Set(kv[0], kv[1])
			}
		}
		next.ServeHTTP(w, r)
	})
}
