package pagination

import (
	"net/http"
	"strconv"
)

// Fallback page size when nothing is configured.
const (
	DefaultPerPage = 20
	DefaultMaxPage = 100
)

// Defaults configure ParseParams.
type Defaults struct {
	PerPage    int
	MaxPerPage int
}

// Params is a parsed page request.
type Params struct {
	Page    int
	PerPage int
}

// ParseParams reads `page` and `per_page` from the query string.  Missing
// or non-numeric values fall back to page 1 and d.PerPage; per_page is
// capped at d.MaxPerPage.  Clamping against the total happens in Paginate.
func ParseParams(r *http.Request, d Defaults) Params {
	if d.PerPage < 1 {
		d.PerPage = DefaultPerPage
	}
	if d.MaxPerPage < 1 {
		d.MaxPerPage = DefaultMaxPage
	}

	q := r.URL.Query()
	p := Params{Page: 1, PerPage: d.PerPage}

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 {
		p.PerPage = v
	}
	if p.PerPage > d.MaxPerPage {
		p.PerPage = d.MaxPerPage
	}
	return p
}
