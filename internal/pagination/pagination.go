// internal/pagination/pagination.go
//
// Page-number pagination over any countable, sliceable source.
//
// Context
// -------
// List endpoints hand Paginate a Source (a scoped SQL query, an in-memory
// slice, ...) plus the requested page and page size.  Paginate counts the
// source, clamps the page, fetches one slice, optionally transforms each
// item, and returns a success envelope with `metadata.pagination`.
//
// Workflow
// --------
//  1. total = src.Count; total_pages = max(1, ceil(total / per_page)).
//  2. page is clamped into [1, total_pages].  Out-of-range pages are never
//     an error.
//  3. src.Slice(offset, per_page) fetches the page.
//  4. transform (when non-nil) maps each item, e.g. User → PublicUser.
//     Without one, items pass through unchanged and must already be Vs;
//     otherwise Paginate fails with ErrNotAssignable before touching src.
//  5. Metadata is derived from the clamped page.
//
// Notes
// -----
// • Source errors are returned unchanged; no envelope is built.
// • `data` is always a JSON array, never null.
// • Oxford commas, two spaces after periods.
package pagination

import (
	"context"
	"errors"
	"fmt"

	"github.com/yanizio/apikit/internal/metrics"
	"github.com/yanizio/apikit/internal/response"
)

// DefaultMessage is the envelope message for a page of results.
const DefaultMessage = "Data retrieved successfully"

// Source is the collection contract Paginate consumes.
type Source[T any] interface {
	Count(ctx context.Context) (int, error)
	Slice(ctx context.Context, offset, limit int) ([]T, error)
}

// Metadata is nested under `metadata.pagination`.
type Metadata struct {
	TotalItems   int  `json:"total_items"`
	TotalPages   int  `json:"total_pages"`
	CurrentPage  int  `json:"current_page"`
	PerPage      int  `json:"per_page"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
	NextPage     *int `json:"next_page"`
	PreviousPage *int `json:"previous_page"`
	ItemsOnPage  int  `json:"items_on_page"`
}

// MetadataKey is the metadata entry Paginate fills.
const MetadataKey = "pagination"

type options struct {
	message        string
	defaultPerPage int
}

// Option tunes Paginate.
type Option func(*options)

// WithMessage replaces DefaultMessage.
func WithMessage(msg string) Option { return func(o *options) { o.message = msg } }

// WithDefaultPerPage is used when the caller passes perPage < 1.
func WithDefaultPerPage(n int) Option { return func(o *options) { o.defaultPerPage = n } }

// Paginate builds one page of src, mapping items through transform.
func Paginate[T, V any](
	ctx context.Context,
	src Source[T],
	page, perPage int,
	transform func(T) V,
	opts ...Option,
) (response.Response[[]V], error) {
	o := options{message: DefaultMessage, defaultPerPage: DefaultPerPage}
	for _, fn := range opts {
		fn(&o)
	}
	if perPage < 1 {
		perPage = o.defaultPerPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	if transform == nil {
		var zero T
		if _, err := passThrough[T, V](zero); err != nil {
			return response.Response[[]V]{}, err
		}
	}

	total, err := src.Count(ctx)
	if err != nil {
		return response.Response[[]V]{}, err
	}
	totalPages := TotalPages(total, perPage)
	page = Clamp(page, totalPages)

	items, err := src.Slice(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return response.Response[[]V]{}, err
	}

	data := make([]V, 0, len(items))
	for _, it := range items {
		if transform == nil {
			v, err := passThrough[T, V](it)
			if err != nil {
				return response.Response[[]V]{}, err
			}
			data = append(data, v)
			continue
		}
		data = append(data, transform(it))
	}

	meta := Build(total, page, perPage, len(data))
	metrics.PagesServed.Inc()

	return response.Success(data,
		response.WithMessage(o.message),
		response.WithMetadata(map[string]any{MetadataKey: meta}),
	), nil
}

// ErrNotAssignable is returned when Paginate has no transform and the
// source items cannot be used as the result type.
var ErrNotAssignable = errors.New("pagination: item type not assignable to result type")

// passThrough returns it as a V.  A nil interface item becomes the zero V.
func passThrough[T, V any](it T) (V, error) {
	var v V
	if any(it) == nil {
		return v, nil
	}
	v, ok := any(it).(V)
	if !ok {
		return v, fmt.Errorf("%w: %T", ErrNotAssignable, it)
	}
	return v, nil
}

// PaginateItems is Paginate without a transform.
func PaginateItems[T any](
	ctx context.Context,
	src Source[T],
	page, perPage int,
	opts ...Option,
) (response.Response[[]T], error) {
	return Paginate(ctx, src, page, perPage, func(t T) T { return t }, opts...)
}

// TotalPages returns ceil(total/perPage), never less than one.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage < 1 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// Clamp forces page into [1, totalPages].
func Clamp(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Build derives Metadata for an already clamped page.
func Build(total, page, perPage, itemsOnPage int) Metadata {
	totalPages := TotalPages(total, perPage)
	m := Metadata{
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		PerPage:     perPage,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
		ItemsOnPage: itemsOnPage,
	}
	if m.HasNext {
		n := page + 1
		m.NextPage = &n
	}
	if m.HasPrevious {
		p := page - 1
		m.PreviousPage = &p
	}
	return m
}
