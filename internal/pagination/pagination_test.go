package pagination

import (
	"context"
	"errors"
	"net/http/httptest"
	"reflect"
	"strconv"
	"testing"
)

func numbers(n int) SliceSource[int] {
	s := make(SliceSource[int], n)
	for i := range s {
		s[i] = i + 1
	}
	return s
}

func meta(t *testing.T, md map[string]any) Metadata {
	t.Helper()
	m, ok := md[MetadataKey].(Metadata)
	if !ok {
		t.Fatalf("metadata[%q] = %#v", MetadataKey, md[MetadataKey])
	}
	return m
}

func TestPaginateEmptyCollection(t *testing.T) {
	for _, page := range []int{-3, 0, 1, 2, 50} {
		resp, err := PaginateItems(context.Background(), numbers(0), page, 10)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		m := meta(t, resp.Body.Metadata)
		if m.TotalPages != 1 || m.CurrentPage != 1 || m.HasNext || m.HasPrevious {
			t.Errorf("page %d: metadata = %+v", page, m)
		}
		if m.NextPage != nil || m.PreviousPage != nil {
			t.Errorf("page %d: next/prev should be nil", page)
		}
		if resp.Body.Data == nil || len(resp.Body.Data) != 0 {
			t.Errorf("page %d: data = %#v, want empty non-nil", page, resp.Body.Data)
		}
	}
}

func TestPaginateLastPage(t *testing.T) {
	resp, err := PaginateItems(context.Background(), numbers(25), 3, 10)
	if err != nil {
		t.Fatal(err)
	}
	m := meta(t, resp.Body.Metadata)

	if len(resp.Body.Data) != 5 || m.ItemsOnPage != 5 {
		t.Fatalf("items = %d / %d, want 5", len(resp.Body.Data), m.ItemsOnPage)
	}
	if m.HasNext || !m.HasPrevious {
		t.Fatalf("has_next=%v has_previous=%v", m.HasNext, m.HasPrevious)
	}
	if m.NextPage != nil {
		t.Fatalf("next_page = %d, want nil", *m.NextPage)
	}
	if m.PreviousPage == nil || *m.PreviousPage != 2 {
		t.Fatalf("previous_page = %v, want 2", m.PreviousPage)
	}
	if m.TotalItems != 25 || m.TotalPages != 3 || m.PerPage != 10 {
		t.Fatalf("metadata = %+v", m)
	}
	if !reflect.DeepEqual(resp.Body.Data, []int{21, 22, 23, 24, 25}) {
		t.Fatalf("data = %v", resp.Body.Data)
	}
}

func TestPaginateMiddlePage(t *testing.T) {
	resp, _ := PaginateItems(context.Background(), numbers(25), 2, 10)
	m := meta(t, resp.Body.Metadata)
	if !m.HasNext || !m.HasPrevious || *m.NextPage != 3 || *m.PreviousPage != 1 {
		t.Fatalf("metadata = %+v", m)
	}
	if resp.Body.Data[0] != 11 {
		t.Fatalf("first item = %d, want 11", resp.Body.Data[0])
	}
}

func TestPaginateClampsBeyondRange(t *testing.T) {
	ctx := context.Background()
	last, _ := PaginateItems(ctx, numbers(25), 3, 10)
	beyond, _ := PaginateItems(ctx, numbers(25), 99, 10)

	if !reflect.DeepEqual(last.Body, beyond.Body) {
		t.Fatalf("page 99 = %+v, page 3 = %+v", beyond.Body, last.Body)
	}
}

func TestPaginateTransform(t *testing.T) {
	resp, err := Paginate(context.Background(), numbers(3), 1, 2,
		func(n int) string { return "#" + strconv.Itoa(n) },
		WithMessage("Numbers"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(resp.Body.Data, []string{"#1", "#2"}) {
		t.Fatalf("data = %v", resp.Body.Data)
	}
	if resp.Body.Message != "Numbers" || !resp.Body.Success {
		t.Fatalf("body = %+v", resp.Body)
	}
}

func TestPaginateNilTransform(t *testing.T) {
	resp, err := Paginate[int, any](context.Background(), numbers(3), 1, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(resp.Body.Data, []any{1, 2, 3}) {
		t.Fatalf("data = %v", resp.Body.Data)
	}

	_, err = Paginate[int, int64](context.Background(), numbers(3), 1, 10, nil)
	if !errors.Is(err, ErrNotAssignable) {
		t.Fatalf("err = %v, want ErrNotAssignable", err)
	}
}

func TestPaginateDefaultPerPage(t *testing.T) {
	resp, _ := PaginateItems(context.Background(), numbers(30), 1, 0, WithDefaultPerPage(7))
	if m := meta(t, resp.Body.Metadata); m.PerPage != 7 || m.TotalPages != 5 {
		t.Fatalf("metadata = %+v", m)
	}
}

type failingSource struct{ err error }

func (f failingSource) Count(context.Context) (int, error) { return 0, f.err }
func (f failingSource) Slice(context.Context, int, int) ([]int, error) {
	return nil, f.err
}

func TestPaginateSourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := PaginateItems[int](context.Background(), failingSource{boom}, 1, 10)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestParseParams(t *testing.T) {
	d := Defaults{PerPage: 10, MaxPerPage: 50}
	tests := []struct {
		query        string
		page, perPag int
	}{
		{"", 1, 10},
		{"?page=3", 3, 10},
		{"?page=abc&per_page=xyz", 1, 10},
		{"?page=-2&per_page=0", 1, 10},
		{"?per_page=500", 1, 50},
		{"?page=2&per_page=25", 2, 25},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/users"+tt.query, nil)
		got := ParseParams(r, d)
		if got.Page != tt.page || got.PerPage != tt.perPag {
			t.Errorf("%q: got %+v, want page=%d per_page=%d", tt.query, got, tt.page, tt.perPag)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct{ total, per, want int }{
		{0, 10, 1}, {1, 10, 1}, {10, 10, 1}, {11, 10, 2}, {25, 10, 3},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.per); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.per, got, tt.want)
		}
	}
}
