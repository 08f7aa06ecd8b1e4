package domain

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional query params.
// Nil or non-positive values fall back to page=1, limit=20; limit is capped at 100.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: defaultPageLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, maxPageLimit)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Bounds returns the [lo, hi) slice indices of this page within a result set
// of total items. Pages past the end yield an empty range.
func (p PaginationParams) Bounds(total int) (lo, hi int) {
	lo = min(p.Offset(), total)
	hi = min(lo+p.Limit, total)
	return lo, hi
}

// Page is one page of results plus the size of the full result set.
type Page[T any] struct {
	Items []T
	Total int64
}
