package domain

import "math"

// ListParams carries the caller-controlled parts of a listing request.
// OrderBy names a column, with a leading '-' for descending order.
type ListParams struct {
	Skip           int
	Limit          int
	OrderBy        string
	Filters        Filters
	Load           []string
	IncludeDeleted bool
}

// PageResult is the wire shape for paginated listings.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Skip       int   `json:"skip"`
	Limit      int   `json:"limit"`
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPage assembles a PageResult from one page of items and the total
// matching count. limit must be positive; list validation upstream
// guarantees it.
func NewPage[T any](items []T, total int64, skip, limit int) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:      items,
		Total:      total,
		Skip:       skip,
		Limit:      limit,
		Page:       skip/limit + 1,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		HasNext:    int64(skip+limit) < total,
		HasPrev:    skip > 0,
	}
}
