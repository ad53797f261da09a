package repository

import "github.com/simp-lee/showroom/internal/domain"

type queryOptions struct {
	includeDeleted bool
	loads          []string
	filters        domain.Filters
	orderBy        string
	skip           int
	limit          int
}

// QueryOption adjusts how a read operation builds its query.
type QueryOption func(*queryOptions)

// IncludeDeleted makes the query return soft-deleted rows as well.
func IncludeDeleted() QueryOption {
	return func(o *queryOptions) { o.includeDeleted = true }
}

// Load requests eager loading of the named relations.
func Load(relations ...string) QueryOption {
	return func(o *queryOptions) { o.loads = append(o.loads, relations...) }
}

// Filter applies the given filter set. Repeated calls merge clause lists.
func Filter(filters domain.Filters) QueryOption {
	return func(o *queryOptions) { o.filters = o.filters.Merge(filters) }
}

// OrderBy sorts by the given column; a leading '-' means descending.
func OrderBy(column string) QueryOption {
	return func(o *queryOptions) { o.orderBy = column }
}

// Skip offsets the result set.
func Skip(n int) QueryOption {
	return func(o *queryOptions) { o.skip = n }
}

// Limit caps the result set size.
func Limit(n int) QueryOption {
	return func(o *queryOptions) { o.limit = n }
}

// FromParams expands caller list parameters into query options.
func FromParams(params domain.ListParams) []QueryOption {
	opts := []QueryOption{
		Filter(params.Filters),
		OrderBy(params.OrderBy),
		Skip(params.Skip),
		Limit(params.Limit),
		Load(params.Load...),
	}
	if params.IncludeDeleted {
		opts = append(opts, IncludeDeleted())
	}
	return opts
}

func applyOptions(opts []QueryOption) queryOptions {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
