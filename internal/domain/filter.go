package domain

// FilterOp enumerates the operators a filter clause can apply.
type FilterOp string

const (
	FilterEq    FilterOp = "eq"
	FilterIn    FilterOp = "in"
	FilterGte   FilterOp = "gte"
	FilterLte   FilterOp = "lte"
	FilterGt    FilterOp = "gt"
	FilterLt    FilterOp = "lt"
	FilterLike  FilterOp = "like"
	FilterILike FilterOp = "ilike"
)

// FilterClause is one condition on one column. Clauses listed for the
// same column combine with AND, so a gte and an lte clause together form
// a range.
type FilterClause struct {
	Op    FilterOp
	Value any
}

// Filters maps column names to the clauses applied to them. Column names
// must be declared filterable on the repository that receives them;
// undeclared names are rejected with a validation error.
type Filters map[string][]FilterClause

// Merge combines f and extra into a new Filters value. Clauses in extra
// are appended after clauses already present for the same column. Either
// receiver may be nil.
func (f Filters) Merge(extra Filters) Filters {
	merged := make(Filters, len(f)+len(extra))
	for col, clauses := range f {
		merged[col] = append([]FilterClause(nil), clauses...)
	}
	for col, clauses := range extra {
		merged[col] = append(merged[col], clauses...)
	}
	return merged
}

// Eq matches rows whose column equals v. Eq(nil) matches NULL.
func Eq(v any) []FilterClause { return []FilterClause{{Op: FilterEq, Value: v}} }

// In matches rows whose column is one of vs.
func In(vs ...any) []FilterClause { return []FilterClause{{Op: FilterIn, Value: vs}} }

// Gte matches rows whose column is greater than or equal to v.
func Gte(v any) []FilterClause { return []FilterClause{{Op: FilterGte, Value: v}} }

// Lte matches rows whose column is less than or equal to v.
func Lte(v any) []FilterClause { return []FilterClause{{Op: FilterLte, Value: v}} }

// Gt matches rows whose column is strictly greater than v.
func Gt(v any) []FilterClause { return []FilterClause{{Op: FilterGt, Value: v}} }

// Lt matches rows whose column is strictly less than v.
func Lt(v any) []FilterClause { return []FilterClause{{Op: FilterLt, Value: v}} }

// Like matches rows whose column matches the SQL LIKE pattern v. The
// caller supplies any wildcards.
func Like(pattern string) []FilterClause {
	return []FilterClause{{Op: FilterLike, Value: pattern}}
}

// ILike is Like with case folded on both sides, portable across SQLite
// and PostgreSQL.
func ILike(pattern string) []FilterClause {
	return []FilterClause{{Op: FilterILike, Value: pattern}}
}

// Between matches rows whose column lies in the inclusive range [lo, hi].
func Between(lo, hi any) []FilterClause {
	return []FilterClause{{Op: FilterGte, Value: lo}, {Op: FilterLte, Value: hi}}
}
