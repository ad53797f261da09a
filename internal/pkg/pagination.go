package pkg

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/showroom/internal/domain"
)

const (
	// DefaultLimit is applied when the caller omits the limit parameter.
	DefaultLimit = 20
	// MaxLimit is the largest page size a caller may request.
	MaxLimit = 100
)

// ParseListParams extracts skip, limit and order_by from the request query.
// Omitted values receive defaults; provided values are passed through verbatim
// so the service layer can reject out-of-range requests with a stable reason.
// Non-numeric skip or limit values are rejected here as bad requests.
func ParseListParams(c *gin.Context) (domain.ListParams, error) {
	var params domain.ListParams

	skip, err := IntQuery(c, "skip", 0)
	if err != nil {
		return params, err
	}
	limit, err := IntQuery(c, "limit", DefaultLimit)
	if err != nil {
		return params, err
	}

	params.Skip = skip
	params.Limit = limit
	params.OrderBy = strings.TrimSpace(c.Query("order_by"))
	return params, nil
}

// IntQuery parses the named query parameter as an integer, returning the
// fallback when the parameter is absent.
func IntQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.BadRequest("INVALID_QUERY_PARAM", name+" must be an integer").
			With("param", name).
			With("value", raw)
	}
	return v, nil
}

// BoolQuery reports whether the named query parameter is set to a truthy value.
func BoolQuery(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "t", "true", "yes":
		return true
	}
	return false
}

// ClampLimit normalizes a caller-supplied result size: non-positive values
// fall back to the given default and oversized ones are capped at MaxLimit.
func ClampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
