package pkg

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/showroom/internal/domain"
)

// UUIDParam parses the named path parameter as a UUID.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domain.BadRequest("INVALID_ID", name+" must be a valid UUID").
			With("param", name).
			With("value", c.Param(name))
	}
	return id, nil
}

// LoadQuery splits the comma-separated "load" query parameter into relation
// names. Unknown names are ignored downstream, so no validation happens here.
func LoadQuery(c *gin.Context) []string {
	raw := strings.TrimSpace(c.Query("load"))
	if raw == "" {
		return nil
	}
	var loads []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			loads = append(loads, part)
		}
	}
	return loads
}
