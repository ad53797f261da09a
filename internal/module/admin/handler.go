package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/middleware"
	"github.com/simp-lee/showroom/internal/pkg"
)

// Handler handles REST API requests for the admin dashboard and service
// key management.
type Handler struct {
	svc  domain.AdminService
	keys domain.ServiceKeyService
}

// NewHandler creates an admin handler backed by the given services.
func NewHandler(svc domain.AdminService, keys domain.ServiceKeyService) *Handler {
	return &Handler{svc: svc, keys: keys}
}

// Dashboard handles GET /api/v1/admin/dashboard.
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, stats)
}

// UserStats handles GET /api/v1/admin/stats/users.
func (h *Handler) UserStats(c *gin.Context) {
	stats, err := h.svc.UserStats(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, stats)
}

// CreateKey handles POST /api/v1/admin/service-keys. The response carries
// the full secret; it is not recoverable afterwards.
func (h *Handler) CreateKey(c *gin.Context) {
	var req CreateKeyRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	key, secret, err := h.keys.Create(c.Request.Context(), req.Name, middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.Response{
		Code:    http.StatusCreated,
		Message: "success",
		Data:    CreatedKeyResponse{Key: key, Secret: secret},
	})
}

// ListKeys handles GET /api/v1/admin/service-keys.
func (h *Handler) ListKeys(c *gin.Context) {
	keys, err := h.keys.List(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, keys)
}

// RevokeKey handles DELETE /api/v1/admin/service-keys/:id.
func (h *Handler) RevokeKey(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.keys.Revoke(c.Request.Context(), id, middleware.Actor(c)); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}
