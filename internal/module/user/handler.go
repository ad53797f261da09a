package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/middleware"
	"github.com/simp-lee/showroom/internal/pkg"
)

// Handler handles REST API requests for the login exchange, the caller's
// own profile, and admin account management.
type Handler struct {
	svc domain.UserService
}

// NewHandler creates a user handler backed by the given service.
func NewHandler(svc domain.UserService) *Handler {
	return &Handler{svc: svc}
}

// Login handles POST /api/v1/auth/login. The body carries a provider ID
// token; a first login provisions the account.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	u, err := h.svc.Login(c.Request.Context(), req.IDToken)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, u)
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p == nil || p.UserID == uuid.Nil {
		pkg.Error(c, domain.NotFoundFor("user", p.Actor()))
		return
	}

	u, err := h.svc.Get(c.Request.Context(), p.UserID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, u)
}

// UpdateMe handles PUT /api/v1/auth/me.
func (h *Handler) UpdateMe(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p == nil || p.UserID == uuid.Nil {
		pkg.Error(c, domain.NotFoundFor("user", p.Actor()))
		return
	}

	var req UpdateProfileRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	u, err := h.svc.UpdateProfile(c.Request.Context(), p.UserID, req.changes(), middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, u)
}

// Create handles POST /api/v1/users.
func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	created, err := h.svc.Create(c.Request.Context(), req.toModel(), middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.Response{
		Code:    http.StatusCreated,
		Message: "success",
		Data:    created,
	})
}

// Get handles GET /api/v1/users/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, u)
}

// List handles GET /api/v1/users with role and is_active filters.
func (h *Handler) List(c *gin.Context) {
	params, err := pkg.ParseListParams(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	filters := domain.Filters{}
	if role := c.Query("role"); role != "" {
		filters["role"] = domain.Eq(role)
	}
	if c.Query("is_active") != "" {
		filters["is_active"] = domain.Eq(pkg.BoolQuery(c, "is_active"))
	}
	params.Filters = filters

	result, err := h.svc.List(c.Request.Context(), params, middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// UpdateRole handles PUT /api/v1/users/:id/role.
func (h *Handler) UpdateRole(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req UpdateRoleRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	u, err := h.svc.UpdateRole(c.Request.Context(), id, req.Role, middleware.CurrentPrincipal(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, u)
}

// SetActive handles PUT /api/v1/users/:id/activate.
func (h *Handler) SetActive(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req SetActiveRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	u, err := h.svc.SetActive(c.Request.Context(), id, *req.IsActive, middleware.CurrentPrincipal(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, u)
}
