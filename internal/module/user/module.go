package user

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/middleware"
)

// Module implements the app.Module interface for accounts and the login
// exchange.
type Module struct {
	handler *Handler
}

// NewModule creates the user module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the auth and user routes. Login is public by
// nature; the profile endpoints need an authenticated caller, and account
// management is admin-only.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/login", m.handler.Login)
	auth.GET("/me", middleware.RequireUser(), m.handler.Me)
	auth.PUT("/me", middleware.RequireUser(), m.handler.UpdateMe)

	users := api.Group("/users", middleware.RequireRole(domain.RoleAdmin))
	users.GET("", m.handler.List)
	users.POST("", m.handler.Create)
	users.GET("/:id", m.handler.Get)
	users.PUT("/:id/role", m.handler.UpdateRole)
	users.PUT("/:id/activate", m.handler.SetActive)
}
