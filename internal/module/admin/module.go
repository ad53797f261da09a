package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/middleware"
)

// Module implements the app.Module interface for the admin surface.
type Module struct {
	handler *Handler
}

// NewModule creates the admin module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("admin.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the admin routes. The whole group is
// admin-only, service keys included: a key acts as an admin and may
// manage keys.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
	g.GET("/dashboard", m.handler.Dashboard)
	g.GET("/stats/users", m.handler.UserStats)

	g.POST("/service-keys", m.handler.CreateKey)
	g.GET("/service-keys", m.handler.ListKeys)
	g.DELETE("/service-keys/:id", m.handler.RevokeKey)
}
