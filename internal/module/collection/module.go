package collection

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/middleware"
)

// Module implements the app.Module interface for the collection domain.
type Module struct {
	handler *Handler
}

// NewModule creates the collection module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("collection.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers collection routes. Reads are public; writes
// require an authenticated user, and lifecycle operations additionally
// exclude the viewer role.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/collections")

	g.GET("", m.handler.List)
	g.GET("/featured", m.handler.Featured)
	g.GET("/search", m.handler.Search)
	g.GET("/slug/:slug", m.handler.GetBySlug)
	g.GET("/:id", m.handler.Get)

	g.POST("", middleware.RequireUser(), m.handler.Create)
	g.PUT("/:id", middleware.RequireUser(), m.handler.Update)
	g.DELETE("/:id", middleware.RequireRole(domain.RoleUser), m.handler.Delete)
	g.POST("/:id/restore", middleware.RequireRole(domain.RoleUser), m.handler.Restore)
	g.POST("/:id/publish", middleware.RequireRole(domain.RoleUser), m.handler.Publish)
	g.POST("/:id/unpublish", middleware.RequireRole(domain.RoleUser), m.handler.Unpublish)
}
