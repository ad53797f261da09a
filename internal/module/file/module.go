package file

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/middleware"
)

// Module implements the app.Module interface for the file domain.
type Module struct {
	handler *Handler
}

// NewModule creates the file module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("file.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers file routes. Reads are public; uploads require
// an authenticated user, and destructive operations exclude the viewer
// role.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/files")

	g.GET("", m.handler.List)
	g.GET("/search", m.handler.Search)
	g.GET("/:id", m.handler.Get)
	g.GET("/:id/download", m.handler.Download)

	g.POST("/upload", middleware.RequireUser(), m.handler.Upload)
	g.DELETE("/:id", middleware.RequireRole(domain.RoleUser), m.handler.Delete)
	g.POST("/:id/restore", middleware.RequireRole(domain.RoleUser), m.handler.Restore)
}
