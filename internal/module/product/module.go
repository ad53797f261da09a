package product

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/middleware"
)

// Module implements the app.Module interface for the product domain.
type Module struct {
	handler *Handler
}

// NewModule creates the product module. Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("product.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers product routes. Reads are public; writes
// require an authenticated user, and lifecycle operations additionally
// exclude the viewer role. The collection-scoped listing hangs off the
// collections tree.
func (m *Module) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/products")

	g.GET("", m.handler.List)
	g.GET("/featured", m.handler.Featured)
	g.GET("/search", m.handler.Search)
	g.GET("/sku/:sku", m.handler.GetBySKU)
	g.GET("/:id", m.handler.Get)

	g.POST("", middleware.RequireUser(), m.handler.Create)
	g.POST("/bulk", middleware.RequireUser(), m.handler.BulkCreate)
	g.PUT("/:id", middleware.RequireUser(), m.handler.Update)
	g.DELETE("/:id", middleware.RequireRole(domain.RoleUser), m.handler.Delete)
	g.POST("/:id/restore", middleware.RequireRole(domain.RoleUser), m.handler.Restore)
	g.PATCH("/:id/status", middleware.RequireRole(domain.RoleUser), m.handler.UpdateStatus)
	g.POST("/:id/feature", middleware.RequireRole(domain.RoleUser), m.handler.ToggleFeatured)

	g.POST("/:id/variants", middleware.RequireUser(), m.handler.AddVariant)
	g.PUT("/variants/:variantID", middleware.RequireUser(), m.handler.UpdateVariant)
	g.POST("/:id/images", middleware.RequireUser(), m.handler.AddImage)
	g.POST("/:id/specifications", middleware.RequireUser(), m.handler.AddSpecification)
	g.POST("/:id/size-chart", middleware.RequireUser(), m.handler.AddSizeChart)

	api.GET("/collections/:id/products", m.handler.ByCollection)
}
