package collection

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/middleware"
	"github.com/simp-lee/showroom/internal/pkg"
)

// Handler handles REST API requests for the collection resource.
type Handler struct {
	svc domain.CollectionService
}

// NewHandler creates a collection handler backed by the given service.
func NewHandler(svc domain.CollectionService) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /api/v1/collections.
func (h *Handler) Create(c *gin.Context) {
	var req CreateCollectionRequest
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

// Get handles GET /api/v1/collections/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	col, err := h.svc.Get(c.Request.Context(), id, pkg.LoadQuery(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, col)
}

// GetBySlug handles GET /api/v1/collections/slug/:slug.
func (h *Handler) GetBySlug(c *gin.Context) {
	col, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, col)
}

// List handles GET /api/v1/collections with season, year, status and
// is_published filters.
func (h *Handler) List(c *gin.Context) {
	params, err := pkg.ParseListParams(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	filters := domain.Filters{}
	if season := c.Query("season"); season != "" {
		filters["season"] = domain.Eq(season)
	}
	if status := c.Query("status"); status != "" {
		filters["status"] = domain.Eq(status)
	}
	if c.Query("year") != "" {
		year, err := pkg.IntQuery(c, "year", 0)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		filters["year"] = domain.Eq(year)
	}
	if c.Query("is_published") != "" {
		filters["is_published"] = domain.Eq(pkg.BoolQuery(c, "is_published"))
	}
	params.Filters = filters
	params.Load = pkg.LoadQuery(c)
	params.IncludeDeleted = pkg.BoolQuery(c, "include_deleted")

	result, err := h.svc.List(c.Request.Context(), params, middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Update handles PUT /api/v1/collections/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req UpdateCollectionRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	col, err := h.svc.Update(c.Request.Context(), id, req.changes(), middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, col)
}

// Delete handles DELETE /api/v1/collections/:id. The hard query flag
// switches from soft delete to physical removal.
func (h *Handler) Delete(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, pkg.BoolQuery(c, "hard"), middleware.Actor(c)); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// Restore handles POST /api/v1/collections/:id/restore.
func (h *Handler) Restore(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	col, err := h.svc.Restore(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, col)
}

// Publish handles POST /api/v1/collections/:id/publish.
func (h *Handler) Publish(c *gin.Context) {
	h.setPublished(c, true)
}

// Unpublish handles POST /api/v1/collections/:id/unpublish.
func (h *Handler) Unpublish(c *gin.Context) {
	h.setPublished(c, false)
}

func (h *Handler) setPublished(c *gin.Context, publish bool) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	col, err := h.svc.SetPublished(c.Request.Context(), id, publish, middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, col)
}

// Featured handles GET /api/v1/collections/featured.
func (h *Handler) Featured(c *gin.Context) {
	limit, err := pkg.IntQuery(c, "limit", 0)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	collections, err := h.svc.Featured(c.Request.Context(), limit)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, collections)
}

// Search handles GET /api/v1/collections/search. Anonymous callers only
// see published collections; authenticated callers may widen the scope
// with published_only=false.
func (h *Handler) Search(c *gin.Context) {
	skip, err := pkg.IntQuery(c, "skip", 0)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	limit, err := pkg.IntQuery(c, "limit", 0)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	publishedOnly := true
	if middleware.CurrentPrincipal(c) != nil && c.Query("published_only") != "" {
		publishedOnly = pkg.BoolQuery(c, "published_only")
	}

	collections, err := h.svc.Search(c.Request.Context(), c.Query("q"), publishedOnly, skip, limit)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, collections)
}
