package product

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/middleware"
	"github.com/simp-lee/showroom/internal/pkg"
)

// Handler handles REST API requests for the product resource and its
// child records.
type Handler struct {
	svc domain.ProductService
}

// NewHandler creates a product handler backed by the given service.
func NewHandler(svc domain.ProductService) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /api/v1/products. The payload may carry variants,
// specification sections and a size chart, stored with the product in one
// transaction.
func (h *Handler) Create(c *gin.Context) {
	var req CreateProductRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	created, err := h.svc.Create(c.Request.Context(), req.toBundle(), middleware.Actor(c))
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

// BulkCreate handles POST /api/v1/products/bulk.
func (h *Handler) BulkCreate(c *gin.Context) {
	var req BulkCreateProductsRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	created, err := h.svc.BulkCreate(c.Request.Context(), req.toBundles(), middleware.Actor(c))
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

// Get handles GET /api/v1/products/:id. Without a load parameter the
// response carries every relation; with one, only the requested relations.
func (h *Handler) Get(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var p *domain.Product
	if load := pkg.LoadQuery(c); len(load) > 0 {
		p, err = h.svc.Get(c.Request.Context(), id, load)
	} else {
		p, err = h.svc.GetWithDetails(c.Request.Context(), id)
	}
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, p)
}

// GetBySKU handles GET /api/v1/products/sku/:sku.
func (h *Handler) GetBySKU(c *gin.Context) {
	p, err := h.svc.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, p)
}

// List handles GET /api/v1/products with category, status, collection,
// featured, currency and price-range filters.
func (h *Handler) List(c *gin.Context) {
	params, err := pkg.ParseListParams(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	filters := domain.Filters{}
	if category := c.Query("category"); category != "" {
		filters["category"] = domain.Eq(category)
	}
	if status := c.Query("status"); status != "" {
		filters["status"] = domain.Eq(status)
	}
	if currency := c.Query("currency"); currency != "" {
		filters["currency"] = domain.Eq(currency)
	}
	if c.Query("collection_id") != "" {
		id, err := uuid.Parse(c.Query("collection_id"))
		if err != nil {
			pkg.Error(c, domain.BadRequest("INVALID_QUERY_PARAM", "collection_id must be a UUID").
				With("param", "collection_id").
				With("value", c.Query("collection_id")))
			return
		}
		filters["collection_id"] = domain.Eq(id)
	}
	if c.Query("is_featured") != "" {
		filters["is_featured"] = domain.Eq(pkg.BoolQuery(c, "is_featured"))
	}
	if clauses, err := priceRange(c); err != nil {
		pkg.Error(c, err)
		return
	} else if len(clauses) > 0 {
		filters["retail_price"] = clauses
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

// Update handles PUT /api/v1/products/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req UpdateProductRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	p, err := h.svc.Update(c.Request.Context(), id, req.changes(), middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, p)
}

// Delete handles DELETE /api/v1/products/:id. The hard query flag switches
// from soft delete to physical removal.
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

// Restore handles POST /api/v1/products/:id/restore.
func (h *Handler) Restore(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	p, err := h.svc.Restore(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, p)
}

// UpdateStatus handles PATCH /api/v1/products/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req UpdateProductStatusRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	p, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, p)
}

// ToggleFeatured handles POST /api/v1/products/:id/feature.
func (h *Handler) ToggleFeatured(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	p, err := h.svc.ToggleFeatured(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, p)
}

// Search handles GET /api/v1/products/search over name, description and
// SKU, optionally narrowed by category and collection.
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

	var collectionID *uuid.UUID
	if raw := c.Query("collection_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			pkg.Error(c, domain.BadRequest("INVALID_QUERY_PARAM", "collection_id must be a UUID").
				With("param", "collection_id").
				With("value", raw))
			return
		}
		collectionID = &id
	}

	products, err := h.svc.Search(c.Request.Context(), c.Query("q"), c.Query("category"), collectionID, skip, limit)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, products)
}

// Featured handles GET /api/v1/products/featured.
func (h *Handler) Featured(c *gin.Context) {
	limit, err := pkg.IntQuery(c, "limit", 0)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	products, err := h.svc.Featured(c.Request.Context(), limit)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, products)
}

// ByCollection handles GET /api/v1/collections/:id/products.
func (h *Handler) ByCollection(c *gin.Context) {
	collectionID, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
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

	products, err := h.svc.ByCollection(c.Request.Context(), collectionID,
		pkg.BoolQuery(c, "include_inactive"), skip, limit)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, products)
}

// AddVariant handles POST /api/v1/products/:id/variants.
func (h *Handler) AddVariant(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req VariantRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	variant := req.toModel()
	created, err := h.svc.AddVariant(c.Request.Context(), id, &variant, req.SKUSuffix, middleware.Actor(c))
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

// UpdateVariant handles PUT /api/v1/products/variants/:variantID.
func (h *Handler) UpdateVariant(c *gin.Context) {
	variantID, err := pkg.UUIDParam(c, "variantID")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req UpdateVariantRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	variant, err := h.svc.UpdateVariant(c.Request.Context(), variantID, req.changes(), req.SKUSuffix, middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, variant)
}

// AddImage handles POST /api/v1/products/:id/images.
func (h *Handler) AddImage(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req ImageRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	img := req.toModel()
	created, err := h.svc.AddImage(c.Request.Context(), id, &img, middleware.Actor(c))
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

// AddSpecification handles POST /api/v1/products/:id/specifications.
func (h *Handler) AddSpecification(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req SpecificationRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	spec := req.toModel()
	created, err := h.svc.AddSpecification(c.Request.Context(), id, &spec, middleware.Actor(c))
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

// AddSizeChart handles POST /api/v1/products/:id/size-chart.
func (h *Handler) AddSizeChart(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req SizeChartRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	chart := req.toModel()
	created, err := h.svc.AddSizeChart(c.Request.Context(), id, &chart, middleware.Actor(c))
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

// priceRange reads min_price and max_price into retail price clauses.
func priceRange(c *gin.Context) ([]domain.FilterClause, error) {
	var clauses []domain.FilterClause
	if raw := c.Query("min_price"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, domain.BadRequest("INVALID_QUERY_PARAM", "min_price must be a number").
				With("param", "min_price").
				With("value", raw)
		}
		clauses = append(clauses, domain.Gte(v)...)
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, domain.BadRequest("INVALID_QUERY_PARAM", "max_price must be a number").
				With("param", "max_price").
				With("value", raw)
		}
		clauses = append(clauses, domain.Lte(v)...)
	}
	return clauses, nil
}
