package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/pkg"
	"github.com/simp-lee/showroom/internal/repository"
	"github.com/simp-lee/showroom/internal/service"
)

var (
	skuPattern       = regexp.MustCompile(`^[A-Z0-9_-]+$`)
	colorCodePattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	currencyPattern  = regexp.MustCompile(`^[A-Z]{3}$`)
)

// detailRelations is everything a product detail response carries.
var detailRelations = []string{"collection", "variants", "images", "specifications", "size_chart"}

// Service implements domain.ProductService on top of the generic pipeline.
// Composite creation bypasses the pipeline because a product persists
// together with its child records in one transaction.
type Service struct {
	base *service.Service[domain.Product]
	repo *Repository
}

var _ domain.ProductService = (*Service)(nil)

// NewService wires the product business rules into the generic hooks.
func NewService(repo *Repository) *Service {
	s := &Service{repo: repo}
	s.base = service.New(repo.Repository, "product", service.Hooks[domain.Product]{
		ValidateUpdate: s.validateUpdate,
		ListFilters:    s.listFilters,
	})
	return s
}

// Create validates and persists a product bundle, then re-reads the product
// with every relation loaded.
func (s *Service) Create(ctx context.Context, b *domain.ProductBundle, actor string) (*domain.Product, error) {
	if err := s.prepareBundle(ctx, b); err != nil {
		return nil, err
	}
	if err := s.repo.CreateBundle(ctx, b, actor); err != nil {
		return nil, err
	}
	return s.GetWithDetails(ctx, b.Product.ID)
}

// BulkCreate validates every bundle up front, including SKU collisions
// inside the batch itself, then persists them atomically.
func (s *Service) BulkCreate(ctx context.Context, bundles []*domain.ProductBundle, actor string) ([]domain.Product, error) {
	productSKUs := make(map[string]int, len(bundles))
	variantSKUs := make(map[string]int)
	for i, b := range bundles {
		if err := s.prepareBundle(ctx, b); err != nil {
			return nil, itemError(err, i)
		}
		if prev, ok := productSKUs[b.Product.SKU]; ok {
			return nil, batchConflict(b.Product.SKU, i, prev)
		}
		productSKUs[b.Product.SKU] = i
		for _, v := range b.Variants {
			if prev, ok := variantSKUs[v.SKU]; ok {
				return nil, batchConflict(v.SKU, i, prev)
			}
			variantSKUs[v.SKU] = i
		}
	}

	if err := s.repo.CreateBundles(ctx, bundles, actor); err != nil {
		return nil, err
	}

	out := make([]domain.Product, len(bundles))
	for i, b := range bundles {
		out[i] = b.Product
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, load []string) (*domain.Product, error) {
	return s.base.Get(ctx, id, load)
}

// GetWithDetails returns the product with collection, variants, images,
// specifications and size chart loaded.
func (s *Service) GetWithDetails(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.base.Get(ctx, id, detailRelations)
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	p, err := s.repo.GetByField(ctx, "sku", sku)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFoundFor("product", sku)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, params domain.ListParams, actor string) (*domain.PageResult[domain.Product], error) {
	return s.base.List(ctx, params, actor)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, changes map[string]any, actor string) (*domain.Product, error) {
	return s.base.Update(ctx, id, changes, actor)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, hard bool, actor string) error {
	return s.base.Delete(ctx, id, hard, actor)
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID, actor string) (*domain.Product, error) {
	return s.base.Restore(ctx, id, actor)
}

// UpdateStatus moves the product to another lifecycle status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status, actor string) (*domain.Product, error) {
	if !domain.ValidProductStatus(status) {
		return nil, domain.Validation("INVALID_STATUS", "unknown product status").With("status", status)
	}
	return s.base.Update(ctx, id, map[string]any{"status": status}, actor)
}

// ToggleFeatured flips the featured flag.
func (s *Service) ToggleFeatured(ctx context.Context, id uuid.UUID, actor string) (*domain.Product, error) {
	current, err := s.base.Get(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	return s.base.Update(ctx, id, map[string]any{"is_featured": !current.IsFeatured}, actor)
}

func (s *Service) Search(ctx context.Context, query, category string, collectionID *uuid.UUID, skip, limit int) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < 2 {
		return nil, domain.Validation("INVALID_SEARCH_QUERY", "search query must be at least 2 characters")
	}
	if category != "" && !domain.ValidProductCategory(category) {
		return nil, domain.Validation("INVALID_CATEGORY", "unknown product category").With("category", category)
	}
	if skip < 0 {
		skip = 0
	}
	return s.repo.Search(ctx, query, category, collectionID, skip, pkg.ClampLimit(limit, pkg.DefaultLimit))
}

// Featured returns active featured products, newest first.
func (s *Service) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.repo.List(ctx,
		repository.Filter(domain.Filters{
			"is_featured": domain.Eq(true),
			"status":      domain.Eq(domain.ProductStatusActive),
		}),
		repository.OrderBy("-created_at"),
		repository.Limit(pkg.ClampLimit(limit, pkg.DefaultLimit)),
	)
}

// ByCollection lists the products of a collection, active ones only unless
// includeInactive is set.
func (s *Service) ByCollection(ctx context.Context, collectionID uuid.UUID, includeInactive bool, skip, limit int) ([]domain.Product, error) {
	exists, err := s.repo.CollectionExists(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFoundFor("collection", collectionID.String())
	}

	filters := domain.Filters{"collection_id": domain.Eq(collectionID)}
	if !includeInactive {
		filters["status"] = domain.Eq(domain.ProductStatusActive)
	}
	if skip < 0 {
		skip = 0
	}
	return s.repo.List(ctx,
		repository.Filter(filters),
		repository.OrderBy("-created_at"),
		repository.Skip(skip),
		repository.Limit(pkg.ClampLimit(limit, pkg.DefaultLimit)),
	)
}

// AddVariant derives the variant SKU from the parent product and persists
// the variant.
func (s *Service) AddVariant(ctx context.Context, productID uuid.UUID, v *domain.ProductVariant, skuSuffix, actor string) (*domain.ProductVariant, error) {
	parent, err := s.base.Get(ctx, productID, nil)
	if err != nil {
		return nil, err
	}

	v.ProductID = parent.ID
	if err := validateVariant(v); err != nil {
		return nil, err
	}
	sku, err := deriveVariantSKU(parent.SKU, skuSuffix)
	if err != nil {
		return nil, err
	}
	taken, err := s.repo.VariantSKUTaken(ctx, sku, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Conflict("SKU_ALREADY_EXISTS", "sku is already in use").With("sku", sku)
	}
	v.SKU = sku

	if err := s.repo.Variants.Create(ctx, v, actor); err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateVariant applies a change set to a variant. A non-nil skuSuffix
// recomputes the variant SKU from the parent product.
func (s *Service) UpdateVariant(ctx context.Context, variantID uuid.UUID, changes map[string]any, skuSuffix *string, actor string) (*domain.ProductVariant, error) {
	current, err := s.repo.Variants.GetByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.NotFoundFor("variant", variantID.String())
	}

	if err := validateVariantChanges(changes); err != nil {
		return nil, err
	}

	if skuSuffix != nil {
		parent, err := s.base.Get(ctx, current.ProductID, nil)
		if err != nil {
			return nil, err
		}
		sku, err := deriveVariantSKU(parent.SKU, *skuSuffix)
		if err != nil {
			return nil, err
		}
		if sku != current.SKU {
			taken, err := s.repo.VariantSKUTaken(ctx, sku, current.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, domain.Conflict("SKU_ALREADY_EXISTS", "sku is already in use").With("sku", sku)
			}
		}
		changes["sku"] = sku
	}

	updated, err := s.repo.Variants.Update(ctx, variantID, changes, actor)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.NotFoundFor("variant", variantID.String())
	}
	return updated, nil
}

// AddImage attaches an image to a product, optionally pinned to one of its
// variants.
func (s *Service) AddImage(ctx context.Context, productID uuid.UUID, img *domain.ProductImage, actor string) (*domain.ProductImage, error) {
	parent, err := s.base.Get(ctx, productID, nil)
	if err != nil {
		return nil, err
	}
	img.ProductID = parent.ID

	if !domain.ValidImageType(img.Type) {
		return nil, domain.Validation("INVALID_IMAGE_TYPE", "unknown image type").With("type", img.Type)
	}
	if img.VariantID != nil {
		v, err := s.repo.Variants.GetByID(ctx, *img.VariantID)
		if err != nil {
			return nil, err
		}
		if v == nil || v.ProductID != parent.ID {
			return nil, domain.Validation("INVALID_VARIANT", "variant does not belong to this product").
				With("variant_id", img.VariantID.String())
		}
	}

	if err := s.repo.Images.Create(ctx, img, actor); err != nil {
		return nil, err
	}
	return img, nil
}

// AddSpecification attaches a specification section to a product.
func (s *Service) AddSpecification(ctx context.Context, productID uuid.UUID, spec *domain.TechnicalSpecification, actor string) (*domain.TechnicalSpecification, error) {
	parent, err := s.base.Get(ctx, productID, nil)
	if err != nil {
		return nil, err
	}
	spec.ProductID = parent.ID

	if err := validateSpecification(spec); err != nil {
		return nil, err
	}
	if err := s.repo.Specs.Create(ctx, spec, actor); err != nil {
		return nil, err
	}
	return spec, nil
}

// AddSizeChart attaches the sizing table to a product. A product holds at
// most one chart.
func (s *Service) AddSizeChart(ctx context.Context, productID uuid.UUID, chart *domain.SizeChart, actor string) (*domain.SizeChart, error) {
	parent, err := s.base.Get(ctx, productID, nil)
	if err != nil {
		return nil, err
	}
	chart.ProductID = parent.ID

	if err := validateSizeChart(chart); err != nil {
		return nil, err
	}
	exists, err := s.repo.SizeChartExists(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Conflict("SIZE_CHART_EXISTS", "product already has a size chart").
			With("product_id", parent.ID.String())
	}

	if err := s.repo.Charts.Create(ctx, chart, actor); err != nil {
		return nil, err
	}
	return chart, nil
}

// Stats feeds the admin dashboard.
func (s *Service) Stats(ctx context.Context) (*domain.ProductStats, error) {
	return s.repo.Stats(ctx)
}

// --- bundle validation ---

// prepareBundle normalizes and validates a bundle, deriving variant SKUs
// and checking uniqueness against existing rows and within the bundle.
func (s *Service) prepareBundle(ctx context.Context, b *domain.ProductBundle) error {
	if err := validateProduct(&b.Product); err != nil {
		return err
	}

	exists, err := s.repo.CollectionExists(ctx, b.Product.CollectionID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.Validation("COLLECTION_NOT_FOUND", "collection does not exist").
			With("collection_id", b.Product.CollectionID.String())
	}

	taken, err := s.repo.SKUTaken(ctx, b.Product.SKU, uuid.Nil)
	if err != nil {
		return err
	}
	if taken {
		return domain.Conflict("SKU_ALREADY_EXISTS", "sku is already in use").With("sku", b.Product.SKU)
	}

	seen := make(map[string]struct{}, len(b.Variants))
	for i := range b.Variants {
		v := &b.Variants[i]
		if err := validateVariant(&v.ProductVariant); err != nil {
			return variantError(err, i)
		}
		sku, err := deriveVariantSKU(b.Product.SKU, v.SKUSuffix)
		if err != nil {
			return variantError(err, i)
		}
		if _, dup := seen[sku]; dup {
			return variantError(domain.Conflict("SKU_ALREADY_EXISTS", "duplicate variant sku").With("sku", sku), i)
		}
		taken, err := s.repo.VariantSKUTaken(ctx, sku, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return variantError(domain.Conflict("SKU_ALREADY_EXISTS", "sku is already in use").With("sku", sku), i)
		}
		seen[sku] = struct{}{}
		v.SKU = sku
	}

	for i := range b.Specifications {
		if err := validateSpecification(&b.Specifications[i]); err != nil {
			return err
		}
	}
	if b.SizeChart != nil {
		if err := validateSizeChart(b.SizeChart); err != nil {
			return err
		}
	}
	return nil
}

// --- hooks ---

func (s *Service) validateUpdate(ctx context.Context, current *domain.Product, changes map[string]any) error {
	if name, ok := stringChange(changes, "name"); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return domain.Validation("NAME_REQUIRED", "product name is required")
		}
		changes["name"] = name
	}
	if category, ok := stringChange(changes, "category"); ok {
		if !domain.ValidProductCategory(category) {
			return domain.Validation("INVALID_CATEGORY", "unknown product category").With("category", category)
		}
	}
	if status, ok := stringChange(changes, "status"); ok {
		if !domain.ValidProductStatus(status) {
			return domain.Validation("INVALID_STATUS", "unknown product status").With("status", status)
		}
	}
	if currency, ok := stringChange(changes, "currency"); ok {
		currency = strings.ToUpper(strings.TrimSpace(currency))
		if !currencyPattern.MatchString(currency) {
			return domain.Validation("INVALID_CURRENCY", "currency must be a 3-letter ISO code").With("currency", currency)
		}
		changes["currency"] = currency
	}

	if raw, ok := stringChange(changes, "sku"); ok {
		sku, err := normalizeSKU(raw)
		if err != nil {
			return err
		}
		if sku != current.SKU {
			taken, err := s.repo.SKUTaken(ctx, sku, current.ID)
			if err != nil {
				return err
			}
			if taken {
				return domain.Conflict("SKU_ALREADY_EXISTS", "sku is already in use").With("sku", sku)
			}
		}
		changes["sku"] = sku
	}

	// Moving a product to another collection requires the target to exist.
	if v, ok := changes["collection_id"]; ok {
		id, ok := v.(uuid.UUID)
		if !ok || id == uuid.Nil {
			return domain.Validation("COLLECTION_REQUIRED", "product collection is required")
		}
		exists, err := s.repo.CollectionExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return domain.Validation("COLLECTION_NOT_FOUND", "collection does not exist").
				With("collection_id", id.String())
		}
	}

	// Prices validate against the merged view of record + changes.
	retail := current.RetailPrice
	if v, ok := decimalChange(changes, "retail_price"); ok {
		retail = v
	}
	wholesale := current.WholesalePrice
	if v, ok := decimalChange(changes, "wholesale_price"); ok {
		wholesale = v
	}
	return validatePrices(wholesale, retail)
}

// listFilters hides soft-deleted rows from anonymous callers.
func (s *Service) listFilters(ctx context.Context, actor string, params *domain.ListParams) error {
	if actor == "" {
		params.IncludeDeleted = false
	}
	return nil
}

// --- validation helpers ---

func validateProduct(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Validation("NAME_REQUIRED", "product name is required")
	}

	sku, err := normalizeSKU(p.SKU)
	if err != nil {
		return err
	}
	p.SKU = sku

	if !domain.ValidProductCategory(p.Category) {
		return domain.Validation("INVALID_CATEGORY", "unknown product category").With("category", p.Category)
	}
	if p.Status == "" {
		p.Status = domain.ProductStatusActive
	}
	if !domain.ValidProductStatus(p.Status) {
		return domain.Validation("INVALID_STATUS", "unknown product status").With("status", p.Status)
	}

	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = "EUR"
	}
	if !currencyPattern.MatchString(p.Currency) {
		return domain.Validation("INVALID_CURRENCY", "currency must be a 3-letter ISO code").With("currency", p.Currency)
	}

	if p.CollectionID == uuid.Nil {
		return domain.Validation("COLLECTION_REQUIRED", "product collection is required")
	}
	return validatePrices(p.WholesalePrice, p.RetailPrice)
}

func normalizeSKU(sku string) (string, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if !skuPattern.MatchString(sku) {
		return "", domain.Validation("INVALID_SKU_FORMAT",
			"sku may only contain letters, digits, hyphens and underscores").With("sku", sku)
	}
	if len(sku) < domain.SKUMinLength || len(sku) > domain.SKUMaxLength {
		return "", domain.Validation("INVALID_SKU_LENGTH",
			fmt.Sprintf("sku must be %d-%d characters", domain.SKUMinLength, domain.SKUMaxLength)).With("sku", sku)
	}
	return sku, nil
}

func deriveVariantSKU(productSKU, suffix string) (string, error) {
	suffix = strings.ToUpper(strings.TrimSpace(suffix))
	if suffix == "" {
		return "", domain.Validation("SKU_SUFFIX_REQUIRED", "variant sku suffix is required")
	}
	return normalizeSKU(productSKU + "-" + suffix)
}

func validateVariant(v *domain.ProductVariant) error {
	v.Name = strings.TrimSpace(v.Name)
	v.Color = strings.TrimSpace(v.Color)
	if v.Name == "" {
		return domain.Validation("NAME_REQUIRED", "variant name is required")
	}
	if v.Color == "" {
		return domain.Validation("COLOR_REQUIRED", "variant color is required")
	}
	if v.ColorCode != "" && !colorCodePattern.MatchString(v.ColorCode) {
		return domain.Validation("INVALID_COLOR_CODE", "color code must be a #RRGGBB hex value").
			With("color_code", v.ColorCode)
	}
	return nil
}

func validateVariantChanges(changes map[string]any) error {
	if name, ok := stringChange(changes, "name"); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return domain.Validation("NAME_REQUIRED", "variant name is required")
		}
		changes["name"] = name
	}
	if color, ok := stringChange(changes, "color"); ok {
		color = strings.TrimSpace(color)
		if color == "" {
			return domain.Validation("COLOR_REQUIRED", "variant color is required")
		}
		changes["color"] = color
	}
	if code, ok := stringChange(changes, "color_code"); ok {
		if code != "" && !colorCodePattern.MatchString(code) {
			return domain.Validation("INVALID_COLOR_CODE", "color code must be a #RRGGBB hex value").
				With("color_code", code)
		}
	}
	return nil
}

func validateSpecification(spec *domain.TechnicalSpecification) error {
	if !domain.ValidSpecificationType(spec.Type) {
		return domain.Validation("INVALID_SPECIFICATION_TYPE", "unknown specification type").With("type", spec.Type)
	}
	spec.Title = strings.TrimSpace(spec.Title)
	if spec.Title == "" {
		return domain.Validation("TITLE_REQUIRED", "specification title is required")
	}
	return nil
}

func validateSizeChart(chart *domain.SizeChart) error {
	if chart.ChartType == "" {
		chart.ChartType = "standard"
	}
	if !domain.ValidSizeChartType(chart.ChartType) {
		return domain.Validation("INVALID_CHART_TYPE", "unknown size chart type").With("chart_type", chart.ChartType)
	}
	chart.MeasurementUnit = strings.ToLower(strings.TrimSpace(chart.MeasurementUnit))
	if chart.MeasurementUnit == "" {
		chart.MeasurementUnit = "inches"
	}
	if chart.MeasurementUnit != "inches" && chart.MeasurementUnit != "cm" {
		return domain.Validation("INVALID_MEASUREMENT_UNIT", "measurement unit must be inches or cm").
			With("measurement_unit", chart.MeasurementUnit)
	}
	return nil
}

func validatePrices(wholesale, retail *decimal.Decimal) error {
	if retail != nil && retail.IsNegative() {
		return domain.Validation("INVALID_RETAIL_PRICE", "retail price must not be negative")
	}
	if wholesale != nil && wholesale.IsNegative() {
		return domain.Validation("INVALID_WHOLESALE_PRICE", "wholesale price must not be negative")
	}
	if wholesale != nil && retail != nil && wholesale.Cmp(*retail) >= 0 {
		return domain.Validation("WHOLESALE_PRICE_TOO_HIGH", "wholesale price must be below retail price")
	}
	return nil
}

func batchConflict(sku string, index, firstIndex int) error {
	return domain.Conflict("SKU_ALREADY_EXISTS", "duplicate sku within batch").
		With("sku", sku).
		With("item_index", index).
		With("first_item_index", firstIndex)
}

// variantError annotates an error with the index of the failing variant.
func variantError(err error, index int) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.With("variant_index", index)
	}
	return err
}

// --- change-set accessors ---

func stringChange(changes map[string]any, key string) (string, bool) {
	v, ok := changes[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func decimalChange(changes map[string]any, key string) (*decimal.Decimal, bool) {
	switch v := changes[key].(type) {
	case decimal.Decimal:
		return &v, true
	case *decimal.Decimal:
		return v, true
	default:
		return nil, false
	}
}
