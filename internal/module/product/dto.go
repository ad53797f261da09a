package product

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simp-lee/showroom/internal/domain"
)

// CreateProductRequest is the composite creation payload: the product plus
// optional variants, specification sections and a size chart, persisted
// together.
type CreateProductRequest struct {
	Name                   string                 `json:"name" binding:"required,min=2,max=100"`
	SKU                    string                 `json:"sku" binding:"required,max=50"`
	Category               string                 `json:"category" binding:"required,oneof=bikini one-piece accessory cover-up"`
	Description            string                 `json:"description"`
	ShortDescription       string                 `json:"short_description" binding:"omitempty,max=500"`
	CollectionID           uuid.UUID              `json:"collection_id" binding:"required"`
	WholesalePrice         *decimal.Decimal       `json:"wholesale_price"`
	RetailPrice            *decimal.Decimal       `json:"retail_price"`
	Currency               string                 `json:"currency" binding:"omitempty,len=3"`
	MaterialComposition    string                 `json:"material_composition"`
	SustainabilityFeatures []string               `json:"sustainability_features"`
	CareInstructions       []string               `json:"care_instructions"`
	Features               []string               `json:"features"`
	FitNotes               string                 `json:"fit_notes"`
	Status                 string                 `json:"status" binding:"omitempty,oneof=active discontinued coming_soon"`
	IsFeatured             bool                   `json:"is_featured"`
	SEOTitle               string                 `json:"seo_title" binding:"omitempty,max=200"`
	SEODescription         string                 `json:"seo_description" binding:"omitempty,max=500"`
	ExtraData              map[string]any         `json:"extra_data"`
	Notes                  string                 `json:"notes"`
	Variants               []VariantRequest       `json:"variants" binding:"omitempty,dive"`
	Specifications         []SpecificationRequest `json:"specifications" binding:"omitempty,dive"`
	SizeChart              *SizeChartRequest      `json:"size_chart"`
}

func (r *CreateProductRequest) toBundle() *domain.ProductBundle {
	b := &domain.ProductBundle{
		Product: domain.Product{
			Name:                   r.Name,
			SKU:                    r.SKU,
			Category:               r.Category,
			Description:            r.Description,
			ShortDescription:       r.ShortDescription,
			CollectionID:           r.CollectionID,
			WholesalePrice:         r.WholesalePrice,
			RetailPrice:            r.RetailPrice,
			Currency:               r.Currency,
			MaterialComposition:    r.MaterialComposition,
			SustainabilityFeatures: r.SustainabilityFeatures,
			CareInstructions:       r.CareInstructions,
			Features:               r.Features,
			FitNotes:               r.FitNotes,
			Status:                 r.Status,
			IsFeatured:             r.IsFeatured,
			SEOTitle:               r.SEOTitle,
			SEODescription:         r.SEODescription,
			ExtraData:              r.ExtraData,
			Model:                  domain.Model{Notes: r.Notes},
		},
	}
	for _, v := range r.Variants {
		b.Variants = append(b.Variants, domain.BundleVariant{
			ProductVariant: v.toModel(),
			SKUSuffix:      v.SKUSuffix,
		})
	}
	for _, sp := range r.Specifications {
		b.Specifications = append(b.Specifications, sp.toModel())
	}
	if r.SizeChart != nil {
		chart := r.SizeChart.toModel()
		b.SizeChart = &chart
	}
	return b
}

// BulkCreateProductsRequest wraps a batch of composite creation payloads.
type BulkCreateProductsRequest struct {
	Products []CreateProductRequest `json:"products" binding:"required,min=1,dive"`
}

func (r *BulkCreateProductsRequest) toBundles() []*domain.ProductBundle {
	bundles := make([]*domain.ProductBundle, len(r.Products))
	for i := range r.Products {
		bundles[i] = r.Products[i].toBundle()
	}
	return bundles
}

// UpdateProductRequest is the partial-update payload. Status changes go
// through the status endpoint and the featured flag through the feature
// endpoint.
type UpdateProductRequest struct {
	Name                   *string          `json:"name" binding:"omitempty,min=2,max=100"`
	SKU                    *string          `json:"sku" binding:"omitempty,max=50"`
	Category               *string          `json:"category" binding:"omitempty,oneof=bikini one-piece accessory cover-up"`
	Description            *string          `json:"description"`
	ShortDescription       *string          `json:"short_description" binding:"omitempty,max=500"`
	CollectionID           *uuid.UUID       `json:"collection_id"`
	WholesalePrice         *decimal.Decimal `json:"wholesale_price"`
	RetailPrice            *decimal.Decimal `json:"retail_price"`
	Currency               *string          `json:"currency" binding:"omitempty,len=3"`
	MaterialComposition    *string          `json:"material_composition"`
	SustainabilityFeatures []string         `json:"sustainability_features"`
	CareInstructions       []string         `json:"care_instructions"`
	Features               []string         `json:"features"`
	FitNotes               *string          `json:"fit_notes"`
	SEOTitle               *string          `json:"seo_title" binding:"omitempty,max=200"`
	SEODescription         *string          `json:"seo_description" binding:"omitempty,max=500"`
	ExtraData              map[string]any   `json:"extra_data"`
	Notes                  *string          `json:"notes"`
}

// changes flattens the request into a column change set.
func (r *UpdateProductRequest) changes() map[string]any {
	out := make(map[string]any)
	if r.Name != nil {
		out["name"] = *r.Name
	}
	if r.SKU != nil {
		out["sku"] = *r.SKU
	}
	if r.Category != nil {
		out["category"] = *r.Category
	}
	if r.Description != nil {
		out["description"] = *r.Description
	}
	if r.ShortDescription != nil {
		out["short_description"] = *r.ShortDescription
	}
	if r.CollectionID != nil {
		out["collection_id"] = *r.CollectionID
	}
	if r.WholesalePrice != nil {
		out["wholesale_price"] = *r.WholesalePrice
	}
	if r.RetailPrice != nil {
		out["retail_price"] = *r.RetailPrice
	}
	if r.Currency != nil {
		out["currency"] = *r.Currency
	}
	if r.MaterialComposition != nil {
		out["material_composition"] = *r.MaterialComposition
	}
	if r.SustainabilityFeatures != nil {
		out["sustainability_features"] = r.SustainabilityFeatures
	}
	if r.CareInstructions != nil {
		out["care_instructions"] = r.CareInstructions
	}
	if r.Features != nil {
		out["features"] = r.Features
	}
	if r.FitNotes != nil {
		out["fit_notes"] = *r.FitNotes
	}
	if r.SEOTitle != nil {
		out["seo_title"] = *r.SEOTitle
	}
	if r.SEODescription != nil {
		out["seo_description"] = *r.SEODescription
	}
	if r.ExtraData != nil {
		out["extra_data"] = r.ExtraData
	}
	if r.Notes != nil {
		out["notes"] = *r.Notes
	}
	return out
}

// UpdateProductStatusRequest moves a product to another lifecycle status.
type UpdateProductStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// VariantRequest describes a product variant. The stored SKU is derived
// from the parent product SKU and the suffix.
type VariantRequest struct {
	Name            string           `json:"name" binding:"required,max=100"`
	Color           string           `json:"color" binding:"required,max=50"`
	ColorCode       string           `json:"color_code" binding:"omitempty,max=7"`
	SKUSuffix       string           `json:"sku_suffix" binding:"required,max=20"`
	IsAvailable     *bool            `json:"is_available"`
	AvailableSizes  []string         `json:"available_sizes"`
	PriceAdjustment *decimal.Decimal `json:"price_adjustment"`
	SortOrder       int              `json:"sort_order"`
	ExtraData       map[string]any   `json:"extra_data"`
	Notes           string           `json:"notes"`
}

func (r *VariantRequest) toModel() domain.ProductVariant {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	return domain.ProductVariant{
		Name:            r.Name,
		Color:           r.Color,
		ColorCode:       r.ColorCode,
		IsAvailable:     available,
		AvailableSizes:  r.AvailableSizes,
		PriceAdjustment: r.PriceAdjustment,
		SortOrder:       r.SortOrder,
		ExtraData:       r.ExtraData,
		Model:           domain.Model{Notes: r.Notes},
	}
}

// UpdateVariantRequest is the partial-update payload for a variant. A
// non-nil SKUSuffix recomputes the stored SKU.
type UpdateVariantRequest struct {
	Name            *string          `json:"name" binding:"omitempty,max=100"`
	Color           *string          `json:"color" binding:"omitempty,max=50"`
	ColorCode       *string          `json:"color_code" binding:"omitempty,max=7"`
	SKUSuffix       *string          `json:"sku_suffix" binding:"omitempty,max=20"`
	IsAvailable     *bool            `json:"is_available"`
	AvailableSizes  []string         `json:"available_sizes"`
	PriceAdjustment *decimal.Decimal `json:"price_adjustment"`
	SortOrder       *int             `json:"sort_order"`
	ExtraData       map[string]any   `json:"extra_data"`
	Notes           *string          `json:"notes"`
}

func (r *UpdateVariantRequest) changes() map[string]any {
	out := make(map[string]any)
	if r.Name != nil {
		out["name"] = *r.Name
	}
	if r.Color != nil {
		out["color"] = *r.Color
	}
	if r.ColorCode != nil {
		out["color_code"] = *r.ColorCode
	}
	if r.IsAvailable != nil {
		out["is_available"] = *r.IsAvailable
	}
	if r.AvailableSizes != nil {
		out["available_sizes"] = r.AvailableSizes
	}
	if r.PriceAdjustment != nil {
		out["price_adjustment"] = *r.PriceAdjustment
	}
	if r.SortOrder != nil {
		out["sort_order"] = *r.SortOrder
	}
	if r.ExtraData != nil {
		out["extra_data"] = r.ExtraData
	}
	if r.Notes != nil {
		out["notes"] = *r.Notes
	}
	return out
}

// ImageRequest attaches a display image to a product, optionally pinned to
// one of its variants.
type ImageRequest struct {
	URL       string     `json:"url" binding:"required,max=500"`
	Alt       string     `json:"alt" binding:"omitempty,max=200"`
	Type      string     `json:"type" binding:"required,oneof=main detail lifestyle thumbnail"`
	VariantID *uuid.UUID `json:"variant_id"`
	SortOrder int        `json:"sort_order"`
	FileSize  int64      `json:"file_size"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Format    string     `json:"format" binding:"omitempty,max=10"`
}

func (r *ImageRequest) toModel() domain.ProductImage {
	return domain.ProductImage{
		URL:       r.URL,
		Alt:       r.Alt,
		Type:      r.Type,
		VariantID: r.VariantID,
		SortOrder: r.SortOrder,
		FileSize:  r.FileSize,
		Width:     r.Width,
		Height:    r.Height,
		Format:    r.Format,
	}
}

// SpecificationRequest describes one expandable specification section.
type SpecificationRequest struct {
	Type                string         `json:"type" binding:"required,oneof=material construction care sizing sustainability"`
	Title               string         `json:"title" binding:"required,max=100"`
	Content             map[string]any `json:"content" binding:"required"`
	SortOrder           int            `json:"sort_order"`
	IsExpandable        *bool          `json:"is_expandable"`
	IsExpandedByDefault bool           `json:"is_expanded_by_default"`
}

func (r *SpecificationRequest) toModel() domain.TechnicalSpecification {
	expandable := true
	if r.IsExpandable != nil {
		expandable = *r.IsExpandable
	}
	return domain.TechnicalSpecification{
		Type:                r.Type,
		Title:               r.Title,
		Content:             r.Content,
		SortOrder:           r.SortOrder,
		IsExpandable:        expandable,
		IsExpandedByDefault: r.IsExpandedByDefault,
	}
}

// SizeChartRequest describes the sizing table of a product.
type SizeChartRequest struct {
	Name            string                `json:"name" binding:"omitempty,max=100"`
	ChartType       string                `json:"chart_type" binding:"omitempty,oneof=standard plus_size kids maternity"`
	Sizes           []domain.SizeChartRow `json:"sizes" binding:"required,min=1"`
	MeasurementUnit string                `json:"measurement_unit" binding:"omitempty,oneof=inches cm"`
	Notes           string                `json:"notes"`
}

func (r *SizeChartRequest) toModel() domain.SizeChart {
	return domain.SizeChart{
		Name:            r.Name,
		ChartType:       r.ChartType,
		Sizes:           r.Sizes,
		MeasurementUnit: r.MeasurementUnit,
		Model:           domain.Model{Notes: r.Notes},
	}
}
