package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product statuses.
const (
	ProductStatusActive       = "active"
	ProductStatusDiscontinued = "discontinued"
	ProductStatusComingSoon   = "coming_soon"
)

// ProductStatuses lists the accepted product statuses.
var ProductStatuses = []string{
	ProductStatusActive,
	ProductStatusDiscontinued,
	ProductStatusComingSoon,
}

// ProductCategories lists the accepted product categories.
var ProductCategories = []string{"bikini", "one-piece", "accessory", "cover-up"}

// SKU length bounds.
const (
	SKUMinLength = 3
	SKUMaxLength = 50
)

// Product is a sellable item belonging to a collection.
type Product struct {
	Model
	Name                   string           `gorm:"size:100;not null;index" json:"name"`
	SKU                    string           `gorm:"size:50;uniqueIndex;not null" json:"sku"`
	Category               string           `gorm:"size:50;not null;index" json:"category"`
	Description            string           `gorm:"type:text" json:"description,omitempty"`
	ShortDescription       string           `gorm:"size:500" json:"short_description,omitempty"`
	CollectionID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"collection_id"`
	WholesalePrice         *decimal.Decimal `gorm:"type:decimal(10,2)" json:"wholesale_price,omitempty"`
	RetailPrice            *decimal.Decimal `gorm:"type:decimal(10,2)" json:"retail_price,omitempty"`
	Currency               string           `gorm:"size:3;not null;default:EUR" json:"currency"`
	MaterialComposition    string           `gorm:"type:text" json:"material_composition,omitempty"`
	SustainabilityFeatures []string         `gorm:"serializer:json" json:"sustainability_features,omitempty"`
	CareInstructions       []string         `gorm:"serializer:json" json:"care_instructions,omitempty"`
	Features               []string         `gorm:"serializer:json" json:"features,omitempty"`
	FitNotes               string           `gorm:"type:text" json:"fit_notes,omitempty"`
	Status                 string           `gorm:"size:20;not null;default:active;index" json:"status"`
	IsFeatured             bool             `gorm:"not null;default:false;index" json:"is_featured"`
	SEOTitle               string           `gorm:"size:200" json:"seo_title,omitempty"`
	SEODescription         string           `gorm:"size:500" json:"seo_description,omitempty"`
	ExtraData              map[string]any   `gorm:"serializer:json" json:"extra_data,omitempty"`

	Collection     *Collection              `gorm:"foreignKey:CollectionID" json:"collection,omitempty"`
	Variants       []ProductVariant         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Images         []ProductImage           `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Specifications []TechnicalSpecification `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"specifications,omitempty"`
	SizeChart      *SizeChart               `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"size_chart,omitempty"`
}

// ProductVariant is a color/style variation of a product. Its SKU is the
// parent SKU plus a per-variant suffix.
type ProductVariant struct {
	Model
	ProductID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id"`
	Name            string           `gorm:"size:100;not null" json:"name"`
	Color           string           `gorm:"size:50;not null;index" json:"color"`
	ColorCode       string           `gorm:"size:7" json:"color_code,omitempty"`
	SKU             string           `gorm:"size:50;uniqueIndex;not null" json:"sku"`
	IsAvailable     bool             `gorm:"not null;default:true;index" json:"is_available"`
	AvailableSizes  []string         `gorm:"serializer:json" json:"available_sizes,omitempty"`
	PriceAdjustment *decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_adjustment,omitempty"`
	SortOrder       int              `gorm:"default:0" json:"sort_order"`
	ExtraData       map[string]any   `gorm:"serializer:json" json:"extra_data,omitempty"`
}

// Product image types.
var ProductImageTypes = []string{"main", "detail", "lifestyle", "thumbnail"}

// ProductImage is a display image for a product or one of its variants.
type ProductImage struct {
	Model
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	VariantID *uuid.UUID `gorm:"type:uuid;index" json:"variant_id,omitempty"`
	URL       string     `gorm:"size:500;not null" json:"url"`
	Alt       string     `gorm:"size:200" json:"alt,omitempty"`
	Type      string     `gorm:"size:20;not null;index" json:"type"`
	SortOrder int        `gorm:"default:0" json:"sort_order"`
	FileSize  int64      `json:"file_size,omitempty"`
	Width     int        `json:"width,omitempty"`
	Height    int        `json:"height,omitempty"`
	Format    string     `gorm:"size:10" json:"format,omitempty"`
}

// Technical specification section types.
var SpecificationTypes = []string{"material", "construction", "care", "sizing", "sustainability"}

// TechnicalSpecification is one expandable specification section of a
// product detail page.
type TechnicalSpecification struct {
	Model
	ProductID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Type                string         `gorm:"size:30;not null;index" json:"type"`
	Title               string         `gorm:"size:100;not null" json:"title"`
	Content             map[string]any `gorm:"serializer:json" json:"content"`
	SortOrder           int            `gorm:"default:0" json:"sort_order"`
	IsExpandable        bool           `gorm:"default:true" json:"is_expandable"`
	IsExpandedByDefault bool           `gorm:"default:false" json:"is_expanded_by_default"`
}

// Size chart types.
var SizeChartTypes = []string{"standard", "plus_size", "kids", "maternity"}

// SizeChartRow is one size with its regional equivalents and measurements,
// e.g. {"size": "S", "uk": "8", "eu": "36", "us": "4", "bust": "34"}.
type SizeChartRow map[string]string

// SizeChart holds the sizing table of a product. One chart per product.
type SizeChart struct {
	Model
	ProductID       uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"product_id"`
	Name            string         `gorm:"size:100" json:"name,omitempty"`
	ChartType       string         `gorm:"size:20;default:standard" json:"chart_type"`
	Sizes           []SizeChartRow `gorm:"serializer:json" json:"sizes"`
	MeasurementUnit string         `gorm:"size:10;default:inches" json:"measurement_unit"`
}

// ProductBundle is the composite creation payload: the product plus child
// records persisted with it in a single transaction.
type ProductBundle struct {
	Product        Product
	Variants       []BundleVariant
	Specifications []TechnicalSpecification
	SizeChart      *SizeChart
}

// BundleVariant is a variant inside a creation bundle. Its SKU is derived
// from the product SKU plus SKUSuffix once the product SKU is normalized.
type BundleVariant struct {
	ProductVariant
	SKUSuffix string
}

// ValidProductStatus reports whether s is a known product status.
func ValidProductStatus(s string) bool {
	return contains(ProductStatuses, s)
}

// ValidProductCategory reports whether c is a known product category.
func ValidProductCategory(c string) bool {
	return contains(ProductCategories, c)
}

// ValidImageType reports whether t is a known product image type.
func ValidImageType(t string) bool {
	return contains(ProductImageTypes, t)
}

// ValidSpecificationType reports whether t is a known specification type.
func ValidSpecificationType(t string) bool {
	return contains(SpecificationTypes, t)
}

// ValidSizeChartType reports whether t is a known size chart type.
func ValidSizeChartType(t string) bool {
	return contains(SizeChartTypes, t)
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// ProductService defines the business logic interface for products and
// their child records.
type ProductService interface {
	Create(ctx context.Context, bundle *ProductBundle, actor string) (*Product, error)
	Get(ctx context.Context, id uuid.UUID, load []string) (*Product, error)
	GetWithDetails(ctx context.Context, id uuid.UUID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	List(ctx context.Context, params ListParams, actor string) (*PageResult[Product], error)
	Update(ctx context.Context, id uuid.UUID, changes map[string]any, actor string) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID, hard bool, actor string) error
	Restore(ctx context.Context, id uuid.UUID, actor string) (*Product, error)
	BulkCreate(ctx context.Context, bundles []*ProductBundle, actor string) ([]Product, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, actor string) (*Product, error)
	ToggleFeatured(ctx context.Context, id uuid.UUID, actor string) (*Product, error)
	Search(ctx context.Context, query, category string, collectionID *uuid.UUID, skip, limit int) ([]Product, error)
	Featured(ctx context.Context, limit int) ([]Product, error)
	ByCollection(ctx context.Context, collectionID uuid.UUID, includeInactive bool, skip, limit int) ([]Product, error)
	AddVariant(ctx context.Context, productID uuid.UUID, v *ProductVariant, skuSuffix, actor string) (*ProductVariant, error)
	UpdateVariant(ctx context.Context, variantID uuid.UUID, changes map[string]any, skuSuffix *string, actor string) (*ProductVariant, error)
	AddImage(ctx context.Context, productID uuid.UUID, img *ProductImage, actor string) (*ProductImage, error)
	AddSpecification(ctx context.Context, productID uuid.UUID, spec *TechnicalSpecification, actor string) (*TechnicalSpecification, error)
	AddSizeChart(ctx context.Context, productID uuid.UUID, chart *SizeChart, actor string) (*SizeChart, error)
}
