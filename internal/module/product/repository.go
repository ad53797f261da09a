package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/pkg"
	"github.com/simp-lee/showroom/internal/repository"
)

// Repository bundles the product repository with repositories for its
// child record types and the cross-table queries the service needs.
type Repository struct {
	*repository.Repository[domain.Product]

	Variants *repository.Repository[domain.ProductVariant]
	Images   *repository.Repository[domain.ProductImage]
	Specs    *repository.Repository[domain.TechnicalSpecification]
	Charts   *repository.Repository[domain.SizeChart]
}

// NewRepository declares the query surface of the product tables.
func NewRepository(db *gorm.DB) (*Repository, error) {
	base, err := repository.New[domain.Product](db, repository.Config{
		SoftDelete: true,
		Filterable: []string{"name", "sku", "category", "status", "collection_id", "is_featured",
			"currency", "retail_price", "wholesale_price", "created_at"},
		Sortable: []string{"name", "sku", "category", "status", "retail_price", "created_at", "updated_at"},
		Relations: []repository.Relation{
			{Name: "collection", Field: "Collection", Single: true},
			{Name: "variants", Field: "Variants", Order: "sort_order ASC"},
			{Name: "images", Field: "Images", Order: "sort_order ASC"},
			{Name: "specifications", Field: "Specifications", Order: "sort_order ASC"},
			{Name: "size_chart", Field: "SizeChart"},
		},
	})
	if err != nil {
		return nil, err
	}

	variants, err := repository.New[domain.ProductVariant](db, repository.Config{
		SoftDelete: true,
		Filterable: []string{"product_id", "sku", "color", "is_available"},
		Sortable:   []string{"sort_order", "created_at"},
	})
	if err != nil {
		return nil, err
	}
	images, err := repository.New[domain.ProductImage](db, repository.Config{
		SoftDelete: true,
		Filterable: []string{"product_id", "variant_id", "type"},
		Sortable:   []string{"sort_order", "created_at"},
	})
	if err != nil {
		return nil, err
	}
	specs, err := repository.New[domain.TechnicalSpecification](db, repository.Config{
		SoftDelete: true,
		Filterable: []string{"product_id", "type"},
		Sortable:   []string{"sort_order", "created_at"},
	})
	if err != nil {
		return nil, err
	}
	charts, err := repository.New[domain.SizeChart](db, repository.Config{
		SoftDelete: true,
		Filterable: []string{"product_id", "chart_type"},
	})
	if err != nil {
		return nil, err
	}

	return &Repository{
		Repository: base,
		Variants:   variants,
		Images:     images,
		Specs:      specs,
		Charts:     charts,
	}, nil
}

// SKUTaken reports whether any product row, live or soft-deleted, already
// holds the SKU.
func (r *Repository) SKUTaken(ctx context.Context, sku string, exclude uuid.UUID) (bool, error) {
	return r.skuTaken(ctx, &domain.Product{}, sku, exclude)
}

// VariantSKUTaken is SKUTaken over the variants table.
func (r *Repository) VariantSKUTaken(ctx context.Context, sku string, exclude uuid.UUID) (bool, error) {
	return r.skuTaken(ctx, &domain.ProductVariant{}, sku, exclude)
}

func (r *Repository) skuTaken(ctx context.Context, model any, sku string, exclude uuid.UUID) (bool, error) {
	db := r.DB().WithContext(ctx).Model(model).Where("sku = ?", sku)
	if exclude != uuid.Nil {
		db = db.Where("id <> ?", exclude)
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, domain.Internal("database error", err)
	}
	return count > 0, nil
}

// CollectionExists reports whether a live collection with the id exists.
func (r *Repository) CollectionExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.DB().WithContext(ctx).Model(&domain.Collection{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Count(&count).Error
	if err != nil {
		return false, domain.Internal("database error", err)
	}
	return count > 0, nil
}

// SizeChartExists reports whether the product already has a size chart.
// Soft-deleted charts count because the unique index spans them.
func (r *Repository) SizeChartExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB().WithContext(ctx).Model(&domain.SizeChart{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	if err != nil {
		return false, domain.Internal("database error", err)
	}
	return count > 0, nil
}

// CreateBundle persists a product with its variants, specifications and
// size chart in one transaction.
func (r *Repository) CreateBundle(ctx context.Context, b *domain.ProductBundle, actor string) error {
	return pkg.WithTx(ctx, r.DB(), func(tx *gorm.DB) error {
		return r.createBundle(ctx, tx, b, actor)
	})
}

// CreateBundles persists several bundles atomically. The returned error
// carries the index of the failing bundle when one fails.
func (r *Repository) CreateBundles(ctx context.Context, bundles []*domain.ProductBundle, actor string) error {
	return pkg.WithTx(ctx, r.DB(), func(tx *gorm.DB) error {
		for i, b := range bundles {
			if err := r.createBundle(ctx, tx, b, actor); err != nil {
				return itemError(err, i)
			}
		}
		return nil
	})
}

func (r *Repository) createBundle(ctx context.Context, tx *gorm.DB, b *domain.ProductBundle, actor string) error {
	if err := r.WithTx(tx).Create(ctx, &b.Product, actor); err != nil {
		return err
	}

	variants := r.Variants.WithTx(tx)
	for i := range b.Variants {
		b.Variants[i].ProductID = b.Product.ID
		if err := variants.Create(ctx, &b.Variants[i].ProductVariant, actor); err != nil {
			return err
		}
	}

	specs := r.Specs.WithTx(tx)
	for i := range b.Specifications {
		b.Specifications[i].ProductID = b.Product.ID
		if err := specs.Create(ctx, &b.Specifications[i], actor); err != nil {
			return err
		}
	}

	if b.SizeChart != nil {
		b.SizeChart.ProductID = b.Product.ID
		if err := r.Charts.WithTx(tx).Create(ctx, b.SizeChart, actor); err != nil {
			return err
		}
	}
	return nil
}

// Search matches name, description or SKU case-insensitively, optionally
// narrowed by category and collection.
func (r *Repository) Search(ctx context.Context, query, category string, collectionID *uuid.UUID, skip, limit int) ([]domain.Product, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	db := r.DB().WithContext(ctx).
		Where("is_deleted = ?", false).
		Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sku) LIKE ?)", pattern, pattern, pattern)
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if collectionID != nil {
		db = db.Where("collection_id = ?", *collectionID)
	}
	db = db.Order("created_at DESC")
	if skip > 0 {
		db = db.Offset(skip)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var products []domain.Product
	if err := db.Find(&products).Error; err != nil {
		return nil, domain.Internal("database error", err)
	}
	return products, nil
}

// Stats aggregates product counts for the admin dashboard.
func (r *Repository) Stats(ctx context.Context) (*domain.ProductStats, error) {
	stats := &domain.ProductStats{
		ByStatus:   make(map[string]int64),
		ByCategory: make(map[string]int64),
	}

	var err error
	if stats.Total, err = r.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Featured, err = r.Count(ctx, repository.Filter(domain.Filters{"is_featured": domain.Eq(true)})); err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, "status", stats.ByStatus); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, "category", stats.ByCategory); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *Repository) groupCount(ctx context.Context, column string, into map[string]int64) error {
	var rows []struct {
		Key string
		N   int64
	}
	err := r.DB().WithContext(ctx).Model(&domain.Product{}).
		Select(column + " AS key, COUNT(*) AS n").
		Where("is_deleted = ?", false).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return domain.Internal("database error", err)
	}
	for _, row := range rows {
		into[row.Key] = row.N
	}
	return nil
}

// itemError annotates a bundle error with the index of the failing item.
func itemError(err error, index int) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr.With("item_index", index)
	}
	return err
}
