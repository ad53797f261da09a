package collection

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/repository"
)

// Repository extends the generic collection repository with queries that
// cross into the products table.
type Repository struct {
	*repository.Repository[domain.Collection]
}

// NewRepository declares the query surface of the collection table.
func NewRepository(db *gorm.DB) (*Repository, error) {
	base, err := repository.New[domain.Collection](db, repository.Config{
		SoftDelete: true,
		Filterable: []string{"name", "slug", "season", "year", "status", "is_published", "created_at"},
		Sortable:   []string{"name", "season", "year", "status", "created_at", "updated_at"},
		Relations: []repository.Relation{
			{Name: "products", Field: "Products", Order: "created_at ASC"},
			{Name: "files", Field: "Files", Order: "created_at DESC"},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Repository{Repository: base}, nil
}

// SlugTaken reports whether a live or soft-deleted collection other than
// exclude already holds the slug. Soft-deleted rows count because the
// unique index spans them.
func (r *Repository) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	db := r.DB().WithContext(ctx).Model(&domain.Collection{}).Where("slug = ?", slug)
	if exclude != uuid.Nil {
		db = db.Where("id <> ?", exclude)
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, domain.Internal("database error", err)
	}
	return count > 0, nil
}

// ActiveProductCount counts live products with active status in the
// collection.
func (r *Repository) ActiveProductCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.DB().WithContext(ctx).Model(&domain.Product{}).
		Where("collection_id = ? AND status = ? AND is_deleted = ?", id, domain.ProductStatusActive, false).
		Count(&count).Error
	if err != nil {
		return 0, domain.Internal("database error", err)
	}
	return count, nil
}

// Search matches name or description case-insensitively.
func (r *Repository) Search(ctx context.Context, query string, publishedOnly bool, skip, limit int) ([]domain.Collection, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	db := r.DB().WithContext(ctx).
		Where("is_deleted = ?", false).
		Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	if publishedOnly {
		db = db.Where("is_published = ?", true)
	}
	db = db.Order("created_at DESC")
	if skip > 0 {
		db = db.Offset(skip)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var collections []domain.Collection
	if err := db.Find(&collections).Error; err != nil {
		return nil, domain.Internal("database error", err)
	}
	return collections, nil
}

// Featured returns published collections containing at least one featured
// active product, newest first.
func (r *Repository) Featured(ctx context.Context, limit int) ([]domain.Collection, error) {
	featured := r.DB().Model(&domain.Product{}).
		Select("collection_id").
		Where("is_featured = ? AND status = ? AND is_deleted = ?", true, domain.ProductStatusActive, false)

	var collections []domain.Collection
	err := r.DB().WithContext(ctx).
		Where("is_published = ? AND is_deleted = ?", true, false).
		Where("id IN (?)", featured).
		Order("created_at DESC").
		Limit(limit).
		Find(&collections).Error
	if err != nil {
		return nil, domain.Internal("database error", err)
	}
	return collections, nil
}

// Stats aggregates collection counts for the admin dashboard.
func (r *Repository) Stats(ctx context.Context) (*domain.CollectionStats, error) {
	stats := &domain.CollectionStats{ByStatus: make(map[string]int64)}

	var err error
	if stats.Total, err = r.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Published, err = r.Count(ctx, repository.Filter(domain.Filters{"is_published": domain.Eq(true)})); err != nil {
		return nil, err
	}

	var rows []struct {
		Status string
		N      int64
	}
	err = r.DB().WithContext(ctx).Model(&domain.Collection{}).
		Select("status, COUNT(*) AS n").
		Where("is_deleted = ?", false).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.Internal("database error", err)
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.N
	}
	return stats, nil
}
