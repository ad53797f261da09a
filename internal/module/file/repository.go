package file

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/repository"
)

// Uploads within this window count as recent on the admin dashboard.
const recentUploadWindow = 30 * 24 * time.Hour

// Repository extends the generic file repository with hash lookups,
// download tracking and storage statistics.
type Repository struct {
	*repository.Repository[domain.File]
}

// NewRepository declares the query surface of the files table.
func NewRepository(db *gorm.DB) (*Repository, error) {
	base, err := repository.New[domain.File](db, repository.Config{
		SoftDelete: true,
		Filterable: []string{
			"filename", "original_filename", "content_type", "size",
			"hash_md5", "tags", "collection_id", "product_id", "created_at",
		},
		Sortable: []string{
			"filename", "original_filename", "size", "download_count",
			"last_accessed", "created_at", "updated_at",
		},
	})
	if err != nil {
		return nil, err
	}
	return &Repository{Repository: base}, nil
}

// GetByMD5 returns the live file whose content hash matches, or nil.
// Soft-deleted rows are excluded so re-uploading removed content stores a
// fresh copy.
func (r *Repository) GetByMD5(ctx context.Context, hash string) (*domain.File, error) {
	return r.GetByField(ctx, "hash_md5", hash)
}

// IncrementDownload bumps the download counter and stamps the access time
// on a live file.
func (r *Repository) IncrementDownload(ctx context.Context, id uuid.UUID) error {
	err := r.DB().WithContext(ctx).Model(&domain.File{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{
			"download_count": gorm.Expr("download_count + 1"),
			"last_accessed":  time.Now(),
		}).Error
	if err != nil {
		return domain.Internal("database error", err)
	}
	return nil
}

// CollectionExists reports whether a live collection with the given id
// exists.
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

// ProductExists reports whether a live product with the given id exists.
func (r *Repository) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.DB().WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Count(&count).Error
	if err != nil {
		return false, domain.Internal("database error", err)
	}
	return count > 0, nil
}

// Search matches stored name, original name or description
// case-insensitively, newest first.
func (r *Repository) Search(ctx context.Context, query string, skip, limit int) ([]domain.File, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	db := r.DB().WithContext(ctx).
		Where("is_deleted = ?", false).
		Where("(LOWER(filename) LIKE ? OR LOWER(original_filename) LIKE ? OR LOWER(description) LIKE ?)",
			pattern, pattern, pattern).
		Order("created_at DESC")
	if skip > 0 {
		db = db.Offset(skip)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var files []domain.File
	if err := db.Find(&files).Error; err != nil {
		return nil, domain.Internal("database error", err)
	}
	return files, nil
}

// Stats aggregates live file counts, bytes and downloads for the admin
// dashboard.
func (r *Repository) Stats(ctx context.Context) (*domain.FileStats, error) {
	stats := &domain.FileStats{}

	var err error
	if stats.Total, err = r.Count(ctx); err != nil {
		return nil, err
	}

	var row struct {
		Size      int64
		Downloads int64
	}
	err = r.DB().WithContext(ctx).Model(&domain.File{}).
		Select("COALESCE(SUM(size), 0) AS size, COALESCE(SUM(download_count), 0) AS downloads").
		Where("is_deleted = ?", false).
		Scan(&row).Error
	if err != nil {
		return nil, domain.Internal("database error", err)
	}
	stats.TotalSize = row.Size
	stats.TotalDownloads = row.Downloads

	since := time.Now().Add(-recentUploadWindow)
	err = r.DB().WithContext(ctx).Model(&domain.File{}).
		Where("is_deleted = ? AND created_at >= ?", false, since).
		Count(&stats.RecentUploads).Error
	if err != nil {
		return nil, domain.Internal("database error", err)
	}
	return stats, nil
}
