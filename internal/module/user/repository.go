package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/repository"
)

// recentLoginWindow bounds the "recent logins" figure on the dashboard.
const recentLoginWindow = 30 * 24 * time.Hour

// Repository extends the generic user repository with login bookkeeping
// and dashboard aggregates.
type Repository struct {
	*repository.Repository[domain.User]
}

// NewRepository declares the query surface of the users table.
func NewRepository(db *gorm.DB) (*Repository, error) {
	base, err := repository.New[domain.User](db, repository.Config{
		SoftDelete: true,
		Filterable: []string{"uid", "email", "display_name", "role", "is_active", "created_at"},
		Sortable:   []string{"email", "display_name", "role", "created_at", "updated_at", "last_login", "login_count"},
	})
	if err != nil {
		return nil, err
	}
	return &Repository{Repository: base}, nil
}

// RecordLogin stamps a successful login: LastLogin moves to now and
// LoginCount increments atomically.
func (r *Repository) RecordLogin(ctx context.Context, id uuid.UUID) error {
	err := r.DB().WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_login":  time.Now(),
			"login_count": gorm.Expr("login_count + 1"),
		}).Error
	if err != nil {
		return domain.Internal("database error", err)
	}
	return nil
}

// Stats aggregates account counts for the admin dashboard. Recent logins
// are those within the last 30 days.
func (r *Repository) Stats(ctx context.Context) (*domain.UserStats, error) {
	stats := &domain.UserStats{}

	var err error
	if stats.Total, err = r.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Active, err = r.Count(ctx, repository.Filter(domain.Filters{"is_active": domain.Eq(true)})); err != nil {
		return nil, err
	}
	if stats.Admins, err = r.Count(ctx, repository.Filter(domain.Filters{"role": domain.Eq(domain.RoleAdmin)})); err != nil {
		return nil, err
	}

	since := time.Now().Add(-recentLoginWindow)
	err = r.DB().WithContext(ctx).Model(&domain.User{}).
		Where("is_deleted = ? AND last_login >= ?", false, since).
		Count(&stats.RecentLogins).Error
	if err != nil {
		return nil, domain.Internal("database error", err)
	}
	return stats, nil
}
