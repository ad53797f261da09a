package admin

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/simp-lee/showroom/internal/domain"
)

const (
	dashboardCacheKey = "dashboard"
	defaultStatsTTL   = 30 * time.Second
)

// CollectionStatsSource provides collection statistics for the dashboard.
type CollectionStatsSource interface {
	Stats(ctx context.Context) (*domain.CollectionStats, error)
}

// ProductStatsSource provides product statistics for the dashboard.
type ProductStatsSource interface {
	Stats(ctx context.Context) (*domain.ProductStats, error)
}

// UserStatsSource provides account statistics for the dashboard.
type UserStatsSource interface {
	Stats(ctx context.Context) (*domain.UserStats, error)
}

// FileStatsSource provides file statistics for the dashboard.
type FileStatsSource interface {
	Stats(ctx context.Context) (*domain.FileStats, error)
}

// Service aggregates per-module statistics into the admin dashboard. The
// aggregate runs four count queries, so it is cached briefly; GeneratedAt
// tells the client how stale a cached payload is.
type Service struct {
	collections CollectionStatsSource
	products    ProductStatsSource
	users       UserStatsSource
	files       FileStatsSource
	cache       *gocache.Cache
}

var _ domain.AdminService = (*Service)(nil)

// NewService creates the admin service. A non-positive ttl falls back to
// 30 seconds.
func NewService(collections CollectionStatsSource, products ProductStatsSource, users UserStatsSource, files FileStatsSource, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &Service{
		collections: collections,
		products:    products,
		users:       users,
		files:       files,
		cache:       gocache.New(ttl, 2*ttl),
	}
}

// Dashboard returns the aggregate statistics payload, serving a cached
// copy while it is fresh. A failing source invalidates nothing; the last
// good payload keeps serving until its TTL runs out.
func (s *Service) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	if cached, ok := s.cache.Get(dashboardCacheKey); ok {
		return cached.(*domain.DashboardStats), nil
	}

	collections, err := s.collections.Stats(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Stats(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.Stats(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.files.Stats(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		Collections: *collections,
		Products:    *products,
		Users:       *users,
		Files:       *files,
		GeneratedAt: time.Now(),
	}
	s.cache.SetDefault(dashboardCacheKey, stats)
	return stats, nil
}

// UserStats returns account statistics, always fresh. Admins watch this
// one while changing roles, so it skips the dashboard cache.
func (s *Service) UserStats(ctx context.Context) (*domain.UserStats, error) {
	return s.users.Stats(ctx)
}
