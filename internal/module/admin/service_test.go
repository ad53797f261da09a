package admin

import (
	"context"
	"testing"
	"time"

	"github.com/simp-lee/showroom/internal/domain"
)

type stubCollectionStats struct {
	stats domain.CollectionStats
	err   error
	calls int
}

func (s *stubCollectionStats) Stats(context.Context) (*domain.CollectionStats, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := s.stats
	return &out, nil
}

type stubProductStats struct {
	stats domain.ProductStats
	err   error
	calls int
}

func (s *stubProductStats) Stats(context.Context) (*domain.ProductStats, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := s.stats
	return &out, nil
}

type stubUserStats struct {
	stats domain.UserStats
	err   error
	calls int
}

func (s *stubUserStats) Stats(context.Context) (*domain.UserStats, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := s.stats
	return &out, nil
}

type stubFileStats struct {
	stats domain.FileStats
	err   error
	calls int
}

func (s *stubFileStats) Stats(context.Context) (*domain.FileStats, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := s.stats
	return &out, nil
}

type stubSources struct {
	collections *stubCollectionStats
	products    *stubProductStats
	users       *stubUserStats
	files       *stubFileStats
}

func newStubSources() *stubSources {
	return &stubSources{
		collections: &stubCollectionStats{stats: domain.CollectionStats{
			Total:     4,
			Published: 2,
			ByStatus:  map[string]int64{"active": 2, "draft": 2},
		}},
		products: &stubProductStats{stats: domain.ProductStats{
			Total:    12,
			Featured: 3,
			ByStatus: map[string]int64{"active": 10, "discontinued": 2},
		}},
		users: &stubUserStats{stats: domain.UserStats{
			Total:  5,
			Active: 4,
			Admins: 1,
		}},
		files: &stubFileStats{stats: domain.FileStats{
			Total:         9,
			TotalSize:     1 << 20,
			RecentUploads: 2,
		}},
	}
}

func (s *stubSources) service(ttl time.Duration) *Service {
	return NewService(s.collections, s.products, s.users, s.files, ttl)
}

func TestService_Dashboard(t *testing.T) {
	src := newStubSources()
	svc := src.service(time.Minute)

	stats, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if stats.Collections.Total != 4 || stats.Collections.Published != 2 {
		t.Errorf("Collections = %+v", stats.Collections)
	}
	if stats.Products.Total != 12 || stats.Products.Featured != 3 {
		t.Errorf("Products = %+v", stats.Products)
	}
	if stats.Users.Active != 4 {
		t.Errorf("Users = %+v", stats.Users)
	}
	if stats.Files.TotalSize != 1<<20 || stats.Files.RecentUploads != 2 {
		t.Errorf("Files = %+v", stats.Files)
	}
	if stats.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
}

func TestService_Dashboard_CachesWithinTTL(t *testing.T) {
	src := newStubSources()
	svc := src.service(time.Minute)
	ctx := context.Background()

	first, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("first Dashboard: %v", err)
	}
	second, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("second Dashboard: %v", err)
	}

	if !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Error("second call rebuilt the payload instead of serving the cache")
	}
	if src.collections.calls != 1 || src.products.calls != 1 || src.users.calls != 1 || src.files.calls != 1 {
		t.Errorf("source calls = %d/%d/%d/%d, want 1 each",
			src.collections.calls, src.products.calls, src.users.calls, src.files.calls)
	}
}

func TestService_Dashboard_ErrorNotCached(t *testing.T) {
	src := newStubSources()
	svc := src.service(time.Minute)
	ctx := context.Background()

	src.products.err = domain.Internal("database error", nil)
	if _, err := svc.Dashboard(ctx); !domain.IsInternal(err) {
		t.Fatalf("Dashboard error = %v, want internal", err)
	}

	src.products.err = nil
	if _, err := svc.Dashboard(ctx); err != nil {
		t.Fatalf("Dashboard after recovery: %v", err)
	}
	if src.collections.calls != 2 {
		t.Errorf("collections calls = %d, want 2 (failure must not cache)", src.collections.calls)
	}
}

func TestService_UserStats_BypassesCache(t *testing.T) {
	src := newStubSources()
	svc := src.service(time.Minute)
	ctx := context.Background()

	if _, err := svc.Dashboard(ctx); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	for i := 0; i < 2; i++ {
		stats, err := svc.UserStats(ctx)
		if err != nil {
			t.Fatalf("UserStats: %v", err)
		}
		if stats.Total != 5 {
			t.Errorf("Total = %d, want 5", stats.Total)
		}
	}
	if src.users.calls != 3 {
		t.Errorf("user source calls = %d, want 3 (dashboard + two direct)", src.users.calls)
	}
}
