package domain

import (
	"context"
	"time"
)

// CollectionStats summarizes collections for the admin dashboard.
type CollectionStats struct {
	Total     int64            `json:"total"`
	Published int64            `json:"published"`
	ByStatus  map[string]int64 `json:"by_status"`
}

// ProductStats summarizes products for the admin dashboard.
type ProductStats struct {
	Total      int64            `json:"total"`
	Featured   int64            `json:"featured"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByCategory map[string]int64 `json:"by_category"`
}

// FileStats summarizes stored files for the admin dashboard.
type FileStats struct {
	Total          int64 `json:"total"`
	TotalSize      int64 `json:"total_size"`
	TotalDownloads int64 `json:"total_downloads"`
	RecentUploads  int64 `json:"recent_uploads"`
}

// DashboardStats is the aggregate admin dashboard payload.
type DashboardStats struct {
	Collections CollectionStats `json:"collections"`
	Products    ProductStats    `json:"products"`
	Users       UserStats       `json:"users"`
	Files       FileStats       `json:"files"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// AdminService defines the aggregation interface behind the admin surface.
type AdminService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	UserStats(ctx context.Context) (*UserStats, error)
}
