package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/simp-lee/showroom/internal/pkg"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	DB      *gorm.DB

	// UploadDir and UploadBaseURL publish stored blobs as plain static
	// assets so file URLs resolve without the tracked download endpoint.
	// A base URL pointing at another host (CDN, object storage front)
	// leaves serving to that host.
	UploadDir     string
	UploadBaseURL string
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}

	r.GET("/health", healthHandler(deps.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := registerUploadRoutes(r, deps.UploadBaseURL, deps.UploadDir); err != nil {
		return fmt.Errorf("register upload routes: %w", err)
	}

	api := r.Group("/api/v1")
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	r.NoRoute(noRouteHandler())

	return nil
}

// healthHandler reports liveness plus a database ping, so a stuck
// connection pool turns the probe red before requests start failing.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := "ok"
		code := http.StatusOK
		if err := pingDatabase(c.Request.Context(), db); err != nil {
			dbStatus = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

func pingDatabase(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// noRouteHandler returns the JSON 404 envelope for unmatched paths.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, pkg.Response{Code: http.StatusNotFound, Message: "not found"})
	}
}

// registerUploadRoutes mounts the upload directory at the storage base URL
// when that URL is a local absolute path. Relative and cross-host base
// URLs register nothing.
func registerUploadRoutes(r *gin.Engine, baseURL, dir string) error {
	base := strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if base == "" || !strings.HasPrefix(base, "/") {
		return nil
	}
	if base == "/health" || base == "/metrics" || base == "/api" || strings.HasPrefix(base, "/api/") {
		return fmt.Errorf("storage base_url %q collides with a reserved route", base)
	}
	if strings.TrimSpace(dir) == "" {
		return errors.New("storage root is required when base_url is a local path")
	}

	r.GET(base+"/*filepath", uploadFileHandler(base, noListingFS{http.Dir(dir)}))
	return nil
}

// uploadFileHandler serves stored blobs with long client caching. Stored
// names carry the upload timestamp, so content at a path never changes.
func uploadFileHandler(base string, fsys http.FileSystem) gin.HandlerFunc {
	fileServer := http.StripPrefix(base, http.FileServer(fsys))
	return func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=86400")
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}

// noListingFS hides directories so the date-shard tree cannot be browsed.
type noListingFS struct {
	http.FileSystem
}

func (f noListingFS) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	if stat, err := file.Stat(); err == nil && stat.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
