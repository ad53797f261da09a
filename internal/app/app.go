package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/showroom/internal/config"
	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/identity"
	"github.com/simp-lee/showroom/internal/middleware"
	"github.com/simp-lee/showroom/internal/module/admin"
	"github.com/simp-lee/showroom/internal/module/collection"
	"github.com/simp-lee/showroom/internal/module/file"
	"github.com/simp-lee/showroom/internal/module/product"
	"github.com/simp-lee/showroom/internal/module/user"
	"github.com/simp-lee/showroom/internal/storage"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the database, blob storage, every business module
// (repository → service → handler), authentication, instrumentation, and
// the routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	// AutoMigrate in debug mode only; release deployments migrate
	// explicitly.
	if cfg.Server.Mode == gin.DebugMode {
		err := db.AutoMigrate(
			&domain.Collection{},
			&domain.Product{},
			&domain.ProductVariant{},
			&domain.ProductImage{},
			&domain.TechnicalSpecification{},
			&domain.SizeChart{},
			&domain.File{},
			&domain.User{},
			&domain.ServiceKey{},
		)
		if err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	store, err := storage.NewDiskStore(cfg.Storage.Root)
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	// Manual dependency injection: repository → service → handler.
	collectionRepo, err := collection.NewRepository(db)
	if err != nil {
		return nil, fmt.Errorf("collection repository: %w", err)
	}
	productRepo, err := product.NewRepository(db)
	if err != nil {
		return nil, fmt.Errorf("product repository: %w", err)
	}
	fileRepo, err := file.NewRepository(db)
	if err != nil {
		return nil, fmt.Errorf("file repository: %w", err)
	}
	userRepo, err := user.NewRepository(db)
	if err != nil {
		return nil, fmt.Errorf("user repository: %w", err)
	}
	keyRepo, err := admin.NewKeyRepository(db)
	if err != nil {
		return nil, fmt.Errorf("service key repository: %w", err)
	}

	verifier := identity.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.TokenMaxAge())

	collectionSvc := collection.NewService(collectionRepo)
	productSvc := product.NewService(productRepo)
	userSvc := user.NewService(userRepo, verifier)
	fileSvc := file.NewService(fileRepo, store, cfg.MaxUploadBytes(), cfg.Storage.BaseURL)
	keySvc := admin.NewKeyService(keyRepo)
	adminSvc := admin.NewService(collectionSvc, productSvc, userSvc, fileSvc, cfg.StatsCacheTTL())

	modules := []Module{
		collection.NewModule(collection.NewHandler(collectionSvc)),
		product.NewModule(product.NewHandler(productSvc)),
		file.NewModule(file.NewHandler(fileSvc)),
		user.NewModule(user.NewHandler(userSvc)),
		admin.NewModule(admin.NewHandler(adminSvc, keySvc)),
	}

	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	metrics, err := middleware.NewMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("setup metrics: %w", err)
	}

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger),
		middleware.CORSWithConfig(resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)),
		metrics.Handler(),
	)

	// Without the authenticator no request ever carries a principal, so
	// only public endpoints are reachable.
	if cfg.Auth.Enabled {
		auth := middleware.NewAuthenticator(verifier, userSvc, keySvc, cfg.RoleCacheTTL())
		userSvc.OnPrincipalChange(auth.Invalidate)
		engine.Use(auth.Handler())
	} else {
		log.Warn("auth disabled: all requests run anonymously and guarded endpoints are unreachable")
	}

	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:       modules,
		DB:            db,
		UploadDir:     cfg.Storage.Root,
		UploadBaseURL: cfg.Storage.BaseURL,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// resolveCORSConfig maps the configured CORS settings onto the middleware
// config. In release mode an empty allowlist denies cross-origin requests
// instead of falling back to the permissive development default.
func resolveCORSConfig(mode string, cc config.CORSConfig) middleware.CORSConfig {
	out := middleware.DefaultCORSConfig()

	if len(cc.AllowOrigins) > 0 {
		out.AllowOrigins = cc.AllowOrigins
	} else if mode == gin.ReleaseMode {
		out.AllowOrigins = []string{}
	}
	if len(cc.AllowMethods) > 0 {
		out.AllowMethods = cc.AllowMethods
	}
	if len(cc.AllowHeaders) > 0 {
		out.AllowHeaders = cc.AllowHeaders
	}
	out.AllowCredentials = cc.AllowCredentials
	if cc.MaxAge != "" {
		if d, err := time.ParseDuration(cc.MaxAge); err == nil && d > 0 {
			out.MaxAge = d
		}
	}
	return out
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is
// received. It performs graceful shutdown with a 5-second timeout and
// closes the database connection.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logInfo("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	select {
	case <-ctx.Done():
		a.logInfo("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logError("server shutdown error", slog.Any("error", err))
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.logError("database close error", slog.Any("error", err))
			} else {
				a.logInfo("database connection closed")
			}
		}
	}

	a.logInfo("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}

// logInfo and logError fall back to the default slog logger so Run stays
// usable on a partially constructed App in tests.
func (a *App) logInfo(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
		return
	}
	slog.Info(msg, args...)
}

func (a *App) logError(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Error(msg, args...)
		return
	}
	slog.Error(msg, args...)
}
