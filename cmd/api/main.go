// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/stockpilot-be/internal/adapters/db"
	redis_a "github.com/ammerola/stockpilot-be/internal/adapters/redis_adapter"
	"github.com/ammerola/stockpilot-be/internal/core/domain"
	"github.com/ammerola/stockpilot-be/internal/core/ports"
	"github.com/ammerola/stockpilot-be/internal/core/services"
	"github.com/ammerola/stockpilot-be/internal/handlers"
	"github.com/ammerola/stockpilot-be/internal/handlers/middleware"
	"github.com/ammerola/stockpilot-be/internal/pkg/config"
	"github.com/ammerola/stockpilot-be/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	appLogger := logger.SetupLogger("debug", "json")
	slogger := appLogger.Logger

	slogger.Info("starting stockpilot inventory backend",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	appLogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger = appLogger.Logger
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	if cfg.App.Environment != "production" {
		if err := runMigrations(ctx, cfg, slogger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			// Don't exit in development, just warn
		}
	}

	server := setupHTTPServer(cfg, deps, appLogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		if deps.asynqClient != nil {
			if err := deps.asynqClient.Close(); err != nil {
				slogger.Error("failed to close Asynq client", slog.String("error", err.Error()))
			}
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       ports.Database
	redisClient    *redis.Client
	redisCache     ports.CacheRepository
	cacheManager   *redis_a.CacheManager
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector

	userService      *services.UserService
	inventoryHandler *handlers.InventoryHandler
	analyticsHandler *handlers.AnalyticsHandler
	dashboardHandler *handlers.DashboardHandler
	categoryHandler  *handlers.CategoryHandler
	userHandler      *handlers.UserHandler
	auditHandler     *handlers.AuditHandler
	healthHandler    *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	slogger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, slogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	slogger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient

	deps.redisCache = redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)
	deps.cacheManager = redis_a.NewCacheManager(deps.redisCache, slogger)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	// Repositories
	inventoryRepo := db.NewInventoryRepository(database, slogger)
	categoryRepo := db.NewCategoryRepository(database, slogger)
	snapshotRepo := db.NewSnapshotRepository(database, slogger)
	auditRepo := db.NewAuditRepository(database, slogger)
	profileRepo := db.NewProfileRepository(database, slogger)

	// Services
	inventoryService := services.NewInventoryService(inventoryRepo, auditRepo, slogger)
	analyticsService := services.NewAnalyticsService(inventoryRepo, snapshotRepo, categoryRepo, auditRepo, slogger)
	categoryService := services.NewCategoryService(categoryRepo, auditRepo, slogger)
	auditService := services.NewAuditLogService(auditRepo, slogger)
	deps.userService = services.NewUserService(profileRepo, auditRepo, slogger)

	// Handlers
	deps.inventoryHandler = handlers.NewInventoryHandler(inventoryService, deps.redisCache, deps.cacheManager, slogger)
	deps.analyticsHandler = handlers.NewAnalyticsHandler(analyticsService, deps.redisCache, slogger)
	deps.dashboardHandler = handlers.NewDashboardHandler(analyticsService, deps.redisCache, slogger)
	deps.categoryHandler = handlers.NewCategoryHandler(categoryService, deps.cacheManager, slogger)
	deps.userHandler = handlers.NewUserHandler(deps.userService, slogger)
	deps.auditHandler = handlers.NewAuditHandler(auditService, slogger)
	deps.healthHandler = handlers.NewHealthHandler(database, redisClient, deps.asynqInspector, cfg, slogger)

	slogger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, appLogger *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	slogger := appLogger.Logger

	var handler http.Handler = mux

	// Apply middleware in reverse order (innermost first)
	if cfg.App.Environment != "test" {
		handler = middleware.RequestID(handler)
		handler = middleware.Logger(appLogger)(handler)
		handler = middleware.Recovery(slogger)(handler)
	}

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	registerRoutes(mux, deps, slogger, cfg)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, slogger *slog.Logger, cfg *config.Config) {
	apiV1 := "/api/v1"

	auth := middleware.Authenticate(deps.userService, slogger)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	adminOrManager := middleware.RequireRole(domain.RoleAdmin, domain.RoleManager)

	// Any authenticated role
	authed := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}
	// Admin or manager
	writer := func(h http.HandlerFunc) http.Handler {
		return auth(adminOrManager(h))
	}
	// Admin only
	admin := func(h http.HandlerFunc) http.Handler {
		return auth(adminOnly(h))
	}

	// Health and readiness endpoints stay public
	mux.HandleFunc("GET /health", deps.healthHandler.Health)
	mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
	mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)

	// Inventory endpoints
	mux.Handle("GET "+apiV1+"/items", authed(deps.inventoryHandler.List))
	mux.Handle("GET "+apiV1+"/items/{id}", authed(deps.inventoryHandler.Get))
	mux.Handle("POST "+apiV1+"/items", writer(deps.inventoryHandler.Create))
	mux.Handle("PATCH "+apiV1+"/items/{id}", writer(deps.inventoryHandler.Update))
	mux.Handle("PATCH "+apiV1+"/items/{id}/status", writer(deps.inventoryHandler.UpdateStatus))
	mux.Handle("DELETE "+apiV1+"/items/{id}", admin(deps.inventoryHandler.Delete))

	// Analytics endpoints
	mux.Handle("GET "+apiV1+"/analytics/forecast/{id}", authed(deps.analyticsHandler.Forecast))
	mux.Handle("GET "+apiV1+"/analytics/trends", authed(deps.analyticsHandler.Trends))
	mux.Handle("GET "+apiV1+"/analytics/overview", authed(deps.dashboardHandler.Overview))
	mux.Handle("GET "+apiV1+"/dashboard", authed(deps.dashboardHandler.Overview))

	// Category endpoints
	mux.Handle("GET "+apiV1+"/categories", authed(deps.categoryHandler.List))
	mux.Handle("POST "+apiV1+"/categories", writer(deps.categoryHandler.Create))
	mux.Handle("PATCH "+apiV1+"/categories/{id}", writer(deps.categoryHandler.Update))
	mux.Handle("DELETE "+apiV1+"/categories/{id}", admin(deps.categoryHandler.Delete))

	// User administration
	mux.Handle("GET "+apiV1+"/users/me", authed(deps.userHandler.Me))
	mux.Handle("GET "+apiV1+"/users", admin(deps.userHandler.List))
	mux.Handle("PATCH "+apiV1+"/users/{id}/role", admin(deps.userHandler.ChangeRole))

	// Audit trail
	mux.Handle("GET "+apiV1+"/audit", writer(deps.auditHandler.List))

	// pprof endpoints (development only)
	if cfg.Server.EnablePprof && cfg.IsDevelopment() {
		mux.HandleFunc("GET /debug/pprof/", http.HandlerFunc(http.DefaultServeMux.ServeHTTP))
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, slogger *slog.Logger) error {
	slogger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, slogger, 3)
}
