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
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hpratama/gudang-be/internal/adapters/db"
	redis_a "github.com/hpratama/gudang-be/internal/adapters/redis_adapter"
	"github.com/hpratama/gudang-be/internal/adapters/remote"
	"github.com/hpratama/gudang-be/internal/adapters/storage"
	"github.com/hpratama/gudang-be/internal/core/services"
	"github.com/hpratama/gudang-be/internal/handlers"
	"github.com/hpratama/gudang-be/internal/handlers/middleware"
	"github.com/hpratama/gudang-be/internal/pkg/config"
	"github.com/hpratama/gudang-be/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting warehouse inventory sync service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx := context.Background()

	if cfg.Database.AutoMigrate {
		if err := runMigrations(ctx, cfg, slogger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			if cfg.IsProduction() {
				os.Exit(1)
			}
		}
	}

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(cfg, deps, slogger)

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

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database         *db.Database
	redisClient      *redis.Client
	cache            *redis_a.Cache
	session          *remote.SessionManager
	syncService      *services.SyncEngine
	inventoryService *services.InventoryService
	syncHandler      *handlers.SyncHandler
	inventoryHandler *handlers.InventoryHandler
	exportHandler    *handlers.ExportHandler
	healthHandler    *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
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
		Addr:         fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	deps.redisClient = redisClient
	deps.cache = redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	// Repositories
	productRepo := db.NewProductRepository(database, slogger)
	itemRepo := db.NewItemRepository(database, slogger)
	stockRepo := db.NewStockRepository(database, slogger)
	historyRepo := db.NewHistoryRepository(database, slogger)
	runRepo := db.NewSyncRunRepository(database, slogger)

	// Remote session and transport
	httpClient := &http.Client{Timeout: cfg.Remote.Timeout}
	session := remote.NewSessionManager(remote.SessionConfig{
		AuthURL:         cfg.Remote.AuthURL,
		Username:        cfg.Remote.Username,
		Password:        cfg.Remote.Password,
		DefaultTokenTTL: cfg.Remote.TokenTTL,
	}, remote.NewSessionCache(), httpClient, slogger)
	deps.session = session

	prober := remote.NewProber(remote.ProberConfig{
		InventoryURLs: cfg.Remote.InventoryURLs,
		Methods:       cfg.Remote.Methods,
		HistoryURL:    cfg.Remote.HistoryURL,
		Timeout:       cfg.Remote.Timeout,
	}, session, slogger)

	// Optional snapshot archiving
	var archiver services.SnapshotArchiver
	if cfg.Storage.Enabled {
		store, err := storage.NewSnapshotStore(ctx, &storage.S3Config{
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Endpoint:        cfg.Storage.Endpoint,
			UsePathStyle:    cfg.Storage.UsePathStyle,
		}, slogger)
		if err != nil {
			slogger.Warn("snapshot store unavailable, continuing without archiving",
				slog.String("error", err.Error()))
		} else {
			archiver = store
		}
	}

	// Sync engine
	deps.syncService = services.NewSyncEngine(
		session,
		prober,
		services.NewNormalizer(),
		services.NewReconciler(productRepo, itemRepo, cfg.Sync.SourcePrefix, slogger),
		services.NewStockRecalculator(productRepo, itemRepo, stockRepo, cfg.Sync.WarehouseID, slogger),
		services.NewHistorySynchronizer(prober, itemRepo, historyRepo, slogger),
		runRepo,
		archiver,
		slogger,
	)

	// Read-side service and handlers
	deps.inventoryService = services.NewInventoryService(
		productRepo, itemRepo, stockRepo, historyRepo, deps.cache, slogger)

	deps.syncHandler = handlers.NewSyncHandler(deps.syncService, deps.inventoryService, cfg.Sync.WarehouseID, slogger)
	deps.inventoryHandler = handlers.NewInventoryHandler(deps.inventoryService, cfg.Sync.WarehouseID, slogger)
	deps.exportHandler = handlers.NewExportHandler(deps.inventoryService, cfg.Sync.WarehouseID, slogger)
	deps.healthHandler = handlers.NewHealthHandler(database, redisClient, session, cfg, slogger)

	slogger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	var handler http.Handler = mux

	// Innermost first
	if cfg.App.Environment != "test" {
		handler = middleware.RequestID(handler)
		handler = middleware.Logger(slogger)(handler)
		handler = middleware.Recovery(slogger)(handler)
	}

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	registerRoutes(mux, deps)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   selectWriteTimeout(cfg),
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

// selectWriteTimeout leaves headroom for synchronous sync runs, which hold
// the request open while talking to the remote app.
func selectWriteTimeout(cfg *config.Config) time.Duration {
	minimum := cfg.Remote.Timeout*2 + 30*time.Second
	if cfg.Server.WriteTimeout > minimum {
		return cfg.Server.WriteTimeout
	}
	return minimum
}

func registerRoutes(mux *http.ServeMux, deps *dependencies) {
	apiV1 := "/api/v1"

	// Health and readiness
	mux.HandleFunc("GET /health", deps.healthHandler.Health)
	mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
	mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)

	// Sync engine
	mux.HandleFunc("POST "+apiV1+"/sync/run", deps.syncHandler.TriggerSync)
	mux.HandleFunc("GET "+apiV1+"/sync/status", deps.syncHandler.GetStatus)
	mux.HandleFunc("GET "+apiV1+"/sync/history", deps.syncHandler.GetHistory)

	// Catalog reads
	mux.HandleFunc("GET "+apiV1+"/products", deps.inventoryHandler.ListProducts)
	mux.HandleFunc("GET "+apiV1+"/products/{id}", deps.inventoryHandler.GetProduct)
	mux.HandleFunc("GET "+apiV1+"/items", deps.inventoryHandler.ListItems)
	mux.HandleFunc("GET "+apiV1+"/items/{serial}", deps.inventoryHandler.GetItem)
	mux.HandleFunc("GET "+apiV1+"/stock", deps.inventoryHandler.ListStock)

	// Exports
	mux.HandleFunc("GET "+apiV1+"/export/stock", deps.exportHandler.ExportStock)
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
