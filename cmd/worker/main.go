// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/hpratama/gudang-be/internal/adapters/db"
	redis_a "github.com/hpratama/gudang-be/internal/adapters/redis_adapter"
	"github.com/hpratama/gudang-be/internal/adapters/remote"
	"github.com/hpratama/gudang-be/internal/adapters/storage"
	"github.com/hpratama/gudang-be/internal/core/ports"
	"github.com/hpratama/gudang-be/internal/core/services"
	"github.com/hpratama/gudang-be/internal/pkg/config"
	"github.com/hpratama/gudang-be/internal/pkg/logger"
	"github.com/hpratama/gudang-be/internal/workers"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting sync worker",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)

	ctx := context.Background()

	database, err := initDatabase(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	cache := initCache(ctx, cfg, slogger)

	syncService, inventoryService := buildServices(ctx, cfg, database, cache, slogger)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		Logger:          &asynqLogger{logger: slogger},
		RetryDelayFunc:  exponentialBackoff,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError(slogger)),
	})

	processor := workers.NewSyncProcessor(syncService, inventoryService, cfg.Sync.WarehouseID, slogger)

	mux := asynq.NewServeMux()
	mux.HandleFunc(workers.TypeInventorySync, processor.ProcessSync)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: &asynqLogger{logger: slogger},
	})
	if _, err := scheduler.Register(cfg.Sync.Schedule, workers.NewInventorySyncTask()); err != nil {
		slogger.Error("failed to register sync schedule",
			slog.String("schedule", cfg.Sync.Schedule),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	serverErrors := make(chan error, 2)
	go func() {
		slogger.Info("starting task server",
			slog.Int("concurrency", cfg.Asynq.Concurrency))
		serverErrors <- srv.Run(mux)
	}()
	go func() {
		slogger.Info("starting scheduler",
			slog.String("schedule", cfg.Sync.Schedule))
		serverErrors <- scheduler.Run()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil {
			slogger.Error("worker error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

// initDatabase opens a smaller pool than the API; the worker runs one sync
// at a time and does not need API-grade connection counts.
func initDatabase(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*db.Database, error) {
	maxConns := cfg.Database.MaxConnections / 2
	if maxConns < 5 {
		maxConns = 5
	}

	return db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     maxConns,
		MinConnections:     2,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, slogger)
}

// initCache connects to the application cache shared with the API. The
// worker can run without it; stock cache invalidation then becomes a no-op
// and API reads age out on the cache TTL instead.
func initCache(ctx context.Context, cfg *config.Config, slogger *slog.Logger) ports.CacheRepository {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		slogger.Warn("application cache unavailable, continuing without invalidation",
			slog.String("error", err.Error()))
		client.Close()
		return nil
	}
	return redis_a.NewCache(client, cfg.Redis.TTL, slogger)
}

func buildServices(ctx context.Context, cfg *config.Config, database *db.Database, cache ports.CacheRepository, slogger *slog.Logger) (*services.SyncEngine, *services.InventoryService) {
	productRepo := db.NewProductRepository(database, slogger)
	itemRepo := db.NewItemRepository(database, slogger)
	stockRepo := db.NewStockRepository(database, slogger)
	historyRepo := db.NewHistoryRepository(database, slogger)
	runRepo := db.NewSyncRunRepository(database, slogger)

	httpClient := &http.Client{Timeout: cfg.Remote.Timeout}
	session := remote.NewSessionManager(remote.SessionConfig{
		AuthURL:         cfg.Remote.AuthURL,
		Username:        cfg.Remote.Username,
		Password:        cfg.Remote.Password,
		DefaultTokenTTL: cfg.Remote.TokenTTL,
	}, remote.NewSessionCache(), httpClient, slogger)

	prober := remote.NewProber(remote.ProberConfig{
		InventoryURLs: cfg.Remote.InventoryURLs,
		Methods:       cfg.Remote.Methods,
		HistoryURL:    cfg.Remote.HistoryURL,
		Timeout:       cfg.Remote.Timeout,
	}, session, slogger)

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

	engine := services.NewSyncEngine(
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

	inventory := services.NewInventoryService(
		productRepo, itemRepo, stockRepo, historyRepo, cache, slogger)

	return engine, inventory
}

// exponentialBackoff doubles the delay per retry, capped at 10 minutes.
func exponentialBackoff(n int, _ error, _ *asynq.Task) time.Duration {
	d := time.Duration(1<<uint(n)) * time.Second
	if d > 10*time.Minute {
		d = 10 * time.Minute
	}
	return d
}

func handleError(slogger *slog.Logger) func(ctx context.Context, task *asynq.Task, err error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		lvl := slog.LevelWarn
		if retried >= maxRetry {
			lvl = slog.LevelError
		}
		slogger.Log(ctx, lvl, "task failed",
			slog.String("type", task.Type()),
			slog.Int("retried", retried),
			slog.Int("max_retry", maxRetry),
			slog.String("error", err.Error()),
		)
	}
}

// asynqLogger adapts slog to the asynq logging interface.
type asynqLogger struct {
	logger *slog.Logger
}

func (l *asynqLogger) Debug(args ...interface{}) { l.logger.Debug(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...interface{})  { l.logger.Info(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...interface{})  { l.logger.Warn(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...interface{}) { l.logger.Error(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
