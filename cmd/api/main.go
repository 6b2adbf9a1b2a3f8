package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cloud-next/onboarding/internal/api"
	"github.com/cloud-next/onboarding/internal/api/handlers"
	"github.com/cloud-next/onboarding/internal/api/validators"
	"github.com/cloud-next/onboarding/internal/cache"
	"github.com/cloud-next/onboarding/internal/repository"
	"github.com/cloud-next/onboarding/internal/repository/memory"
	"github.com/cloud-next/onboarding/internal/services"
	"github.com/cloud-next/onboarding/pkg/config"
	"github.com/cloud-next/onboarding/pkg/database"
	"github.com/cloud-next/onboarding/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting cloud next onboarding api",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("store", cfg.StoreDriver),
	)

	ctx := context.Background()
	checks := map[string]handlers.Check{}

	var store repository.Store
	if cfg.UsesMemoryStore() {
		store, _ = memory.NewStore()
		if err := repository.SeedDemo(ctx, store); err != nil {
			log.Fatal("failed to seed memory store", zap.Error(err))
		}
		log.Info("using in-memory store with demo data")
	} else {
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, database.DefaultOptions(cfg.AppEnv))
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		log.Info("database connected")
		store = repository.NewGormStore(db)
		checks["database"] = func(ctx context.Context) error { return database.Ping(ctx, db) }
	}

	// Redis is optional: without it search is uncached and no provisioning
	// tasks are enqueued.
	var (
		searchCache services.SearchCache
		queue       services.TaskEnqueuer
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		searchCache = cache.NewSearchCache(rdb, cfg.SearchCacheTTL)

		client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		queue = client
	} else {
		log.Warn("REDIS_ADDR not set, search cache and provisioning queue disabled")
	}

	svc := services.NewOnboardingService(store, searchCache, queue)

	router := api.NewRouter(api.Dependencies{
		ApplicationsHandler: handlers.NewApplicationsHandler(svc, validators.New()),
		HealthHandler:       handlers.NewHealthHandler(checks),
		RateLimitRPS:        cfg.RateLimitRPS,
		RateLimitBurst:      cfg.RateLimitBurst,
		CORSOrigins:         cfg.AllowedOrigins(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
