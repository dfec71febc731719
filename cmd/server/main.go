package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LuaAI777/cts-project/internal/config"
	"github.com/LuaAI777/cts-project/internal/handler"
	"github.com/LuaAI777/cts-project/internal/middleware"
	"github.com/LuaAI777/cts-project/internal/model"
	"github.com/LuaAI777/cts-project/internal/provider"
	"github.com/LuaAI777/cts-project/internal/repository"
	"github.com/LuaAI777/cts-project/internal/router"
	"github.com/LuaAI777/cts-project/internal/service"
	"github.com/LuaAI777/cts-project/internal/store"
)

func main() {
	cfg := config.Load()

	middleware.InitLogger(cfg.LogLevel, "cts-api")
	log := middleware.Logger
	for _, w := range cfg.Warnings {
		log.Warn().Msg("config: " + w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, status, err := store.Open(ctx, store.Options{
		Backend:         cfg.StoreBackend,
		RedisURL:        cfg.RedisURL,
		DatabaseURL:     cfg.DatabaseURL,
		ConnectTimeout:  cfg.StoreTimeout,
		ConnectAttempts: cfg.StoreConnectAttempts,
		OpTimeout:       cfg.StoreTimeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open config store")
	}
	defer backend.Close()

	var pool *pgxpool.Pool
	cache := &service.CacheService{}
	switch inner := store.Inner(backend).(type) {
	case *store.PostgresBackend:
		pool = inner.Pool()
		cache = service.NewCacheService(ctx, cfg.RedisURL, cfg.SignalCacheTTL, log)
	case *store.RedisBackend:
		cache = service.NewCacheServiceFromClient(inner.Client(), cfg.SignalCacheTTL)
	}
	defer cache.Close()

	handler.InitMetrics(pool)
	if status.Degraded {
		handler.Metrics.StoreDegraded.Set(1)
	}

	initial, err := initialConfig(cfg.TrustConfigFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.TrustConfigFile).Msg("failed to load trust config")
	}
	configs := repository.NewConfigRepo(backend, cfg.SnapshotTTL, log)
	if err := configs.Bootstrap(ctx, initial); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap config store")
	}

	var meta service.MetadataProvider
	if cfg.YouTubeAPIKey != "" {
		yt, err := provider.NewYouTube(ctx, cfg.YouTubeAPIKey, cfg.ProviderTimeout, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create YouTube client")
		}
		meta = yt
	} else {
		log.Warn().Msg("youtube: no API key configured, provider-backed routes disabled")
	}

	gate := service.ContentGate{Floor: cfg.ContentGateFloor, Multiplier: cfg.ContentGateMultiplier}
	evaluation := service.NewEvaluationService(configs, gate, meta, cache, cfg.SearchConcurrency, log)
	governance := service.NewGovernanceService(configs, repository.NewChangeRepo(backend), log)

	app := fiber.New(fiber.Config{
		AppName:      "CTS API",
		ServerHeader: "CTS",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	limiters := router.NewLimiters()
	defer limiters.Close()

	router.Setup(app, &router.Handlers{
		Health:     handler.NewHealthHandler(backend, status, cache),
		Evaluation: handler.NewEvaluationHandler(evaluation, cfg.SearchMaxResults),
		Admin:      handler.NewAdminHandler(governance),
	}, limiters, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Environment).
		Str("store", status.Active).
		Bool("store_degraded", status.Degraded).
		Msg("CTS backend starting")
	if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// initialConfig returns the config an empty store is seeded with.
func initialConfig(path string) (*model.Config, error) {
	if path == "" {
		return model.DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return model.ParseConfig(data)
}
