package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/learnscout/internal/config"
	"github.com/kailas-cloud/learnscout/internal/db"
	"github.com/kailas-cloud/learnscout/internal/db/memory"
	dbRedis "github.com/kailas-cloud/learnscout/internal/db/redis"
	logpkg "github.com/kailas-cloud/learnscout/internal/logger"
	"github.com/kailas-cloud/learnscout/internal/metrics"
	tagsrepo "github.com/kailas-cloud/learnscout/internal/repository/tags"
	chiTransport "github.com/kailas-cloud/learnscout/internal/transport/chi"
	"github.com/kailas-cloud/learnscout/internal/transport/upstream"
	"github.com/kailas-cloud/learnscout/internal/transport/web"
	"github.com/kailas-cloud/learnscout/internal/usecase/aggregate"
	healthuc "github.com/kailas-cloud/learnscout/internal/usecase/health"
	"github.com/kailas-cloud/learnscout/internal/usecase/planner"
	previewuc "github.com/kailas-cloud/learnscout/internal/usecase/preview"
	"github.com/kailas-cloud/learnscout/internal/usecase/rank"
	searchuc "github.com/kailas-cloud/learnscout/internal/usecase/search"
	tagsuc "github.com/kailas-cloud/learnscout/internal/usecase/tags"
	usageuc "github.com/kailas-cloud/learnscout/internal/usecase/usage"
	"github.com/kailas-cloud/learnscout/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting learnscout API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("rewriter", cfg.Rewriter.Enabled),
		zap.Bool("relevance", cfg.Relevance.Enabled),
		zap.Bool("rank", cfg.Rank.Enabled),
	)

	ctx := context.Background()

	store, err := openStore(ctx, &cfg.Store)
	if err != nil {
		logger.Fatal("Store not ready", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to store", zap.String("driver", cfg.Store.Driver))

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterRewriterMetrics()

	var upstreamOpts []upstream.Option
	if cfg.Search.UserAgent != "" {
		upstreamOpts = append(upstreamOpts, upstream.WithUserAgent(cfg.Search.UserAgent))
	}

	// Language model chains (composition root)
	models, err := buildModels(ctx, &cfg, store, logger)
	if err != nil {
		logger.Fatal("Failed to build language model clients", zap.Error(err))
	}

	sources, err := buildSources(ctx, &cfg, upstreamOpts, logger)
	if err != nil {
		logger.Fatal("Failed to build sources", zap.Error(err))
	}
	if len(sources.adapters) == 0 {
		logger.Warn("No sources enabled: every search returns an empty list")
	}

	agg := aggregate.New(sources.adapters, config.Seconds(cfg.Search.SourceTimeoutSec), logger)
	plan := planner.New(models.expander, agg.Enabled(), config.Seconds(cfg.Rewriter.ExpandTimeoutSec), logger)
	flt := buildFilter(&cfg, models.scorer, sources.readme, logger)
	ranker := rank.New(models.reranker, rank.Config{
		PassthroughMax: cfg.Rank.PassthroughMax,
		TopN:           cfg.Rank.TopN,
		ResultCap:      cfg.Rank.ResultCap,
		LocalSort:      *cfg.Rank.LocalSort,
		Timeout:        config.Seconds(cfg.Rank.TimeoutSec),
	}, logger)

	searchSvc := searchuc.New(plan, agg, flt, ranker, logger)
	tagsSvc := tagsuc.New(tagsrepo.New(store))
	previewSvc := previewuc.New(web.NewFetcher(upstreamOpts...))
	usageSvc := usageuc.New(models.budgets)

	// models.health stays a nil interface when the rewriter is disabled.
	healthSvc := healthuc.New(store, models.health, agg.Enabled())

	server := chiTransport.NewServer(searchSvc, tagsSvc, previewSvc, usageSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(metrics.Middleware())
	if len(cfg.HTTP.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.HTTP.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{
				"X-Request-ID",
				chiTransport.HeaderRewriterTokens,
				chiTransport.HeaderRewriterCalls,
				chiTransport.HeaderFailedSources,
			},
			MaxAge: 300,
		}))
	}
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  config.Seconds(cfg.HTTP.ReadTimeoutSec),
		WriteTimeout: config.Seconds(cfg.HTTP.WriteTimeoutSec),
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", addr),
			zap.Strings("sources", platformNames(agg.Enabled())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(cfg.HTTP.ShutdownSec))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore creates the tag, budget and cache backend and waits until it answers.
func openStore(ctx context.Context, cfg *config.StoreConfig) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case "redis", "valkey":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	case "memory":
		store = memory.New()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}
	if err := store.WaitForReady(ctx, config.Seconds(cfg.ReadinessTimeout)); err != nil {
		store.Close()
		return nil, fmt.Errorf("wait for %s store: %w", cfg.Driver, err)
	}
	return store, nil
}
