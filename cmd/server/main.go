// Package main provides the entry point for the paper discovery HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nexus/paper-discovery-service/internal/assistant"
	"github.com/nexus/paper-discovery-service/internal/cache"
	"github.com/nexus/paper-discovery-service/internal/catalog"
	"github.com/nexus/paper-discovery-service/internal/config"
	"github.com/nexus/paper-discovery-service/internal/database"
	"github.com/nexus/paper-discovery-service/internal/feed"
	"github.com/nexus/paper-discovery-service/internal/observability"
	"github.com/nexus/paper-discovery-service/internal/papersources/sources"
	"github.com/nexus/paper-discovery-service/internal/preferences"
	"github.com/nexus/paper-discovery-service/internal/repository"
	"github.com/nexus/paper-discovery-service/internal/resolver"
	httpserver "github.com/nexus/paper-discovery-service/internal/server/http"
)

const metricsNamespace = "nexus"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("paper-discovery-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(metricsNamespace)

	// The catalog outlives the signal context so in-flight requests can
	// finish during shutdown.
	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	cat := catalog.New(logger).WithMetrics(metrics)
	catalogDone := make(chan struct{})
	go func() {
		defer close(catalogDone)
		_ = cat.Run(runCtx)
	}()

	// Shared paper store (optional).
	var (
		db        *database.DB
		paperRepo *repository.PgPaperRepository
	)
	if cfg.Database.Enabled {
		db, err = database.New(ctx, &cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		logger.Info().Msg("database connection established")

		if cfg.Database.MigrationAutoRun {
			if err := migrateUp(db, cfg.Database.MigrationPath, logger); err != nil {
				return err
			}
		}
		paperRepo = repository.NewPgPaperRepository(db)
	}

	// Redis backs the resolution cache and the preference store (optional).
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewClient(ctx, cache.ClientConfig{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer closeQuietly(redisClient, "redis", logger)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis connection established")
	}

	// Metadata resolution.
	sourceSet := sources.Build(cfg, metrics, logger)
	resolverOpts := []resolver.Option{resolver.WithMetrics(metrics)}
	if redisClient != nil {
		resolverOpts = append(resolverOpts, resolver.WithCache(cache.NewResolutionCache(redisClient, cfg.Redis.CacheTTL)))
	}
	res := resolver.New(resolver.Config{Timeout: cfg.Resolver.Timeout}, sourceSet.Registry, logger, resolverOpts...)

	// Per-user state.
	var store preferences.Store = preferences.NewMemoryStore()
	if redisClient != nil {
		store = preferences.NewRedisStore(redisClient, cfg.Redis.KeyPrefix)
	}
	submissionStore := preferences.NewSubmissionStore(store)

	prefOpts := []preferences.Option{preferences.WithMetrics(metrics)}
	submitOpts := []catalog.SubmitterOption{
		catalog.WithSubmissionStore(submissionStore),
		catalog.WithSubmissionMetrics(metrics),
	}
	if paperRepo != nil {
		prefOpts = append(prefOpts, preferences.WithUpvotePersister(paperRepo))
		submitOpts = append(submitOpts, catalog.WithPaperWriter(paperRepo))
	}

	// Realtime insert feed (optional).
	if cfg.Kafka.Enabled {
		feedCfg := feed.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}
		if feedCfg.GroupID == "" {
			feedCfg.GroupID = "nexus-" + uuid.NewString()
		}

		publisher := feed.NewPublisher(feedCfg, logger)
		defer closeQuietly(publisher, "feed publisher", logger)
		submitOpts = append(submitOpts, catalog.WithPublisher(publisher))

		listener := feed.NewListener(feedCfg, cat, logger)
		defer closeQuietly(listener, "feed listener", logger)
		go func() {
			if err := listener.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("feed listener stopped")
			}
		}()
		logger.Info().Strs("brokers", feedCfg.Brokers).Str("topic", feedCfg.Topic).Msg("insert feed enabled")
	}

	submitter := catalog.NewSubmitter(cat, logger, submitOpts...)
	prefs := preferences.NewService(store, cat, logger, prefOpts...)

	// Chat assistant (optional provider).
	provider, err := assistant.NewProvider(ctx, assistantConfig(cfg.Assistant))
	switch {
	case errors.Is(err, assistant.ErrNotConfigured):
		logger.Info().Msg("assistant provider not configured")
	case err != nil:
		return fmt.Errorf("create assistant provider: %w", err)
	default:
		if closer, ok := provider.(io.Closer); ok {
			defer closeQuietly(closer, "assistant provider", logger)
		}
		logger.Info().Str("provider", provider.Provider()).Str("model", provider.Model()).Msg("assistant provider configured")
	}
	chat := assistant.NewService(provider, cat, logger).WithMetrics(metrics)

	// Catalog bootstrap runs in the background; /readyz reports progress.
	aggregator := newAggregator(cfg, paperRepo, sourceSet, submissionStore, logger)
	go func() {
		bootCtx, cancel := context.WithTimeout(runCtx, cfg.Catalog.BootstrapTimeout)
		defer cancel()
		if err := aggregator.Bootstrap(bootCtx, cat); err != nil {
			logger.Error().Err(err).Msg("catalog bootstrap failed")
			return
		}
		logger.Info().Int("papers", cat.Snapshot().Len()).Msg("catalog bootstrapped")
	}()

	deps := httpserver.Deps{
		Resolver:    res,
		Catalog:     cat,
		Submitter:   submitter,
		Preferences: prefs,
		Assistant:   chat,
	}
	if db != nil {
		deps.Health = db
	}

	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
	}
	httpSrv := httpserver.NewServer(httpCfg, deps, logger)

	// Prometheus metrics on a separate port if configured.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	errCh := make(chan error, 2)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().Str("http_address", httpCfg.Address)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("paper-discovery-service is ready")

	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down paper-discovery-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	cancelRun()
	<-catalogDone

	logger.Info().Msg("paper-discovery-service shutdown complete")
	return nil
}

// migrateUp applies pending migrations over the server's pool.
func migrateUp(db *database.DB, path string, logger zerolog.Logger) error {
	migrator, err := database.NewMigrator(db, path, logger)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer closeQuietly(migrator, "migrator", logger)

	if err := migrator.Up(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// newAggregator wires the bootstrap providers. Disabled providers stay nil
// interfaces so the aggregator skips them.
func newAggregator(cfg *config.Config, repo *repository.PgPaperRepository, set sources.Set, submissions catalog.SubmissionLister, logger zerolog.Logger) *catalog.Aggregator {
	var (
		stored   catalog.PaperLister
		listings catalog.CategoryLister
	)
	if repo != nil {
		stored = repo
	}
	if cfg.Catalog.ListingsEnabled && set.ArXiv != nil {
		listings = set.ArXiv
	}

	return catalog.NewAggregator(catalog.AggregatorConfig{
		Categories:     cfg.Catalog.Categories,
		MaxPerCategory: cfg.PaperSources.ArXiv.MaxResults,
		GeneratedCount: cfg.Catalog.GeneratedCount,
	}, stored, listings, submissions, logger)
}

func assistantConfig(c config.AssistantConfig) assistant.FactoryConfig {
	return assistant.FactoryConfig{
		Provider:    strings.ToLower(strings.TrimSpace(c.Provider)),
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
		MaxRetries:  c.MaxRetries,
		Anthropic: assistant.AnthropicConfig{
			APIKey:  c.Anthropic.APIKey,
			Model:   c.Anthropic.Model,
			BaseURL: c.Anthropic.BaseURL,
		},
		OpenAI: assistant.OpenAIConfig{
			APIKey:  c.OpenAI.APIKey,
			Model:   c.OpenAI.Model,
			BaseURL: c.OpenAI.BaseURL,
		},
		Vertex: assistant.VertexConfig{
			ProjectID: c.Vertex.Project,
			Location:  c.Vertex.Location,
			Model:     c.Vertex.Model,
		},
	}
}

func closeQuietly(c io.Closer, name string, logger zerolog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error().Err(err).Str("resource", name).Msg("close failed")
	}
}
