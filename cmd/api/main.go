package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"itscare/internal/api"
	"itscare/internal/config"
	"itscare/internal/database"
	"itscare/internal/domain"
	"itscare/internal/events"
	"itscare/internal/logging"
	"itscare/internal/metrics"
	"itscare/internal/repository"
	"itscare/internal/service"
	"itscare/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := buildSummaryCache(cfg, redisClient, &logger)

	eventBus := events.NewEventBus()
	subscribeEventLog(eventBus, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshots := startSnapshotWorker(ctx, cfg, db, &logger)

	bookings := service.NewBookingService(db, cache, eventBus, snapshots, cfg.Commission.Policy(), &logger)
	httpServer := api.NewHTTPServer(cfg.API, bookings, &logger)

	startMetrics(ctx, cfg, &logger)

	return serveHTTP(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// buildSummaryCache wires the redis-backed summary cache with an
// in-memory fallback; without redis the memory cache runs alone.
func buildSummaryCache(cfg *config.Config, client *redis.Client, logger *zerolog.Logger) domain.SummaryCache {
	ttl := time.Duration(cfg.Redis.SummaryTTLHours) * time.Hour
	memory := repository.NewMemorySummaryCache(ttl)
	if client == nil {
		return memory
	}
	primary := repository.NewRedisSummaryCache(client, ttl)
	return repository.NewFailoverSummaryCache(primary, memory, logger)
}

func subscribeEventLog(bus *events.EventBus, logger *zerolog.Logger) {
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingUpdated,
		events.EventBookingDeleted,
		events.EventBookingPaidToggled,
		events.EventBookingsImported,
		events.EventBookingsCleared,
	} {
		bus.Subscribe(eventType, func(e *events.Event) error {
			logger.Info().Str("event", e.Type).RawJSON("payload", e.Payload).Msg("domain event")
			return nil
		})
	}
}

func startSnapshotWorker(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) domain.SnapshotWorker {
	if !cfg.Backup.Enabled {
		return nil
	}

	w := worker.NewSnapshotWorker(
		db,
		cfg.Commission.Policy(),
		cfg.Exports.Path,
		time.Duration(cfg.Backup.DebounceSecs)*time.Second,
		time.Duration(cfg.Backup.RetentionDays)*24*time.Hour,
		worker.RetryPolicy{},
		logger,
	)
	go w.Start(ctx)
	return w
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Int("port", port).Msg("metrics server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}

func serveHTTP(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("server stopped")
	return nil
}
