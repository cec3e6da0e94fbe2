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

	"github.com/couchcryptid/subway-facility-dashboard/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/subway-facility-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/subway-facility-dashboard/internal/adapter/seoul"
	"github.com/couchcryptid/subway-facility-dashboard/internal/config"
	"github.com/couchcryptid/subway-facility-dashboard/internal/dashboard"
	"github.com/couchcryptid/subway-facility-dashboard/internal/dataset"
	"github.com/couchcryptid/subway-facility-dashboard/internal/observability"
	"github.com/couchcryptid/subway-facility-dashboard/internal/presenter"
	"github.com/joho/godotenv"
)

// warmTimeout bounds one scheduled refresh of all four datasets.
const warmTimeout = 5 * time.Minute

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if errors.Is(err, config.ErrMissingAPIKey) {
		fmt.Fprintln(os.Stderr, config.SetupMessage)
		os.Exit(1)
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	renderer, err := presenter.NewRenderer()
	if err != nil {
		logger.Error("failed to load page template", "error", err)
		os.Exit(1)
	}

	// Refresh events are feature-flagged via KAFKA_BROKERS.
	var notifier dataset.RefreshNotifier
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled() {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaRefreshTopic, logger)
		notifier = publisher
		logger.Info("refresh events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaRefreshTopic)
	} else {
		logger.Info("refresh events disabled")
	}

	client := seoul.NewClient(cfg.SeoulAPIKey, cfg.SeoulBaseURL, cfg.SeoulTimeout, metrics, logger)
	loader := dataset.NewLoader(client, dataset.DefaultSources(cfg.PageSize, cfg.ClosurePageSize), notifier, nil, metrics, logger)
	cache := dataset.NewCache(loader.Load, cfg.CacheTTL, nil, metrics, logger)
	svc := dashboard.NewService(cache, metrics, logger)

	var warmer *dataset.Warmer
	if cfg.CacheWarmSchedule != "" {
		warmer, err = dataset.NewWarmer(cfg.CacheWarmSchedule, cache, warmTimeout, logger)
		if err != nil {
			logger.Error("failed to schedule cache warmer", "error", err)
			os.Exit(1)
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, renderer, cache, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start cache warmer.
	if warmer != nil {
		warmer.Start()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if warmer != nil {
		if err := warmer.Stop(shutdownCtx); err != nil {
			logger.Error("cache warmer stop error", "error", err)
		}
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
