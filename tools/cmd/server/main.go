package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/adinsights/internal/api"
	"github.com/patrickwarner/adinsights/internal/cache"
	"github.com/patrickwarner/adinsights/internal/config"
	"github.com/patrickwarner/adinsights/internal/dataset"
	"github.com/patrickwarner/adinsights/internal/db"
	"github.com/patrickwarner/adinsights/internal/observability"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdownTracing, err := observability.InitTracing(ctx, logger, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Version:     version,
			Environment: cfg.Env,
			Endpoint:    cfg.TracingEndpoint,
			SampleRate:  cfg.TracingSampleRate,
		})
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdownTracing()
	}

	thresholds, err := cfg.Thresholds()
	if err != nil {
		return fmt.Errorf("default targets: %w", err)
	}
	scale, err := cfg.Scale()
	if err != nil {
		return err
	}
	if len(scale) > 0 {
		logger.Info("Channel scaling enabled", zap.Stringer("scale", scale))
	}

	src, closeSrc, err := db.OpenSource(cfg)
	if err != nil {
		return fmt.Errorf("open %s source: %w", cfg.DataSource, err)
	}
	defer closeSrc()

	metricsRegistry := observability.NewPrometheusRegistry()

	store := dataset.NewStore(src, scale, logger, metricsRegistry)
	// The server starts even when the first load fails; /health reports
	// loading until a reload succeeds.
	if _, err := store.Reload(ctx); err != nil {
		logger.Error("initial dataset load", zap.Error(err))
	}
	go store.Watch(ctx, cfg.ReloadInterval)

	var viewCache *cache.ViewCache
	if cfg.CacheEnabled {
		rs, err := db.InitRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect redis: %w", err)
		}
		defer rs.Close()
		viewCache = cache.New(rs.Client, cfg.CacheTTL, logger, metricsRegistry)
	}

	r := mux.NewRouter()
	srvDeps := api.NewServer(logger, store, viewCache, metricsRegistry, thresholds)
	srvDeps.Routes(r)

	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, cfg.ServiceName),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Insights server running",
		zap.String("addr", addr),
		zap.String("source", src.Name()),
		zap.Bool("cache", viewCache != nil))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
