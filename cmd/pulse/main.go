package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	corecfg "github.com/aevon-lab/pulse/internal/core/config"
	"github.com/aevon-lab/pulse/internal/core/storage/postgres"
	"github.com/aevon-lab/pulse/internal/geo"
	"github.com/aevon-lab/pulse/internal/ingestion"
	"github.com/aevon-lab/pulse/internal/migrations"
	"github.com/aevon-lab/pulse/internal/observability"
	"github.com/aevon-lab/pulse/internal/projection"
	"github.com/aevon-lab/pulse/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "pulse.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Server.Mode))
	slog.Info("Loaded config",
		"addr", cfg.Server.Addr(),
		"mode", cfg.Server.Mode,
		"geocoding_url", cfg.Geocoding.URL,
		"geocode_cache", cfg.Geocoding.Cache.Backend,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize Metrics
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = observability.NewMetrics(registry)
	}

	// 2.1. Initialize Tracing
	tracing := cfg.Observability.Tracing
	tracerProvider, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     tracing.Enabled,
		Endpoint:    tracing.Endpoint,
		Insecure:    tracing.Insecure,
		ServiceName: tracing.ServiceName,
		SampleRatio: tracing.SampleRatio,
	})
	if err != nil {
		slog.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownTracing(shutdownCtx, tracerProvider); err != nil {
			slog.Error("Failed to flush traces", "error", err)
		}
	}()

	// 3. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(cfg.Database.DSN, postgres.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()
	metrics.RegisterDBStats(dbAdapter.DB())

	// 3.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	if err := dbAdapter.Prepare(ctx); err != nil {
		slog.Error("Failed to prepare statements", "error", err)
		os.Exit(1)
	}

	aggregates := postgres.NewAggregateAdapter(dbAdapter.DB())

	// 4. Initialize Geocoding
	cache, err := geo.NewCache(ctx, geo.CacheConfig{
		Backend:  cfg.Geocoding.Cache.Backend,
		Size:     cfg.Geocoding.Cache.Size,
		TTL:      cfg.Geocoding.Cache.TTL,
		RedisURL: cfg.Geocoding.Cache.RedisURL,
	})
	if err != nil {
		slog.Error("Failed to initialize geocode cache", "error", err)
		os.Exit(1)
	}
	if closer, ok := cache.(io.Closer); ok {
		defer closer.Close()
	}

	geocoder := geo.NewCachedGeocoder(
		geo.NewNominatimClient(geo.NominatimConfig{
			URL:            cfg.Geocoding.URL,
			Timeout:        cfg.Geocoding.Timeout,
			UserAgent:      cfg.Geocoding.UserAgent,
			AcceptLanguage: cfg.Geocoding.AcceptLanguage,
		}, metrics),
		cache,
		metrics,
	)

	// 5. Initialize Ingestion and Projection
	ingestionSvc := ingestion.NewService(dbAdapter, geocoder, metrics, cfg.Server.MaxBodySizeMB)
	projectionSvc := projection.NewService(aggregates, metrics)

	// 6. Initialize Server
	srv := server.New(server.Options{
		Addr:        cfg.Server.Addr(),
		Mode:        cfg.Server.Mode,
		MetricsPath: cfg.Observability.MetricsPath,
	}, dbAdapter, metrics)
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// newLogger uses text output in debug mode and JSON otherwise.
func newLogger(mode string) *slog.Logger {
	if mode == "debug" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
