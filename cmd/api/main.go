package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/shoplane/storefront-backend/api/controllers"
	"github.com/shoplane/storefront-backend/api/routes"
	"github.com/shoplane/storefront-backend/internal/promo"
	"github.com/shoplane/storefront-backend/internal/storefront"
	"github.com/shoplane/storefront-backend/pkg/config"
	"github.com/shoplane/storefront-backend/pkg/db"
	"github.com/shoplane/storefront-backend/pkg/kv"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/metrics"
	"github.com/shoplane/storefront-backend/pkg/migrate"
	"github.com/shoplane/storefront-backend/pkg/redis"
	"github.com/shoplane/storefront-backend/pkg/upstream"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error

	store, readiness, err := buildStorage(runCtx, cfg, logg, &closers)
	if err != nil {
		logg.Error(runCtx, "failed to bootstrap storage", err)
		os.Exit(1)
	}

	metricsReg := prometheus.NewRegistry()
	upstreamMetrics := metrics.NewUpstreamMetrics(metricsReg)

	platform, err := upstream.New(cfg.Upstream, logg, upstreamMetrics)
	if err != nil {
		logg.Error(runCtx, "failed to build platform client", err)
		os.Exit(1)
	}
	readiness = append(readiness, controllers.NamedPinger{Name: "platform", Pinger: platform})

	promoCatalog := promo.NewCatalog(logg)
	if err := promoCatalog.Refresh(runCtx, platform); err != nil {
		// A cold start without promos still serves carts. The refresh
		// loop keeps retrying.
		logg.Warn(runCtx, "initial promo catalog refresh failed: "+err.Error())
	}
	go promoCatalog.RefreshLoop(runCtx, platform, cfg.Promo.RefreshInterval)

	taxRate, err := cfg.Pricing.TaxRate()
	if err != nil {
		logg.Error(runCtx, "invalid tax rate", err)
		os.Exit(1)
	}

	registry, err := storefront.NewRegistry(storefront.Deps{
		KV:       store,
		Platform: platform,
		Catalog:  promoCatalog,
		Currency: cfg.Pricing.Currency,
		TaxRate:  taxRate,
		Metrics:  upstreamMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(runCtx, "failed to build storefront registry", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(runCtx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Driver,
	})
	logg.Info(ctx, "starting storefront api")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, registry, platform, promoCatalog, metricsReg, readiness...),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "server shutdown failed", err)
	}

	registry.Close()

	var closeErr error
	for _, closeFn := range closers {
		closeErr = multierr.Append(closeErr, closeFn())
	}
	if closeErr != nil {
		logg.Error(ctx, "error closing dependencies", closeErr)
		os.Exit(1)
	}
}

// buildStorage wires the configured key-value backend and returns it with
// its readiness probes. Closers are appended for shutdown.
func buildStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger, closers *[]func() error) (kv.Store, []controllers.NamedPinger, error) {
	if cfg.Storage.IsDatabase() {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, err
		}
		*closers = append(*closers, dbClient.Close)

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			return nil, nil, err
		}

		store, err := kv.NewDatabaseStore(dbClient.DB())
		if err != nil {
			return nil, nil, err
		}
		return store, []controllers.NamedPinger{{Name: "database", Pinger: dbClient}}, nil
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return nil, nil, err
	}
	*closers = append(*closers, redisClient.Close)

	store, err := kv.NewRedisStore(redisClient)
	if err != nil {
		return nil, nil, err
	}
	return store, []controllers.NamedPinger{{Name: "redis", Pinger: redisClient}}, nil
}
