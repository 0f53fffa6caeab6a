package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/leadflow/internal/api/router"
	"github.com/wolfman30/leadflow/internal/app/bootstrap"
	"github.com/wolfman30/leadflow/internal/booking"
	appconfig "github.com/wolfman30/leadflow/internal/config"
	httpmiddleware "github.com/wolfman30/leadflow/internal/http/middleware"
	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/internal/observability/metrics"
	"github.com/wolfman30/leadflow/pkg/logging"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting leadflow API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.close()

	sweepStop := make(chan struct{})
	go app.limiter.Run(sweepStop)
	defer close(sweepStop)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type app struct {
	handler http.Handler
	limiter *httpmiddleware.RateLimiter
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	a := &app{}

	sites, err := appconfig.LoadSites(cfg.SitesFile)
	if err != nil {
		return nil, err
	}
	registry, err := appconfig.BuildRegistry(sites)
	if err != nil {
		return nil, err
	}
	if cfg.DefaultSite != "" {
		if _, err := registry.Lookup(cfg.DefaultSite); err != nil {
			return nil, fmt.Errorf("default site %q: %w", cfg.DefaultSite, err)
		}
	}
	logger.Info("sites loaded", "sites", registry.IDs())

	metricsHandler, bookingMetrics := setupMetrics()
	checks := map[string]router.HealthCheck{}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil && cfg.IsProduction() {
		// in-memory sessions are per process and would split across replicas
		return nil, errors.New("redis is required for booking sessions in production")
	}
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	store := bootstrap.BuildSessionStore(redisClient, cfg, logger)

	leadRepo, pool, err := bootstrap.BuildLeadRepository(ctx, cfg, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	if pool != nil {
		a.closers = append(a.closers, pool.Close)
		checks["postgres"] = pool.Ping
	}
	recorder := leads.NewRecorder(leadRepo, bootstrap.BuildNotifier(cfg, logger), cfg.LeadNotifyEmail, logger)

	service, err := booking.NewService(booking.ServiceConfig{
		Sites:    registry,
		Store:    store,
		Recorder: recorder,
		Metrics:  bookingMetrics,
		Logger:   logger,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set, admin lead endpoints disabled")
	}

	a.limiter = httpmiddleware.NewRateLimiter(cfg.SubmitRateLimit, cfg.SubmitRateBurst)
	a.handler = router.New(&router.Config{
		Logger:             logger,
		BookingHandler:     booking.NewHandler(service, logger),
		BookingPage:        booking.NewPage(service, logger),
		LeadsHandler:       leads.NewHandler(leadRepo, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultSite:        cfg.DefaultSite,
		SubmitLimiter:      a.limiter,
		HealthChecks:       checks,
	})
	return a, nil
}

func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBookingMetrics(reg)
}
