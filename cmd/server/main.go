package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"agedist/internal/demographics/chart"
	"agedist/internal/demographics/clients/randomuser"
	"agedist/internal/demographics/handler"
	"agedist/internal/demographics/service"
	"agedist/internal/demographics/tracer"
	"agedist/internal/platform/config"
	"agedist/internal/platform/health"
	"agedist/internal/platform/httpserver"
	"agedist/internal/platform/logger"
	"agedist/internal/platform/metrics"
	"agedist/internal/platform/middleware"
	"agedist/internal/visits"
)

const (
	requestTimeout   = 90 * time.Second
	poolStatInterval = 15 * time.Second
	shutdownTimeout  = 10 * time.Second
)

// main wires dependencies, exposes the router and keeps the server lifecycle
// small. Domain logic lives in internal/demographics and internal/visits.
func main() {
	cfg, err := config.Load()
	log := logger.New(cfg.Environment)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log.Info("initializing agedist",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"randomuser_base_url", cfg.RandomUser.BaseURL,
		"results", cfg.RandomUser.Results,
		"visits_backend", cfg.Visits.Backend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openVisitStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open visit store", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	m := metrics.New()
	tr := tracer.NewOTel()

	counter := visits.NewCounter(backend.store,
		visits.WithKey(cfg.Visits.Key),
		visits.WithPeriod(cfg.Visits.Period),
		visits.WithLogger(log),
	)
	if err := counter.Init(ctx); err != nil {
		log.Warn("failed to initialise visit counter", "error", err)
	}

	client := randomuser.New(cfg.RandomUser, randomuser.WithTracer(tr))
	svc := service.New(client,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithTracer(tr),
		service.WithTopN(cfg.TopN),
	)
	pageHandler := handler.New(svc, counter, log,
		handler.WithMetrics(m),
		handler.WithChartHandle(chart.NewHandle(chart.WithTracer(tr))),
	)

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("visits", backend.health)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))
	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		pageHandler.Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if backend.redis != nil {
		g.Go(func() error {
			return backend.redis.RunPoolStats(gctx, poolStatInterval)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		backend.Close()
		os.Exit(1)
	}
	log.Info("server stopped")
}
