// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package solver provides the subset-sum HTTP service.
//
// # Description
//
// The solver service exposes pkg/subsetsum over HTTP:
//   - POST /v1/subsets: JSON request and response with indices and stats
//   - POST /subsetSum: the original wire format
//   - GET /health, GET /test: liveness
//   - GET /metrics: Prometheus metrics
//
// # Usage
//
//	cfg, err := solver.LoadConfig(path)
//	svc, err := solver.New(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	return svc.Run(ctx)
//
// # Extension Points
//
// Authentication and audit logging are pluggable via extensions.ServiceOptions.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/AleutianAI/SubsetSum/pkg/extensions"
	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
	"github.com/AleutianAI/SubsetSum/services/solver/cache"
	"github.com/AleutianAI/SubsetSum/services/solver/handlers"
	"github.com/AleutianAI/SubsetSum/services/solver/middleware"
	"github.com/AleutianAI/SubsetSum/services/solver/observability"
	"github.com/AleutianAI/SubsetSum/services/solver/routes"
	"github.com/AleutianAI/SubsetSum/services/solver/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// Service Interface
// =============================================================================

// Service is the solver HTTP service.
type Service interface {
	// Run listens on the configured port and serves until ctx is done,
	// then shuts down gracefully and releases resources.
	//
	// # Outputs
	//
	//   - error: Non-nil if the server fails to start or stops abnormally.
	//     A shutdown triggered by ctx returns nil.
	Run(ctx context.Context) error

	// Serve is Run on a caller-provided listener.
	Serve(ctx context.Context, ln net.Listener) error

	// Router returns the underlying Gin engine for testing.
	//
	// # Limitations
	//
	//   - Should not be used to modify routes after construction
	Router() *gin.Engine

	// Close releases the cache and flushes telemetry. Run calls it on
	// exit; it is safe to call more than once.
	Close() error
}

// =============================================================================
// Service Implementation
// =============================================================================

type service struct {
	config            Config
	opts              extensions.ServiceOptions
	router            *gin.Engine
	registry          *prometheus.Registry
	metrics           *observability.SolverMetrics
	cache             *cache.Cache
	telemetryShutdown func(context.Context) error
	closeOnce         sync.Once
	closeErr          error
}

// New creates a solver service.
//
// # Description
//
// Applies config defaults, then initializes telemetry, metrics, the result
// cache and the router. On failure everything already initialized is
// released.
//
// # Inputs
//
//   - cfg: Service configuration. Zero fields take defaults.
//   - opts: Extension options. Nil uses defaults, upgraded to API key auth
//     when cfg.APIKeys is set.
//
// # Outputs
//
//   - Service: Ready to Run.
//   - error: Invalid config or an initialization failure.
func New(cfg Config, opts *extensions.ServiceOptions) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	if opts != nil {
		s.opts = opts.Normalize()
	} else {
		s.opts = extensions.DefaultOptions()
		if len(s.config.APIKeys) > 0 {
			s.opts = s.opts.WithAuth(extensions.NewAPIKeyProvider(s.config.APIKeys))
		}
	}

	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = observability.NewSolverMetrics(s.registry)

	shutdown, err := telemetry.Init(context.Background(), s.config.Telemetry, s.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	s.telemetryShutdown = shutdown

	spanObserver, err := telemetry.NewSpanObserver(otel.Meter(telemetry.TracerName))
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to create span observer: %w", err)
	}

	if s.config.Cache.Enabled {
		cacheCfg := s.config.Cache.Config
		cacheCfg.Logger = slog.Default().With("component", "cache")
		s.cache, err = cache.Open(cacheCfg)
		if err != nil {
			s.cleanup()
			return nil, fmt.Errorf("failed to open result cache: %w", err)
		}
		slog.Info("Result cache opened", "in_memory", cacheCfg.InMemory, "ttl", cacheCfg.TTL.String())
	}

	limits := s.config.SubsetLimits()
	engine := handlers.NewEngine(handlers.EngineConfig{
		Limits:   &limits,
		Parallel: s.config.Parallel,
		Timeout:  s.config.Timeout,
		Cache:    s.cache,
		Observer: subsetsum.MultiObserver(
			s.metrics,
			spanObserver,
			observability.NewLogObserver(slog.Default()),
		),
		Metrics: s.metrics,
		Logger:  slog.Default(),
	})

	s.initRouter(handlers.Deps{
		Engine:  engine,
		Audit:   s.opts.AuditLogger,
		Metrics: s.metrics,
	})

	return s, nil
}

// Run starts the HTTP server on the configured port.
func (s *service) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.cleanup()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *service) Serve(ctx context.Context, ln net.Listener) error {
	defer s.cleanup()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Starting solver server", "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		slog.Info("Shutting down solver server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *service) Router() *gin.Engine {
	return s.router
}

func (s *service) Close() error {
	s.cleanup()
	return s.closeErr
}

// =============================================================================
// Initialization Helpers
// =============================================================================

func (s *service) initRouter(deps handlers.Deps) {
	gin.SetMode(s.config.GinMode)
	s.router = gin.New()
	s.router.Use(
		gin.Recovery(),
		otelgin.Middleware(s.config.Telemetry.ServiceName),
		middleware.RequestID(),
		middleware.RequestLogger(slog.Default(), s.metrics),
	)

	routes.SetupRoutes(s.router, deps, routes.Options{
		Auth:      s.opts.AuthProvider,
		Audit:     s.opts.AuditLogger,
		Gatherer:  s.registry,
		RateLimit: s.config.RateLimit,
		Burst:     s.config.RateBurst,
	})
}

// cleanup releases resources. Only the first call does work.
func (s *service) cleanup() {
	s.closeOnce.Do(func() {
		var errs []error
		if s.cache != nil {
			errs = append(errs, s.cache.Close())
		}
		if s.opts.AuditLogger != nil {
			errs = append(errs, s.opts.AuditLogger.Flush(context.Background()))
		}
		if s.telemetryShutdown != nil {
			if err := s.telemetryShutdown(context.Background()); err != nil {
				slog.Error("failed to shut down telemetry", "error", err)
				errs = append(errs, err)
			}
		}
		s.closeErr = errors.Join(errs...)
	})
}

// =============================================================================
// Compile-time Interface Check
// =============================================================================

var _ Service = (*service)(nil)
