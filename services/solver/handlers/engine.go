// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP handlers of the solver service.
package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
	"github.com/AleutianAI/SubsetSum/services/solver/cache"
	"github.com/AleutianAI/SubsetSum/services/solver/observability"
	"github.com/AleutianAI/SubsetSum/services/solver/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EngineConfig configures an Engine. Every field is optional.
type EngineConfig struct {
	// Limits bound each calculation. Nil means subsetsum.DefaultLimits();
	// a zero Limits is unlimited.
	Limits *subsetsum.Limits

	// Parallel enumerates sign partitions concurrently.
	Parallel bool

	// Timeout bounds one calculation. Zero means no timeout beyond the
	// request's own context.
	Timeout time.Duration

	// Cache stores completed results. Nil disables caching.
	Cache *cache.Cache

	// Observer receives calculation events.
	Observer subsetsum.Observer

	// Metrics records cache lookups. Nil disables them.
	Metrics *observability.SolverMetrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Engine runs calculations for the handlers: it resolves the strategy,
// consults the result cache and applies limits and the timeout.
//
// # Thread Safety
//
// Safe for concurrent use.
type Engine struct {
	limits   subsetsum.Limits
	parallel bool
	timeout  time.Duration
	cache    *cache.Cache
	observer subsetsum.Observer
	metrics  *observability.SolverMetrics
	logger   *slog.Logger
}

// NewEngine creates an Engine from cfg.
func NewEngine(cfg EngineConfig) *Engine {
	limits := subsetsum.DefaultLimits()
	if cfg.Limits != nil {
		limits = *cfg.Limits
	}
	if cfg.Observer == nil {
		cfg.Observer = subsetsum.NopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		limits:   limits,
		parallel: cfg.Parallel,
		timeout:  cfg.Timeout,
		cache:    cfg.Cache,
		observer: cfg.Observer,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
}

// Outcome is a finished calculation as seen by a handler.
type Outcome struct {
	Result  subsetsum.Result
	Cached  bool
	Elapsed time.Duration
}

// Solve runs one calculation.
//
// # Inputs
//
//   - ctx: Request context. Cancellation aborts the calculation.
//   - values: The input list. Not modified.
//   - target: The target sum.
//   - strategy: Strategy name. Empty means split_sign.
//
// # Outputs
//
//   - Outcome: The result, whether it came from the cache, and the time taken.
//   - error: subsetsum.ErrUnknownStrategy, ErrInputTooLarge or ErrAborted.
//
// # Limitations
//
//   - Cache failures are logged and otherwise ignored.
func (e *Engine) Solve(ctx context.Context, values []int, target int, strategy subsetsum.StrategyName) (Outcome, error) {
	start := time.Now()
	if strategy == "" {
		strategy = subsetsum.StrategySplitSign
	}

	ctx, span := telemetry.StartSpan(ctx, "Engine.Solve", trace.WithAttributes(
		attribute.Int("subsetsum.elements", len(values)),
		attribute.String("subsetsum.strategy", string(strategy)),
	))
	defer span.End()

	s, err := subsetsum.StrategyByName(strategy,
		subsetsum.WithLimits(e.limits),
		subsetsum.WithObserver(e.observer),
		subsetsum.WithParallel(e.parallel),
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return Outcome{}, err
	}

	var key []byte
	if e.cache != nil {
		key = cache.Key(values, target, strategy, e.limits)
		res, hit, err := e.cache.Get(key)
		if e.metrics != nil {
			e.metrics.RecordCacheLookup(hit, err)
		}
		if err != nil {
			e.logger.Warn("result cache lookup failed", "error", err)
		}
		if hit {
			span.SetAttributes(attribute.Bool("subsetsum.cached", true))
			telemetry.SetSpanOK(span)
			return Outcome{Result: res, Cached: true, Elapsed: time.Since(start)}, nil
		}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	res, err := s.Solve(ctx, values, target)
	if err != nil {
		telemetry.RecordError(span, err)
		return Outcome{}, err
	}

	if e.cache != nil {
		if _, err := e.cache.Put(key, res); err != nil {
			e.logger.Warn("result cache store failed", "error", err)
		}
	}
	telemetry.SetSpanOK(span)
	return Outcome{Result: res, Elapsed: time.Since(start)}, nil
}
