// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and instrumentation for the solver.
//
// # Description
//
// This package implements Prometheus metrics for monitoring the solver
// service. Metrics include:
//   - Request counters and latency (by endpoint and status)
//   - Calculation outcomes and duration (by strategy)
//   - Subsets enumerated per partition kind
//   - Result cache hits and misses
//
// SolverMetrics also implements subsetsum.Observer, so a calculation reports
// its own progress when the metrics are passed via subsetsum.WithObserver.
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint of the solver.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"context"
	"errors"
	"time"

	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "subsetsum"

// Subsystem for request and calculation metrics
const solverSubsystem = "solver"

// SolverMetrics holds all Prometheus metrics of the solver service.
//
// # Fields
//
//   - RequestsTotal: Counter of HTTP requests by endpoint and status
//   - RequestDurationSeconds: Histogram of request latency
//   - InFlightRequests: Gauge of requests being served
//   - CalculationsTotal: Counter of calculations by strategy and outcome
//   - CalculationDurationSeconds: Histogram of successful calculations
//   - SubsetsEnumeratedTotal: Counter of subsets by partition kind
//   - MatchesTotal: Counter of matches returned by strategy
//   - CacheLookupsTotal: Counter of result cache lookups by result
//   - ErrorsTotal: Counter of errors by endpoint and error code
//
// # Thread Safety
//
// All operations are thread-safe.
type SolverMetrics struct {
	// RequestsTotal counts requests by endpoint and status.
	// Labels: endpoint (subsets, legacy), status (matched, no_match, error)
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures request latency.
	// Labels: endpoint
	RequestDurationSeconds *prometheus.HistogramVec

	// InFlightRequests tracks requests currently being served.
	InFlightRequests prometheus.Gauge

	// CalculationsTotal counts calculations.
	// Labels: strategy (split_sign, naive), outcome (matched, no_match, rejected, aborted, error)
	CalculationsTotal *prometheus.CounterVec

	// CalculationDurationSeconds measures successful calculations.
	// Labels: strategy
	CalculationDurationSeconds *prometheus.HistogramVec

	// SubsetsEnumeratedTotal counts enumerated subsets.
	// Labels: partition (positive, negative, zero, all)
	SubsetsEnumeratedTotal *prometheus.CounterVec

	// MatchesTotal counts matching subsets returned.
	// Labels: strategy
	MatchesTotal *prometheus.CounterVec

	// CacheLookupsTotal counts result cache lookups.
	// Labels: result (hit, miss, error)
	CacheLookupsTotal *prometheus.CounterVec

	// ErrorsTotal counts errors by endpoint and code.
	// Labels: endpoint, error_code
	ErrorsTotal *prometheus.CounterVec
}

// NewSolverMetrics creates and registers all solver metrics with reg.
//
// # Inputs
//
//   - reg: Registry to register with. Nil means prometheus.DefaultRegisterer.
//
// # Outputs
//
//   - *SolverMetrics: The initialized metrics.
//
// # Limitations
//
//   - Panics if called twice with the same registry (duplicate registration).
func NewSolverMetrics(reg prometheus.Registerer) *SolverMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &SolverMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "requests_total",
				Help:      "Total number of solver requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Solver request latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"endpoint"},
		),

		InFlightRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "in_flight_requests",
				Help:      "Number of requests currently being served",
			},
		),

		CalculationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "calculations_total",
				Help:      "Total calculations by strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),

		CalculationDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "calculation_duration_seconds",
				Help:      "Duration of successful calculations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"strategy"},
		),

		SubsetsEnumeratedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "subsets_enumerated_total",
				Help:      "Total subsets enumerated by partition kind",
			},
			[]string{"partition"},
		),

		MatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "matches_total",
				Help:      "Total matching subsets returned by strategy",
			},
			[]string{"strategy"},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "cache_lookups_total",
				Help:      "Result cache lookups by result",
			},
			[]string{"result"},
		),

		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: solverSubsystem,
				Name:      "errors_total",
				Help:      "Total errors by endpoint and error code",
			},
			[]string{"endpoint", "error_code"},
		),
	}
}

// =============================================================================
// Error Codes
// =============================================================================

// ErrorCode represents a categorized error type for metrics.
type ErrorCode string

const (
	// ErrorCodeValidation indicates a malformed or invalid request.
	ErrorCodeValidation ErrorCode = "validation"

	// ErrorCodeTooLarge indicates a partition over its size limit.
	ErrorCodeTooLarge ErrorCode = "too_large"

	// ErrorCodeAborted indicates an exhausted budget or a timeout.
	ErrorCodeAborted ErrorCode = "aborted"

	// ErrorCodeUnauthorized indicates a failed authentication.
	ErrorCodeUnauthorized ErrorCode = "unauthorized"

	// ErrorCodeRateLimited indicates a rejected request over the rate limit.
	ErrorCodeRateLimited ErrorCode = "rate_limited"

	// ErrorCodeInternal indicates internal server error.
	ErrorCodeInternal ErrorCode = "internal"
)

// =============================================================================
// Endpoint Names
// =============================================================================

// Endpoint represents a solver endpoint for metrics labeling.
type Endpoint string

const (
	// EndpointSubsets is the versioned JSON endpoint.
	EndpointSubsets Endpoint = "subsets"

	// EndpointLegacy is the original /subsetSum endpoint.
	EndpointLegacy Endpoint = "legacy"

	// EndpointOther labels requests outside the solve routes.
	EndpointOther Endpoint = "other"
)

// EndpointForPath maps a gin route path to its metrics label.
func EndpointForPath(path string) Endpoint {
	switch path {
	case "/v1/subsets":
		return EndpointSubsets
	case "/subsetSum":
		return EndpointLegacy
	default:
		return EndpointOther
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest records a served request.
//
// # Inputs
//
//   - endpoint: The endpoint that handled the request.
//   - status: matched, no_match or error.
//   - elapsed: Time spent serving the request.
func (m *SolverMetrics) RecordRequest(endpoint Endpoint, status string, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(string(endpoint), status).Inc()
	m.RequestDurationSeconds.WithLabelValues(string(endpoint)).Observe(elapsed.Seconds())
}

// RecordError records an error.
//
// # Inputs
//
//   - endpoint: The endpoint where the error occurred.
//   - code: The error type code.
func (m *SolverMetrics) RecordError(endpoint Endpoint, code ErrorCode) {
	m.ErrorsTotal.WithLabelValues(string(endpoint), string(code)).Inc()
}

// RecordCacheLookup records a result cache lookup.
func (m *SolverMetrics) RecordCacheLookup(hit bool, err error) {
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case hit:
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RequestStarted increments the in-flight gauge.
func (m *SolverMetrics) RequestStarted() {
	m.InFlightRequests.Inc()
}

// RequestEnded decrements the in-flight gauge.
func (m *SolverMetrics) RequestEnded() {
	m.InFlightRequests.Dec()
}

// ErrorCodeFor classifies a calculation error.
func ErrorCodeFor(err error) ErrorCode {
	switch {
	case errors.Is(err, subsetsum.ErrInputTooLarge):
		return ErrorCodeTooLarge
	case errors.Is(err, subsetsum.ErrAborted):
		return ErrorCodeAborted
	default:
		return ErrorCodeInternal
	}
}

// =============================================================================
// Calculation Observer
// =============================================================================

// Partitioned is a no-op; partition sizes show up in the enumeration counts.
func (m *SolverMetrics) Partitioned(context.Context, int, int, int) {}

// Enumerated adds the subsets of one partition.
func (m *SolverMetrics) Enumerated(_ context.Context, kind subsetsum.PartitionKind, subsets int, _ time.Duration) {
	m.SubsetsEnumeratedTotal.WithLabelValues(string(kind)).Add(float64(subsets))
}

// Completed records a successful calculation.
func (m *SolverMetrics) Completed(_ context.Context, strategy subsetsum.StrategyName, matches int, elapsed time.Duration) {
	outcome := "matched"
	if matches == 0 {
		outcome = "no_match"
	}
	m.CalculationsTotal.WithLabelValues(string(strategy), outcome).Inc()
	m.CalculationDurationSeconds.WithLabelValues(string(strategy)).Observe(elapsed.Seconds())
	m.MatchesTotal.WithLabelValues(string(strategy)).Add(float64(matches))
}

// Failed records a failed calculation.
func (m *SolverMetrics) Failed(_ context.Context, strategy subsetsum.StrategyName, err error) {
	outcome := "error"
	switch ErrorCodeFor(err) {
	case ErrorCodeTooLarge:
		outcome = "rejected"
	case ErrorCodeAborted:
		outcome = "aborted"
	}
	m.CalculationsTotal.WithLabelValues(string(strategy), outcome).Inc()
}

var _ subsetsum.Observer = (*SolverMetrics)(nil)
