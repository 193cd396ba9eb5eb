// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// =============================================================================
// Init
// =============================================================================

func TestInit_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	_, err := Init(nil, DefaultConfig(), prometheus.NewRegistry())
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInit_NoExporters(t *testing.T) {
	cfg := Config{ServiceName: "test", TraceExporter: ExporterNone, MetricExporter: ExporterNone}

	shutdown, err := Init(context.Background(), cfg, prometheus.NewRegistry())

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_PrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := Config{ServiceName: "test", TraceExporter: ExporterNone, MetricExporter: ExporterPrometheus}

	shutdown, err := Init(context.Background(), cfg, reg)

	require.NoError(t, err)
	defer shutdown(context.Background())

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families, "exporter should register target_info")
}

func TestInit_UnknownTraceExporter(t *testing.T) {
	cfg := Config{ServiceName: "test", TraceExporter: "zipkin", MetricExporter: ExporterNone}

	_, err := Init(context.Background(), cfg, prometheus.NewRegistry())

	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInit_UnknownMetricExporter(t *testing.T) {
	cfg := Config{ServiceName: "test", TraceExporter: ExporterNone, MetricExporter: "statsd"}

	_, err := Init(context.Background(), cfg, prometheus.NewRegistry())

	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestDefaultConfig_EnvOverrides(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "custom")
	t.Setenv("OTEL_TRACES_EXPORTER", ExporterStdout)

	cfg := DefaultConfig()

	assert.Equal(t, "custom", cfg.ServiceName)
	assert.Equal(t, ExporterStdout, cfg.TraceExporter)
	assert.Equal(t, ExporterPrometheus, cfg.MetricExporter)
}

// =============================================================================
// Span helpers
// =============================================================================

func newRecordingTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, sr
}

func TestRecordError_SetsStatus(t *testing.T) {
	tp, sr := newRecordingTracer(t)
	_, span := tp.Tracer("test").Start(context.Background(), "op")

	RecordError(span, errors.New("boom"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestRecordError_NilIsNoop(t *testing.T) {
	tp, sr := newRecordingTracer(t)
	_, span := tp.Tracer("test").Start(context.Background(), "op")

	RecordError(span, nil)
	RecordError(nil, errors.New("ignored"))
	span.End()

	assert.Equal(t, codes.Unset, sr.Ended()[0].Status().Code)
}

func TestSetSpanOK(t *testing.T) {
	tp, sr := newRecordingTracer(t)
	_, span := tp.Tracer("test").Start(context.Background(), "op")

	SetSpanOK(span)
	SetSpanOK(nil)
	span.End()

	assert.Equal(t, codes.Ok, sr.Ended()[0].Status().Code)
}

// =============================================================================
// SpanObserver
// =============================================================================

func newObserver(t *testing.T) (*SpanObserver, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	obs, err := NewSpanObserver(mp.Meter("test"))
	require.NoError(t, err)
	return obs, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestSpanObserver_RecordsEventsAndMetrics(t *testing.T) {
	obs, reader := newObserver(t)
	tp, sr := newRecordingTracer(t)
	ctx, span := tp.Tracer("test").Start(context.Background(), "solve")

	res, err := subsetsum.Calculate(ctx, []int{-2, 3, -1, 4, 0}, 1, subsetsum.WithObserver(obs))
	span.End()

	require.NoError(t, err)
	require.True(t, res.Found())

	ended := sr.Ended()
	require.Len(t, ended, 1)
	var names []string
	for _, ev := range ended[0].Events() {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"partitioned", "enumerated", "enumerated", "enumerated"}, names)

	metrics := collect(t, reader)
	calcs, ok := metrics["subsetsum.calculations"]
	require.True(t, ok)
	sum, ok := calcs.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
	outcomeAttr, _ := sum.DataPoints[0].Attributes.Value("outcome")
	assert.Equal(t, "matched", outcomeAttr.AsString())

	subsets, ok := metrics["subsetsum.partition.subsets"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Len(t, subsets.DataPoints, 3, "one series per partition kind")

	_, ok = metrics["subsetsum.calculation.duration"]
	assert.True(t, ok)
}

func TestSpanObserver_Failure(t *testing.T) {
	obs, reader := newObserver(t)
	tp, sr := newRecordingTracer(t)
	ctx, span := tp.Tracer("test").Start(context.Background(), "solve")

	_, err := subsetsum.Calculate(ctx, make([]int, 17), 0, subsetsum.WithObserver(obs))
	span.End()

	require.ErrorIs(t, err, subsetsum.ErrInputTooLarge)
	assert.Equal(t, codes.Error, sr.Ended()[0].Status().Code)

	sum := collect(t, reader)["subsetsum.calculations"].Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	outcomeAttr, _ := sum.DataPoints[0].Attributes.Value("outcome")
	assert.Equal(t, "rejected", outcomeAttr.AsString())
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		matches int
		want    string
	}{
		{"matched", nil, 2, "matched"},
		{"no match", nil, 0, "no_match"},
		{"too large", &subsetsum.SizeError{}, 0, "rejected"},
		{"aborted", &subsetsum.AbortError{Reason: subsetsum.AbortCanceled, Err: context.Canceled}, 0, "aborted"},
		{"other", errors.New("x"), 0, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outcome(tt.err, tt.matches))
		})
	}
}
