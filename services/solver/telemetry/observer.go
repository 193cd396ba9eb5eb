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
	"fmt"
	"time"

	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// SpanObserver reports calculation events as events on the span in the
// calculation's context and as OpenTelemetry metrics.
//
// # Thread Safety
//
// Safe for concurrent use; spans and instruments are.
type SpanObserver struct {
	calculations metric.Int64Counter
	duration     metric.Float64Histogram
	subsets      metric.Int64Histogram
}

// NewSpanObserver creates the observer's instruments on meter.
func NewSpanObserver(meter metric.Meter) (*SpanObserver, error) {
	calculations, err := meter.Int64Counter("subsetsum.calculations",
		metric.WithDescription("Calculations by strategy and outcome"))
	if err != nil {
		return nil, fmt.Errorf("create calculations counter: %w", err)
	}
	duration, err := meter.Float64Histogram("subsetsum.calculation.duration",
		metric.WithDescription("Wall time of successful calculations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	subsets, err := meter.Int64Histogram("subsetsum.partition.subsets",
		metric.WithDescription("Subsets enumerated per partition"))
	if err != nil {
		return nil, fmt.Errorf("create subsets histogram: %w", err)
	}
	return &SpanObserver{calculations: calculations, duration: duration, subsets: subsets}, nil
}

func (o *SpanObserver) Partitioned(ctx context.Context, positives, negatives, zeros int) {
	trace.SpanFromContext(ctx).AddEvent("partitioned", trace.WithAttributes(
		attribute.Int("subsetsum.positives", positives),
		attribute.Int("subsetsum.negatives", negatives),
		attribute.Int("subsetsum.zeros", zeros),
	))
}

func (o *SpanObserver) Enumerated(ctx context.Context, kind subsetsum.PartitionKind, subsets int, elapsed time.Duration) {
	trace.SpanFromContext(ctx).AddEvent("enumerated", trace.WithAttributes(
		attribute.String("subsetsum.partition", string(kind)),
		attribute.Int("subsetsum.subsets", subsets),
		attribute.Int64("subsetsum.elapsed_us", elapsed.Microseconds()),
	))
	o.subsets.Record(ctx, int64(subsets),
		metric.WithAttributes(attribute.String("partition", string(kind))))
}

func (o *SpanObserver) Completed(ctx context.Context, strategy subsetsum.StrategyName, matches int, elapsed time.Duration) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("subsetsum.matches", matches))
	attrs := metric.WithAttributes(
		attribute.String("strategy", string(strategy)),
		attribute.String("outcome", outcome(nil, matches)),
	)
	o.calculations.Add(ctx, 1, attrs)
	o.duration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("strategy", string(strategy))))
}

func (o *SpanObserver) Failed(ctx context.Context, strategy subsetsum.StrategyName, err error) {
	RecordError(trace.SpanFromContext(ctx), err)
	o.calculations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", string(strategy)),
		attribute.String("outcome", outcome(err, 0)),
	))
}

// outcome classifies a calculation for metric labels.
func outcome(err error, matches int) string {
	switch {
	case errors.Is(err, subsetsum.ErrInputTooLarge):
		return "rejected"
	case errors.Is(err, subsetsum.ErrAborted):
		return "aborted"
	case err != nil:
		return "error"
	case matches == 0:
		return "no_match"
	default:
		return "matched"
	}
}

var _ subsetsum.Observer = (*SpanObserver)(nil)
