// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package subsetsum

import (
	"context"
	"time"
)

// Observer receives events from a running calculation.
//
// # Description
//
// Observer is the only way the package reports what it is doing; it never
// logs on its own. Implementations back it with metrics, logs or traces.
//
// # Thread Safety
//
// With WithParallel enabled, Enumerated may be called from two goroutines
// at once. Implementations must be safe for concurrent use.
type Observer interface {
	// Partitioned is called once the input has been split by sign.
	Partitioned(ctx context.Context, positives, negatives, zeros int)

	// Enumerated is called after a partition has been fully enumerated.
	Enumerated(ctx context.Context, kind PartitionKind, subsets int, elapsed time.Duration)

	// Completed is called when a calculation finishes successfully.
	Completed(ctx context.Context, strategy StrategyName, matches int, elapsed time.Duration)

	// Failed is called when a calculation returns an error.
	Failed(ctx context.Context, strategy StrategyName, err error)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) Partitioned(context.Context, int, int, int)                    {}
func (NopObserver) Enumerated(context.Context, PartitionKind, int, time.Duration) {}
func (NopObserver) Completed(context.Context, StrategyName, int, time.Duration)   {}
func (NopObserver) Failed(context.Context, StrategyName, error)                   {}

// multiObserver fans events out to several observers in order.
type multiObserver []Observer

// MultiObserver returns an Observer that forwards every event to each of
// observers. Nil entries are skipped.
func MultiObserver(observers ...Observer) Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multiObserver) Partitioned(ctx context.Context, positives, negatives, zeros int) {
	for _, o := range m {
		o.Partitioned(ctx, positives, negatives, zeros)
	}
}

func (m multiObserver) Enumerated(ctx context.Context, kind PartitionKind, subsets int, elapsed time.Duration) {
	for _, o := range m {
		o.Enumerated(ctx, kind, subsets, elapsed)
	}
}

func (m multiObserver) Completed(ctx context.Context, strategy StrategyName, matches int, elapsed time.Duration) {
	for _, o := range m {
		o.Completed(ctx, strategy, matches, elapsed)
	}
}

func (m multiObserver) Failed(ctx context.Context, strategy StrategyName, err error) {
	for _, o := range m {
		o.Failed(ctx, strategy, err)
	}
}

var (
	_ Observer = NopObserver{}
	_ Observer = multiObserver(nil)
)
