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

// =============================================================================
// Limits
// =============================================================================

// maxBitmaskSize is the largest input the naive strategy can address with a
// uint64 mask without overflowing the loop bound.
const maxBitmaskSize = 62

// Limits bounds the work a single calculation may perform.
//
// A zero field disables that limit. Size limits are checked before any
// enumeration; the iteration and match limits abort a running calculation.
type Limits struct {
	// MaxPartitionSize caps the positive and the negative partition each.
	// Each partition costs 2^size subsets. Default: 22.
	MaxPartitionSize int

	// MaxZeroCount caps the number of zero elements. Every match is
	// repeated 2^zeros times. Default: 16.
	MaxZeroCount int

	// MaxNaiveSize caps the input of the naive strategy. Default: 20.
	MaxNaiveSize int

	// MaxIterations caps enumerated subsets plus matcher comparisons.
	// Default: 1<<26.
	MaxIterations uint64

	// MaxMatches caps the number of matches returned. Default: 1<<16.
	MaxMatches int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxPartitionSize: 22,
		MaxZeroCount:     16,
		MaxNaiveSize:     20,
		MaxIterations:    1 << 26,
		MaxMatches:       1 << 16,
	}
}

// =============================================================================
// Options
// =============================================================================

type options struct {
	limits   Limits
	observer Observer
	parallel bool
}

// Option configures a calculation.
type Option func(*options)

// WithLimits replaces the default limits.
func WithLimits(l Limits) Option {
	return func(o *options) {
		o.limits = l
	}
}

// WithObserver routes calculation events to obs.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithParallel enumerates the positive and negative partitions on separate
// goroutines. Output order is unaffected.
func WithParallel(enabled bool) Option {
	return func(o *options) {
		o.parallel = enabled
	}
}

func buildOptions(opts []Option) options {
	o := options{
		limits:   DefaultLimits(),
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
