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
	"fmt"
	"time"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Strategy finds every subset of values that sums to target.
//
// # Description
//
// Both implementations return the same set of matches for the same input;
// they differ in how much work they do and in the order of the matches.
//
// # Outputs
//
//   - Result: Matches is nil when no subset matches (not an error).
//   - error: ErrInputTooLarge before any work, or ErrAborted.
type Strategy interface {
	Name() StrategyName
	Solve(ctx context.Context, values []int, target int) (Result, error)
}

// NewSplitSign returns the split-sign strategy.
func NewSplitSign(opts ...Option) Strategy {
	return &splitSign{opts: buildOptions(opts)}
}

// NewNaive returns the full-powerset strategy.
func NewNaive(opts ...Option) Strategy {
	return &naive{opts: buildOptions(opts)}
}

// StrategyByName returns the strategy registered under name. An empty
// name selects split-sign.
func StrategyByName(name StrategyName, opts ...Option) (Strategy, error) {
	switch name {
	case "", StrategySplitSign:
		return NewSplitSign(opts...), nil
	case StrategyNaive:
		return NewNaive(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// =============================================================================
// Entry Points
// =============================================================================

// Calculate returns every subset of values that sums to target using the
// split-sign strategy.
//
// # Inputs
//
//   - ctx: Cancels the calculation; cancellation surfaces as ErrAborted.
//   - values: The input list. Not modified.
//   - target: The sum to reach.
//   - opts: Limits, observer and parallelism.
//
// # Outputs
//
//   - Result: All matches, or nil Matches when none exist.
//   - error: ErrInputTooLarge or ErrAborted. Never a partial result.
//
// # Examples
//
//	res, err := subsetsum.Calculate(ctx, []int{1, 2, 3}, 5)
//	// res.Matches == [{Elements: [2 3], Indices: [1 2], Sum: 5}]
func Calculate(ctx context.Context, values []int, target int, opts ...Option) (Result, error) {
	return NewSplitSign(opts...).Solve(ctx, values, target)
}

// CalculateNaive is the reference implementation: it filters the full
// powerset of values. Inputs above Limits.MaxNaiveSize are rejected.
func CalculateNaive(values []int, target int, opts ...Option) (Result, error) {
	return NewNaive(opts...).Solve(context.Background(), values, target)
}

// =============================================================================
// Split-Sign Strategy
// =============================================================================

type splitSign struct {
	opts options
}

func (s *splitSign) Name() StrategyName {
	return StrategySplitSign
}

func (s *splitSign) Solve(ctx context.Context, values []int, target int) (Result, error) {
	start := time.Now()
	obs := s.opts.observer

	res, err := s.solve(ctx, values, target)
	if err != nil {
		obs.Failed(ctx, StrategySplitSign, err)
		return Result{}, err
	}
	obs.Completed(ctx, StrategySplitSign, len(res.Matches), time.Since(start))
	return res, nil
}

func (s *splitSign) solve(ctx context.Context, values []int, target int) (Result, error) {
	limits := s.opts.limits
	obs := s.opts.observer

	parts := PartitionBySign(values)
	obs.Partitioned(ctx, parts.Positives.Len(), parts.Negatives.Len(), parts.Zeros.Len())

	if err := checkPartitionSizes(parts, limits); err != nil {
		return Result{}, err
	}
	if err := checkContext(ctx); err != nil {
		return Result{}, err
	}

	b := newBudget(limits.MaxIterations)
	positives, negatives, err := s.enumerateSigns(ctx, parts, b)
	if err != nil {
		return Result{}, err
	}
	zeros, err := enumeratePartition(ctx, PartitionZero, parts.Zeros, b, obs)
	if err != nil {
		return Result{}, err
	}

	c := newCollector(values, limits, b)
	layout := []Partition{parts.Positives, parts.Negatives, parts.Zeros}
	err = matchPairs(ctx, positives, negatives, target, b, func(pos, neg SubsetSum) error {
		for _, z := range zeros {
			if err := c.add(mergeIndices(layout, []SubsetSum{pos, neg, z})); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Matches:  c.matches,
		Strategy: StrategySplitSign,
		Stats: Stats{
			Elements:        len(values),
			PositiveSubsets: len(positives),
			NegativeSubsets: len(negatives),
			ZeroSubsets:     len(zeros),
			Iterations:      b.iterations(),
		},
	}, nil
}

// enumerateSigns enumerates the positive and the negative partitions,
// concurrently when the parallel option is set.
func (s *splitSign) enumerateSigns(ctx context.Context, parts Partitions, b *budget) (positives, negatives []SubsetSum, err error) {
	obs := s.opts.observer
	if s.opts.parallel {
		return enumerateConcurrently(ctx, parts, b, obs)
	}
	positives, err = enumeratePartition(ctx, PartitionPositive, parts.Positives, b, obs)
	if err != nil {
		return nil, nil, err
	}
	negatives, err = enumeratePartition(ctx, PartitionNegative, parts.Negatives, b, obs)
	if err != nil {
		return nil, nil, err
	}
	return positives, negatives, nil
}

// enumeratePartition collects every subset of p, charging each to b.
// Subset indices are local to p.
func enumeratePartition(ctx context.Context, kind PartitionKind, p Partition, b *budget, obs Observer) ([]SubsetSum, error) {
	start := time.Now()
	out := make([]SubsetSum, 0, subsetCapacity(p.Len()))
	e := NewEnumerator(p.Values)
	for subset, ok := e.Next(); ok; subset, ok = e.Next() {
		if err := b.step(ctx); err != nil {
			return nil, err
		}
		out = append(out, subset)
	}
	obs.Enumerated(ctx, kind, len(out), time.Since(start))
	return out, nil
}

func checkPartitionSizes(parts Partitions, limits Limits) error {
	if limit := limits.MaxPartitionSize; limit > 0 {
		if n := parts.Positives.Len(); n > limit {
			return &SizeError{Partition: PartitionPositive, Size: n, Limit: limit}
		}
		if n := parts.Negatives.Len(); n > limit {
			return &SizeError{Partition: PartitionNegative, Size: n, Limit: limit}
		}
	}
	if limit := limits.MaxZeroCount; limit > 0 {
		if n := parts.Zeros.Len(); n > limit {
			return &SizeError{Partition: PartitionZero, Size: n, Limit: limit}
		}
	}
	return nil
}

// =============================================================================
// Naive Strategy
// =============================================================================

type naive struct {
	opts options
}

func (n *naive) Name() StrategyName {
	return StrategyNaive
}

func (n *naive) Solve(ctx context.Context, values []int, target int) (Result, error) {
	start := time.Now()
	obs := n.opts.observer

	res, err := n.solve(ctx, values, target)
	if err != nil {
		obs.Failed(ctx, StrategyNaive, err)
		return Result{}, err
	}
	obs.Completed(ctx, StrategyNaive, len(res.Matches), time.Since(start))
	return res, nil
}

func (n *naive) solve(ctx context.Context, values []int, target int) (Result, error) {
	limits := n.opts.limits
	size := len(values)

	limit := limits.MaxNaiveSize
	if limit <= 0 || limit > maxBitmaskSize {
		limit = maxBitmaskSize
	}
	if size > limit {
		return Result{}, &SizeError{Partition: PartitionAll, Size: size, Limit: limit}
	}
	if err := checkContext(ctx); err != nil {
		return Result{}, err
	}

	start := time.Now()
	b := newBudget(limits.MaxIterations)
	c := newCollector(values, limits, b)
	total := uint64(1) << size
	for mask := uint64(0); mask < total; mask++ {
		if err := b.step(ctx); err != nil {
			return Result{}, err
		}
		sum := 0
		for j := 0; j < size; j++ {
			if mask&(1<<j) != 0 {
				sum += values[j]
			}
		}
		if sum != target {
			continue
		}
		indices := make([]int, 0, size)
		for j := 0; j < size; j++ {
			if mask&(1<<j) != 0 {
				indices = append(indices, j)
			}
		}
		if err := c.add(indices); err != nil {
			return Result{}, err
		}
	}
	n.opts.observer.Enumerated(ctx, PartitionAll, int(total), time.Since(start))

	return Result{
		Matches:  c.matches,
		Strategy: StrategyNaive,
		Stats: Stats{
			Elements:   size,
			Iterations: b.iterations(),
		},
	}, nil
}

var (
	_ Strategy = (*splitSign)(nil)
	_ Strategy = (*naive)(nil)
)
