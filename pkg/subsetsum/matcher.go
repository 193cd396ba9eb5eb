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
	"slices"
)

// =============================================================================
// Matcher
// =============================================================================

// Match cross-references enumerated positive and negative subsets against
// target.
//
// # Description
//
// Three passes run in order and their results are concatenated:
//
//  1. every positive subset (the empty one included) whose sum is target;
//  2. every non-empty negative subset whose sum is target;
//  3. every pair of a non-empty positive and a non-empty negative subset
//     whose sums add up to target. Elements are the positive elements
//     followed by the negative ones.
//
// Empty subsets only take part in pass 1, so each combination of a
// positive and a negative subset is reported at most once. Value-equal
// matches drawn from different positions are all kept.
//
// # Outputs
//
// The matches, or nil when nothing matches. Indices are left nil because
// the two inputs index different lists.
//
// # Limitations
//
// Pass 3 compares every pair: O(P*N) for P positive and N negative subsets.
func Match(positives, negatives []SubsetSum, target int) []SubsetSum {
	var out []SubsetSum
	// An unlimited budget and background context cannot fail.
	_ = matchPairs(context.Background(), positives, negatives, target, newBudget(0),
		func(pos, neg SubsetSum) error {
			elements := make([]int, 0, pos.Len()+neg.Len())
			elements = append(elements, pos.Elements...)
			elements = append(elements, neg.Elements...)
			out = append(out, SubsetSum{Elements: elements, Sum: pos.Sum + neg.Sum})
			return nil
		})
	return out
}

// matchPairs runs the three matcher passes and calls emit for every
// qualifying (positive, negative) pair. One side of the pair is the empty
// subset for passes 1 and 2. Every comparison is charged to b.
func matchPairs(ctx context.Context, positives, negatives []SubsetSum, target int,
	b *budget, emit func(pos, neg SubsetSum) error) error {

	var none SubsetSum

	for _, pos := range positives {
		if err := b.step(ctx); err != nil {
			return err
		}
		if pos.Sum == target {
			if err := emit(pos, none); err != nil {
				return err
			}
		}
	}

	for _, neg := range negatives {
		if neg.IsEmpty() {
			continue
		}
		if err := b.step(ctx); err != nil {
			return err
		}
		if neg.Sum == target {
			if err := emit(none, neg); err != nil {
				return err
			}
		}
	}

	for _, pos := range positives {
		if pos.IsEmpty() {
			continue
		}
		want := target - pos.Sum
		for _, neg := range negatives {
			if neg.IsEmpty() {
				continue
			}
			if err := b.step(ctx); err != nil {
				return err
			}
			if neg.Sum == want {
				if err := emit(pos, neg); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// =============================================================================
// Result Shaping
// =============================================================================

// collector turns index sets into matches against the original input.
// Both strategies funnel their matches through it.
type collector struct {
	source     []int
	maxMatches int
	matches    []SubsetSum
	budget     *budget
}

func newCollector(source []int, limits Limits, b *budget) *collector {
	return &collector{source: source, maxMatches: limits.MaxMatches, budget: b}
}

// add records the subset of the source at indices. indices must be
// sorted ascending and is retained.
func (c *collector) add(indices []int) error {
	if c.maxMatches > 0 && len(c.matches) >= c.maxMatches {
		return &AbortError{
			Reason:     AbortMatchLimit,
			Iterations: c.budget.iterations(),
			Matches:    len(c.matches),
		}
	}
	c.matches = append(c.matches, newSubsetSum(c.source, indices))
	return nil
}

// mergeIndices maps each partition-local subset to source indices and
// returns them as one ascending slice.
func mergeIndices(parts []Partition, subsets []SubsetSum) []int {
	size := 0
	for _, s := range subsets {
		size += len(s.Indices)
	}
	out := make([]int, 0, size)
	for i, s := range subsets {
		out = append(out, parts[i].sourceIndices(s.Indices)...)
	}
	slices.Sort(out)
	return out
}
