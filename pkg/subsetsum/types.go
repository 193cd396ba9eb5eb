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
// Subsets
// =============================================================================

// SubsetSum is one subset of a source list together with its sum.
//
// Elements[i] is source[Indices[i]]; Indices is strictly increasing, so
// Elements keeps the relative order of the source. Sum always equals the
// arithmetic sum of Elements. Values are never mutated after creation.
type SubsetSum struct {
	Elements []int
	Indices  []int
	Sum      int
}

// Len returns the number of elements in the subset.
func (s SubsetSum) Len() int {
	return len(s.Elements)
}

// IsEmpty reports whether s is the empty subset.
func (s SubsetSum) IsEmpty() bool {
	return len(s.Elements) == 0
}

// newSubsetSum materializes the subset of source selected by indices.
// The indices slice is retained.
func newSubsetSum(source []int, indices []int) SubsetSum {
	elements := make([]int, len(indices))
	sum := 0
	for i, idx := range indices {
		elements[i] = source[idx]
		sum += source[idx]
	}
	return SubsetSum{Elements: elements, Indices: indices, Sum: sum}
}

// =============================================================================
// Results
// =============================================================================

// StrategyName identifies a solving strategy.
type StrategyName string

const (
	// StrategySplitSign partitions by sign before enumerating.
	StrategySplitSign StrategyName = "split_sign"

	// StrategyNaive enumerates the full powerset.
	StrategyNaive StrategyName = "naive"
)

// Stats describes the work a strategy performed.
type Stats struct {
	// Elements is the length of the input list.
	Elements int

	// PositiveSubsets, NegativeSubsets and ZeroSubsets count the subsets
	// enumerated per partition. The naive strategy leaves them zero.
	PositiveSubsets int
	NegativeSubsets int
	ZeroSubsets     int

	// Iterations counts budgeted steps: enumerated subsets, matcher
	// comparisons and naive masks.
	Iterations uint64
}

// Result is the outcome of a completed calculation.
//
// A calculation that found nothing returns a Result with nil Matches.
// Matches are ordered deterministically: positive-only matches, then
// negative-only matches, then positive/negative pairs, each in generation
// order (split-sign), or by ascending bitmask (naive).
type Result struct {
	Matches  []SubsetSum
	Strategy StrategyName
	Stats    Stats
}

// Found reports whether at least one subset matched the target.
func (r Result) Found() bool {
	return len(r.Matches) > 0
}
