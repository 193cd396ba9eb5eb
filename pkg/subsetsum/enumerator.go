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

import "iter"

// =============================================================================
// Enumerator
// =============================================================================

// Enumerator walks every subset of a list exactly once.
//
// # Description
//
// Subsets are produced by size, k = 0, 1, ..., n. For each k the enumerator
// keeps a position index of k strictly increasing offsets into the list,
// starting at [0, 1, ..., k-1]. After a subset is materialized the index is
// advanced with a carry step: the rightmost position that has not reached
// its ceiling n-k+i is incremented and every position to its right is reset
// to follow it consecutively. A size is exhausted once positions[0] reaches
// n-k, at which point the next size starts.
//
// For the list [1, 3, 5, 7] and k = 2 the index visits
//
//	[0 1] [0 2] [0 3] [1 2] [1 3] [2 3]
//
// which is C(4, 2) = 6 subsets. Across all sizes the enumerator yields 2^n
// subsets, starting with the empty subset (sum 0).
//
// # Thread Safety
//
// An Enumerator is not safe for concurrent use. The source slice must not
// be modified while enumerating.
type Enumerator struct {
	values    []int
	k         int
	positions []int
	done      bool
}

// NewEnumerator returns an Enumerator positioned at the empty subset.
func NewEnumerator(values []int) *Enumerator {
	return &Enumerator{
		values:    values,
		positions: make([]int, 0, len(values)),
	}
}

// Next returns the current subset and advances the position index.
// The second return value is false once every subset has been produced.
func (e *Enumerator) Next() (SubsetSum, bool) {
	if e.done {
		return SubsetSum{}, false
	}
	indices := make([]int, e.k)
	copy(indices, e.positions)
	subset := newSubsetSum(e.values, indices)
	e.advance()
	return subset, true
}

// Size returns the subset size currently being enumerated.
func (e *Enumerator) Size() int {
	return e.k
}

// Done reports whether enumeration has finished.
func (e *Enumerator) Done() bool {
	return e.done
}

// finished reports whether every combination of the current size has been
// visited.
func (e *Enumerator) finished() bool {
	return e.k == 0 || e.positions[0] == len(e.values)-e.k
}

func (e *Enumerator) advance() {
	n := len(e.values)
	if e.finished() {
		if e.k == n {
			e.done = true
			return
		}
		e.k++
		e.positions = e.positions[:e.k]
		for i := range e.positions {
			e.positions[i] = i
		}
		return
	}

	// Not finished means positions[0] < n-k, so some position can move.
	i := e.k - 1
	for e.positions[i] == n-e.k+i {
		i--
	}
	e.positions[i]++
	for j := i + 1; j < e.k; j++ {
		e.positions[j] = e.positions[j-1] + 1
	}
}

// =============================================================================
// Convenience Wrappers
// =============================================================================

// Enumerate returns all 2^n subsets of values in enumeration order.
func Enumerate(values []int) []SubsetSum {
	out := make([]SubsetSum, 0, subsetCapacity(len(values)))
	e := NewEnumerator(values)
	for s, ok := e.Next(); ok; s, ok = e.Next() {
		out = append(out, s)
	}
	return out
}

// Subsets returns an iterator over all subsets of values in enumeration
// order.
//
//	for s := range subsetsum.Subsets(values) {
//	    ...
//	}
func Subsets(values []int) iter.Seq[SubsetSum] {
	return func(yield func(SubsetSum) bool) {
		e := NewEnumerator(values)
		for s, ok := e.Next(); ok; s, ok = e.Next() {
			if !yield(s) {
				return
			}
		}
	}
}

// subsetCapacity caps preallocation so huge inputs fail on the budget,
// not on an up-front allocation.
func subsetCapacity(n int) int {
	if n > 16 {
		return 1 << 16
	}
	return 1 << n
}
