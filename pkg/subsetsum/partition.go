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

// PartitionKind names one of the sign partitions.
type PartitionKind string

const (
	PartitionPositive PartitionKind = "positive"
	PartitionNegative PartitionKind = "negative"
	PartitionZero     PartitionKind = "zero"

	// PartitionAll is the whole input, used by the naive strategy.
	PartitionAll PartitionKind = "all"
)

// Partition is an order-preserving selection from a source list.
// Positions[i] is the index in the source of Values[i].
type Partition struct {
	Values    []int
	Positions []int
}

// Len returns the number of elements in the partition.
func (p Partition) Len() int {
	return len(p.Values)
}

// sourceIndices maps indices into p back to indices into the source.
func (p Partition) sourceIndices(local []int) []int {
	out := make([]int, len(local))
	for i, idx := range local {
		out[i] = p.Positions[idx]
	}
	return out
}

// Partitions holds the three sign partitions of an input.
type Partitions struct {
	Positives Partition
	Negatives Partition
	Zeros     Partition
}

// PartitionBySign splits values into strictly positive, strictly negative
// and zero elements, each in source order. It has no side effects.
func PartitionBySign(values []int) Partitions {
	var parts Partitions
	for i, v := range values {
		switch {
		case v > 0:
			parts.Positives.Values = append(parts.Positives.Values, v)
			parts.Positives.Positions = append(parts.Positives.Positions, i)
		case v < 0:
			parts.Negatives.Values = append(parts.Negatives.Values, v)
			parts.Negatives.Positions = append(parts.Negatives.Positions, i)
		default:
			parts.Zeros.Values = append(parts.Zeros.Values, v)
			parts.Zeros.Positions = append(parts.Zeros.Positions, i)
		}
	}
	return parts
}

// SplitSign returns the positive and the negative elements of values in
// source order. Zeros belong to neither.
func SplitSign(values []int) (positives, negatives []int) {
	parts := PartitionBySign(values)
	return parts.Positives.Values, parts.Negatives.Values
}
