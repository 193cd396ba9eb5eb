// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package subsetsum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionBySign(t *testing.T) {
	tests := []struct {
		name      string
		values    []int
		positives []int
		negatives []int
		zeros     []int
	}{
		{"empty", nil, nil, nil, nil},
		{"only positives", []int{3, 1, 2}, []int{3, 1, 2}, nil, nil},
		{"only negatives", []int{-1, -9}, nil, []int{-1, -9}, nil},
		{"mixed keeps order", []int{-2, 3, -1, 4}, []int{3, 4}, []int{-2, -1}, nil},
		{"zeros split out", []int{0, 5, 0, -5}, []int{5}, []int{-5}, []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := PartitionBySign(tt.values)

			assert.Equal(t, tt.positives, parts.Positives.Values)
			assert.Equal(t, tt.negatives, parts.Negatives.Values)
			assert.Equal(t, tt.zeros, parts.Zeros.Values)
		})
	}
}

func TestPartitionBySign_PositionsPointIntoSource(t *testing.T) {
	values := []int{0, -4, 7, 0, 2, -1}

	parts := PartitionBySign(values)

	for _, p := range []Partition{parts.Positives, parts.Negatives, parts.Zeros} {
		for i, pos := range p.Positions {
			assert.Equal(t, values[pos], p.Values[i])
		}
	}
	assert.Equal(t, []int{2, 4}, parts.Positives.Positions)
	assert.Equal(t, []int{1, 5}, parts.Negatives.Positions)
	assert.Equal(t, []int{0, 3}, parts.Zeros.Positions)
}

func TestPartitionBySign_DoesNotModifyInput(t *testing.T) {
	values := []int{5, -5, 0}
	_ = PartitionBySign(values)
	assert.Equal(t, []int{5, -5, 0}, values)
}

func TestSplitSign(t *testing.T) {
	positives, negatives := SplitSign([]int{1, -1, 0, 2, -2})

	assert.Equal(t, []int{1, 2}, positives)
	assert.Equal(t, []int{-1, -2}, negatives)
}
