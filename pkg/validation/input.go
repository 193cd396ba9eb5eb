// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks and parses user-provided solver input before it
// reaches the core. It rejects what the transport cannot accept; limits on
// enumeration size belong to the core.
package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidInput is wrapped by every error in this package.
var ErrInvalidInput = errors.New("invalid input")

// maxMagnitude bounds each element and the target so that no subset sum
// can overflow an int for lists up to MaxListLength elements.
const maxMagnitude = math.MaxInt >> 16

// MaxListLength is the longest list accepted from any transport.
const MaxListLength = 1 << 12

// ValidateList checks a solver request.
//
// # Inputs
//
//   - values: The input list.
//   - target: The target sum.
//   - maxLength: Longest accepted list. Zero or negative means MaxListLength.
//
// # Outputs
//
//   - error: Wraps ErrInvalidInput, or nil.
func ValidateList(values []int, target int, maxLength int) error {
	if maxLength <= 0 || maxLength > MaxListLength {
		maxLength = MaxListLength
	}
	if len(values) > maxLength {
		return fmt.Errorf("%w: list has %d elements, at most %d allowed", ErrInvalidInput, len(values), maxLength)
	}
	if outOfRange(target) {
		return fmt.Errorf("%w: target %d out of range", ErrInvalidInput, target)
	}
	var bad []int
	for i, v := range values {
		if outOfRange(v) {
			bad = append(bad, i)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: elements at positions %v out of range", ErrInvalidInput, bad)
	}
	return nil
}

func outOfRange(v int) bool {
	return v > maxMagnitude || v < -maxMagnitude
}

// ParseIntList parses a comma or whitespace separated list of integers,
// e.g. "1, 2,-3" or "1 2 -3". Brackets around the list are ignored. An
// empty string yields an empty, non-nil list.
func ParseIntList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidInput, f)
		}
		out = append(out, v)
	}
	return out, nil
}
