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
	"errors"
	"fmt"
)

var (
	// ErrInputTooLarge is returned before enumeration starts when a
	// partition exceeds its configured limit.
	ErrInputTooLarge = errors.New("subsetsum: input too large")

	// ErrAborted is returned when a calculation stops before completion.
	// No partial result accompanies it.
	ErrAborted = errors.New("subsetsum: computation aborted")

	// ErrUnknownStrategy is returned by StrategyByName.
	ErrUnknownStrategy = errors.New("subsetsum: unknown strategy")
)

// SizeError reports which partition exceeded which limit.
type SizeError struct {
	Partition PartitionKind
	Size      int
	Limit     int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("subsetsum: %s partition has %d elements, limit is %d",
		e.Partition, e.Size, e.Limit)
}

// Is makes errors.Is(err, ErrInputTooLarge) hold.
func (e *SizeError) Is(target error) bool {
	return target == ErrInputTooLarge
}

// AbortReason says why a calculation was aborted.
type AbortReason string

const (
	AbortIterationBudget AbortReason = "iteration_budget"
	AbortMatchLimit      AbortReason = "match_limit"
	AbortCanceled        AbortReason = "canceled"
)

// AbortError is the concrete error behind ErrAborted.
//
// For AbortCanceled, Err holds the context error, so errors.Is(err,
// context.DeadlineExceeded) works as well.
type AbortError struct {
	Reason     AbortReason
	Iterations uint64
	Matches    int
	Err        error
}

func (e *AbortError) Error() string {
	msg := fmt.Sprintf("subsetsum: computation aborted (%s) after %d iterations",
		e.Reason, e.Iterations)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrAborted) hold.
func (e *AbortError) Is(target error) bool {
	return target == ErrAborted
}

func (e *AbortError) Unwrap() error {
	return e.Err
}
