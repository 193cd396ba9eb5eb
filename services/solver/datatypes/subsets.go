// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides the wire types of the solver service.
package datatypes

import (
	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
	"github.com/AleutianAI/SubsetSum/pkg/validation"
	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// NoMatchMessage is returned when no subset reaches the target.
	NoMatchMessage = "No subsets within the list sum up to the target value"

	// MappingFailedMessage is the legacy route's body for unreadable JSON.
	MappingFailedMessage = "JSON mapping of the request body failed."

	// StatusMatched and StatusNoMatch are the values of SubsetResponse.Status.
	StatusMatched = "matched"
	StatusNoMatch = "no_match"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("strategy", validateStrategy)
}

// validateStrategy accepts an empty name or a registered strategy name.
func validateStrategy(fl validator.FieldLevel) bool {
	switch subsetsum.StrategyName(fl.Field().String()) {
	case "", subsetsum.StrategySplitSign, subsetsum.StrategyNaive:
		return true
	default:
		return false
	}
}

// =============================================================================
// Request Types
// =============================================================================

// SubsetRequest is the body of POST /v1/subsets.
//
// # Fields
//
//   - List: required; an empty array is valid, a missing one is not.
//   - Target: required; a pointer so 0 can be told apart from absent.
//   - Strategy: optional; "split_sign" (default) or "naive".
type SubsetRequest struct {
	List     []int  `json:"list" validate:"required,max=4096"`
	Target   *int   `json:"target" validate:"required"`
	Strategy string `json:"strategy,omitempty" validate:"strategy"`
}

// Validate checks struct tags, then element magnitudes.
func (r *SubsetRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	return validation.ValidateList(r.List, *r.Target, validation.MaxListLength)
}

// LegacyRequest is the body of POST /subsetSum. A missing target reads as 0.
type LegacyRequest struct {
	List   []int `json:"list" validate:"required,max=4096"`
	Target int   `json:"target"`
}

// Validate checks struct tags, then element magnitudes.
func (r *LegacyRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	return validation.ValidateList(r.List, r.Target, validation.MaxListLength)
}

// =============================================================================
// Response Types
// =============================================================================

// Match is one subset in a response.
type Match struct {
	Subset  []int `json:"subset"`
	Sum     int   `json:"sum"`
	Indices []int `json:"indices"`
}

// Stats mirrors subsetsum.Stats on the wire.
type Stats struct {
	Elements        int    `json:"elements"`
	PositiveSubsets int    `json:"positive_subsets"`
	NegativeSubsets int    `json:"negative_subsets"`
	ZeroSubsets     int    `json:"zero_subsets"`
	Iterations      uint64 `json:"iterations"`
	Cached          bool   `json:"cached"`
	DurationMs      int64  `json:"duration_ms"`
}

// SubsetResponse is the body of a successful POST /v1/subsets.
type SubsetResponse struct {
	RequestID string  `json:"request_id"`
	Status    string  `json:"status"`
	Matches   []Match `json:"matches,omitempty"`
	Strategy  string  `json:"strategy"`
	Stats     Stats   `json:"stats"`
	Message   string  `json:"message,omitempty"`
}

// LegacyMatch is one element of the legacy route's response array.
type LegacyMatch struct {
	Subset []int `json:"subset"`
	Sum    int   `json:"sum"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// =============================================================================
// Conversions
// =============================================================================

// NewMatches converts core matches to wire matches. Empty subsets encode as
// [] rather than null.
func NewMatches(matches []subsetsum.SubsetSum) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, Match{
			Subset:  nonNil(m.Elements),
			Sum:     m.Sum,
			Indices: nonNil(m.Indices),
		})
	}
	return out
}

// NewLegacyMatches converts core matches to the legacy shape.
func NewLegacyMatches(matches []subsetsum.SubsetSum) []LegacyMatch {
	out := make([]LegacyMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, LegacyMatch{Subset: nonNil(m.Elements), Sum: m.Sum})
	}
	return out
}

// NewStats converts core stats.
func NewStats(s subsetsum.Stats) Stats {
	return Stats{
		Elements:        s.Elements,
		PositiveSubsets: s.PositiveSubsets,
		NegativeSubsets: s.NegativeSubsets,
		ZeroSubsets:     s.ZeroSubsets,
		Iterations:      s.Iterations,
	}
}

func nonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
