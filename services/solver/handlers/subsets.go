// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/SubsetSum/pkg/extensions"
	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
	"github.com/AleutianAI/SubsetSum/services/solver/datatypes"
	"github.com/AleutianAI/SubsetSum/services/solver/middleware"
	"github.com/AleutianAI/SubsetSum/services/solver/observability"
	"github.com/gin-gonic/gin"
)

// Deps bundles what the solve handlers need. Audit and Metrics may be nil.
type Deps struct {
	Engine  *Engine
	Audit   extensions.AuditLogger
	Metrics *observability.SolverMetrics
}

// HandleSubsets handles POST /v1/subsets.
//
// # Description
//
// Decodes a SubsetRequest, runs the requested strategy and answers with a
// SubsetResponse. Both matched and no-match outcomes are 200; malformed or
// invalid input is 400 and never reaches the solver.
//
// # Outputs
//
//   - 200: SubsetResponse with status "matched" or "no_match".
//   - 400: Malformed JSON or invalid input.
//   - 413: A sign partition is over its size limit.
//   - 503: The calculation exceeded its budget or timed out.
func HandleSubsets(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := middleware.GetRequestID(c)

		var req datatypes.SubsetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.Warn("Failed to parse the subsets request", "request_id", requestID, "error", err)
			deps.fail(observability.EndpointSubsets, observability.ErrorCodeValidation, start)
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{
				Error:     "invalid request body",
				Details:   err.Error(),
				RequestID: requestID,
			})
			return
		}
		if err := req.Validate(); err != nil {
			deps.fail(observability.EndpointSubsets, observability.ErrorCodeValidation, start)
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{
				Error:     "invalid request",
				Details:   err.Error(),
				RequestID: requestID,
			})
			return
		}

		strategy := subsetsum.StrategyName(req.Strategy)
		out, err := deps.Engine.Solve(c.Request.Context(), req.List, *req.Target, strategy)
		if err != nil {
			status, code := statusFor(err)
			deps.audit(c, auditOutcome(err), len(req.List), strategy)
			deps.fail(observability.EndpointSubsets, code, start)
			slog.Warn("Subset calculation failed", "request_id", requestID, "status", status, "error", err)
			c.JSON(status, datatypes.ErrorResponse{
				Error:     errorMessage(err),
				Details:   err.Error(),
				RequestID: requestID,
			})
			return
		}

		resp := datatypes.SubsetResponse{
			RequestID: requestID,
			Strategy:  string(out.Result.Strategy),
			Stats:     datatypes.NewStats(out.Result.Stats),
		}
		resp.Stats.Cached = out.Cached
		resp.Stats.DurationMs = out.Elapsed.Milliseconds()
		if out.Result.Found() {
			resp.Status = datatypes.StatusMatched
			resp.Matches = datatypes.NewMatches(out.Result.Matches)
		} else {
			resp.Status = datatypes.StatusNoMatch
			resp.Message = datatypes.NoMatchMessage
		}

		deps.audit(c, resultOutcome(out.Result.Found()), len(req.List), strategy)
		deps.record(observability.EndpointSubsets, resp.Status, start)
		c.JSON(http.StatusOK, resp)
	}
}

// HandleLegacySubsetSum handles POST /subsetSum with the original wire
// format: a pretty-printed JSON array of {subset, sum} on a match, and
// text/plain messages for no match and malformed bodies.
func HandleLegacySubsetSum(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req datatypes.LegacyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			deps.fail(observability.EndpointLegacy, observability.ErrorCodeValidation, start)
			c.String(http.StatusBadRequest, datatypes.MappingFailedMessage)
			return
		}
		if err := req.Validate(); err != nil {
			deps.fail(observability.EndpointLegacy, observability.ErrorCodeValidation, start)
			c.String(http.StatusBadRequest, datatypes.MappingFailedMessage)
			return
		}

		out, err := deps.Engine.Solve(c.Request.Context(), req.List, req.Target, subsetsum.StrategySplitSign)
		if err != nil {
			status, code := statusFor(err)
			deps.audit(c, auditOutcome(err), len(req.List), subsetsum.StrategySplitSign)
			deps.fail(observability.EndpointLegacy, code, start)
			c.String(status, errorMessage(err))
			return
		}

		deps.audit(c, resultOutcome(out.Result.Found()), len(req.List), subsetsum.StrategySplitSign)
		if !out.Result.Found() {
			deps.record(observability.EndpointLegacy, datatypes.StatusNoMatch, start)
			c.String(http.StatusOK, datatypes.NoMatchMessage)
			return
		}
		deps.record(observability.EndpointLegacy, datatypes.StatusMatched, start)
		c.IndentedJSON(http.StatusOK, datatypes.NewLegacyMatches(out.Result.Matches))
	}
}

// =============================================================================
// Helpers
// =============================================================================

// statusFor maps a calculation error to an HTTP status and metrics code.
func statusFor(err error) (int, observability.ErrorCode) {
	switch {
	case errors.Is(err, subsetsum.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge, observability.ErrorCodeTooLarge
	case errors.Is(err, subsetsum.ErrAborted):
		return http.StatusServiceUnavailable, observability.ErrorCodeAborted
	case errors.Is(err, subsetsum.ErrUnknownStrategy):
		return http.StatusBadRequest, observability.ErrorCodeValidation
	default:
		return http.StatusInternalServerError, observability.ErrorCodeInternal
	}
}

func errorMessage(err error) string {
	var abort *subsetsum.AbortError
	switch {
	case errors.Is(err, subsetsum.ErrInputTooLarge):
		return "input too large"
	case errors.As(err, &abort) && errors.Is(abort.Err, context.DeadlineExceeded):
		return "calculation timed out"
	case errors.Is(err, subsetsum.ErrAborted):
		return "calculation aborted"
	case errors.Is(err, subsetsum.ErrUnknownStrategy):
		return "unknown strategy"
	default:
		return "internal error"
	}
}

// auditOutcome classifies a failed request for the audit log.
func auditOutcome(err error) string {
	switch {
	case errors.Is(err, subsetsum.ErrInputTooLarge), errors.Is(err, subsetsum.ErrUnknownStrategy):
		return extensions.OutcomeRejected
	case errors.Is(err, subsetsum.ErrAborted):
		return extensions.OutcomeAborted
	default:
		return extensions.OutcomeError
	}
}

func resultOutcome(found bool) string {
	if found {
		return extensions.OutcomeMatched
	}
	return extensions.OutcomeNoMatch
}

func (d Deps) audit(c *gin.Context, outcome string, elements int, strategy subsetsum.StrategyName) {
	if d.Audit == nil {
		return
	}
	if strategy == "" {
		strategy = subsetsum.StrategySplitSign
	}
	err := d.Audit.Log(c.Request.Context(), extensions.AuditEvent{
		EventType: extensions.EventSolve,
		UserID:    middleware.UserID(c),
		RequestID: middleware.GetRequestID(c),
		Outcome:   outcome,
		Metadata: map[string]any{
			"elements": elements,
			"strategy": string(strategy),
			"path":     c.FullPath(),
		},
	})
	if err != nil {
		slog.Warn("Failed to write audit event", "error", err)
	}
}

func (d Deps) fail(endpoint observability.Endpoint, code observability.ErrorCode, start time.Time) {
	if d.Metrics == nil {
		return
	}
	d.Metrics.RecordError(endpoint, code)
	d.record(endpoint, "error", start)
}

func (d Deps) record(endpoint observability.Endpoint, status string, start time.Time) {
	if d.Metrics == nil {
		return
	}
	d.Metrics.RecordRequest(endpoint, status, time.Since(start))
}

// =============================================================================
// Liveness
// =============================================================================

// HealthCheck answers GET /health.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleTest answers GET /test, the liveness route of the original service.
func HandleTest(c *gin.Context) {
	slog.Info("Test succeeded")
	c.String(http.StatusOK, "Test succeeded")
}
