// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AleutianAI/SubsetSum/pkg/extensions"
	"github.com/AleutianAI/SubsetSum/services/solver/handlers"
	"github.com/AleutianAI/SubsetSum/services/solver/middleware"
	"github.com/AleutianAI/SubsetSum/services/solver/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Setup
// ============================================================================

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	router, _ := newRouterWithMetrics(t, opts)
	return router
}

func newRouterWithMetrics(t *testing.T, opts Options) (*gin.Engine, *observability.SolverMetrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewSolverMetrics(reg)
	if opts.Gatherer == nil {
		opts.Gatherer = reg
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	SetupRoutes(router, handlers.Deps{
		Engine:  handlers.NewEngine(handlers.EngineConfig{Metrics: metrics}),
		Metrics: metrics,
	}, opts)
	return router, metrics
}

func serve(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ============================================================================
// SetupRoutes Tests
// ============================================================================

func TestSetupRoutes_RegistersRoutes(t *testing.T) {
	router := newRouter(t, Options{})

	registered := make(map[string]bool)
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /test",
		"GET /metrics",
		"POST /subsetSum",
		"POST /v1/subsets",
	} {
		assert.True(t, registered[want], "route %s not registered", want)
	}
}

func TestSetupRoutes_SolveAndMetrics(t *testing.T) {
	router := newRouter(t, Options{})

	w := serve(router, http.MethodPost, "/v1/subsets", `{"list":[1,2,3],"target":5}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `subsetsum_solver_requests_total{endpoint="subsets",status="matched"} 1`)
}

func TestSetupRoutes_AuthGuardsSolveRoutesOnly(t *testing.T) {
	audit := extensions.NewMemoryAuditLogger()
	router := newRouter(t, Options{
		Auth:  extensions.NewAPIKeyProvider(map[string]string{"k": "bob"}),
		Audit: audit,
	})

	assert.Equal(t, http.StatusUnauthorized,
		serve(router, http.MethodPost, "/v1/subsets", `{"list":[1],"target":1}`, nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		serve(router, http.MethodPost, "/subsetSum", `{"list":[1],"target":1}`, nil).Code)
	assert.Equal(t, http.StatusOK,
		serve(router, http.MethodPost, "/v1/subsets", `{"list":[1],"target":1}`,
			map[string]string{middleware.APIKeyHeader: "k"}).Code)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/metrics", "", nil).Code)

	assert.Len(t, audit.Events(), 2)
}

func TestSetupRoutes_RateLimit(t *testing.T) {
	router := newRouter(t, Options{RateLimit: 1.0 / 3600, Burst: 1})

	first := serve(router, http.MethodPost, "/subsetSum", `{"list":[1],"target":1}`, nil)
	second := serve(router, http.MethodPost, "/v1/subsets", `{"list":[1],"target":1}`, nil)
	health := serve(router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code, "limit is shared by the solve routes")
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestSetupRoutes_GuardErrorsUseHandlerEndpointLabels(t *testing.T) {
	router, metrics := newRouterWithMetrics(t, Options{
		Auth:      extensions.NewAPIKeyProvider(map[string]string{"k": "bob"}),
		RateLimit: 1.0 / 3600,
		Burst:     2,
	})

	// Two unauthorized requests drain the burst; the third is rate limited.
	serve(router, http.MethodPost, "/v1/subsets", `{"list":[1],"target":1}`, nil)
	serve(router, http.MethodPost, "/subsetSum", `{"list":[1],"target":1}`, nil)
	serve(router, http.MethodPost, "/subsetSum", `{"list":[1],"target":1}`, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		metrics.ErrorsTotal.WithLabelValues(string(observability.EndpointSubsets), string(observability.ErrorCodeUnauthorized))))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		metrics.ErrorsTotal.WithLabelValues(string(observability.EndpointLegacy), string(observability.ErrorCodeUnauthorized))))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		metrics.ErrorsTotal.WithLabelValues(string(observability.EndpointLegacy), string(observability.ErrorCodeRateLimited))))
	assert.Equal(t, 3, testutil.CollectAndCount(metrics.ErrorsTotal))
}
