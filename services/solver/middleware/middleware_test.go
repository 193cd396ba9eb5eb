// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AleutianAI/SubsetSum/pkg/extensions"
	"github.com/AleutianAI/SubsetSum/services/solver/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Setup
// =============================================================================

func init() {
	gin.SetMode(gin.TestMode)
}

// mockAuthProvider is a configurable mock for testing.
type mockAuthProvider struct {
	authInfo *extensions.AuthInfo
	err      error
	lastTok  string
}

func (m *mockAuthProvider) Validate(_ context.Context, token string) (*extensions.AuthInfo, error) {
	m.lastTok = token
	if m.err != nil {
		return nil, m.err
	}
	return m.authInfo, nil
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(mw...)
	r.GET("/probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserID(c), "request_id": GetRequestID(c)})
	})
	return r
}

func do(r http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// =============================================================================
// Token Extraction Tests
// =============================================================================

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"api key", map[string]string{APIKeyHeader: "k1"}, "k1"},
		{"bearer", map[string]string{"Authorization": "Bearer abc123"}, "abc123"},
		{"bearer case insensitive", map[string]string{"Authorization": "bearer ABC"}, "ABC"},
		{"api key wins", map[string]string{APIKeyHeader: "k1", "Authorization": "Bearer b"}, "k1"},
		{"basic ignored", map[string]string{"Authorization": "Basic Zm9v"}, ""},
		{"malformed", map[string]string{"Authorization": "Bearer"}, ""},
		{"none", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, extractToken(c))
		})
	}
}

// =============================================================================
// AuthMiddleware Tests
// =============================================================================

func TestAuthMiddleware_NopProvider(t *testing.T) {
	r := newRouter(AuthMiddleware(&extensions.NopAuthProvider{}, nil, nil))

	w := do(r, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"local-user"`)
}

func TestAuthMiddleware_APIKeys(t *testing.T) {
	provider := extensions.NewAPIKeyProvider(map[string]string{"secret": "alice"})
	audit := extensions.NewMemoryAuditLogger()
	r := newRouter(AuthMiddleware(provider, audit, nil))

	t.Run("valid key", func(t *testing.T) {
		w := do(r, map[string]string{APIKeyHeader: "secret"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user":"alice"`)
	})

	t.Run("wrong key", func(t *testing.T) {
		w := do(r, map[string]string{"Authorization": "Bearer nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"unauthorized"`)
	})

	t.Run("missing key", func(t *testing.T) {
		w := do(r, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	events := audit.Events()
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, extensions.EventAuthFailed, ev.EventType)
		assert.Equal(t, extensions.OutcomeRejected, ev.Outcome)
		assert.NotEmpty(t, ev.RequestID)
	}
	assert.Equal(t, true, events[0].Metadata["has_token"])
	assert.Equal(t, false, events[1].Metadata["has_token"])
}

func TestAuthMiddleware_RecordsUnauthorizedMetric(t *testing.T) {
	metrics := observability.NewSolverMetrics(prometheus.NewRegistry())
	provider := extensions.NewAPIKeyProvider(map[string]string{"secret": "alice"})
	r := newRouter(AuthMiddleware(provider, nil, metrics))

	assert.Equal(t, http.StatusUnauthorized, do(r, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, map[string]string{APIKeyHeader: "secret"}).Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("other", "unauthorized")))
}

func TestAuthMiddleware_ProviderFailure(t *testing.T) {
	provider := &mockAuthProvider{err: errors.New("idp unreachable")}
	r := newRouter(AuthMiddleware(provider, nil, nil))

	w := do(r, map[string]string{"Authorization": "Bearer tok"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authentication failed")
	assert.Equal(t, "tok", provider.lastTok)
}

func TestGetAuthInfo_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetAuthInfo(c))
	assert.Equal(t, "anonymous", UserID(c))

	c.Set(authInfoKey, "wrong type")
	assert.Nil(t, GetAuthInfo(c))
}

// =============================================================================
// RequestID Tests
// =============================================================================

func TestRequestID_Generated(t *testing.T) {
	r := newRouter()

	w := do(r, nil)

	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Contains(t, w.Body.String(), id)
}

func TestRequestID_Propagated(t *testing.T) {
	r := newRouter()

	w := do(r, map[string]string{RequestIDHeader: "client-42"})

	assert.Equal(t, "client-42", w.Header().Get(RequestIDHeader))
}

func TestRequestID_OversizedReplaced(t *testing.T) {
	r := newRouter()

	w := do(r, map[string]string{RequestIDHeader: strings.Repeat("x", maxRequestIDLength+1)})

	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

// =============================================================================
// RateLimit Tests
// =============================================================================

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	metrics := observability.NewSolverMetrics(prometheus.NewRegistry())
	// One token per hour: only the burst gets through.
	r := newRouter(RateLimit(1.0/3600, 2, metrics))

	codes := []int{do(r, nil).Code, do(r, nil).Code, do(r, nil).Code}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("other", "rate_limited")))
}

func TestRateLimit_Disabled(t *testing.T) {
	r := newRouter(RateLimit(0, 0, nil))

	for range 10 {
		assert.Equal(t, http.StatusOK, do(r, nil).Code)
	}
}

// =============================================================================
// RequestLogger Tests
// =============================================================================

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	metrics := observability.NewSolverMetrics(prometheus.NewRegistry())
	r := newRouter(RequestLogger(logger, metrics))

	w := do(r, map[string]string{RequestIDHeader: "log-me"})

	assert.Equal(t, http.StatusOK, w.Code)
	out := buf.String()
	assert.Contains(t, out, `"msg":"request served"`)
	assert.Contains(t, out, `"request_id":"log-me"`)
	assert.Contains(t, out, `"status":200`)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.InFlightRequests))
}

func TestRequestLogger_ClientErrorAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	r := gin.New()
	r.Use(RequestLogger(logger, nil))
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))

	assert.Contains(t, buf.String(), `"level":"WARN"`)
}
