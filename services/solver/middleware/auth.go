// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for the solver service.
//
// # Middleware Chain
//
//	Request
//	   │
//	   ▼
//	RequestID ──► RequestLogger ──► RateLimit ──► Auth ──► Handler
//
// RequestID runs first so every later log line, audit event and error body
// carries the same ID.
//
// # Open Source Behavior
//
// With NopAuthProvider (default) every request is authenticated as
// "local-user". Configuring API keys switches to APIKeyProvider.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AleutianAI/SubsetSum/pkg/extensions"
	"github.com/AleutianAI/SubsetSum/services/solver/observability"
	"github.com/gin-gonic/gin"
)

// =============================================================================
// Context Keys
// =============================================================================

// authInfoKey is the context key for storing AuthInfo.
const authInfoKey = "subsetsum_auth_info"

// APIKeyHeader carries an API key. It takes precedence over a bearer token.
const APIKeyHeader = "X-API-Key"

// =============================================================================
// Context Helpers
// =============================================================================

// SetAuthInfo stores the authenticated user info in the Gin context.
//
// # Description
//
// Called by AuthMiddleware after successful authentication.
// The stored AuthInfo can be retrieved by handlers via GetAuthInfo.
//
// # Thread Safety
//
// Safe to call concurrently (Gin context is request-scoped).
func SetAuthInfo(c *gin.Context, info *extensions.AuthInfo) {
	c.Set(authInfoKey, info)
}

// GetAuthInfo retrieves the authenticated user info from the Gin context.
// Returns nil when the request was not authenticated.
func GetAuthInfo(c *gin.Context) *extensions.AuthInfo {
	if info, exists := c.Get(authInfoKey); exists {
		if authInfo, ok := info.(*extensions.AuthInfo); ok {
			return authInfo
		}
	}
	return nil
}

// UserID returns the authenticated user, or "anonymous".
func UserID(c *gin.Context) string {
	if info := GetAuthInfo(c); info != nil && info.UserID != "" {
		return info.UserID
	}
	return "anonymous"
}

// =============================================================================
// Auth Middleware
// =============================================================================

// AuthMiddleware creates a Gin middleware that authenticates requests.
//
// # Description
//
// Takes the credential from the X-API-Key header, falling back to
// "Authorization: Bearer <token>", validates it with provider and stores
// the resulting AuthInfo for downstream handlers. Failures abort with 401
// and are written to audit as EventAuthFailed.
//
// # Inputs
//
//   - provider: Validates credentials. Must not be nil.
//   - audit: Receives auth failures. Nil disables auditing.
//   - metrics: Counts auth failures. Nil disables them.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware function ready for use with Gin
//
// # Examples
//
//	v1 := router.Group("/v1")
//	v1.Use(middleware.AuthMiddleware(opts.AuthProvider, opts.AuditLogger, metrics))
//
// # Thread Safety
//
// Thread-safe. The returned middleware can be used concurrently.
func AuthMiddleware(provider extensions.AuthProvider, audit extensions.AuditLogger, metrics *observability.SolverMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)

		authInfo, err := provider.Validate(c.Request.Context(), token)
		if err != nil {
			if metrics != nil {
				metrics.RecordError(observability.EndpointForPath(c.FullPath()), observability.ErrorCodeUnauthorized)
			}
			if audit != nil {
				_ = audit.Log(c.Request.Context(), extensions.AuditEvent{
					EventType: extensions.EventAuthFailed,
					UserID:    "anonymous",
					RequestID: GetRequestID(c),
					Outcome:   extensions.OutcomeRejected,
					Metadata: map[string]any{
						"path":      c.FullPath(),
						"has_token": token != "",
					},
				})
			}
			msg := "authentication failed"
			if errors.Is(err, extensions.ErrUnauthorized) {
				msg = "unauthorized"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      msg,
				"request_id": GetRequestID(c),
			})
			return
		}

		SetAuthInfo(c, authInfo)
		c.Next()
	}
}

// =============================================================================
// Helper Functions
// =============================================================================

// extractToken returns the X-API-Key header, or the bearer token of the
// Authorization header, or "".
func extractToken(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(APIKeyHeader)); key != "" {
		return key
	}
	return extractBearerToken(c)
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is case-insensitive per RFC 7235. Returns "" when the header
// is missing or malformed.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
