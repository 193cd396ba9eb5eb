// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/AleutianAI/SubsetSum/pkg/extensions"
	"github.com/AleutianAI/SubsetSum/services/solver/handlers"
	"github.com/AleutianAI/SubsetSum/services/solver/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries what SetupRoutes wires besides the handlers.
type Options struct {
	// Auth guards the solve routes.
	Auth extensions.AuthProvider

	// Audit receives auth failures.
	Audit extensions.AuditLogger

	// Gatherer is served on /metrics. Nil leaves /metrics unregistered.
	Gatherer prometheus.Gatherer

	// RateLimit is requests per second across the solve routes; 0 disables.
	RateLimit float64
	Burst     int
}

// SetupRoutes registers the solver's routes. Liveness and metrics routes
// are open; the solve routes go through rate limiting and auth.
func SetupRoutes(router *gin.Engine, deps handlers.Deps, opts Options) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/test", handlers.HandleTest)
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	auth := opts.Auth
	if auth == nil {
		auth = &extensions.NopAuthProvider{}
	}
	guarded := []gin.HandlerFunc{
		middleware.RateLimit(opts.RateLimit, opts.Burst, deps.Metrics),
		middleware.AuthMiddleware(auth, opts.Audit, deps.Metrics),
	}

	// Legacy route of the original service
	router.POST("/subsetSum", append(guarded, handlers.HandleLegacySubsetSum(deps))...)

	// API version 1 group
	v1 := router.Group("/v1", guarded...)
	{
		v1.POST("/subsets", handlers.HandleSubsets(deps))
	}
}
