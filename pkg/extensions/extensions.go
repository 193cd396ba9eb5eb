// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines the pluggable edges of the solver service.
//
// The service runs fully open by default: every request is accepted as the
// local user and nothing is audited. Deployments that need more inject
// implementations through ServiceOptions:
//
//	opts := extensions.DefaultOptions().
//	    WithAuth(extensions.NewAPIKeyProvider(keys)).
//	    WithAudit(extensions.NewSlogAuditLogger(logger.Slog()))
//	svc, err := solver.New(cfg, opts)
//
// All implementations must be safe for concurrent use.
package extensions

// ServiceOptions groups the extension points a service is built with.
// Nil fields are replaced with no-op defaults by Normalize.
type ServiceOptions struct {
	// AuthProvider validates the credential presented with each request.
	// Default: NopAuthProvider.
	AuthProvider AuthProvider

	// AuditLogger records every solve request and its outcome.
	// Default: NopAuditLogger.
	AuditLogger AuditLogger
}

// DefaultOptions returns ServiceOptions with no-op implementations.
func DefaultOptions() ServiceOptions {
	return ServiceOptions{
		AuthProvider: &NopAuthProvider{},
		AuditLogger:  &NopAuditLogger{},
	}
}

// Normalize returns a copy of opts with nil fields set to their defaults.
func (opts ServiceOptions) Normalize() ServiceOptions {
	if opts.AuthProvider == nil {
		opts.AuthProvider = &NopAuthProvider{}
	}
	if opts.AuditLogger == nil {
		opts.AuditLogger = &NopAuditLogger{}
	}
	return opts
}

// WithAuth returns a copy of opts with the given AuthProvider.
func (opts ServiceOptions) WithAuth(provider AuthProvider) ServiceOptions {
	opts.AuthProvider = provider
	return opts
}

// WithAudit returns a copy of opts with the given AuditLogger.
func (opts ServiceOptions) WithAudit(logger AuditLogger) ServiceOptions {
	opts.AuditLogger = logger
	return opts
}
