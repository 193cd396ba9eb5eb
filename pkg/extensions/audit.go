// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Audit event types emitted by the solver service.
const (
	EventSolve      = "solve.request"
	EventAuthFailed = "auth.failed"
)

// Audit outcomes.
const (
	OutcomeMatched  = "matched"
	OutcomeNoMatch  = "no_match"
	OutcomeRejected = "rejected"
	OutcomeAborted  = "aborted"
	OutcomeError    = "error"
)

// AuditEvent records one security-relevant action.
type AuditEvent struct {
	// EventType is "category.action", e.g. EventSolve.
	EventType string

	// Timestamp is set to time.Now().UTC() by implementations when zero.
	Timestamp time.Time

	// UserID is "anonymous" when the caller is unknown.
	UserID string

	// RequestID correlates the event with logs and the response body.
	RequestID string

	// Outcome is one of the Outcome* constants.
	Outcome string

	// Metadata holds event-specific values such as list length and
	// strategy. Never the list itself.
	Metadata map[string]any
}

// AuditLogger records audit events.
//
// Log must return quickly; it is called on the request path.
type AuditLogger interface {
	Log(ctx context.Context, event AuditEvent) error
	Flush(ctx context.Context) error
}

// NopAuditLogger discards every event.
type NopAuditLogger struct{}

func (l *NopAuditLogger) Log(context.Context, AuditEvent) error { return nil }
func (l *NopAuditLogger) Flush(context.Context) error           { return nil }

// =============================================================================
// slog Audit Logger
// =============================================================================

// SlogAuditLogger writes audit events as structured records at Info level
// under the "audit" group.
type SlogAuditLogger struct {
	logger *slog.Logger
}

// NewSlogAuditLogger returns an audit logger backed by logger, or by
// slog.Default() when logger is nil.
func NewSlogAuditLogger(logger *slog.Logger) *SlogAuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAuditLogger{logger: logger}
}

// Log writes event.
func (l *SlogAuditLogger) Log(ctx context.Context, event AuditEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	attrs := []any{
		slog.String("event", event.EventType),
		slog.Time("at", event.Timestamp),
		slog.String("user_id", event.UserID),
		slog.String("request_id", event.RequestID),
		slog.String("outcome", event.Outcome),
	}
	for k, v := range event.Metadata {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.InfoContext(ctx, "audit", slog.Group("audit", attrs...))
	return nil
}

// Flush is a no-op; records are written synchronously.
func (l *SlogAuditLogger) Flush(context.Context) error { return nil }

// =============================================================================
// In-Memory Audit Logger
// =============================================================================

// MemoryAuditLogger keeps events in memory. Used by tests and by the CLI's
// in-process server.
type MemoryAuditLogger struct {
	mu     sync.Mutex
	events []AuditEvent
}

// NewMemoryAuditLogger returns an empty MemoryAuditLogger.
func NewMemoryAuditLogger() *MemoryAuditLogger {
	return &MemoryAuditLogger{}
}

func (l *MemoryAuditLogger) Log(_ context.Context, event AuditEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *MemoryAuditLogger) Flush(context.Context) error { return nil }

// Events returns a copy of the recorded events.
func (l *MemoryAuditLogger) Events() []AuditEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEvent, len(l.events))
	copy(out, l.events)
	return out
}

var (
	_ AuditLogger = (*NopAuditLogger)(nil)
	_ AuditLogger = (*SlogAuditLogger)(nil)
	_ AuditLogger = (*MemoryAuditLogger)(nil)
)
