// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// ============================================================================
// ServiceOptions Tests
// ============================================================================

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if _, ok := opts.AuthProvider.(*NopAuthProvider); !ok {
		t.Error("DefaultOptions().AuthProvider should be *NopAuthProvider")
	}
	if _, ok := opts.AuditLogger.(*NopAuditLogger); !ok {
		t.Error("DefaultOptions().AuditLogger should be *NopAuditLogger")
	}
}

func TestServiceOptions_Normalize(t *testing.T) {
	opts := ServiceOptions{}.Normalize()

	if opts.AuthProvider == nil || opts.AuditLogger == nil {
		t.Fatal("Normalize should fill nil fields")
	}

	custom := NewMemoryAuditLogger()
	opts = ServiceOptions{AuditLogger: custom}.Normalize()
	if opts.AuditLogger != custom {
		t.Error("Normalize should keep non-nil fields")
	}
}

func TestServiceOptions_WithIsCopy(t *testing.T) {
	original := DefaultOptions()
	provider := NewAPIKeyProvider(map[string]string{"k": "u"})
	auditor := NewMemoryAuditLogger()

	updated := original.WithAuth(provider).WithAudit(auditor)

	if updated.AuthProvider != provider || updated.AuditLogger != auditor {
		t.Error("With* should set the given implementations")
	}
	if _, ok := original.AuthProvider.(*NopAuthProvider); !ok {
		t.Error("original options should be unchanged")
	}
}

// ============================================================================
// Auth Tests
// ============================================================================

func TestNopAuthProvider_AcceptsAnything(t *testing.T) {
	info, err := (&NopAuthProvider{}).Validate(context.Background(), "")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if info.UserID != "local-user" || !info.HasRole("admin") {
		t.Errorf("unexpected identity %+v", info)
	}
}

func TestAPIKeyProvider_Validate(t *testing.T) {
	provider := NewAPIKeyProvider(map[string]string{
		"secret-1": "alice",
		"secret-2": "",
		"":         "ignored",
	})

	tests := []struct {
		name     string
		token    string
		wantUser string
		wantErr  bool
	}{
		{"known key", "secret-1", "alice", false},
		{"default user", "secret-2", "api-user", false},
		{"unknown key", "secret-3", "", true},
		{"prefix of key", "secret", "", true},
		{"missing key", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := provider.Validate(context.Background(), tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrUnauthorized) {
					t.Fatalf("Validate(%q) error = %v, want ErrUnauthorized", tt.token, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate(%q) error = %v", tt.token, err)
			}
			if info.UserID != tt.wantUser {
				t.Errorf("UserID = %q, want %q", info.UserID, tt.wantUser)
			}
			if !info.HasRole("solver") {
				t.Error("API key users should hold the solver role")
			}
		})
	}
}

// ============================================================================
// Audit Tests
// ============================================================================

func TestNopAuditLogger(t *testing.T) {
	l := &NopAuditLogger{}
	if err := l.Log(context.Background(), AuditEvent{EventType: EventSolve}); err != nil {
		t.Errorf("Log() = %v", err)
	}
	if err := l.Flush(context.Background()); err != nil {
		t.Errorf("Flush() = %v", err)
	}
}

func TestSlogAuditLogger_WritesGroup(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := l.Log(context.Background(), AuditEvent{
		EventType: EventSolve,
		UserID:    "alice",
		RequestID: "req-1",
		Outcome:   OutcomeMatched,
		Metadata:  map[string]any{"elements": 4},
	})
	if err != nil {
		t.Fatalf("Log() = %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"audit":{`, `"event":"solve.request"`, `"user_id":"alice"`, `"outcome":"matched"`, `"elements":4`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestMemoryAuditLogger_StampsAndCopies(t *testing.T) {
	l := NewMemoryAuditLogger()
	before := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Log(context.Background(), AuditEvent{EventType: EventSolve})
		}()
	}
	wg.Wait()

	events := l.Events()
	if len(events) != 10 {
		t.Fatalf("got %d events, want 10", len(events))
	}
	if events[0].Timestamp.Before(before) {
		t.Error("zero timestamps should be stamped on Log")
	}

	events[0].EventType = "mutated"
	if l.Events()[0].EventType != EventSolve {
		t.Error("Events should return a copy")
	}
}
