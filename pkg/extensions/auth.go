// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
)

// ErrUnauthorized is returned when a credential is missing or invalid.
// Implementations wrap it with context.
var ErrUnauthorized = errors.New("unauthorized")

// AuthInfo is the identity attached to an authenticated request.
type AuthInfo struct {
	// UserID is never empty.
	UserID string

	// Roles lists the caller's roles.
	Roles []string
}

// HasRole reports whether the caller holds role.
func (a *AuthInfo) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// AuthProvider validates a request credential.
//
// # Inputs
//
//   - ctx: Request context.
//   - token: The raw credential, e.g. the X-API-Key header. May be empty.
//
// # Outputs
//
//   - *AuthInfo: The caller's identity when valid.
//   - error: ErrUnauthorized (possibly wrapped) when invalid.
type AuthProvider interface {
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// NopAuthProvider accepts every token as "local-user".
type NopAuthProvider struct{}

// Validate always succeeds.
func (p *NopAuthProvider) Validate(_ context.Context, _ string) (*AuthInfo, error) {
	return &AuthInfo{UserID: "local-user", Roles: []string{"admin"}}, nil
}

// =============================================================================
// Static API Keys
// =============================================================================

// APIKeyProvider authenticates requests against a fixed set of API keys.
//
// # Description
//
// Keys map to user IDs. Tokens are compared by SHA-256 digest in constant
// time so the lookup does not leak key prefixes through timing.
//
// # Thread Safety
//
// Immutable after construction.
type APIKeyProvider struct {
	keys []apiKey
}

type apiKey struct {
	digest [sha256.Size]byte
	userID string
}

// NewAPIKeyProvider builds a provider from a key -> user ID map. Entries
// with an empty key are ignored; an empty user ID defaults to "api-user".
func NewAPIKeyProvider(keys map[string]string) *APIKeyProvider {
	p := &APIKeyProvider{}
	for key, user := range keys {
		if key == "" {
			continue
		}
		if user == "" {
			user = "api-user"
		}
		p.keys = append(p.keys, apiKey{digest: sha256.Sum256([]byte(key)), userID: user})
	}
	return p
}

// Validate returns the user bound to token.
func (p *APIKeyProvider) Validate(_ context.Context, token string) (*AuthInfo, error) {
	if token == "" {
		return nil, fmt.Errorf("missing api key: %w", ErrUnauthorized)
	}
	digest := sha256.Sum256([]byte(token))
	var match *apiKey
	for i := range p.keys {
		if subtle.ConstantTimeCompare(digest[:], p.keys[i].digest[:]) == 1 {
			match = &p.keys[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("unknown api key: %w", ErrUnauthorized)
	}
	return &AuthInfo{UserID: match.userID, Roles: []string{"solver"}}, nil
}

var (
	_ AuthProvider = (*NopAuthProvider)(nil)
	_ AuthProvider = (*APIKeyProvider)(nil)
)
