// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package identity carries the caller of a request through its context.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// Method records how a principal proved who it is.
type Method string

const (
	MethodNone    Method = ""
	MethodToken   Method = "token"
	MethodSession Method = "session"
)

// Principal is the caller of a request. The zero value is anonymous.
type Principal struct {
	UserID   uuid.UUID
	Username string
	IsStaff  bool
	Method   Method
}

// Anonymous returns the principal used when no credentials were presented.
func Anonymous() Principal {
	return Principal{}
}

// IsAuthenticated reports whether the principal belongs to a user.
func (p Principal) IsAuthenticated() bool {
	return p.UserID != uuid.Nil
}

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(contextKey{}).(Principal)
	return p
}
