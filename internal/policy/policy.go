// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package policy decides which articles a caller may see and change.
// Nothing here performs I/O.
package policy

import (
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/identity"
	"inkwell/internal/models"
)

// Scope is the set of articles visible to a caller, in a form the store can
// turn into a WHERE clause. The zero value admits published articles only.
type Scope struct {
	// Unrestricted admits every row regardless of status.
	Unrestricted bool
	// OwnerID, when set, also admits unpublished rows by that author.
	OwnerID uuid.UUID
}

// PublishedOnly is the scope of an anonymous caller.
func PublishedOnly() Scope {
	return Scope{}
}

// ScopeFor returns the visibility scope of p. Staff see everything,
// authors see their own rows plus everything published.
func ScopeFor(p identity.Principal) Scope {
	switch {
	case !p.IsAuthenticated():
		return PublishedOnly()
	case p.IsStaff:
		return Scope{Unrestricted: true}
	default:
		return Scope{OwnerID: p.UserID}
	}
}

// Allows is the in-memory form of the scope.
func (s Scope) Allows(a *models.Article) bool {
	if s.Unrestricted || a.Status == models.StatusPublished {
		return true
	}
	return s.OwnerID != uuid.Nil && a.AuthorID == s.OwnerID
}

// CanRead reports whether p may see a.
func CanRead(p identity.Principal, a *models.Article) bool {
	return ScopeFor(p).Allows(a)
}

// WritePolicy decides article writes. With StrictOwnership unset any
// authenticated caller may change any article visible to them; with it
// set only the author or staff may.
type WritePolicy struct {
	StrictOwnership bool
}

// CanCreate returns an AuthorizationError unless p is authenticated.
func (wp WritePolicy) CanCreate(p identity.Principal) error {
	if !p.IsAuthenticated() {
		return apperr.Unauthenticated()
	}
	return nil
}

// CanModify returns an AuthorizationError if p may not update or delete a.
// Callers resolve a through ScopeFor(p) first, so invisible rows never
// reach this point.
func (wp WritePolicy) CanModify(p identity.Principal, a *models.Article) error {
	if !p.IsAuthenticated() {
		return apperr.Unauthenticated()
	}
	if wp.StrictOwnership && !p.IsStaff && a.AuthorID != p.UserID {
		return apperr.Forbidden("Only the author or staff may modify this article.")
	}
	return nil
}

// CanWriteCategory returns an AuthorizationError unless p is authenticated.
// Categories are shared, so there is no ownership check.
func CanWriteCategory(p identity.Principal) error {
	if !p.IsAuthenticated() {
		return apperr.Unauthenticated()
	}
	return nil
}
