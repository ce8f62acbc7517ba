// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth issues and checks the bearer tokens API clients send in the
// Authorization header. Tokens are HS256-signed JWTs in access/refresh
// pairs.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

const issuer = "inkwell"

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("token is invalid or expired")

// Claims is the JWT payload. The subject is the user id.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Pair is what a successful login returns.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService signs and verifies tokens with a shared secret.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService returns a service signing with secret.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, opts ...Option) *TokenService {
	s := &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssuePair returns a fresh access and refresh token for userID.
func (s *TokenService) IssuePair(userID uuid.UUID) (Pair, error) {
	access, err := s.sign(userID, TypeAccess, s.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.sign(userID, TypeRefresh, s.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// ParseAccess returns the user id of a valid access token.
func (s *TokenService) ParseAccess(token string) (uuid.UUID, error) {
	return s.subject(token, TypeAccess)
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *TokenService) Refresh(refresh string) (string, error) {
	userID, err := s.subject(refresh, TypeRefresh)
	if err != nil {
		return "", err
	}
	return s.sign(userID, TypeAccess, s.accessTTL)
}

// Verify reports whether token, of either type, is valid.
func (s *TokenService) Verify(token string) error {
	_, err := s.parse(token)
	return err
}

func (s *TokenService) sign(userID uuid.UUID, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *TokenService) parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *TokenService) subject(token, wantType string) (uuid.UUID, error) {
	claims, err := s.parse(token)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.TokenType != wantType {
		return uuid.Nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, wantType)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}
