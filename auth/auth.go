// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrNoIdentity   = errors.New("no identity in context")
)

// DefaultTokenTTL is how long issued tokens stay valid
const DefaultTokenTTL = 12 * time.Hour

// NewID returns a random document ID
func NewID() string {
	return uuid.NewString()
}

// Identity is the signed-in user as reported by the identity provider
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenAuthority issues and verifies HS256 bearer tokens.
// The subject claim carries the stable user id.
type TokenAuthority struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenAuthority(secret string, ttl time.Duration) (*TokenAuthority, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenAuthority{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the identity
func (a *TokenAuthority) Issue(id Identity) (string, error) {
	if strings.TrimSpace(id.ID) == "" {
		return "", errors.New("identity id is required")
	}

	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name: id.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the identity
func (a *TokenAuthority) Verify(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrMissingToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var c claims
	_, err := parser.ParseWithClaims(raw, &c, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !c.VerifyExpiresAt(a.now(), true) {
		return Identity{}, ErrExpiredToken
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	return Identity{ID: c.Subject, DisplayName: c.Name}, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

type ctxKey struct{}

// WithIdentity stores the identity on the request context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity set by WithIdentity
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.ID == "" {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
