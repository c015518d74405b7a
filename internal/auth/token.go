package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"

	"github.com/Additional-Code/bookstore/internal/config"
	"github.com/Additional-Code/bookstore/internal/identity"
	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

// Claims is the JWT payload issued on login. Subject holds the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a TokenManager from application config.
func NewTokenManager(cfg config.Config) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.Auth.Secret),
		ttl:    cfg.Auth.TokenTTL,
	}
}

// Issue signs a token for the given identity.
func (m *TokenManager) Issue(id identity.Identity) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token, returning the caller identity.
// Any failure, including expiry, is reported as a forbidden error.
func (m *TokenManager) Verify(raw string) (identity.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return identity.Identity{}, errorbank.Forbidden("invalid or expired token", errorbank.WithCause(err))
	}

	role, err := identity.ParseRole(claims.Role)
	if err != nil {
		return identity.Identity{}, errorbank.Forbidden("invalid or expired token", errorbank.WithCause(err))
	}
	return identity.Identity{Subject: claims.Subject, Role: role}, nil
}

// Module provides the token manager to the fx graph.
var Module = fx.Provide(NewTokenManager)
