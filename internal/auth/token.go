// Package auth issues and verifies the signed session tokens that prove a
// prior successful login. Tokens are HS256 JWTs binding the user's id with
// a 24-hour expiry.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is how long an issued session token stays valid.
const TokenTTL = 24 * time.Hour

// Tokens signs and verifies session tokens with a shared secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token service using the given signing secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: TokenTTL}
}

// Issue creates a signed token for the given user id.
func (t *Tokens) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token string and returns the user id it binds.
// Fails on a bad signature, wrong signing method, or expiry.
func (t *Tokens) Verify(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, fmt.Errorf("token missing subject")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject: %w", err)
	}
	return userID, nil
}
