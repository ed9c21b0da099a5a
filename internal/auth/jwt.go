// Package auth provides the credential primitives for the API: JWT bearer
// tokens, bcrypt password hashing, the Authorization-header middleware, and
// the optional GitHub OAuth provider.
//
// AUTHENTICATION FLOW:
//  1. POST /api/v1/signup stores a user with a bcrypt password hash
//  2. POST /api/v1/signin verifies the password and issues a JWT
//  3. The client sends "Authorization: Bearer <token>" on every protected
//     request; RequireAuth validates the signature and puts the userID in
//     the request context
//
// The server is stateless — no session store. Everything needed to
// authenticate a request (userID, expiry) is inside the signed token, and
// each request independently re-verifies the signature against the shared
// secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "second-brain"

// DefaultTokenTTL is the token lifetime used when none is configured.
// The tokens are bearer credentials; a finite expiry bounds the damage of
// a leaked token, at the cost of the client re-authenticating daily.
const DefaultTokenTTL = 24 * time.Hour

// TokenService signs and verifies JWT access tokens.
//
// It holds the HMAC secret and the token lifetime. The same secret must be
// used for signing and verifying — rotate it and every outstanding token
// becomes invalid, which is the intended effect.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in
// production (JWT_SECRET=$(openssl rand -hex 32)); anything under 16
// characters is rejected outright. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload. The user's internal ID lives in "sub"
// (Subject), the standard claim for identifying the token's principal.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new access token for the given userID.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and fine for a
// single-server deployment sharing one secret.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry. Used by tests
// to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the userID it
// encodes.
//
// The jwt library checks the signature, the expiry, and the issuer.
// jwt.WithValidMethods pins the algorithm to HS256 so a token claiming
// alg=none (or an RSA public-key confusion trick) is rejected before the
// key function even runs.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
