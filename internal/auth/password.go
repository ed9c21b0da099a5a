// Package auth — password hashing.
//
// bcrypt is deliberately slow, generates and embeds a random salt per hash,
// and tunes its work factor via "cost". Two users with the same password
// get different hashes, and brute-forcing a stolen hash table is expensive.
// Never store passwords with a fast hash (MD5, SHA-256) — those fall to
// GPU rigs in minutes.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
// Cost 12 takes roughly 250ms on current server hardware — negligible for
// a signin, brutal for an attacker. Tune BCRYPT_COST so hashing stays in
// the 200–300ms range as hardware improves.
const DefaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// The cost is injected rather than hardcoded so that the deployment can
// tune it (SALT_ROUNDS-style config) and tests can drop to the bcrypt
// minimum, which shaves ~250ms off every hashing test.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given cost.
// Costs outside bcrypt's valid range fall back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost}
}

// NewPasswordServiceForTest creates a PasswordService with bcrypt's
// minimum cost. Do not use in production — cost 4 is far too weak.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Hash hashes a plaintext password. The output embeds salt and cost, so it
// can be stored as-is and later checked with Verify.
//
// bcrypt silently truncates inputs past 72 bytes; we reject them instead
// so callers aren't surprised.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks a plaintext password against a stored hash. Returns nil on
// match. The comparison inside bcrypt is constant-time, so response timing
// leaks nothing about how close a guess was.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
