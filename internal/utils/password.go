package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes plain with bcrypt. Costs outside bcrypt's accepted
// range are clamped rather than rejected so a bad BCRYPT_COST cannot take
// registration down. Passwords longer than 72 bytes fail with an error
// wrapping bcrypt.ErrPasswordTooLong.
func HashPassword(plain string, cost int) (string, error) {
	switch {
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// A malformed or empty hash never matches.
func VerifyPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
