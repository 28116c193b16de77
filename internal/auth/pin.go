package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/minetrack/plodsync/internal/common"
)

// MinPINLength is the shortest PIN accepted when setting one.
const MinPINLength = 4

// HashPIN validates and bcrypt-hashes a numeric PIN for storage on a
// user profile.
func HashPIN(pin string) (string, error) {
	if !validPIN(pin) {
		return "", common.ErrInvalidPIN
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPIN compares a candidate PIN against a stored hash. The error is
// always common.ErrInvalidPIN on mismatch so callers cannot distinguish a
// wrong PIN from a missing hash.
func VerifyPIN(hash, pin string) error {
	if hash == "" {
		return common.ErrInvalidPIN
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return common.ErrInvalidPIN
	}
	return nil
}

func validPIN(pin string) bool {
	if len(pin) < MinPINLength {
		return false
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
