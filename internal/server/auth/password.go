package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/opavlenko/taskhub/internal/common"
)

// PasswordHasher hashes and verifies user passwords with bcrypt. Each hash
// embeds its own random salt and cost, so hashing the same password twice
// yields different strings.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given bcrypt cost.
// A cost of 0 selects bcrypt.DefaultCost.
func NewPasswordHasher(cost int) PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return PasswordHasher{cost: cost}
}

// Hash derives a one-way hash of plaintext.
func (h PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", common.ErrHashing
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash. The comparison
// is constant-time inside bcrypt. A mismatch is (false, nil); an error is
// returned only when the stored hash is not a recognizable bcrypt string.
func (h PasswordHasher) Verify(plaintext, passwordHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, common.ErrMalformedHash
	}
}
