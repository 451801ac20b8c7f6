package authkit

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the lowest hashing cost the service accepts.
const MinBcryptCost = 10

// PasswordHasher hashes and verifies passwords with bcrypt. The salt is
// generated per call and embedded in the digest.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher constructs a hasher, raising the cost to MinBcryptCost
// when a lower value is supplied.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash derives a salted digest from the plaintext password.
func (hasher *PasswordHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("password.hash: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether the plaintext matches the digest. A malformed digest
// verifies as false rather than erroring.
func (hasher *PasswordHasher) Verify(plaintext string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
