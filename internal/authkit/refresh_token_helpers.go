package authkit

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
)

// 32 random bytes; comfortably above the 122-bit floor a v4 UUID would give.
const refreshOpaqueByteLength = 32

// A hash collision is astronomically unlikely but still handled: stores retry
// generation this many times before giving up.
const issueCollisionRetryBudget = 3

// Swappable in tests.
var refreshTokenRandomSource io.Reader = rand.Reader

// generateRefreshOpaque returns a fresh opaque token and the hash stored in
// its place. Only the hash is persisted so a leaked store yields no usable
// credentials.
func generateRefreshOpaque() (string, string, error) {
	randomBytes := make([]byte, refreshOpaqueByteLength)
	if _, err := io.ReadFull(refreshTokenRandomSource, randomBytes); err != nil {
		return "", "", fmt.Errorf("refresh_store.random: %w", err)
	}
	opaque := base64.RawURLEncoding.EncodeToString(randomBytes)
	return opaque, hashOpaque(opaque), nil
}

func hashOpaque(opaque string) string {
	sum := sha256.Sum256([]byte(opaque))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
