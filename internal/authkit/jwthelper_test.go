package authkit

import (
	"testing"
	"time"
)

type fixedClock struct {
	timestamp time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.timestamp
}

func TestMintAccessTokenCarriesClockTimestamps(t *testing.T) {
	t.Parallel()

	reference := time.Unix(1700000000, 0).UTC()
	token, expiresAt, err := MintAccessToken("user-123", "user@example.com", "issuer", []byte("signing-key"), 2*time.Minute, fixedClock{timestamp: reference})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected signed token")
	}
	expectedExpiry := reference.Add(2 * time.Minute)
	if !expiresAt.Equal(expectedExpiry) {
		t.Fatalf("expected expiry %v, got %v", expectedExpiry, expiresAt)
	}
}

func TestParseAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	reference := time.Unix(1700000000, 0).UTC()
	token, _, err := MintAccessToken("user-123", "user@example.com", "issuer", []byte("signing-key"), 2*time.Minute, fixedClock{timestamp: reference})
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	claims, parseErr := ParseAccessToken(token, "issuer", []byte("signing-key"), fixedClock{timestamp: reference.Add(time.Minute)})
	if parseErr != nil {
		t.Fatalf("parse error: %v", parseErr)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("expected user-123, got %s", claims.UserID)
	}
	if claims.UserEmail != "user@example.com" {
		t.Fatalf("expected user@example.com, got %s", claims.UserEmail)
	}
}

func TestParseAccessTokenExpiryBoundary(t *testing.T) {
	t.Parallel()

	reference := time.Unix(1700000000, 0).UTC()
	token, expiresAt, err := MintAccessToken("user-123", "user@example.com", "issuer", []byte("signing-key"), 2*time.Minute, fixedClock{timestamp: reference})
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	if _, parseErr := ParseAccessToken(token, "issuer", []byte("signing-key"), fixedClock{timestamp: expiresAt.Add(-time.Second)}); parseErr != nil {
		t.Fatalf("expected token valid strictly before expiry, got %v", parseErr)
	}
	if _, parseErr := ParseAccessToken(token, "issuer", []byte("signing-key"), fixedClock{timestamp: expiresAt}); parseErr == nil {
		t.Fatalf("expected token invalid at exactly its expiry instant")
	}
	if _, parseErr := ParseAccessToken(token, "issuer", []byte("signing-key"), fixedClock{timestamp: expiresAt.Add(time.Second)}); parseErr == nil {
		t.Fatalf("expected token invalid after expiry")
	}
}

func TestParseAccessTokenUniformFailures(t *testing.T) {
	t.Parallel()

	reference := time.Unix(1700000000, 0).UTC()
	clock := fixedClock{timestamp: reference}
	token, _, err := MintAccessToken("user-123", "user@example.com", "issuer", []byte("signing-key"), 2*time.Minute, clock)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	cases := []struct {
		name   string
		token  string
		issuer string
		key    []byte
	}{
		{name: "wrong key", token: token, issuer: "issuer", key: []byte("other-key")},
		{name: "wrong issuer", token: token, issuer: "other-issuer", key: []byte("signing-key")},
		{name: "tampered", token: token + "x", issuer: "issuer", key: []byte("signing-key")},
		{name: "malformed", token: "not.a.jwt", issuer: "issuer", key: []byte("signing-key")},
		{name: "empty", token: "", issuer: "issuer", key: []byte("signing-key")},
	}
	for _, testCase := range cases {
		if _, parseErr := ParseAccessToken(testCase.token, testCase.issuer, testCase.key, clock); parseErr != ErrInvalidAccessToken {
			t.Fatalf("%s: expected ErrInvalidAccessToken, got %v", testCase.name, parseErr)
		}
	}
}
