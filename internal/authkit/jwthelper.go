package authkit

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidAccessToken covers every verification failure uniformly: bad
// signature, malformed structure, wrong algorithm, wrong issuer, or expiry.
// Callers must not learn which check failed.
var ErrInvalidAccessToken = errors.New("access_token.invalid")

// AccessTokenClaims are embedded in the signed access token.
type AccessTokenClaims struct {
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
	jwt.RegisteredClaims
}

// MintAccessToken creates a signed HS256 access token for the user.
func MintAccessToken(userID string, userEmail string, issuer string, signingKey []byte, ttl time.Duration, clock Clock) (string, time.Time, error) {
	issuedAt := orSystemClock(clock).Now()
	expiresAt := issuedAt.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		UserID:    userID,
		UserEmail: userEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt.Add(-30 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("access_token.sign: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAccessToken verifies signature, issuer, and lifetime, returning the
// claims on success. The token is invalid at and after its expiry instant.
func ParseAccessToken(tokenString string, issuer string, signingKey []byte, clock Clock) (*AccessTokenClaims, error) {
	clock = orSystemClock(clock)
	parsedToken, parseErr := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(parsed *jwt.Token) (interface{}, error) {
		return signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time {
		return clock.Now()
	}))
	if parseErr != nil || parsedToken == nil || !parsedToken.Valid {
		return nil, ErrInvalidAccessToken
	}
	claims, ok := parsedToken.Claims.(*AccessTokenClaims)
	if !ok || claims.UserID == "" {
		return nil, ErrInvalidAccessToken
	}
	if claims.Issuer != issuer {
		return nil, ErrInvalidAccessToken
	}
	if claims.ExpiresAt == nil || !clock.Now().Before(claims.ExpiresAt.Time) {
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}
