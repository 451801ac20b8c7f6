package authkit

import "errors"

var (
	// ErrRefreshTokenNotFound indicates no refresh token matched the presented value.
	// A token already consumed by a concurrent rotation reports the same error.
	ErrRefreshTokenNotFound = errors.New("refresh_store.not_found")
	// ErrRefreshTokenExpired indicates the refresh token exceeded its expiry before
	// consumption. The row is gone by the time this error is returned.
	ErrRefreshTokenExpired = errors.New("refresh_store.expired")
	// ErrRefreshTokenEmptyOpaque indicates that the provided opaque token text is empty.
	ErrRefreshTokenEmptyOpaque = errors.New("refresh_store.empty_token")
	// ErrRefreshTokenCollision signals that opaque generation kept colliding with
	// stored hashes and the retry budget ran out.
	ErrRefreshTokenCollision = errors.New("refresh_store.collision_retries_exhausted")
)
