package authkit

import "errors"

var (
	// ErrDuplicateEmail indicates a registration attempt for an email that is
	// already taken.
	ErrDuplicateEmail = errors.New("user_store.duplicate_email")
	// ErrUserNotFound indicates no user matched the lookup.
	ErrUserNotFound = errors.New("user_store.not_found")
	// ErrInvalidCredentials indicates the email/password pair did not resolve to
	// a user. Unknown email and wrong password are indistinguishable.
	ErrInvalidCredentials = errors.New("auth.invalid_credentials")
	// ErrUnauthenticated indicates no credential scheme accepted the request.
	ErrUnauthenticated = errors.New("auth.unauthenticated")
)
