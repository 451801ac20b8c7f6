package authkit

import (
	"context"
	"errors"
)

// Authenticator verifies password credentials against the user store.
type Authenticator struct {
	users  UserStore
	hasher *PasswordHasher
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(users UserStore, hasher *PasswordHasher) *Authenticator {
	return &Authenticator{users: users, hasher: hasher}
}

// VerifyCredentials resolves the user for a matching email/password pair.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (authenticator *Authenticator) VerifyCredentials(ctx context.Context, email string, plaintextPassword string) (User, error) {
	user, findErr := authenticator.users.FindByEmail(ctx, email)
	if findErr != nil {
		if errors.Is(findErr, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, findErr
	}
	if !authenticator.hasher.Verify(plaintextPassword, user.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}
