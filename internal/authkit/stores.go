package authkit

import "context"

// UserStore persists and retrieves application users. Email uniqueness is
// case-sensitive and enforced by the store.
type UserStore interface {
	Register(ctx context.Context, user User) (User, error)
	FindByID(ctx context.Context, userID string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
}

// RefreshTokenStore manages single-use opaque refresh tokens.
type RefreshTokenStore interface {
	// Issue persists a fresh token for the user and returns its opaque value.
	Issue(ctx context.Context, userID string, expiresUnix int64) (tokenOpaque string, err error)
	// Consume removes the token in the same operation that reads it, so at most
	// one concurrent caller receives the owning user. An expired token is also
	// removed and reported as ErrRefreshTokenExpired.
	Consume(ctx context.Context, tokenOpaque string) (userID string, err error)
}
