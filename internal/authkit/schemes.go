package authkit

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// CredentialScheme resolves a request's credential material to a user, or
// fails with ErrUnauthenticated. Schemes are the closed set of presentation
// styles the service accepts: password (basic) and access token (bearer).
type CredentialScheme interface {
	Name() string
	Authenticate(ctx context.Context, request *http.Request) (User, error)
}

// BearerScheme authenticates an access token from the Authorization header.
// Claims are not trusted blindly: the user must still exist.
type BearerScheme struct {
	Configuration ServerConfig
	Users         UserStore
	Clock         Clock
}

// Name returns the scheme label used in logs and metrics.
func (scheme *BearerScheme) Name() string {
	return "bearer"
}

// Authenticate verifies the bearer token and loads the subject user.
func (scheme *BearerScheme) Authenticate(ctx context.Context, request *http.Request) (User, error) {
	tokenString, ok := bearerToken(request)
	if !ok {
		return User{}, ErrUnauthenticated
	}
	claims, parseErr := ParseAccessToken(tokenString, scheme.Configuration.AccessJWTIssuer, scheme.Configuration.AccessJWTSigningKey, scheme.Clock)
	if parseErr != nil {
		return User{}, ErrUnauthenticated
	}
	user, findErr := scheme.Users.FindByID(ctx, claims.UserID)
	if findErr != nil {
		if errors.Is(findErr, ErrUserNotFound) {
			return User{}, ErrUnauthenticated
		}
		return User{}, findErr
	}
	return user, nil
}

// BasicScheme authenticates an email/password pair from the Authorization header.
type BasicScheme struct {
	Authenticator *Authenticator
}

// Name returns the scheme label used in logs and metrics.
func (scheme *BasicScheme) Name() string {
	return "basic"
}

// Authenticate verifies the basic credentials against the user store.
func (scheme *BasicScheme) Authenticate(ctx context.Context, request *http.Request) (User, error) {
	email, password, ok := request.BasicAuth()
	if !ok || email == "" {
		return User{}, ErrUnauthenticated
	}
	user, verifyErr := scheme.Authenticator.VerifyCredentials(ctx, email, password)
	if verifyErr != nil {
		if errors.Is(verifyErr, ErrInvalidCredentials) {
			return User{}, ErrUnauthenticated
		}
		return User{}, verifyErr
	}
	return user, nil
}

func bearerToken(request *http.Request) (string, bool) {
	header := request.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
