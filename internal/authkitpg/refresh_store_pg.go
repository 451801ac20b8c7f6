package authkitpg

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tyemirov/cauth/internal/authkit"
)

const (
	opaqueByteLength      = 32
	collisionRetryBudget  = 3
	pgUniqueViolationCode = "23505"
)

// PostgresRefreshTokenStore persists single-use refresh tokens in PostgreSQL.
// Consume is one DELETE ... RETURNING statement, so the read and the delete
// cannot be separated by a concurrent rotation.
type PostgresRefreshTokenStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresRefreshTokenStore constructs a Postgres store.
func NewPostgresRefreshTokenStore(pool *pgxpool.Pool) *PostgresRefreshTokenStore {
	return &PostgresRefreshTokenStore{
		pool: pool,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Issue inserts a new token row and returns the opaque token.
func (store *PostgresRefreshTokenStore) Issue(ctx context.Context, userID string, expiresUnix int64) (string, error) {
	for attempt := 0; attempt < collisionRetryBudget; attempt++ {
		opaque, hashValue, randomErr := randomOpaque()
		if randomErr != nil {
			return "", fmt.Errorf("refresh_store.issue.postgres: %w", randomErr)
		}
		_, execErr := store.pool.Exec(ctx, `
INSERT INTO refresh_tokens (token_hash, user_id, expires_unix, issued_at_unix)
VALUES ($1, $2, $3, $4)
`, hashValue, userID, expiresUnix, store.now().Unix())
		if execErr == nil {
			return opaque, nil
		}
		if isUniqueViolation(execErr) {
			continue
		}
		return "", fmt.Errorf("refresh_store.issue.postgres: %w", execErr)
	}
	return "", fmt.Errorf("refresh_store.issue.postgres: %w", authkit.ErrRefreshTokenCollision)
}

// Consume atomically deletes the token and returns the owning user.
func (store *PostgresRefreshTokenStore) Consume(ctx context.Context, tokenOpaque string) (string, error) {
	if strings.TrimSpace(tokenOpaque) == "" {
		return "", fmt.Errorf("refresh_store.consume.postgres: %w", authkit.ErrRefreshTokenEmptyOpaque)
	}
	var userID string
	var expiresUnix int64
	row := store.pool.QueryRow(ctx, `
DELETE FROM refresh_tokens
WHERE token_hash = $1
RETURNING user_id, expires_unix
`, hashOpaque(tokenOpaque))
	if scanErr := row.Scan(&userID, &expiresUnix); scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return "", fmt.Errorf("refresh_store.consume.postgres: %w", authkit.ErrRefreshTokenNotFound)
		}
		return "", fmt.Errorf("refresh_store.consume.postgres: %w", scanErr)
	}
	if time.Unix(expiresUnix, 0).Before(store.now()) {
		return "", fmt.Errorf("refresh_store.consume.postgres: %w", authkit.ErrRefreshTokenExpired)
	}
	return userID, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}

func randomOpaque() (string, string, error) {
	randomBytes := make([]byte, opaqueByteLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	opaque := base64.RawURLEncoding.EncodeToString(randomBytes)
	return opaque, hashOpaque(opaque), nil
}

func hashOpaque(opaque string) string {
	sum := sha256.Sum256([]byte(opaque))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
