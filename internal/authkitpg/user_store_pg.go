package authkitpg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tyemirov/cauth/internal/authkit"
)

// PostgresUserStore persists users in PostgreSQL.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore constructs a Postgres user store.
func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

// Register inserts a new user row. A unique violation on email maps to
// authkit.ErrDuplicateEmail.
func (store *PostgresUserStore) Register(ctx context.Context, user authkit.User) (authkit.User, error) {
	_, execErr := store.pool.Exec(ctx, `
INSERT INTO users (id, email, password_hash, first_name, last_name, created_at_unix, updated_at_unix)
VALUES ($1, $2, $3, $4, $5, EXTRACT(EPOCH FROM now())::BIGINT, EXTRACT(EPOCH FROM now())::BIGINT)
`, user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName)
	if execErr != nil {
		if isUniqueViolation(execErr) {
			return authkit.User{}, fmt.Errorf("user_store.register.postgres: %w", authkit.ErrDuplicateEmail)
		}
		return authkit.User{}, fmt.Errorf("user_store.register.postgres: %w", execErr)
	}
	return user, nil
}

// FindByID returns the user with the given identifier.
func (store *PostgresUserStore) FindByID(ctx context.Context, userID string) (authkit.User, error) {
	return store.findOne(ctx, `
SELECT id, email, password_hash, first_name, last_name FROM users WHERE id = $1
`, userID)
}

// FindByEmail returns the user registered under the exact email.
func (store *PostgresUserStore) FindByEmail(ctx context.Context, email string) (authkit.User, error) {
	return store.findOne(ctx, `
SELECT id, email, password_hash, first_name, last_name FROM users WHERE email = $1
`, email)
}

// List returns all users ordered by email.
func (store *PostgresUserStore) List(ctx context.Context) ([]authkit.User, error) {
	rows, queryErr := store.pool.Query(ctx, `
SELECT id, email, password_hash, first_name, last_name FROM users ORDER BY email
`)
	if queryErr != nil {
		return nil, fmt.Errorf("user_store.list.postgres: %w", queryErr)
	}
	defer rows.Close()

	var users []authkit.User
	for rows.Next() {
		var user authkit.User
		if scanErr := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName); scanErr != nil {
			return nil, fmt.Errorf("user_store.list.postgres: %w", scanErr)
		}
		users = append(users, user)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("user_store.list.postgres: %w", rowsErr)
	}
	return users, nil
}

func (store *PostgresUserStore) findOne(ctx context.Context, query string, argument any) (authkit.User, error) {
	var user authkit.User
	row := store.pool.QueryRow(ctx, query, argument)
	if scanErr := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName); scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return authkit.User{}, fmt.Errorf("user_store.find.postgres: %w", authkit.ErrUserNotFound)
		}
		return authkit.User{}, fmt.Errorf("user_store.find.postgres: %w", scanErr)
	}
	return user, nil
}
