package authkit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// DatabaseRefreshTokenStore persists single-use refresh tokens using GORM.
type DatabaseRefreshTokenStore struct {
	database *Database
	now      func() time.Time
}

type refreshTokenRecord struct {
	TokenHash    string `gorm:"column:token_hash;primaryKey"`
	UserID       string `gorm:"column:user_id;index;not null"`
	ExpiresUnix  int64  `gorm:"column:expires_unix;not null"`
	IssuedAtUnix int64  `gorm:"column:issued_at_unix;not null"`
}

func (refreshTokenRecord) TableName() string {
	return "refresh_tokens"
}

// NewDatabaseRefreshTokenStore constructs a GORM-backed refresh token store.
func NewDatabaseRefreshTokenStore(database *Database) *DatabaseRefreshTokenStore {
	return &DatabaseRefreshTokenStore{
		database: database,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Issue inserts a new refresh token row and returns the opaque token. A hash
// collision retries with fresh randomness.
func (store *DatabaseRefreshTokenStore) Issue(ctx context.Context, userID string, expiresUnix int64) (string, error) {
	for attempt := 0; attempt < issueCollisionRetryBudget; attempt++ {
		opaqueToken, hashValue, randomErr := generateRefreshOpaque()
		if randomErr != nil {
			return "", fmt.Errorf("refresh_store.issue.%s: %w", store.database.driverLabel, randomErr)
		}
		record := refreshTokenRecord{
			TokenHash:    hashValue,
			UserID:       userID,
			ExpiresUnix:  expiresUnix,
			IssuedAtUnix: store.now().Unix(),
		}
		err := store.database.db.WithContext(ctx).Create(&record).Error
		if err == nil {
			return opaqueToken, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return "", fmt.Errorf("refresh_store.issue.%s: %w", store.database.driverLabel, err)
	}
	return "", fmt.Errorf("refresh_store.issue.%s: %w", store.database.driverLabel, ErrRefreshTokenCollision)
}

// Consume looks up the token and deletes it before the expiry verdict. The
// delete keys on the hash, so when two rotations race the row disappears for
// exactly one of them and the other observes ErrRefreshTokenNotFound.
func (store *DatabaseRefreshTokenStore) Consume(ctx context.Context, tokenOpaque string) (string, error) {
	if strings.TrimSpace(tokenOpaque) == "" {
		return "", fmt.Errorf("refresh_store.consume.%s: %w", store.database.driverLabel, ErrRefreshTokenEmptyOpaque)
	}
	hashValue := hashOpaque(tokenOpaque)

	var record refreshTokenRecord
	err := store.database.db.WithContext(ctx).Where("token_hash = ?", hashValue).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("refresh_store.consume.%s: %w", store.database.driverLabel, ErrRefreshTokenNotFound)
		}
		return "", fmt.Errorf("refresh_store.consume.%s: %w", store.database.driverLabel, err)
	}

	deleteResult := store.database.db.WithContext(ctx).Where("token_hash = ?", hashValue).Delete(&refreshTokenRecord{})
	if deleteResult.Error != nil {
		return "", fmt.Errorf("refresh_store.consume.%s: %w", store.database.driverLabel, deleteResult.Error)
	}
	if deleteResult.RowsAffected == 0 {
		// Lost the race to a concurrent rotation.
		return "", fmt.Errorf("refresh_store.consume.%s: %w", store.database.driverLabel, ErrRefreshTokenNotFound)
	}

	if time.Unix(record.ExpiresUnix, 0).Before(store.now()) {
		return "", fmt.Errorf("refresh_store.consume.%s: %w", store.database.driverLabel, ErrRefreshTokenExpired)
	}
	return record.UserID, nil
}
