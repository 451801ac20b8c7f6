package authkit

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// DatabaseUserStore persists users using GORM.
type DatabaseUserStore struct {
	database *Database
}

type userRecord struct {
	ID            string `gorm:"column:id;primaryKey"`
	Email         string `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash  string `gorm:"column:password_hash;not null"`
	FirstName     string `gorm:"column:first_name;not null"`
	LastName      string `gorm:"column:last_name;not null"`
	CreatedAtUnix int64  `gorm:"column:created_at_unix;autoCreateTime"`
	UpdatedAtUnix int64  `gorm:"column:updated_at_unix;autoUpdateTime"`
}

func (userRecord) TableName() string {
	return "users"
}

func (record userRecord) toUser() User {
	return User{
		ID:           record.ID,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		FirstName:    record.FirstName,
		LastName:     record.LastName,
	}
}

// NewDatabaseUserStore constructs a GORM-backed user store.
func NewDatabaseUserStore(database *Database) *DatabaseUserStore {
	return &DatabaseUserStore{database: database}
}

// Register inserts a new user row. A unique violation on email maps to
// ErrDuplicateEmail.
func (store *DatabaseUserStore) Register(ctx context.Context, user User) (User, error) {
	record := userRecord{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
	}
	if err := store.database.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return User{}, fmt.Errorf("user_store.register.%s: %w", store.database.driverLabel, ErrDuplicateEmail)
		}
		return User{}, fmt.Errorf("user_store.register.%s: %w", store.database.driverLabel, err)
	}
	return record.toUser(), nil
}

// FindByID returns the user with the given identifier.
func (store *DatabaseUserStore) FindByID(ctx context.Context, userID string) (User, error) {
	var record userRecord
	err := store.database.db.WithContext(ctx).Where("id = ?", userID).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, fmt.Errorf("user_store.find_by_id.%s: %w", store.database.driverLabel, ErrUserNotFound)
		}
		return User{}, fmt.Errorf("user_store.find_by_id.%s: %w", store.database.driverLabel, err)
	}
	return record.toUser(), nil
}

// FindByEmail returns the user registered under the exact, case-sensitive email.
func (store *DatabaseUserStore) FindByEmail(ctx context.Context, email string) (User, error) {
	var record userRecord
	err := store.database.db.WithContext(ctx).Where("email = ?", email).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, fmt.Errorf("user_store.find_by_email.%s: %w", store.database.driverLabel, ErrUserNotFound)
		}
		return User{}, fmt.Errorf("user_store.find_by_email.%s: %w", store.database.driverLabel, err)
	}
	return record.toUser(), nil
}

// List returns all users ordered by email.
func (store *DatabaseUserStore) List(ctx context.Context) ([]User, error) {
	var records []userRecord
	if err := store.database.db.WithContext(ctx).Order("email").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("user_store.list.%s: %w", store.database.driverLabel, err)
	}
	users := make([]User, 0, len(records))
	for _, record := range records {
		users = append(users, record.toUser())
	}
	return users, nil
}
