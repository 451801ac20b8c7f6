package authkit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRefreshTokenStore is an in-memory refresh token store intended for
// tests and dev. The mutex makes Consume a single atomic read-and-delete.
type MemoryRefreshTokenStore struct {
	mutex  sync.Mutex
	byHash map[string]memoryRefreshRecord
	now    func() time.Time
}

type memoryRefreshRecord struct {
	UserID       string
	ExpiresUnix  int64
	IssuedAtUnix int64
}

// NewMemoryRefreshTokenStore creates an empty in-memory token store.
func NewMemoryRefreshTokenStore() *MemoryRefreshTokenStore {
	return &MemoryRefreshTokenStore{
		byHash: make(map[string]memoryRefreshRecord),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a new single-use token bound to the user.
func (store *MemoryRefreshTokenStore) Issue(ctx context.Context, userID string, expiresUnix int64) (string, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	for attempt := 0; attempt < issueCollisionRetryBudget; attempt++ {
		opaque, hashValue, randomErr := generateRefreshOpaque()
		if randomErr != nil {
			return "", randomErr
		}
		if _, exists := store.byHash[hashValue]; exists {
			continue
		}
		store.byHash[hashValue] = memoryRefreshRecord{
			UserID:       userID,
			ExpiresUnix:  expiresUnix,
			IssuedAtUnix: store.now().Unix(),
		}
		return opaque, nil
	}
	return "", ErrRefreshTokenCollision
}

// Consume removes the token while reading it and returns the owning user.
func (store *MemoryRefreshTokenStore) Consume(ctx context.Context, tokenOpaque string) (string, error) {
	if strings.TrimSpace(tokenOpaque) == "" {
		return "", ErrRefreshTokenEmptyOpaque
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	hashValue := hashOpaque(tokenOpaque)
	record, ok := store.byHash[hashValue]
	if !ok {
		return "", ErrRefreshTokenNotFound
	}
	delete(store.byHash, hashValue)
	if time.Unix(record.ExpiresUnix, 0).Before(store.now()) {
		return "", ErrRefreshTokenExpired
	}
	return record.UserID, nil
}

// Len reports how many unconsumed tokens the store holds.
func (store *MemoryRefreshTokenStore) Len() int {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return len(store.byHash)
}
