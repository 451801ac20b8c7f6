package authkit

import (
	"context"
	"sort"
	"sync"
)

// MemoryUserStore is an in-memory user store intended for tests and dev.
type MemoryUserStore struct {
	mutex   sync.Mutex
	byID    map[string]User
	byEmail map[string]string
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

// Register inserts a new user, enforcing case-sensitive email uniqueness.
func (store *MemoryUserStore) Register(ctx context.Context, user User) (User, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if _, exists := store.byEmail[user.Email]; exists {
		return User{}, ErrDuplicateEmail
	}
	store.byID[user.ID] = user
	store.byEmail[user.Email] = user.ID
	return user, nil
}

// FindByID returns the user with the given identifier.
func (store *MemoryUserStore) FindByID(ctx context.Context, userID string) (User, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	user, ok := store.byID[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

// FindByEmail returns the user registered under the exact email.
func (store *MemoryUserStore) FindByEmail(ctx context.Context, email string) (User, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	userID, ok := store.byEmail[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return store.byID[userID], nil
}

// List returns all users ordered by email.
func (store *MemoryUserStore) List(ctx context.Context) ([]User, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	users := make([]User, 0, len(store.byID))
	for _, user := range store.byID {
		users = append(users, user)
	}
	sort.Slice(users, func(left, right int) bool {
		return users[left].Email < users[right].Email
	})
	return users, nil
}
