package authkit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryRefreshTokenStoreSingleUse(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	opaque, err := store.Issue(context.Background(), "user-1", time.Now().Add(time.Hour).Unix())
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if opaque == "" {
		t.Fatalf("expected non-empty opaque token")
	}

	userID, consumeErr := store.Consume(context.Background(), opaque)
	if consumeErr != nil {
		t.Fatalf("consume error: %v", consumeErr)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %s", userID)
	}

	if _, secondErr := store.Consume(context.Background(), opaque); !errors.Is(secondErr, ErrRefreshTokenNotFound) {
		t.Fatalf("expected ErrRefreshTokenNotFound on second consume, got %v", secondErr)
	}
}

func TestMemoryRefreshTokenStoreUnknownAndEmpty(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if _, err := store.Consume(context.Background(), "never-issued-token"); !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Fatalf("expected ErrRefreshTokenNotFound, got %v", err)
	}
	if _, err := store.Consume(context.Background(), "  "); !errors.Is(err, ErrRefreshTokenEmptyOpaque) {
		t.Fatalf("expected ErrRefreshTokenEmptyOpaque, got %v", err)
	}
}

func TestMemoryRefreshTokenStoreExpiredTokenIsDeleted(t *testing.T) {
	store := NewMemoryRefreshTokenStore()
	current := time.Unix(1700000000, 0).UTC()
	store.now = func() time.Time { return current }

	opaque, err := store.Issue(context.Background(), "user-1", current.Add(time.Minute).Unix())
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, consumeErr := store.Consume(context.Background(), opaque); !errors.Is(consumeErr, ErrRefreshTokenExpired) {
		t.Fatalf("expected ErrRefreshTokenExpired, got %v", consumeErr)
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired token to be removed, %d rows remain", store.Len())
	}
	// The expired error must not leave the token rotatable.
	if _, consumeErr := store.Consume(context.Background(), opaque); !errors.Is(consumeErr, ErrRefreshTokenNotFound) {
		t.Fatalf("expected ErrRefreshTokenNotFound after expired consume, got %v", consumeErr)
	}
}

func TestMemoryRefreshTokenStoreConcurrentConsume(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	opaque, err := store.Issue(context.Background(), "user-1", time.Now().Add(time.Hour).Unix())
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	const racers = 16
	var wait sync.WaitGroup
	results := make(chan error, racers)
	start := make(chan struct{})

	for index := 0; index < racers; index++ {
		wait.Add(1)
		go func() {
			defer wait.Done()
			<-start
			_, consumeErr := store.Consume(context.Background(), opaque)
			results <- consumeErr
		}()
	}
	close(start)
	wait.Wait()
	close(results)

	successes := 0
	notFound := 0
	for consumeErr := range results {
		switch {
		case consumeErr == nil:
			successes++
		case errors.Is(consumeErr, ErrRefreshTokenNotFound):
			notFound++
		default:
			t.Fatalf("unexpected consume error: %v", consumeErr)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful consume, got %d", successes)
	}
	if notFound != racers-1 {
		t.Fatalf("expected %d not-found results, got %d", racers-1, notFound)
	}
}
