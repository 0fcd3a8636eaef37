package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryLockerExclusive(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	locker := NewMemoryLocker(store)
	ctx := context.Background()

	token, err := locker.Acquire(ctx, "poll", time.Minute)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := locker.Acquire(ctx, "poll", time.Minute); !errors.Is(err, ErrLeaseHeld) {
		t.Fatalf("second acquire: expected ErrLeaseHeld, got %v", err)
	}

	// a stale token must not free the lease
	if err := locker.Release(ctx, "poll", "someone-else"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := locker.Acquire(ctx, "poll", time.Minute); !errors.Is(err, ErrLeaseHeld) {
		t.Fatalf("lease freed by foreign token")
	}

	if err := locker.Release(ctx, "poll", token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := locker.Acquire(ctx, "poll", time.Minute); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestMemoryLockerExpires(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	locker := NewMemoryLocker(store)
	ctx := context.Background()

	if _, err := locker.Acquire(ctx, "poll", 10*time.Millisecond); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := locker.Acquire(ctx, "poll", time.Minute); err != nil {
		t.Fatalf("expected expired lease to be reacquirable, got %v", err)
	}
}

func TestMemoryStoreGetExpired(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	store.Set("k", "v", time.Minute)
	if v, ok := store.Get("k"); !ok || v != "v" {
		t.Fatalf("expected v, got %q %v", v, ok)
	}
	store.Set("gone", "v", -time.Second)
	if _, ok := store.Get("gone"); ok {
		t.Fatalf("expected expired key to be missing")
	}
	store.Delete("k")
	if _, ok := store.Get("k"); ok {
		t.Fatalf("expected deleted key to be missing")
	}
}
