package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/meeting-enrichment/pkg/config"
)

// ErrLeaseHeld is returned when another holder owns the lease
var ErrLeaseHeld = errors.New("lease is held by another poller")

// Locker hands out short-lived exclusive leases keyed by name
type Locker interface {
	// Acquire returns a token identifying the holder, or ErrLeaseHeld
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Release frees the lease if token still owns it
	Release(ctx context.Context, key, token string) error
}

// MemoryLocker is a Locker for a single process
type MemoryLocker struct {
	store *MemoryStore
}

// NewMemoryLocker creates a lease over an in-memory store
func NewMemoryLocker(store *MemoryStore) *MemoryLocker {
	return &MemoryLocker{store: store}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if !l.store.SetNX(key, token, ttl) {
		return "", ErrLeaseHeld
	}
	return token, nil
}

func (l *MemoryLocker) Release(_ context.Context, key, token string) error {
	l.store.CompareAndDelete(key, token)
	return nil
}

// releaseScript deletes the key only when it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every worker talking to one Redis
type RedisLocker struct {
	client *redis.Client
}

// NewRedisClient connects to the configured Redis
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewRedisLocker creates a lease backed by Redis
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire lease: %w", err)
	}
	if !ok {
		return "", ErrLeaseHeld
	}
	return token, nil
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release lease: %w", err)
	}
	return nil
}
