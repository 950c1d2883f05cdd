package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"queueless/internal/config"
)

// NewRedisClient builds a client from config. It does not dial; use Ping.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

func CloseRedis(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// ── session revocation ──

const revokedSessionPrefix = "session:revoked:"

// RedisSessionStore remembers logged-out session IDs until their tokens expire.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedSessionPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedSessionPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return n > 0, nil
}

// MemorySessionStore is used when Redis is disabled. Revocations are lost
// on restart and are not shared between instances.
type MemorySessionStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{revoked: make(map[string]time.Time)}
}

func (s *MemorySessionStore) Revoke(_ context.Context, jti string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, k)
		}
	}
	if until.After(now) {
		s.revoked[jti] = until
	}
	return nil
}

func (s *MemorySessionStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[jti]
	return ok && time.Now().Before(exp), nil
}

// ── availability cache ──

// RedisAvailabilityCache stores computed slot lists per company, date and
// worker. Invalidate bumps a per-company version, orphaning old keys until
// their TTL runs out.
type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client, ttl: ttl}
}

func availabilityVersionKey(companyID int64) string {
	return fmt.Sprintf("availability:%d:version", companyID)
}

func (c *RedisAvailabilityCache) key(ctx context.Context, companyID int64, date string, workerID *int64) (string, error) {
	version, err := c.client.Get(ctx, availabilityVersionKey(companyID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	worker := "any"
	if workerID != nil {
		worker = fmt.Sprintf("%d", *workerID)
	}
	return fmt.Sprintf("availability:%d:v%d:%s:%s", companyID, version, date, worker), nil
}

// Get returns nil, nil on a miss.
func (c *RedisAvailabilityCache) Get(ctx context.Context, companyID int64, date string, workerID *int64) ([]byte, error) {
	key, err := c.key(ctx, companyID, date, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to build availability key: %w", err)
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability from redis: %w", err)
	}
	return val, nil
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, companyID int64, date string, workerID *int64, payload []byte) error {
	key, err := c.key(ctx, companyID, date, workerID)
	if err != nil {
		return fmt.Errorf("failed to build availability key: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set availability in redis: %w", err)
	}
	return nil
}

func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, companyID int64) error {
	if err := c.client.Incr(ctx, availabilityVersionKey(companyID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate availability: %w", err)
	}
	return nil
}

// NopAvailabilityCache always misses.
type NopAvailabilityCache struct{}

func (NopAvailabilityCache) Get(context.Context, int64, string, *int64) ([]byte, error) {
	return nil, nil
}
func (NopAvailabilityCache) Set(context.Context, int64, string, *int64, []byte) error { return nil }
func (NopAvailabilityCache) Invalidate(context.Context, int64) error                 { return nil }
