package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists answers in Redis so a cache survives restarts and is
// shared across replicas. Entries are JSON encoded; expiry is delegated to
// Redis TTLs.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	// KeyPrefix namespaces cache keys in a shared Redis instance.
	KeyPrefix string
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient, optFns ...func(o *RedisOptions)) *RedisStore {
	opts := RedisOptions{KeyPrefix: "juricore:answer:"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RedisStore{client: client, keyPrefix: opts.KeyPrefix}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, fingerprint string) (CachedAnswer, bool, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+fingerprint).Bytes()
	if err == redis.Nil {
		return CachedAnswer{}, false, nil
	}
	if err != nil {
		return CachedAnswer{}, false, fmt.Errorf("redis get: %w", err)
	}
	var answer CachedAnswer
	if err := json.Unmarshal(data, &answer); err != nil {
		return CachedAnswer{}, false, fmt.Errorf("decode cached answer: %w", err)
	}
	return answer, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, fingerprint string, answer CachedAnswer, ttl time.Duration) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("encode cached answer: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+fingerprint, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
