package tracklink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "affiliate:link:"

// RedisStore is the multi-process Store backing: JSON values with native
// Redis TTLs, so expiry needs no sweeper at all.
type RedisStore struct {
	rdb       *redis.Client
	ttl       time.Duration
	ownClient bool
}

// NewRedisStore wraps an existing Redis client. The client's lifecycle is
// owned by the caller.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// NewRedisStoreFromURL connects to Redis, verifies the connection, and
// returns a store that owns the client.
func NewRedisStoreFromURL(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	s := NewRedisStore(rdb, ttl)
	s.ownClient = true
	return s, nil
}

func (s *RedisStore) Store(ctx context.Context, link TrackedLink) error {
	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("marshal link: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+link.LinkID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store link: %w", err)
	}
	return nil
}

func (s *RedisStore) StoreAll(ctx context.Context, links map[string]TrackedLink) error {
	pipe := s.rdb.Pipeline()
	for id, link := range links {
		data, err := json.Marshal(link)
		if err != nil {
			return fmt.Errorf("marshal link %s: %w", id, err)
		}
		pipe.Set(ctx, redisKeyPrefix+id, data, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store links: %w", err)
	}
	return nil
}

func (s *RedisStore) Lookup(ctx context.Context, linkID string) (TrackedLink, error) {
	data, err := s.rdb.Get(ctx, redisKeyPrefix+linkID).Bytes()
	if err == redis.Nil {
		return TrackedLink{}, ErrNotFound
	}
	if err != nil {
		return TrackedLink{}, fmt.Errorf("lookup link: %w", err)
	}
	var link TrackedLink
	if err := json.Unmarshal(data, &link); err != nil {
		return TrackedLink{}, fmt.Errorf("unmarshal link: %w", err)
	}
	return link, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("clear links: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("clear links: %w", err)
	}
	return nil
}

// Close releases the Redis client when the store owns it.
func (s *RedisStore) Close() error {
	if s.ownClient {
		return s.rdb.Close()
	}
	return nil
}
